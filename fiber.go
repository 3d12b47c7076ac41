package account

import (
	"github.com/gofiber/fiber/v2/middleware/session"
)

// FiberSession adapts a fiber session to the SessionStore interface.
// Mutations are applied in memory; call Save once per request to flush
// them to the backing store, keeping multi key writes in a single commit.
type FiberSession struct {
	sess *session.Session
}

var _ SessionStore = (*FiberSession)(nil)

func NewFiberSession(sess *session.Session) *FiberSession {
	return &FiberSession{sess: sess}
}

func (f *FiberSession) Get(key string) (any, bool) {
	v := f.sess.Get(key)
	return v, v != nil
}

func (f *FiberSession) Set(key string, value any) {
	f.sess.Set(key, value)
}

func (f *FiberSession) Forget(key string) {
	f.sess.Delete(key)
}

// Save flushes the pending session mutations.
func (f *FiberSession) Save() error {
	return f.sess.Save()
}
