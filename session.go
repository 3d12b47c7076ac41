package account

import "sync"

// SessionKeyUserID is where the active authenticated identity lives.
const SessionKeyUserID = "user_id"

// SessionKeyPermissions holds the permission set materialized on login.
const SessionKeyPermissions = "permissions"

// MemorySession is an in process SessionStore, used in tests and in
// single node deployments that do not need an external session backend.
type MemorySession struct {
	mu     sync.RWMutex
	values map[string]any
}

var _ SessionStore = (*MemorySession)(nil)

func NewMemorySession() *MemorySession {
	return &MemorySession{values: map[string]any{}}
}

func (m *MemorySession) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemorySession) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *MemorySession) Forget(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

// Len reports how many keys the session currently holds.
func (m *MemorySession) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
