package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// SessionStore holds per browser session key/value state. Implementations
// are expected to isolate sessions from each other; no synchronization is
// required beyond that.
type SessionStore interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Forget(key string)
}

// Authenticator switches the active authenticated identity for a session.
// Credential verification happens elsewhere; this is the post
// authentication identity switch used by login and impersonation.
type Authenticator interface {
	LoginAs(ctx context.Context, sess SessionStore, id uuid.UUID) error
}

// Notifier delivers account notifications. Delivery failures are logged
// by callers, never propagated.
type Notifier interface {
	SendConfirmation(ctx context.Context, user *User, token string) error
}

// Settings is the read-only configuration view consumed by the account
// service.
type Settings interface {
	RegistrationOpen() bool
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNT "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNT "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNT "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNT "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
