package account

import (
	"context"

	"github.com/google/uuid"
)

// SessionAuthenticator keeps the active authenticated identity in the
// session store. It verifies the target exists before switching.
type SessionAuthenticator struct {
	users  Users
	logger Logger
}

var _ Authenticator = (*SessionAuthenticator)(nil)

func NewSessionAuthenticator(users Users) *SessionAuthenticator {
	return &SessionAuthenticator{
		users:  users,
		logger: defLogger{},
	}
}

func (a *SessionAuthenticator) WithLogger(logger Logger) *SessionAuthenticator {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// LoginAs makes id the session's active identity.
func (a *SessionAuthenticator) LoginAs(ctx context.Context, sess SessionStore, id uuid.UUID) error {
	user, err := a.users.GetByIdentifier(ctx, id.String())
	if err != nil {
		a.logger.Error("identity switch target lookup failed: %v", err)
		return err
	}

	sess.Set(SessionKeyUserID, user.ID.String())
	return nil
}

// CurrentUserID reads the active authenticated identity from the
// session.
func CurrentUserID(sess SessionStore) (uuid.UUID, bool) {
	raw, ok := sess.Get(SessionKeyUserID)
	if !ok {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(toString(raw))
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}
