package account

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Session keys recording the original admin identity while impersonating.
// They are written and removed only as a unit, never individually.
const (
	sessionKeyAdminID   = "admin_user_id"
	sessionKeyAdminName = "admin_user_name"
	sessionKeyTempUser  = "temp_user_id"
)

// Redirect is the route the caller should send the browser to after an
// impersonation transition.
type Redirect string

const (
	RedirectAdminHome Redirect = "/admin"
	RedirectHome      Redirect = "/home"
)

// ImpersonationContext is the restore point recorded while an admin acts
// as another user. AdminID/AdminName identify the original admin,
// TargetID the user whose identity was first assumed.
type ImpersonationContext struct {
	AdminID   uuid.UUID
	AdminName string
	TargetID  uuid.UUID
}

// CurrentImpersonation reads the impersonation bookkeeping from the
// session. The second return is false in the normal, non impersonating
// state.
func CurrentImpersonation(sess SessionStore) (ImpersonationContext, bool) {
	raw, ok := sess.Get(sessionKeyAdminID)
	if !ok {
		return ImpersonationContext{}, false
	}

	adminID, err := uuid.Parse(toString(raw))
	if err != nil {
		return ImpersonationContext{}, false
	}

	ic := ImpersonationContext{AdminID: adminID}

	if name, ok := sess.Get(sessionKeyAdminName); ok {
		ic.AdminName = toString(name)
	}

	if target, ok := sess.Get(sessionKeyTempUser); ok {
		if id, err := uuid.Parse(toString(target)); err == nil {
			ic.TargetID = id
		}
	}

	return ic, true
}

func beginImpersonation(sess SessionStore, ic ImpersonationContext) {
	sess.Set(sessionKeyAdminID, ic.AdminID.String())
	sess.Set(sessionKeyAdminName, ic.AdminName)
	sess.Set(sessionKeyTempUser, ic.TargetID.String())
}

func clearImpersonation(sess SessionStore) {
	sess.Forget(sessionKeyAdminID)
	sess.Forget(sessionKeyAdminName)
	sess.Forget(sessionKeyTempUser)
}

// Impersonator lets an admin temporarily assume another user's identity
// while keeping a single restore point back to their own.
//
// Two states exist: normal and impersonating. Entering impersonation
// records the original admin in the session; switching targets while
// already impersonating moves the acting identity only, so the restore
// point is never nested or overwritten. Leaving impersonation clears the
// bookkeeping and restores the recorded admin.
type Impersonator struct {
	auth     Authenticator
	logger   Logger
	activity ActivitySink
}

func NewImpersonator(auth Authenticator) *Impersonator {
	return &Impersonator{
		auth:     auth,
		logger:   defLogger{},
		activity: noopActivitySink{},
	}
}

func (i *Impersonator) WithLogger(logger Logger) *Impersonator {
	if logger != nil {
		i.logger = logger
	}
	return i
}

// WithActivitySink routes impersonation transitions to an audit sink.
func (i *Impersonator) WithActivitySink(sink ActivitySink) *Impersonator {
	i.activity = normalizeActivitySink(sink)
	return i
}

func (i *Impersonator) record(ctx context.Context, event ActivityEvent) {
	if err := i.activity.Record(ctx, event); err != nil {
		i.logger.Warn("activity sink rejected %s: %v", event.EventType, err)
	}
}

// LoginAs switches the active identity to target on behalf of actor.
//
// It is a no-op redirect back to the admin home when the actor already is
// the target, when the session already records an impersonation of this
// exact target, or when the target is the recorded original admin (the
// way back there is LogoutAs).
func (i *Impersonator) LoginAs(ctx context.Context, sess SessionStore, actor, target *User) (Redirect, error) {
	if actor == nil || target == nil {
		return "", goerrors.New("actor and target are required", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	current, impersonating := CurrentImpersonation(sess)

	if actor.ID == target.ID {
		return RedirectAdminHome, nil
	}

	if impersonating && (current.TargetID == target.ID || current.AdminID == target.ID) {
		return RedirectAdminHome, nil
	}

	if !impersonating {
		beginImpersonation(sess, ImpersonationContext{
			AdminID:   actor.ID,
			AdminName: actor.Name,
			TargetID:  target.ID,
		})
	}

	if err := i.auth.LoginAs(ctx, sess, target.ID); err != nil {
		i.logger.Error("impersonation identity switch failed: %v", err)
		return "", goerrors.Wrap(err, goerrors.CategoryAuth, "could not switch identity")
	}

	i.logger.Info("user %s now acting as %s", actor.ID, target.ID)

	i.record(ctx, ActivityEvent{
		EventType:  ActivityEventImpersonationStarted,
		Actor:      ActorRef{ID: actor.ID.String(), Name: actor.Name},
		UserID:     target.ID.String(),
		OccurredAt: time.Now(),
	})

	return RedirectHome, nil
}

// LogoutAs ends an impersonation, restoring the recorded admin identity.
// Without a recorded admin this is a no-op redirect with no session
// mutation.
func (i *Impersonator) LogoutAs(ctx context.Context, sess SessionStore) (Redirect, error) {
	current, impersonating := CurrentImpersonation(sess)
	if !impersonating {
		return RedirectAdminHome, nil
	}

	clearImpersonation(sess)

	if err := i.auth.LoginAs(ctx, sess, current.AdminID); err != nil {
		i.logger.Error("impersonation restore failed: %v", err)
		return "", goerrors.Wrap(err, goerrors.CategoryAuth, "could not restore identity")
	}

	i.record(ctx, ActivityEvent{
		EventType:  ActivityEventImpersonationEnded,
		Actor:      ActorRef{ID: current.AdminID.String(), Name: current.AdminName},
		UserID:     current.TargetID.String(),
		OccurredAt: time.Now(),
	})

	return RedirectAdminHome, nil
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}
