package account

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventRegistered           ActivityEventType = "account.registered"
	ActivityEventLoginSuccess         ActivityEventType = "account.login.success"
	ActivityEventSocialResolved       ActivityEventType = "account.social.resolved"
	ActivityEventImpersonationStarted ActivityEventType = "account.impersonation.started"
	ActivityEventImpersonationEnded   ActivityEventType = "account.impersonation.ended"
	ActivityEventDeleted              ActivityEventType = "account.deleted"
)

// ActorRef identifies who triggered an event.
type ActorRef struct {
	ID   string
	Name string
}

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	Actor      ActorRef
	UserID     string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
