package account

import "context"

var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// WithContext sets the acting User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the acting user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}
