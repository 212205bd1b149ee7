package authcontext

import (
	"context"

	"github.com/NGC6543/blogicum/auth"
)

type contextKeySessionID struct{}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, contextKeySessionID{}, sessionID)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(contextKeySessionID{}).(string)
	if !ok {
		return "", false
	}

	return sessionID, true
}

type contextKeyCurrentUser struct{}

func WithCurrentUser(ctx context.Context, user *auth.User) context.Context {
	return context.WithValue(ctx, contextKeyCurrentUser{}, user)
}

// CurrentUser returns the authenticated user resolved for this request, or
// nil for anonymous requests.
func CurrentUser(ctx context.Context) *auth.User {
	user, ok := ctx.Value(contextKeyCurrentUser{}).(*auth.User)
	if !ok {
		return nil
	}

	return user
}
