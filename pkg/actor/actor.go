// Package actor carries the authenticated user through a request context
// so lower layers can attribute changes without depending on HTTP code.
package actor

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// Actor is the signed-in user performing a request
type Actor struct {
	UserID   uuid.UUID
	Username string
	Role     string
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(contextKey{}).(Actor)
	return a, ok
}

// UserID returns the actor's id, or nil for anonymous requests
func UserID(ctx context.Context) *uuid.UUID {
	a, ok := FromContext(ctx)
	if !ok || a.UserID == uuid.Nil {
		return nil
	}
	id := a.UserID
	return &id
}
