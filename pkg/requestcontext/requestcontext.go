// Package requestcontext carries request-scoped values (request ID, actor, signing token)
// across package boundaries without import cycles.
package requestcontext

import (
	"context"
	"time"

	"agriqcert/pkg/domain"
	"agriqcert/pkg/platform/middleware/requesttime"
)

type (
	requestIDKey    struct{}
	actorKey        struct{}
	signingTokenKey struct{}
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request ID or "" when the request middleware did not run.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// Actor returns the authenticated actor. The second value is false for anonymous requests.
func Actor(ctx context.Context) (domain.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(domain.Actor)
	return a, ok
}

// WithSigningToken stores the caller-supplied token for the external signing authority.
func WithSigningToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, signingTokenKey{}, token)
}

func SigningToken(ctx context.Context) string {
	if v, ok := ctx.Value(signingTokenKey{}).(string); ok {
		return v
	}
	return ""
}

// Now is a shorthand for the request-scoped clock.
func Now(ctx context.Context) time.Time {
	return requesttime.Now(ctx)
}
