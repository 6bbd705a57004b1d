package testutil

import (
	"context"
	"net/http"
	"time"

	"irdesk/pkg/requestcontext"
)

// WithActor adds an admin subject to the request context, the way
// RequireAdmin does for an authenticated request.
func WithActor(req *http.Request, actorID string) *http.Request {
	return req.WithContext(requestcontext.WithActorID(req.Context(), actorID))
}

// WithTime pins the request clock.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
