package testutil

import (
	"net/http"
	"time"

	id "vigil/pkg/domain"
	"vigil/pkg/requestcontext"
)

// WithActor adds an actor ID (and optionally a display name) to the request
// context. This simulates what the auth middleware would do for authenticated
// requests.
func WithActor(req *http.Request, actorID id.UserID, name string) *http.Request {
	ctx := requestcontext.WithActorID(req.Context(), actorID)
	if name != "" {
		ctx = requestcontext.WithActorName(ctx, name)
	}
	return req.WithContext(ctx)
}

// WithRequestTime pins the request time in the context, so handlers that read
// requestcontext.Now see a deterministic clock.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
