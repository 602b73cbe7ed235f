// Package requestid provides middleware that assigns a correlation id to
// every request. Incoming X-Request-Id headers are trusted and propagated;
// otherwise a fresh UUID is generated. The id is echoed on the response and
// stored in the context for log correlation.
package requestid

import (
	"net/http"

	"vigil/pkg/requestcontext"

	"github.com/google/uuid"
)

const Header = "X-Request-Id"

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(Header, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
