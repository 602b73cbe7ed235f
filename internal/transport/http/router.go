// Package httptransport assembles the HTTP surface: middleware chain,
// module handlers, health and metrics endpoints. Business logic lives in
// the module services; this package only wires them to routes.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vigil/pkg/platform/middleware/auth"
	"vigil/pkg/platform/middleware/requestid"
	"vigil/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

type Deps struct {
	Validator auth.JWTValidator
	Health    *HealthHandler
	Handlers  []Registrar
	Logger    *slog.Logger
}

// NewRouter builds the full router. Health and metrics are reachable
// without a token; everything else sits behind bearer auth.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", deps.Health.HandleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Validator, deps.Logger))
		for _, h := range deps.Handlers {
			h.Register(r)
		}
	})

	return r
}
