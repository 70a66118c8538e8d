// Package httptransport assembles the HTTP surface: middleware chain,
// feature handlers, health and metrics endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	orghandler "orgdir/internal/org/handler"
	"orgdir/internal/platform/middleware"
	userhandler "orgdir/internal/user/handler"
)

// Registrar is implemented by feature handlers that mount their own routes.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter wires every endpoint. All record routes sit behind the API key;
// health and metrics do not.
func NewRouter(logger *slog.Logger, apiKey string, orgs *orghandler.Handler, users *userhandler.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAPIKey(apiKey))
		for _, h := range []Registrar{orgs, users} {
			h.Register(protected)
		}
	})

	return r
}
