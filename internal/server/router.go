// ABOUTME: HTTP router wiring for the caller-facing surface
// ABOUTME: Mounts the gateway under /api/admin plus healthz and metrics

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/atrium-labs/atrium-gateway/internal/metrics"
	"github.com/atrium-labs/atrium-gateway/internal/proxy"
)

// Options controls optional router features.
type Options struct {
	EnableCORS     bool
	MetricsEnabled bool
	MetricsPath    string
}

// Deps carries the handlers the router mounts.
type Deps struct {
	Gateway http.Handler
	Metrics *metrics.Metrics
}

// BuildRouter assembles the caller-facing HTTP surface.
func BuildRouter(d Deps, opts Options) http.Handler {
	r := chi.NewRouter()

	// baseline
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if opts.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Use(requestLogger(opts))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if opts.MetricsEnabled && d.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, d.Metrics.Handler())
	}

	r.Handle(proxy.CallerPrefix, d.Gateway)
	r.Handle(proxy.CallerPrefix+"/*", d.Gateway)

	return r
}
