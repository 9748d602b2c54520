// Package http composes the public and admin HTTP surfaces.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	candidatehandler "zorvixe/internal/candidate/handler"
	clienthandler "zorvixe/internal/client/handler"
	"zorvixe/internal/contact"
	"zorvixe/internal/platform/middleware"
	"zorvixe/internal/ratelimit"
)

// Deps carries everything the router mounts.
type Deps struct {
	Clients    *clienthandler.Handler
	Candidates *candidatehandler.Handler
	Contact    *contact.Handler

	// Middleware built by main: logging, metrics, device capture, limits.
	Recovery  func(http.Handler) http.Handler
	Logger    func(http.Handler) http.Handler
	Timeout   func(http.Handler) http.Handler
	Latency   func(http.Handler) http.Handler
	RateLimit *ratelimit.Middleware

	// Health reports readiness of backing services.
	Health func(r *http.Request) error

	// Registry backs the /metrics endpoint.
	Registry *prometheus.Registry
}

// New builds the chi router with the full middleware chain.
func New(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(deps.Recovery)
	r.Use(middleware.RequestID)
	r.Use(deps.Logger)
	r.Use(deps.Timeout)
	r.Use(middleware.Device)
	if deps.Latency != nil {
		r.Use(deps.Latency)
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if deps.Health != nil {
			if err := deps.Health(req); err != nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(api chi.Router) {
		// Public token endpoints: rate limited against enumeration. The
		// document upload is multipart, so the JSON content-type check
		// applies only to the JSON routes.
		api.Group(func(pub chi.Router) {
			if deps.RateLimit != nil {
				pub.Use(deps.RateLimit.Limit)
			}
			pub.Group(func(jsonPub chi.Router) {
				jsonPub.Use(middleware.ContentTypeJSON)
				deps.Contact.RegisterPublic(jsonPub)
				deps.Clients.RegisterPublic(jsonPub)
				jsonPub.Get("/onboarding/{token}", deps.Candidates.HandleResolve)
			})
			pub.Post("/onboarding/{token}/document", deps.Candidates.HandleUpload)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.ContentTypeJSON)
			deps.Clients.RegisterAdmin(admin)
			deps.Candidates.RegisterAdmin(admin)
			deps.Contact.RegisterAdmin(admin)
		})
	})

	return r
}
