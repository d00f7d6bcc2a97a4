package servicec

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (a *App) routes() *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)

	// The tracing middleware is the single span/correlation boundary: it
	// sanitizes propagation headers, binds the span and correlation id, and
	// recovers handler panics onto the active span.
	mux.Use(a.Tracing.Middleware(a.Logger))

	mux.Get("/health", a.Handlers.Health)

	mux.Route("/api", func(r chi.Router) {
		r.Get("/process", a.Handlers.Process)
		r.Get("/data", a.Handlers.Data)
		r.Get("/call-service-a", a.Handlers.CallServiceA)
		r.Get("/call-service-a-error", a.Handlers.CallServiceAError)
		r.Get("/error", a.Handlers.SimulateError)
		r.Get("/timeout", a.Handlers.SimulateTimeout)
		r.Get("/auth-error", a.Handlers.SimulateAuthError)
		r.Get("/rate-limit-error", a.Handlers.SimulateRateLimitError)
		r.Get("/dependency-error", a.Handlers.SimulateDependencyError)
	})

	return mux
}
