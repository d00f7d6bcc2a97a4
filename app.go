// Package servicec wires the demo service together: configuration,
// structured logging, the tracing provider, the downstream client and the
// HTTP router.
package servicec

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/isogram/distributed-tracing-demo/client"
	"github.com/isogram/distributed-tracing-demo/config"
	"github.com/isogram/distributed-tracing-demo/handlers"
	"github.com/isogram/distributed-tracing-demo/logging"
	"github.com/isogram/distributed-tracing-demo/tracing"
)

// App is the assembled service.
type App struct {
	Config   *config.Config
	Logger   *logging.Logger
	Tracing  *tracing.Provider
	Client   *client.Client
	Handlers *handlers.Handler
	Routes   *chi.Mux
}

// New builds the service from validated configuration. All dependencies are
// constructed once here and passed by reference into the request path.
func New(cfg *config.Config) (*App, error) {
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		Service: cfg.App.Name,
	})

	provider, err := tracing.New(tracing.Config{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		Endpoint:       cfg.Tracing.Endpoint,
		Exporter:       tracing.ExporterType(cfg.Tracing.Exporter),
		Insecure:       cfg.Tracing.Insecure,
		Sampler:        tracing.SamplerType(cfg.Tracing.Sampler),
		SampleRatio:    cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return nil, err
	}

	downstream := client.New(client.Config{
		BaseURL: cfg.Downstream.ServiceAURL,
		Timeout: cfg.Downstream.Timeout,
	}, provider, logger)

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Tracing: provider,
		Client:  downstream,
		Handlers: &handlers.Handler{
			Service:        cfg.App.Name,
			Logger:         logger,
			Client:         downstream,
			SimulatedDelay: cfg.Downstream.SimulatedDelay,
		},
	}
	app.Routes = app.routes()

	return app, nil
}

// ListenAndServe starts the HTTP server and blocks until it exits.
func (a *App) ListenAndServe() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Routes,
		IdleTimeout:  30 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	a.Logger.Info("Service C starting", map[string]interface{}{
		"port":        a.Config.Server.Port,
		"environment": a.Config.App.Environment,
		"version":     a.Config.App.Version,
	})

	return srv.ListenAndServe()
}

// Shutdown flushes pending spans and releases the tracing provider.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Tracing.Shutdown(ctx)
}
