package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	servicec "github.com/isogram/distributed-tracing-demo"
	"github.com/isogram/distributed-tracing-demo/config"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	app, err := servicec.New(cfg)
	if err != nil {
		log.Fatalf("failed to build service: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("Server exited", map[string]interface{}{"error": err.Error()})
		}
	case sig := <-stop:
		app.Logger.Info("Shutting down", map[string]interface{}{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		app.Logger.Error("Failed to flush spans on shutdown", map[string]interface{}{"error": err.Error()})
	}
}
