// Package main provides a standalone HTTP server for E2E testing.
// It runs the same routes and handlers as the main server against a
// deterministic fixture provider, making it suitable for Playwright tests.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-viewer/config"
	"stock-viewer/internal/api"
	"stock-viewer/internal/app"
	"stock-viewer/observability"
	"stock-viewer/services"
)

func main() {
	// Initialize logger in development mode for tests
	observability.InitLogger(false)
	observability.InitMetrics()

	// Get configuration from environment
	port := os.Getenv("E2E_SERVER_PORT")
	if port == "" {
		port = "9090"
	}

	cfg := config.NewTestConfig()
	cfg.HTTP.Port = port

	breakers := services.NewCircuitBreakerRegistry(services.CircuitBreakerConfigFrom(cfg.Resilience))
	provider := services.NewResilientProvider(NewFixtureProvider(), breakers,
		services.RetryConfigFrom(cfg.Resilience),
		time.Duration(cfg.Provider.TimeoutSeconds)*time.Second,
		nil)

	application, err := app.New(cfg, provider, breakers)
	if err != nil {
		observability.Fatal("failed to initialize application", "error", err)
	}

	// Pin the clock so fixture pages are reproducible between runs
	if today := os.Getenv("E2E_TODAY"); today != "" {
		fixed, err := time.Parse(time.DateOnly, today)
		if err != nil {
			observability.Fatal("invalid E2E_TODAY (expected YYYY-MM-DD)", "error", err)
		}
		application.SetClock(func() time.Time { return fixed })
		observability.Info("clock pinned", "today", today)
	}

	// Create HTTP router
	handler := api.NewHandler(application, cfg)
	router := api.NewRouter(handler, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in goroutine
	go func() {
		observability.Info("starting E2E test server", "port", port, "url", fmt.Sprintf("http://localhost:%s", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Fatal("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down E2E test server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}
	observability.Info("E2E test server stopped")
}
