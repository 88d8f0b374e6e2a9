package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	appLogger "github.com/koushik8686/GeoGuide-sub000/app/logger"
	"github.com/koushik8686/GeoGuide-sub000/app/observability/metrics"
	"github.com/koushik8686/GeoGuide-sub000/app/tracer"
	"github.com/koushik8686/GeoGuide-sub000/config"
	"github.com/koushik8686/GeoGuide-sub000/internal/container"
	"github.com/koushik8686/GeoGuide-sub000/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger(cfg.Mode)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Observability ---
	prom := cfg.Handlers.Prometheus
	shutdownTelemetry, err := tracer.InitTracingAndMetrics(tracer.MetricsServer{
		Port:      prom.Port,
		EnableTLS: prom.EnableTLS,
		CertFile:  prom.CertFile,
		KeyFile:   prom.KeyFile,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.Any("error", err))
		os.Exit(1)
	}
	metrics.InitAppMetrics()

	// --- Dependencies ---
	c, err := container.NewContainer(ctx, &cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize dependencies", slog.Any("error", err))
		os.Exit(1)
	}
	defer c.Close()

	// --- Router ---
	handler := newHTTPHandler(&cfg, c, logger)

	// --- HTTP Server ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:              serverAddress,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress), slog.String("affinity_store", cfg.Affinity.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}
	if err := c.DiscoveryService.Drain(shutdownCtx); err != nil {
		logger.Warn("Dropped pending affinity writes", slog.Any("error", err))
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error("Telemetry shutdown failed", slog.Any("error", err))
	}

	logger.Info("Application shut down complete.")
}

// newHTTPHandler mounts the API router behind the server-wide middleware.
func newHTTPHandler(cfg *config.Config, c *container.Container, logger *slog.Logger) http.Handler {
	apiRouter := router.SetupRouter(&router.Config{
		DiscoveryHandler:       c.DiscoveryHandler,
		AuthenticateMiddleware: c.Authenticator.Authenticate,
		OptionalAuthMiddleware: c.Authenticator.OptionalAuthenticate,
		RateLimitRequests:      cfg.RateLimit.Requests,
		RateLimitWindow:        cfg.RateLimit.Window,
		AllowedOrigins:         cfg.CORS.AllowedOrigins,
	})

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(cfg.Server.Timeout))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Mount("/", apiRouter)
	return mux
}

// setupLogger configures and returns the application logger. APP_ENV, when
// set, overrides the configured mode.
func setupLogger(mode string) *slog.Logger {
	if env := os.Getenv("APP_ENV"); env != "" {
		mode = env
	}
	if mode == "development" || mode == "" {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
