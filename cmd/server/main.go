package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/chefmate/api/internal/api"
	"github.com/chefmate/api/internal/config"
	"github.com/chefmate/api/internal/logger"
	"github.com/chefmate/api/internal/metrics"
	"github.com/chefmate/api/internal/sentry"
	"github.com/chefmate/api/internal/services/detection"
	"github.com/chefmate/api/internal/services/edamam"
	"github.com/chefmate/api/internal/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	defer sentry.Recover()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize telemetry
	shutdownTelemetry, err := telemetry.InitTelemetry(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, cfg.OTLPHeaders())
	if err != nil {
		slog.Warn("Failed to init telemetry", "error", err)
	} else {
		defer shutdownTelemetry(context.Background())
	}

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName, cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	}
	if cfg.SentryDSN != "" {
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize business metrics
	if err := metrics.Init(); err != nil {
		slog.Warn("Failed to init business metrics", "error", err)
	}

	// Initialize logger with OTel support
	slog.SetDefault(logger.New(cfg.Env))

	// Detection keeps working without a key so the rest of the API stays up.
	var model detection.Model
	if cfg.GeminiAPIKey == "" {
		slog.Error("GEMINI_API_KEY environment variable is not set; object detection is disabled")
	} else {
		gemini, err := detection.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.Detection)
		if err != nil {
			slog.Error("Failed to create Gemini client", "error", err)
		} else {
			defer gemini.Close()
			model = gemini
		}
	}
	detector := detection.NewDetector(model,
		detection.WithTempDir(cfg.Detection.TempDir),
		detection.WithTimeout(cfg.Detection.Timeout),
	)

	if cfg.EdamamAppID == "" || cfg.EdamamAppKey == "" {
		slog.Warn("EDAMAM_API_ID or EDAMAM_API_KEY is not set; recipe search will fail")
	}
	recipes := edamam.NewClient(cfg.Recipes.BaseURL, cfg.EdamamAppID, cfg.EdamamAppKey, cfg.Recipes.PageSize,
		edamam.WithTimeout(cfg.Recipes.Timeout),
	)

	apiServer := api.NewServer(cfg, detector, recipes)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(cfg, apiServer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.Port, "env", cfg.Env, "allowed_origin", cfg.AllowedOrigin)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			sentry.Flush(2 * time.Second)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
