// Package main Agreement Lab API
// @title Agreement Lab API
// @version 1.0
// @description Agreement metrics, versioned gold standards and disagreement arbitration for conversational annotation
// @BasePath /
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/agreement-lab/internal/goldstandard"
	"github.com/DjordjeVuckovic/agreement-lab/internal/router"
	"github.com/DjordjeVuckovic/agreement-lab/internal/server"
	"github.com/DjordjeVuckovic/agreement-lab/internal/storage/factory"
	"github.com/DjordjeVuckovic/agreement-lab/internal/telemetry"
	"github.com/DjordjeVuckovic/agreement-lab/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	appSettings := NewAppConfig()
	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}

	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewRecorder(reg)

	backend, err := factory.NewBackend(context.Background(), cfg.StorageConfig)
	if err != nil {
		slog.Error("Failed to create storage backend", "error", err)
		os.Exit(1)
	}

	s := server.New(sCfg, backend).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/health").
		SetupMetrics("/metrics", reg)

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(200, "Agreement Lab API is running")
	})

	goldStandards := goldstandard.NewService(backend, goldstandard.Config{
		ReviewMinutesPerItem: cfg.ReviewMinutesPerItem,
		Validator:            cfg.ValidatorName,
	}, metrics)
	validations := validation.NewService(backend, goldStandards, validation.Config{
		Validator: cfg.ValidatorName,
	}, metrics)

	router.NewAgreementRouter(s.Echo, metrics).Bind()
	router.NewGoldStandardRouter(s.Echo, goldStandards).Bind()
	router.NewValidationRouter(s.Echo, validations).Bind()

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
	}()

	err = s.Start()
	backend.Close()
	if err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
