package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/agreement-lab/internal/goldstandard"
	"github.com/DjordjeVuckovic/agreement-lab/internal/labelset"
	"github.com/DjordjeVuckovic/agreement-lab/internal/report"
	"github.com/DjordjeVuckovic/agreement-lab/internal/storage"
	"github.com/DjordjeVuckovic/agreement-lab/internal/storage/factory"
	"github.com/joho/godotenv"
)

func main() {
	cfg := parseFlags()
	ctx := context.Background()

	switch cfg.Mode {
	case "compute":
		runCompute(cfg)
	case "completeness":
		runCompleteness(ctx, cfg)
	case "derive":
		runDerive(ctx, cfg)
	default:
		slog.Error("Unknown mode", "mode", cfg.Mode)
		os.Exit(1)
	}
}

func runCompute(cfg cliConfig) {
	set, err := labelset.LoadFromFile(cfg.LabelsPath)
	if err != nil {
		slog.Error("Failed to load label set", "path", cfg.LabelsPath, "error", err)
		os.Exit(1)
	}

	name := cfg.Name
	if name == "" {
		name = set.Name
	}
	rep, err := report.Generate(name, set.Inputs())
	if err != nil {
		slog.Error("Failed to compute agreement", "error", err)
		os.Exit(1)
	}

	report.WriteTable(rep, os.Stdout)

	if cfg.JSONOutput != "" {
		if err := report.WriteJSON(rep, cfg.JSONOutput); err != nil {
			slog.Error("Failed to write JSON report", "path", cfg.JSONOutput, "error", err)
			os.Exit(1)
		}
		slog.Info("JSON report written", "path", cfg.JSONOutput)
	}
	if cfg.CSVOutput != "" {
		if err := report.WriteCSVFile(rep, cfg.CSVOutput); err != nil {
			slog.Error("Failed to write CSV report", "path", cfg.CSVOutput, "error", err)
			os.Exit(1)
		}
		slog.Info("CSV report written", "path", cfg.CSVOutput)
	}
}

func runCompleteness(ctx context.Context, cfg cliConfig) {
	if cfg.GoldStandardID == "" {
		slog.Error("-gold-standard is required in completeness mode")
		os.Exit(1)
	}

	backend := openBackend(ctx, cfg)
	defer backend.Close()

	svc := goldstandard.NewService(backend, goldstandard.Config{}, nil)
	res, err := svc.Completeness(ctx, cfg.GoldStandardID)
	if err != nil {
		slog.Error("Failed to compute completeness", "gold_standard_id", cfg.GoldStandardID, "error", err)
		os.Exit(1)
	}
	printJSON(res)
}

func runDerive(ctx context.Context, cfg cliConfig) {
	target, err := cfg.deriveTarget()
	if err != nil {
		slog.Error("Invalid derive target", "error", err)
		os.Exit(1)
	}
	runID, err := cfg.runID()
	if err != nil {
		slog.Error("Invalid run id", "error", err)
		os.Exit(1)
	}

	backend := openBackend(ctx, cfg)
	defer backend.Close()

	svc := goldstandard.NewService(backend, goldstandard.Config{}, nil)
	res, err := svc.DeriveFromRun(ctx, goldstandard.DeriveFromRunRequest{
		RunID:                runID,
		SourceGoldStandardID: cfg.GoldStandardID,
		Target:               target,
	})
	if err != nil {
		slog.Error("Failed to derive gold standard", "target", target.ID, "error", err)
		os.Exit(1)
	}
	printJSON(res)
}

func openBackend(ctx context.Context, cfg cliConfig) storage.Backend {
	if cfg.EnvPath != "" {
		if err := godotenv.Load(cfg.EnvPath); err != nil {
			slog.Error("Failed to load env file", "path", cfg.EnvPath, "error", err)
			os.Exit(1)
		}
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration", "error", err)
		os.Exit(1)
	}
	backend, err := factory.NewBackend(ctx, *storageCfg)
	if err != nil {
		slog.Error("Failed to open storage backend", "error", err)
		os.Exit(1)
	}
	return backend
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("Failed to write output", "error", err)
		os.Exit(1)
	}
}
