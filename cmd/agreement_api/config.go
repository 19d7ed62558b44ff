package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/agreement-lab/internal/goldstandard"
	"github.com/DjordjeVuckovic/agreement-lab/internal/storage/factory"
	"github.com/DjordjeVuckovic/agreement-lab/pkg/config/env"
)

type AppConfig struct {
	ENV string
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type AgreementAPIConfig struct {
	StorageConfig        factory.StorageConfig
	ValidatorName        string
	ReviewMinutesPerItem float64
}

func (as *AppConfig) Load() (*AgreementAPIConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/agreement_api/.env")
	if err != nil {
		slog.Info("Failed to load .env file, continuing with existing environment variables", "error", err)
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration from environment", "error", err)
		return nil, err
	}

	minutes, err := env.Float("REVIEW_MINUTES_PER_ITEM", goldstandard.DefaultReviewMinutesPerItem)
	if err != nil {
		return nil, err
	}
	if minutes <= 0 {
		return nil, fmt.Errorf("REVIEW_MINUTES_PER_ITEM must be positive, got %v", minutes)
	}

	return &AgreementAPIConfig{
		StorageConfig:        *storageCfg,
		ValidatorName:        env.String("VALIDATOR_NAME", "analyst"),
		ReviewMinutesPerItem: minutes,
	}, nil
}
