package env

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file. ENV_PATH overrides
// defaultPath. A missing file is an error only when env is "local" or empty.
// Variables already set in the process environment win over the file.
func LoadDotEnv(env string, defaultPath string) error {
	envPath := os.Getenv("ENV_PATH")
	if envPath == "" {
		slog.Info("ENV_PATH is not set, using default path", "defaultPath", defaultPath)
		envPath = defaultPath
	}

	err := godotenv.Load(envPath)
	if err == nil {
		return nil
	}
	if env == "local" || env == "" {
		slog.Error("Failed to load environment variables in local mode", "path", envPath, "error", err)
		return err
	}
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("Skipping .env ...", "path", envPath)
		return nil
	}
	return fmt.Errorf("load %s: %w", envPath, err)
}

// String returns the value of key, or def when unset or empty.
func String(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Bool(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return v, nil
}

func Int(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return v, nil
}

func Float(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return v, nil
}
