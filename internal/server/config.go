package server

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/DjordjeVuckovic/agreement-lab/pkg/config/env"
	"github.com/DjordjeVuckovic/agreement-lab/pkg/utils"
)

type Config struct {
	Port        string
	UseHttp2    bool
	CorsOrigins []string
}

// LoadConfig reads the HTTP settings from the environment. The .env file, if
// any, must already be loaded.
func LoadConfig() (*Config, error) {
	useHttp2, err := env.Bool("USE_HTTP2", false)
	if err != nil {
		return nil, err
	}

	port := env.String("PORT", "8080")
	if err := validatePort(port); err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}

	return &Config{
		Port:        port,
		UseHttp2:    useHttp2,
		CorsOrigins: parseOrigins(os.Getenv("CORS_ORIGINS")),
	}, nil
}

func parseOrigins(raw string) []string {
	origins := utils.SplitTrim(raw, ",")
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}

func validatePort(port string) error {
	portNum, err := strconv.Atoi(port)

	if err != nil {
		return errors.New("port must be a number")
	}

	if portNum < 1 || portNum > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	return nil
}
