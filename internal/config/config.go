// Package config loads API credentials and connection settings from the
// environment, with an optional .env overlay for development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables consumed by Load.
const (
	EnvEndpoint  = "TETRATION_ENDPOINT"
	EnvAPIKey    = "TETRATION_API_KEY"
	EnvAPISecret = "TETRATION_API_SECRET"
	EnvInsecure  = "TETRATION_INSECURE"
)

// Config holds everything needed to construct a client. The credential is
// loaded once at startup and treated as immutable for the process
// lifetime; the secret must never be logged.
type Config struct {
	Endpoint    string
	APIKey      string
	APISecret   string
	InsecureTLS bool
}

// Load reads configuration from the environment. When envFile is
// non-empty it is loaded first; variables already present in the real
// environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	} else {
		// Best effort: a missing default .env is not an error.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Endpoint:    os.Getenv(EnvEndpoint),
		APIKey:      os.Getenv(EnvAPIKey),
		APISecret:   os.Getenv(EnvAPISecret),
		InsecureTLS: os.Getenv(EnvInsecure) == "true",
	}

	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%s must be set", EnvEndpoint)
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("%s and %s must both be set", EnvAPIKey, EnvAPISecret)
	}

	return cfg, nil
}
