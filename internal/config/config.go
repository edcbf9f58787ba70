package config

import (
	"os"
	"strconv"

	"golens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Data    DataConfig
	Explain ExplainConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// StoreConfig selects where explainer blobs persist. When DatabaseURL is
// empty the file store under Dir is used.
type StoreConfig struct {
	DatabaseURL string
	Dir         string
}

// DataConfig points at the dataset file driving the CLI/API surface
type DataConfig struct {
	DatasetFile string
	LabelColumn string
	Mode        string
}

// ExplainConfig carries engine tuning defaults
type ExplainConfig struct {
	NumBins    int
	NumSamples int
	Seed       int64
}

// Load reads configuration from the environment with sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Store: StoreConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Dir:         getEnv("EXPLAINER_STORE_DIR", "./explainers"),
		},
		Data: DataConfig{
			DatasetFile: os.Getenv("DATASET_FILE"),
			LabelColumn: getEnv("LABEL_COLUMN", "label"),
			Mode:        getEnv("MODE", "classification"),
		},
		Explain: ExplainConfig{
			NumBins:    getEnvInt("NUM_BINS", 4),
			NumSamples: getEnvInt("NUM_SAMPLES", 5000),
			Seed:       int64(getEnvInt("SEED", 1)),
		},
	}

	if cfg.Data.Mode != "classification" && cfg.Data.Mode != "regression" {
		return nil, errors.ConfigInvalidf("MODE must be classification or regression, got %q", cfg.Data.Mode)
	}
	if cfg.Explain.NumBins < 2 {
		return nil, errors.ConfigInvalidf("NUM_BINS must be at least 2, got %d", cfg.Explain.NumBins)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
