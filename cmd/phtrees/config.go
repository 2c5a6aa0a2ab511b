package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/jrhy/phtrees"
	"github.com/jrhy/phtrees/internal/logging"
)

// Config is read from the environment. Flags cover everything that varies
// per query.
type Config struct {
	LogLevel   logging.Level `env:"PHTREES_LOG_LEVEL" envDefault:"info"`
	LogJSON    bool          `env:"PHTREES_LOG_JSON"`
	Visualizer string        `env:"PHTREES_VISUALIZER" envDefault:"paraview"`
	CacheSize  int           `env:"PHTREES_CACHE_SIZE" envDefault:"256"`
	S3Endpoint string        `env:"PHTREES_S3_ENDPOINT"`
	S3Region   string        `env:"PHTREES_S3_REGION" envDefault:"us-east-1"`
}

// loadConfig parses the environment; the zero Options read the process
// environment.
func loadConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %v: %w", err, phtrees.ErrConfiguration)
	}
	if cfg.CacheSize <= 0 {
		return Config{}, fmt.Errorf("PHTREES_CACHE_SIZE must be positive, got %d: %w", cfg.CacheSize, phtrees.ErrConfiguration)
	}
	return cfg, nil
}
