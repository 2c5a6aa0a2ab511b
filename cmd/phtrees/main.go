// Command phtrees answers point and rectangle queries against the
// persistence trees of a diagram and stores forests as snapshots.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/jrhy/phtrees"
	"github.com/jrhy/phtrees/internal/logging"
)

// exitCode is 2 for bad configuration or usage and 1 for anything that
// failed while resolving.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, phtrees.ErrConfiguration):
		return 2
	default:
		return 1
	}
}

func main() {
	cfg, err := loadConfig(env.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "phtrees:", err)
		os.Exit(exitCode(err))
	}
	logger := logging.New(logging.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	if err := newRootCmd(cfg, logger).ExecuteContext(context.Background()); err != nil {
		logger.Error("phtrees failed", "error", err)
		os.Exit(exitCode(err))
	}
}
