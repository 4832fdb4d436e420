package simulation

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/frontoffice/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "fa_sim_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	if err := logger.Init(
		logger.WithOutput(io.MultiWriter(os.Stdout, file)),
		logger.WithLevel(level),
	); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the simulation tool.
func ShowHelp() {
	os.Stdout.WriteString(`Front Office Free Agency Simulator
==================================

Generates a deterministic league from a seed and runs a full free agency
period against the in-process contract engine: negotiations, sealed-bid
market cycles, and open free agency, followed by a verification pass over
the resulting books.

Usage:
  go run cmd/fa-sim/main.go [options]

Options:
  -seed int
        RNG seed; the same seed replays the same league (default 1)
  -teams int
        Number of bidding teams (default 12)
  -players int
        Number of free agents (default 200)
  -cycles int
        Market cycles before open free agency (default 4)
  -year int
        Calendar year contracts start in (default 2026)
  -cap int
        Per-team salary cap in whole currency units (default 250000000)
  -workers int
        Number of market evaluation workers (default CPU cores * 2)
  -log string
        Log file for simulation output (default: fa_sim_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Run with default settings
  go run cmd/fa-sim/main.go

  # Replay a specific league at a tighter cap
  go run cmd/fa-sim/main.go -seed 42 -cap 180000000

  # A big class with verbose output
  go run cmd/fa-sim/main.go -players 1000 -teams 32 -verbose
`)
}
