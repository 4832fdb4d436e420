package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/frontoffice/internal/simulation"
)

// Default configuration constants.
const (
	defaultSeed       = 1
	defaultTeams      = 12
	defaultPlayers    = 200
	defaultCycles     = 4
	defaultYear       = 2026
	defaultCap        = 250_000_000
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultSimTimeout = 10 * time.Minute
)

func main() {
	var (
		seed    = flag.Int64("seed", defaultSeed, "RNG seed; the same seed replays the same league")
		teams   = flag.Int("teams", defaultTeams, "Number of bidding teams")
		players = flag.Int("players", defaultPlayers, "Number of free agents")
		cycles  = flag.Int("cycles", defaultCycles, "Market cycles before open free agency")
		year    = flag.Int("year", defaultYear, "Calendar year contracts start in")
		capFlag = flag.Int64("cap", defaultCap, "Per-team salary cap in whole currency units")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of market evaluation workers")
		logFile = flag.String("log", "", "Log file for simulation output (default: fa_sim_TIMESTAMP.log)")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulation.ShowHelp()
		return
	}

	// Setup logging
	if err := simulation.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultSimTimeout)
	defer cancel()

	// Create simulation configuration
	config := &simulation.Config{
		Seed:        *seed,
		TeamCount:   *teams,
		PlayerCount: *players,
		Cycles:      *cycles,
		LeagueYear:  *year,
		SalaryCap:   *capFlag,
		Workers:     *workers,
		Verbose:     *verbose,
		LogFile:     *logFile,
	}

	// Run the simulation
	if err := simulation.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
