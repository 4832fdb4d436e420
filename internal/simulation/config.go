package simulation

import "time"

// Config holds the knobs for one simulated free agency period.
type Config struct {
	Seed        int64  // RNG seed; the same seed replays the same league
	TeamCount   int    // number of bidding teams
	PlayerCount int    // number of free agents
	Cycles      int    // market cycles to run before open free agency
	LeagueYear  int    // calendar year contracts start in
	SalaryCap   int64  // per-team cap in whole currency units
	Workers     int    // market evaluation workers
	Verbose     bool   // enable verbose logging
	LogFile     string // log file for simulation output
}

// Stats holds counters for one simulation run.
type Stats struct {
	TeamsGenerated     int
	PlayersGenerated   int
	NegotiationsOpened int
	OffersSubmitted    int
	ContractsAgreed    int // signed at the table
	BidsSubmitted      int
	CyclesRun          int
	MarketSignings     int // signed through a cycle
	OpenFASignings     int
	UnsignedPlayers    int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
