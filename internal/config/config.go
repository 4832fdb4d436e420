// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - Layer file and environment overrides on top via Load.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the observability HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SalaryCap is the league-wide cap in whole currency units.
	SalaryCap int64 `koanf:"salary_cap"`

	// MaxContractYears caps negotiated contract length.
	MaxContractYears int `koanf:"max_contract_years"`

	// ShortlistSize bounds how many runner-up bids survive a market cycle.
	ShortlistSize int `koanf:"shortlist_size"`

	// FACycles is how many weekly market cycles run before unresolved
	// players spill to open free agency.
	FACycles int `koanf:"fa_cycles"`

	// CycleIntervalSeconds is how often the daemon clears the bid queue.
	CycleIntervalSeconds int `koanf:"cycle_interval_seconds"`

	// LeagueYear is the calendar year new contracts start in.
	LeagueYear int `koanf:"league_year"`

	// OpenFADiscountPct is the open free agency price discount in [0,1).
	OpenFADiscountPct float64 `koanf:"open_fa_discount_pct"`

	// BidQueueSize bounds the in-memory bid-group queue.
	BidQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of market evaluation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the bid deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the session store.
	ShardCount int `koanf:"shard_count"`

	// DBPath enables the sqlite archive when non-empty.
	DBPath string `koanf:"db_path"`

	// CacheTTLSeconds bounds how long derived values (ratings, floors,
	// personalities) stay cached.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		SalaryCap:            250_000_000,
		MaxContractYears:     7,
		ShortlistSize:        3,
		FACycles:             4,
		CycleIntervalSeconds: 3600,
		LeagueYear:           2026,
		OpenFADiscountPct:    0.10,
		BidQueueSize:         100_000,
		WorkerCount:          runtime.NumCPU() * 4,
		DedupeSize:           500_000,
		ShardCount:           8,
		DBPath:               "",
		CacheTTLSeconds:      300,
	}
}
