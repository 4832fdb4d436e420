package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if FRONTOFFICE_CONFIG is set
//  3. env (prefix FRONTOFFICE_)
func Load() (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("FRONTOFFICE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: FRONTOFFICE_SALARY_CAP, FRONTOFFICE_WORKER_COUNT, ...
	// Map env keys like FRONTOFFICE_SALARY_CAP -> salary_cap (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("FRONTOFFICE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "frontoffice_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SalaryCap <= 0:
		return fmt.Errorf("%w: salary_cap must be positive", ErrInvalidConfig)
	case c.MaxContractYears < 1 || c.MaxContractYears > 7:
		return fmt.Errorf("%w: max_contract_years must be in [1,7]", ErrInvalidConfig)
	case c.OpenFADiscountPct < 0 || c.OpenFADiscountPct >= 1:
		return fmt.Errorf("%w: open_fa_discount_pct must be in [0,1)", ErrInvalidConfig)
	case c.FACycles < 1:
		return fmt.Errorf("%w: fa_cycles must be at least 1", ErrInvalidConfig)
	case c.CycleIntervalSeconds < 1:
		return fmt.Errorf("%w: cycle_interval_seconds must be at least 1", ErrInvalidConfig)
	case c.LeagueYear < 1:
		return fmt.Errorf("%w: league_year must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be at least 1", ErrInvalidConfig)
	case c.ShardCount < 1:
		return fmt.Errorf("%w: shard_count must be at least 1", ErrInvalidConfig)
	}
	return nil
}
