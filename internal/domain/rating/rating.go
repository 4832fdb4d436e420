// Package rating converts raw season statistics into a bounded 50-99 overall
// rating per position family.
package rating

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/frontoffice/internal/domain/contract"
)

// Rating bounds. Every rated player lands inside this band.
const (
	MinOverall = 50
	MaxOverall = 99
)

// Family groups positions that share a production profile.
type Family string

// Position families.
const (
	FamilyPasser     Family = "passer"
	FamilyRunner     Family = "runner"
	FamilyCatcher    Family = "catcher"
	FamilyBlocker    Family = "blocker"
	FamilyRusher     Family = "rusher"
	FamilyDefender   Family = "defender"
	FamilySpecialist Family = "specialist"
)

// FamilyOf maps a position to its family. Total over the closed position set.
func FamilyOf(p contract.Position) Family {
	switch p {
	case contract.QB:
		return FamilyPasser
	case contract.RB:
		return FamilyRunner
	case contract.WR, contract.TE:
		return FamilyCatcher
	case contract.OT, contract.OG, contract.C:
		return FamilyBlocker
	case contract.EDGE, contract.DT:
		return FamilyRusher
	case contract.LB, contract.CB, contract.S:
		return FamilyDefender
	default:
		return FamilySpecialist
	}
}

// SeasonStats holds raw per-season counters. Fields irrelevant to a player's
// family stay zero.
type SeasonStats struct {
	Games         int     `json:"games"`
	Snaps         int     `json:"snaps"`
	PassYards     int     `json:"pass_yards"`
	PassTD        int     `json:"pass_td"`
	Interceptions int     `json:"interceptions"`
	RushYards     int     `json:"rush_yards"`
	RushTD        int     `json:"rush_td"`
	Receptions    int     `json:"receptions"`
	RecYards      int     `json:"rec_yards"`
	RecTD         int     `json:"rec_td"`
	SacksAllowed  int     `json:"sacks_allowed"`
	Tackles       int     `json:"tackles"`
	Sacks         float64 `json:"sacks"`
	Pressures     int     `json:"pressures"`
	Takeaways     int     `json:"takeaways"`
	KickPoints    int     `json:"kick_points"`
	PuntAvg       float64 `json:"punt_avg"`
}

// Rating is the computed value of a player for one season.
type Rating struct {
	PlayerID string  `json:"player_id"`
	Family   Family  `json:"family"`
	Score    float64 `json:"score"` // normalized production in [0,1]
	Overall  int     `json:"overall"`
}

// Valuer computes a rating from season statistics.
type Valuer interface {
	Rate(ctx context.Context, player contract.Player, stats SeasonStats) (Rating, error)
}

// Option applies a configuration option to the InMemoryValuer.
type Option func(*InMemoryValuer)

// WithFamilyScale multiplies the raw production score of a family before it
// maps into the 50-99 band. Scales <= 0 are ignored.
func WithFamilyScale(f Family, scale float64) Option {
	return func(v *InMemoryValuer) {
		if scale > 0 {
			v.familyScale[f] = scale
		}
	}
}

// InMemoryValuer implements Valuer with fixed per-family normalization
// benchmarks. Deterministic and total: identical inputs always produce the
// identical rating.
type InMemoryValuer struct {
	familyScale map[Family]float64
}

// NewInMemoryValuer creates a valuer with configuration options.
func NewInMemoryValuer(opts ...Option) *InMemoryValuer {
	v := &InMemoryValuer{
		familyScale: make(map[Family]float64),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Rate computes the player's overall for the season.
func (v *InMemoryValuer) Rate(_ context.Context, player contract.Player, stats SeasonStats) (Rating, error) {
	if !contract.ValidPosition(player.Position) {
		return Rating{}, fmt.Errorf("%w: %q", ErrUnknownPosition, player.Position)
	}

	family := FamilyOf(player.Position)
	score := productionScore(family, stats)

	// No sample: floor rating plus a small prime-age prior so an unrated
	// 25-year-old is not priced like an unrated 35-year-old.
	if stats.Games == 0 {
		prior := 0.0
		if player.Age >= 23 && player.Age <= 27 {
			prior = 0.04
		}
		score = prior
	}

	if scale, ok := v.familyScale[family]; ok {
		score *= scale
	}
	score = clamp01(score)

	return Rating{
		PlayerID: player.ID,
		Family:   family,
		Score:    score,
		Overall:  MinOverall + int(math.Round(score*float64(MaxOverall-MinOverall))),
	}, nil
}

// Normalization benchmarks: a season at the benchmark in every component
// rates at the top of the band.
func productionScore(f Family, s SeasonStats) float64 {
	switch f {
	case FamilyPasser:
		return 0.45*ratio(float64(s.PassYards), 5000) +
			0.35*ratio(float64(s.PassTD), 45) +
			0.20*(1-ratio(float64(s.Interceptions), 25))
	case FamilyRunner:
		return 0.50*ratio(float64(s.RushYards), 1800) +
			0.30*ratio(float64(s.RushTD), 18) +
			0.20*ratio(float64(s.Receptions), 80)
	case FamilyCatcher:
		return 0.50*ratio(float64(s.RecYards), 1600) +
			0.30*ratio(float64(s.RecTD), 15) +
			0.20*ratio(float64(s.Receptions), 110)
	case FamilyBlocker:
		return 0.60*ratio(float64(s.Snaps), 1100) +
			0.40*(1-ratio(float64(s.SacksAllowed), 12))
	case FamilyRusher:
		return 0.50*ratio(s.Sacks, 18) +
			0.30*ratio(float64(s.Pressures), 80) +
			0.20*ratio(float64(s.Tackles), 60)
	case FamilyDefender:
		return 0.40*ratio(float64(s.Tackles), 140) +
			0.35*ratio(float64(s.Takeaways), 6) +
			0.25*ratio(s.Sacks, 8)
	default: // FamilySpecialist
		return 0.60*ratio(float64(s.KickPoints), 150) +
			0.40*ratio(s.PuntAvg, 50)
	}
}

func ratio(value, benchmark float64) float64 {
	if benchmark <= 0 {
		return 0
	}
	return clamp01(value / benchmark)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
