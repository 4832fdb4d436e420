// Package wage computes the floor contract value a player will accept and
// the rookie draft-slot scale.
package wage

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/okian/frontoffice/internal/domain/contract"
)

// Tier buckets players by market standing.
type Tier string

// Player tiers.
const (
	TierElite   Tier = "elite"
	TierStarter Tier = "starter"
	TierDepth   Tier = "depth"
)

// Fraction of the salary cap each tier's floor starts from.
const (
	eliteBase   = 0.20
	starterBase = 0.10
	depthBase   = 0.03
)

// udfaPct is the fallback percentage of cap for undrafted players and
// unlisted rounds.
const udfaPct = 0.0035

// TierOf buckets a player. Total: every (overall, yearsExp) pair lands in a
// tier.
func TierOf(overall, yearsExp int) Tier {
	switch {
	case overall >= 85, yearsExp >= 3 && overall >= 80:
		return TierElite
	case overall >= 75, yearsExp <= 2 && overall >= 70:
		return TierStarter
	default:
		return TierDepth
	}
}

func tierBase(t Tier) float64 {
	switch t {
	case TierElite:
		return eliteBase
	case TierStarter:
		return starterBase
	default:
		return depthBase
	}
}

// ageModifier discounts the floor as a player ages out of their prime.
func ageModifier(age int) float64 {
	switch {
	case age < 24:
		return 0.8
	case age <= 29:
		return 1.0
	case age <= 33:
		return 0.7
	default:
		return 0.5
	}
}

// positionModifier is the fixed per-position market multiplier.
var positionModifier = map[contract.Position]float64{
	contract.QB:   1.80,
	contract.EDGE: 1.30,
	contract.OT:   1.25,
	contract.WR:   1.20,
	contract.CB:   1.15,
	contract.DT:   1.05,
	contract.S:    1.00,
	contract.TE:   0.95,
	contract.LB:   0.95,
	contract.OG:   0.90,
	contract.C:    0.90,
	contract.RB:   0.85,
	contract.K:    0.40,
	contract.P:    0.40,
}

// PositionModifier returns the market multiplier for a position, 1.0 for
// anything outside the closed set.
func PositionModifier(p contract.Position) float64 {
	if m, ok := positionModifier[p]; ok {
		return m
	}
	return 1.0
}

// MinimumVeteran computes the floor total contract value a veteran of the
// given tier, age and position will accept, rounded to the nearest whole
// unit.
func MinimumVeteran(tier Tier, age int, position contract.Position, salaryCap int64) int64 {
	floor := float64(salaryCap) * tierBase(tier) * ageModifier(age) * PositionModifier(position)
	return int64(math.Round(floor))
}

// rookieSlotPct is the rookie scale: percentage of cap by round, with round 1
// split by pick band.
func rookieSlotPct(round, pick int) float64 {
	switch round {
	case 1:
		switch {
		case pick >= 1 && pick <= 10:
			return 0.045
		case pick <= 20:
			return 0.030
		default:
			return 0.022
		}
	case 2:
		return 0.014
	case 3:
		return 0.009
	case 4:
		return 0.0065
	case 5:
		return 0.0052
	case 6:
		return 0.0045
	case 7:
		return 0.0040
	default:
		return udfaPct
	}
}

// MinimumRookie computes the draft-slot contract value. Unlisted rounds and
// undrafted players (round <= 0) fall back to the UDFA percentage.
func MinimumRookie(draftRound, pick int, salaryCap int64) int64 {
	return int64(math.Round(float64(salaryCap) * rookieSlotPct(draftRound, pick)))
}

// Verdict is the structured result of a minimum-wage validation. It is
// always returned fully populated; invalid input never raises.
type Verdict struct {
	IsValid         bool   `json:"is_valid"`
	MinimumRequired int64  `json:"minimum_required"`
	CurrentValue    int64  `json:"current_value"`
	Message         string `json:"message"`
}

// Validate compares a contract's total value against the applicable floor.
// Idempotent: identical inputs always produce the identical verdict.
func Validate(c contract.Contract, player contract.Player, salaryCap int64, isRookie bool, draftRound, pick int) Verdict {
	var minimum int64
	if isRookie {
		minimum = MinimumRookie(draftRound, pick, salaryCap)
	} else {
		tier := TierOf(player.Overall, player.YearsExp)
		minimum = MinimumVeteran(tier, player.Age, player.Position, salaryCap)
	}

	current := c.TotalValue()
	if current >= minimum {
		return Verdict{
			IsValid:         true,
			MinimumRequired: minimum,
			CurrentValue:    current,
			Message:         "contract meets the minimum",
		}
	}

	return Verdict{
		IsValid:         false,
		MinimumRequired: minimum,
		CurrentValue:    current,
		Message: fmt.Sprintf("contract value $%s is $%s short of the $%s floor",
			humanize.Comma(current), humanize.Comma(minimum-current), humanize.Comma(minimum)),
	}
}
