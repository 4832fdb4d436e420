// Package contract defines the contract data model and salary-cap arithmetic.
//
// All money values are whole-unit int64 amounts. Division happens only where
// the league rules call for it (bonus proration) and truncation is bounded by
// the proration invariant: the per-year prorations sum back to the signing
// bonus within one unit per amortization year.
package contract

import (
	"fmt"
)

// MaxContractYears is the league-wide ceiling on contract length.
const MaxContractYears = 7

// Position is the closed set of roster positions.
type Position string

// Roster positions.
const (
	QB   Position = "QB"
	RB   Position = "RB"
	WR   Position = "WR"
	TE   Position = "TE"
	OT   Position = "OT"
	OG   Position = "OG"
	C    Position = "C"
	EDGE Position = "EDGE"
	DT   Position = "DT"
	LB   Position = "LB"
	CB   Position = "CB"
	S    Position = "S"
	K    Position = "K"
	P    Position = "P"
)

// Positions lists every valid position in a stable order.
func Positions() []Position {
	return []Position{QB, RB, WR, TE, OT, OG, C, EDGE, DT, LB, CB, S, K, P}
}

// ValidPosition reports whether p belongs to the closed position set.
func ValidPosition(p Position) bool {
	switch p {
	case QB, RB, WR, TE, OT, OG, C, EDGE, DT, LB, CB, S, K, P:
		return true
	default:
		return false
	}
}

// GuaranteeType classifies how a guarantee vests.
type GuaranteeType string

// Guarantee types.
const (
	GuaranteeFull   GuaranteeType = "full"
	GuaranteeInjury GuaranteeType = "injury"
	GuaranteeRoster GuaranteeType = "roster"
)

// Guarantee is a guaranteed amount attached to a specific contract year.
type Guarantee struct {
	Type   GuaranteeType `json:"type" db:"type"`
	Amount int64         `json:"amount" db:"amount"`
	Year   int           `json:"year" db:"year"`
}

// Contract is a signed or proposed deal between one player and one team over
// a contiguous inclusive year range. Immutable once signed; cut/trade events
// compute dead money and terminate it early.
type Contract struct {
	PlayerID     string        `json:"player_id"`
	TeamID       string        `json:"team_id"`
	StartYear    int           `json:"start_year"`
	EndYear      int           `json:"end_year"`
	BaseSalary   map[int]int64 `json:"base_salary"`
	SigningBonus int64         `json:"signing_bonus"`
	Guarantees   []Guarantee   `json:"guarantees,omitempty"`
}

// Length returns the number of contract years, 0 for an inverted range.
func (c Contract) Length() int {
	if c.EndYear < c.StartYear {
		return 0
	}
	return c.EndYear - c.StartYear + 1
}

// InRange reports whether year falls inside the contract's year range.
func (c Contract) InRange(year int) bool {
	return year >= c.StartYear && year <= c.EndYear
}

// TotalValue is the sum of all base salaries plus the signing bonus.
func (c Contract) TotalValue() int64 {
	total := c.SigningBonus
	for year := c.StartYear; year <= c.EndYear; year++ {
		total += c.BaseSalary[year]
	}
	return total
}

// AAV is the average annual value: total value divided by length.
// Returns 0 for a zero-length contract.
func (c Contract) AAV() int64 {
	n := c.Length()
	if n == 0 {
		return 0
	}
	return c.TotalValue() / int64(n)
}

// Validate returns a list of structural violations. An empty list means the
// contract is well-formed. Never panics on malformed input.
func Validate(c Contract) []string {
	var errs []string

	if c.EndYear < c.StartYear {
		errs = append(errs, fmt.Sprintf("start year %d is after end year %d", c.StartYear, c.EndYear))
		return errs // year-by-year checks are meaningless on an inverted range
	}
	if c.Length() > MaxContractYears {
		errs = append(errs, fmt.Sprintf("contract length %d exceeds maximum of %d years", c.Length(), MaxContractYears))
	}
	if c.SigningBonus < 0 {
		errs = append(errs, fmt.Sprintf("signing bonus %d is negative", c.SigningBonus))
	}

	for year := c.StartYear; year <= c.EndYear; year++ {
		salary, ok := c.BaseSalary[year]
		if !ok {
			errs = append(errs, fmt.Sprintf("no base salary defined for year %d", year))
			continue
		}
		if salary < 0 {
			errs = append(errs, fmt.Sprintf("base salary %d for year %d is negative", salary, year))
		}
	}

	for i, g := range c.Guarantees {
		if g.Year < c.StartYear || g.Year > c.EndYear {
			errs = append(errs, fmt.Sprintf("guarantee %d year %d is outside contract range %d-%d", i, g.Year, c.StartYear, c.EndYear))
		}
		if g.Amount < 0 {
			errs = append(errs, fmt.Sprintf("guarantee %d amount %d is negative", i, g.Amount))
		}
	}

	return errs
}

// Player is the immutable view of a player during a negotiation or market
// cycle. Overall and personality are derived elsewhere, not authoritative.
type Player struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Age      int      `json:"age"`
	Position Position `json:"position"`
	Overall  int      `json:"overall"`
	YearsExp int      `json:"years_exp"`
}

// Team holds the cap state mutated by signings and cuts.
type Team struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	CapSpace   int64   `json:"cap_space"`
	TrustScore float64 `json:"trust_score"`
}
