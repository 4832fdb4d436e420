// Cap ledger arithmetic: proration, cap hits, dead money, affordability.
package contract

// prorationCapYears is the league rule: signing bonuses amortize over at
// most this many contract years.
const prorationCapYears = 5

// ProrationYears returns the number of years the signing bonus amortizes
// over: min(contract length, 5).
func ProrationYears(c Contract) int {
	n := c.Length()
	if n > prorationCapYears {
		return prorationCapYears
	}
	return n
}

// ProratedBonus returns the signing-bonus charge for the given year: the
// bonus split evenly across the amortization window. Years past the window
// (years 6 and 7 of a long deal) and years outside the contract carry none.
func ProratedBonus(c Contract, year int) int64 {
	if c.SigningBonus == 0 || !c.InRange(year) {
		return 0
	}
	n := ProrationYears(c)
	if n == 0 {
		return 0
	}
	if year >= c.StartYear+n {
		return 0
	}
	return c.SigningBonus / int64(n)
}

// CapHit returns what the contract counts against the cap in the given year:
// base salary plus prorated bonus, 0 outside the contract range.
func CapHit(c Contract, year int) int64 {
	if !c.InRange(year) {
		return 0
	}
	return c.BaseSalary[year] + ProratedBonus(c, year)
}

// DeadMoneyResult breaks down the cap charge left behind by a cut.
type DeadMoneyResult struct {
	CurrentYear    int64 `json:"current_year"`
	NextYear       int64 `json:"next_year"`
	RemainingBonus int64 `json:"remaining_bonus"`
}

// DeadMoney computes the unamortized signing bonus that accelerates onto the
// cap when the contract is terminated in cutYear.
//
// Pre-June-1: all remaining bonus lands in the cut year. Post-June-1: the cut
// year keeps its own one-year proration (when still inside the amortization
// window) and the rest accelerates into the following year, floored at 0.
// Invariant: CurrentYear + NextYear == RemainingBonus.
func DeadMoney(c Contract, cutYear int, preJune1 bool) DeadMoneyResult {
	if c.SigningBonus == 0 || cutYear > c.EndYear {
		return DeadMoneyResult{}
	}

	perYear := c.SigningBonus / int64(ProrationYears(c))

	// Years amortized before the cut year, bounded by the window.
	amortized := cutYear - c.StartYear
	if amortized < 0 {
		amortized = 0
	}
	if amortized > ProrationYears(c) {
		amortized = ProrationYears(c)
	}

	remaining := c.SigningBonus - perYear*int64(amortized)
	if remaining < 0 {
		remaining = 0
	}
	if remaining == 0 {
		return DeadMoneyResult{}
	}

	if preJune1 {
		return DeadMoneyResult{CurrentYear: remaining, RemainingBonus: remaining}
	}

	current := int64(0)
	if c.InRange(cutYear) && cutYear < c.StartYear+ProrationYears(c) {
		current = perYear
	}
	next := remaining - current
	if next < 0 {
		next = 0
	}
	return DeadMoneyResult{CurrentYear: current, NextYear: next, RemainingBonus: remaining}
}

// GuaranteedMoney sums guarantee amounts vesting in or before the given year.
func GuaranteedMoney(c Contract, year int) int64 {
	var total int64
	for _, g := range c.Guarantees {
		if g.Year <= year {
			total += g.Amount
		}
	}
	return total
}

// GuaranteedPct returns guaranteed money through the final year as a fraction
// of total value, 0 when the contract has no value.
func GuaranteedPct(c Contract) float64 {
	total := c.TotalValue()
	if total == 0 {
		return 0
	}
	return float64(GuaranteedMoney(c, c.EndYear)) / float64(total)
}

// AffordabilityResult carries the numeric breakdown of a cap check so callers
// can render diagnostics. It is always populated, even when unaffordable.
type AffordabilityResult struct {
	Affordable bool  `json:"affordable"`
	CurrentHit int64 `json:"current_hit"`
	NewHit     int64 `json:"new_hit"`
	TotalHit   int64 `json:"total_hit"`
	Remaining  int64 `json:"remaining"`
}

// CanAffordByYear sums the cap hits of all existing contracts for the year,
// adds the new contract's hit, and compares against the salary cap.
func CanAffordByYear(newContract Contract, existing []Contract, year int, salaryCap int64) AffordabilityResult {
	var current int64
	for _, c := range existing {
		current += CapHit(c, year)
	}
	newHit := CapHit(newContract, year)
	total := current + newHit
	return AffordabilityResult{
		Affordable: total <= salaryCap,
		CurrentHit: current,
		NewHit:     newHit,
		TotalHit:   total,
		Remaining:  salaryCap - total,
	}
}

// CanAfford checks the new contract's first-year hit against a team's
// remaining cap space.
func CanAfford(team Team, c Contract, year int) AffordabilityResult {
	hit := CapHit(c, year)
	return AffordabilityResult{
		Affordable: hit <= team.CapSpace,
		CurrentHit: 0,
		NewHit:     hit,
		TotalHit:   hit,
		Remaining:  team.CapSpace - hit,
	}
}
