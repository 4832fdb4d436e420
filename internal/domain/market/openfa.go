package market

import (
	"math"

	"github.com/okian/frontoffice/internal/domain/contract"
)

// OpenFAPrice is the discounted one-year price for a player who went
// unsigned through the configured number of market cycles. discountPct is a
// fraction in [0,1).
func OpenFAPrice(player contract.Player, ctx Context, discountPct float64) int64 {
	expected := ExpectedAAV(player, ctx)
	if expected <= 0 {
		return 0
	}
	return int64(math.Round(float64(expected) * (1 - discountPct)))
}

// OpenFAContract builds the direct-assignment deal: one year, no bonus, no
// guarantees, priced at the discounted market rate. This path bypasses
// negotiation sessions entirely; the first team asking with cap room signs
// the player as-is.
func OpenFAContract(player contract.Player, ctx Context, teamID string, year int, discountPct float64) (contract.Contract, error) {
	price := OpenFAPrice(player, ctx, discountPct)
	if price <= 0 {
		return contract.Contract{}, ErrNoMarket
	}
	return contract.Contract{
		PlayerID:  player.ID,
		TeamID:    teamID,
		StartYear: year,
		EndYear:   year,
		BaseSalary: map[int]int64{
			year: price,
		},
	}, nil
}
