package market

import "errors"

// Sentinel errors for market clearing.
var (
	// ErrNoBids indicates a player had no bids to evaluate this cycle.
	ErrNoBids = errors.New("no bids for player")

	// ErrNoMarket indicates the player has no expected price to sign at.
	ErrNoMarket = errors.New("player has no market value")
)
