package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNotStarted is returned when an operation runs before Start.
	ErrNotStarted = errors.New("service not started")

	// ErrUnknownPlayer is returned when no player is registered for the id.
	ErrUnknownPlayer = errors.New("unknown player")

	// ErrSessionActive is returned when a negotiation already exists for the
	// (player, team) pair and has not been declined.
	ErrSessionActive = errors.New("negotiation already active")

	// ErrInvalidBid is returned for structurally invalid bids.
	ErrInvalidBid = errors.New("invalid bid")

	// ErrDuplicateBid is returned when a bid id was already submitted.
	ErrDuplicateBid = errors.New("duplicate bid")

	// ErrBelowMinimum is returned when an accepted deal does not clear the
	// minimum-wage floor.
	ErrBelowMinimum = errors.New("contract below minimum wage floor")

	// ErrCapExceeded is returned when a signing does not fit under the cap.
	ErrCapExceeded = errors.New("salary cap exceeded")

	// ErrNotOpenFA is returned when a player has not spilled to open free
	// agency yet.
	ErrNotOpenFA = errors.New("player not in open free agency")
)
