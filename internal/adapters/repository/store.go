// Package repository defines the league state store interface and errors.
//
// The store holds the one mutable record of the system (negotiation
// sessions) plus signed contracts and team trust. Session writes are
// compare-and-swap on the session round so racing callers surface as
// ErrStaleSession instead of lost updates.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/okian/frontoffice/internal/domain/contract"
	"github.com/okian/frontoffice/internal/domain/negotiation"
)

// SignedContract is a contract on the books, with its store identity.
type SignedContract struct {
	ID       uuid.UUID
	Contract contract.Contract
}

// Store provides read/write access to league state.
type Store interface {
	// GetSession returns the session for the (player, team) pair.
	// Returns ErrNotFound if no session exists.
	GetSession(ctx context.Context, playerID, teamID string) (negotiation.Session, error)

	// SaveSession persists a session transition. expectedRound is the round
	// the caller read the session at: 0 creates (failing with
	// ErrSessionExists when one is already present), any other value must
	// match the stored round or the write fails with ErrStaleSession.
	SaveSession(ctx context.Context, s negotiation.Session, expectedRound int) error

	// DeleteSession removes the session for the pair. Missing sessions are
	// not an error.
	DeleteSession(ctx context.Context, playerID, teamID string) error

	// Sessions returns every tracked session, ordered by (player, team) key
	// for stable iteration.
	Sessions(ctx context.Context) ([]negotiation.Session, error)

	// AppendContract puts a signed contract on the books.
	AppendContract(ctx context.Context, c contract.Contract) (uuid.UUID, error)

	// GetContract returns a signed contract by id.
	// Returns ErrNotFound for unknown ids.
	GetContract(ctx context.Context, id uuid.UUID) (SignedContract, error)

	// RemoveContract takes a contract off the books (player cut or traded).
	RemoveContract(ctx context.Context, id uuid.UUID) error

	// ContractsByTeam returns a team's signed contracts, newest last.
	ContractsByTeam(ctx context.Context, teamID string) ([]SignedContract, error)

	// Contracts returns every signed contract on the books, ordered by id
	// for stable iteration.
	Contracts(ctx context.Context) ([]SignedContract, error)

	// Trust returns the team's accumulated trust score; unknown teams are
	// neutral zero.
	Trust(ctx context.Context, teamID string) float64

	// ApplyTrustDelta shifts a team's trust and returns the new value.
	ApplyTrustDelta(ctx context.Context, teamID string, delta float64) float64

	// AddDeadMoney charges dead money left by a cut against a team's cap
	// for the given year and returns the year's new total.
	AddDeadMoney(ctx context.Context, teamID string, year int, amount int64) int64

	// DeadMoney returns the team's accumulated dead-money charge for the
	// year; unknown teams and years are zero.
	DeadMoney(ctx context.Context, teamID string, year int) int64

	// SessionCount and ContractCount report store sizes for monitoring.
	SessionCount(ctx context.Context) int
	ContractCount(ctx context.Context) int
}
