// Package negotiation owns the per-(player,team) contract negotiation
// session state machine: offer evaluation, counter generation, reservation
// drift, and expiry.
//
// Sessions are value objects. Every transition returns a new Session; the
// caller persists it and detects stale writes by comparing Round/Status.
package negotiation

import (
	"github.com/google/uuid"
)

// Status is the session lifecycle state.
type Status string

// Session states. Accepted, declined and expired are terminal: no transition
// leaves them.
const (
	StatusActive   Status = "active"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusExpired  Status = "expired"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusDeclined || s == StatusExpired
}

// Stage is the point in the league calendar a negotiation happens at.
type Stage string

// Season stages, in calendar order. Later stages press harder on players.
const (
	StageEarlyFA   Stage = "early_fa"
	StageMidFA     Stage = "mid_fa"
	StageCamp      Stage = "camp"
	StageMidSeason Stage = "mid_season"
)

// Bonus returns the stage's contribution to market pressure.
func (s Stage) Bonus() float64 {
	switch s {
	case StageEarlyFA:
		return 0.1
	case StageMidFA:
		return 0.2
	case StageCamp:
		return 0.3
	case StageMidSeason:
		return 0.4
	default:
		return 0
	}
}

// MarketContext is the read-only market snapshot passed into every
// evaluation.
type MarketContext struct {
	CompetingOffers   int     `json:"competing_offers"`
	PositionalDemand  float64 `json:"positional_demand"` // [0,1]
	CapSpaceAvailable int64   `json:"cap_space_available"`
	Stage             Stage   `json:"stage"`
	Comparables       []int64 `json:"comparables,omitempty"`
	TeamReputation    float64 `json:"team_reputation"`
}

// Terms are the three negotiated dimensions of a deal.
type Terms struct {
	AAV    int64   `json:"aav"`
	GtdPct float64 `json:"gtd_pct"` // guaranteed money as a fraction of total value
	Years  int     `json:"years"`
}

// EventKind tags a history entry.
type EventKind string

// History event kinds.
const (
	EventOffer   EventKind = "offer"
	EventCounter EventKind = "counter"
	EventAccept  EventKind = "accept"
	EventDecline EventKind = "decline"
	EventExpire  EventKind = "expire"
)

// Event is one entry in a session's ordered history.
type Event struct {
	Round int       `json:"round"`
	Kind  EventKind `json:"kind"`
	Terms Terms     `json:"terms"`
	Note  string    `json:"note,omitempty"`
}

// Session is the mutable record of one negotiation between one player and
// one team.
type Session struct {
	ID          uuid.UUID `json:"id"`
	PlayerID    string    `json:"player_id"`
	TeamID      string    `json:"team_id"`
	Round       int       `json:"round"`
	Reservation Terms     `json:"reservation"` // drifts upward on lowballs, never downward
	AskAnchor   Terms     `json:"ask_anchor"`  // fixed at creation
	Patience    int       `json:"patience"`
	History     []Event   `json:"history"`
	Status      Status    `json:"status"`
}

// Terminal reports whether the session accepts no further offers.
func (s Session) Terminal() bool {
	return s.Status.Terminal()
}

// Result is what an offer evaluation produces. OK is false only for
// precondition failures (missing or terminal session); domain outcomes like
// rejection are OK results with Accepted false.
type Result struct {
	OK             bool    `json:"ok"`
	Reason         string  `json:"reason,omitempty"`
	Accepted       bool    `json:"accepted"`
	Counter        *Terms  `json:"counter,omitempty"`
	Message        string  `json:"message"`
	Session        Session `json:"session"`
	Utility        float64 `json:"utility"`
	MarketPressure float64 `json:"market_pressure"`
}
