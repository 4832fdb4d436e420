package negotiation

import (
	"math"

	"github.com/google/uuid"

	"github.com/okian/frontoffice/internal/domain/contract"
	"github.com/okian/frontoffice/internal/domain/persona"
)

// Empirically tuned constants. These have no derivation; they are preserved
// as configuration rather than re-derived.
const (
	// Reservation seeding.
	aavPerOverallPoint = 100_000
	riskAAVBase        = 0.9 // aav multiplier = riskAAVBase + risk*riskAAVSpan
	riskAAVSpan        = 0.2
	gtdFloorBase       = 0.4 // gtd floor = gtdFloorBase + (1-risk)*gtdFloorSpan
	gtdFloorSpan       = 0.4

	// Ask anchor inflation per point of agent quality.
	askAAVInflation = 0.15
	askGtdInflation = 0.10

	// Patience.
	basePatience        = 4
	patienceAgentFactor = 2

	// Acceptance threshold.
	baseAcceptThreshold   = 0.95
	patienceThresholdStep = 0.05
	patiencePivot         = 5
	agentThresholdBonus   = 0.1
	noCompetitionDiscount = 0.1
	minAcceptThreshold    = 0.8
	maxAcceptThreshold    = 1.1

	// Utility scaling.
	toughnessBase = 0.8
	toughnessSpan = 0.4

	// Market pressure.
	competingOfferPressure = 0.1
	demandPressure         = 0.2
	capPressureCeiling     = 0.3
	capPressureScale       = 100_000_000
	maxMarketPressure      = 0.5

	// Lowball detection and reservation drift.
	lowballAAVRatio   = 0.85
	lowballGtdRatio   = 0.80
	aavDriftOnLowball = 1.06
	gtdDriftOnLowball = 1.05
	gtdCeiling        = 0.95

	// Counter gap closing rates.
	aavCloseRate   = 0.75
	gtdCloseRate   = 0.85
	yearsCloseRate = 0.5
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMaxContractYears caps the preferred length a session asks for.
func WithMaxContractYears(years int) Option {
	return func(e *Engine) {
		if years > 0 && years <= contract.MaxContractYears {
			e.maxYears = years
		}
	}
}

// Engine evaluates offers against negotiation sessions. Stateless: all
// mutable state lives in the Session values it transforms.
type Engine struct {
	maxYears int
}

// NewEngine creates an engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		maxYears: contract.MaxContractYears,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewSession seeds a fresh active session for the player/team pair.
//
// The reservation anchors on overall x 100,000: risk-tolerant players bet on
// themselves and demand more per year, risk-averse players demand guarantees
// instead. Security preference drives the preferred length; the ask anchor
// inflates the reservation by agent quality.
func (e *Engine) NewSession(player contract.Player, p persona.Personality, teamID string) Session {
	baseAAV := float64(player.Overall) * aavPerOverallPoint

	reservation := Terms{
		AAV:    int64(math.Round(baseAAV * (riskAAVBase + p.RiskTolerance*riskAAVSpan))),
		GtdPct: gtdFloorBase + (1-p.RiskTolerance)*gtdFloorSpan,
		Years:  clampInt(1+int(math.Round(p.SecurityPref*float64(e.maxYears-1))), 1, e.maxYears),
	}

	ask := Terms{
		AAV:    int64(math.Round(float64(reservation.AAV) * (1 + askAAVInflation*p.AgentQuality))),
		GtdPct: math.Min(gtdCeiling, reservation.GtdPct+askGtdInflation*p.AgentQuality),
		Years:  clampInt(reservation.Years+1, 1, e.maxYears),
	}

	return Session{
		ID:          uuid.New(),
		PlayerID:    player.ID,
		TeamID:      teamID,
		Round:       1,
		Reservation: reservation,
		AskAnchor:   ask,
		Patience:    basePatience + int(p.AgentQuality*patienceAgentFactor),
		Status:      StatusActive,
	}
}

// EvaluateOffer runs one negotiation round. Pure transition: the input
// session is not mutated; the returned Result carries the updated session.
// Counter-acceptance is not a separate path: resubmit the counter's terms as
// the next offer.
func (e *Engine) EvaluateOffer(s Session, player contract.Player, p persona.Personality, offer Terms, mkt MarketContext) Result {
	if s.PlayerID == "" {
		return Result{Reason: "no session", Session: s}
	}
	if s.Terminal() {
		return Result{Reason: "session is " + string(s.Status), Session: s}
	}
	if s.Patience <= 0 {
		// Expiry happens on the counter path and patience floors at 1 on
		// lowballs, so an active session at zero patience should not occur.
		// Refuse without mutating: non-OK results are never persisted.
		return Result{Reason: "patience exhausted", Session: s}
	}

	utility := e.offerUtility(offer, s.Reservation, p)
	pressure := marketPressure(mkt)
	adjusted := utility + pressure
	threshold := acceptThreshold(s.Patience, p.AgentQuality, mkt.CompetingOffers)

	s.History = append(s.History, Event{Round: s.Round, Kind: EventOffer, Terms: offer})

	if adjusted >= threshold {
		s.Status = StatusAccepted
		msg := acceptanceMessage(player, p, offer)
		s.History = append(s.History, Event{Round: s.Round, Kind: EventAccept, Terms: offer, Note: msg})
		return Result{
			OK:             true,
			Accepted:       true,
			Message:        msg,
			Session:        s,
			Utility:        utility,
			MarketPressure: pressure,
		}
	}

	if isLowball(offer, s.Reservation) {
		// Insulting offers harden the player's position instead of drawing a
		// counter. Patience floors at 1: a lowball alone never ends a session.
		s.Reservation.AAV = int64(math.Round(float64(s.Reservation.AAV) * aavDriftOnLowball))
		s.Reservation.GtdPct = math.Min(gtdCeiling, s.Reservation.GtdPct*gtdDriftOnLowball)
		s.Patience = maxInt(1, s.Patience-1)
		s.Round++
		msg := lowballMessage(player, p, offer, s.Reservation)
		s.History = append(s.History, Event{Round: s.Round - 1, Kind: EventDecline, Terms: offer, Note: msg})
		return Result{
			OK:             true,
			Message:        msg,
			Session:        s,
			Utility:        utility,
			MarketPressure: pressure,
		}
	}

	s.Patience--
	s.Round++

	if s.Patience <= 0 {
		s.Status = StatusExpired
		msg := expiryMessage(player)
		s.History = append(s.History, Event{Round: s.Round - 1, Kind: EventExpire, Terms: offer, Note: msg})
		return Result{
			OK:             true,
			Message:        msg,
			Session:        s,
			Utility:        utility,
			MarketPressure: pressure,
		}
	}

	counter, dim := e.counterOffer(offer, s.Reservation)
	msg := counterMessage(player, dim, counter)
	s.History = append(s.History, Event{Round: s.Round - 1, Kind: EventCounter, Terms: counter, Note: msg})
	return Result{
		OK:             true,
		Counter:        &counter,
		Message:        msg,
		Session:        s,
		Utility:        utility,
		MarketPressure: pressure,
	}
}

// Decline terminates a session from the team side. No-op on terminal
// sessions.
func (e *Engine) Decline(s Session) Session {
	if s.Terminal() {
		return s
	}
	s.Status = StatusDeclined
	s.History = append(s.History, Event{Round: s.Round, Kind: EventDecline, Note: "team withdrew"})
	return s
}

// offerUtility is the player's weighted satisfaction with the offer,
// normalized over the personality weights and scaled by agent toughness.
func (e *Engine) offerUtility(offer, reservation Terms, p persona.Personality) float64 {
	wMoney := p.MoneyVsRole
	wGtd := 1 - p.RiskTolerance
	wYears := p.SecurityPref
	total := wMoney + wGtd + wYears
	if total <= 0 {
		return 0
	}

	sum := wMoney*cappedRatio(float64(offer.AAV), float64(reservation.AAV)) +
		wGtd*cappedRatio(offer.GtdPct, reservation.GtdPct) +
		wYears*cappedRatio(float64(offer.Years), float64(reservation.Years))

	toughness := toughnessBase + p.AgentQuality*toughnessSpan
	return sum / total * toughness
}

// marketPressure aggregates how much the market pushes the player toward
// signing, capped at 0.5.
func marketPressure(mkt MarketContext) float64 {
	pressure := float64(mkt.CompetingOffers)*competingOfferPressure +
		mkt.PositionalDemand*demandPressure +
		math.Min(capPressureCeiling, float64(mkt.CapSpaceAvailable)/capPressureScale) +
		mkt.Stage.Bonus()
	return math.Min(maxMarketPressure, pressure)
}

// acceptThreshold computes the bar adjustedUtility must clear. Desperation
// (low patience) lowers it, a good agent raises it, and a market with no
// competing offers lowers it again.
func acceptThreshold(patience int, agentQuality float64, competingOffers int) float64 {
	threshold := baseAcceptThreshold -
		patienceThresholdStep*float64(patiencePivot-patience) +
		agentQuality*agentThresholdBonus
	if competingOffers == 0 {
		threshold -= noCompetitionDiscount
	}
	return math.Max(minAcceptThreshold, math.Min(maxAcceptThreshold, threshold))
}

// isLowball tests the insult thresholds.
func isLowball(offer, reservation Terms) bool {
	return cappedRatio(float64(offer.AAV), float64(reservation.AAV)) < lowballAAVRatio ||
		cappedRatio(offer.GtdPct, reservation.GtdPct) < lowballGtdRatio
}

// counterOffer closes the gaps between the offer and the reservation, and
// reports which dimension had the largest relative gap for messaging.
func (e *Engine) counterOffer(offer, reservation Terms) (Terms, string) {
	gapAAV := relativeGap(float64(offer.AAV), float64(reservation.AAV))
	gapGtd := relativeGap(offer.GtdPct, reservation.GtdPct)
	gapYears := relativeGap(float64(offer.Years), float64(reservation.Years))

	counter := offer
	if offer.AAV < reservation.AAV {
		counter.AAV = offer.AAV + int64(math.Round(aavCloseRate*float64(reservation.AAV-offer.AAV)))
	}
	if offer.GtdPct < reservation.GtdPct {
		counter.GtdPct = offer.GtdPct + gtdCloseRate*(reservation.GtdPct-offer.GtdPct)
	}
	if offer.Years < reservation.Years {
		counter.Years = offer.Years + int(math.Ceil(yearsCloseRate*float64(reservation.Years-offer.Years)))
	}

	dim := "aav"
	largest := gapAAV
	if gapGtd > largest {
		dim, largest = "gtd", gapGtd
	}
	if gapYears > largest {
		dim = "years"
	}
	return counter, dim
}

// cappedRatio returns min(1, value/reference). A non-positive reference is a
// demand already met, so it counts as fully satisfied.
func cappedRatio(value, reference float64) float64 {
	if reference <= 0 {
		return 1
	}
	return math.Min(1, value/reference)
}

// relativeGap is how far value falls short of reference, as a fraction.
func relativeGap(value, reference float64) float64 {
	if reference <= 0 {
		return 0
	}
	gap := 1 - value/reference
	if gap < 0 {
		return 0
	}
	return gap
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
