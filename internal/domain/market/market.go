// Package market clears free agency: it prices players against the market,
// scores the bids submitted for each player, and decides per cycle who signs,
// who stays on a shortlist, and who gets turned down.
//
// Evaluation is pure and deterministic. Bid groups for different players
// share nothing but the read-only Context, so callers may evaluate them
// concurrently.
package market

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/okian/frontoffice/internal/domain/contract"
	"github.com/okian/frontoffice/internal/domain/negotiation"
)

const (
	aavPerOverallPoint = 100_000

	// Demand swings expected price ±20% around the neutral 0.5 point;
	// early free agency adds a 10% premium.
	demandSwing  = 0.4
	earlyFABonus = 1.1

	// Bid score weights.
	apyWeight    = 0.40
	gtdWeight    = 0.30
	lengthWeight = 0.20
	teamWeight   = 0.10

	// Team-context score is a neutral constant for now; an extension point
	// for contender status and scheme fit.
	neutralTeamScore = 0.5

	// Clearing.
	defaultAcceptThreshold = 0.70
	defaultShortlistSize   = 3
	trustPenalty           = -0.2
	trustReward            = 0.1

	// Age bands for preferred contract length.
	youngAgeMax     = 26
	oldAgeMin       = 30
	youngIdealYears = 3
	oldIdealYears   = 2
)

// Bid is one team's sealed contract offer for a free agent.
type Bid struct {
	ID       uuid.UUID         `json:"id"`
	PlayerID string            `json:"player_id"`
	TeamID   string            `json:"team_id"`
	Contract contract.Contract `json:"contract"`
}

// Context is the read-only market snapshot a cycle is evaluated under.
type Context struct {
	CompetingOffers   int               `json:"competing_offers"`
	PositionalDemand  float64           `json:"positional_demand"` // [0,1], 0.5 neutral
	CapSpaceAvailable int64             `json:"cap_space_available"`
	Stage             negotiation.Stage `json:"stage"`
	Comparables       []int64           `json:"comparables,omitempty"`
	TeamReputation    float64           `json:"team_reputation"`
}

// PlayerResult is the clearing outcome for one player's bid group.
type PlayerResult struct {
	PlayerID      string             `json:"player_id"`
	AcceptedBidID *uuid.UUID         `json:"accepted_bid_id,omitempty"`
	Shortlisted   []uuid.UUID        `json:"shortlisted"`
	Rejected      []uuid.UUID        `json:"rejected"`
	Feedback      string             `json:"feedback"`
	TrustImpact   map[string]float64 `json:"trust_impact"` // by team id
}

// Option applies a configuration option to the Evaluator.
type Option func(*Evaluator)

// WithShortlistSize sets how many runners-up survive a cycle.
func WithShortlistSize(n int) Option {
	return func(e *Evaluator) {
		if n >= 0 {
			e.shortlistSize = n
		}
	}
}

// WithAcceptThreshold sets the minimum top score that clears immediately.
func WithAcceptThreshold(t float64) Option {
	return func(e *Evaluator) {
		if t > 0 && t <= 1 {
			e.acceptThreshold = t
		}
	}
}

// Evaluator scores and clears bid groups. Stateless.
type Evaluator struct {
	shortlistSize   int
	acceptThreshold float64
}

// NewEvaluator creates an evaluator with configuration options.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		shortlistSize:   defaultShortlistSize,
		acceptThreshold: defaultAcceptThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExpectedAAV is the market-clearing price per year for the player under the
// given context. A zero-overall player has no market.
func ExpectedAAV(player contract.Player, ctx Context) int64 {
	if player.Overall <= 0 {
		return 0
	}
	price := float64(player.Overall) * aavPerOverallPoint
	price *= 1 + (ctx.PositionalDemand-0.5)*demandSwing
	if ctx.Stage == negotiation.StageEarlyFA {
		price *= earlyFABonus
	}
	return int64(math.Round(price))
}

// ScoreBid rates a single bid in [0,1]: money against the expected price,
// guarantee count, contract length against the player's age band, and team
// context.
func (e *Evaluator) ScoreBid(bid Bid, player contract.Player, ctx Context) float64 {
	expected := ExpectedAAV(player, ctx)

	moneyScore := 0.0
	if expected > 0 {
		moneyScore = math.Min(1, float64(bid.Contract.AAV())/float64(expected))
	}
	gtdScore := math.Min(1, float64(len(bid.Contract.Guarantees))/2)

	return apyWeight*moneyScore +
		gtdWeight*gtdScore +
		lengthWeight*lengthScore(player.Age, bid.Contract.Length()) +
		teamWeight*neutralTeamScore
}

// EvaluatePlayer clears one player's bid group. Bids are ranked by score,
// ties broken by bid id so the same group always clears the same way. The
// top bid signs when it meets the threshold; runners-up within the shortlist
// size survive to the next cycle; everything else is turned down, and each
// turned-down team takes a trust hit.
func (e *Evaluator) EvaluatePlayer(player contract.Player, bids []Bid, ctx Context) (PlayerResult, error) {
	if len(bids) == 0 {
		return PlayerResult{}, ErrNoBids
	}

	type scored struct {
		bid   Bid
		score float64
	}
	ranked := make([]scored, 0, len(bids))
	for _, b := range bids {
		ranked = append(ranked, scored{bid: b, score: e.ScoreBid(b, player, ctx)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return strings.Compare(ranked[i].bid.ID.String(), ranked[j].bid.ID.String()) < 0
	})

	result := PlayerResult{
		PlayerID:    player.ID,
		TrustImpact: make(map[string]float64),
	}

	rest := ranked
	if ranked[0].score >= e.acceptThreshold {
		top := ranked[0]
		id := top.bid.ID
		result.AcceptedBidID = &id
		result.TrustImpact[top.bid.TeamID] += trustReward
		result.Feedback = fmt.Sprintf("%s accepts %s's offer at %s a year (score %.2f).",
			player.Name, top.bid.TeamID, "$"+humanize.Comma(top.bid.Contract.AAV()), top.score)
		rest = ranked[1:]
	} else {
		result.Feedback = fmt.Sprintf("%s is not ready to sign; best offer scored %.2f.",
			player.Name, ranked[0].score)
	}

	for i, s := range rest {
		if i < e.shortlistSize {
			result.Shortlisted = append(result.Shortlisted, s.bid.ID)
			continue
		}
		result.Rejected = append(result.Rejected, s.bid.ID)
		result.TrustImpact[s.bid.TeamID] += trustPenalty
	}

	return result, nil
}

// lengthScore rewards contract lengths that fit the player's age: young
// players want term, older players want short deals they can outplay.
func lengthScore(age, years int) float64 {
	switch {
	case age <= youngAgeMax:
		if years >= youngIdealYears {
			return 1
		}
		return float64(years) / float64(youngIdealYears)
	case age >= oldAgeMin:
		if years <= oldIdealYears {
			return 1
		}
		return math.Max(0, 1-0.25*float64(years-oldIdealYears))
	default:
		if years >= 2 && years <= 4 {
			return 1
		}
		return 0.5
	}
}
