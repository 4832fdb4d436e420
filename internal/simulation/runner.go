package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	app "github.com/okian/frontoffice/internal/app"
	"github.com/okian/frontoffice/internal/domain/contract"
	"github.com/okian/frontoffice/internal/domain/market"
	"github.com/okian/frontoffice/internal/domain/negotiation"
	"github.com/okian/frontoffice/pkg/logger"
)

// Runner tuning constants.
const (
	maxOfferRounds   = 12
	maxBidsPerPlayer = 3
	aavPerPoint      = 100_000
	bonusDivisor     = 4
	negotiatorShare  = 4 // one in four players negotiates instead of taking bids
)

// Run executes a complete simulated free agency period: generate a league,
// negotiate with part of the class, auction the rest through market cycles,
// sweep the leftovers into open free agency, then verify the books.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic replay is the point

	logger.Get().Info(ctx, "starting free agency simulation",
		logger.Int64("seed", cfg.Seed),
		logger.Int("teams", cfg.TeamCount),
		logger.Int("players", cfg.PlayerCount),
		logger.Int("cycles", cfg.Cycles),
		logger.Int("leagueYear", cfg.LeagueYear),
		logger.Int64("salaryCap", cfg.SalaryCap),
		logger.Int("workers", cfg.Workers),
		logger.Any("verbose", cfg.Verbose))

	league := generateLeague(ctx, cfg, rng)
	stats.TeamsGenerated = len(league.Teams)
	stats.PlayersGenerated = len(league.Players)

	svc := app.New(
		app.WithWorkerCount(cfg.Workers),
		app.WithSalaryCap(cfg.SalaryCap),
		app.WithLeagueYear(cfg.LeagueYear),
		app.WithFACycles(cfg.Cycles),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("service start failed: %w", err)
	}
	defer svc.Stop()

	if err := ratePlayers(ctx, svc, league); err != nil {
		return fmt.Errorf("rating failed: %w", err)
	}

	signed := make(map[string]bool, len(league.Players))

	negotiators, bidders := splitClass(league.Players)
	runNegotiations(ctx, svc, league, negotiators, signed, rng, cfg, stats)

	if err := runMarket(ctx, svc, league, bidders, signed, rng, cfg, stats); err != nil {
		return fmt.Errorf("market cycles failed: %w", err)
	}

	runOpenFA(ctx, svc, league, bidders, signed, rng, cfg, stats)

	for _, p := range league.Players {
		if !signed[p.ID] {
			stats.UnsignedPlayers++
		}
	}

	if err := verifyResults(ctx, cfg, svc, league, signed); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// ratePlayers derives each player's overall from their generated season and
// registers the rated player with the service.
func ratePlayers(ctx context.Context, svc *app.Service, league *League) error {
	for i := range league.Players {
		p := &league.Players[i]
		svc.RegisterPlayer(*p)
		r, err := svc.Rating(ctx, *p, league.Seasons[p.ID])
		if err != nil {
			return fmt.Errorf("rate %s: %w", p.ID, err)
		}
		p.Overall = r.Overall
		svc.RegisterPlayer(*p)
	}
	return nil
}

// splitClass carves the class into players who negotiate with a single team
// and players who go to the open market.
func splitClass(players []contract.Player) (negotiators, bidders []contract.Player) {
	cut := len(players) / negotiatorShare
	return players[:cut], players[cut:]
}

// runNegotiations sits each negotiator down with one team and trades offers
// until the deal closes or talks break off. Counters are taken at face
// value: the team's next offer is the player's last counter.
func runNegotiations(ctx context.Context, svc *app.Service, league *League, negotiators []contract.Player, signed map[string]bool, rng *rand.Rand, cfg *Config, stats *Stats) {
	for _, p := range negotiators {
		team := league.Teams[rng.Intn(len(league.Teams))]
		mkt := negotiation.MarketContext{
			CompetingOffers:   rng.Intn(4),
			PositionalDemand:  0.3 + rng.Float64()*0.4,
			CapSpaceAvailable: cfg.SalaryCap,
			Stage:             negotiation.StageEarlyFA,
			TeamReputation:    0.5,
		}

		if _, err := svc.StartNegotiation(ctx, p, team.ID); err != nil {
			logger.Get().Warn(ctx, "negotiation did not open",
				logger.String("player", p.ID), logger.Error(err))
			continue
		}
		stats.NegotiationsOpened++

		// Open below the market price and work upward, stretching the
		// years so the total clears the player's wage floor.
		aav := int64(p.Overall) * aavPerPoint * 85 / 100
		offer := negotiation.Terms{
			AAV:    aav,
			GtdPct: 0.4,
			Years:  yearsForFloor(svc.MinimumFor(p, false, 0, 0), aav),
		}
		for round := 0; round < maxOfferRounds; round++ {
			res, err := svc.SubmitOffer(ctx, p.ID, team.ID, offer, mkt)
			stats.OffersSubmitted++
			if err != nil {
				logger.Get().Warn(ctx, "offer rejected by the books",
					logger.String("player", p.ID), logger.Error(err))
				break
			}
			if !res.OK {
				break
			}
			if res.Accepted {
				stats.ContractsAgreed++
				signed[p.ID] = true
				break
			}
			if res.Session.Terminal() {
				break
			}
			if res.Counter != nil {
				offer = *res.Counter
			} else {
				offer.AAV += offer.AAV / 10
			}
		}
	}
}

// runMarket auctions the remaining players over the configured number of
// cycles. Unsigned players draw fresh, slightly richer bids each cycle.
func runMarket(ctx context.Context, svc *app.Service, league *League, bidders []contract.Player, signed map[string]bool, rng *rand.Rand, cfg *Config, stats *Stats) error {
	for cycle := 0; cycle < cfg.Cycles; cycle++ {
		stage := negotiation.StageEarlyFA
		if cycle > 0 {
			stage = negotiation.StageMidFA
		}

		for _, p := range bidders {
			if signed[p.ID] {
				continue
			}
			for _, teamIdx := range pickTeams(rng, len(league.Teams), 1+rng.Intn(maxBidsPerPlayer)) {
				bid := makeBid(rng, p, league.Teams[teamIdx].ID, cfg.LeagueYear, cycle)
				if err := svc.SubmitBid(ctx, bid); err != nil {
					logger.Get().Warn(ctx, "bid rejected",
						logger.String("player", p.ID), logger.Error(err))
					continue
				}
				stats.BidsSubmitted++
			}
		}

		results, err := svc.RunMarketCycle(ctx, market.Context{
			CompetingOffers:   2,
			PositionalDemand:  0.5,
			CapSpaceAvailable: cfg.SalaryCap,
			Stage:             stage,
			TeamReputation:    0.5,
		})
		if err != nil {
			return fmt.Errorf("cycle %d: %w", cycle, err)
		}
		stats.CyclesRun++

		for _, r := range results {
			if r.AcceptedBidID != nil {
				stats.MarketSignings++
				signed[r.PlayerID] = true
			}
		}
		logger.Get().Info(ctx, "market cycle cleared",
			logger.Int("cycle", cycle),
			logger.Int("players", len(results)),
			logger.Int("signedSoFar", stats.MarketSignings))
	}
	return nil
}

// runOpenFA signs whoever fell through every cycle at the discounted open
// free agency price.
func runOpenFA(ctx context.Context, svc *app.Service, league *League, bidders []contract.Player, signed map[string]bool, rng *rand.Rand, cfg *Config, stats *Stats) {
	mkt := market.Context{
		CompetingOffers:   0,
		PositionalDemand:  0.5,
		CapSpaceAvailable: cfg.SalaryCap,
		Stage:             negotiation.StageCamp,
		TeamReputation:    0.5,
	}
	for _, p := range bidders {
		if signed[p.ID] || !svc.OpenFAEligible(p.ID) {
			continue
		}
		team := league.Teams[rng.Intn(len(league.Teams))]
		if _, err := svc.SignOpenFA(ctx, p.ID, team.ID, mkt); err != nil {
			logger.Get().Warn(ctx, "open FA signing failed",
				logger.String("player", p.ID), logger.Error(err))
			continue
		}
		stats.OpenFASignings++
		signed[p.ID] = true
	}
}

// makeBid builds one team's sealed bid. Later cycles escalate the price so
// stalled players eventually clear.
func makeBid(rng *rand.Rand, p contract.Player, teamID string, startYear, cycle int) market.Bid {
	aav := int64(float64(p.Overall) * aavPerPoint * (0.75 + rng.Float64()*0.45) * (1 + 0.1*float64(cycle)))
	years := preferredYears(p.Age) + rng.Intn(2)
	if years > contract.MaxContractYears {
		years = contract.MaxContractYears
	}

	total := aav * int64(years)
	bonus := total / bonusDivisor
	base := make(map[int]int64, years)
	perYear := (total - bonus) / int64(years)
	for y := startYear; y < startYear+years; y++ {
		base[y] = perYear
	}
	base[startYear] += (total - bonus) - perYear*int64(years)

	gtdYears := rng.Intn(3)
	if gtdYears > years {
		gtdYears = years
	}
	var gtds []contract.Guarantee
	for g := 0; g < gtdYears; g++ {
		gtds = append(gtds, contract.Guarantee{
			Type:   contract.GuaranteeFull,
			Amount: perYear,
			Year:   startYear + g,
		})
	}

	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		id = uuid.New()
	}
	return market.Bid{
		ID:       id,
		PlayerID: p.ID,
		TeamID:   teamID,
		Contract: contract.Contract{
			PlayerID:     p.ID,
			TeamID:       teamID,
			StartYear:    startYear,
			EndYear:      startYear + years - 1,
			BaseSalary:   base,
			SigningBonus: bonus,
			Guarantees:   gtds,
		},
	}
}

// yearsForFloor picks the shortest length whose total value clears the
// player's floor, bounded to the legal range.
func yearsForFloor(floor, aav int64) int {
	years := 3
	if aav > 0 {
		for int64(years)*aav < floor && years < contract.MaxContractYears {
			years++
		}
	}
	return years
}

// preferredYears mirrors the age bands players themselves prefer, so most
// generated bids score well on length.
func preferredYears(age int) int {
	switch {
	case age <= 26:
		return 3
	case age >= 30:
		return 1
	default:
		return 2
	}
}

// pickTeams returns n distinct team indexes.
func pickTeams(rng *rand.Rand, teamCount, n int) []int {
	if n > teamCount {
		n = teamCount
	}
	return rng.Perm(teamCount)[:n]
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("teams", stats.TeamsGenerated),
		logger.Int("players", stats.PlayersGenerated),
		logger.Int("negotiationsOpened", stats.NegotiationsOpened),
		logger.Int("offersSubmitted", stats.OffersSubmitted),
		logger.Int("contractsAgreed", stats.ContractsAgreed),
		logger.Int("bidsSubmitted", stats.BidsSubmitted),
		logger.Int("cyclesRun", stats.CyclesRun),
		logger.Int("marketSignings", stats.MarketSignings),
		logger.Int("openFASignings", stats.OpenFASignings),
		logger.Int("unsignedPlayers", stats.UnsignedPlayers),
		logger.String("duration", stats.Duration.String()))
}
