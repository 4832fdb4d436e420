package simulation

import (
	"context"
	"fmt"
	"reflect"

	"github.com/dustin/go-humanize"

	app "github.com/okian/frontoffice/internal/app"
	"github.com/okian/frontoffice/internal/domain/contract"
	"github.com/okian/frontoffice/internal/domain/negotiation"
	"github.com/okian/frontoffice/pkg/logger"
)

// verifyResults audits the run: derived values must recompute identically,
// every team's books must stay under the cap in every year, and every
// session the store tracks must be in a coherent state.
func verifyResults(ctx context.Context, cfg *Config, svc *app.Service, league *League, signed map[string]bool) error {
	logger.Get().Info(ctx, "verifying results")
	violations := 0

	violations += verifyDeterminism(ctx, svc, league)
	violations += verifyCapLegality(ctx, cfg, svc, league)
	violations += verifySessions(ctx, svc, signed)

	if violations > 0 {
		return fmt.Errorf("verification found %d violations", violations)
	}
	logger.Get().Info(ctx, "verification passed")
	return nil
}

// verifyDeterminism recomputes each player's personality and rating and
// checks both come back bit-for-bit identical.
func verifyDeterminism(ctx context.Context, svc *app.Service, league *League) int {
	violations := 0
	for _, p := range league.Players {
		first := svc.Personality(p.ID)
		second := svc.Personality(p.ID)
		if !reflect.DeepEqual(first, second) {
			logger.Get().Error(ctx, "personality recompute diverged",
				logger.String("player", p.ID))
			violations++
		}

		ra, errA := svc.Rating(ctx, p, league.Seasons[p.ID])
		rb, errB := svc.Rating(ctx, p, league.Seasons[p.ID])
		if errA != nil || errB != nil || ra.Overall != rb.Overall || ra.Score != rb.Score {
			logger.Get().Error(ctx, "rating recompute diverged",
				logger.String("player", p.ID),
				logger.Int("first", ra.Overall),
				logger.Int("second", rb.Overall))
			violations++
		}
	}
	return violations
}

// verifyCapLegality sums every team's cap hits for every year any contract
// can touch and flags years over the cap.
func verifyCapLegality(ctx context.Context, cfg *Config, svc *app.Service, league *League) int {
	violations := 0
	for _, team := range league.Teams {
		contracts, err := svc.ContractsByTeam(ctx, team.ID)
		if err != nil {
			logger.Get().Error(ctx, "listing contracts failed",
				logger.String("team", team.ID), logger.Error(err))
			violations++
			continue
		}

		for year := cfg.LeagueYear; year < cfg.LeagueYear+contract.MaxContractYears; year++ {
			var total int64
			for _, sc := range contracts {
				total += contract.CapHit(sc.Contract, year)
			}
			if total > cfg.SalaryCap {
				logger.Get().Error(ctx, "team over the cap",
					logger.String("team", team.ID),
					logger.Int("year", year),
					logger.String("total", "$"+humanize.Comma(total)),
					logger.String("cap", "$"+humanize.Comma(cfg.SalaryCap)))
				violations++
			}
		}
	}
	return violations
}

// verifySessions checks session state coherence: only known statuses, and
// every accepted session's player actually landed a contract.
func verifySessions(ctx context.Context, svc *app.Service, signed map[string]bool) int {
	sessions, err := svc.Sessions(ctx)
	if err != nil {
		logger.Get().Error(ctx, "listing sessions failed", logger.Error(err))
		return 1
	}

	violations := 0
	for _, sess := range sessions {
		switch sess.Status {
		case negotiation.StatusActive, negotiation.StatusAccepted,
			negotiation.StatusDeclined, negotiation.StatusExpired:
		default:
			logger.Get().Error(ctx, "session in unknown state",
				logger.String("player", sess.PlayerID),
				logger.String("status", string(sess.Status)))
			violations++
			continue
		}

		if sess.Status == negotiation.StatusAccepted && !signed[sess.PlayerID] {
			logger.Get().Error(ctx, "accepted session without a contract",
				logger.String("player", sess.PlayerID),
				logger.String("team", sess.TeamID))
			violations++
		}
	}
	return violations
}
