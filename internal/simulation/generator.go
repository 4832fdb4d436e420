package simulation

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/okian/frontoffice/internal/domain/contract"
	"github.com/okian/frontoffice/internal/domain/rating"
	"github.com/okian/frontoffice/pkg/logger"
)

// Generation bounds.
const (
	minAge        = 21
	ageSpread     = 14 // ages land in [21, 34]
	minQuality    = 0.05
	qualitySpread = 0.90
	statJitter    = 0.15
	fullSeason    = 17
)

var firstNames = []string{
	"Marcus", "Jalen", "DeAndre", "Tyler", "Chris", "Jordan", "Malik",
	"Derek", "Aaron", "Trevor", "Quentin", "Isaiah", "Cameron", "Devin",
	"Rashad", "Travis",
}

var lastNames = []string{
	"Johnson", "Williams", "Carter", "Mitchell", "Henderson", "Brooks",
	"Coleman", "Rivers", "Hayes", "Sanders", "Porter", "Griffin",
	"Dawson", "Fletcher", "Maddox", "Vance",
}

var cityNames = []string{
	"Ridgeport", "Baytown", "Crestfield", "Ironvale", "Lakemont",
	"Stonebridge", "Harborview", "Redcliff", "Summitton", "Fairhaven",
	"Westgate", "Northfork",
}

// League is one generated free agency class: the bidding teams, the
// available players, and each player's most recent season.
type League struct {
	Teams   []contract.Team
	Players []contract.Player
	Seasons map[string]rating.SeasonStats
}

// generateLeague builds a league from the seeded RNG. Identical seeds yield
// identical leagues.
func generateLeague(ctx context.Context, cfg *Config, rng *rand.Rand) *League {
	logger.Get().Info(ctx, "generating league",
		logger.Int("teams", cfg.TeamCount),
		logger.Int("players", cfg.PlayerCount),
		logger.Int64("seed", cfg.Seed))

	league := &League{
		Teams:   make([]contract.Team, 0, cfg.TeamCount),
		Players: make([]contract.Player, 0, cfg.PlayerCount),
		Seasons: make(map[string]rating.SeasonStats, cfg.PlayerCount),
	}

	for i := 0; i < cfg.TeamCount; i++ {
		league.Teams = append(league.Teams, contract.Team{
			ID:       fmt.Sprintf("team-%02d", i),
			Name:     cityNames[i%len(cityNames)],
			CapSpace: cfg.SalaryCap,
		})
	}

	positions := contract.Positions()
	for i := 0; i < cfg.PlayerCount; i++ {
		age := minAge + rng.Intn(ageSpread)
		maxExp := age - minAge
		exp := 0
		if maxExp > 0 {
			exp = rng.Intn(maxExp + 1)
		}
		player := contract.Player{
			ID:       fmt.Sprintf("player-%04d", i),
			Name:     firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))],
			Age:      age,
			Position: positions[rng.Intn(len(positions))],
			YearsExp: exp,
		}
		quality := minQuality + rng.Float64()*qualitySpread
		league.Players = append(league.Players, player)
		league.Seasons[player.ID] = seasonFor(rating.FamilyOf(player.Position), quality, rng)
	}

	logger.Get().Info(ctx, "league generated",
		logger.Int("teams", len(league.Teams)),
		logger.Int("players", len(league.Players)))
	return league
}

// seasonFor produces a season whose production sits near the given quality
// fraction of the family benchmarks, with some jitter so components vary
// independently.
func seasonFor(f rating.Family, quality float64, rng *rand.Rand) rating.SeasonStats {
	s := rating.SeasonStats{Games: fullSeason}
	q := func() float64 {
		j := quality + (rng.Float64()*2-1)*statJitter
		if j < 0 {
			return 0
		}
		if j > 1 {
			return 1
		}
		return j
	}

	switch f {
	case rating.FamilyPasser:
		s.PassYards = int(q() * 5000)
		s.PassTD = int(q() * 45)
		s.Interceptions = int((1 - q()) * 25)
	case rating.FamilyRunner:
		s.RushYards = int(q() * 1800)
		s.RushTD = int(q() * 18)
		s.Receptions = int(q() * 80)
	case rating.FamilyCatcher:
		s.RecYards = int(q() * 1600)
		s.RecTD = int(q() * 15)
		s.Receptions = int(q() * 110)
	case rating.FamilyBlocker:
		s.Snaps = int(q() * 1100)
		s.SacksAllowed = int((1 - q()) * 12)
	case rating.FamilyRusher:
		s.Sacks = q() * 18
		s.Pressures = int(q() * 80)
		s.Tackles = int(q() * 60)
	case rating.FamilyDefender:
		s.Tackles = int(q() * 140)
		s.Takeaways = int(q() * 6)
		s.Sacks = q() * 8
	default: // FamilySpecialist
		s.KickPoints = int(q() * 150)
		s.PuntAvg = q() * 50
	}
	return s
}
