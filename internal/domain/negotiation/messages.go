// Player-voiced feedback strings. Keyed off personality so the same terms
// read differently from different players.
package negotiation

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/okian/frontoffice/internal/domain/contract"
	"github.com/okian/frontoffice/internal/domain/persona"
)

func money(amount int64) string {
	return "$" + humanize.Comma(amount)
}

func acceptanceMessage(player contract.Player, p persona.Personality, terms Terms) string {
	switch {
	case p.Loyalty > 0.7:
		return fmt.Sprintf("%s signs for %s a year: this is where I wanted to be all along.", player.Name, money(terms.AAV))
	case p.MoneyVsRole > 0.7:
		return fmt.Sprintf("%s signs for %s a year over %d years. Business is business.", player.Name, money(terms.AAV), terms.Years)
	default:
		return fmt.Sprintf("%s agrees to %d years at %s per season.", player.Name, terms.Years, money(terms.AAV))
	}
}

func lowballMessage(player contract.Player, p persona.Personality, offer Terms, reservation Terms) string {
	if p.AgentQuality > 0.8 {
		return fmt.Sprintf("%s's agent: %s a year is not a serious number. The ask just went up to %s.",
			player.Name, money(offer.AAV), money(reservation.AAV))
	}
	return fmt.Sprintf("%s is insulted by %s a year and won't discuss anything under %s now.",
		player.Name, money(offer.AAV), money(reservation.AAV))
}

func counterMessage(player contract.Player, dim string, counter Terms) string {
	switch dim {
	case "gtd":
		return fmt.Sprintf("%s wants more guaranteed: counter at %.0f%% guaranteed on %s a year.",
			player.Name, counter.GtdPct*100, money(counter.AAV))
	case "years":
		return fmt.Sprintf("%s is looking for security: counter at %d years, %s a year.",
			player.Name, counter.Years, money(counter.AAV))
	default:
		return fmt.Sprintf("%s counters at %s a year over %d years.",
			player.Name, money(counter.AAV), counter.Years)
	}
}

func expiryMessage(player contract.Player) string {
	return fmt.Sprintf("%s has run out of patience and walked away from the table.", player.Name)
}
