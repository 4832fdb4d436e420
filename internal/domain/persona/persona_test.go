package persona_test

import (
	"fmt"
	"testing"

	"github.com/okian/frontoffice/internal/domain/persona"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDeterminism(t *testing.T) {
	Convey("Given any player id", t, func() {
		ids := []string{"player-1", "a0b1c2d3", "", "日本語-id", "player-1 "}

		Convey("Then recomputation is bit-for-bit identical", func() {
			for _, id := range ids {
				first := persona.Of(id)
				second := persona.Of(id)
				So(second, ShouldResemble, first)
			}
		})

		Convey("And distinct ids diverge", func() {
			So(persona.Of("player-1"), ShouldNotResemble, persona.Of("player-2"))
		})
	})
}

func TestSliderBounds(t *testing.T) {
	Convey("Given a population of generated personalities", t, func() {
		Convey("Then every slider stays inside its sub-range", func() {
			for i := 0; i < 500; i++ {
				p := persona.Of(fmt.Sprintf("player-%d", i))
				So(p.RiskTolerance, ShouldBeBetweenOrEqual, 0.2, 0.8)
				So(p.SecurityPref, ShouldBeBetweenOrEqual, 0.1, 0.9)
				So(p.AgentQuality, ShouldBeBetweenOrEqual, 0.3, 1.0)
				So(p.Loyalty, ShouldBeBetweenOrEqual, 0.1, 0.9)
				So(p.MoneyVsRole, ShouldBeBetweenOrEqual, 0.2, 0.9)
				So(p.MarketSavvy, ShouldBeBetweenOrEqual, 0.1, 0.9)
			}
		})
	})
}

func TestPriorities(t *testing.T) {
	Convey("Given a population of generated personalities", t, func() {
		counts := map[persona.PriorityKind]int{}
		weights := map[persona.PriorityKind]float64{}
		for i := 0; i < 1000; i++ {
			p := persona.Of(fmt.Sprintf("player-%d", i))
			for _, pr := range p.Priorities {
				counts[pr.Kind]++
				weights[pr.Kind] = pr.Weight
			}
		}

		Convey("Then each emitted priority carries its fixed weight", func() {
			So(weights[persona.PriorityRole], ShouldEqual, 0.15)
			So(weights[persona.PriorityContender], ShouldEqual, 0.20)
			So(weights[persona.PriorityHometown], ShouldEqual, 0.10)
		})

		Convey("And emission rates track the thresholds", func() {
			// role >0.5 ~50%, contender >0.6 ~40%, hometown >0.7 ~30%
			So(counts[persona.PriorityRole], ShouldBeBetween, 400, 600)
			So(counts[persona.PriorityContender], ShouldBeBetween, 300, 500)
			So(counts[persona.PriorityHometown], ShouldBeBetween, 200, 400)
		})
	})
}
