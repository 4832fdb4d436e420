package wage_test

import (
	"testing"

	"github.com/okian/frontoffice/internal/domain/contract"
	"github.com/okian/frontoffice/internal/domain/wage"
	. "github.com/smartystreets/goconvey/convey"
)

const testCap = int64(250_000_000)

func TestTierOf(t *testing.T) {
	Convey("Given the tier thresholds", t, func() {
		Convey("Then 85+ overall is elite regardless of experience", func() {
			So(wage.TierOf(85, 0), ShouldEqual, wage.TierElite)
			So(wage.TierOf(99, 10), ShouldEqual, wage.TierElite)
		})

		Convey("And 80-84 overall needs 3+ years for elite", func() {
			So(wage.TierOf(82, 3), ShouldEqual, wage.TierElite)
			So(wage.TierOf(82, 2), ShouldEqual, wage.TierStarter)
		})

		Convey("And 70-74 overall is a starter only early in a career", func() {
			So(wage.TierOf(72, 2), ShouldEqual, wage.TierStarter)
			So(wage.TierOf(72, 3), ShouldEqual, wage.TierDepth)
		})

		Convey("And everything else is depth", func() {
			So(wage.TierOf(69, 0), ShouldEqual, wage.TierDepth)
			So(wage.TierOf(50, 12), ShouldEqual, wage.TierDepth)
		})
	})
}

func TestMinimumVeteran(t *testing.T) {
	Convey("Given a 250M salary cap", t, func() {
		Convey("When computing the floor for a prime-age elite QB", func() {
			// 250M x 0.20 x 1.0 x 1.80
			floor := wage.MinimumVeteran(wage.TierElite, 27, contract.QB, testCap)
			So(floor, ShouldEqual, 90_000_000)
		})

		Convey("When computing the floor for an aging depth RB", func() {
			// 250M x 0.03 x 0.5 x 0.85
			floor := wage.MinimumVeteran(wage.TierDepth, 35, contract.RB, testCap)
			So(floor, ShouldEqual, 3_187_500)
		})

		Convey("When computing the floor for a young starter CB", func() {
			// 250M x 0.10 x 0.8 x 1.15
			floor := wage.MinimumVeteran(wage.TierStarter, 23, contract.CB, testCap)
			So(floor, ShouldEqual, 23_000_000)
		})
	})
}

func TestMinimumRookie(t *testing.T) {
	Convey("Given the rookie scale on a 250M cap", t, func() {
		Convey("Then round 1 splits by pick band", func() {
			So(wage.MinimumRookie(1, 3, testCap), ShouldEqual, 11_250_000)
			So(wage.MinimumRookie(1, 15, testCap), ShouldEqual, 7_500_000)
			So(wage.MinimumRookie(1, 28, testCap), ShouldEqual, 5_500_000)
		})

		Convey("And later rounds use flat percentages", func() {
			So(wage.MinimumRookie(3, 70, testCap), ShouldEqual, 2_250_000)
			So(wage.MinimumRookie(7, 230, testCap), ShouldEqual, 1_000_000)
		})

		Convey("And undrafted players get the UDFA default", func() {
			So(wage.MinimumRookie(0, 0, testCap), ShouldEqual, 875_000)
			So(wage.MinimumRookie(12, 400, testCap), ShouldEqual, 875_000)
		})
	})
}

func TestValidate(t *testing.T) {
	player := contract.Player{ID: "p1", Age: 27, Position: contract.WR, Overall: 88, YearsExp: 5}

	deal := func(total int64) contract.Contract {
		return contract.Contract{
			PlayerID:   "p1",
			TeamID:     "t1",
			StartYear:  2026,
			EndYear:    2026,
			BaseSalary: map[int]int64{2026: total},
		}
	}

	Convey("Given an elite veteran WR on a 250M cap", t, func() {
		// Floor: 250M x 0.20 x 1.0 x 1.20 = 60M
		Convey("When the contract clears the floor", func() {
			v := wage.Validate(deal(60_000_000), player, testCap, false, 0, 0)
			So(v.IsValid, ShouldBeTrue)
			So(v.MinimumRequired, ShouldEqual, 60_000_000)
			So(v.CurrentValue, ShouldEqual, 60_000_000)
		})

		Convey("When the contract falls short", func() {
			v := wage.Validate(deal(45_000_000), player, testCap, false, 0, 0)
			So(v.IsValid, ShouldBeFalse)
			So(v.Message, ShouldContainSubstring, "15,000,000")
			So(v.Message, ShouldContainSubstring, "short")
		})

		Convey("When validating the same inputs twice", func() {
			first := wage.Validate(deal(45_000_000), player, testCap, false, 0, 0)
			second := wage.Validate(deal(45_000_000), player, testCap, false, 0, 0)
			So(second, ShouldResemble, first)
		})
	})

	Convey("Given a rookie contract validated against the slot", t, func() {
		rookie := contract.Player{ID: "r1", Age: 21, Position: contract.QB, Overall: 75, YearsExp: 0}

		Convey("Then the rookie scale applies instead of the veteran floor", func() {
			v := wage.Validate(deal(12_000_000), rookie, testCap, true, 1, 3)
			So(v.IsValid, ShouldBeTrue)
			So(v.MinimumRequired, ShouldEqual, 11_250_000)
		})
	})
}
