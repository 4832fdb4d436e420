package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	service "github.com/okian/frontoffice/internal/app"
	"github.com/okian/frontoffice/internal/domain/contract"
	"github.com/okian/frontoffice/internal/domain/market"
	"github.com/okian/frontoffice/internal/domain/negotiation"
	"github.com/okian/frontoffice/internal/domain/rating"
	"github.com/okian/frontoffice/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

const testYear = 2026

func testPlayer() contract.Player {
	return contract.Player{
		ID:       "p-veteran",
		Name:     "Alex Mercer",
		Age:      27,
		Position: contract.WR,
		Overall:  85,
		YearsExp: 5,
	}
}

// primePlayer is a neutral prime-age free agent whose bid scores are exact:
// expected AAV 8,000,000 under neutral demand.
func primePlayer(id string) contract.Player {
	return contract.Player{
		ID:       id,
		Name:     "Case Subject",
		Age:      26,
		Position: contract.WR,
		Overall:  80,
		YearsExp: 4,
	}
}

// mkBid builds a bid with even salaries, an optional bonus, and n full
// guarantees of one year's salary each.
func mkBid(playerID, teamID string, aav int64, years int, bonus int64, guarantees int) market.Bid {
	base := make(map[int]int64, years)
	for y := testYear; y < testYear+years; y++ {
		base[y] = aav
	}
	c := contract.Contract{
		PlayerID:     playerID,
		TeamID:       teamID,
		StartYear:    testYear,
		EndYear:      testYear + years - 1,
		BaseSalary:   base,
		SigningBonus: bonus,
	}
	for i := 0; i < guarantees; i++ {
		c.Guarantees = append(c.Guarantees, contract.Guarantee{
			Type:   contract.GuaranteeFull,
			Amount: aav,
			Year:   testYear + i,
		})
	}
	return market.Bid{ID: uuid.New(), PlayerID: playerID, TeamID: teamID, Contract: c}
}

func newStartedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	base := []service.Option{
		service.WithWorkerCount(2),
		service.WithShardCount(2),
		service.WithLeagueYear(testYear),
	}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithDedupeSize(25_000),
			service.WithShardCount(2),
			service.WithSalaryCap(200_000_000),
			service.WithFACycles(2),
			service.WithOpenFADiscount(0.15),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		defer svc.Stop()

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})
		})

		Convey("When operating before start", func() {
			fresh := service.New()

			_, err := fresh.SubmitOffer(context.Background(), "p", "t", negotiation.Terms{}, negotiation.MarketContext{})

			Convey("Then it should refuse", func() {
				So(err, ShouldWrap, service.ErrNotStarted)
			})
		})
	})
}

func TestService_DerivedValues(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newStartedService(t)
		player := testPlayer()

		Convey("When computing a personality twice", func() {
			first := svc.Personality(player.ID)
			second := svc.Personality(player.ID)

			Convey("Then both values are identical", func() {
				So(second, ShouldResemble, first)
			})
		})

		Convey("When rating a player", func() {
			stats := rating.SeasonStats{Games: 17, RecYards: 1200, RecTD: 9, Receptions: 88}
			r, err := svc.Rating(context.Background(), player, stats)

			Convey("Then the overall lands in the 50-99 band", func() {
				So(err, ShouldBeNil)
				So(r.Overall, ShouldBeBetweenOrEqual, 50, 99)
			})

			Convey("And the cached value matches", func() {
				again, err := svc.Rating(context.Background(), player, stats)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, r)
			})
		})

		Convey("When computing the veteran floor for an elite receiver", func() {
			floor := svc.MinimumFor(player, false, 0, 0)

			// 250M x 0.20 (elite) x 1.0 (prime) x 1.20 (WR)
			Convey("Then it matches the tier arithmetic", func() {
				So(floor, ShouldEqual, 60_000_000)
			})
		})

		Convey("When computing a rookie floor", func() {
			floor := svc.MinimumFor(player, true, 1, 5)

			// 250M x 0.045 (round 1, picks 1-10)
			Convey("Then it uses the draft slot", func() {
				So(floor, ShouldEqual, 11_250_000)
			})
		})
	})
}

func TestService_Negotiation(t *testing.T) {
	Convey("Given a started service and a registered player", t, func() {
		svc := newStartedService(t)
		player := testPlayer()

		Convey("When opening a negotiation", func() {
			sess, err := svc.StartNegotiation(context.Background(), player, "team-a")

			Convey("Then an active session is created", func() {
				So(err, ShouldBeNil)
				So(sess.Status, ShouldEqual, negotiation.StatusActive)
				So(sess.Round, ShouldEqual, 1)
			})

			Convey("And opening again reports the in-flight session", func() {
				again, err := svc.StartNegotiation(context.Background(), player, "team-a")
				So(err, ShouldWrap, service.ErrSessionActive)
				So(again.ID, ShouldEqual, sess.ID)
			})

			Convey("And a different team gets its own session", func() {
				other, err := svc.StartNegotiation(context.Background(), player, "team-b")
				So(err, ShouldBeNil)
				So(other.ID, ShouldNotEqual, sess.ID)
			})
		})

		Convey("When declining a negotiation", func() {
			_, err := svc.StartNegotiation(context.Background(), player, "team-a")
			So(err, ShouldBeNil)

			declined, err := svc.DeclineNegotiation(context.Background(), player.ID, "team-a")

			Convey("Then the session is terminal", func() {
				So(err, ShouldBeNil)
				So(declined.Status, ShouldEqual, negotiation.StatusDeclined)
			})

			Convey("And a new negotiation can start afterwards", func() {
				fresh, err := svc.StartNegotiation(context.Background(), player, "team-a")
				So(err, ShouldBeNil)
				So(fresh.Status, ShouldEqual, negotiation.StatusActive)
			})
		})

		Convey("When submitting a generous offer", func() {
			_, err := svc.StartNegotiation(context.Background(), player, "team-a")
			So(err, ShouldBeNil)

			// Clears any reservation the personality hash can seed for an
			// 85 overall: 12M a year, near-total guarantees, max length.
			offer := negotiation.Terms{AAV: 12_000_000, GtdPct: 0.95, Years: 7}
			result, err := svc.SubmitOffer(context.Background(), player.ID, "team-a", offer, negotiation.MarketContext{
				PositionalDemand: 0.5,
				Stage:            negotiation.StageMidFA,
			})

			Convey("Then the offer is accepted and the contract signed", func() {
				So(err, ShouldBeNil)
				So(result.OK, ShouldBeTrue)
				So(result.Accepted, ShouldBeTrue)

				signed, err := svc.ContractsByTeam(context.Background(), "team-a")
				So(err, ShouldBeNil)
				So(signed, ShouldHaveLength, 1)
				So(signed[0].Contract.PlayerID, ShouldEqual, player.ID)
				So(signed[0].Contract.TotalValue(), ShouldEqual, int64(84_000_000))
			})

			Convey("And further offers hit the terminal session", func() {
				followup, err := svc.SubmitOffer(context.Background(), player.ID, "team-a", offer, negotiation.MarketContext{})
				So(err, ShouldBeNil)
				So(followup.OK, ShouldBeFalse)
				So(followup.Reason, ShouldContainSubstring, "accepted")
			})
		})

		Convey("When submitting a weak offer", func() {
			_, err := svc.StartNegotiation(context.Background(), player, "team-a")
			So(err, ShouldBeNil)

			offer := negotiation.Terms{AAV: 2_000_000, GtdPct: 0.1, Years: 1}
			result, err := svc.SubmitOffer(context.Background(), player.ID, "team-a", offer, negotiation.MarketContext{})

			Convey("Then it is not accepted and the session advances", func() {
				So(err, ShouldBeNil)
				So(result.OK, ShouldBeTrue)
				So(result.Accepted, ShouldBeFalse)
				So(result.Session.Round, ShouldEqual, 2)
			})
		})

		Convey("When offering for an unknown player", func() {
			_, err := svc.SubmitOffer(context.Background(), "nobody", "team-a", negotiation.Terms{}, negotiation.MarketContext{})

			Convey("Then it fails with ErrUnknownPlayer", func() {
				So(err, ShouldWrap, service.ErrUnknownPlayer)
			})
		})
	})
}

func TestService_SubmitBid(t *testing.T) {
	Convey("Given a started service and a free agent", t, func() {
		svc := newStartedService(t)
		player := primePlayer("p-fa")
		svc.RegisterPlayer(player)

		Convey("When submitting a valid bid", func() {
			bid := mkBid(player.ID, "team-a", 7_000_000, 3, 0, 2)
			err := svc.SubmitBid(context.Background(), bid)

			Convey("Then it is queued for the next cycle", func() {
				So(err, ShouldBeNil)
				So(svc.PendingBids(), ShouldEqual, 1)
			})

			Convey("And resubmitting the same bid id is refused", func() {
				So(svc.SubmitBid(context.Background(), bid), ShouldWrap, service.ErrDuplicateBid)
				So(svc.PendingBids(), ShouldEqual, 1)
			})
		})

		Convey("When submitting a structurally invalid bid", func() {
			bid := mkBid(player.ID, "team-a", 7_000_000, 3, 0, 0)
			bid.Contract.SigningBonus = -1
			err := svc.SubmitBid(context.Background(), bid)

			Convey("Then it fails with ErrInvalidBid", func() {
				So(err, ShouldWrap, service.ErrInvalidBid)
			})
		})

		Convey("When submitting a bid without an id", func() {
			bid := mkBid(player.ID, "team-a", 7_000_000, 3, 0, 0)
			bid.ID = uuid.Nil

			So(svc.SubmitBid(context.Background(), bid), ShouldWrap, service.ErrInvalidBid)
		})

		Convey("When bidding on an unknown player", func() {
			bid := mkBid("nobody", "team-a", 7_000_000, 3, 0, 0)

			So(svc.SubmitBid(context.Background(), bid), ShouldWrap, service.ErrUnknownPlayer)
		})
	})
}

func TestService_RunMarketCycle(t *testing.T) {
	Convey("Given a started service with pending bids", t, func() {
		svc := newStartedService(t, service.WithShortlistSize(1))
		player := primePlayer("p-fa")
		svc.RegisterPlayer(player)

		mkt := market.Context{PositionalDemand: 0.5}

		// Scores against the 8M expected price: 0.90 / 0.65 / 0.40.
		strong := mkBid(player.ID, "team-a", 7_000_000, 3, 0, 2)
		middle := mkBid(player.ID, "team-b", 5_000_000, 3, 0, 1)
		weak := mkBid(player.ID, "team-c", 3_000_000, 3, 0, 0)

		So(svc.SubmitBid(context.Background(), strong), ShouldBeNil)
		So(svc.SubmitBid(context.Background(), middle), ShouldBeNil)
		So(svc.SubmitBid(context.Background(), weak), ShouldBeNil)

		Convey("When running a cycle", func() {
			results, err := svc.RunMarketCycle(context.Background(), mkt)

			Convey("Then the strong bid signs and trust shifts", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 1)

				r := results[0]
				So(r.AcceptedBidID, ShouldNotBeNil)
				So(*r.AcceptedBidID, ShouldEqual, strong.ID)
				So(r.Shortlisted, ShouldResemble, []uuid.UUID{middle.ID})
				So(r.Rejected, ShouldResemble, []uuid.UUID{weak.ID})

				So(svc.TeamTrust(context.Background(), "team-a"), ShouldAlmostEqual, 0.1)
				So(svc.TeamTrust(context.Background(), "team-b"), ShouldAlmostEqual, 0)
				So(svc.TeamTrust(context.Background(), "team-c"), ShouldAlmostEqual, -0.2)

				signed, err := svc.ContractsByTeam(context.Background(), "team-a")
				So(err, ShouldBeNil)
				So(signed, ShouldHaveLength, 1)
				So(signed[0].Contract.PlayerID, ShouldEqual, player.ID)
			})

			Convey("And the pending queue is drained", func() {
				So(svc.PendingBids(), ShouldEqual, 0)
			})
		})

		Convey("When running a cycle with no bids", func() {
			_, err := svc.RunMarketCycle(context.Background(), mkt)
			So(err, ShouldBeNil)

			results, err := svc.RunMarketCycle(context.Background(), mkt)

			Convey("Then it clears nothing", func() {
				So(err, ShouldBeNil)
				So(results, ShouldBeNil)
			})
		})
	})

	Convey("Given a winning team with no cap room", t, func() {
		svc := newStartedService(t, service.WithSalaryCap(5_000_000))
		player := primePlayer("p-fa")
		svc.RegisterPlayer(player)

		// Scores 0.90 against the 8M expected price but carries a 7M
		// first-year hit against a 5M cap.
		bid := mkBid(player.ID, "team-a", 7_000_000, 3, 0, 2)
		So(svc.SubmitBid(context.Background(), bid), ShouldBeNil)

		Convey("When running the cycle", func() {
			results, err := svc.RunMarketCycle(context.Background(), market.Context{PositionalDemand: 0.5})

			Convey("Then the acceptance downgrades to a rejection", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 1)

				r := results[0]
				So(r.AcceptedBidID, ShouldBeNil)
				So(r.Rejected, ShouldContain, bid.ID)
				So(r.Feedback, ShouldContainSubstring, "no cap room")
				So(svc.TeamTrust(context.Background(), "team-a"), ShouldAlmostEqual, -0.2)

				signed, err := svc.ContractsByTeam(context.Background(), "team-a")
				So(err, ShouldBeNil)
				So(signed, ShouldBeEmpty)
			})
		})
	})
}

func TestService_OpenFA(t *testing.T) {
	Convey("Given a player who cleared no cycle", t, func() {
		svc := newStartedService(t, service.WithFACycles(1), service.WithOpenFADiscount(0.10))
		player := primePlayer("p-fa")
		svc.RegisterPlayer(player)

		mkt := market.Context{PositionalDemand: 0.5}

		// Scores 0.40: below the 0.70 threshold, so the player stays
		// unsigned and spills after the single configured cycle.
		So(svc.SubmitBid(context.Background(), mkBid(player.ID, "team-a", 3_000_000, 3, 0, 0)), ShouldBeNil)

		results, err := svc.RunMarketCycle(context.Background(), mkt)
		So(err, ShouldBeNil)
		So(results[0].AcceptedBidID, ShouldBeNil)

		Convey("Then the player is open FA eligible", func() {
			So(svc.OpenFAEligible(player.ID), ShouldBeTrue)
		})

		Convey("When a team signs the open free agent", func() {
			signed, err := svc.SignOpenFA(context.Background(), player.ID, "team-d", mkt)

			Convey("Then the deal is one discounted year", func() {
				So(err, ShouldBeNil)
				So(signed.Contract.Length(), ShouldEqual, 1)
				So(signed.Contract.SigningBonus, ShouldEqual, 0)
				So(signed.Contract.Guarantees, ShouldBeEmpty)
				// 8M expected x (1 - 0.10)
				So(signed.Contract.BaseSalary[testYear], ShouldEqual, 7_200_000)
			})

			Convey("And the player leaves the open FA pool", func() {
				So(svc.OpenFAEligible(player.ID), ShouldBeFalse)
			})
		})

		Convey("When signing a player who is not eligible", func() {
			other := primePlayer("p-other")
			svc.RegisterPlayer(other)

			_, err := svc.SignOpenFA(context.Background(), other.ID, "team-d", mkt)

			Convey("Then it fails with ErrNotOpenFA", func() {
				So(err, ShouldWrap, service.ErrNotOpenFA)
			})
		})
	})
}

func TestService_CutPlayer(t *testing.T) {
	Convey("Given a signed contract with a bonus", t, func() {
		svc := newStartedService(t)
		player := primePlayer("p-fa")
		svc.RegisterPlayer(player)

		// 5M bonus over a 5-year deal prorates at 1M a year.
		bid := mkBid(player.ID, "team-a", 7_000_000, 5, 5_000_000, 2)
		So(svc.SubmitBid(context.Background(), bid), ShouldBeNil)

		results, err := svc.RunMarketCycle(context.Background(), market.Context{PositionalDemand: 0.5})
		So(err, ShouldBeNil)
		So(results[0].AcceptedBidID, ShouldNotBeNil)

		signed, err := svc.ContractsByTeam(context.Background(), "team-a")
		So(err, ShouldBeNil)
		So(signed, ShouldHaveLength, 1)

		Convey("When cutting the player after year two, post-June-1", func() {
			dead, err := svc.CutPlayer(context.Background(), signed[0].ID, testYear+2, false)

			Convey("Then the dead money splits across two years", func() {
				So(err, ShouldBeNil)
				So(dead.RemainingBonus, ShouldEqual, 3_000_000)
				So(dead.CurrentYear, ShouldEqual, 1_000_000)
				So(dead.NextYear, ShouldEqual, 2_000_000)
			})

			Convey("And the charges stay against the team's cap", func() {
				So(svc.TeamDeadMoney(context.Background(), "team-a", testYear+2), ShouldEqual, 1_000_000)
				So(svc.TeamDeadMoney(context.Background(), "team-a", testYear+3), ShouldEqual, 2_000_000)
				So(svc.TeamDeadMoney(context.Background(), "team-a", testYear+4), ShouldEqual, 0)
			})

			Convey("And the contract leaves the books", func() {
				after, err := svc.ContractsByTeam(context.Background(), "team-a")
				So(err, ShouldBeNil)
				So(after, ShouldBeEmpty)
			})
		})

		Convey("When cutting an unknown contract", func() {
			_, err := svc.CutPlayer(context.Background(), uuid.New(), testYear, true)

			Convey("Then it reports the missing contract", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a team carrying dead money from a cut", t, func() {
		svc := newStartedService(t, service.WithSalaryCap(20_000_000))
		cut := primePlayer("p-cut")
		svc.RegisterPlayer(cut)

		// 8M first-year hit (7M base plus 1M proration) under a 20M cap.
		So(svc.SubmitBid(context.Background(), mkBid(cut.ID, "team-a", 7_000_000, 5, 5_000_000, 2)), ShouldBeNil)
		results, err := svc.RunMarketCycle(context.Background(), market.Context{PositionalDemand: 0.5})
		So(err, ShouldBeNil)
		So(results[0].AcceptedBidID, ShouldNotBeNil)

		signed, err := svc.ContractsByTeam(context.Background(), "team-a")
		So(err, ShouldBeNil)
		So(signed, ShouldHaveLength, 1)

		// Cutting before June 1 in the start year accelerates the whole 5M
		// bonus into the cut year.
		dead, err := svc.CutPlayer(context.Background(), signed[0].ID, testYear, true)
		So(err, ShouldBeNil)
		So(dead.CurrentYear, ShouldEqual, 5_000_000)
		So(dead.NextYear, ShouldEqual, 0)
		So(svc.TeamDeadMoney(context.Background(), "team-a", testYear), ShouldEqual, 5_000_000)

		Convey("When the team bids beyond its remaining room in the cut year", func() {
			next := primePlayer("p-next")
			svc.RegisterPlayer(next)

			// A 16M hit fits the bare 20M cap but not the 15M left once the
			// dead money is charged.
			bid := mkBid(next.ID, "team-a", 16_000_000, 3, 0, 2)
			So(svc.SubmitBid(context.Background(), bid), ShouldBeNil)

			results, err := svc.RunMarketCycle(context.Background(), market.Context{PositionalDemand: 0.5})

			Convey("Then the winning bid downgrades for lack of cap room", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 1)

				r := results[0]
				So(r.AcceptedBidID, ShouldBeNil)
				So(r.Rejected, ShouldContain, bid.ID)
				So(r.Feedback, ShouldContainSubstring, "no cap room")

				after, err := svc.ContractsByTeam(context.Background(), "team-a")
				So(err, ShouldBeNil)
				So(after, ShouldBeEmpty)
			})
		})
	})
}

func TestService_Stats(t *testing.T) {
	Convey("Given a started service with some activity", t, func() {
		svc := newStartedService(t)
		player := testPlayer()

		_, err := svc.StartNegotiation(context.Background(), player, "team-a")
		So(err, ShouldBeNil)

		Convey("When reading stats", func() {
			stats := svc.GetStats()

			Convey("Then the counters reflect the state", func() {
				So(stats["started"], ShouldBeTrue)
				So(stats["sessions"], ShouldEqual, 1)
				So(stats["contracts"], ShouldEqual, 0)
				So(stats["cycle"], ShouldEqual, 0)
			})
		})
	})
}
