// Package service provides the front-office orchestration layer: it owns the
// stores, engines, queue and worker pool, and exposes the operations the
// daemon and the simulator drive.
package service

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	bidqueue "github.com/okian/frontoffice/internal/adapters/mq/queue"
	workerpool "github.com/okian/frontoffice/internal/adapters/mq/worker"
	repository "github.com/okian/frontoffice/internal/adapters/repository"
	"github.com/okian/frontoffice/internal/domain/contract"
	"github.com/okian/frontoffice/internal/domain/dedupe"
	"github.com/okian/frontoffice/internal/domain/market"
	"github.com/okian/frontoffice/internal/domain/negotiation"
	"github.com/okian/frontoffice/internal/domain/persona"
	"github.com/okian/frontoffice/internal/domain/rating"
	"github.com/okian/frontoffice/internal/domain/wage"
	"github.com/okian/frontoffice/pkg/logger"
	"github.com/okian/frontoffice/pkg/metrics"
)

// Orchestration constants.
const (
	defaultLeagueYear = 2026

	// Share of a negotiated deal's total value paid as signing bonus when
	// the accepted terms are turned into a contract.
	signingBonusShare = 0.25

	// Trust deltas applied when an accepted bid is downgraded because the
	// winning team cannot fit the deal under its cap.
	trustReward  = 0.1
	trustPenalty = -0.2

	collectPollInterval = 2 * time.Millisecond
)

// Service implements the front-office operations for the contract engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	archive   *repository.Archive
	deduper   dedupe.Deduper
	engine    *negotiation.Engine
	evaluator *market.Evaluator
	valuer    rating.Valuer
	derived   *gocache.Cache

	// League state
	players     map[string]contract.Player
	pendingBids map[string][]market.Bid
	unresolved  map[string]int
	openFA      map[string]bool
	cycle       int

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	shardCount     int
	salaryCap      int64
	maxYears       int
	shortlistSize  int
	faCycles       int
	openFADiscount float64
	cacheTTL       time.Duration
	leagueYear     int
	archivePath    string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of market evaluation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the bid-group queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the bid deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the session store shard count.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithSalaryCap sets the league-wide salary cap.
func WithSalaryCap(limit int64) Option {
	return func(s *Service) {
		if limit > 0 {
			s.salaryCap = limit
		}
	}
}

// WithMaxContractYears caps negotiated contract length.
func WithMaxContractYears(years int) Option {
	return func(s *Service) {
		if years > 0 && years <= contract.MaxContractYears {
			s.maxYears = years
		}
	}
}

// WithShortlistSize bounds how many runner-up bids survive a cycle.
func WithShortlistSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.shortlistSize = size
		}
	}
}

// WithFACycles sets how many cycles run before unresolved players spill to
// open free agency.
func WithFACycles(cycles int) Option {
	return func(s *Service) {
		if cycles > 0 {
			s.faCycles = cycles
		}
	}
}

// WithOpenFADiscount sets the open free agency price discount in [0,1).
func WithOpenFADiscount(pct float64) Option {
	return func(s *Service) {
		if pct >= 0 && pct < 1 {
			s.openFADiscount = pct
		}
	}
}

// WithCacheTTL bounds how long derived values stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithLeagueYear sets the league calendar year new contracts start in.
func WithLeagueYear(year int) Option {
	return func(s *Service) {
		if year > 0 {
			s.leagueYear = year
		}
	}
}

// WithArchivePath enables the sqlite archive at the given path.
func WithArchivePath(path string) Option {
	return func(s *Service) {
		s.archivePath = path
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU() * 4,
		queueSize:      100000,
		dedupeSize:     500000,
		shardCount:     8,
		salaryCap:      250_000_000,
		maxYears:       contract.MaxContractYears,
		shortlistSize:  3,
		faCycles:       4,
		openFADiscount: 0.10,
		cacheTTL:       5 * time.Minute,
		leagueYear:     defaultLeagueYear,
		players:        make(map[string]contract.Player),
		pendingBids:    make(map[string][]market.Bid),
		unresolved:     make(map[string]int),
		openFA:         make(map[string]bool),
		logger:         nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get().Named("frontoffice")
	}

	s.logger.Info(ctx, "starting front-office service...")

	s.store = repository.NewMemStore(
		repository.WithShardCount(s.shardCount),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.derived = gocache.New(s.cacheTTL, 2*s.cacheTTL)
	s.engine = negotiation.NewEngine(
		negotiation.WithMaxContractYears(s.maxYears),
	)
	s.evaluator = market.NewEvaluator(
		market.WithShortlistSize(s.shortlistSize),
	)
	s.valuer = rating.NewInMemoryValuer()

	if s.archivePath != "" {
		archive, err := repository.OpenArchive(s.archivePath)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		s.archive = archive

		// Reload the books. Contract ids are store identities and are
		// reassigned on load; the archived rows carry the durable record.
		archived, err := archive.LoadContracts()
		if err != nil {
			return fmt.Errorf("load archived contracts: %w", err)
		}
		for _, sc := range archived {
			if _, err := s.store.AppendContract(ctx, sc.Contract); err != nil {
				return fmt.Errorf("restore contract %s: %w", sc.ID, err)
			}
		}
		if len(archived) > 0 {
			s.logger.Info(ctx, "restored contracts from archive",
				logger.Int("count", len(archived)),
			)
		}
	}

	s.started = true
	s.logger.Info(ctx, "front-office service started",
		logger.Int("workers", s.workerCount),
		logger.Int("shards", s.shardCount),
		logger.Int64("salaryCap", s.salaryCap),
		logger.Int("faCycles", s.faCycles),
	)

	return nil
}

// Stop gracefully shuts down the service, archiving state when configured.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping front-office service...")

	if s.archive != nil {
		if sessions, err := s.store.Sessions(ctx); err == nil {
			if err := s.archive.SaveSessions(sessions); err != nil {
				s.logger.Error(ctx, "archiving sessions failed", logger.Error(err))
			}
		}
		if contracts, err := s.store.Contracts(ctx); err == nil {
			if err := s.archive.SaveContracts(contracts); err != nil {
				s.logger.Error(ctx, "archiving contracts failed", logger.Error(err))
			}
		}
		if err := s.archive.Close(); err != nil {
			s.logger.Error(ctx, "closing archive failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "front-office service stopped")
}

// RegisterPlayer records a player so later offers and bids can resolve them.
// Re-registration overwrites: ratings change between seasons.
func (s *Service) RegisterPlayer(player contract.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player
}

// Player returns a registered player.
func (s *Service) Player(playerID string) (contract.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[playerID]
	if !ok {
		return contract.Player{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	return p, nil
}

// Personality returns the deterministic personality vector for a player.
// Cached: recomputation always yields the identical value, so the cache is a
// transparent speedup.
func (s *Service) Personality(playerID string) persona.Personality {
	key := "persona/" + playerID
	if v, ok := s.derived.Get(key); ok {
		return v.(persona.Personality)
	}
	p := persona.Of(playerID)
	s.derived.Set(key, p, gocache.DefaultExpiration)
	return p
}

// Rating computes (and caches) a player's overall from season statistics.
func (s *Service) Rating(ctx context.Context, player contract.Player, stats rating.SeasonStats) (rating.Rating, error) {
	key := "rating/" + player.ID
	if v, ok := s.derived.Get(key); ok {
		return v.(rating.Rating), nil
	}
	r, err := s.valuer.Rate(ctx, player, stats)
	if err != nil {
		return rating.Rating{}, err
	}
	s.derived.Set(key, r, gocache.DefaultExpiration)
	return r, nil
}

// MinimumFor returns the floor contract value the player will accept.
func (s *Service) MinimumFor(player contract.Player, isRookie bool, draftRound, pick int) int64 {
	key := fmt.Sprintf("floor/%s/%t/%d/%d", player.ID, isRookie, draftRound, pick)
	if v, ok := s.derived.Get(key); ok {
		return v.(int64)
	}
	var floor int64
	if isRookie {
		floor = wage.MinimumRookie(draftRound, pick, s.salaryCap)
	} else {
		tier := wage.TierOf(player.Overall, player.YearsExp)
		floor = wage.MinimumVeteran(tier, player.Age, player.Position, s.salaryCap)
	}
	s.derived.Set(key, floor, gocache.DefaultExpiration)
	return floor
}

// StartNegotiation opens a session between a player and a team. At most one
// session per pair is in flight; an active one is returned with
// ErrSessionActive and is superseded only by an explicit decline.
func (s *Service) StartNegotiation(ctx context.Context, player contract.Player, teamID string) (negotiation.Session, error) {
	if !s.isStarted() {
		return negotiation.Session{}, ErrNotStarted
	}
	s.RegisterPlayer(player)

	existing, err := s.store.GetSession(ctx, player.ID, teamID)
	if err == nil {
		if !existing.Terminal() {
			return existing, ErrSessionActive
		}
		// Terminal sessions are history; clear and renegotiate.
		_ = s.store.DeleteSession(ctx, player.ID, teamID)
	}

	sess := s.engine.NewSession(player, s.Personality(player.ID), teamID)
	if err := s.store.SaveSession(ctx, sess, 0); err != nil {
		return negotiation.Session{}, fmt.Errorf("save session: %w", err)
	}

	metrics.RecordSessionOpened()
	s.logger.Debug(ctx, "negotiation opened",
		logger.String("player_id", player.ID),
		logger.String("team_id", teamID),
		logger.Int64("reservation_aav", sess.Reservation.AAV),
		logger.Int("patience", sess.Patience),
	)
	return sess, nil
}

// DeclineNegotiation terminates a session from the team side.
func (s *Service) DeclineNegotiation(ctx context.Context, playerID, teamID string) (negotiation.Session, error) {
	if !s.isStarted() {
		return negotiation.Session{}, ErrNotStarted
	}
	sess, err := s.store.GetSession(ctx, playerID, teamID)
	if err != nil {
		return negotiation.Session{}, fmt.Errorf("get session: %w", err)
	}
	declined := s.engine.Decline(sess)
	if declined.Status == sess.Status {
		return declined, nil // already terminal, nothing to persist
	}
	if err := s.store.SaveSession(ctx, declined, sess.Round); err != nil {
		return negotiation.Session{}, fmt.Errorf("save session: %w", err)
	}
	return declined, nil
}

// SubmitOffer runs one negotiation round and persists the transition. On
// acceptance the offered terms become a signed contract: minimum-wage
// validated, cap checked, put on the books.
func (s *Service) SubmitOffer(ctx context.Context, playerID, teamID string, offer negotiation.Terms, mkt negotiation.MarketContext) (negotiation.Result, error) {
	if !s.isStarted() {
		return negotiation.Result{}, ErrNotStarted
	}
	player, err := s.Player(playerID)
	if err != nil {
		return negotiation.Result{}, err
	}
	sess, err := s.store.GetSession(ctx, playerID, teamID)
	if err != nil {
		return negotiation.Result{}, fmt.Errorf("get session: %w", err)
	}

	start := time.Now()
	result := s.engine.EvaluateOffer(sess, player, s.Personality(playerID), offer, mkt)
	metrics.RecordOfferEvaluated()
	metrics.RecordEvaluationLatency(float64(time.Since(start).Milliseconds()))

	if !result.OK {
		return result, nil
	}

	// An accepted offer must be signable before the acceptance becomes
	// durable; a team cannot book an accept it could never honor.
	var agreed contract.Contract
	if result.Accepted {
		agreed = buildContract(player.ID, teamID, offer, s.leagueYear)
		if err := s.checkSignable(ctx, agreed, player); err != nil {
			return negotiation.Result{}, err
		}
	}

	// Serialize racing offers on the round the session was read at.
	if err := s.store.SaveSession(ctx, result.Session, sess.Round); err != nil {
		return negotiation.Result{}, fmt.Errorf("save session: %w", err)
	}

	switch {
	case result.Accepted:
		metrics.RecordOfferAccepted()
		if err := s.signNegotiated(ctx, agreed, offer); err != nil {
			return result, err
		}
	case result.Session.Status == negotiation.StatusExpired:
		metrics.RecordSessionExpired()
	case result.Counter == nil:
		// Declined without a counter: the offer insulted the player.
		metrics.RecordLowballOffer()
	}

	return result, nil
}

// checkSignable verifies a proposed contract clears the wage floor and fits
// under the signing team's cap.
func (s *Service) checkSignable(ctx context.Context, c contract.Contract, player contract.Player) error {
	if verdict := wage.Validate(c, player, s.salaryCap, false, 0, 0); !verdict.IsValid {
		return fmt.Errorf("%w: %s", ErrBelowMinimum, verdict.Message)
	}

	existing, err := s.teamContracts(ctx, c.TeamID)
	if err != nil {
		return err
	}
	afford := contract.CanAffordByYear(c, existing, s.leagueYear, s.capRoomFor(ctx, c.TeamID, s.leagueYear))
	if !afford.Affordable {
		return fmt.Errorf("%w: year %d hit %d leaves %d", ErrCapExceeded, s.leagueYear, afford.NewHit, afford.Remaining)
	}
	return nil
}

// capRoomFor is the team's effective cap for a year: the league cap less
// dead money still charged from cuts. Dead money stays on the books even
// though the cut contract is gone.
func (s *Service) capRoomFor(ctx context.Context, teamID string, year int) int64 {
	return s.salaryCap - s.store.DeadMoney(ctx, teamID, year)
}

// signNegotiated puts an already-validated negotiated contract on the books.
func (s *Service) signNegotiated(ctx context.Context, c contract.Contract, terms negotiation.Terms) error {
	id, err := s.store.AppendContract(ctx, c)
	if err != nil {
		return fmt.Errorf("append contract: %w", err)
	}
	metrics.RecordPlayerSigned()
	s.archiveContracts(ctx)
	s.logger.Info(ctx, "negotiated contract signed",
		logger.String("player_id", c.PlayerID),
		logger.String("team_id", c.TeamID),
		logger.String("contract_id", id.String()),
		logger.Int64("aav", terms.AAV),
		logger.Int("years", terms.Years),
	)
	return nil
}

// SubmitBid queues a sealed bid for the next market cycle. Duplicate bid ids
// are dropped; structurally invalid contracts are refused.
func (s *Service) SubmitBid(ctx context.Context, bid market.Bid) error {
	if !s.isStarted() {
		return ErrNotStarted
	}
	if bid.ID == uuid.Nil {
		return fmt.Errorf("%w: missing bid id", ErrInvalidBid)
	}
	if _, err := s.Player(bid.PlayerID); err != nil {
		return err
	}
	if violations := contract.Validate(bid.Contract); len(violations) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidBid, strings.Join(violations, "; "))
	}

	if s.deduper.SeenAndRecord(ctx, bid.ID.String()) {
		metrics.RecordBidDuplicate()
		return fmt.Errorf("%w: %s", ErrDuplicateBid, bid.ID)
	}

	s.mu.Lock()
	s.pendingBids[bid.PlayerID] = append(s.pendingBids[bid.PlayerID], bid)
	s.mu.Unlock()

	metrics.RecordBidSubmitted()
	return nil
}

// PendingBids reports how many bids wait for the next cycle.
func (s *Service) PendingBids() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, bids := range s.pendingBids {
		total += len(bids)
	}
	return total
}

// RunMarketCycle clears every pending bid group in parallel, applies trust
// deltas, signs affordable winners, and advances unresolved players toward
// open free agency. Results come back ordered by player id.
func (s *Service) RunMarketCycle(ctx context.Context, mkt market.Context) ([]market.PlayerResult, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	start := time.Now()

	s.mu.Lock()
	groups := s.pendingBids
	s.pendingBids = make(map[string][]market.Bid)
	s.cycle++
	cycle := s.cycle
	players := make(map[string]contract.Player, len(groups))
	for pid := range groups {
		players[pid] = s.players[pid]
	}
	s.mu.Unlock()

	if len(groups) == 0 {
		return nil, nil
	}

	bidsByID := make(map[string]market.Bid)
	for _, bids := range groups {
		for _, b := range bids {
			bidsByID[b.ID.String()] = b
		}
	}

	// One queue and pool per cycle: enqueue every group, close the queue,
	// and let the workers drain it into the collector.
	q := bidqueue.NewInMemoryQueue(
		bidqueue.WithCapacity(s.queueSize),
		bidqueue.WithBufferSize(maxInt(len(groups), 1)),
	)
	collector := &resultCollector{}
	pool := workerpool.NewPool(s.workerCount, q, s.evaluator, collector)
	pool.Start(ctx)

	expected := 0
	for pid, bids := range groups {
		job := bidqueue.Job{PlayerID: pid, Player: players[pid], Bids: bids, Ctx: mkt}
		if !q.Enqueue(ctx, job) {
			s.logger.Error(ctx, "bid group dropped: queue refused job",
				logger.String("player_id", pid),
			)
			continue
		}
		expected++
	}
	_ = q.Close()

	for collector.Count() < expected {
		select {
		case <-ctx.Done():
			pool.Stop()
			return nil, ctx.Err()
		case <-time.After(collectPollInterval):
		}
	}
	pool.Stop()

	results := collector.Results()
	for i := range results {
		s.settleResult(ctx, &results[i], bidsByID)
	}

	s.mu.Lock()
	for _, r := range results {
		if r.AcceptedBidID != nil {
			delete(s.unresolved, r.PlayerID)
			continue
		}
		s.unresolved[r.PlayerID]++
		if s.unresolved[r.PlayerID] >= s.faCycles {
			s.openFA[r.PlayerID] = true
			delete(s.unresolved, r.PlayerID)
		}
	}
	s.mu.Unlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].PlayerID < results[j].PlayerID
	})

	if s.archive != nil {
		if err := s.archive.AppendMarketResults(cycle, results); err != nil {
			s.logger.Error(ctx, "archiving market results failed", logger.Error(err))
		}
	}

	metrics.RecordMarketCycleLatency(float64(time.Since(start).Milliseconds()))
	s.logger.Info(ctx, "market cycle cleared",
		logger.Int("cycle", cycle),
		logger.Int("groups", expected),
		logger.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

// settleResult applies a clearing outcome to league state: trust deltas and,
// when the winner can fit the deal under its cap, the signing itself. An
// unaffordable accepted bid downgrades to a rejection.
func (s *Service) settleResult(ctx context.Context, r *market.PlayerResult, bidsByID map[string]market.Bid) {
	if r.AcceptedBidID != nil {
		bid, ok := bidsByID[r.AcceptedBidID.String()]
		if ok && !s.canAffordBid(ctx, bid) {
			// The winning team cannot fit the deal; the player hears a
			// retracted offer, the market hears a broken promise.
			if r.TrustImpact == nil {
				r.TrustImpact = make(map[string]float64)
			}
			r.TrustImpact[bid.TeamID] += trustPenalty - trustReward
			r.Rejected = append(r.Rejected, *r.AcceptedBidID)
			r.AcceptedBidID = nil
			r.Feedback = fmt.Sprintf("%s's winning offer fell through: no cap room.", bid.TeamID)
		}
	}

	for teamID, delta := range r.TrustImpact {
		s.store.ApplyTrustDelta(ctx, teamID, delta)
	}

	if r.AcceptedBidID == nil {
		return
	}
	bid, ok := bidsByID[r.AcceptedBidID.String()]
	if !ok {
		return
	}
	id, err := s.store.AppendContract(ctx, bid.Contract)
	if err != nil {
		s.logger.Error(ctx, "signing cleared bid failed", logger.Error(err))
		return
	}
	metrics.RecordPlayerSigned()
	s.archiveContracts(ctx)
	s.logger.Info(ctx, "market signing",
		logger.String("player_id", r.PlayerID),
		logger.String("team_id", bid.TeamID),
		logger.String("contract_id", id.String()),
	)
}

func (s *Service) canAffordBid(ctx context.Context, bid market.Bid) bool {
	existing, err := s.teamContracts(ctx, bid.TeamID)
	if err != nil {
		return false
	}
	year := bid.Contract.StartYear
	return contract.CanAffordByYear(bid.Contract, existing, year, s.capRoomFor(ctx, bid.TeamID, year)).Affordable
}

// OpenFAEligible reports whether the player has spilled to open free agency.
func (s *Service) OpenFAEligible(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openFA[playerID]
}

// SignOpenFA directly assigns an open free agent to the first requesting team
// with cap room: one year, no bonus, no guarantees, discounted price.
func (s *Service) SignOpenFA(ctx context.Context, playerID, teamID string, mkt market.Context) (repository.SignedContract, error) {
	if !s.isStarted() {
		return repository.SignedContract{}, ErrNotStarted
	}
	if !s.OpenFAEligible(playerID) {
		return repository.SignedContract{}, fmt.Errorf("%w: %s", ErrNotOpenFA, playerID)
	}
	player, err := s.Player(playerID)
	if err != nil {
		return repository.SignedContract{}, err
	}

	c, err := market.OpenFAContract(player, mkt, teamID, s.leagueYear, s.openFADiscount)
	if err != nil {
		return repository.SignedContract{}, fmt.Errorf("price open free agent: %w", err)
	}

	existing, err := s.teamContracts(ctx, teamID)
	if err != nil {
		return repository.SignedContract{}, err
	}
	afford := contract.CanAffordByYear(c, existing, s.leagueYear, s.capRoomFor(ctx, teamID, s.leagueYear))
	if !afford.Affordable {
		return repository.SignedContract{}, fmt.Errorf("%w: year %d hit %d leaves %d", ErrCapExceeded, s.leagueYear, afford.NewHit, afford.Remaining)
	}

	id, err := s.store.AppendContract(ctx, c)
	if err != nil {
		return repository.SignedContract{}, fmt.Errorf("append contract: %w", err)
	}

	s.mu.Lock()
	delete(s.openFA, playerID)
	s.mu.Unlock()

	metrics.RecordOpenFASigning()
	s.archiveContracts(ctx)
	s.logger.Info(ctx, "open FA signing",
		logger.String("player_id", playerID),
		logger.String("team_id", teamID),
		logger.Int64("price", c.BaseSalary[s.leagueYear]),
	)
	return repository.SignedContract{ID: id, Contract: c}, nil
}

// CutPlayer terminates a contract and reports the dead money the cut leaves
// behind.
func (s *Service) CutPlayer(ctx context.Context, contractID uuid.UUID, cutYear int, preJune1 bool) (contract.DeadMoneyResult, error) {
	if !s.isStarted() {
		return contract.DeadMoneyResult{}, ErrNotStarted
	}
	sc, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return contract.DeadMoneyResult{}, fmt.Errorf("get contract: %w", err)
	}

	dead := contract.DeadMoney(sc.Contract, cutYear, preJune1)
	if err := s.store.RemoveContract(ctx, contractID); err != nil {
		return contract.DeadMoneyResult{}, fmt.Errorf("remove contract: %w", err)
	}
	// The cut contract is off the books, but its unamortized bonus is not:
	// the charges stay against the team's cap in the cut year and the next.
	if dead.CurrentYear > 0 {
		s.store.AddDeadMoney(ctx, sc.Contract.TeamID, cutYear, dead.CurrentYear)
	}
	if dead.NextYear > 0 {
		s.store.AddDeadMoney(ctx, sc.Contract.TeamID, cutYear+1, dead.NextYear)
	}
	s.archiveContracts(ctx)

	s.logger.Info(ctx, "player cut",
		logger.String("player_id", sc.Contract.PlayerID),
		logger.String("team_id", sc.Contract.TeamID),
		logger.Int64("dead_money", dead.RemainingBonus),
	)
	return dead, nil
}

// TeamTrust returns a team's accumulated trust score; unknown teams are
// neutral zero.
func (s *Service) TeamTrust(ctx context.Context, teamID string) float64 {
	return s.store.Trust(ctx, teamID)
}

// TeamDeadMoney returns the dead money charged against a team's cap for a
// year; teams with no cuts owe zero.
func (s *Service) TeamDeadMoney(ctx context.Context, teamID string, year int) int64 {
	return s.store.DeadMoney(ctx, teamID, year)
}

// Sessions returns every negotiation session the store tracks.
func (s *Service) Sessions(ctx context.Context) ([]negotiation.Session, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.store.Sessions(ctx)
}

// ContractsByTeam returns a team's signed contracts.
func (s *Service) ContractsByTeam(ctx context.Context, teamID string) ([]repository.SignedContract, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.store.ContractsByTeam(ctx, teamID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	pending := 0
	for _, bids := range s.pendingBids {
		pending += len(bids)
	}
	stats := map[string]interface{}{
		"started":     started,
		"workerCount": s.workerCount,
		"cycle":       s.cycle,
		"pendingBids": pending,
		"openFA":      len(s.openFA),
	}
	s.mu.RUnlock()

	if started {
		ctx := context.Background()
		sessions := s.store.SessionCount(ctx)
		contracts := s.store.ContractCount(ctx)
		stats["sessions"] = sessions
		stats["contracts"] = contracts
		stats["dedupeSize"] = s.deduper.Size()
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

func (s *Service) teamContracts(ctx context.Context, teamID string) ([]contract.Contract, error) {
	signed, err := s.store.ContractsByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list team contracts: %w", err)
	}
	out := make([]contract.Contract, len(signed))
	for i, sc := range signed {
		out[i] = sc.Contract
	}
	return out, nil
}

// archiveContracts snapshots the books into the archive, best effort.
func (s *Service) archiveContracts(ctx context.Context) {
	if s.archive == nil {
		return
	}
	contracts, err := s.store.Contracts(ctx)
	if err != nil {
		return
	}
	if err := s.archive.SaveContracts(contracts); err != nil {
		s.logger.Error(ctx, "archiving contracts failed", logger.Error(err))
	}
}

// buildContract turns accepted terms into a contract: even base salaries with
// the rounding remainder in year one, a bonus share of total value, and one
// full guarantee matching the negotiated guaranteed fraction.
func buildContract(playerID, teamID string, terms negotiation.Terms, startYear int) contract.Contract {
	years := terms.Years
	if years < 1 {
		years = 1
	}
	total := terms.AAV * int64(years)
	bonus := int64(math.Round(float64(total) * signingBonusShare))

	perYear := (total - bonus) / int64(years)
	base := make(map[int]int64, years)
	for y := startYear; y < startYear+years; y++ {
		base[y] = perYear
	}
	base[startYear] += (total - bonus) - perYear*int64(years)

	c := contract.Contract{
		PlayerID:     playerID,
		TeamID:       teamID,
		StartYear:    startYear,
		EndYear:      startYear + years - 1,
		BaseSalary:   base,
		SigningBonus: bonus,
	}

	if gtd := int64(math.Round(float64(total) * terms.GtdPct)); gtd > 0 {
		c.Guarantees = []contract.Guarantee{
			{Type: contract.GuaranteeFull, Amount: gtd, Year: startYear},
		}
	}
	return c
}

// resultCollector is the worker sink: a mutex-guarded slice of clearing
// results.
type resultCollector struct {
	mu      sync.Mutex
	results []market.PlayerResult
}

func (c *resultCollector) Collect(_ context.Context, result market.PlayerResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
	return nil
}

func (c *resultCollector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

func (c *resultCollector) Results() []market.PlayerResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]market.PlayerResult, len(c.results))
	copy(out, c.results)
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
