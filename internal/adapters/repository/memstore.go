package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/frontoffice/internal/domain/contract"
	"github.com/okian/frontoffice/internal/domain/negotiation"
	"github.com/okian/frontoffice/pkg/metrics"
)

const defaultShardCount = 8

// sessionShard holds a slice of the session map under its own lock.
// Sessions are the write-hot record; sharding keeps offer submission for
// different players from contending.
type sessionShard struct {
	mu       sync.RWMutex
	sessions map[string]negotiation.Session
}

// MemStore is the in-memory Store implementation. Sessions are sharded by
// FNV hash of the (player, team) key; contracts and trust see far less
// traffic and live behind single locks.
type MemStore struct {
	shardCount int
	shards     []*sessionShard

	contractMu sync.RWMutex
	contracts  map[uuid.UUID]SignedContract
	byTeam     map[string][]uuid.UUID

	trustMu sync.RWMutex
	trust   map[string]float64

	deadMu sync.RWMutex
	dead   map[string]map[int]int64
}

// NewMemStore creates an empty store with configuration options.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		shardCount: defaultShardCount,
		contracts:  make(map[uuid.UUID]SignedContract),
		byTeam:     make(map[string][]uuid.UUID),
		trust:      make(map[string]float64),
		dead:       make(map[string]map[int]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*sessionShard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &sessionShard{sessions: make(map[string]negotiation.Session)}
	}
	metrics.UpdateStoreShardCount(s.shardCount)
	return s
}

func sessionKey(playerID, teamID string) string {
	return playerID + "/" + teamID
}

func (s *MemStore) shardFor(key string) *sessionShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%uint32(s.shardCount)]
}

// GetSession returns the session for the (player, team) pair.
func (s *MemStore) GetSession(_ context.Context, playerID, teamID string) (negotiation.Session, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	key := sessionKey(playerID, teamID)
	shard := s.shardFor(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()

	sess, ok := shard.sessions[key]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return negotiation.Session{}, ErrNotFound
	}
	return sess, nil
}

// SaveSession persists a session transition with round-based CAS.
func (s *MemStore) SaveSession(_ context.Context, sess negotiation.Session, expectedRound int) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	key := sessionKey(sess.PlayerID, sess.TeamID)
	shard := s.shardFor(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	current, exists := shard.sessions[key]
	switch {
	case expectedRound == 0:
		if exists {
			metrics.RecordErrorByComponent("repository", "session_exists")
			return ErrSessionExists
		}
	case !exists:
		metrics.RecordErrorByComponent("repository", "not_found")
		return ErrNotFound
	case current.Round != expectedRound:
		metrics.RecordErrorByComponent("repository", "stale_session")
		return ErrStaleSession
	}

	shard.sessions[key] = sess
	return nil
}

// DeleteSession removes the session for the pair. Missing sessions are a
// no-op.
func (s *MemStore) DeleteSession(_ context.Context, playerID, teamID string) error {
	key := sessionKey(playerID, teamID)
	shard := s.shardFor(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	delete(shard.sessions, key)
	return nil
}

// Sessions returns every tracked session, ordered by (player, team) key.
func (s *MemStore) Sessions(_ context.Context) ([]negotiation.Session, error) {
	out := []negotiation.Session{}
	for _, shard := range s.shards {
		shard.mu.RLock()
		for _, sess := range shard.sessions {
			out = append(out, sess)
		}
		shard.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return sessionKey(out[i].PlayerID, out[i].TeamID) < sessionKey(out[j].PlayerID, out[j].TeamID)
	})
	return out, nil
}

// AppendContract puts a signed contract on the books.
func (s *MemStore) AppendContract(_ context.Context, c contract.Contract) (uuid.UUID, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.contractMu.Lock()
	defer s.contractMu.Unlock()

	id := uuid.New()
	s.contracts[id] = SignedContract{ID: id, Contract: c}
	s.byTeam[c.TeamID] = append(s.byTeam[c.TeamID], id)
	metrics.UpdateStoreContractsTotal(len(s.contracts))
	return id, nil
}

// GetContract returns a signed contract by id.
func (s *MemStore) GetContract(_ context.Context, id uuid.UUID) (SignedContract, error) {
	s.contractMu.RLock()
	defer s.contractMu.RUnlock()

	sc, ok := s.contracts[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return SignedContract{}, ErrNotFound
	}
	return sc, nil
}

// RemoveContract takes a contract off the books.
func (s *MemStore) RemoveContract(_ context.Context, id uuid.UUID) error {
	s.contractMu.Lock()
	defer s.contractMu.Unlock()

	sc, ok := s.contracts[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.contracts, id)

	ids := s.byTeam[sc.Contract.TeamID]
	for i, cid := range ids {
		if cid == id {
			s.byTeam[sc.Contract.TeamID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	metrics.UpdateStoreContractsTotal(len(s.contracts))
	return nil
}

// ContractsByTeam returns a team's signed contracts in signing order.
func (s *MemStore) ContractsByTeam(_ context.Context, teamID string) ([]SignedContract, error) {
	s.contractMu.RLock()
	defer s.contractMu.RUnlock()

	ids := s.byTeam[teamID]
	out := make([]SignedContract, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.contracts[id])
	}
	return out, nil
}

// Contracts returns every signed contract, ordered by id.
func (s *MemStore) Contracts(_ context.Context) ([]SignedContract, error) {
	s.contractMu.RLock()
	defer s.contractMu.RUnlock()

	out := make([]SignedContract, 0, len(s.contracts))
	for _, sc := range s.contracts {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].ID.String(), out[j].ID.String()) < 0
	})
	return out, nil
}

// Trust returns the team's accumulated trust score.
func (s *MemStore) Trust(_ context.Context, teamID string) float64 {
	s.trustMu.RLock()
	defer s.trustMu.RUnlock()
	return s.trust[teamID]
}

// ApplyTrustDelta shifts a team's trust and returns the new value.
func (s *MemStore) ApplyTrustDelta(_ context.Context, teamID string, delta float64) float64 {
	s.trustMu.Lock()
	defer s.trustMu.Unlock()
	s.trust[teamID] += delta
	return s.trust[teamID]
}

// AddDeadMoney charges dead money against a team's cap for a year and
// returns the year's new total.
func (s *MemStore) AddDeadMoney(_ context.Context, teamID string, year int, amount int64) int64 {
	s.deadMu.Lock()
	defer s.deadMu.Unlock()
	if s.dead[teamID] == nil {
		s.dead[teamID] = make(map[int]int64)
	}
	s.dead[teamID][year] += amount
	return s.dead[teamID][year]
}

// DeadMoney returns the team's accumulated dead-money charge for a year.
func (s *MemStore) DeadMoney(_ context.Context, teamID string, year int) int64 {
	s.deadMu.RLock()
	defer s.deadMu.RUnlock()
	return s.dead[teamID][year]
}

// SessionCount reports how many sessions the store tracks.
func (s *MemStore) SessionCount(_ context.Context) int {
	total := 0
	for i, shard := range s.shards {
		shard.mu.RLock()
		n := len(shard.sessions)
		shard.mu.RUnlock()
		total += n
		metrics.UpdateStoreRecordsPerShard(strconv.Itoa(i), n)
	}
	metrics.UpdateStoreSessionsTotal(total)
	return total
}

// ContractCount reports how many contracts are on the books.
func (s *MemStore) ContractCount(_ context.Context) int {
	s.contractMu.RLock()
	defer s.contractMu.RUnlock()
	return len(s.contracts)
}

var _ Store = (*MemStore)(nil)
