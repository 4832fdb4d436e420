// Package persona derives a player's negotiation personality from their
// stable identifier.
//
// Determinism is a hard invariant here: the same id must produce a
// bit-for-bit identical vector on every call, on every run, on every
// platform. Nothing in this package touches a global RNG; every draw comes
// from an explicit splitmix64 stream keyed by an FNV-1a hash of the id.
package persona

import (
	"hash/fnv"
)

// Slider sub-ranges. Every slider is bounded away from the extremes so no
// generated agent is a caricature.
const (
	riskMin, riskMax         = 0.2, 0.8
	securityMin, securityMax = 0.1, 0.9
	agentMin, agentMax       = 0.3, 1.0
	loyaltyMin, loyaltyMax   = 0.1, 0.9
	moneyMin, moneyMax       = 0.2, 0.9
	savvyMin, savvyMax       = 0.1, 0.9
)

// Priority emission thresholds and weights.
const (
	roleThreshold      = 0.5
	contenderThreshold = 0.6
	hometownThreshold  = 0.7

	roleWeight      = 0.15
	contenderWeight = 0.20
	hometownWeight  = 0.10
)

// Per-slider salts. Changing any of these changes every generated league, so
// they are frozen.
const (
	saltRisk      = 0x9e3779b97f4a7c15
	saltSecurity  = 0xbf58476d1ce4e5b9
	saltAgent     = 0x94d049bb133111eb
	saltLoyalty   = 0x2545f4914f6cdd1d
	saltMoney     = 0xd6e8feb86659fd93
	saltSavvy     = 0xa5a5a5a5a5a5a5a5
	saltRole      = 0xc2b2ae3d27d4eb4f
	saltContender = 0x165667b19e3779f9
	saltHometown  = 0x27d4eb2f165667c5
)

// PriorityKind names what a player weighs beyond money when picking a team.
type PriorityKind string

// Priority kinds.
const (
	PriorityRole      PriorityKind = "role"
	PriorityContender PriorityKind = "contender"
	PriorityHometown  PriorityKind = "hometown"
)

// TeamPriority is a weighted non-financial preference.
type TeamPriority struct {
	Kind   PriorityKind `json:"kind"`
	Weight float64      `json:"weight"`
}

// Personality is the deterministic negotiation profile of a player. It is
// never stored; recomputing it from the id always yields the same value.
type Personality struct {
	RiskTolerance float64        `json:"risk_tolerance"`
	SecurityPref  float64        `json:"security_pref"`
	AgentQuality  float64        `json:"agent_quality"`
	Loyalty       float64        `json:"loyalty"`
	MoneyVsRole   float64        `json:"money_vs_role"`
	MarketSavvy   float64        `json:"market_savvy"`
	Priorities    []TeamPriority `json:"priorities,omitempty"`
}

// Of computes the personality vector for a player id.
func Of(playerID string) Personality {
	seed := hashID(playerID)

	p := Personality{
		RiskTolerance: slider(seed, saltRisk, riskMin, riskMax),
		SecurityPref:  slider(seed, saltSecurity, securityMin, securityMax),
		AgentQuality:  slider(seed, saltAgent, agentMin, agentMax),
		Loyalty:       slider(seed, saltLoyalty, loyaltyMin, loyaltyMax),
		MoneyVsRole:   slider(seed, saltMoney, moneyMin, moneyMax),
		MarketSavvy:   slider(seed, saltSavvy, savvyMin, savvyMax),
	}

	if draw(seed, saltRole) > roleThreshold {
		p.Priorities = append(p.Priorities, TeamPriority{Kind: PriorityRole, Weight: roleWeight})
	}
	if draw(seed, saltContender) > contenderThreshold {
		p.Priorities = append(p.Priorities, TeamPriority{Kind: PriorityContender, Weight: contenderWeight})
	}
	if draw(seed, saltHometown) > hometownThreshold {
		p.Priorities = append(p.Priorities, TeamPriority{Kind: PriorityHometown, Weight: hometownWeight})
	}

	return p
}

// hashID folds the player id into a 64-bit seed.
func hashID(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

// splitmix64 is the finalizer from Steele et al.'s SplittableRandom. One
// round is enough to decorrelate seed^salt pairs.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// draw maps seed+salt into [0,1).
func draw(seed, salt uint64) float64 {
	return float64(splitmix64(seed^salt)>>11) / float64(1<<53)
}

// slider maps a salted draw into the [min,max] sub-range.
func slider(seed, salt uint64, min, max float64) float64 {
	return min + draw(seed, salt)*(max-min)
}
