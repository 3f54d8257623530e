// Package banscore tracks a per-peer reputation score built from the
// wire-level PeerChannel close reasons and protocol violations the core
// itself can observe. The ban/throttle decision and any actual
// disconnection remain an address-book layer's responsibility; this
// package only produces and decays the score.
package banscore

import "time"

const (
	// DecayPerMinute is how many score points decay away per wall-clock
	// minute.
	DecayPerMinute = 1
)

// Reason enumerates the score-worthy events this core can report about a
// peer. Values mirror peerchannel.CloseType plus a couple of protocol
// violation buckets that never reach a close (e.g. a single rejected
// message). Declared independently of peerchannel to avoid a dependency
// cycle (peerchannel wraps DataChannel; banscore wraps neither).
type Reason int

const (
	ReasonGeneric Reason = iota
	ReasonFailedToParseMessageType
	ReasonProtocolViolation
	ReasonRejectSent
	ReasonExpectationTimeout
)

// Delta is the default ban-score increment for each Reason.
// FailedToParseMessageType is weighted highest since it indicates either a
// corrupt/hostile peer or a wire-incompatible one; a single REJECT or
// expectation timeout is weighted like a soft signal, not a violation.
var Delta = map[Reason]int{
	ReasonGeneric:                  0,
	ReasonFailedToParseMessageType: 100,
	ReasonProtocolViolation:        50,
	ReasonRejectSent:               10,
	ReasonExpectationTimeout:       5,
}

// DeltaFor returns the configured delta for reason, or 0 for an unknown
// value (never panics on an unrecognized Reason: a forward-compatible
// caller might pass one this package hasn't enumerated yet).
func DeltaFor(reason Reason) int {
	return Delta[reason]
}

// Score is a small deterministic policy primitive: additive penalties that
// decay linearly by wall-clock minute. It carries no network I/O.
type Score struct {
	score       int
	lastUpdated time.Time
}

// DefaultBanThreshold/DefaultThrottleThreshold are the default levels; a
// caller can hold its own thresholds (e.g. from netconfig.Config) and
// compare directly against Value instead of using ShouldBan/ShouldThrottle
// if it wants non-default levels.
const (
	DefaultBanThreshold      = 100
	DefaultThrottleThreshold = 50
)

// Value returns the current score after applying decay up to now.
func (s *Score) Value(now time.Time) int {
	s.decayTo(now)
	return s.score
}

// Add applies delta (typically DeltaFor(reason)) and returns the resulting
// score. Never goes negative.
func (s *Score) Add(now time.Time, delta int) int {
	s.decayTo(now)
	s.score += delta
	if s.score < 0 {
		s.score = 0
	}
	return s.score
}

// AddReason is a convenience wrapper around Add(now, DeltaFor(reason)).
func (s *Score) AddReason(now time.Time, reason Reason) int {
	return s.Add(now, DeltaFor(reason))
}

func (s *Score) ShouldBan(now time.Time) bool {
	return s.Value(now) >= DefaultBanThreshold
}

func (s *Score) ShouldThrottle(now time.Time) bool {
	return s.Value(now) >= DefaultThrottleThreshold
}

func (s *Score) decayTo(now time.Time) {
	if s.lastUpdated.IsZero() {
		s.lastUpdated = now
		return
	}
	if now.Before(s.lastUpdated) {
		s.lastUpdated = now
		return
	}
	minutes := int(now.Sub(s.lastUpdated) / time.Minute)
	if minutes <= 0 {
		return
	}
	dec := minutes * DecayPerMinute
	s.score -= dec
	if s.score < 0 {
		s.score = 0
	}
	s.lastUpdated = now
}
