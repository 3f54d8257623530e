// Package netconfig carries the immutable network parameters a
// DataChannel/PeerChannel factory is constructed with: a single value
// injected at construction time rather than a package-level global.
package netconfig

import (
	"errors"
	"fmt"
	"time"
)

// DefaultMagic identifies the standard protocol family on the wire ("RBT0").
// It is the canonical source for wire.Magic's default; wire imports this
// package, not the other way around, so a NetworkConfig value can actually
// govern codec behavior instead of a compile-time constant on each side.
const DefaultMagic uint32 = 0x52425430

// Config is every parameter the core needs to know about the network it is
// speaking on. It is constructed once per process (or per test) and passed
// by value into channel factories; nothing here is mutated after
// construction.
type Config struct {
	// Magic identifies the protocol family on the wire. Left overridable
	// (rather than hardcoded) so a test network can run alongside a
	// production one without cross-talk.
	Magic uint32

	ChunkSizeMax   uint32
	MessageSizeMax uint32
	ChunkTimeoutMS uint32
	MsgTimeoutMS   uint32

	// BanThreshold/ThrottleThreshold are ban-score levels surfaced to the
	// address-book layer; the core only produces the score deltas (see
	// package banscore), never the ban decision itself.
	BanThreshold      int
	ThrottleThreshold int

	MaxPeers int
}

// Default returns the standard network configuration.
func Default() Config {
	return Config{
		Magic:             DefaultMagic,
		ChunkSizeMax:      16384,
		MessageSizeMax:    10 * 1024 * 1024,
		ChunkTimeoutMS:    5000,
		MsgTimeoutMS:      3_200_000,
		BanThreshold:      100,
		ThrottleThreshold: 50,
		MaxPeers:          64,
	}
}

// ChunkTimeout returns ChunkTimeoutMS as a time.Duration.
func (c Config) ChunkTimeout() time.Duration {
	return time.Duration(c.ChunkTimeoutMS) * time.Millisecond
}

// MsgTimeout returns MsgTimeoutMS as a time.Duration.
func (c Config) MsgTimeout() time.Duration {
	return time.Duration(c.MsgTimeoutMS) * time.Millisecond
}

// Validate rejects configurations that would violate a core invariant. It
// is called once at startup, not threaded through every call site.
func Validate(cfg Config) error {
	if cfg.Magic == 0 {
		return errors.New("netconfig: magic is required")
	}
	if cfg.ChunkSizeMax == 0 {
		return errors.New("netconfig: chunk_size_max must be > 0")
	}
	if cfg.MessageSizeMax == 0 {
		return errors.New("netconfig: message_size_max must be > 0")
	}
	if uint64(cfg.ChunkSizeMax) > uint64(cfg.MessageSizeMax) {
		return fmt.Errorf("netconfig: chunk_size_max (%d) exceeds message_size_max (%d)", cfg.ChunkSizeMax, cfg.MessageSizeMax)
	}
	if cfg.ChunkTimeoutMS == 0 {
		return errors.New("netconfig: chunk_timeout_ms must be > 0")
	}
	if cfg.MsgTimeoutMS == 0 {
		return errors.New("netconfig: msg_timeout_ms must be > 0")
	}
	if cfg.MsgTimeoutMS < cfg.ChunkTimeoutMS {
		return errors.New("netconfig: msg_timeout_ms must be >= chunk_timeout_ms")
	}
	if cfg.BanThreshold <= 0 {
		return errors.New("netconfig: ban_threshold must be > 0")
	}
	if cfg.ThrottleThreshold <= 0 || cfg.ThrottleThreshold > cfg.BanThreshold {
		return errors.New("netconfig: throttle_threshold must be in (0, ban_threshold]")
	}
	if cfg.MaxPeers <= 0 || cfg.MaxPeers > 4096 {
		return errors.New("netconfig: max_peers must be in (0, 4096]")
	}
	return nil
}
