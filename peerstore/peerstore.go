// Package peerstore persists per-peer reputation across restarts: last
// seen time, current ban score, the most recent close reason and a count
// of closes. It is
// the narrow peer-address-book record an embedder's reputation layer
// needs, fed by peerchannel.CloseType and banscore.Reason.
package peerstore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"rubin.dev/p2pcore/banscore"
)

var bucketPeers = []byte("peers_by_address")

// Record is everything the address-book layer remembers about one peer
// address between connections.
type Record struct {
	Address        string    `json:"address"`
	LastSeen       time.Time `json:"last_seen"`
	BanScore       int       `json:"ban_score"`
	BanScoreAsOf   time.Time `json:"ban_score_as_of"`
	LastCloseType  string    `json:"last_close_type,omitempty"`
	CloseCount     uint64    `json:"close_count"`
	SuccessfulConn uint64    `json:"successful_connections"`
}

// PeerBook is a bbolt-backed store of Records keyed by peer address.
type PeerBook struct {
	path string
	db   *bolt.DB
}

// Open creates (if needed) and opens the peer book at datadir/peerbook.db.
func Open(datadir string) (*PeerBook, error) {
	if datadir == "" {
		return nil, fmt.Errorf("peerstore: datadir required")
	}
	if err := os.MkdirAll(datadir, 0o755); err != nil {
		return nil, fmt.Errorf("peerstore: mkdir %s: %w", datadir, err)
	}
	path := filepath.Join(datadir, "peerbook.db")
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("peerstore: open bbolt: %w", err)
	}
	if err := bdb.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPeers)
		return err
	}); err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("peerstore: create bucket: %w", err)
	}
	return &PeerBook{path: path, db: bdb}, nil
}

// Close closes the underlying database handle.
func (pb *PeerBook) Close() error {
	if pb == nil || pb.db == nil {
		return nil
	}
	return pb.db.Close()
}

// Path returns the on-disk file backing this peer book.
func (pb *PeerBook) Path() string { return pb.path }

// Get returns the record for address, or (nil, false, nil) if unknown.
func (pb *PeerBook) Get(address string) (*Record, bool, error) {
	var rec *Record
	err := pb.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketPeers).Get([]byte(address))
		if raw == nil {
			return nil
		}
		var r Record
		if err := json.Unmarshal(raw, &r); err != nil {
			return fmt.Errorf("decode record for %s: %w", address, err)
		}
		rec = &r
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return rec, rec != nil, nil
}

// Put overwrites the stored record for address.
func (pb *PeerBook) Put(rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record for %s: %w", rec.Address, err)
	}
	return pb.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPeers).Put([]byte(rec.Address), raw)
	})
}

// RecordConnected upserts a record's LastSeen and bumps SuccessfulConn.
func (pb *PeerBook) RecordConnected(address string, now time.Time) error {
	rec, _, err := pb.Get(address)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &Record{Address: address}
	}
	rec.LastSeen = now
	rec.SuccessfulConn++
	return pb.Put(*rec)
}

// RecordClose upserts a record's ban score (after applying reason's delta
// and decay) and close-reason bookkeeping. The ban/throttle decision
// itself stays with the caller: this only persists the inputs to it.
func (pb *PeerBook) RecordClose(address string, now time.Time, reason banscore.Reason, closeTypeName string) (newScore int, err error) {
	rec, _, err := pb.Get(address)
	if err != nil {
		return 0, err
	}
	if rec == nil {
		rec = &Record{Address: address}
	}

	// Reconstruct the in-memory decaying score from the persisted
	// snapshot, apply this event, then snapshot it back.
	restored := restoreScore(rec.BanScore, rec.BanScoreAsOf)
	newScore = restored.AddReason(now, reason)

	rec.BanScore = newScore
	rec.BanScoreAsOf = now
	rec.LastCloseType = closeTypeName
	rec.CloseCount++

	if err := pb.Put(*rec); err != nil {
		return 0, err
	}
	return newScore, nil
}

// restoreScore rebuilds a banscore.Score whose Value(asOf) would equal
// score, so that a freshly loaded record continues decaying from where it
// left off rather than resetting decay's clock on every process restart.
func restoreScore(score int, asOf time.Time) *banscore.Score {
	s := &banscore.Score{}
	if asOf.IsZero() {
		return s
	}
	s.Add(asOf, score)
	return s
}

// keyForUint64 is unused by the current schema (addresses are stored as
// plain strings) but kept available for a future height-ordered secondary
// index, using the same big-endian key convention rather than introducing
// a different one later.
func keyForUint64(n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return b[:]
}
