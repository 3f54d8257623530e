package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"rubin.dev/p2pcore/netconfig"
)

// Frame header layout: magic(4) ‖ type(1) ‖ length(4, big endian, total
// including header and checksum) ‖ checksum(4, first 4 bytes of a hash over
// the payload) ‖ payload.
const (
	magicBytes    = 4
	typeBytes     = 1
	lengthBytes   = 4
	checksumBytes = 4

	// HeaderSize is the fixed prefix length before the payload.
	HeaderSize = magicBytes + typeBytes + lengthBytes + checksumBytes
)

// ErrMalformed is wrapped by every parse failure: magic mismatch, unknown
// type, checksum failure, or length mismatch.
var ErrMalformed = fmt.Errorf("wire: malformed message")

// ChecksumFunc computes the checksum seed for a payload: a Blake2b-256
// digest. It is a package variable (not an interface) so callers can swap
// hash implementations for testing.
var ChecksumFunc = func(payload []byte) [32]byte {
	return blake2b.Sum256(payload)
}

func checksum4(payload []byte) [4]byte {
	d := ChecksumFunc(payload)
	var out [4]byte
	copy(out[:], d[:4])
	return out
}

// Message is a parsed wire frame: a typed payload tagged with its wire
// Type. Payload is already the variant's encoded bytes; callers decode it
// with the matching per-type Decode function.
type Message struct {
	Type    Type
	Payload []byte
}

// Codec serializes and parses frames against a magic value and a message
// size bound taken from a netconfig.Config, so a caller's NetworkConfig
// actually governs wire behavior rather than a compile-time constant.
type Codec struct {
	Magic          uint32
	MessageSizeMax uint32
}

// NewCodec builds a Codec from cfg's Magic/MessageSizeMax fields.
func NewCodec(cfg netconfig.Config) *Codec {
	return &Codec{Magic: cfg.Magic, MessageSizeMax: cfg.MessageSizeMax}
}

// defaultCodec backs the package-level Serialize/Parse/PeekLength/PeekType
// functions for callers that only ever speak the standard network.
var defaultCodec = NewCodec(netconfig.Default())

// Magic and MessageSizeMax mirror the default codec's bounds, for callers
// (and tests) that compare against the standard network's values without
// constructing a netconfig.Config of their own.
var (
	Magic          = defaultCodec.Magic
	MessageSizeMax = defaultCodec.MessageSizeMax
)

// Serialize writes the frame header and payload for msg, using the default
// codec's magic and message size bound. It fails only when the whole frame
// (HeaderSize plus payload) would exceed MessageSizeMax; it does not check
// that msg.Type is known. A nil payload is valid.
func Serialize(msg Message) ([]byte, error) { return defaultCodec.Serialize(msg) }

// PeekLength reads the declared total message length from buf without
// consuming or mutating buf, using the default codec's magic.
func PeekLength(buf []byte) (uint32, error) { return defaultCodec.PeekLength(buf) }

// PeekType reads the declared message type from buf without consuming it,
// using the default codec's magic.
func PeekType(buf []byte) (Type, error) { return defaultCodec.PeekType(buf) }

// Parse fully decodes buf into a Message using the default codec's magic
// and message size bound. parse(serialize(m)) == m for every valid m.
func Parse(buf []byte) (*Message, error) { return defaultCodec.Parse(buf) }

// Serialize writes the frame header and payload for msg. It fails only when
// the whole frame (HeaderSize plus payload) would exceed c.MessageSizeMax;
// it does not check that msg.Type is known. A nil payload is valid.
func (c *Codec) Serialize(msg Message) ([]byte, error) {
	total := HeaderSize + len(msg.Payload)
	if uint64(total) > uint64(c.MessageSizeMax) {
		return nil, fmt.Errorf("%w: payload exceeds MessageSizeMax", ErrMalformed)
	}
	out := make([]byte, 0, total)

	var hdr [HeaderSize]byte
	binary.BigEndian.PutUint32(hdr[0:4], c.Magic)
	hdr[4] = byte(msg.Type)
	binary.BigEndian.PutUint32(hdr[5:9], uint32(total))
	c4 := checksum4(msg.Payload)
	copy(hdr[9:13], c4[:])

	out = append(out, hdr[:]...)
	out = append(out, msg.Payload...)
	return out, nil
}

// PeekLength reads the declared total message length from buf without
// consuming or mutating buf. buf must contain at least HeaderSize bytes.
func (c *Codec) PeekLength(buf []byte) (uint32, error) {
	if len(buf) < HeaderSize {
		return 0, fmt.Errorf("%w: short header", ErrMalformed)
	}
	if binary.BigEndian.Uint32(buf[0:4]) != c.Magic {
		return 0, fmt.Errorf("%w: magic mismatch", ErrMalformed)
	}
	return binary.BigEndian.Uint32(buf[5:9]), nil
}

// PeekType reads the declared message type from buf without consuming it.
func (c *Codec) PeekType(buf []byte) (Type, error) {
	if len(buf) < HeaderSize {
		return 0, fmt.Errorf("%w: short header", ErrMalformed)
	}
	if binary.BigEndian.Uint32(buf[0:4]) != c.Magic {
		return 0, fmt.Errorf("%w: magic mismatch", ErrMalformed)
	}
	return Type(buf[4]), nil
}

// Parse fully decodes buf into a Message: it validates magic, requires a
// known type, requires the declared length to match len(buf) exactly, and
// verifies the checksum. parse(serialize(m)) == m for every valid m.
func (c *Codec) Parse(buf []byte) (*Message, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: short header", ErrMalformed)
	}
	if binary.BigEndian.Uint32(buf[0:4]) != c.Magic {
		return nil, fmt.Errorf("%w: magic mismatch", ErrMalformed)
	}
	typ := Type(buf[4])
	if !KnownType(typ) {
		return nil, fmt.Errorf("%w: unknown type %d", ErrMalformed, typ)
	}
	declaredLen := binary.BigEndian.Uint32(buf[5:9])
	if uint64(declaredLen) > uint64(c.MessageSizeMax) {
		return nil, fmt.Errorf("%w: excessive message size", ErrMalformed)
	}
	if int(declaredLen) != len(buf) {
		return nil, fmt.Errorf("%w: length mismatch", ErrMalformed)
	}
	var wantC4 [4]byte
	copy(wantC4[:], buf[9:13])
	payload := buf[HeaderSize:]
	gotC4 := checksum4(payload)
	if !bytes.Equal(wantC4[:], gotC4[:]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrMalformed)
	}

	// Defensive copy: buf may be a reused reassembly buffer.
	payloadCopy := make([]byte, len(payload))
	copy(payloadCopy, payload)

	return &Message{Type: typ, Payload: payloadCopy}, nil
}
