package wire

import "fmt"

// Signal flags, mirroring the minimal WebRTC-signaling-relay vocabulary:
// whether the payload is itself relayed unencrypted, and whether it
// represents an offer/answer vs. an ICE candidate is left to the payload's
// own (external) encoding.
const (
	SignalFlagNone        byte = 0
	SignalFlagUnroutable  byte = 1 << 0
	SignalFlagTTLExceeded byte = 1 << 1
)

// MaxSignalPayloadBytes bounds the relayed signaling payload.
const MaxSignalPayloadBytes = 16 * 1024

// SignalPayload relays a WebRTC signaling message between two peers that
// are not directly connected, via a peer that is connected to both. The
// core only needs to frame and forward it; it never interprets Payload.
type SignalPayload struct {
	SenderID    [32]byte
	RecipientID [32]byte
	Nonce       uint32
	TTL         byte
	Flags       byte
	Payload     []byte
}

func EncodeSignalPayload(p SignalPayload) ([]byte, error) {
	if len(p.Payload) > MaxSignalPayloadBytes {
		return nil, fmt.Errorf("wire: signal: payload too large")
	}
	out := make([]byte, 0, 32+32+4+1+1+9+len(p.Payload))
	out = append(out, p.SenderID[:]...)
	out = append(out, p.RecipientID[:]...)
	out = appendU32le(out, p.Nonce)
	out = append(out, p.TTL, p.Flags)
	out = append(out, encodeCompactSize(uint64(len(p.Payload)))...)
	out = append(out, p.Payload...)
	return out, nil
}

func DecodeSignalPayload(b []byte) (*SignalPayload, error) {
	c := newCursor(b)
	senderID, err := c.readBytes32()
	if err != nil {
		return nil, fmt.Errorf("wire: signal: %w", err)
	}
	recipientID, err := c.readBytes32()
	if err != nil {
		return nil, fmt.Errorf("wire: signal: %w", err)
	}
	nonce, err := c.readU32le()
	if err != nil {
		return nil, fmt.Errorf("wire: signal: %w", err)
	}
	ttl, err := c.readU8()
	if err != nil {
		return nil, fmt.Errorf("wire: signal: %w", err)
	}
	flags, err := c.readU8()
	if err != nil {
		return nil, fmt.Errorf("wire: signal: %w", err)
	}
	payloadLenU64, used, err := readCompactSize(b[c.pos:])
	if err != nil {
		return nil, fmt.Errorf("wire: signal: %w", err)
	}
	c.pos += used
	if payloadLenU64 > MaxSignalPayloadBytes {
		return nil, fmt.Errorf("wire: signal: payload too large")
	}
	payload, err := c.readExact(int(payloadLenU64))
	if err != nil {
		return nil, fmt.Errorf("wire: signal: %w", err)
	}
	if !c.done() {
		return nil, fmt.Errorf("wire: signal: trailing bytes")
	}
	payloadCopy := make([]byte, len(payload))
	copy(payloadCopy, payload)
	return &SignalPayload{
		SenderID:    senderID,
		RecipientID: recipientID,
		Nonce:       nonce,
		TTL:         ttl,
		Flags:       flags,
		Payload:     payloadCopy,
	}, nil
}
