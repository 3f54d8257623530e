package wire

import (
	"fmt"
	"unicode/utf8"
)

// ProtocolVersion is the only protocol_version this codec negotiates. It is
// a core-level constant, not NetworkConfig, since the wire layout itself
// (not the network) determines what protocol_version means.
const ProtocolVersion = 1

// MaxUserAgentBytes bounds the VERSION user_agent field.
const MaxUserAgentBytes = 256

// VersionPayload is exchanged first on every connection. Signature
// verification and chain-state validation of its contents are handled by
// external collaborators; this codec only frames and bounds-checks it.
type VersionPayload struct {
	ProtocolVersion uint32
	NetworkID       [32]byte
	PeerServices    uint64
	Timestamp       uint64
	Nonce           uint64
	UserAgent       string
	StartHeight     uint32
	HeadHash        [32]byte
}

func EncodeVersionPayload(v VersionPayload) ([]byte, error) {
	if v.ProtocolVersion != ProtocolVersion {
		return nil, fmt.Errorf("wire: version: unsupported protocol_version")
	}
	if len(v.UserAgent) > MaxUserAgentBytes {
		return nil, fmt.Errorf("wire: version: user_agent too long")
	}
	if !utf8.ValidString(v.UserAgent) {
		return nil, fmt.Errorf("wire: version: user_agent must be UTF-8")
	}

	out := make([]byte, 0, 4+32+8+8+8+9+len(v.UserAgent)+4+32)
	out = appendU32le(out, v.ProtocolVersion)
	out = append(out, v.NetworkID[:]...)
	out = appendU64le(out, v.PeerServices)
	out = appendU64le(out, v.Timestamp)
	out = appendU64le(out, v.Nonce)
	out = append(out, encodeCompactSize(uint64(len(v.UserAgent)))...)
	out = append(out, []byte(v.UserAgent)...)
	out = appendU32le(out, v.StartHeight)
	out = append(out, v.HeadHash[:]...)
	return out, nil
}

func DecodeVersionPayload(b []byte) (*VersionPayload, error) {
	c := newCursor(b)
	proto, err := c.readU32le()
	if err != nil {
		return nil, fmt.Errorf("wire: version: %w", err)
	}
	networkID, err := c.readBytes32()
	if err != nil {
		return nil, fmt.Errorf("wire: version: %w", err)
	}
	peerServices, err := c.readU64le()
	if err != nil {
		return nil, fmt.Errorf("wire: version: %w", err)
	}
	timestamp, err := c.readU64le()
	if err != nil {
		return nil, fmt.Errorf("wire: version: %w", err)
	}
	nonce, err := c.readU64le()
	if err != nil {
		return nil, fmt.Errorf("wire: version: %w", err)
	}
	uaLenU64, used, err := readCompactSize(b[c.pos:])
	if err != nil {
		return nil, fmt.Errorf("wire: version: %w", err)
	}
	c.pos += used
	if uaLenU64 > MaxUserAgentBytes {
		return nil, fmt.Errorf("wire: version: user_agent_len exceeds MaxUserAgentBytes")
	}
	uaBytes, err := c.readExact(int(uaLenU64))
	if err != nil {
		return nil, fmt.Errorf("wire: version: %w", err)
	}
	if !utf8.Valid(uaBytes) {
		return nil, fmt.Errorf("wire: version: user_agent must be UTF-8")
	}
	startHeight, err := c.readU32le()
	if err != nil {
		return nil, fmt.Errorf("wire: version: %w", err)
	}
	headHash, err := c.readBytes32()
	if err != nil {
		return nil, fmt.Errorf("wire: version: %w", err)
	}
	if !c.done() {
		return nil, fmt.Errorf("wire: version: trailing bytes")
	}
	return &VersionPayload{
		ProtocolVersion: proto,
		NetworkID:       networkID,
		PeerServices:    peerServices,
		Timestamp:       timestamp,
		Nonce:           nonce,
		UserAgent:       string(uaBytes),
		StartHeight:     startHeight,
		HeadHash:        headHash,
	}, nil
}
