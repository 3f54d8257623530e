package wire

import (
	"encoding/binary"
	"fmt"
)

// PingPayload/PongPayload carry a liveness nonce, unchanged from the
// teacher's node/p2p/ping.go.
type PingPayload struct {
	Nonce uint64
}

func EncodePingPayload(p PingPayload) []byte {
	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], p.Nonce)
	return out[:]
}

func DecodePingPayload(b []byte) (*PingPayload, error) {
	if len(b) != 8 {
		return nil, fmt.Errorf("wire: ping: invalid payload length")
	}
	return &PingPayload{Nonce: binary.LittleEndian.Uint64(b)}, nil
}

type PongPayload struct {
	Nonce uint64
}

func EncodePongPayload(p PongPayload) []byte {
	return EncodePingPayload(PingPayload{Nonce: p.Nonce})
}

func DecodePongPayload(b []byte) (*PongPayload, error) {
	pp, err := DecodePingPayload(b)
	if err != nil {
		return nil, fmt.Errorf("wire: pong: %w", err)
	}
	return &PongPayload{Nonce: pp.Nonce}, nil
}
