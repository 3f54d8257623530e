package wire

import "fmt"

// HeadPayload announces the sender's current chain head. GET_HEAD carries
// no payload (wire.EncodeEmpty).
type HeadPayload struct {
	Hash   [32]byte
	Height uint32
}

func EncodeHeadPayload(h HeadPayload) []byte {
	out := make([]byte, 0, 32+4)
	out = append(out, h.Hash[:]...)
	out = appendU32le(out, h.Height)
	return out
}

func DecodeHeadPayload(b []byte) (*HeadPayload, error) {
	c := newCursor(b)
	hash, err := c.readBytes32()
	if err != nil {
		return nil, fmt.Errorf("wire: head: %w", err)
	}
	height, err := c.readU32le()
	if err != nil {
		return nil, fmt.Errorf("wire: head: %w", err)
	}
	if !c.done() {
		return nil, fmt.Errorf("wire: head: trailing bytes")
	}
	return &HeadPayload{Hash: hash, Height: height}, nil
}
