package wire

import "fmt"

// EncodeEmpty returns the (empty) payload for message variants that carry
// no data of their own: VERACK, GET_ADDR, MEMPOOL, GET_HEAD.
func EncodeEmpty() []byte { return nil }

// DecodeEmpty validates that b is an empty payload.
func DecodeEmpty(b []byte) error {
	if len(b) != 0 {
		return fmt.Errorf("wire: expected empty payload, got %d bytes", len(b))
	}
	return nil
}
