package wire

import (
	"fmt"
	"unicode/utf8"
)

// MaxRejectReasonBytes bounds the REJECT free-text reason.
const MaxRejectReasonBytes = 111

// RejectPayload reports why a prior message was refused. A malformed
// REJECT payload must never itself be answered with another REJECT — see
// peerchannel's reject-loop-safety handling.
type RejectPayload struct {
	RejectedType Type
	Code         byte
	Reason       string
}

func EncodeRejectPayload(r RejectPayload) ([]byte, error) {
	if len(r.Reason) > MaxRejectReasonBytes {
		return nil, fmt.Errorf("wire: reject: reason too long")
	}
	if !utf8.ValidString(r.Reason) {
		return nil, fmt.Errorf("wire: reject: reason must be UTF-8")
	}
	out := make([]byte, 0, 1+1+9+len(r.Reason))
	out = append(out, byte(r.RejectedType))
	out = append(out, r.Code)
	out = append(out, encodeCompactSize(uint64(len(r.Reason)))...)
	out = append(out, []byte(r.Reason)...)
	return out, nil
}

func DecodeRejectPayload(b []byte) (*RejectPayload, error) {
	c := newCursor(b)
	rejectedType, err := c.readU8()
	if err != nil {
		return nil, fmt.Errorf("wire: reject: %w", err)
	}
	code, err := c.readU8()
	if err != nil {
		return nil, fmt.Errorf("wire: reject: %w", err)
	}
	reasonLenU64, used, err := readCompactSize(b[c.pos:])
	if err != nil {
		return nil, fmt.Errorf("wire: reject: %w", err)
	}
	c.pos += used
	if reasonLenU64 > MaxRejectReasonBytes {
		return nil, fmt.Errorf("wire: reject: reason_len too large")
	}
	reasonBytes, err := c.readExact(int(reasonLenU64))
	if err != nil {
		return nil, fmt.Errorf("wire: reject: %w", err)
	}
	if !c.done() {
		return nil, fmt.Errorf("wire: reject: trailing bytes")
	}
	if !utf8.Valid(reasonBytes) {
		return nil, fmt.Errorf("wire: reject: reason must be UTF-8")
	}
	return &RejectPayload{RejectedType: Type(rejectedType), Code: code, Reason: string(reasonBytes)}, nil
}
