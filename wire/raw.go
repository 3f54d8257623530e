package wire

// RawPayload carries bytes this codec frames and bounds-checks but never
// interprets: BLOCK, HEADER, TX, and every GET_*/proof-response pair whose
// internal structure belongs to an external consensus/accounts-tree/proof
// layer. The caller is responsible for decoding/encoding these with
// whichever package owns that type.
type RawPayload struct {
	Bytes []byte
}

func EncodeRawPayload(p RawPayload) []byte {
	out := make([]byte, len(p.Bytes))
	copy(out, p.Bytes)
	return out
}

func DecodeRawPayload(b []byte) (*RawPayload, error) {
	out := make([]byte, len(b))
	copy(out, b)
	return &RawPayload{Bytes: out}, nil
}
