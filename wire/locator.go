package wire

import "fmt"

// MaxLocatorHashes bounds GET_HEADER/GET_BLOCKS block locators.
const MaxLocatorHashes = 64

// LocatorPayload requests headers or blocks following the caller's best
// guess at the common ancestor with the peer: a sparse locator of known
// hashes (close to the tip, then exponentially sparser) plus an optional
// stop hash. GET_HEADER and GET_BLOCKS share this shape.
type LocatorPayload struct {
	BlockLocator [][32]byte
	HashStop     [32]byte // zero => no stop, peer decides the batch size
}

func EncodeLocatorPayload(p LocatorPayload) ([]byte, error) {
	if len(p.BlockLocator) == 0 || len(p.BlockLocator) > MaxLocatorHashes {
		return nil, fmt.Errorf("wire: locator: invalid locator length")
	}
	out := make([]byte, 0, 9+len(p.BlockLocator)*32+32)
	out = append(out, encodeCompactSize(uint64(len(p.BlockLocator)))...)
	for _, h := range p.BlockLocator {
		out = append(out, h[:]...)
	}
	out = append(out, p.HashStop[:]...)
	return out, nil
}

func DecodeLocatorPayload(b []byte) (*LocatorPayload, error) {
	hashCountU64, used, err := readCompactSize(b)
	if err != nil {
		return nil, fmt.Errorf("wire: locator: %w", err)
	}
	if hashCountU64 < 1 || hashCountU64 > MaxLocatorHashes {
		return nil, fmt.Errorf("wire: locator: invalid hash_count")
	}
	hashCount := int(hashCountU64)
	need := used + hashCount*32 + 32
	if len(b) != need {
		return nil, fmt.Errorf("wire: locator: length mismatch")
	}
	loc := make([][32]byte, 0, hashCount)
	off := used
	for i := 0; i < hashCount; i++ {
		var h [32]byte
		copy(h[:], b[off:off+32])
		loc = append(loc, h)
		off += 32
	}
	var stop [32]byte
	copy(stop[:], b[off:off+32])
	return &LocatorPayload{BlockLocator: loc, HashStop: stop}, nil
}

// BuildBlockLocatorHeights returns the locator heights (tip towards
// genesis) an embedder should fetch hashes for: the 12 most recent heights,
// then exponentially sparser back to genesis.
func BuildBlockLocatorHeights(tipHeight uint64) []uint64 {
	heights := make([]uint64, 0, MaxLocatorHashes)

	for i := uint64(0); i < 12 && len(heights) < MaxLocatorHashes; i++ {
		if tipHeight < i {
			break
		}
		heights = append(heights, tipHeight-i)
	}

	var step uint64 = 4
	var offset uint64 = 14
	for len(heights) < MaxLocatorHashes {
		if tipHeight < offset {
			break
		}
		heights = append(heights, tipHeight-offset)
		if step > (1 << 62) {
			break
		}
		offset += step
		step *= 2
	}

	if len(heights) == 0 || heights[len(heights)-1] != 0 {
		if len(heights) < MaxLocatorHashes {
			heights = append(heights, 0)
		} else {
			heights[len(heights)-1] = 0
		}
	}

	return heights
}
