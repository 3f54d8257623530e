package wire

import (
	"encoding/binary"
	"fmt"
	"net"
)

// MaxAddrEntries bounds a single ADDR message, generalized from the
// teacher's node/p2p/inv.go entry-count pattern.
const MaxAddrEntries = 1000

// NetAddress is one peer address announcement: when it was last seen, what
// services it offers, and where to dial it.
type NetAddress struct {
	Timestamp uint64
	Services  uint64
	IP        [16]byte // IPv4-mapped IPv6, matching net.IP's 16-byte form
	Port      uint16
}

func EncodeAddrPayload(addrs []NetAddress) ([]byte, error) {
	if len(addrs) > MaxAddrEntries {
		return nil, fmt.Errorf("wire: addr: too many entries")
	}
	out := make([]byte, 0, 9+len(addrs)*(8+8+16+2))
	out = append(out, encodeCompactSize(uint64(len(addrs)))...)
	for _, a := range addrs {
		out = appendU64le(out, a.Timestamp)
		out = appendU64le(out, a.Services)
		out = append(out, a.IP[:]...)
		out = appendU16le(out, a.Port)
	}
	return out, nil
}

func DecodeAddrPayload(b []byte) ([]NetAddress, error) {
	countU64, used, err := readCompactSize(b)
	if err != nil {
		return nil, fmt.Errorf("wire: addr: %w", err)
	}
	if countU64 > MaxAddrEntries {
		return nil, fmt.Errorf("wire: addr: count exceeds MaxAddrEntries")
	}
	count := int(countU64)
	const entryLen = 8 + 8 + 16 + 2
	need := used + count*entryLen
	if len(b) != need {
		return nil, fmt.Errorf("wire: addr: length mismatch")
	}
	off := used
	out := make([]NetAddress, 0, count)
	for i := 0; i < count; i++ {
		ts := binary.LittleEndian.Uint64(b[off : off+8])
		off += 8
		services := binary.LittleEndian.Uint64(b[off : off+8])
		off += 8
		var ip [16]byte
		copy(ip[:], b[off:off+16])
		off += 16
		port := binary.LittleEndian.Uint16(b[off : off+2])
		off += 2
		out = append(out, NetAddress{Timestamp: ts, Services: services, IP: ip, Port: port})
	}
	return out, nil
}

// NetAddressFromUDPAddr returns the 16-byte IP field of a NetAddress for a
// dialed or accepted peer address. The port argument is not used: Port,
// Timestamp and Services are set by the caller.
func NetAddressFromUDPAddr(ip net.IP, port uint16) [16]byte {
	var out [16]byte
	copy(out[:], ip.To16())
	return out
}
