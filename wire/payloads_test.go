package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionPayloadRoundTrip(t *testing.T) {
	v := VersionPayload{
		ProtocolVersion: ProtocolVersion,
		NetworkID:       [32]byte{1, 2, 3},
		PeerServices:    7,
		Timestamp:       1234,
		Nonce:           99,
		UserAgent:       "rubin-p2pcore/0.1",
		StartHeight:     42,
		HeadHash:        [32]byte{9, 9, 9},
	}
	b, err := EncodeVersionPayload(v)
	require.NoError(t, err)
	got, err := DecodeVersionPayload(b)
	require.NoError(t, err)
	require.Equal(t, v, *got)
}

func TestRejectPayloadRoundTrip(t *testing.T) {
	r := RejectPayload{RejectedType: TypeBlock, Code: RejectInvalid, Reason: "bad pow"}
	b, err := EncodeRejectPayload(r)
	require.NoError(t, err)
	got, err := DecodeRejectPayload(b)
	require.NoError(t, err)
	require.Equal(t, r, *got)
}

func TestInvPayloadRoundTrip(t *testing.T) {
	vecs := []InvVector{{Type: InvTypeTx, Hash: [32]byte{1}}, {Type: InvTypeBlock, Hash: [32]byte{2}}}
	b, err := EncodeInvPayload(vecs)
	require.NoError(t, err)
	got, err := DecodeInvPayload(b)
	require.NoError(t, err)
	require.Equal(t, vecs, got)
}

func TestInvPayloadRejectsTooManyEntries(t *testing.T) {
	vecs := make([]InvVector, MaxInvEntries+1)
	_, err := EncodeInvPayload(vecs)
	require.Error(t, err)
}

func TestLocatorPayloadRoundTrip(t *testing.T) {
	l := LocatorPayload{BlockLocator: [][32]byte{{1}, {2}, {3}}, HashStop: [32]byte{9}}
	b, err := EncodeLocatorPayload(l)
	require.NoError(t, err)
	got, err := DecodeLocatorPayload(b)
	require.NoError(t, err)
	require.Equal(t, l, *got)
}

func TestLocatorPayloadRejectsEmptyLocator(t *testing.T) {
	_, err := EncodeLocatorPayload(LocatorPayload{})
	require.Error(t, err)
}

func TestAddrPayloadRoundTrip(t *testing.T) {
	addrs := []NetAddress{
		{Timestamp: 1, Services: 2, IP: [16]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff, 127, 0, 0, 1}, Port: 8080},
	}
	b, err := EncodeAddrPayload(addrs)
	require.NoError(t, err)
	got, err := DecodeAddrPayload(b)
	require.NoError(t, err)
	require.Equal(t, addrs, got)
}

func TestSubscribePayloadRoundTrip(t *testing.T) {
	p := SubscribePayload{SubscriptionType: SubscriptionAddresses, Addresses: [][20]byte{{1}, {2}}}
	b, err := EncodeSubscribePayload(p)
	require.NoError(t, err)
	got, err := DecodeSubscribePayload(b)
	require.NoError(t, err)
	require.Equal(t, p, *got)
}

func TestSubscribePayloadRejectsAddressesWithoutAddressesType(t *testing.T) {
	p := SubscribePayload{SubscriptionType: SubscriptionAny, Addresses: [][20]byte{{1}}}
	_, err := EncodeSubscribePayload(p)
	require.Error(t, err)
}

func TestSignalPayloadRoundTrip(t *testing.T) {
	p := SignalPayload{
		SenderID:    [32]byte{1},
		RecipientID: [32]byte{2},
		Nonce:       5,
		TTL:         3,
		Flags:       SignalFlagNone,
		Payload:     []byte("sdp-offer-bytes"),
	}
	b, err := EncodeSignalPayload(p)
	require.NoError(t, err)
	got, err := DecodeSignalPayload(b)
	require.NoError(t, err)
	require.Equal(t, p, *got)
}

func TestHeadPayloadRoundTrip(t *testing.T) {
	h := HeadPayload{Hash: [32]byte{7}, Height: 100}
	b := EncodeHeadPayload(h)
	got, err := DecodeHeadPayload(b)
	require.NoError(t, err)
	require.Equal(t, h, *got)
}

func TestRawPayloadRoundTrip(t *testing.T) {
	raw := RawPayload{Bytes: []byte{1, 2, 3, 4}}
	b := EncodeRawPayload(raw)
	got, err := DecodeRawPayload(b)
	require.NoError(t, err)
	require.Equal(t, raw, *got)
}

func TestCompactSizeRejectsNonMinimalEncoding(t *testing.T) {
	// 0xfd followed by a value that fits in a single byte is non-minimal.
	_, _, err := readCompactSize([]byte{0xfd, 0x0a, 0x00})
	require.Error(t, err)
}

func TestCompactSizeRoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 0xfc, 0xfd, 0xffff, 0x10000, 0xffffffff, 0x100000000} {
		b := encodeCompactSize(n)
		got, used, err := readCompactSize(b)
		require.NoError(t, err)
		require.Equal(t, n, got)
		require.Equal(t, len(b), used)
	}
}
