package peerchannel

import (
	"sync"
	"testing"
	"time"

	"github.com/anacrolix/log"
	"github.com/stretchr/testify/require"

	"rubin.dev/p2pcore/datachannel"
	"rubin.dev/p2pcore/netconfig"
	"rubin.dev/p2pcore/transport"
	"rubin.dev/p2pcore/wire"
)

func newPair(t *testing.T, ha, hb Handlers) (*PeerChannel, *PeerChannel) {
	t.Helper()
	ta, tb := transport.NewPipe()
	dca := datachannel.New(ta, log.Default, nil, netconfig.Default())
	dcb := datachannel.New(tb, log.Default, nil, netconfig.Default())
	return New(dca, log.Default, nil, ha, netconfig.Default()), New(dcb, log.Default, nil, hb, netconfig.Default())
}

func TestPingPongRoundTrip(t *testing.T) {
	var mu sync.Mutex
	var pongNonce uint64
	var pongSeen bool

	hb := Handlers{
		Ping: func(pc *PeerChannel, nonce uint64) {
			require.NoError(t, pc.Pong(nonce))
		},
	}
	ha := Handlers{
		Pong: func(_ *PeerChannel, nonce uint64) {
			mu.Lock()
			defer mu.Unlock()
			pongNonce = nonce
			pongSeen = true
		},
	}

	a, b := newPair(t, ha, hb)
	defer a.Close()
	defer b.Close()

	require.NoError(t, a.Ping(7))

	mu.Lock()
	defer mu.Unlock()
	require.True(t, pongSeen)
	require.Equal(t, uint64(7), pongNonce)
}

func TestRejectLoopImmunity(t *testing.T) {
	var mu sync.Mutex
	var closeType CloseType
	var closed bool
	var rejectHandlerCalled bool

	hb := Handlers{
		Reject: func(*PeerChannel, wire.RejectPayload) {
			mu.Lock()
			defer mu.Unlock()
			rejectHandlerCalled = true
		},
	}

	// Craft a REJECT frame whose checksum is deliberately wrong.
	payload, err := wire.EncodeRejectPayload(wire.RejectPayload{RejectedType: wire.TypeBlock, Code: wire.RejectInvalid, Reason: "bad"})
	require.NoError(t, err)
	frame, err := wire.Serialize(wire.Message{Type: wire.TypeReject, Payload: payload})
	require.NoError(t, err)
	frame[len(frame)-1] ^= 0xff // corrupt last payload byte without touching the header

	ta, tb := transport.NewPipe()
	dcb := datachannel.New(tb, log.Default, nil, netconfig.Default())
	b := New(dcb, log.Default, nil, hb, netconfig.Default())
	b.OnClose(func(_ *PeerChannel, ct CloseType) {
		mu.Lock()
		defer mu.Unlock()
		closeType = ct
		closed = true
	})
	require.NoError(t, ta.SendChunk(append([]byte{0}, frame...)))

	mu.Lock()
	defer mu.Unlock()
	require.True(t, closed)
	require.Equal(t, CloseFailedToParseMessageType, closeType)
	require.False(t, rejectHandlerCalled)
}

func TestUnknownTypeClosesWithFailedToParse(t *testing.T) {
	ta, tb := transport.NewPipe()
	dc := datachannel.New(ta, log.Default, nil, netconfig.Default())
	pc := New(dc, log.Default, nil, Handlers{}, netconfig.Default())

	var mu sync.Mutex
	var closed bool
	var ct CloseType
	pc.OnClose(func(_ *PeerChannel, reason CloseType) {
		mu.Lock()
		defer mu.Unlock()
		closed = true
		ct = reason
	})

	frame, err := wire.Serialize(wire.Message{Type: wire.TypeVersion, Payload: []byte{}})
	require.NoError(t, err)
	frame[4] = 200 // unknown type byte; peekType still succeeds (magic untouched), Parse fails on unknown type

	require.NoError(t, tb.SendChunk(append([]byte{0}, frame...)))

	mu.Lock()
	defer mu.Unlock()
	require.True(t, closed)
	require.Equal(t, CloseFailedToParseMessageType, ct)
}

func TestExpectMessageConfirmedOnSuccess(t *testing.T) {
	ta, tb := transport.NewPipe()
	dca := datachannel.New(ta, log.Default, nil, netconfig.Default())
	dcb := datachannel.New(tb, log.Default, nil, netconfig.Default())
	a := New(dca, log.Default, nil, Handlers{}, netconfig.Default())
	b := New(dcb, log.Default, nil, Handlers{
		GetHead: func(*PeerChannel) {},
	}, netconfig.Default())
	defer a.Close()
	defer b.Close()

	fired := false
	a.ExpectMessage([]wire.Type{wire.TypeHead}, func() { fired = true }, 200*time.Millisecond, 100*time.Millisecond)
	require.NoError(t, b.Head(wire.HeadPayload{Height: 5}))

	// b's HEAD is delivered to a synchronously over the pipe; a parses it
	// and confirms its HEAD expectation with success, which disarms it
	// without running the timeout callback.
	require.False(t, a.IsExpectingMessage(wire.TypeHead))
	require.False(t, fired)
}

func TestMessageLogFiresOnSuccessfulDispatch(t *testing.T) {
	var mu sync.Mutex
	var logged []MessageLogEvent

	a, b := newPair(t, Handlers{}, Handlers{Ping: func(*PeerChannel, uint64) {}})
	defer a.Close()
	defer b.Close()

	b.OnMessageLog(func(ev MessageLogEvent) {
		mu.Lock()
		defer mu.Unlock()
		logged = append(logged, ev)
	})

	require.NoError(t, a.Ping(42))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, logged, 1)
	require.Equal(t, wire.TypePing, logged[0].Type)
}
