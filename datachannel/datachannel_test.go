package datachannel

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/anacrolix/log"
	"github.com/stretchr/testify/require"

	"rubin.dev/p2pcore/netconfig"
	"rubin.dev/p2pcore/transport"
	"rubin.dev/p2pcore/wire"
)

func newPair(t *testing.T) (*DataChannel, *DataChannel, *transport.PipeTransport, *transport.PipeTransport) {
	t.Helper()
	ta, tb := transport.NewPipe()
	a := New(ta, log.Default, nil, netconfig.Default())
	b := New(tb, log.Default, nil, netconfig.Default())
	return a, b, ta, tb
}

func frame(t *testing.T, typ wire.Type, payload []byte) []byte {
	t.Helper()
	b, err := wire.Serialize(wire.Message{Type: typ, Payload: payload})
	require.NoError(t, err)
	return b
}

func TestRoundTripSmallMessage(t *testing.T) {
	a, b, _, _ := newPair(t)
	defer a.Close()
	defer b.Close()

	var mu sync.Mutex
	var got []byte
	var errs []error
	b.OnMessage(func(m []byte) {
		mu.Lock()
		defer mu.Unlock()
		got = append([]byte(nil), m...)
	})
	b.OnError(func(err error, _ *DataChannel) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	})

	msg := frame(t, wire.TypePing, wire.EncodePingPayload(wire.PingPayload{Nonce: 7}))
	require.NoError(t, a.Send(msg))

	mu.Lock()
	defer mu.Unlock()
	require.Empty(t, errs)
	require.Equal(t, msg, got)
}

func TestRoundTripMultiChunkMessage(t *testing.T) {
	a, b, _, _ := newPair(t)
	defer a.Close()
	defer b.Close()

	payload := make([]byte, 50_000)
	for i := range payload {
		payload[i] = byte(i)
	}
	msg := frame(t, wire.TypeTx, payload)

	var mu sync.Mutex
	var got []byte
	var chunkEvents int
	b.OnMessage(func(m []byte) {
		mu.Lock()
		defer mu.Unlock()
		got = append([]byte(nil), m...)
	})
	b.OnChunk(func([]byte) {
		mu.Lock()
		defer mu.Unlock()
		chunkEvents++
	})

	require.NoError(t, a.Send(msg))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, msg, got)
	require.Greater(t, chunkEvents, 0)
}

func TestTagAdvancesAcrossMessages(t *testing.T) {
	a, b, _, _ := newPair(t)
	defer a.Close()
	defer b.Close()

	var mu sync.Mutex
	var count int
	b.OnMessage(func([]byte) {
		mu.Lock()
		defer mu.Unlock()
		count++
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, a.Send(frame(t, wire.TypePing, wire.EncodePingPayload(wire.PingPayload{Nonce: uint64(i)}))))
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 3, count)
}

func TestOversizedChunkClosesChannel(t *testing.T) {
	a, b, ta, _ := newPair(t)
	defer a.Close()
	defer b.Close()

	var mu sync.Mutex
	var closed bool
	var errMsg string
	b.OnClose(func(*DataChannel) {
		mu.Lock()
		defer mu.Unlock()
		closed = true
	})
	b.OnError(func(err error, _ *DataChannel) {
		mu.Lock()
		defer mu.Unlock()
		errMsg = err.Error()
	})

	oversized := make([]byte, ChunkSizeMax+1)
	require.NoError(t, ta.SendChunk(oversized))

	mu.Lock()
	defer mu.Unlock()
	require.True(t, closed)
	require.Contains(t, errMsg, "CHUNK_SIZE_MAX")
}

func TestDeclaredOversizeMessageRejectedPreAlloc(t *testing.T) {
	a, b, ta, _ := newPair(t)
	defer a.Close()
	defer b.Close()

	var mu sync.Mutex
	var errMsg string
	var closed bool
	b.OnError(func(err error, _ *DataChannel) {
		mu.Lock()
		defer mu.Unlock()
		errMsg = err.Error()
	})
	b.OnClose(func(*DataChannel) {
		mu.Lock()
		defer mu.Unlock()
		closed = true
	})

	hdr := make([]byte, wire.HeaderSize)
	hdr[0], hdr[1], hdr[2], hdr[3] = 0x52, 0x42, 0x54, 0x30
	hdr[4] = byte(wire.TypeTx)
	// declared length field: MESSAGE_SIZE_MAX + 1
	declared := MessageSizeMax + 1
	hdr[5] = byte(declared >> 24)
	hdr[6] = byte(declared >> 16)
	hdr[7] = byte(declared >> 8)
	hdr[8] = byte(declared)

	chunk := append([]byte{0}, hdr...)
	require.NoError(t, ta.SendChunk(chunk))

	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, errMsg, "excessive message size")
	require.True(t, closed)
}

func TestTagGapClosesChannel(t *testing.T) {
	a, b, ta, _ := newPair(t)
	defer a.Close()
	defer b.Close()

	var mu sync.Mutex
	var errMsg string
	b.OnError(func(err error, _ *DataChannel) {
		mu.Lock()
		defer mu.Unlock()
		errMsg = err.Error()
	})

	payload := make([]byte, 50_000)
	msg, err := wire.Serialize(wire.Message{Type: wire.TypeTx, Payload: payload})
	require.NoError(t, err)

	payloadMax := ChunkSizeMax - 1
	first := append([]byte{0}, msg[:payloadMax]...)
	require.NoError(t, ta.SendChunk(first))

	bogus := append([]byte{2}, msg[payloadMax:payloadMax+10]...)
	require.NoError(t, ta.SendChunk(bogus))

	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, errMsg, "wrong message tag")
}

func TestExpectationTimesOutAndChannelStaysOpen(t *testing.T) {
	a, _, ta, _ := newPair(t)
	_ = a
	defer ta.Close()

	dc := New(ta, log.Default, nil, netconfig.Default())
	defer dc.Close()

	done := make(chan struct{})
	dc.ExpectMessage([]wire.Type{wire.TypeBlock}, func() { close(done) }, 80*time.Millisecond, 40*time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expectation callback never fired")
	}
	require.False(t, dc.IsExpectingMessage(wire.TypeBlock))
	require.Equal(t, transport.StateOpen, ta.ReadyState())
}

func TestChunkTimeoutMidMessageClearsBufferButStaysOpen(t *testing.T) {
	a, b, ta, _ := newPair(t)
	defer a.Close()
	defer b.Close()

	done := make(chan struct{})
	b.ExpectMessage([]wire.Type{wire.TypeTx}, func() { close(done) }, time.Second, 60*time.Millisecond)

	payload := make([]byte, 50_000)
	msg := frame(t, wire.TypeTx, payload)
	payloadMax := ChunkSizeMax - 1
	require.NoError(t, a.transport.SendChunk(append([]byte{0}, msg[:payloadMax]...)))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("chunk timeout never fired")
	}

	var mu sync.Mutex
	var count int
	b.OnMessage(func([]byte) {
		mu.Lock()
		defer mu.Unlock()
		count++
	})
	require.NoError(t, a.Send(frame(t, wire.TypePing, wire.EncodePingPayload(wire.PingPayload{Nonce: 1}))))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, count)
	require.Equal(t, transport.StateOpen, ta.ReadyState())
}

func TestCloseIsIdempotentAndFiresOnce(t *testing.T) {
	a, _, ta, _ := newPair(t)
	dc := New(ta, log.Default, nil, netconfig.Default())

	var count int
	var mu sync.Mutex
	dc.OnClose(func(*DataChannel) {
		mu.Lock()
		defer mu.Unlock()
		count++
	})

	require.NoError(t, dc.Close())
	require.NoError(t, dc.Close())
	require.NoError(t, dc.Close())
	_ = a

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, count)
}

func TestEmptyChunkSilentlyDropped(t *testing.T) {
	a, b, ta, _ := newPair(t)
	defer a.Close()
	defer b.Close()

	var mu sync.Mutex
	var errored bool
	b.OnError(func(error, *DataChannel) {
		mu.Lock()
		defer mu.Unlock()
		errored = true
	})

	require.NoError(t, ta.SendChunk(nil))

	mu.Lock()
	defer mu.Unlock()
	require.False(t, errored)
}

func init() {
	// Guard against accidental drift between this package's default bound
	// and the wire package's default bound, since both derive from
	// netconfig.Default().
	if uint32(MessageSizeMax) != wire.MessageSizeMax {
		panic(fmt.Sprintf("datachannel: MessageSizeMax drifted from wire.MessageSizeMax: %d != %d", MessageSizeMax, wire.MessageSizeMax))
	}
}
