package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"rubin.dev/p2pcore/peerchannel"
	"rubin.dev/p2pcore/wire"
)

func TestMessageCountersLabelByType(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	r.MessageSent(wire.TypePing)
	r.MessageSent(wire.TypePing)
	r.MessageReceived(wire.TypePong)

	require.Equal(t, float64(2), testutil.ToFloat64(r.messagesSentTotal.WithLabelValues(wire.TypePing.String())))
	require.Equal(t, float64(1), testutil.ToFloat64(r.messagesReceivedTotal.WithLabelValues(wire.TypePong.String())))
}

func TestRejectAndCloseCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	r.RejectSent(wire.TypeBlock)
	r.Closed(peerchannel.CloseFailedToParseMessageType)

	require.Equal(t, float64(1), testutil.ToFloat64(r.rejectsSentTotal.WithLabelValues(wire.TypeBlock.String())))
	require.Equal(t, float64(1), testutil.ToFloat64(r.closesTotal.WithLabelValues(peerchannel.CloseFailedToParseMessageType.String())))
}

func TestForDataChannelSharesChunkCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)
	dcm := r.ForDataChannel()

	dcm.ChunkSent()
	dcm.ChunkReceived()
	dcm.ChunkReceived()
	dcm.ExpectationTimedOut()
	dcm.ProtocolViolation()

	require.Equal(t, float64(1), testutil.ToFloat64(r.chunksSent))
	require.Equal(t, float64(2), testutil.ToFloat64(r.chunksReceived))
	require.Equal(t, float64(1), testutil.ToFloat64(r.expectationsTimedOut))
	require.Equal(t, float64(1), testutil.ToFloat64(r.protocolViolations))
}
