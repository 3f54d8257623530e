// Package metrics wraps prometheus/client_golang counters for the core.
// This package does not run its own HTTP server: embedders register these
// counters (via NewRegistry's Registerer argument) with whatever exporter
// their process already runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"rubin.dev/p2pcore/datachannel"
	"rubin.dev/p2pcore/peerchannel"
	"rubin.dev/p2pcore/wire"
)

// Registry bundles the counters the core reports and implements
// peerchannel.Metrics directly. Use ForDataChannel to get an adapter
// implementing datachannel.Metrics over the same counters: the two
// interfaces both have a MessageSent/MessageReceived method but with
// different signatures (DataChannel doesn't know the wire type of what
// it's chunking), so one Go type cannot implement both at once.
type Registry struct {
	chunksSent            prometheus.Counter
	chunksReceived        prometheus.Counter
	messagesSentTotal     *prometheus.CounterVec
	messagesReceivedTotal *prometheus.CounterVec
	rejectsSentTotal      *prometheus.CounterVec
	expectationsTimedOut  prometheus.Counter
	protocolViolations    prometheus.Counter
	closesTotal           *prometheus.CounterVec
}

// NewRegistry constructs and registers a fresh Registry under reg. Passing
// prometheus.NewRegistry() isolates it (tests, multiple channels per
// process); passing prometheus.DefaultRegisterer registers against the
// global default.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		chunksSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "p2pcore_chunks_sent_total",
			Help: "Chunks handed to the transport by DataChannel.Send.",
		}),
		chunksReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "p2pcore_chunks_received_total",
			Help: "Chunks accepted into a DataChannel reassembly buffer.",
		}),
		messagesSentTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "p2pcore_messages_sent_total",
			Help: "Whole messages sent, by wire type.",
		}, []string{"type"}),
		messagesReceivedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "p2pcore_messages_received_total",
			Help: "Whole messages successfully dispatched, by wire type.",
		}, []string{"type"}),
		rejectsSentTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "p2pcore_rejects_sent_total",
			Help: "REJECT messages sent, by the type they rejected.",
		}, []string{"rejected_type"}),
		expectationsTimedOut: factory.NewCounter(prometheus.CounterOpts{
			Name: "p2pcore_expectations_timed_out_total",
			Help: "ExpectMessage registrations that fired their timeout callback.",
		}),
		protocolViolations: factory.NewCounter(prometheus.CounterOpts{
			Name: "p2pcore_protocol_violations_total",
			Help: "DataChannel closes triggered by a protocol violation (oversized chunk, tag mismatch, overrun).",
		}),
		closesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "p2pcore_peerchannel_closes_total",
			Help: "PeerChannel closes, by reason.",
		}, []string{"reason"}),
	}
}

// peerchannel.Metrics implementation.

func (r *Registry) MessageSent(t wire.Type) {
	r.messagesSentTotal.WithLabelValues(t.String()).Inc()
}

func (r *Registry) MessageReceived(t wire.Type) {
	r.messagesReceivedTotal.WithLabelValues(t.String()).Inc()
}

func (r *Registry) RejectSent(t wire.Type) {
	r.rejectsSentTotal.WithLabelValues(t.String()).Inc()
}

func (r *Registry) Closed(reason peerchannel.CloseType) {
	r.closesTotal.WithLabelValues(reason.String()).Inc()
}

var _ peerchannel.Metrics = (*Registry)(nil)

// dataChannelAdapter implements datachannel.Metrics over a Registry's
// chunk/expectation/violation counters. It deliberately drops the
// whole-message counters: at the DataChannel layer a message is just
// bytes, with no wire type to label by, and that's exactly what
// peerchannel.Metrics.MessageSent/MessageReceived already count one layer
// up.
type dataChannelAdapter struct {
	r *Registry
}

func (a dataChannelAdapter) ChunkSent()           { a.r.chunksSent.Inc() }
func (a dataChannelAdapter) ChunkReceived()       { a.r.chunksReceived.Inc() }
func (a dataChannelAdapter) MessageSent()         {}
func (a dataChannelAdapter) MessageReceived()     {}
func (a dataChannelAdapter) ExpectationTimedOut() { a.r.expectationsTimedOut.Inc() }
func (a dataChannelAdapter) ProtocolViolation()   { a.r.protocolViolations.Inc() }

// ForDataChannel returns a datachannel.Metrics view over r's chunk-level
// counters, for embedders that construct a DataChannel directly rather
// than going through peerchannel.New (which never needs this: it only
// takes a peerchannel.Metrics).
func (r *Registry) ForDataChannel() datachannel.Metrics {
	return dataChannelAdapter{r: r}
}

var _ datachannel.Metrics = dataChannelAdapter{}
