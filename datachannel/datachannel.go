// Package datachannel implements the chunking/reassembly engine underlying
// PeerChannel: it splits outbound messages into bounded frames, reassembles
// inbound chunks into whole messages, enforces a monotonically increasing
// one-byte tag per message, rejects interleaving, and runs per-expectation
// timers.
package datachannel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/anacrolix/log"

	"rubin.dev/p2pcore/netconfig"
	"rubin.dev/p2pcore/timers"
	"rubin.dev/p2pcore/wire"
)

// ChunkSizeMax and MessageSizeMax mirror the standard network's
// netconfig.Default() bounds, for callers (and tests) that compare against
// them without constructing a netconfig.Config of their own. A DataChannel
// itself never reads these package vars; it reads the bounds it was
// constructed with, which may differ when New is given a non-default
// Config.
var (
	ChunkSizeMax   = int(netconfig.Default().ChunkSizeMax)
	MessageSizeMax = int(netconfig.Default().MessageSizeMax)

	// ChunkTimeout and MessageTimeout mirror the standard network's default
	// timeouts, for the same reason.
	ChunkTimeout   = netconfig.Default().ChunkTimeout()
	MessageTimeout = netconfig.Default().MsgTimeout()
)

// tagModulus is the tag space size: 255, not 256. The tag never takes the
// value 255, which shrinks the tag space by one and makes the wrap
// asymmetric. Preserved verbatim for wire compatibility; do not "fix" this
// to 256.
const tagModulus = 255

type channelState int

const (
	stateOpen channelState = iota
	stateClosing
	stateClosed
)

// ExpectedMessage is a registered intent to receive one of a set of
// message types, armed with a msg-level and a chunk-level timer. The same
// ExpectedMessage is indexed under every type in its set; confirming any
// one clears all of them.
type ExpectedMessage struct {
	id           string
	types        map[wire.Type]struct{}
	onTimeout    func()
	msgTimeout   time.Duration
	chunkTimeout time.Duration
}

type reassembly struct {
	tag         byte
	msgType     wire.Type
	declaredLen uint32
	data        []byte
}

// DataChannel chunks outbound messages, reassembles inbound ones, and
// tracks per-expectation timers over a single transport.Transport. All
// state transitions execute on the channel's own serial execution context;
// the mutex below exists only so a timer's own goroutine can safely
// interleave with an in-flight Send/handleChunk/Close.
type DataChannel struct {
	mu sync.Mutex

	transport Transport
	logger    log.Logger
	metrics   Metrics
	codec     *wire.Codec

	chunkSizeMax   int
	messageSizeMax int
	chunkTimeout   time.Duration
	msgTimeout     time.Duration

	sendingTag   byte
	receivingTag int // -1 sentinel: no message has completed yet

	buf            *reassembly
	expectedByType map[wire.Type]*ExpectedMessage

	timers *timers.Timers
	state  channelState

	lastChunkReceivedAt time.Time

	onMessage []func([]byte)
	onChunk   []func([]byte)
	onClose   []func(*DataChannel)
	onError   []func(error, *DataChannel)
}

// Transport is the minimal contract DataChannel needs, re-declared here
// (rather than importing the transport package directly) so embedders can
// satisfy it with their own adapter type without an import-cycle concern.
// transport.Transport implements it.
type Transport interface {
	SendChunk(chunk []byte) error
	OnChunk(fn func(chunk []byte))
	OnClose(fn func())
	Close() error
}

// Metrics receives counters for observability; metrics.Registry implements
// it. A nil Metrics is valid and simply drops counts.
type Metrics interface {
	ChunkSent()
	ChunkReceived()
	MessageSent()
	MessageReceived()
	ExpectationTimedOut()
	ProtocolViolation()
}

type noopMetrics struct{}

func (noopMetrics) ChunkSent()           {}
func (noopMetrics) ChunkReceived()       {}
func (noopMetrics) MessageSent()         {}
func (noopMetrics) MessageReceived()     {}
func (noopMetrics) ExpectationTimedOut() {}
func (noopMetrics) ProtocolViolation()   {}

// New constructs a DataChannel over an already-open transport, governed by
// cfg's chunk/message size bounds and chunk/message timeouts. The channel
// subscribes to the transport's chunk/close callbacks immediately.
func New(t Transport, logger log.Logger, m Metrics, cfg netconfig.Config) *DataChannel {
	if m == nil {
		m = noopMetrics{}
	}
	dc := &DataChannel{
		transport:      t,
		logger:         logger,
		metrics:        m,
		codec:          wire.NewCodec(cfg),
		chunkSizeMax:   int(cfg.ChunkSizeMax),
		messageSizeMax: int(cfg.MessageSizeMax),
		chunkTimeout:   cfg.ChunkTimeout(),
		msgTimeout:     cfg.MsgTimeout(),
		receivingTag:   -1,
		expectedByType: make(map[wire.Type]*ExpectedMessage),
		timers:         timers.New(),
		state:          stateOpen,
	}
	t.OnChunk(dc.handleChunk)
	t.OnClose(dc.handleTransportClosed)
	return dc
}

// OnMessage registers a subscriber fired once per fully reassembled
// inbound message, in receipt order.
func (dc *DataChannel) OnMessage(fn func([]byte)) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.onMessage = append(dc.onMessage, fn)
}

// OnChunk registers a subscriber fired with the partially reassembled
// buffer after every non-final continuation chunk of a multi-chunk
// message. The first chunk of a message does not fire it.
func (dc *DataChannel) OnChunk(fn func([]byte)) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.onChunk = append(dc.onChunk, fn)
}

// OnClose registers a subscriber fired exactly once when the channel
// closes, however that happens.
func (dc *DataChannel) OnClose(fn func(*DataChannel)) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.onClose = append(dc.onClose, fn)
}

// OnError registers a subscriber fired for every protocol violation before
// the channel closes.
func (dc *DataChannel) OnError(fn func(error, *DataChannel)) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.onError = append(dc.onError, fn)
}

// Send chunks msg and hands each chunk to the transport. Precondition:
// len(msg) <= the channel's configured MessageSizeMax; violating it is a
// programmer error, not a peer-induced one, so it is reported distinctly
// from protocol violations.
func (dc *DataChannel) Send(msg []byte) error {
	if len(msg) > dc.messageSizeMax {
		return fmt.Errorf("datachannel: send: message of %d bytes exceeds MessageSizeMax", len(msg))
	}

	dc.mu.Lock()
	if dc.state != stateOpen {
		dc.mu.Unlock()
		return fmt.Errorf("datachannel: send: channel not open")
	}
	tag := dc.sendingTag
	dc.sendingTag = byte((int(dc.sendingTag) + 1) % tagModulus)
	dc.mu.Unlock()

	payloadMax := dc.chunkSizeMax - 1
	if len(msg) == 0 {
		dc.metrics.ChunkSent()
		return dc.transport.SendChunk([]byte{tag})
	}
	for off := 0; off < len(msg); off += payloadMax {
		end := off + payloadMax
		if end > len(msg) {
			end = len(msg)
		}
		chunk := make([]byte, 0, 1+(end-off))
		chunk = append(chunk, tag)
		chunk = append(chunk, msg[off:end]...)
		if err := dc.transport.SendChunk(chunk); err != nil {
			return err
		}
		dc.metrics.ChunkSent()
	}
	dc.metrics.MessageSent()
	return nil
}

// ExpectMessage arms timers for one of the given types arriving. Passing a
// zero msgTimeout/chunkTimeout falls back to the channel's configured
// message/chunk timeout. Registering a new expectation over a type already
// covered by an existing one overwrites that type's entry (a later
// expectMessage always wins), matching the upstream protocol's behavior.
func (dc *DataChannel) ExpectMessage(types []wire.Type, onTimeout func(), msgTimeout, chunkTimeout time.Duration) {
	if msgTimeout <= 0 {
		msgTimeout = dc.msgTimeout
	}
	if chunkTimeout <= 0 {
		chunkTimeout = dc.chunkTimeout
	}
	id := expectationID(types)
	typeSet := make(map[wire.Type]struct{}, len(types))
	for _, t := range types {
		typeSet[t] = struct{}{}
	}
	exp := &ExpectedMessage{id: id, types: typeSet, onTimeout: onTimeout, msgTimeout: msgTimeout, chunkTimeout: chunkTimeout}

	dc.mu.Lock()
	for t := range typeSet {
		dc.expectedByType[t] = exp
	}
	dc.mu.Unlock()

	dc.timers.Arm("msg-"+id, msgTimeout, func() { dc.onExpectationTimeout(exp) })
	dc.timers.Arm("chunk-"+id, chunkTimeout, func() { dc.onExpectationTimeout(exp) })
}

// ConfirmExpectedMessage cancels both timers for the expectation matching
// typ. If success is false, the expectation's callback runs as if it had
// timed out. A nil typ is a no-op: the pre-parse-failure call site has no
// type to key on.
func (dc *DataChannel) ConfirmExpectedMessage(typ *wire.Type, success bool) {
	if typ == nil {
		return
	}
	dc.mu.Lock()
	exp, ok := dc.expectedByType[*typ]
	if !ok {
		dc.mu.Unlock()
		return
	}
	for t := range exp.types {
		delete(dc.expectedByType, t)
	}
	dc.mu.Unlock()

	dc.timers.Cancel("chunk-" + exp.id)
	dc.timers.Cancel("msg-" + exp.id)

	if !success && exp.onTimeout != nil {
		dc.safeCall(exp.onTimeout)
	}
}

// IsExpectingMessage reports whether typ currently has an armed
// expectation.
func (dc *DataChannel) IsExpectingMessage(typ wire.Type) bool {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	_, ok := dc.expectedByType[typ]
	return ok
}

// Close transitions the channel to CLOSED, clearing all timers and firing
// close exactly once no matter how many times Close is called or whether
// the remote side closed first.
func (dc *DataChannel) Close() error {
	return dc.transport.Close()
}

func (dc *DataChannel) handleTransportClosed() {
	dc.mu.Lock()
	if dc.state == stateClosed {
		dc.mu.Unlock()
		return
	}
	dc.state = stateClosed
	dc.buf = nil
	subs := append([]func(*DataChannel)(nil), dc.onClose...)
	dc.mu.Unlock()

	dc.timers.ClearAll()
	for _, fn := range subs {
		dc.safeCallClose(fn)
	}
}

func (dc *DataChannel) handleChunk(chunk []byte) {
	dc.mu.Lock()
	if dc.state != stateOpen {
		dc.mu.Unlock()
		return
	}
	if len(chunk) == 0 {
		dc.mu.Unlock()
		return
	}
	if len(chunk) > dc.chunkSizeMax {
		dc.mu.Unlock()
		dc.fail(fmt.Errorf("datachannel: chunk of %d bytes exceeds CHUNK_SIZE_MAX", len(chunk)))
		return
	}

	tag := chunk[0]
	payload := chunk[1:]

	if dc.buf == nil {
		dc.handleIdleChunkLocked(tag, payload)
		return
	}
	dc.handleAssemblingChunkLocked(tag, payload)
}

// handleIdleChunkLocked is called with dc.mu held and unlocks it on every
// path before returning.
func (dc *DataChannel) handleIdleChunkLocked(tag byte, payload []byte) {
	expected := nextTag(dc.receivingTag)
	if tag != expected {
		dc.mu.Unlock()
		dc.fail(fmt.Errorf("datachannel: wrong message tag: got %d, want %d", tag, expected))
		return
	}

	declaredLen, err := dc.codec.PeekLength(payload)
	if err != nil {
		dc.mu.Unlock()
		dc.fail(fmt.Errorf("datachannel: %w", err))
		return
	}
	if declaredLen > uint32(dc.messageSizeMax) {
		dc.mu.Unlock()
		dc.fail(fmt.Errorf("datachannel: excessive message size %d", declaredLen))
		return
	}
	msgType, err := dc.codec.PeekType(payload)
	if err != nil {
		dc.mu.Unlock()
		dc.fail(fmt.Errorf("datachannel: %w", err))
		return
	}
	if uint32(len(payload)) > declaredLen {
		dc.mu.Unlock()
		dc.fail(fmt.Errorf("datachannel: first chunk exceeds declared message length"))
		return
	}

	data := make([]byte, 0, declaredLen)
	data = append(data, payload...)
	dc.buf = &reassembly{tag: tag, msgType: msgType, declaredLen: declaredLen, data: data}
	dc.lastChunkReceivedAt = time.Now()
	dc.metrics.ChunkReceived()

	if uint32(len(data)) == declaredLen {
		dc.completeMessageLocked(tag)
		return
	}
	dc.mu.Unlock()
}

// handleAssemblingChunkLocked is called with dc.mu held and unlocks it on
// every path before returning.
func (dc *DataChannel) handleAssemblingChunkLocked(tag byte, payload []byte) {
	if tag != dc.buf.tag {
		dc.mu.Unlock()
		dc.fail(fmt.Errorf("datachannel: wrong message tag: got %d, want %d", tag, dc.buf.tag))
		return
	}
	remaining := dc.buf.declaredLen - uint32(len(dc.buf.data))
	if uint32(len(payload)) > remaining {
		dc.mu.Unlock()
		dc.fail(fmt.Errorf("datachannel: continuation chunk exceeds remaining bytes"))
		return
	}
	dc.buf.data = append(dc.buf.data, payload...)
	dc.lastChunkReceivedAt = time.Now()
	dc.metrics.ChunkReceived()

	if uint32(len(dc.buf.data)) == dc.buf.declaredLen {
		dc.completeMessageLocked(tag)
		return
	}

	msgType := dc.buf.msgType
	partial := append([]byte(nil), dc.buf.data...)
	exp := dc.expectedByType[msgType]
	dc.mu.Unlock()

	if exp != nil {
		dc.timers.Arm("chunk-"+exp.id, exp.chunkTimeout, func() { dc.onExpectationTimeout(exp) })
	}
	dc.fireChunk(partial)
}

// completeMessageLocked is called with dc.mu held and unlocks it before
// returning.
func (dc *DataChannel) completeMessageLocked(tag byte) {
	msg := dc.buf.data
	dc.receivingTag = int(tag)
	dc.buf = nil
	dc.mu.Unlock()

	dc.metrics.MessageReceived()
	dc.fireMessage(msg)
}

func (dc *DataChannel) onExpectationTimeout(exp *ExpectedMessage) {
	dc.mu.Lock()
	stillArmed := false
	for t := range exp.types {
		if dc.expectedByType[t] == exp {
			delete(dc.expectedByType, t)
			stillArmed = true
		}
	}
	if !stillArmed {
		dc.mu.Unlock()
		return
	}
	if dc.buf != nil {
		if _, ok := exp.types[dc.buf.msgType]; ok {
			dc.buf = nil
		}
	}
	dc.mu.Unlock()

	dc.timers.Cancel("chunk-" + exp.id)
	dc.timers.Cancel("msg-" + exp.id)
	dc.metrics.ExpectationTimedOut()
	if dc.logger.Logger != nil || true {
		dc.logger.Printf("datachannel: expectation %s timed out", exp.id)
	}
	if exp.onTimeout != nil {
		dc.safeCall(exp.onTimeout)
	}
}

// fail logs a protocol violation, fires error, and closes the channel
// immediately. DataChannel has no REJECT concept of its own; that's a
// PeerChannel-level reply, and a channel this broken can't be trusted to
// send one correctly anyway.
func (dc *DataChannel) fail(err error) {
	dc.metrics.ProtocolViolation()
	dc.logger.Printf("datachannel: protocol violation: %v", err)
	dc.fireError(err)
	_ = dc.Close()
}

func (dc *DataChannel) fireMessage(msg []byte) {
	dc.mu.Lock()
	subs := append([]func([]byte)(nil), dc.onMessage...)
	dc.mu.Unlock()
	for _, fn := range subs {
		dc.safeCallBytes(fn, msg)
	}
}

func (dc *DataChannel) fireChunk(partial []byte) {
	dc.mu.Lock()
	subs := append([]func([]byte)(nil), dc.onChunk...)
	dc.mu.Unlock()
	for _, fn := range subs {
		dc.safeCallBytes(fn, partial)
	}
}

func (dc *DataChannel) fireError(err error) {
	dc.mu.Lock()
	subs := append([]func(error, *DataChannel)(nil), dc.onError...)
	dc.mu.Unlock()
	for _, fn := range subs {
		dc.safeCallErr(fn, err)
	}
}

// safeCall/safeCallBytes/safeCallErr/safeCallClose catch panics from
// user-supplied handlers so one bad subscriber can't disrupt subsequent
// message delivery.
func (dc *DataChannel) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			dc.logger.Printf("datachannel: recovered handler panic: %v", r)
		}
	}()
	fn()
}

func (dc *DataChannel) safeCallBytes(fn func([]byte), b []byte) {
	defer func() {
		if r := recover(); r != nil {
			dc.logger.Printf("datachannel: recovered handler panic: %v", r)
		}
	}()
	fn(b)
}

func (dc *DataChannel) safeCallErr(fn func(error, *DataChannel), err error) {
	defer func() {
		if r := recover(); r != nil {
			dc.logger.Printf("datachannel: recovered handler panic: %v", r)
		}
	}()
	fn(err, dc)
}

func (dc *DataChannel) safeCallClose(fn func(*DataChannel)) {
	defer func() {
		if r := recover(); r != nil {
			dc.logger.Printf("datachannel: recovered handler panic: %v", r)
		}
	}()
	fn(dc)
}

// nextTag returns the tag a fresh (Idle) message must carry, given the last
// fully-received tag (-1 if none yet).
func nextTag(lastReceived int) byte {
	return byte((lastReceived + 1) % tagModulus)
}

func expectationID(types []wire.Type) string {
	sorted := append([]wire.Type(nil), types...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, 0, len(sorted))
	for _, t := range sorted {
		parts = append(parts, strconv.Itoa(int(t)))
	}
	return strings.Join(parts, "-")
}
