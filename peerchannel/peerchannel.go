// Package peerchannel implements the typed per-peer facade over a
// DataChannel: it parses each reassembled frame into a typed message,
// dispatches it to per-variant subscribers, exposes one send method per
// message variant, and enforces the expect/confirm and reject-loop-safety
// contracts.
package peerchannel

import (
	"fmt"
	"sync"
	"time"

	"github.com/anacrolix/log"

	"rubin.dev/p2pcore/datachannel"
	"rubin.dev/p2pcore/netconfig"
	"rubin.dev/p2pcore/wire"
)

// CloseType is surfaced to the peer-address-book layer (outside this
// package) so it can adjust a peer's reputation. It is never interpreted
// here beyond choosing which code to report.
type CloseType int

const (
	// CloseGeneric covers every close that isn't a parse failure: a local
	// Close() call, the underlying DataChannel closing on its own
	// (protocol violation, transport failure), and so on.
	CloseGeneric CloseType = iota
	// CloseFailedToParseMessageType is the reject-loop-safety close: the
	// type byte of an inbound frame could not even be peeked, a frame with
	// an unknown type failed to parse, or a frame that claimed to be REJECT
	// itself failed to parse.
	CloseFailedToParseMessageType
)

func (c CloseType) String() string {
	switch c {
	case CloseFailedToParseMessageType:
		return "FAILED_TO_PARSE_MESSAGE_TYPE"
	default:
		return "GENERIC"
	}
}

// MessageLogEvent carries metadata about every successfully dispatched
// inbound message, independent of the per-variant handler.
type MessageLogEvent struct {
	Type       wire.Type
	ElapsedMs  int64
	ByteLength int
}

// Metrics receives per-variant counters; a nil Metrics drops them.
type Metrics interface {
	MessageReceived(t wire.Type)
	MessageSent(t wire.Type)
	RejectSent(t wire.Type)
	Closed(reason CloseType)
}

type noopMetrics struct{}

func (noopMetrics) MessageReceived(wire.Type) {}
func (noopMetrics) MessageSent(wire.Type)     {}
func (noopMetrics) RejectSent(wire.Type)      {}
func (noopMetrics) Closed(CloseType)          {}

// Handlers is the typed event surface: one field per message variant. A
// nil field means "not subscribed"; dispatch silently skips it.
type Handlers struct {
	Version   func(*PeerChannel, wire.VersionPayload)
	Verack    func(*PeerChannel)
	Inv       func(*PeerChannel, []wire.InvVector)
	GetData   func(*PeerChannel, []wire.InvVector)
	GetHeader func(*PeerChannel, wire.LocatorPayload)
	NotFound  func(*PeerChannel, []wire.InvVector)
	GetBlocks func(*PeerChannel, wire.LocatorPayload)
	Block     func(*PeerChannel, []byte)
	Header    func(*PeerChannel, []byte)
	Tx        func(*PeerChannel, []byte)
	Mempool   func(*PeerChannel)
	Reject    func(*PeerChannel, wire.RejectPayload)
	Subscribe func(*PeerChannel, wire.SubscribePayload)
	Addr      func(*PeerChannel, []wire.NetAddress)
	GetAddr   func(*PeerChannel)
	Ping      func(*PeerChannel, uint64)
	Pong      func(*PeerChannel, uint64)
	Signal    func(*PeerChannel, wire.SignalPayload)

	GetChainProof          func(*PeerChannel, []byte)
	ChainProof             func(*PeerChannel, []byte)
	GetAccountsProof       func(*PeerChannel, []byte)
	AccountsProof          func(*PeerChannel, []byte)
	GetAccountsTreeChunk   func(*PeerChannel, []byte)
	AccountsTreeChunk      func(*PeerChannel, []byte)
	GetTransactionsProof   func(*PeerChannel, []byte)
	TransactionsProof      func(*PeerChannel, []byte)
	GetTransactionReceipts func(*PeerChannel, []byte)
	TransactionReceipts    func(*PeerChannel, []byte)
	GetBlockProof          func(*PeerChannel, []byte)
	BlockProof             func(*PeerChannel, []byte)

	GetHead func(*PeerChannel)
	Head    func(*PeerChannel, wire.HeadPayload)
}

// PeerChannel is the typed facade for one connected peer, owning exactly
// one DataChannel for its lifetime.
type PeerChannel struct {
	mu sync.Mutex

	dc       *datachannel.DataChannel
	logger   log.Logger
	metrics  Metrics
	handlers Handlers
	codec    *wire.Codec

	closeType *CloseType

	onMessageLog []func(MessageLogEvent)
	onClose      []func(*PeerChannel, CloseType)
	onError      []func(error, *PeerChannel)
}

// New wraps dc in a PeerChannel and subscribes to its message/close/error
// events. dc must not already have a PeerChannel attached. cfg governs the
// wire codec PeerChannel uses to peek/parse/serialize frames; it should
// ordinarily be the same netconfig.Config dc itself was constructed with.
func New(dc *datachannel.DataChannel, logger log.Logger, m Metrics, h Handlers, cfg netconfig.Config) *PeerChannel {
	if m == nil {
		m = noopMetrics{}
	}
	pc := &PeerChannel{dc: dc, logger: logger, metrics: m, handlers: h, codec: wire.NewCodec(cfg)}
	dc.OnMessage(pc.handleMessage)
	dc.OnClose(func(*datachannel.DataChannel) { pc.fireClose() })
	dc.OnError(func(err error, _ *datachannel.DataChannel) { pc.fireError(err) })
	return pc
}

// OnMessageLog registers a subscriber fired for every successfully
// dispatched inbound message, in addition to its per-variant handler.
func (pc *PeerChannel) OnMessageLog(fn func(MessageLogEvent)) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.onMessageLog = append(pc.onMessageLog, fn)
}

// OnClose registers a subscriber fired exactly once, carrying the reason
// code the address-book layer should use for reputation scoring.
func (pc *PeerChannel) OnClose(fn func(*PeerChannel, CloseType)) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.onClose = append(pc.onClose, fn)
}

// OnError registers a subscriber fired for every protocol violation
// reported by the underlying DataChannel.
func (pc *PeerChannel) OnError(fn func(error, *PeerChannel)) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.onError = append(pc.onError, fn)
}

// Close closes the underlying DataChannel with CloseGeneric, unless a
// parse-failure close is already in flight.
func (pc *PeerChannel) Close() error {
	return pc.dc.Close()
}

// ExpectMessage delegates to the underlying DataChannel, letting a
// higher-level request/response flow (e.g. "I sent GET_HEADER, I expect
// HEADER back") arm its own timers without touching reassembly directly.
func (pc *PeerChannel) ExpectMessage(types []wire.Type, onTimeout func(), msgTimeout, chunkTimeout time.Duration) {
	pc.dc.ExpectMessage(types, onTimeout, msgTimeout, chunkTimeout)
}

// IsExpectingMessage delegates to the underlying DataChannel.
func (pc *PeerChannel) IsExpectingMessage(t wire.Type) bool {
	return pc.dc.IsExpectingMessage(t)
}

func (pc *PeerChannel) closeWithType(ct CloseType) {
	pc.mu.Lock()
	if pc.closeType == nil {
		c := ct
		pc.closeType = &c
	}
	pc.mu.Unlock()
	_ = pc.dc.Close()
}

func (pc *PeerChannel) fireClose() {
	pc.mu.Lock()
	ct := CloseGeneric
	if pc.closeType != nil {
		ct = *pc.closeType
	}
	subs := append([]func(*PeerChannel, CloseType)(nil), pc.onClose...)
	pc.mu.Unlock()

	pc.metrics.Closed(ct)
	for _, fn := range subs {
		pc.safeCall(func() { fn(pc, ct) })
	}
}

func (pc *PeerChannel) fireError(err error) {
	pc.mu.Lock()
	subs := append([]func(error, *PeerChannel)(nil), pc.onError...)
	pc.mu.Unlock()
	for _, fn := range subs {
		pc.safeCall(func() { fn(err, pc) })
	}
}

func (pc *PeerChannel) fireMessageLog(ev MessageLogEvent) {
	pc.mu.Lock()
	subs := append([]func(MessageLogEvent)(nil), pc.onMessageLog...)
	pc.mu.Unlock()
	for _, fn := range subs {
		pc.safeCall(func() { fn(ev) })
	}
}

// safeCall isolates a user-supplied handler from the dispatch loop: a
// panicking subscriber is logged and otherwise ignored. A handler failure
// never closes the channel.
func (pc *PeerChannel) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			pc.logger.Printf("peerchannel: recovered handler panic: %v", r)
		}
	}()
	fn()
}

func (pc *PeerChannel) sendReject(rejectedType wire.Type, code byte, reason string) {
	if len(reason) > wire.MaxRejectReasonBytes {
		reason = reason[:wire.MaxRejectReasonBytes]
	}
	if err := pc.Reject(wire.RejectPayload{RejectedType: rejectedType, Code: code, Reason: reason}); err != nil {
		pc.logger.Printf("peerchannel: failed to send reject: %v", err)
	}
}

// handleMessage is the DataChannel message subscriber: peek the type,
// decode the matching payload, confirm or fail any pending expectation,
// then dispatch. A peek failure, or a decode failure of an unknown type or
// of a REJECT, closes the channel with CloseFailedToParseMessageType; a
// decode failure of any other known type is answered with a
// REJECT(RejectMalformed) and the frame is dropped.
func (pc *PeerChannel) handleMessage(raw []byte) {
	start := time.Now()

	peekedType, err := pc.codec.PeekType(raw)
	if err != nil {
		pc.dc.ConfirmExpectedMessage(nil, false)
		pc.closeWithType(CloseFailedToParseMessageType)
		return
	}

	dm, derr := pc.decode(raw, peekedType)
	if derr != nil {
		pc.dc.ConfirmExpectedMessage(&peekedType, false)
		if !wire.KnownType(peekedType) || peekedType == wire.TypeReject {
			// Reject-loop safety: never answer a malformed REJECT (or an
			// unparseable unknown type) with another REJECT.
			pc.closeWithType(CloseFailedToParseMessageType)
			return
		}
		pc.sendReject(peekedType, wire.RejectMalformed, derr.Error())
		return
	}

	pc.dc.ConfirmExpectedMessage(&dm.Type, true)
	pc.metrics.MessageReceived(dm.Type)
	pc.dispatch(dm)
	pc.fireMessageLog(MessageLogEvent{Type: dm.Type, ElapsedMs: time.Since(start).Milliseconds(), ByteLength: len(raw)})
}

// decodedMessage holds a frame already validated by wire.Parse together
// with its payload decoded into the variant-specific shape. Exactly one of
// the typed fields (other than the ones with no payload) is populated,
// selected by Type.
type decodedMessage struct {
	Type wire.Type

	version   wire.VersionPayload
	inv       []wire.InvVector
	locator   wire.LocatorPayload
	raw       wire.RawPayload
	reject    wire.RejectPayload
	subscribe wire.SubscribePayload
	addr      []wire.NetAddress
	ping      wire.PingPayload
	pong      wire.PongPayload
	signal    wire.SignalPayload
	head      wire.HeadPayload
}

func (pc *PeerChannel) decode(raw []byte, peekedType wire.Type) (*decodedMessage, error) {
	msg, err := pc.codec.Parse(raw)
	if err != nil {
		return nil, err
	}
	dm := &decodedMessage{Type: msg.Type}
	switch msg.Type {
	case wire.TypeVersion:
		v, err := wire.DecodeVersionPayload(msg.Payload)
		if err != nil {
			return nil, err
		}
		dm.version = *v
	case wire.TypeVerack, wire.TypeMempool, wire.TypeGetAddr, wire.TypeGetHead:
		if err := wire.DecodeEmpty(msg.Payload); err != nil {
			return nil, err
		}
	case wire.TypeInv, wire.TypeGetData, wire.TypeNotFound:
		vecs, err := wire.DecodeInvPayload(msg.Payload)
		if err != nil {
			return nil, err
		}
		dm.inv = vecs
	case wire.TypeGetHeader, wire.TypeGetBlocks:
		l, err := wire.DecodeLocatorPayload(msg.Payload)
		if err != nil {
			return nil, err
		}
		dm.locator = *l
	case wire.TypeBlock, wire.TypeHeader, wire.TypeTx,
		wire.TypeGetChainProof, wire.TypeChainProof,
		wire.TypeGetAccountsProof, wire.TypeAccountsProof,
		wire.TypeGetAccountsTreeChunk, wire.TypeAccountsTreeChunk,
		wire.TypeGetTransactionsProof, wire.TypeTransactionsProof,
		wire.TypeGetTransactionReceipts, wire.TypeTransactionReceipts,
		wire.TypeGetBlockProof, wire.TypeBlockProof:
		r, err := wire.DecodeRawPayload(msg.Payload)
		if err != nil {
			return nil, err
		}
		dm.raw = *r
	case wire.TypeReject:
		r, err := wire.DecodeRejectPayload(msg.Payload)
		if err != nil {
			return nil, err
		}
		dm.reject = *r
	case wire.TypeSubscribe:
		s, err := wire.DecodeSubscribePayload(msg.Payload)
		if err != nil {
			return nil, err
		}
		dm.subscribe = *s
	case wire.TypeAddr:
		a, err := wire.DecodeAddrPayload(msg.Payload)
		if err != nil {
			return nil, err
		}
		dm.addr = a
	case wire.TypePing:
		p, err := wire.DecodePingPayload(msg.Payload)
		if err != nil {
			return nil, err
		}
		dm.ping = *p
	case wire.TypePong:
		p, err := wire.DecodePongPayload(msg.Payload)
		if err != nil {
			return nil, err
		}
		dm.pong = *p
	case wire.TypeSignal:
		s, err := wire.DecodeSignalPayload(msg.Payload)
		if err != nil {
			return nil, err
		}
		dm.signal = *s
	case wire.TypeHead:
		h, err := wire.DecodeHeadPayload(msg.Payload)
		if err != nil {
			return nil, err
		}
		dm.head = *h
	default:
		return nil, fmt.Errorf("peerchannel: unhandled known type %s", msg.Type)
	}
	return dm, nil
}

func (pc *PeerChannel) dispatch(dm *decodedMessage) {
	h := pc.handlers
	switch dm.Type {
	case wire.TypeVersion:
		if h.Version != nil {
			pc.safeCall(func() { h.Version(pc, dm.version) })
		}
	case wire.TypeVerack:
		if h.Verack != nil {
			pc.safeCall(func() { h.Verack(pc) })
		}
	case wire.TypeInv:
		if h.Inv != nil {
			pc.safeCall(func() { h.Inv(pc, dm.inv) })
		}
	case wire.TypeGetData:
		if h.GetData != nil {
			pc.safeCall(func() { h.GetData(pc, dm.inv) })
		}
	case wire.TypeGetHeader:
		if h.GetHeader != nil {
			pc.safeCall(func() { h.GetHeader(pc, dm.locator) })
		}
	case wire.TypeNotFound:
		if h.NotFound != nil {
			pc.safeCall(func() { h.NotFound(pc, dm.inv) })
		}
	case wire.TypeGetBlocks:
		if h.GetBlocks != nil {
			pc.safeCall(func() { h.GetBlocks(pc, dm.locator) })
		}
	case wire.TypeBlock:
		if h.Block != nil {
			pc.safeCall(func() { h.Block(pc, dm.raw.Bytes) })
		}
	case wire.TypeHeader:
		if h.Header != nil {
			pc.safeCall(func() { h.Header(pc, dm.raw.Bytes) })
		}
	case wire.TypeTx:
		if h.Tx != nil {
			pc.safeCall(func() { h.Tx(pc, dm.raw.Bytes) })
		}
	case wire.TypeMempool:
		if h.Mempool != nil {
			pc.safeCall(func() { h.Mempool(pc) })
		}
	case wire.TypeReject:
		if h.Reject != nil {
			pc.safeCall(func() { h.Reject(pc, dm.reject) })
		}
	case wire.TypeSubscribe:
		if h.Subscribe != nil {
			pc.safeCall(func() { h.Subscribe(pc, dm.subscribe) })
		}
	case wire.TypeAddr:
		if h.Addr != nil {
			pc.safeCall(func() { h.Addr(pc, dm.addr) })
		}
	case wire.TypeGetAddr:
		if h.GetAddr != nil {
			pc.safeCall(func() { h.GetAddr(pc) })
		}
	case wire.TypePing:
		if h.Ping != nil {
			pc.safeCall(func() { h.Ping(pc, dm.ping.Nonce) })
		}
	case wire.TypePong:
		if h.Pong != nil {
			pc.safeCall(func() { h.Pong(pc, dm.pong.Nonce) })
		}
	case wire.TypeSignal:
		if h.Signal != nil {
			pc.safeCall(func() { h.Signal(pc, dm.signal) })
		}
	case wire.TypeGetChainProof:
		if h.GetChainProof != nil {
			pc.safeCall(func() { h.GetChainProof(pc, dm.raw.Bytes) })
		}
	case wire.TypeChainProof:
		if h.ChainProof != nil {
			pc.safeCall(func() { h.ChainProof(pc, dm.raw.Bytes) })
		}
	case wire.TypeGetAccountsProof:
		if h.GetAccountsProof != nil {
			pc.safeCall(func() { h.GetAccountsProof(pc, dm.raw.Bytes) })
		}
	case wire.TypeAccountsProof:
		if h.AccountsProof != nil {
			pc.safeCall(func() { h.AccountsProof(pc, dm.raw.Bytes) })
		}
	case wire.TypeGetAccountsTreeChunk:
		if h.GetAccountsTreeChunk != nil {
			pc.safeCall(func() { h.GetAccountsTreeChunk(pc, dm.raw.Bytes) })
		}
	case wire.TypeAccountsTreeChunk:
		if h.AccountsTreeChunk != nil {
			pc.safeCall(func() { h.AccountsTreeChunk(pc, dm.raw.Bytes) })
		}
	case wire.TypeGetTransactionsProof:
		if h.GetTransactionsProof != nil {
			pc.safeCall(func() { h.GetTransactionsProof(pc, dm.raw.Bytes) })
		}
	case wire.TypeTransactionsProof:
		if h.TransactionsProof != nil {
			pc.safeCall(func() { h.TransactionsProof(pc, dm.raw.Bytes) })
		}
	case wire.TypeGetTransactionReceipts:
		if h.GetTransactionReceipts != nil {
			pc.safeCall(func() { h.GetTransactionReceipts(pc, dm.raw.Bytes) })
		}
	case wire.TypeTransactionReceipts:
		if h.TransactionReceipts != nil {
			pc.safeCall(func() { h.TransactionReceipts(pc, dm.raw.Bytes) })
		}
	case wire.TypeGetBlockProof:
		if h.GetBlockProof != nil {
			pc.safeCall(func() { h.GetBlockProof(pc, dm.raw.Bytes) })
		}
	case wire.TypeBlockProof:
		if h.BlockProof != nil {
			pc.safeCall(func() { h.BlockProof(pc, dm.raw.Bytes) })
		}
	case wire.TypeGetHead:
		if h.GetHead != nil {
			pc.safeCall(func() { h.GetHead(pc) })
		}
	case wire.TypeHead:
		if h.Head != nil {
			pc.safeCall(func() { h.Head(pc, dm.head) })
		}
	}
}

func (pc *PeerChannel) send(t wire.Type, payload []byte) error {
	b, err := pc.codec.Serialize(wire.Message{Type: t, Payload: payload})
	if err != nil {
		return err
	}
	if err := pc.dc.Send(b); err != nil {
		return err
	}
	pc.metrics.MessageSent(t)
	return nil
}

// Version sends a VERSION message.
func (pc *PeerChannel) Version(v wire.VersionPayload) error {
	b, err := wire.EncodeVersionPayload(v)
	if err != nil {
		return err
	}
	return pc.send(wire.TypeVersion, b)
}

// Verack sends a VERACK message.
func (pc *PeerChannel) Verack() error { return pc.send(wire.TypeVerack, wire.EncodeEmpty()) }

// Inv sends an INV message.
func (pc *PeerChannel) Inv(vecs []wire.InvVector) error {
	b, err := wire.EncodeInvPayload(vecs)
	if err != nil {
		return err
	}
	return pc.send(wire.TypeInv, b)
}

// GetData sends a GET_DATA message.
func (pc *PeerChannel) GetData(vecs []wire.InvVector) error {
	b, err := wire.EncodeInvPayload(vecs)
	if err != nil {
		return err
	}
	return pc.send(wire.TypeGetData, b)
}

// GetHeader sends a GET_HEADER message.
func (pc *PeerChannel) GetHeader(l wire.LocatorPayload) error {
	b, err := wire.EncodeLocatorPayload(l)
	if err != nil {
		return err
	}
	return pc.send(wire.TypeGetHeader, b)
}

// NotFound sends a NOT_FOUND message.
func (pc *PeerChannel) NotFound(vecs []wire.InvVector) error {
	b, err := wire.EncodeInvPayload(vecs)
	if err != nil {
		return err
	}
	return pc.send(wire.TypeNotFound, b)
}

// GetBlocks sends a GET_BLOCKS message.
func (pc *PeerChannel) GetBlocks(l wire.LocatorPayload) error {
	b, err := wire.EncodeLocatorPayload(l)
	if err != nil {
		return err
	}
	return pc.send(wire.TypeGetBlocks, b)
}

// Block sends a BLOCK message carrying the consensus module's own
// canonical serialization of a block.
func (pc *PeerChannel) Block(blockBytes []byte) error {
	return pc.send(wire.TypeBlock, wire.EncodeRawPayload(wire.RawPayload{Bytes: blockBytes}))
}

// RawBlock sends a BLOCK message from already-serialized bytes, bypassing
// any object-level encoding step a caller might otherwise perform before
// Block. The core never distinguishes the two: both frame opaque bytes
// under TypeBlock.
func (pc *PeerChannel) RawBlock(blockBytes []byte) error { return pc.Block(blockBytes) }

// Header sends a HEADER message.
func (pc *PeerChannel) Header(headerBytes []byte) error {
	return pc.send(wire.TypeHeader, wire.EncodeRawPayload(wire.RawPayload{Bytes: headerBytes}))
}

// Tx sends a TX message.
func (pc *PeerChannel) Tx(txBytes []byte) error {
	return pc.send(wire.TypeTx, wire.EncodeRawPayload(wire.RawPayload{Bytes: txBytes}))
}

// Mempool sends a MEMPOOL message.
func (pc *PeerChannel) Mempool() error { return pc.send(wire.TypeMempool, wire.EncodeEmpty()) }

// Reject sends a REJECT message. Per reject-loop-safety, callers must
// never invoke this in response to an inbound REJECT; the receive path
// enforces that for frames this channel itself decodes.
func (pc *PeerChannel) Reject(r wire.RejectPayload) error {
	b, err := wire.EncodeRejectPayload(r)
	if err != nil {
		return err
	}
	pc.metrics.RejectSent(r.RejectedType)
	return pc.send(wire.TypeReject, b)
}

// Subscribe sends a SUBSCRIBE message.
func (pc *PeerChannel) Subscribe(s wire.SubscribePayload) error {
	b, err := wire.EncodeSubscribePayload(s)
	if err != nil {
		return err
	}
	return pc.send(wire.TypeSubscribe, b)
}

// Addr sends an ADDR message.
func (pc *PeerChannel) Addr(addrs []wire.NetAddress) error {
	b, err := wire.EncodeAddrPayload(addrs)
	if err != nil {
		return err
	}
	return pc.send(wire.TypeAddr, b)
}

// GetAddr sends a GET_ADDR message.
func (pc *PeerChannel) GetAddr() error { return pc.send(wire.TypeGetAddr, wire.EncodeEmpty()) }

// Ping sends a PING message.
func (pc *PeerChannel) Ping(nonce uint64) error {
	return pc.send(wire.TypePing, wire.EncodePingPayload(wire.PingPayload{Nonce: nonce}))
}

// Pong sends a PONG message.
func (pc *PeerChannel) Pong(nonce uint64) error {
	return pc.send(wire.TypePong, wire.EncodePongPayload(wire.PongPayload{Nonce: nonce}))
}

// Signal sends a SIGNAL message relaying a WebRTC signaling payload.
func (pc *PeerChannel) Signal(s wire.SignalPayload) error {
	b, err := wire.EncodeSignalPayload(s)
	if err != nil {
		return err
	}
	return pc.send(wire.TypeSignal, b)
}

// GetChainProof sends a GET_CHAIN_PROOF message.
func (pc *PeerChannel) GetChainProof(req []byte) error {
	return pc.send(wire.TypeGetChainProof, wire.EncodeRawPayload(wire.RawPayload{Bytes: req}))
}

// ChainProof sends a CHAIN_PROOF message.
func (pc *PeerChannel) ChainProof(proof []byte) error {
	return pc.send(wire.TypeChainProof, wire.EncodeRawPayload(wire.RawPayload{Bytes: proof}))
}

// GetAccountsProof sends a GET_ACCOUNTS_PROOF message.
func (pc *PeerChannel) GetAccountsProof(req []byte) error {
	return pc.send(wire.TypeGetAccountsProof, wire.EncodeRawPayload(wire.RawPayload{Bytes: req}))
}

// AccountsProof sends an ACCOUNTS_PROOF message.
func (pc *PeerChannel) AccountsProof(proof []byte) error {
	return pc.send(wire.TypeAccountsProof, wire.EncodeRawPayload(wire.RawPayload{Bytes: proof}))
}

// GetAccountsTreeChunk sends a GET_ACCOUNTS_TREE_CHUNK message.
func (pc *PeerChannel) GetAccountsTreeChunk(req []byte) error {
	return pc.send(wire.TypeGetAccountsTreeChunk, wire.EncodeRawPayload(wire.RawPayload{Bytes: req}))
}

// AccountsTreeChunk sends an ACCOUNTS_TREE_CHUNK message.
func (pc *PeerChannel) AccountsTreeChunk(chunk []byte) error {
	return pc.send(wire.TypeAccountsTreeChunk, wire.EncodeRawPayload(wire.RawPayload{Bytes: chunk}))
}

// GetTransactionsProof sends a GET_TRANSACTIONS_PROOF message.
func (pc *PeerChannel) GetTransactionsProof(req []byte) error {
	return pc.send(wire.TypeGetTransactionsProof, wire.EncodeRawPayload(wire.RawPayload{Bytes: req}))
}

// TransactionsProof sends a TRANSACTIONS_PROOF message.
func (pc *PeerChannel) TransactionsProof(proof []byte) error {
	return pc.send(wire.TypeTransactionsProof, wire.EncodeRawPayload(wire.RawPayload{Bytes: proof}))
}

// GetTransactionReceipts sends a GET_TRANSACTION_RECEIPTS message.
func (pc *PeerChannel) GetTransactionReceipts(req []byte) error {
	return pc.send(wire.TypeGetTransactionReceipts, wire.EncodeRawPayload(wire.RawPayload{Bytes: req}))
}

// TransactionReceipts sends a TRANSACTION_RECEIPTS message.
func (pc *PeerChannel) TransactionReceipts(receipts []byte) error {
	return pc.send(wire.TypeTransactionReceipts, wire.EncodeRawPayload(wire.RawPayload{Bytes: receipts}))
}

// GetBlockProof sends a GET_BLOCK_PROOF message.
func (pc *PeerChannel) GetBlockProof(req []byte) error {
	return pc.send(wire.TypeGetBlockProof, wire.EncodeRawPayload(wire.RawPayload{Bytes: req}))
}

// BlockProof sends a BLOCK_PROOF message.
func (pc *PeerChannel) BlockProof(proof []byte) error {
	return pc.send(wire.TypeBlockProof, wire.EncodeRawPayload(wire.RawPayload{Bytes: proof}))
}

// GetHead sends a GET_HEAD message.
func (pc *PeerChannel) GetHead() error { return pc.send(wire.TypeGetHead, wire.EncodeEmpty()) }

// Head sends a HEAD message.
func (pc *PeerChannel) Head(h wire.HeadPayload) error {
	return pc.send(wire.TypeHead, wire.EncodeHeadPayload(h))
}
