// Package wire implements the peer-to-peer wire codec: a length-prefixed,
// tagged binary frame format for every message variant exchanged between
// nodes. It serializes, deserializes, and peeks length/type without
// committing to a full parse.
package wire

// Type is the stable wire constant identifying a message variant. Type
// uniquely determines the payload layout; unknown types fail parsing.
type Type byte

const (
	TypeVersion Type = iota + 1
	TypeVerack
	TypeInv
	TypeGetData
	TypeGetHeader
	TypeNotFound
	TypeGetBlocks
	TypeBlock
	TypeHeader
	TypeTx
	TypeMempool
	TypeReject
	TypeSubscribe
	TypeAddr
	TypeGetAddr
	TypePing
	TypePong
	TypeSignal
	TypeGetChainProof
	TypeChainProof
	TypeGetAccountsProof
	TypeAccountsProof
	TypeGetAccountsTreeChunk
	TypeAccountsTreeChunk
	TypeGetTransactionsProof
	TypeTransactionsProof
	TypeGetTransactionReceipts
	TypeTransactionReceipts
	TypeGetBlockProof
	TypeBlockProof
	TypeGetHead
	TypeHead
)

var typeNames = map[Type]string{
	TypeVersion:                "VERSION",
	TypeVerack:                 "VERACK",
	TypeInv:                    "INV",
	TypeGetData:                "GET_DATA",
	TypeGetHeader:              "GET_HEADER",
	TypeNotFound:               "NOT_FOUND",
	TypeGetBlocks:              "GET_BLOCKS",
	TypeBlock:                  "BLOCK",
	TypeHeader:                 "HEADER",
	TypeTx:                     "TX",
	TypeMempool:                "MEMPOOL",
	TypeReject:                 "REJECT",
	TypeSubscribe:              "SUBSCRIBE",
	TypeAddr:                   "ADDR",
	TypeGetAddr:                "GET_ADDR",
	TypePing:                   "PING",
	TypePong:                   "PONG",
	TypeSignal:                 "SIGNAL",
	TypeGetChainProof:          "GET_CHAIN_PROOF",
	TypeChainProof:             "CHAIN_PROOF",
	TypeGetAccountsProof:       "GET_ACCOUNTS_PROOF",
	TypeAccountsProof:          "ACCOUNTS_PROOF",
	TypeGetAccountsTreeChunk:   "GET_ACCOUNTS_TREE_CHUNK",
	TypeAccountsTreeChunk:      "ACCOUNTS_TREE_CHUNK",
	TypeGetTransactionsProof:   "GET_TRANSACTIONS_PROOF",
	TypeTransactionsProof:      "TRANSACTIONS_PROOF",
	TypeGetTransactionReceipts: "GET_TRANSACTION_RECEIPTS",
	TypeTransactionReceipts:    "TRANSACTION_RECEIPTS",
	TypeGetBlockProof:          "GET_BLOCK_PROOF",
	TypeBlockProof:             "BLOCK_PROOF",
	TypeGetHead:                "GET_HEAD",
	TypeHead:                   "HEAD",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// KnownType reports whether t is a recognized wire type.
func KnownType(t Type) bool {
	_, ok := typeNames[t]
	return ok
}

// Reject reason codes, Bitcoin-style: a coarse "why was this refused"
// classification to pair with REJECT's free-text reason.
const (
	RejectMalformed       = 0x01
	RejectInvalid         = 0x10
	RejectObsolete        = 0x11
	RejectDuplicate       = 0x12
	RejectNonstandard     = 0x40
	RejectDust            = 0x41
	RejectInsufficientFee = 0x42
	RejectCheckpoint      = 0x43
)
