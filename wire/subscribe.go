package wire

import "fmt"

// Subscription types for SUBSCRIBE, mirroring the narrow interest-set
// vocabulary consensus clients use to avoid relaying unwanted inventory.
const (
	SubscriptionNone      byte = 0
	SubscriptionAny       byte = 1
	SubscriptionAddresses byte = 2
)

// MaxSubscribeAddresses bounds a single SUBSCRIBE message.
const MaxSubscribeAddresses = 10_000

// SubscribePayload declares what inventory the sender wants the peer to
// relay to it going forward.
type SubscribePayload struct {
	SubscriptionType byte
	Addresses        [][20]byte // only meaningful when SubscriptionType == SubscriptionAddresses
}

func EncodeSubscribePayload(p SubscribePayload) ([]byte, error) {
	if p.SubscriptionType != SubscriptionAddresses && len(p.Addresses) > 0 {
		return nil, fmt.Errorf("wire: subscribe: addresses require SubscriptionAddresses")
	}
	if len(p.Addresses) > MaxSubscribeAddresses {
		return nil, fmt.Errorf("wire: subscribe: too many addresses")
	}
	out := make([]byte, 0, 1+9+len(p.Addresses)*20)
	out = append(out, p.SubscriptionType)
	out = append(out, encodeCompactSize(uint64(len(p.Addresses)))...)
	for _, a := range p.Addresses {
		out = append(out, a[:]...)
	}
	return out, nil
}

func DecodeSubscribePayload(b []byte) (*SubscribePayload, error) {
	c := newCursor(b)
	subType, err := c.readU8()
	if err != nil {
		return nil, fmt.Errorf("wire: subscribe: %w", err)
	}
	countU64, used, err := readCompactSize(b[c.pos:])
	if err != nil {
		return nil, fmt.Errorf("wire: subscribe: %w", err)
	}
	c.pos += used
	if countU64 > MaxSubscribeAddresses {
		return nil, fmt.Errorf("wire: subscribe: too many addresses")
	}
	count := int(countU64)
	addrs := make([][20]byte, 0, count)
	for i := 0; i < count; i++ {
		raw, err := c.readExact(20)
		if err != nil {
			return nil, fmt.Errorf("wire: subscribe: %w", err)
		}
		var a [20]byte
		copy(a[:], raw)
		addrs = append(addrs, a)
	}
	if !c.done() {
		return nil, fmt.Errorf("wire: subscribe: trailing bytes")
	}
	if subType != SubscriptionAddresses && count > 0 {
		return nil, fmt.Errorf("wire: subscribe: addresses require SubscriptionAddresses")
	}
	return &SubscribePayload{SubscriptionType: subType, Addresses: addrs}, nil
}
