package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTripPing(t *testing.T) {
	payload := EncodePingPayload(PingPayload{Nonce: 7})
	buf, err := Serialize(Message{Type: TypePing, Payload: payload})
	require.NoError(t, err)

	typ, err := PeekType(buf)
	require.NoError(t, err)
	require.Equal(t, TypePing, typ)

	length, err := PeekLength(buf)
	require.NoError(t, err)
	require.Equal(t, uint32(len(buf)), length)

	msg, err := Parse(buf)
	require.NoError(t, err)
	require.Equal(t, TypePing, msg.Type)

	pp, err := DecodePingPayload(msg.Payload)
	require.NoError(t, err)
	require.Equal(t, uint64(7), pp.Nonce)
}

func TestParseRejectsMagicMismatch(t *testing.T) {
	buf, err := Serialize(Message{Type: TypeVerack, Payload: nil})
	require.NoError(t, err)
	buf[0] ^= 0xff

	_, err = Parse(buf)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestParseRejectsChecksumMismatch(t *testing.T) {
	buf, err := Serialize(Message{Type: TypeVerack, Payload: []byte("x")})
	require.NoError(t, err)
	buf[len(buf)-1] ^= 0xff

	_, err = Parse(buf)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestParseRejectsUnknownType(t *testing.T) {
	buf, err := Serialize(Message{Type: TypeVerack, Payload: nil})
	require.NoError(t, err)
	buf[4] = 0xfe

	_, err = Parse(buf)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestParseRejectsLengthMismatch(t *testing.T) {
	buf, err := Serialize(Message{Type: TypeVerack, Payload: []byte("hello")})
	require.NoError(t, err)

	_, err = Parse(buf[:len(buf)-1])
	require.ErrorIs(t, err, ErrMalformed)
}

func TestSerializeRejectsOversizePayload(t *testing.T) {
	_, err := Serialize(Message{Type: TypeBlock, Payload: make([]byte, MessageSizeMax+1)})
	require.Error(t, err)
}

func TestPeekLengthAndTypeDoNotConsumeBuffer(t *testing.T) {
	buf, err := Serialize(Message{Type: TypeInv, Payload: []byte("abc")})
	require.NoError(t, err)
	before := append([]byte(nil), buf...)

	_, err = PeekLength(buf)
	require.NoError(t, err)
	_, err = PeekType(buf)
	require.NoError(t, err)

	require.Equal(t, before, buf)
}
