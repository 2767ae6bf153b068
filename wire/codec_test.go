package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderMarshalRoundTrip(t *testing.T) {
	h := Header{
		Type:         TypeRequest,
		SerialNumber: 42,
		Code:         100,
		Flag:         0x3,
		ObjectID:     7,
		PayloadSize:  4,
		SenderName:   "client-a",
	}

	b, err := h.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalHeader(b)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestHeaderMarshalOmitsEmptyOptionalFields(t *testing.T) {
	h := Header{Type: TypeReply, SerialNumber: 1}
	got, err := UnmarshalHeader(mustMarshal(t, h))
	require.NoError(t, err)
	assert.False(t, got.HasSenderName())
	assert.False(t, got.HasBroadcastFilter())
	assert.False(t, got.HasSendOrArriveTime())
	assert.False(t, got.HasReplyTime())
}

func TestHeaderMarshalTooLong(t *testing.T) {
	h := Header{SenderName: string(make([]byte, MaxHeadSize*2))}
	_, err := h.Marshal()
	assert.ErrorIs(t, err, ErrHeadTooLong)
}

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	payload := []byte("ping")
	extra := []byte("tail")

	buf := NewEncodeBuffer(len(payload), len(extra))
	copy(buf[MaxReservedSize:], payload)
	copy(buf[MaxReservedSize+len(payload):], extra)

	h := Header{Type: TypeRequest, SerialNumber: 7, Code: 100, PayloadSize: uint32(len(payload))}
	frame, err := EncodeFrame(buf, h, len(payload), len(extra))
	require.NoError(t, err)

	decoded, err := DecodeFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, len(payload), decoded.PayloadSize)
	assert.Equal(t, len(extra), decoded.ExtraSize)
	assert.False(t, decoded.Clamped)
	assert.Equal(t, h.SerialNumber, decoded.Header.SerialNumber)

	prefix, err := DecodePrefix(frame)
	require.NoError(t, err)
	bodyStart := PrefixSize + int(prefix.HeadLength)
	assert.Equal(t, payload, frame[bodyStart:bodyStart+decoded.PayloadSize])
	assert.Equal(t, extra, frame[bodyStart+decoded.PayloadSize:bodyStart+decoded.PayloadSize+decoded.ExtraSize])
}

func TestDecodeFrameTotalLengthInvariant(t *testing.T) {
	payload := []byte("hello")
	buf := NewEncodeBuffer(len(payload), 0)
	copy(buf[MaxReservedSize:], payload)

	h := Header{Type: TypeStatus, SerialNumber: 1, PayloadSize: uint32(len(payload))}
	frame, err := EncodeFrame(buf, h, len(payload), 0)
	require.NoError(t, err)

	prefix, err := DecodePrefix(frame)
	require.NoError(t, err)
	assert.EqualValues(t, PrefixSize+int(prefix.HeadLength)+len(payload), prefix.TotalLength)
}

func TestDecodeFrameClampsNegativeExtra(t *testing.T) {
	h := Header{Type: TypeReply, PayloadSize: 100}
	headBytes, err := h.Marshal()
	require.NoError(t, err)

	buf := make([]byte, PrefixSize+len(headBytes))
	prefix := Prefix{TotalLength: uint32(PrefixSize + len(headBytes) + 10), HeadLength: uint32(len(headBytes))}
	require.NoError(t, prefix.Encode(buf))
	copy(buf[PrefixSize:], headBytes)

	decoded, err := DecodeFrame(buf)
	require.NoError(t, err)
	assert.True(t, decoded.Clamped)
	assert.Equal(t, 0, decoded.ExtraSize)
}

func mustMarshal(t *testing.T, h Header) []byte {
	t.Helper()
	b, err := h.Marshal()
	require.NoError(t, err)
	return b
}
