package message

import (
	"testing"

	"github.com/ipcbus/ipcbus-go/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildEmbeddedFrame(t *testing.T, totalLength int) []byte {
	t.Helper()
	h := wire.Header{Type: wire.TypeRequest, SerialNumber: 1, Code: 1}
	headBytes, err := h.Marshal()
	require.NoError(t, err)

	payloadSize := totalLength - wire.PrefixSize - len(headBytes)
	require.GreaterOrEqual(t, payloadSize, 0)
	h.PayloadSize = uint32(payloadSize)
	headBytes, err = h.Marshal()
	require.NoError(t, err)

	buf := wire.NewEncodeBuffer(payloadSize, 0)
	frame, err := wire.EncodeFrame(buf, h, payloadSize, 0)
	require.NoError(t, err)
	require.EqualValues(t, totalLength, wire.PrefixSize+len(headBytes)+payloadSize)
	return frame
}

func TestSendLogClipsEmbeddedFrame(t *testing.T) {
	logData := buildEmbeddedFrame(t, 120)
	prefix, err := wire.DecodePrefix(logData)
	require.NoError(t, err)
	headLen := int(prefix.HeadLength)

	m := New(wire.TypeRequest, Code(1), nil, 0)
	require.NoError(t, m.SendLog([]byte("hdr"), logData, 32))

	gotPrefix, err := wire.DecodePrefix(m.Extra())
	require.NoError(t, err)
	assert.EqualValues(t, wire.PrefixSize+headLen+32, gotPrefix.TotalLength)
	assert.Equal(t, wire.PrefixSize+headLen+32, len(m.Extra()))
	assert.True(t, Flag(m.Flag).Has(FlagNoReplyExpected))
	assert.False(t, Flag(m.Flag).Has(FlagEnableLog))
	assert.Equal(t, wire.TypeRequest, m.Type)
}

func TestSendLogZeroClipKeepsOnlyHeader(t *testing.T) {
	logData := buildEmbeddedFrame(t, 120)
	prefix, err := wire.DecodePrefix(logData)
	require.NoError(t, err)
	headLen := int(prefix.HeadLength)

	m := New(wire.TypeRequest, Code(1), nil, 0)
	require.NoError(t, m.SendLog(nil, logData, 0))

	assert.Equal(t, wire.PrefixSize+headLen, len(m.Extra()))
}

func TestSendLogNoClipKeepsFullFrame(t *testing.T) {
	logData := buildEmbeddedFrame(t, 120)
	m := New(wire.TypeRequest, Code(1), nil, 0)
	require.NoError(t, m.SendLog(nil, logData, -1))
	assert.Equal(t, len(logData), len(m.Extra()))
}

func TestBroadcastLogCarriesFrameVerbatim(t *testing.T) {
	logData := buildEmbeddedFrame(t, 64)
	m := New(wire.TypeRequest, Code(1), nil, 0)
	require.NoError(t, m.BroadcastLog([]byte("p"), logData))
	assert.Equal(t, wire.TypeBroadcast, m.Type)
	assert.Equal(t, logData, m.Extra())
}

func TestParseLogFrameRoundTrip(t *testing.T) {
	frame := buildEmbeddedFrame(t, 64)
	m, err := ParseLogFrame(frame)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, wire.TypeRequest, m.Type)
	assert.Equal(t, Serial(1), m.Serial)
}

func TestParseLogFrameEmptyReturnsNil(t *testing.T) {
	m, err := ParseLogFrame(nil)
	require.NoError(t, err)
	assert.Nil(t, m)
}
