package message

import (
	"testing"

	"github.com/ipcbus/ipcbus-go/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := New(wire.TypeRequest, Code(10), []byte("hello"), 0)
	m.Serial = 1
	m.SenderName = "client-a"

	frame, err := m.Encode(EncodeOptions{})
	require.NoError(t, err)

	got, err := FromWire(frame, SessionID(1), nil)
	require.NoError(t, err)
	assert.Equal(t, wire.TypeRequest, got.Type)
	assert.Equal(t, Serial(1), got.Serial)
	assert.Equal(t, Code(10), got.Code)
	assert.Equal(t, "client-a", got.SenderName)
	assert.Equal(t, []byte("hello"), got.Payload())
}

func TestEncodeIsIdempotent(t *testing.T) {
	m := New(wire.TypeRequest, Code(1), []byte("x"), 0)
	first, err := m.Encode(EncodeOptions{})
	require.NoError(t, err)
	second, err := m.Encode(EncodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncodeUsesSenderNameFallback(t *testing.T) {
	m := New(wire.TypeRequest, Code(1), nil, 0)
	frame, err := m.Encode(EncodeOptions{SenderNameFallback: "fallback"})
	require.NoError(t, err)

	got, err := FromWire(frame, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "fallback", got.SenderName)
}

func TestSetErrorMsgMarksErrorOutsideInformationalRange(t *testing.T) {
	m := New(wire.TypeRequest, Code(1), nil, 0)
	require.NoError(t, m.SetErrorMsg(ErrorInfo{Code: StatusTimeout, Description: TimeoutDescription}))

	assert.True(t, Flag(m.Flag).Has(FlagError))
	assert.True(t, Flag(m.Flag).Has(FlagStatus))
	assert.Equal(t, wire.TypeStatus, m.Type)

	info, err := UnmarshalErrorInfo(m.Payload())
	require.NoError(t, err)
	assert.Equal(t, StatusTimeout, info.Code)
	assert.Equal(t, TimeoutDescription, info.Description)
}

func TestSetErrorMsgInformationalCodeLeavesErrorClear(t *testing.T) {
	m := New(wire.TypeRequest, Code(1), nil, 0)
	require.NoError(t, m.SetErrorMsg(ErrorInfo{Code: StatusOK}))
	assert.False(t, Flag(m.Flag).Has(FlagError))
}

func TestIsSubscribeUnsubscribeUpdate(t *testing.T) {
	sub := &Message{Type: wire.TypeSubscribeRequest, Code: CodeSubscribe}
	assert.True(t, sub.IsSubscribe())
	assert.False(t, sub.IsUnsubscribe())

	unsub := &Message{Type: wire.TypeSubscribeRequest, Code: CodeUnsubscribe}
	assert.True(t, unsub.IsUnsubscribe())

	upd := &Message{Type: wire.TypeSubscribeRequest, Code: CodeUpdate}
	assert.True(t, upd.IsUpdate())
}

func TestReplaceBufferClearsHeadOK(t *testing.T) {
	m := New(wire.TypeRequest, Code(1), []byte("a"), 0)
	_, err := m.Encode(EncodeOptions{})
	require.NoError(t, err)
	require.True(t, Flag(m.Flag).Has(FlagHeadOK))

	m.ReplaceBuffer([]byte("b"), 0)
	assert.False(t, Flag(m.Flag).Has(FlagHeadOK))
	assert.Equal(t, []byte("b"), m.Payload())
}

func TestNewBroadcastFromPropagatesManualUpdate(t *testing.T) {
	req := &Message{Type: wire.TypeSubscribeRequest, Code: CodeUpdate, ObjectID: 3}
	b := NewBroadcastFrom(req, Code(200), []byte("v"), "topic")
	assert.True(t, Flag(b.Flag).Has(FlagManualUpdate))
	assert.Equal(t, ObjectID(3), b.ObjectID)
	assert.Equal(t, "topic", b.Filter)

	plain := &Message{Type: wire.TypeSubscribeRequest, Code: CodeSubscribe}
	b2 := NewBroadcastFrom(plain, Code(200), []byte("v"), "topic")
	assert.False(t, Flag(b2.Flag).Has(FlagManualUpdate))
}
