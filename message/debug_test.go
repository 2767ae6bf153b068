package message

import (
	"testing"

	"github.com/ipcbus/ipcbus-go/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugStampsRoundTripThroughWire(t *testing.T) {
	clock := uint64(1000)
	now := func() uint64 { clock += 10; return clock }

	req := New(wire.TypeRequest, Code(1), []byte("ping"), 0)
	req.Serial = 9
	req.EnableDebug()
	frame, err := req.Encode(EncodeOptions{Now: now})
	require.NoError(t, err)
	require.NotZero(t, req.Debug.Send)

	arrived, err := FromWire(frame, 1, now)
	require.NoError(t, err)
	require.NotNil(t, arrived.Debug)
	assert.Equal(t, req.Debug.Send, arrived.Debug.Send)
	assert.NotZero(t, arrived.Debug.Arrive)

	reply := New(wire.TypeReply, Code(1), []byte("pong"), 0)
	reply.Serial = req.Serial
	reply.Debug = &DebugStamps{Arrive: arrived.Debug.Arrive}
	reply.Flag |= FlagDebug
	replyFrame, err := reply.Encode(EncodeOptions{Now: now})
	require.NoError(t, err)
	require.NotZero(t, reply.Debug.Reply)

	received, err := FromWire(replyFrame, 1, now)
	require.NoError(t, err)
	require.NotNil(t, received.Debug)
	assert.Equal(t, reply.Debug.Arrive, received.Debug.Arrive)
	assert.Equal(t, reply.Debug.Reply, received.Debug.Reply)
	assert.NotZero(t, received.Debug.Receive)

	d := ParseTimestamp(*received.Debug)
	assert.Zero(t, d.ClientToServer)
	assert.Greater(t, d.ReplyToClient, uint64(0))
}

func TestParseTimestampZeroWhenStampsMissing(t *testing.T) {
	d := ParseTimestamp(DebugStamps{})
	assert.Zero(t, d.ClientToServer)
	assert.Zero(t, d.ServerToReply)
	assert.Zero(t, d.ReplyToClient)
	assert.Zero(t, d.Total)
}
