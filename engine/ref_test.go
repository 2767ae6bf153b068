package engine

import (
	"testing"

	"github.com/ipcbus/ipcbus-go/message"
	"github.com/ipcbus/ipcbus-go/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSession struct {
	loopbackSession
	sent []*message.Message
}

func (s *recordingSession) Send(m *message.Message) error {
	s.sent = append(s.sent, m)
	return nil
}

func TestRefDropWithUnrepliedAutoReplyEmitsStatus(t *testing.T) {
	c := NewContext()
	session := &recordingSession{loopbackSession: loopbackSession{id: 1}}

	req := message.New(wire.TypeRequest, message.Code(7), []byte("work"), 0)
	req.Serial = 42
	req.Flag |= message.FlagAutoReply

	ref := NewRef(req, autoReplyOnDrop(c, session, message.StatusAutoReplyOK, "auto"))
	ref.Drop()

	require.Len(t, session.sent, 1)
	status := session.sent[0]
	assert.Equal(t, wire.TypeStatus, status.Type)
	assert.Equal(t, req.Serial, status.Serial)

	info, err := message.UnmarshalErrorInfo(status.Payload())
	require.NoError(t, err)
	assert.Equal(t, message.StatusAutoReplyOK, info.Code)
	assert.Equal(t, "auto", info.Description)
}

func TestRefDropAfterReplySuppressesAutoReply(t *testing.T) {
	c := NewContext()
	session := &recordingSession{loopbackSession: loopbackSession{id: 1}}

	req := message.New(wire.TypeRequest, message.Code(7), nil, 0)
	req.Flag |= message.FlagAutoReply | message.FlagReplied

	ref := NewRef(req, autoReplyOnDrop(c, session, message.StatusAutoReplyOK, ""))
	ref.Drop()

	assert.Empty(t, session.sent)
}

func TestRefDropWithoutAutoReplyFlagIsSilent(t *testing.T) {
	c := NewContext()
	session := &recordingSession{loopbackSession: loopbackSession{id: 1}}

	req := message.New(wire.TypeRequest, message.Code(7), nil, 0)

	ref := NewRef(req, autoReplyOnDrop(c, session, message.StatusAutoReplyOK, ""))
	ref.Drop()

	assert.Empty(t, session.sent)
}

func TestRefCloneDefersDropUntilLastHolder(t *testing.T) {
	c := NewContext()
	session := &recordingSession{loopbackSession: loopbackSession{id: 1}}

	req := message.New(wire.TypeRequest, message.Code(7), nil, 0)
	req.Flag |= message.FlagAutoReply

	ref := NewRef(req, autoReplyOnDrop(c, session, message.StatusAutoReplyOK, ""))
	clone := ref.Clone()

	ref.Drop()
	assert.Empty(t, session.sent, "auto-reply must wait for the last holder")

	clone.Drop()
	assert.Len(t, session.sent, 1)
}
