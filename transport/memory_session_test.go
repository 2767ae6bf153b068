package transport

import (
	"context"
	"testing"
	"time"

	"github.com/ipcbus/ipcbus-go/engine"
	"github.com/ipcbus/ipcbus-go/message"
	"github.com/ipcbus/ipcbus-go/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLinkRequestReply(t *testing.T) {
	client := engine.NewContext()
	server := engine.NewContext()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Run(ctx)
	go server.Run(ctx)

	clientSession, serverSession := NewMemoryLink("client", client, "server", server)
	client.RegisterSession(serverSession)
	server.RegisterSession(clientSession)
	time.Sleep(time.Millisecond)

	server.SetInboundHandler(func(ref *engine.Ref, from engine.Session) {
		req := ref.Message()
		server.Reply(req, []byte("pong"))
	})
	time.Sleep(time.Millisecond)

	req := message.New(wire.TypeRequest, message.Code(1), []byte("ping"), 0)
	req.DestSession = serverSession.ID()

	reply, err := client.Invoke(context.Background(), req, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte("pong"), reply.Payload())
	_ = clientSession
}

func TestMemorySessionSendAfterCloseFails(t *testing.T) {
	ctxA := engine.NewContext()
	ctxB := engine.NewContext()
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctxA.Run(runCtx)
	go ctxB.Run(runCtx)

	a, _ := NewMemoryLink("a", ctxA, "b", ctxB)
	a.Close()

	err := a.Send(message.New(wire.TypeRequest, message.Code(1), nil, 0))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemorySessionTerminateInvokesHandler(t *testing.T) {
	ctxA := engine.NewContext()
	ctxB := engine.NewContext()
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctxA.Run(runCtx)
	go ctxB.Run(runCtx)

	var gotCode message.StatusCode
	a, _ := NewMemoryLink("a", ctxA, "b", ctxB, WithTerminateHandler(func(serial message.Serial, code message.StatusCode, description string) {
		gotCode = code
	}))
	a.Terminate(7, message.StatusTimeout, "timed out")
	assert.Equal(t, message.StatusTimeout, gotCode)
}
