package transport

import (
	"context"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"

	"github.com/ipcbus/ipcbus-go/engine"
	"github.com/ipcbus/ipcbus-go/message"
	"github.com/ipcbus/ipcbus-go/wire"
)

// newBareAMQPSession builds an AMQPSession without dialing a broker, for
// exercising forward/Send logic that does not touch s.ch.
func newBareAMQPSession(ctx *engine.Context) *AMQPSession {
	return &AMQPSession{
		id:           nextMemorySessionID(),
		endpointName: "peer",
		sendQueue:    "ipcbus.peer",
		recvQueue:    "ipcbus.self",
		ctx:          ctx,
		logger:       slog.Default(),
		breaker:      newSendBreaker(5, 30*time.Second),
		done:         make(chan struct{}),
	}
}

func TestAMQPSessionForwardSkipsUndecodableFrames(t *testing.T) {
	ctx := engine.NewContext()
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctx.Run(runCtx)

	var received []*engine.Ref
	ctx.SetInboundHandler(func(ref *engine.Ref, from engine.Session) {
		received = append(received, ref.Clone())
	})

	s := newBareAMQPSession(ctx)

	good := message.New(wire.TypeRequest, message.Code(1), []byte("hi"), 0)
	frame, err := good.Encode(message.EncodeOptions{SenderNameFallback: "sender"})
	assert.NoError(t, err)

	deliveries := make(chan amqp.Delivery, 2)
	deliveries <- amqp.Delivery{Body: []byte("not a frame")}
	deliveries <- amqp.Delivery{Body: frame}
	close(deliveries)

	s.forward(deliveries)
	<-s.done

	time.Sleep(10 * time.Millisecond)
	assert.Len(t, received, 1)
}

func TestAMQPSessionSendAfterCloseFails(t *testing.T) {
	ctx := engine.NewContext()
	s := newBareAMQPSession(ctx)
	s.closed = 1

	err := s.Send(message.New(wire.TypeRequest, message.Code(1), nil, 0))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestAMQPSessionQueueName(t *testing.T) {
	ctx := engine.NewContext()
	s := newBareAMQPSession(ctx)
	assert.Equal(t, "ipcbus.self", s.QueueName())
}

func TestAMQPSessionEndpointNameAndID(t *testing.T) {
	ctx := engine.NewContext()
	s := newBareAMQPSession(ctx)
	assert.Equal(t, "peer", s.EndpointName())
	assert.NotEqual(t, message.SessionID(0), s.ID())
}
