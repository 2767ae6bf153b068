package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ipcbus/ipcbus-go/engine"
	"github.com/ipcbus/ipcbus-go/message"
)

// AMQPSession is a Session backed by a RabbitMQ queue pair: frames this
// session sends are published to the peer's queue; frames addressed to
// this session arrive on a queue declared for its own exclusive use and
// are handed to ctx.HandleIncoming as they're consumed.
type AMQPSession struct {
	id           message.SessionID
	endpointName string

	ch        *amqp.Channel
	sendQueue string
	recvQueue string

	ctx    *engine.Context
	logger *slog.Logger
	now    func() uint64

	breaker *sendBreaker

	closed int32
	done   chan struct{}
}

// AMQPSessionOption configures an AMQPSession.
type AMQPSessionOption func(*AMQPSession)

// WithAMQPLogger overrides the default slog.Default() logger.
func WithAMQPLogger(logger *slog.Logger) AMQPSessionOption {
	return func(s *AMQPSession) { s.logger = logger }
}

// WithAMQPClock overrides the clock used to stamp outgoing debug timing,
// primarily for tests.
func WithAMQPClock(now func() uint64) AMQPSessionOption {
	return func(s *AMQPSession) { s.now = now }
}

// DialAMQPSession opens a channel on conn, declares an exclusive,
// auto-deleting queue named after a fresh uuid for this session's own
// inbound frames, and starts forwarding deliveries into ctx.HandleIncoming.
// sendQueue names the peer's inbound queue (already declared by the peer,
// or about to be — RabbitMQ accepts publishes to a not-yet-declared queue
// name so long as it exists by the time delivery is attempted).
func DialAMQPSession(conn *amqp.Connection, endpointName, sendQueue string, ctx *engine.Context, opts ...AMQPSessionOption) (*AMQPSession, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("transport: amqp session: open channel: %w", err)
	}

	recvQueue := "ipcbus." + uuid.NewString()
	q, err := ch.QueueDeclare(recvQueue, false, true, true, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("transport: amqp session: declare queue: %w", err)
	}

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("transport: amqp session: consume: %w", err)
	}

	s := &AMQPSession{
		id:           nextMemorySessionID(),
		endpointName: endpointName,
		ch:           ch,
		sendQueue:    sendQueue,
		recvQueue:    q.Name,
		ctx:          ctx,
		logger:       slog.Default(),
		breaker:      newSendBreaker(5, 30*time.Second),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.forward(deliveries)
	return s, nil
}

// QueueName returns the queue this session's peer should publish to in
// order to reach it — the value to hand a remote DialAMQPSession's
// sendQueue argument.
func (s *AMQPSession) QueueName() string { return s.recvQueue }

func (s *AMQPSession) ID() message.SessionID { return s.id }
func (s *AMQPSession) EndpointName() string  { return s.endpointName }

func (s *AMQPSession) forward(deliveries <-chan amqp.Delivery) {
	defer close(s.done)
	for delivery := range deliveries {
		m, err := message.FromWire(delivery.Body, s.id, s.now)
		if err != nil {
			s.logger.Error("transport: amqp session: decode frame failed", "error", err, "queue", s.recvQueue)
			continue
		}
		s.ctx.HandleIncoming(m, s)
	}
}

func (s *AMQPSession) Send(m *message.Message) error {
	if atomic.LoadInt32(&s.closed) != 0 {
		return ErrClosed
	}
	if err := s.breaker.Allow(); err != nil {
		return err
	}

	frame, err := m.Encode(message.EncodeOptions{SenderNameFallback: s.endpointName, Now: s.now})
	if err != nil {
		return fmt.Errorf("transport: amqp session: encode: %w", err)
	}
	err = s.ch.PublishWithContext(context.Background(), "", s.sendQueue, false, false, amqp.Publishing{
		ContentType: "application/octet-stream",
		Body:        frame,
	})
	if err != nil {
		err = fmt.Errorf("%w: publish to %s: %v", ErrTransport, s.sendQueue, err)
	}
	s.breaker.Record(err)
	return err
}

func (s *AMQPSession) Terminate(serial message.Serial, code message.StatusCode, description string) {
	s.logger.Warn("transport: amqp session: pending request terminated",
		"serial", serial, "code", code, "description", description, "queue", s.recvQueue)
}

// Close cancels the consumer and closes the underlying channel.
func (s *AMQPSession) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	return s.ch.Close()
}
