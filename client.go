package ipcbus

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ipcbus/ipcbus-go/engine"
	"github.com/ipcbus/ipcbus-go/message"
	"github.com/ipcbus/ipcbus-go/telemetry"
	"github.com/ipcbus/ipcbus-go/transport"
)

// Client is one endpoint on the bus: an engine.Context running its own
// worker goroutine, the Endpoint whose objects it hosts, and whatever
// telemetry was configured. It embeds *engine.Context so Invoke, Send,
// Subscribe, Update, Reply, Status and Broadcast are called directly on a
// *Client.
type Client struct {
	*engine.Context

	name     string
	endpoint *transport.Endpoint
	logger   *telemetry.Logger
	metrics  *telemetry.Metrics

	cancel  context.CancelFunc
	closers []func() error
}

// NewClient builds a Client with its own running worker goroutine and an
// empty Endpoint identified by id. It has no transport session yet —
// connect it with LinkClients for an in-process peer, or use DialAMQPClient
// instead to build a Client already attached to an AMQPSession.
func NewClient(name string, id message.EndpointID, opts ...ClientOption) *Client {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := telemetry.NewLogger(cfg.slogger)
	engineOpts := []engine.Option{engine.WithLogger(logger)}
	if cfg.onError != nil {
		engineOpts = append(engineOpts, engine.WithErrorHandler(cfg.onError))
	}

	ctx := engine.NewContext(engineOpts...)
	runCtx, cancel := context.WithCancel(context.Background())
	go ctx.Run(runCtx)

	endpoint := transport.NewEndpoint(id)
	ctx.RegisterEndpoint(endpoint)

	c := &Client{
		Context:  ctx,
		name:     name,
		endpoint: endpoint,
		logger:   logger,
		metrics:  cfg.metrics,
		cancel:   cancel,
	}
	return c
}

// DialAMQPClient builds a Client backed by a RabbitMQ connection: it dials
// conn's broker, declares this client's own exclusive reply queue, and
// starts forwarding deliveries into the new Context. peerQueue names the
// queue this client's outbound frames are published to; callers who don't
// know it yet can dial with any placeholder and call RegisterSession again
// once the peer's queue name has been exchanged.
func DialAMQPClient(amqpURL, name string, id message.EndpointID, peerQueue string, opts ...ClientOption) (*Client, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("ipcbus: dial amqp client: %w", err)
	}

	c := NewClient(name, id, opts...)
	session, err := transport.DialAMQPSession(conn, name, peerQueue, c.Context)
	if err != nil {
		_ = conn.Close()
		c.cancel()
		return nil, fmt.Errorf("ipcbus: dial amqp client: %w", err)
	}

	c.closers = append(c.closers, session.Close, conn.Close)
	c.RegisterSession(session)
	c.endpoint.SetPreferredPeer(session)
	return c, nil
}

// LinkClients wires a and b together in-process via transport.NewMemoryLink
// and registers each side's session with the other's Context and preferred
// peer, so Invoke/Send issued on either side with FlagEndpoint set,
// DestEndpoint naming that side's own endpoint and no DestSession resolves
// to its counterpart.
func LinkClients(a, b *Client) {
	sessionA, sessionB := transport.NewMemoryLink(a.name, a.Context, b.name, b.Context)
	a.RegisterSession(sessionB)
	b.RegisterSession(sessionA)
	a.endpoint.SetPreferredPeer(sessionB)
	b.endpoint.SetPreferredPeer(sessionA)
}

// Endpoint returns the Endpoint this client hosts, for registering Objects.
func (c *Client) Endpoint() *transport.Endpoint { return c.endpoint }

// RegisterObject adds obj to this client's endpoint and, if metrics were
// configured, wires its broadcast fan-out observer.
func (c *Client) RegisterObject(obj *transport.Object) {
	c.endpoint.AddObject(obj)
	if c.metrics != nil {
		obj.SetFanoutObserver(c.metrics.ObserveBroadcastFanout)
	}
}

// SetRequestHandler registers the inbound handler for frames that are not
// a pending-table reply match (Request, SidebandRequest, SubscribeRequest,
// Broadcast arriving from a peer).
func (c *Client) SetRequestHandler(h func(ref *engine.Ref, from engine.Session)) {
	c.SetInboundHandler(h)
}

// Close stops this client's worker loop and releases every resource opened
// on its behalf (AMQP channel/connection if DialAMQPClient was used).
func (c *Client) Close() error {
	c.cancel()
	var firstErr error
	for _, closer := range c.closers {
		if err := closer(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
