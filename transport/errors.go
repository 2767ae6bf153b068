package transport

import "errors"

// ErrTransport wraps a failure in the underlying delivery mechanism: a
// failed AMQP publish, or a send rejected by AMQPSession's circuit breaker.
var ErrTransport = errors.New("transport: delivery failed")

// ErrClosed is returned by operations attempted after Close.
var ErrClosed = errors.New("transport: session closed")

// ErrUnknownSession names a session id that was never registered. No
// function in this package returns it.
var ErrUnknownSession = errors.New("transport: unknown session")
