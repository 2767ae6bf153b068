// Application goroutines talk to the worker only through the job queue;
// nothing outside this package ever touches the pending table or the
// endpoint/session registries directly.
package engine

import (
	"context"
	"sync/atomic"

	"github.com/ipcbus/ipcbus-go/message"
)

type ctxSelfKey struct{}

// Context is the context worker. Exactly one goroutine should call Run; all
// dispatch state (pending table, endpoint/session registries) is touched
// only from inside jobs that goroutine executes, so none of it needs a
// lock.
type Context struct {
	jobs chan func()

	logger  Logger
	inbound func(*Ref, Session)
	onError func(*message.Message, error)

	serial uint32

	pending   map[message.Serial]*pendingEntry
	endpoints map[message.EndpointID]Endpoint
	sessions  map[message.SessionID]Session

	selfCtx context.Context
}

// Option configures a new Context.
type Option func(*Context)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(c *Context) { c.logger = l }
}

// WithErrorHandler registers the async error callback the dispatcher's
// Request/Broadcast/etc. arms invoke on failure.
func WithErrorHandler(h func(*message.Message, error)) Option {
	return func(c *Context) { c.onError = h }
}

// NewContext allocates a Context. Call Run to start processing jobs before
// submitting work through Invoke/Send/Reply/etc.
func NewContext(opts ...Option) *Context {
	c := &Context{
		jobs:      make(chan func(), 256),
		logger:    noopLogger{},
		pending:   make(map[message.Serial]*pendingEntry),
		endpoints: make(map[message.EndpointID]Endpoint),
		sessions:  make(map[message.SessionID]Session),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run drives the worker loop until ctx is cancelled. Every job enqueued via
// Invoke/Send/Reply/etc. (and every reply arriving through HandleIncoming)
// executes on this goroutine, one at a time.
func (c *Context) Run(ctx context.Context) {
	c.selfCtx = context.WithValue(ctx, ctxSelfKey{}, c)
	for {
		select {
		case fn := <-c.jobs:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// IsSelf reports whether ctx was derived from the context this worker is
// running under — i.e. whether the caller is, transitively, running on the
// context worker's own goroutine. A synchronous Invoke issued with such a
// ctx would deadlock the worker and is rejected with ErrInvalidOp instead.
func (c *Context) IsSelf(ctx context.Context) bool {
	v, _ := ctx.Value(ctxSelfKey{}).(*Context)
	return v == c
}

func (c *Context) log() Logger { return c.logger }

func (c *Context) nextSerial() message.Serial {
	return message.Serial(atomic.AddUint32(&c.serial, 1))
}

func (c *Context) reportAsyncError(m *message.Message, err error) {
	c.log().Warn("engine: async dispatch failed", "type", m.Type, "serial", m.Serial, "error", err)
	if c.onError != nil {
		c.onError(m, err)
	}
}

// enqueue schedules fn to run on the worker, blocking the caller until
// there is room in the job queue.
func (c *Context) enqueue(fn func()) {
	c.jobs <- fn
}

// enqueueBestEffort is the non-blocking enqueue variant: it drops fn
// instead of blocking the caller when the queue is full, returning whether
// it was accepted.
func (c *Context) enqueueBestEffort(fn func()) bool {
	select {
	case c.jobs <- fn:
		return true
	default:
		return false
	}
}

// RegisterSession makes s resolvable by SessionID for routing. Safe to call
// before or after Run starts.
func (c *Context) RegisterSession(s Session) {
	c.enqueue(func() { c.sessions[s.ID()] = s })
}

// UnregisterSession removes s and terminates every pending request routed
// through it — the "owning session is torn down" removal case.
func (c *Context) UnregisterSession(id message.SessionID) {
	c.enqueue(func() {
		delete(c.sessions, id)
		c.terminatePendingForSession(id)
	})
}

// RegisterEndpoint makes e resolvable by EndpointID for lazily-bound
// destinations and broadcast fan-out.
func (c *Context) RegisterEndpoint(e Endpoint) {
	c.enqueue(func() { c.endpoints[e.ID()] = e })
}

// UnregisterEndpoint removes e from the registry.
func (c *Context) UnregisterEndpoint(id message.EndpointID) {
	c.enqueue(func() { delete(c.endpoints, id) })
}

// SetInboundHandler registers the callback invoked for inbound frames that
// are not a reply/status match against the pending table (i.e. Request,
// SidebandRequest, Broadcast, SubscribeRequest arriving from a peer). This
// is the seam where application routing attaches.
func (c *Context) SetInboundHandler(h func(*Ref, Session)) {
	c.enqueue(func() { c.inbound = h })
}
