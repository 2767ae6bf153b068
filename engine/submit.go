package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ipcbus/ipcbus-go/message"
	"github.com/ipcbus/ipcbus-go/wire"
)

// Invoke sends m as a Request and blocks until a reply/status arrives, the
// timeout elapses, or ctx is cancelled. Calling it with a ctx derived from
// the context worker's own (see IsSelf) is rejected with ErrInvalidOp — it
// would deadlock the single-threaded worker.
func (c *Context) Invoke(ctx context.Context, m *message.Message, timeout time.Duration) (*message.Message, error) {
	return c.invoke(ctx, m, timeout, wire.TypeRequest)
}

// InvokeSideband is Invoke for the sideband control-plane type, bypassing
// application-level observers on the remote side.
func (c *Context) InvokeSideband(ctx context.Context, m *message.Message, timeout time.Duration) (*message.Message, error) {
	return c.invoke(ctx, m, timeout, wire.TypeSidebandRequest)
}

// Subscribe invokes a SubscribeRequest carrying the reserved Subscribe
// code, blocking for the initial reply exactly like Invoke.
func (c *Context) Subscribe(ctx context.Context, m *message.Message, timeout time.Duration) (*message.Message, error) {
	m.Code = message.CodeSubscribe
	return c.invoke(ctx, m, timeout, wire.TypeSubscribeRequest)
}

// Update invokes a SubscribeRequest carrying the reserved Update code. This
// never touches the subscription table — it only asks the remote object to
// trigger a fresh broadcast.
func (c *Context) Update(ctx context.Context, m *message.Message, timeout time.Duration) (*message.Message, error) {
	m.Code = message.CodeUpdate
	return c.invoke(ctx, m, timeout, wire.TypeSubscribeRequest)
}

func (c *Context) invoke(ctx context.Context, m *message.Message, timeout time.Duration, typ wire.MessageType) (*message.Message, error) {
	if c.IsSelf(ctx) {
		return nil, fmt.Errorf("engine: invoke: %w", ErrInvalidOp)
	}
	m.Type = typ
	m.Serial = c.nextSerial()
	m.Flag |= message.FlagSyncReply | message.FlagAutoReply

	ref := NewRef(m, nil)
	waiters := ref.arm()

	enqueued := make(chan error, 1)
	c.enqueue(func() {
		enqueued <- c.dispatch(ref, timeout)
	})

	select {
	case err := <-enqueued:
		if err != nil {
			return nil, err
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-waiters:
		return res.reply, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Send enqueues m as a fire-and-forget Request: no reply is expected and no
// pending-table entry is created. Returns whether the job was accepted by
// the worker queue.
func (c *Context) Send(m *message.Message) bool {
	return c.sendNoReply(m, wire.TypeRequest)
}

// SendSideband is Send for the sideband type.
func (c *Context) SendSideband(m *message.Message) bool {
	return c.sendNoReply(m, wire.TypeSidebandRequest)
}

func (c *Context) sendNoReply(m *message.Message, typ wire.MessageType) bool {
	m.Type = typ
	m.Serial = c.nextSerial()
	m.Flag |= message.FlagNoReplyExpected
	ref := NewRef(m, nil)
	return c.enqueueBestEffort(func() {
		if err := c.dispatch(ref, 0); err != nil {
			c.reportAsyncError(m, err)
		}
	})
}

// Unsubscribe enqueues a SubscribeRequest carrying the reserved Unsubscribe
// code as a fire-and-forget send.
func (c *Context) Unsubscribe(m *message.Message) bool {
	m.Code = message.CodeUnsubscribe
	return c.sendNoReply(m, wire.TypeSubscribeRequest)
}

// Reply attaches payload to req as a Reply frame and enqueues it. Refuses
// if req forbids a reply or was already answered.
func (c *Context) Reply(req *message.Message, payload []byte) bool {
	return c.reply(req, wire.TypeReply, payload)
}

// ReplySideband is Reply for the sideband type.
func (c *Context) ReplySideband(req *message.Message, payload []byte) bool {
	return c.reply(req, wire.TypeSidebandReply, payload)
}

func (c *Context) reply(req *message.Message, typ wire.MessageType, payload []byte) bool {
	flag := message.Flag(req.Flag)
	if flag.Has(message.FlagNoReplyExpected) || flag.Has(message.FlagReplied) {
		return false
	}
	out := message.New(typ, req.Code, payload, 0)
	out.Serial = req.Serial
	out.ObjectID = req.ObjectID
	out.DestSession = req.SenderSession
	ref := NewRef(out, nil)
	accepted := c.enqueueBestEffort(func() {
		if err := c.dispatch(ref, 0); err != nil {
			c.reportAsyncError(out, err)
		}
	})
	if accepted {
		req.Flag |= message.FlagReplied
	}
	return accepted
}

// Status constructs a Status frame for req (error if code falls outside
// [AUTO_REPLY_OK, OK], informational otherwise) and dispatches it as a
// reply.
func (c *Context) Status(req *message.Message, code message.StatusCode, description string) bool {
	flag := message.Flag(req.Flag)
	if flag.Has(message.FlagNoReplyExpected) || flag.Has(message.FlagReplied) {
		return false
	}
	out := message.New(wire.TypeStatus, message.Code(0), nil, 0)
	out.Serial = req.Serial
	out.ObjectID = req.ObjectID
	out.DestSession = req.SenderSession
	if err := out.SetErrorMsg(message.ErrorInfo{Code: code, Description: description}); err != nil {
		c.log().Error("engine: status encode failed", "error", err)
		return false
	}
	ref := NewRef(out, nil)
	accepted := c.enqueueBestEffort(func() {
		if err := c.dispatch(ref, 0); err != nil {
			c.reportAsyncError(out, err)
		}
	})
	if accepted {
		req.Flag |= message.FlagReplied
	}
	return accepted
}

// Broadcast constructs a broadcast derived from from (sharing its serial
// and debug flags) and dispatches it endpoint-wide.
func (c *Context) Broadcast(from *message.Message, code message.Code, filter string, payload []byte) bool {
	b := message.NewBroadcastFrom(from, code, payload, filter)
	b.Serial = from.Serial
	b.DestEndpoint = from.DestEndpoint
	b.Flag |= message.Flag(from.Flag) & message.FlagDebug
	b.Flag |= message.FlagEndpoint
	ref := NewRef(b, nil)
	return c.enqueueBestEffort(func() {
		if err := c.dispatch(ref, 0); err != nil {
			c.reportAsyncError(b, err)
		}
	})
}

// BroadcastInitialResponse delivers a broadcast to a single session rather
// than fanning out endpoint-wide, used to answer a fresh subscribe() with
// the current value instead of waiting for the next spontaneous broadcast.
func (c *Context) BroadcastInitialResponse(from *message.Message, code message.Code, filter string, payload []byte, session Session) bool {
	b := message.NewBroadcastFrom(from, code, payload, filter)
	b.Serial = from.Serial
	b.DestEndpoint = from.DestEndpoint
	b.DestSession = session.ID()
	ref := NewRef(b, nil)
	return c.enqueueBestEffort(func() {
		if err := c.dispatch(ref, 0); err != nil {
			c.reportAsyncError(b, err)
		}
	})
}
