package engine

import (
	"sync/atomic"

	"github.com/ipcbus/ipcbus-go/message"
)

// Ref is a refcounted handle around a Message, modeling the shared-ownership
// semantics a job reference needs when a handler wants to retain it past its
// own return. Cloning a Ref hands out a new handle sharing the same
// underlying count; dropping the last outstanding handle invokes the
// auto-reply hook exactly once.
type Ref struct {
	msg    *message.Message
	count  *int32
	onDrop func(*message.Message)

	// AutoReplyCode/AutoReplyDescription are initialized by NewRef
	// (AutoReplyCode to StatusAutoReplyOK) but Drop does not read them: the
	// status emitted on the last drop carries the code and description the
	// onDrop hook was built with (see autoReplyOnDrop).
	AutoReplyCode        message.StatusCode
	AutoReplyDescription string

	waiters chan syncResult
}

// syncResult is delivered to a blocked Invoke caller once a reply, status,
// or terminal error is available for the request's serial.
type syncResult struct {
	reply *message.Message
	err   error
}

// arm prepares r to receive exactly one completion and returns the channel
// a synchronous caller should select on.
func (r *Ref) arm() <-chan syncResult {
	r.waiters = make(chan syncResult, 1)
	return r.waiters
}

// complete delivers the single completion this Ref will ever receive. A
// no-op if arm was never called (e.g. a fire-and-forget send).
func (r *Ref) complete(reply *message.Message, err error) {
	if r.waiters == nil {
		return
	}
	select {
	case r.waiters <- syncResult{reply: reply, err: err}:
	default:
	}
}

// NewRef wraps m in a fresh Ref with an initial strong count of one.
// onDrop, if non-nil, runs exactly once, when the strong count reaches zero.
func NewRef(m *message.Message, onDrop func(*message.Message)) *Ref {
	count := int32(1)
	return &Ref{
		msg:           m,
		count:         &count,
		onDrop:        onDrop,
		AutoReplyCode: message.StatusAutoReplyOK,
	}
}

// Clone hands out another strong reference to the same Message.
func (r *Ref) Clone() *Ref {
	atomic.AddInt32(r.count, 1)
	clone := *r
	return &clone
}

// Message returns the underlying Message. Valid until Drop is called on the
// last outstanding reference.
func (r *Ref) Message() *message.Message { return r.msg }

// Drop releases this handle. When it was the last outstanding handle, the
// auto-reply hook fires (if armed) and the message's buffer is released.
func (r *Ref) Drop() {
	if atomic.AddInt32(r.count, -1) != 0 {
		return
	}
	if r.onDrop != nil {
		r.onDrop(r.msg)
	}
	r.msg.ReleaseBuffer()
}

// autoReplyOnDrop is the onDrop hook receive.go attaches to inbound Refs:
// exactly one Status emitted on drop, only when armed and still unanswered.
func autoReplyOnDrop(c *Context, session Session, code message.StatusCode, description string) func(*message.Message) {
	return func(m *message.Message) {
		flag := message.Flag(m.Flag)
		if !flag.Has(message.FlagAutoReply) || flag.Has(message.FlagReplied) || flag.Has(message.FlagNoReplyExpected) {
			return
		}
		status := message.New(0, message.Code(0), nil, 0)
		status.Serial = m.Serial
		status.ObjectID = m.ObjectID
		if err := status.SetErrorMsg(message.ErrorInfo{Code: code, Description: description}); err != nil {
			c.log().Error("engine: auto-reply encode failed", "error", err)
			return
		}
		m.Flag |= message.FlagReplied
		if session != nil {
			if err := session.Send(status); err != nil {
				c.log().Warn("engine: auto-reply send failed", "error", err)
			}
		}
	}
}
