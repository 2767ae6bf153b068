package engine

import (
	"time"

	"github.com/ipcbus/ipcbus-go/message"
)

// pendingEntry is the value side of the serial -> (messageRef, timer)
// mapping. Only the context worker ever reads or writes one of these, so no
// field needs synchronization of its own.
type pendingEntry struct {
	ref     *Ref
	tm      *timer
	session Session
}

// insertPending registers ref as awaiting a reply for its own serial number.
// When timeout is positive, a timer is armed that removes the entry and
// terminates the request with a timeout status if no reply arrives first.
func (c *Context) insertPending(ref *Ref, session Session, timeout time.Duration) {
	serial := ref.Message().Serial
	entry := &pendingEntry{ref: ref, session: session}
	entry.tm = newTimer(timeout, func() {
		c.enqueue(func() { c.expirePending(serial) })
	})
	c.pending[serial] = entry
}

// removePending detaches and returns the entry for serial, cancelling its
// timer atomically with removal. The matching-reply removal case calls this
// from handleIncoming.
func (c *Context) removePending(serial message.Serial) (*pendingEntry, bool) {
	e, ok := c.pending[serial]
	if !ok {
		return nil, false
	}
	e.tm.cancel()
	delete(c.pending, serial)
	return e, true
}

// expirePending is the timer-fired removal case: terminate the session-side
// message with the timeout status and complete the waiting caller, if any,
// with ErrTimeout.
func (c *Context) expirePending(serial message.Serial) {
	e, ok := c.removePending(serial)
	if !ok {
		return
	}
	m := e.ref.Message()
	m.Flag |= message.FlagReplied
	if e.session != nil {
		e.session.Terminate(serial, message.StatusTimeout, message.TimeoutDescription)
	}
	e.ref.complete(nil, ErrTimeout)
	e.ref.Drop()
}

// terminatePendingForSession handles the remaining removal case: the
// owning session was torn down.
func (c *Context) terminatePendingForSession(id message.SessionID) {
	for serial, e := range c.pending {
		if e.session == nil || e.session.ID() != id {
			continue
		}
		e.tm.cancel()
		delete(c.pending, serial)
		e.ref.complete(nil, ErrInvalidRoute)
		e.ref.Drop()
	}
}

// PendingCount reports the current depth of the pending table. Exposed for
// metrics and tests; must be read from the worker (e.g. from an enqueued
// job) to observe a consistent value.
func (c *Context) PendingCount() int { return len(c.pending) }
