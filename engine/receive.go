package engine

import (
	"github.com/ipcbus/ipcbus-go/message"
	"github.com/ipcbus/ipcbus-go/wire"
)

// HandleIncoming is the inbound counterpart of dispatch: a Session calls
// this for every frame it receives. Reply/SidebandReply/Status frames are
// matched against the pending table by serial and complete the waiting
// caller; everything else reaches the registered inbound handler, which is
// the seam where application request handling attaches.
func (c *Context) HandleIncoming(m *message.Message, from Session) {
	c.enqueue(func() { c.handleIncoming(m, from) })
}

func (c *Context) handleIncoming(m *message.Message, from Session) {
	switch m.Type {
	case wire.TypeReply, wire.TypeSidebandReply, wire.TypeStatus:
		entry, ok := c.removePending(m.Serial)
		if !ok {
			c.log().Warn("engine: reply for unknown serial dropped", "serial", m.Serial)
			return
		}
		entry.ref.complete(m, nil)
		entry.ref.Drop()
	default:
		if m.Type == wire.TypeUnknown || m.Type.Name() == "" {
			c.log().Warn("engine: dropping inbound message of unknown type", "type", m.Type)
			return
		}
		if c.inbound == nil {
			c.log().Debug("engine: no inbound handler registered, dropping", "type", m.Type)
			return
		}
		// Requests handed to application code default to auto-reply
		// armed, so a handler that forgets to reply still produces a
		// terminal status for the caller.
		if m.Type == wire.TypeRequest || m.Type == wire.TypeSidebandRequest {
			m.Flag |= message.FlagAutoReply
		}
		ref := NewRef(m, autoReplyOnDrop(c, from, message.StatusAutoReplyOK, ""))
		c.inbound(ref, from)
		ref.Drop()
	}
}
