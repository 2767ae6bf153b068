package engine

import (
	"fmt"
	"time"

	"github.com/ipcbus/ipcbus-go/message"
	"github.com/ipcbus/ipcbus-go/wire"
)

// dispatch is the single entry point invoked on the context worker for
// every outbound message a submit verb enqueues. It
// resolves a destination session (directly or via an endpoint's preferred
// peer), hands the frame to the session, and for requests expecting a
// reply, registers the pending-table entry.
func (c *Context) dispatch(ref *Ref, timeout time.Duration) error {
	m := ref.Message()
	switch m.Type {
	case wire.TypeRequest, wire.TypeSidebandRequest:
		return c.dispatchRequest(ref, timeout)
	case wire.TypeSubscribeRequest:
		// Subscribe, Unsubscribe and Update all travel as a Request;
		// update() never touches the subscription table.
		return c.dispatchRequest(ref, timeout)
	case wire.TypeReply, wire.TypeSidebandReply, wire.TypeStatus:
		return c.dispatchReplyLike(ref)
	case wire.TypeBroadcast:
		return c.dispatchBroadcast(ref)
	default:
		c.log().Warn("engine: dropping outbound message of unknown type", "type", m.Type)
		return nil
	}
}

func (c *Context) dispatchRequest(ref *Ref, timeout time.Duration) error {
	m := ref.Message()
	session, err := c.resolveSession(m)
	if err != nil {
		return fmt.Errorf("engine: dispatch request: %w", err)
	}
	if err := session.Send(m); err != nil {
		return fmt.Errorf("engine: dispatch request: send: %w", err)
	}
	if message.Flag(m.Flag).Has(message.FlagNoReplyExpected) {
		return nil
	}
	c.insertPending(ref.Clone(), session, timeout)
	return nil
}

func (c *Context) dispatchReplyLike(ref *Ref) error {
	m := ref.Message()
	if message.Flag(m.Flag).Has(message.FlagReplied) {
		return fmt.Errorf("engine: dispatch reply: %w", ErrAlreadyReplied)
	}
	session, err := c.resolveSession(m)
	if err != nil {
		return fmt.Errorf("engine: dispatch reply: %w", err)
	}
	if err := session.Send(m); err != nil {
		return fmt.Errorf("engine: dispatch reply: send: %w", err)
	}
	m.Flag |= message.FlagReplied
	return nil
}

func (c *Context) dispatchBroadcast(ref *Ref) error {
	m := ref.Message()
	endpoint, ok := c.endpoints[m.DestEndpoint]
	if !ok {
		return fmt.Errorf("engine: dispatch broadcast: endpoint %d: %w", m.DestEndpoint, ErrInvalidRoute)
	}
	object, ok := endpoint.GetObject(m.ObjectID)
	if !ok {
		return fmt.Errorf("engine: dispatch broadcast: object %d: %w", m.ObjectID, ErrInvalidRoute)
	}

	if message.Flag(m.Flag).Has(message.FlagEndpoint) {
		object.Broadcast(m)
		return nil
	}

	session, ok := c.sessions[m.DestSession]
	if !ok {
		return fmt.Errorf("engine: dispatch broadcast: session %d: %w", m.DestSession, ErrInvalidRoute)
	}
	m.Flag |= message.FlagInitialResponse
	object.BroadcastTo(m, session)
	return nil
}

// resolveSession implements the "either sessionId is valid (direct), or
// endpointId is valid with a flag indicating the session is to be resolved
// lazily" routing rule.
func (c *Context) resolveSession(m *message.Message) (Session, error) {
	if message.SessionID(m.DestSession).IsValid() {
		s, ok := c.sessions[m.DestSession]
		if !ok {
			return nil, fmt.Errorf("session %d: %w", m.DestSession, ErrInvalidRoute)
		}
		return s, nil
	}
	if message.Flag(m.Flag).Has(message.FlagEndpoint) {
		endpoint, ok := c.endpoints[m.DestEndpoint]
		if !ok {
			return nil, fmt.Errorf("endpoint %d: %w", m.DestEndpoint, ErrInvalidRoute)
		}
		session, ok := endpoint.PreferredPeer()
		if !ok {
			return nil, fmt.Errorf("endpoint %d has no preferred peer: %w", m.DestEndpoint, ErrInvalidRoute)
		}
		return session, nil
	}
	return nil, fmt.Errorf("message has no destination: %w", ErrInvalidRoute)
}
