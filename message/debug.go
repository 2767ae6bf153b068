package message

import "github.com/ipcbus/ipcbus-go/wire"

// DebugStamps is the optional timing overlay: four nanosecond timestamps
// captured across the request/reply edges.
type DebugStamps struct {
	Send    uint64
	Arrive  uint64
	Reply   uint64
	Receive uint64
}

// EnableDebug turns on the timing overlay for this message.
func (m *Message) EnableDebug() {
	if m.Debug == nil {
		m.Debug = &DebugStamps{}
	}
	m.Flag |= FlagDebug
}

// encodeDebugInfo fills in the outgoing debug fields of h according to the
// message's direction.
func (m *Message) encodeDebugInfo(h *wire.Header, now func() uint64) {
	if m.Debug == nil {
		return
	}
	switch m.Type {
	case wire.TypeReply, wire.TypeStatus:
		h.SendOrArriveTimeNs = m.Debug.Arrive
		m.Debug.Reply = now()
		h.ReplyTimeNs = m.Debug.Reply
	case wire.TypeRequest, wire.TypeSubscribeRequest, wire.TypeBroadcast:
		m.Debug.Send = now()
		h.SendOrArriveTimeNs = m.Debug.Send
	}
}

// decodeDebugInfo is the receive-side counterpart, called when a frame with
// FlagDebug set is parsed into a Message.
func (m *Message) decodeDebugInfo(h wire.Header, now func() uint64) {
	if !Flag(h.Flag).Has(FlagDebug) {
		return
	}
	if m.Debug == nil {
		m.Debug = &DebugStamps{}
	}
	switch m.Type {
	case wire.TypeReply, wire.TypeStatus:
		if h.HasSendOrArriveTime() {
			m.Debug.Arrive = h.SendOrArriveTimeNs
		}
		if h.HasReplyTime() {
			m.Debug.Reply = h.ReplyTimeNs
		}
		m.Debug.Receive = now()
	case wire.TypeRequest, wire.TypeSubscribeRequest, wire.TypeBroadcast:
		m.Debug.Arrive = now()
		if h.HasSendOrArriveTime() {
			m.Debug.Send = h.SendOrArriveTimeNs
		}
	}
}

// Durations holds the four values ParseTimestamp derives from DebugStamps.
type Durations struct {
	ClientToServer uint64
	ServerToReply  uint64
	ReplyToClient  uint64
	Total          uint64
}

// ParseTimestamp computes the four derived intervals, each zero if either
// endpoint of the interval was never stamped.
func ParseTimestamp(d DebugStamps) Durations {
	var out Durations
	if d.Send != 0 && d.Arrive != 0 && d.Arrive >= d.Send {
		out.ClientToServer = d.Arrive - d.Send
	}
	if d.Arrive != 0 && d.Reply != 0 && d.Reply >= d.Arrive {
		out.ServerToReply = d.Reply - d.Arrive
	}
	if d.Reply != 0 && d.Receive != 0 && d.Receive >= d.Reply {
		out.ReplyToClient = d.Receive - d.Reply
	}
	if d.Send != 0 && d.Receive != 0 && d.Receive >= d.Send {
		out.Total = d.Receive - d.Send
	}
	return out
}
