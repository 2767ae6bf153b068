package message

import "github.com/ipcbus/ipcbus-go/wire"

// NewBroadcastFrom builds a Broadcast message derived from a subscribe-side
// request (req), carrying payload as its body and filter as the selector.
// When req was an Update request, FlagManualUpdate propagates onto the new
// broadcast, marking it as a triggered update rather than a spontaneous
// broadcast. The flag is local-only and the engine's dispatch does not read it.
func NewBroadcastFrom(req *Message, code Code, payload []byte, filter string) *Message {
	m := New(wire.TypeBroadcast, code, payload, 0)
	m.Filter = filter
	m.ObjectID = req.ObjectID
	if req.IsUpdate() {
		m.Flag |= FlagManualUpdate
	}
	return m
}
