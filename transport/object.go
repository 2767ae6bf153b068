package transport

import (
	"sync"

	"github.com/ipcbus/ipcbus-go/engine"
	"github.com/ipcbus/ipcbus-go/message"
)

type subscriptionKey struct {
	code   message.Code
	filter string
}

// Object owns the per-objectId broadcast subscription table: an exact-match
// mapping from (code, filter) to the set of sessions that subscribed with
// that pair. The empty filter only matches a subscription that itself
// registered the empty filter — there is no wildcarding.
type Object struct {
	name string
	id   message.ObjectID

	mu             sync.RWMutex
	subscribers    map[subscriptionKey]map[message.SessionID]engine.Session
	defaultSession engine.Session

	onFanout func(sessionCount int)
}

// SetFanoutObserver registers a callback invoked with the subscriber count
// every time Broadcast fans a message out, for telemetry.Metrics to tap.
func (o *Object) SetFanoutObserver(f func(sessionCount int)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onFanout = f
}

// NewObject creates an Object identified by id within its owning endpoint.
func NewObject(name string, id message.ObjectID) *Object {
	return &Object{
		name:        name,
		id:          id,
		subscribers: make(map[subscriptionKey]map[message.SessionID]engine.Session),
	}
}

func (o *Object) Name() string              { return o.name }
func (o *Object) ObjectID() message.ObjectID { return o.id }

// SetDefaultSession designates the session DefaultSession reports — the
// endpoint's own session when Object is used host-side without a separate
// client registry.
func (o *Object) SetDefaultSession(s engine.Session) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.defaultSession = s
}

func (o *Object) DefaultSession() (engine.Session, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.defaultSession, o.defaultSession != nil
}

// Subscribe registers session under the exact (code, filter) pair. Calling
// it again with the same pair for the same session is a no-op.
func (o *Object) Subscribe(code message.Code, filter string, session engine.Session) {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := subscriptionKey{code: code, filter: filter}
	set, ok := o.subscribers[key]
	if !ok {
		set = make(map[message.SessionID]engine.Session)
		o.subscribers[key] = set
	}
	set[session.ID()] = session
}

// Unsubscribe removes session from the (code, filter) pair. A no-op if the
// session was never subscribed there.
func (o *Object) Unsubscribe(code message.Code, filter string, sessionID message.SessionID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := subscriptionKey{code: code, filter: filter}
	set, ok := o.subscribers[key]
	if !ok {
		return
	}
	delete(set, sessionID)
	if len(set) == 0 {
		delete(o.subscribers, key)
	}
}

// UnsubscribeAll removes sessionID from every (code, filter) pair it holds
// — used when the owning session is torn down.
func (o *Object) UnsubscribeAll(sessionID message.SessionID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for key, set := range o.subscribers {
		delete(set, sessionID)
		if len(set) == 0 {
			delete(o.subscribers, key)
		}
	}
}

// Broadcast fans m out to every session subscribed under (m.Code, m.Filter).
func (o *Object) Broadcast(m *message.Message) {
	o.mu.RLock()
	set := o.subscribers[subscriptionKey{code: m.Code, filter: m.Filter}]
	targets := make([]engine.Session, 0, len(set))
	for _, s := range set {
		targets = append(targets, s)
	}
	observer := o.onFanout
	o.mu.RUnlock()

	for _, s := range targets {
		_ = s.Send(m)
	}
	if observer != nil {
		observer(len(targets))
	}
}

// BroadcastTo delivers m to session only if session holds a matching
// subscription for (m.Code, m.Filter) — the InitialResponse path.
func (o *Object) BroadcastTo(m *message.Message, session engine.Session) {
	o.mu.RLock()
	set := o.subscribers[subscriptionKey{code: m.Code, filter: m.Filter}]
	_, subscribed := set[session.ID()]
	o.mu.RUnlock()

	if subscribed {
		_ = session.Send(m)
	}
}
