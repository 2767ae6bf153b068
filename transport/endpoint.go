package transport

import (
	"sync"

	"github.com/ipcbus/ipcbus-go/engine"
	"github.com/ipcbus/ipcbus-go/message"
)

// Endpoint resolves an objectId to its Object and, for lazily-bound
// messages, names the session that represents this endpoint's peer: the
// one last passed to SetPreferredPeer. Nothing updates it automatically when
// traffic arrives on another session.
type Endpoint struct {
	id message.EndpointID

	mu            sync.RWMutex
	objects       map[message.ObjectID]engine.Object
	preferredPeer engine.Session
}

// NewEndpoint creates an Endpoint identified by id.
func NewEndpoint(id message.EndpointID) *Endpoint {
	return &Endpoint{
		id:      id,
		objects: make(map[message.ObjectID]engine.Object),
	}
}

func (e *Endpoint) ID() message.EndpointID { return e.id }

// AddObject registers obj so GetObject can resolve it by id.
func (e *Endpoint) AddObject(obj *Object) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.objects[obj.ObjectID()] = obj
}

func (e *Endpoint) GetObject(id message.ObjectID) (engine.Object, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	obj, ok := e.objects[id]
	return obj, ok
}

// SetPreferredPeer designates the session PreferredPeer resolves to, used
// when a message names this endpoint without a concrete session.
func (e *Endpoint) SetPreferredPeer(session engine.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.preferredPeer = session
}

func (e *Endpoint) PreferredPeer() (engine.Session, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.preferredPeer, e.preferredPeer != nil
}
