package engine

import "github.com/ipcbus/ipcbus-go/message"

// Session is the minimal surface the engine needs from a transport-level
// connection: enqueue a frame, and forcibly terminate a pending request with
// a synthesized status (used by the timeout path).
type Session interface {
	ID() message.SessionID
	EndpointName() string
	Send(m *message.Message) error
	Terminate(serial message.Serial, code message.StatusCode, description string)
}

// Endpoint resolves a lazily-bound message (one that named an endpoint
// rather than a concrete session) to a concrete Session, and hands back the
// Object responsible for a given objectId.
type Endpoint interface {
	ID() message.EndpointID
	PreferredPeer() (Session, bool)
	GetObject(objectID message.ObjectID) (Object, bool)
}

// Object owns the per-objectId broadcast subscription table.
type Object interface {
	Name() string
	ObjectID() message.ObjectID
	DefaultSession() (Session, bool)
	// Broadcast fans m out to every session subscribed to m's code/filter.
	Broadcast(m *message.Message)
	// BroadcastTo delivers m only to session, provided session holds a
	// matching subscription — the InitialResponse path.
	BroadcastTo(m *message.Message, session Session)
}

// Logger is a small leveled interface so the engine never imports
// telemetry directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	CheckLogEnabled(m *message.Message, endpointName string) bool
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func (noopLogger) CheckLogEnabled(*message.Message, string) bool { return false }
