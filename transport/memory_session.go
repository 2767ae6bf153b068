package transport

import (
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
	"github.com/ipcbus/ipcbus-go/engine"
	"github.com/ipcbus/ipcbus-go/message"
)

// MemorySession delivers frames directly into its own side's engine.Context
// HandleIncoming, skipping wire encode/decode entirely, and is registered
// into the OTHER side's session registry — exactly mirroring how a real
// transport session is a handle the local dispatcher uses to reach a
// specific remote party. It is the Session implementation used for
// same-process bus topologies and for every scenario test that does not
// need to exercise the frame codec.
type MemorySession struct {
	id           message.SessionID
	endpointName string

	// ctx is this session's own side — calling Send delivers into ctx.
	ctx *engine.Context
	// from is the sibling MemorySession representing the other party,
	// passed to ctx.HandleIncoming as the sender.
	from engine.Session

	mu          sync.Mutex
	closed      bool
	onTerminate func(serial message.Serial, code message.StatusCode, description string)
}

// MemorySessionOption configures a MemorySession.
type MemorySessionOption func(*MemorySession)

// WithTerminateHandler registers a callback invoked when Terminate is
// called on this session — the hook a host can use to log or surface a
// cancelled-by-timeout notification.
func WithTerminateHandler(h func(serial message.Serial, code message.StatusCode, description string)) MemorySessionOption {
	return func(s *MemorySession) { s.onTerminate = h }
}

// nextMemorySessionID assigns a session id by hashing a fresh random uuid,
// so ids are unique with high probability across repeated NewMemoryLink
// calls without a shared counter leaking between unrelated links.
func nextMemorySessionID() message.SessionID {
	h := fnv.New32a()
	_, _ = h.Write([]byte(uuid.NewString()))
	id := h.Sum32()
	if id == message.InvalidID {
		id++
	}
	return message.SessionID(id)
}

// NewMemoryLink wires two endpoints together in-process. a represents
// nameA/ctxA and b represents nameB/ctxB: calling a.Send delivers into ctxA
// as having arrived from b, and calling b.Send delivers into ctxB as having
// arrived from a. The caller registers each session into the OTHER party's
// registry — ctxB.RegisterSession(a) and ctxA.RegisterSession(b) — exactly
// as a real transport's session handle is a local stand-in for a remote
// peer. ctxA and ctxB must already be running (Run called).
func NewMemoryLink(nameA string, ctxA *engine.Context, nameB string, ctxB *engine.Context, opts ...MemorySessionOption) (a, b *MemorySession) {
	a = &MemorySession{id: nextMemorySessionID(), endpointName: nameA, ctx: ctxA}
	b = &MemorySession{id: nextMemorySessionID(), endpointName: nameB, ctx: ctxB}
	a.from = b
	b.from = a

	for _, opt := range opts {
		opt(a)
		opt(b)
	}
	return a, b
}

func (s *MemorySession) ID() message.SessionID { return s.id }
func (s *MemorySession) EndpointName() string  { return s.endpointName }

// Send delivers m into this session's own side as having arrived from the
// sibling representing the other party.
func (s *MemorySession) Send(m *message.Message) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	m.SenderSession = s.from.ID()
	s.ctx.HandleIncoming(m, s.from)
	return nil
}

func (s *MemorySession) Terminate(serial message.Serial, code message.StatusCode, description string) {
	if s.onTerminate != nil {
		s.onTerminate(serial, code, description)
	}
}

// Close marks the session closed; further Send calls fail with ErrClosed.
func (s *MemorySession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
