package engine

import "errors"

// Sentinel error kinds returned by the engine. Wrap with fmt.Errorf("...: %w", ErrX)
// at the call site so callers can still errors.Is against the kind.
var (
	// ErrInvalidRoute is returned when a message names a session or
	// endpoint the context has no record of.
	ErrInvalidRoute = errors.New("engine: invalid route")

	// ErrInvalidOp is returned when an operation is attempted from a
	// context that forbids it — chiefly, a synchronous submit issued from
	// the context worker itself.
	ErrInvalidOp = errors.New("engine: invalid operation")

	// ErrTimeout is returned to a synchronous caller whose request's timer
	// fired before a reply arrived.
	ErrTimeout = errors.New("engine: request timed out")

	// ErrAlreadyReplied is returned by dispatch when an outgoing
	// Reply/SidebandReply/Status frame is already marked FlagReplied.
	// Reply and Status themselves report an already-answered request by
	// returning false.
	ErrAlreadyReplied = errors.New("engine: message already replied")

	// ErrNoReplyExpected names the refusal to answer a request sent with
	// NoReplyExpected. No function in this package returns it: Reply and
	// Status return false, and the auto-reply hook stays silent.
	ErrNoReplyExpected = errors.New("engine: message forbids reply")
)
