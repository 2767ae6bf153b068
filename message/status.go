package message

// Code is the application-defined 32-bit verb carried by a message.
type Code uint32

// Reserved codes, meaningful only when Type == SubscribeRequest.
const (
	CodeSubscribe   Code = 0xFFFFFFFF - 1
	CodeUnsubscribe Code = 0xFFFFFFFF - 2
	CodeUpdate      Code = 0xFFFFFFFF - 3
)

// StatusCode is the result code carried by a Status frame.
type StatusCode int32

// Status codes consumed by SetErrorMsg and the pending table.
const (
	StatusAutoReplyOK StatusCode = -2
	StatusOK          StatusCode = 0
	StatusTimeout     StatusCode = -40
	StatusInvalidID   StatusCode = -41
)

// IsInformational reports whether code falls inside [AUTO_REPLY_OK, OK] —
// the range setErrorMsg treats as success rather than setting FlagError.
func (c StatusCode) IsInformational() bool {
	return c >= StatusAutoReplyOK && c <= StatusOK
}

// TimeoutDescription is the literal text attached to a Status frame
// synthesized when a pending request's reply timer fires.
const TimeoutDescription = "Message is destroyed due to timeout."

// ErrorInfo is the payload of a Status message: the code plus an optional
// human-readable description.
type ErrorInfo struct {
	Code        StatusCode
	Description string
}
