package message

// Serial is the per-endpoint monotonically assigned request identifier.
type Serial uint32

// SessionID, EndpointID and ObjectID identify routing targets. All three
// share the same sentinel: InvalidID.
type (
	SessionID  uint32
	EndpointID uint32
	ObjectID   uint32
)

// InvalidID is the sentinel meaning "not assigned yet".
const InvalidID uint32 = 0xFFFFFFFF

// InvalidSerial is the serial-number sentinel.
const InvalidSerial Serial = Serial(InvalidID)

func isValid(id uint32) bool { return id != InvalidID }

// IsValid reports whether the serial has been assigned.
func (s Serial) IsValid() bool { return isValid(uint32(s)) }

// IsValid reports whether the session id refers to a real session.
func (s SessionID) IsValid() bool { return isValid(uint32(s)) }

// IsValid reports whether the endpoint id refers to a real endpoint.
func (e EndpointID) IsValid() bool { return isValid(uint32(e)) }

// IsValid reports whether the object id refers to a real object.
func (o ObjectID) IsValid() bool { return isValid(uint32(o)) }
