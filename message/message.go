// Package message defines the single mutable envelope that carries requests,
// replies, broadcasts and status frames between endpoints. A Message is a
// plain struct: there is no Command/Event/Query/Reply interface family, per
// the single-envelope model this module is built around.
package message

import (
	"fmt"

	"github.com/ipcbus/ipcbus-go/wire"
)

// Message is the unit of work passed through a Context's dispatcher. Exactly
// one Message represents a request, its reply, a broadcast, or a status.
type Message struct {
	Type   wire.MessageType
	Serial Serial
	Code   Code
	Flag   Flag

	ObjectID   ObjectID
	SenderName string
	Filter     string

	SenderSession SessionID
	DestEndpoint  EndpointID
	DestSession   SessionID

	Debug *DebugStamps

	buf buffer
}

// New constructs a Message carrying payload as its body. extraSize reserves
// room for an auxiliary trailing region (used by log-tunnel frames); pass 0
// when none is needed.
func New(typ wire.MessageType, code Code, payload []byte, extraSize int) *Message {
	return &Message{
		Type:        typ,
		Serial:      InvalidSerial,
		Code:        code,
		DestSession: SessionID(InvalidID),
		buf:         newOwnedBuffer(payload, extraSize),
	}
}

// SetDestination records where this message is headed. Dispatch and the
// transport layer consult these fields to route the frame. DestEndpoint and
// DestSession are never placed on the wire; ObjectID travels in the header.
func (m *Message) SetDestination(endpoint EndpointID, session SessionID, object ObjectID) {
	m.DestEndpoint = endpoint
	m.DestSession = session
	m.ObjectID = object
}

// Payload returns the message body.
func (m *Message) Payload() []byte { return m.buf.payloadBytes() }

// Extra returns the auxiliary trailing region, or nil if none was reserved.
func (m *Message) Extra() []byte { return m.buf.extraBytes() }

// ReplaceBuffer discards the current buffer and replaces it with a freshly
// owned one, used when building a reply or status in place of a request.
func (m *Message) ReplaceBuffer(payload []byte, extraSize int) {
	m.buf = newOwnedBuffer(payload, extraSize)
	m.Flag &^= FlagHeadOK | FlagExternalBuffer
}

// ReleaseBuffer drops the message's buffer. Safe to call on an
// already-released message. Both owned and external buffers are plain Go
// slices, so release is unconditional garbage-collector bookkeeping — the
// external bit only distinguishes the two for logging and metrics.
func (m *Message) ReleaseBuffer() {
	m.buf = buffer{}
}

// IsSubscribe reports whether this is a SubscribeRequest carrying the
// subscribe verb, as opposed to Unsubscribe or Update.
func (m *Message) IsSubscribe() bool {
	return m.Type == wire.TypeSubscribeRequest && m.Code == CodeSubscribe
}

// IsUnsubscribe reports whether this is a SubscribeRequest carrying the
// unsubscribe verb.
func (m *Message) IsUnsubscribe() bool {
	return m.Type == wire.TypeSubscribeRequest && m.Code == CodeUnsubscribe
}

// IsUpdate reports whether this is a SubscribeRequest carrying the update
// verb.
func (m *Message) IsUpdate() bool {
	return m.Type == wire.TypeSubscribeRequest && m.Code == CodeUpdate
}

// SetErrorMsg stamps the message as a Status frame carrying info. Codes in
// the informational range leave FlagError clear; anything else sets it.
func (m *Message) SetErrorMsg(info ErrorInfo) error {
	payload, err := marshalErrorInfo(info)
	if err != nil {
		return err
	}
	m.Type = wire.TypeStatus
	m.Code = Code(info.Code)
	m.ReplaceBuffer(payload, 0)
	m.Flag |= FlagStatus
	if !info.Code.IsInformational() {
		m.Flag |= FlagError
	} else {
		m.Flag &^= FlagError
	}
	return nil
}

// EncodeOptions supplies the values Encode needs that do not live on the
// Message itself.
type EncodeOptions struct {
	// SenderNameFallback is used when SenderName is empty.
	SenderNameFallback string
	// Now returns the current time in nanoseconds; overridable for tests.
	Now func() uint64
}

// Encode serializes the message into a wire frame, returning the same bytes
// on repeated calls once FlagHeadOK is set.
func (m *Message) Encode(opts EncodeOptions) ([]byte, error) {
	if Flag(m.Flag).Has(FlagHeadOK) {
		return m.buf.rawFrame(), nil
	}
	senderName := m.SenderName
	if senderName == "" {
		senderName = opts.SenderNameFallback
	}

	h := wire.Header{
		Type:         m.Type,
		SerialNumber: uint32(m.Serial),
		Code:         uint32(m.Code),
		Flag:         uint32(Flag(m.Flag) & GlobalMask),
		ObjectID:     uint32(m.ObjectID),
		PayloadSize:  uint32(m.buf.payloadSize),
		SenderName:   senderName,
	}
	if m.Type == wire.TypeBroadcast && m.Filter != "" {
		h.BroadcastFilter = m.Filter
	}
	if opts.Now != nil {
		m.encodeDebugInfo(&h, opts.Now)
	}

	frame, err := wire.EncodeFrame(m.buf.data, h, m.buf.payloadSize, m.buf.extraSize)
	if err != nil {
		return nil, fmt.Errorf("message: encode: %w", err)
	}

	prefix, err := wire.DecodePrefix(frame)
	if err != nil {
		return nil, fmt.Errorf("message: encode: decode own prefix: %w", err)
	}
	m.buf.offset = len(m.buf.data) - len(frame)
	m.buf.headSize = int(prefix.HeadLength)
	m.Flag |= FlagHeadOK
	return frame, nil
}

// FromWire parses a raw frame received on session into a Message. now
// stamps the arrive-side debug timestamp when the frame carries FlagDebug.
func FromWire(data []byte, session SessionID, now func() uint64) (*Message, error) {
	decoded, err := wire.DecodeFrame(data)
	if err != nil {
		return nil, fmt.Errorf("message: decode: %w", err)
	}

	m := &Message{
		Type:          decoded.Header.Type,
		Serial:        Serial(decoded.Header.SerialNumber),
		Code:          Code(decoded.Header.Code),
		Flag:          Flag(decoded.Header.Flag)&GlobalMask | FlagHeadOK | FlagExternalBuffer,
		ObjectID:      ObjectID(decoded.Header.ObjectID),
		SenderSession: session,
		buf: newExternalBuffer(data, 0, int(decoded.Prefix.HeadLength),
			decoded.PayloadSize, decoded.ExtraSize),
	}
	if decoded.Header.HasSenderName() {
		m.SenderName = decoded.Header.SenderName
	}
	if decoded.Header.HasBroadcastFilter() {
		m.Filter = decoded.Header.BroadcastFilter
	}
	if now != nil {
		m.decodeDebugInfo(decoded.Header, now)
	}
	return m, nil
}
