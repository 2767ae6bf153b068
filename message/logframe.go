package message

import (
	"fmt"

	"github.com/ipcbus/ipcbus-go/wire"
)

// SendLog turns m into a log-tunnel Request carrying payload as its normal
// body and a second, fully-framed message (logData) as its extra region.
// When clippedSize is non-negative, logData's own embedded prefix is
// rewritten so its reported total length matches the clipped payload it
// actually carries.
func (m *Message) SendLog(payload, logData []byte, clippedSize int) error {
	m.Flag |= FlagNoReplyExpected
	m.Flag &^= FlagEnableLog
	m.Type = wire.TypeRequest

	extra := logData
	if clippedSize >= 0 {
		prefix, err := wire.DecodePrefix(logData)
		if err != nil {
			return fmt.Errorf("message: sendLog: %w", err)
		}
		embeddedPayloadSize := int(prefix.TotalLength) - int(prefix.HeadLength) - wire.PrefixSize

		switch {
		case clippedSize == 0:
			newTotal := wire.PrefixSize + int(prefix.HeadLength)
			extra = rewriteClippedPrefix(logData, prefix, newTotal)
		case clippedSize < embeddedPayloadSize:
			newTotal := wire.PrefixSize + int(prefix.HeadLength) + clippedSize
			extra = rewriteClippedPrefix(logData, prefix, newTotal)
		}
	}

	m.ReplaceBuffer(payload, len(extra))
	copy(m.buf.extraBytes(), extra)
	return nil
}

// rewriteClippedPrefix returns a copy of logData truncated to newTotal bytes
// with its embedded prefix's TotalLength updated to match.
func rewriteClippedPrefix(logData []byte, prefix wire.Prefix, newTotal int) []byte {
	out := make([]byte, newTotal)
	copy(out, logData[:newTotal])
	prefix.TotalLength = uint32(newTotal)
	_ = prefix.Encode(out[:wire.PrefixSize])
	return out
}

// BroadcastLog turns m into a log-tunnel Broadcast carrying payload as its
// normal body and logData verbatim as its extra region. Unlike SendLog, the
// embedded frame is never clipped.
func (m *Message) BroadcastLog(payload, logData []byte) error {
	m.Type = wire.TypeBroadcast
	m.Flag &^= FlagEnableLog
	m.ReplaceBuffer(payload, len(logData))
	copy(m.buf.extraBytes(), logData)
	return nil
}

// ParseLogFrame reconstructs a Message from a raw frame captured by the
// telemetry tap, shrinking the reported payload size if the frame's total
// length doesn't cover both payload and trailing extra. Returns nil, nil
// for an empty buffer.
func ParseLogFrame(buf []byte) (*Message, error) {
	if len(buf) == 0 {
		return nil, nil
	}
	prefix, err := wire.DecodePrefix(buf)
	if err != nil {
		return nil, fmt.Errorf("message: parseLogFrame: %w", err)
	}
	headEnd := wire.PrefixSize + int(prefix.HeadLength)
	if len(buf) < headEnd {
		return nil, fmt.Errorf("message: parseLogFrame: frame truncated before header end")
	}
	h, err := wire.UnmarshalHeader(buf[wire.PrefixSize:headEnd])
	if err != nil {
		return nil, fmt.Errorf("message: parseLogFrame: decode header: %w", err)
	}

	payloadSize := int(h.PayloadSize)
	extraSize := int(prefix.TotalLength) - wire.PrefixSize - int(prefix.HeadLength) - payloadSize
	if extraSize < 0 {
		payloadSize += extraSize
		if payloadSize < 0 {
			return nil, fmt.Errorf("message: parseLogFrame: negative payload size after clipping")
		}
		extraSize = 0
	}

	m := &Message{
		Type:         h.Type,
		Serial:       Serial(h.SerialNumber),
		Code:         Code(h.Code),
		Flag:         Flag(h.Flag)&GlobalMask | FlagHeadOK | FlagExternalBuffer,
		ObjectID:     ObjectID(h.ObjectID),
		buf:          newExternalBuffer(buf, 0, int(prefix.HeadLength), payloadSize, extraSize),
	}
	if h.HasSenderName() {
		m.SenderName = h.SenderName
	}
	return m, nil
}
