package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// MessageType is an ordinal-stable enum — the order matters, Name depends
// on it.
type MessageType uint32

const (
	TypeUnknown MessageType = iota
	TypeRequest
	TypeReply
	TypeSubscribeRequest
	TypeBroadcast
	TypeSidebandRequest
	TypeSidebandReply
	TypeStatus
)

var typeNames = [...]string{
	"Unknown", "Request", "Reply", "Subscribe",
	"Broadcast", "SidebandRequest", "SidebandReply", "Status",
}

// Name returns the ordinal-stable type name, or "" for an out-of-range
// value.
func (t MessageType) Name() string {
	if int(t) >= len(typeNames) {
		return ""
	}
	return typeNames[t]
}

// Header field tag numbers on the wire. Stable — do not renumber.
const (
	fieldType              = 1
	fieldSerialNumber       = 2
	fieldCode               = 3
	fieldFlag               = 4
	fieldObjectID           = 5
	fieldPayloadSize        = 6
	fieldSenderName         = 7
	fieldBroadcastFilter    = 8
	fieldSendOrArriveTimeNs = 9
	fieldReplyTimeNs        = 10
)

// MaxHeadSize bounds the encoded header size; exceeding it is HeadTooLong.
const MaxHeadSize = 1024

// ErrHeadTooLong is returned by Header.Marshal when the encoded header would
// exceed MaxHeadSize.
var ErrHeadTooLong = fmt.Errorf("wire: header exceeds max head size of %d bytes", MaxHeadSize)

// Header is the structured record carried between the frame prefix and the
// payload. Optional fields use zero-value sentinels: an empty string or a
// zero timestamp means "absent" and is omitted from the wire form.
type Header struct {
	Type              MessageType
	SerialNumber      uint32
	Code              uint32
	Flag              uint32
	ObjectID          uint32
	PayloadSize       uint32
	SenderName        string
	BroadcastFilter   string
	SendOrArriveTimeNs uint64
	ReplyTimeNs        uint64
}

// Marshal encodes the header as a length-delimited, tag/varint binary
// record, field by field, without requiring generated .pb.go code.
func (h Header) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(h.Type))
	b = protowire.AppendTag(b, fieldSerialNumber, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(h.SerialNumber))
	b = protowire.AppendTag(b, fieldCode, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(h.Code))
	b = protowire.AppendTag(b, fieldFlag, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(h.Flag))
	b = protowire.AppendTag(b, fieldObjectID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(h.ObjectID))
	b = protowire.AppendTag(b, fieldPayloadSize, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(h.PayloadSize))
	if h.SenderName != "" {
		b = protowire.AppendTag(b, fieldSenderName, protowire.BytesType)
		b = protowire.AppendString(b, h.SenderName)
	}
	if h.BroadcastFilter != "" {
		b = protowire.AppendTag(b, fieldBroadcastFilter, protowire.BytesType)
		b = protowire.AppendString(b, h.BroadcastFilter)
	}
	if h.SendOrArriveTimeNs != 0 {
		b = protowire.AppendTag(b, fieldSendOrArriveTimeNs, protowire.VarintType)
		b = protowire.AppendVarint(b, h.SendOrArriveTimeNs)
	}
	if h.ReplyTimeNs != 0 {
		b = protowire.AppendTag(b, fieldReplyTimeNs, protowire.VarintType)
		b = protowire.AppendVarint(b, h.ReplyTimeNs)
	}
	if len(b) > MaxHeadSize {
		return nil, ErrHeadTooLong
	}
	return b, nil
}

// UnmarshalHeader decodes a header record written by Marshal. Unknown field
// numbers are skipped, matching protobuf's forward-compatibility rule.
func UnmarshalHeader(buf []byte) (Header, error) {
	var h Header
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return Header{}, fmt.Errorf("wire: malformed header tag: %w", protowire.ParseError(n))
		}
		buf = buf[n:]

		switch num {
		case fieldType:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return Header{}, fmt.Errorf("wire: malformed type field: %w", protowire.ParseError(n))
			}
			h.Type = MessageType(v)
			buf = buf[n:]
		case fieldSerialNumber:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return Header{}, fmt.Errorf("wire: malformed serial_number field: %w", protowire.ParseError(n))
			}
			h.SerialNumber = uint32(v)
			buf = buf[n:]
		case fieldCode:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return Header{}, fmt.Errorf("wire: malformed code field: %w", protowire.ParseError(n))
			}
			h.Code = uint32(v)
			buf = buf[n:]
		case fieldFlag:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return Header{}, fmt.Errorf("wire: malformed flag field: %w", protowire.ParseError(n))
			}
			h.Flag = uint32(v)
			buf = buf[n:]
		case fieldObjectID:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return Header{}, fmt.Errorf("wire: malformed object_id field: %w", protowire.ParseError(n))
			}
			h.ObjectID = uint32(v)
			buf = buf[n:]
		case fieldPayloadSize:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return Header{}, fmt.Errorf("wire: malformed payload_size field: %w", protowire.ParseError(n))
			}
			h.PayloadSize = uint32(v)
			buf = buf[n:]
		case fieldSenderName:
			v, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return Header{}, fmt.Errorf("wire: malformed sender_name field: %w", protowire.ParseError(n))
			}
			h.SenderName = string(v)
			buf = buf[n:]
		case fieldBroadcastFilter:
			v, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return Header{}, fmt.Errorf("wire: malformed broadcast_filter field: %w", protowire.ParseError(n))
			}
			h.BroadcastFilter = string(v)
			buf = buf[n:]
		case fieldSendOrArriveTimeNs:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return Header{}, fmt.Errorf("wire: malformed send_or_arrive_time field: %w", protowire.ParseError(n))
			}
			h.SendOrArriveTimeNs = v
			buf = buf[n:]
		case fieldReplyTimeNs:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return Header{}, fmt.Errorf("wire: malformed reply_time field: %w", protowire.ParseError(n))
			}
			h.ReplyTimeNs = v
			buf = buf[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, buf)
			if n < 0 {
				return Header{}, fmt.Errorf("wire: malformed unknown field %d: %w", num, protowire.ParseError(n))
			}
			buf = buf[n:]
		}
	}
	return h, nil
}

// HasSenderName reports whether a sender name was carried on the wire.
func (h Header) HasSenderName() bool { return h.SenderName != "" }

// HasBroadcastFilter reports whether a broadcast filter was carried.
func (h Header) HasBroadcastFilter() bool { return h.BroadcastFilter != "" }

// HasSendOrArriveTime reports whether the debug send/arrive stamp is set.
func (h Header) HasSendOrArriveTime() bool { return h.SendOrArriveTimeNs != 0 }

// HasReplyTime reports whether the debug reply stamp is set.
func (h Header) HasReplyTime() bool { return h.ReplyTimeNs != 0 }
