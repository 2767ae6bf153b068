package message

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	errorInfoFieldCode        = 1
	errorInfoFieldDescription = 2
)

// marshalErrorInfo encodes a Status payload using the same tag/varint
// convention as the header, rather than a separate payload codec.
func marshalErrorInfo(info ErrorInfo) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, errorInfoFieldCode, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(uint32(info.Code)))
	if info.Description != "" {
		b = protowire.AppendTag(b, errorInfoFieldDescription, protowire.BytesType)
		b = protowire.AppendString(b, info.Description)
	}
	return b, nil
}

// UnmarshalErrorInfo decodes the payload of a Status message.
func UnmarshalErrorInfo(buf []byte) (ErrorInfo, error) {
	var info ErrorInfo
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return ErrorInfo{}, fmt.Errorf("message: malformed error info tag: %w", protowire.ParseError(n))
		}
		buf = buf[n:]
		switch num {
		case errorInfoFieldCode:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return ErrorInfo{}, fmt.Errorf("message: malformed error info code: %w", protowire.ParseError(n))
			}
			info.Code = StatusCode(int32(uint32(v)))
			buf = buf[n:]
		case errorInfoFieldDescription:
			v, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return ErrorInfo{}, fmt.Errorf("message: malformed error info description: %w", protowire.ParseError(n))
			}
			info.Description = string(v)
			buf = buf[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, buf)
			if n < 0 {
				return ErrorInfo{}, fmt.Errorf("message: malformed error info unknown field %d: %w", num, protowire.ParseError(n))
			}
			buf = buf[n:]
		}
	}
	return info, nil
}
