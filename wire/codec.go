package wire

import "fmt"

// MaxReservedSize is the headroom reserved at the front of an encode buffer
// so the prefix and header can be written in place once their final size is
// known, without copying the payload that was written first.
const MaxReservedSize = PrefixSize + MaxHeadSize

// NewEncodeBuffer allocates a buffer with MaxReservedSize headroom followed
// by room for payloadSize and extraSize bytes. Callers write the payload
// (and, if any, the extra region) into buf[MaxReservedSize:] before calling
// EncodeFrame.
func NewEncodeBuffer(payloadSize, extraSize int) []byte {
	return make([]byte, MaxReservedSize+payloadSize+extraSize)
}

// EncodeFrame writes header into the reserved headroom of buf (which must
// have been produced by NewEncodeBuffer, with payload/extra already written
// at buf[MaxReservedSize:]) and returns the slice of buf that makes up the
// final frame: prefix, header, payload, extra, back to back.
func EncodeFrame(buf []byte, h Header, payloadSize, extraSize int) ([]byte, error) {
	headBytes, err := h.Marshal()
	if err != nil {
		return nil, err
	}
	headOffset := MaxReservedSize - len(headBytes)
	prefixOffset := headOffset - PrefixSize
	if prefixOffset < 0 {
		return nil, fmt.Errorf("wire: encode buffer too small for header of %d bytes", len(headBytes))
	}
	copy(buf[headOffset:], headBytes)

	prefix := Prefix{
		TotalLength: uint32(PrefixSize + len(headBytes) + payloadSize + extraSize),
		HeadLength:  uint32(len(headBytes)),
	}
	if err := prefix.Encode(buf[prefixOffset : prefixOffset+PrefixSize]); err != nil {
		return nil, err
	}
	return buf[prefixOffset:], nil
}

// DecodedFrame is the result of splitting a raw wire frame into its parts.
type DecodedFrame struct {
	Prefix      Prefix
	Header      Header
	PayloadSize int
	ExtraSize   int
	// Clamped is set when the computed extra size was negative and was
	// clamped to zero rather than failing the decode.
	Clamped bool
}

// DecodeFrame parses the prefix and header out of a raw frame. It does not
// slice out payload/extra itself; callers index buf using PayloadSize and
// ExtraSize relative to PrefixSize+HeadLength.
func DecodeFrame(buf []byte) (DecodedFrame, error) {
	prefix, err := DecodePrefix(buf)
	if err != nil {
		return DecodedFrame{}, err
	}
	headEnd := PrefixSize + int(prefix.HeadLength)
	if len(buf) < headEnd {
		return DecodedFrame{}, fmt.Errorf("wire: frame truncated: have %d bytes, header ends at %d", len(buf), headEnd)
	}
	h, err := UnmarshalHeader(buf[PrefixSize:headEnd])
	if err != nil {
		return DecodedFrame{}, fmt.Errorf("wire: decode header: %w", err)
	}

	extraSize := int(prefix.TotalLength) - PrefixSize - int(prefix.HeadLength) - int(h.PayloadSize)
	clamped := false
	if extraSize < 0 {
		extraSize = 0
		clamped = true
	}

	return DecodedFrame{
		Prefix:      prefix,
		Header:      h,
		PayloadSize: int(h.PayloadSize),
		ExtraSize:   extraSize,
		Clamped:     clamped,
	}, nil
}
