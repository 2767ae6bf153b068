package wire

import (
	"encoding/binary"
	"fmt"
)

// PrefixSize is the fixed size, in bytes, of the frame prefix.
const PrefixSize = 8

// Prefix is the 8-byte region at the start of every frame: the total frame
// length followed by the length of the header record that follows it.
type Prefix struct {
	TotalLength uint32
	HeadLength  uint32
}

// Encode writes the prefix into buf, which must be at least PrefixSize bytes.
func (p Prefix) Encode(buf []byte) error {
	if len(buf) < PrefixSize {
		return fmt.Errorf("wire: prefix buffer too short: have %d, need %d", len(buf), PrefixSize)
	}
	binary.BigEndian.PutUint32(buf[0:4], p.TotalLength)
	binary.BigEndian.PutUint32(buf[4:8], p.HeadLength)
	return nil
}

// DecodePrefix reads a Prefix from the front of buf.
func DecodePrefix(buf []byte) (Prefix, error) {
	if len(buf) < PrefixSize {
		return Prefix{}, fmt.Errorf("wire: short prefix: have %d bytes, need %d", len(buf), PrefixSize)
	}
	return Prefix{
		TotalLength: binary.BigEndian.Uint32(buf[0:4]),
		HeadLength:  binary.BigEndian.Uint32(buf[4:8]),
	}, nil
}
