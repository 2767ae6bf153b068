package message

import "github.com/ipcbus/ipcbus-go/wire"

// buffer tracks the single contiguous allocation a Message owns across its
// life: payload and extra live at fixed offsets once framed. Every Message
// owns exactly one buffer at a time; external marks provenance so release
// accounts for wire-received frames distinctly even though both paths simply
// drop the Go slice.
type buffer struct {
	data        []byte
	offset      int
	headSize    int
	payloadSize int
	extraSize   int
	external    bool
}

// newOwnedBuffer allocates a fresh buffer with wire.MaxReservedSize headroom
// and copies payload in, ready for header framing via Message.Encode.
func newOwnedBuffer(payload []byte, extraSize int) buffer {
	data := wire.NewEncodeBuffer(len(payload), extraSize)
	copy(data[wire.MaxReservedSize:], payload)
	// Until Encode sets the real offset and headSize, offset is placed so
	// that bodyStart() lands on wire.MaxReservedSize, where payload lives.
	return buffer{data: data, offset: wire.MaxReservedSize - wire.PrefixSize, payloadSize: len(payload), extraSize: extraSize}
}

// newExternalBuffer wraps a frame received off the wire. payload and extra
// are already in place at their framed offsets; only bookkeeping fields are
// filled in.
func newExternalBuffer(data []byte, offset, headSize, payloadSize, extraSize int) buffer {
	return buffer{
		data:        data,
		offset:      offset,
		headSize:    headSize,
		payloadSize: payloadSize,
		extraSize:   extraSize,
		external:    true,
	}
}

func (b buffer) bodyStart() int {
	return b.offset + wire.PrefixSize + b.headSize
}

func (b buffer) payloadBytes() []byte {
	if b.data == nil {
		return nil
	}
	start := b.bodyStart()
	return b.data[start : start+b.payloadSize]
}

func (b buffer) extraBytes() []byte {
	if b.data == nil || b.extraSize == 0 {
		return nil
	}
	start := b.bodyStart() + b.payloadSize
	return b.data[start : start+b.extraSize]
}

// rawFrame returns the framed bytes (prefix+header+payload+extra), valid
// only once the message has been encoded (FlagHeadOK set for an owned
// buffer, or always for an external one).
func (b buffer) rawFrame() []byte {
	if b.data == nil {
		return nil
	}
	total := wire.PrefixSize + b.headSize + b.payloadSize + b.extraSize
	return b.data[b.offset : b.offset+total]
}
