package message

// Flag is the bitfield carried by every Message. The low bits persisted on
// the wire are masked off by GlobalMask before encoding; everything else is
// local bookkeeping that never leaves the process.
type Flag uint32

const (
	FlagError           Flag = 1 << 0
	FlagStatus          Flag = 1 << 1
	FlagInitialResponse Flag = 1 << 2
	FlagDebug           Flag = 1 << 3
	// FlagEncodingMask occupies two bits for the Encoding field (Protobuf|Raw).
	FlagEncodingMask Flag = 0x3 << 4
	encodingShift         = 4

	// Local-only flags — never serialized, masked off by GlobalMask.
	FlagHeadOK            Flag = 1 << 8
	FlagNoReplyExpected    Flag = 1 << 9
	FlagAutoReply          Flag = 1 << 10
	FlagSyncReply           Flag = 1 << 11
	FlagReplied             Flag = 1 << 12
	FlagExternalBuffer      Flag = 1 << 13
	FlagEndpoint            Flag = 1 << 14
	FlagEnableLog           Flag = 1 << 15
	FlagManualUpdate        Flag = 1 << 16
)

// GlobalMask selects the flag bits that persist on the wire.
const GlobalMask = FlagError | FlagStatus | FlagInitialResponse | FlagDebug | FlagEncodingMask

// Encoding identifies how the payload bytes are serialized.
type Encoding uint32

const (
	EncodingProtobuf Encoding = iota
	EncodingRaw
)

func encodingFlag(e Encoding) Flag {
	return Flag(e) << encodingShift & FlagEncodingMask
}

func (f Flag) encoding() Encoding {
	return Encoding((f & FlagEncodingMask) >> encodingShift)
}

// Has reports whether all bits in mask are set.
func (f Flag) Has(mask Flag) bool { return f&mask == mask }

// Any reports whether any bit in mask is set.
func (f Flag) Any(mask Flag) bool { return f&mask != 0 }
