package id3v2

// Package id3v2 implements the ID3v2 codec: header and frame parsing,
// emission with padding, CHAP/CTOC chapter trees, in-place
// modification that preserves unknown frames, and strip. It is
// grounded on the teacher package's header/frame layout constants and
// its unsynchronisation-reversal logic in Scan, generalized here from
// read-only scanning to full read/write/modify/strip support.

// Version is the ID3v2 major version a tag is encoded with.
type Version byte

const (
	Version23 Version = 0x03
	Version24 Version = 0x04
)

func (v Version) String() string {
	switch v {
	case Version23:
		return "v2.3"
	case Version24:
		return "v2.4"
	default:
		return "unknown"
	}
}

const (
	tagFlagUnsynchronisation = 1 << 7
	tagFlagExtendedHeader    = 1 << 6
	tagFlagExperimental      = 1 << 5
	tagFlagFooter            = 1 << 4

	knownTagFlags = tagFlagUnsynchronisation | tagFlagExtendedHeader |
		tagFlagExperimental | tagFlagFooter
)

// FrameFlags are the two frame-level status/format bytes.
type FrameFlags uint16

const (
	frameFlagV24Unsynchronisation FrameFlags = 1 << 1
)

// HeaderSize is the fixed size of the 10-byte ID3v2 tag header.
const HeaderSize = 10

// TagID3 is the three-byte magic at the start of every ID3v2 tag.
var TagID3 = [3]byte{'I', 'D', '3'}

// tagHeader is the parsed form of the 10-byte header.
type tagHeader struct {
	Version  Version
	Revision byte
	Flags    byte
	Size     uint32 // size of the frame block, excluding the 10-byte header
}

func (h tagHeader) unsynchronised() bool { return h.Flags&tagFlagUnsynchronisation != 0 }
