package id3v2

import "encoding/binary"

// FrameID is a four-byte frame identifier, encoded as in the teacher
// package: the four ASCII bytes packed big-endian into a uint32 so
// frame IDs compare and switch cheaply.
type FrameID uint32

// newFrameID packs a four-character ASCII frame ID string into a
// FrameID. Panics if id is not exactly four bytes — only used with
// constant strings below.
func newFrameID(id string) FrameID {
	if len(id) != 4 {
		panic("id3v2: frame id must be four characters: " + id)
	}
	return FrameID(binary.BigEndian.Uint32([]byte(id)))
}

func (id FrameID) String() string {
	b := [4]byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	return string(b[:])
}

// Frame identifiers used by the field mapping in spec §4.4. Unknown
// frame IDs are retained verbatim by the codec without needing a
// named constant.
var (
	FrameTIT2 = newFrameID("TIT2") // title
	FrameTPE1 = newFrameID("TPE1") // artist
	FrameTALB = newFrameID("TALB") // album
	FrameTCON = newFrameID("TCON") // genre
	FrameTCOM = newFrameID("TCOM") // composer
	FrameTPE2 = newFrameID("TPE2") // album artist
	FrameTPUB = newFrameID("TPUB") // publisher
	FrameTCOP = newFrameID("TCOP") // copyright
	FrameTENC = newFrameID("TENC") // encoder
	FrameTBPM = newFrameID("TBPM") // bpm
	FrameTKEY = newFrameID("TKEY") // initial key
	FrameTLAN = newFrameID("TLAN") // language
	FrameTSRC = newFrameID("TSRC") // ISRC
	FrameTCMP = newFrameID("TCMP") // iTunes compilation (reused for custom flag storage)

	FrameTYER = newFrameID("TYER") // year (v2.3)
	FrameTDRC = newFrameID("TDRC") // recording time (v2.4)

	FrameTRCK = newFrameID("TRCK") // track number
	FrameTPOS = newFrameID("TPOS") // disc number

	FrameCOMM = newFrameID("COMM") // comment
	FrameUSLT = newFrameID("USLT") // unsynchronised lyrics

	FrameWOAR = newFrameID("WOAR") // artist URL
	FrameWOAS = newFrameID("WOAS") // audio source URL
	FrameWOAF = newFrameID("WOAF") // audio file URL
	FrameWPUB = newFrameID("WPUB") // publisher URL
	FrameWCOM = newFrameID("WCOM") // commercial URL

	FrameWXXX = newFrameID("WXXX") // custom URL
	FrameTXXX = newFrameID("TXXX") // custom text

	FrameAPIC = newFrameID("APIC") // attached picture
	FramePRIV = newFrameID("PRIV") // private data
	FrameUFID = newFrameID("UFID") // unique file identifier
	FramePCNT = newFrameID("PCNT") // play counter
	FramePOPM = newFrameID("POPM") // popularimeter (rating)
	FrameSYLT = newFrameID("SYLT") // synchronised lyrics

	FrameCHAP = newFrameID("CHAP") // chapter
	FrameCTOC = newFrameID("CTOC") // table of contents
)

// textFrameFields lists the frame IDs that map directly to a string
// field in model.AudioMetadata via Frame.Text, in the stable write
// order spec §4.4 prescribes ("text frames grouped first").
var textFrameFields = []FrameID{
	FrameTIT2, FrameTPE1, FrameTALB, FrameTCON, FrameTCOM, FrameTPE2,
	FrameTPUB, FrameTCOP, FrameTENC, FrameTBPM, FrameTKEY, FrameTLAN, FrameTSRC,
}

// urlFrameFields lists the single-valued URL frames, Latin-1 bodies
// with no encoding byte.
var urlFrameFields = []FrameID{
	FrameWOAR, FrameWOAS, FrameWOAF, FrameWPUB, FrameWCOM,
}
