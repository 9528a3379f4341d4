// Package mp4 implements the ISOBMFF/MP4 metadata codec: iTunes-style
// ilst tag read/write, a QuickTime tref/chap chapter text track and a
// TTML/LRC lyrics text track (read and write), Nero chpl chapter
// read-only compatibility, and the stco/co64 chunk-offset fixup that
// keeps sample tables valid when moov changes size. It is grounded on
// the box-walking style of github.com/abema/go-mp4's ReadBoxStructure,
// generalized here from a single-purpose audiobook reader to full
// read/write support for both M4A and M4B.
package mp4

import (
	"encoding/binary"

	gomp4 "github.com/abema/go-mp4"
)

// Box type constants used while walking the atom tree. Named the way
// go-mp4 names its own BoxTypeXxx() helpers, but kept local since not
// every atom audiomarker touches has a registered payload type in that
// library (most iTunes metadata atoms do not).
var (
	BoxTypeMoov = gomp4.StrToBoxType("moov")
	BoxTypeMvhd = gomp4.StrToBoxType("mvhd")
	BoxTypeTrak = gomp4.StrToBoxType("trak")
	BoxTypeTkhd = gomp4.StrToBoxType("tkhd")
	BoxTypeMdia = gomp4.StrToBoxType("mdia")
	BoxTypeMdhd = gomp4.StrToBoxType("mdhd")
	BoxTypeMinf = gomp4.StrToBoxType("minf")
	BoxTypeStbl = gomp4.StrToBoxType("stbl")
	BoxTypeStsd = gomp4.StrToBoxType("stsd")
	BoxTypeStts = gomp4.StrToBoxType("stts")
	BoxTypeStsz = gomp4.StrToBoxType("stsz")
	BoxTypeStsc = gomp4.StrToBoxType("stsc")
	BoxTypeStco = gomp4.StrToBoxType("stco")
	BoxTypeCo64 = gomp4.StrToBoxType("co64")
	BoxTypeMp4a = gomp4.StrToBoxType("mp4a")
	BoxTypeEsds = gomp4.StrToBoxType("esds")
	BoxTypeUdta = gomp4.StrToBoxType("udta")
	BoxTypeMeta = gomp4.StrToBoxType("meta")
	BoxTypeIlst = gomp4.StrToBoxType("ilst")
	BoxTypeTref = gomp4.StrToBoxType("tref")
	BoxTypeChap = gomp4.StrToBoxType("chap")
	BoxTypeChpl = gomp4.StrToBoxType("chpl")
	BoxTypeMdat = gomp4.StrToBoxType("mdat")
	BoxTypeFree = gomp4.StrToBoxType("free")
	BoxTypeHdlr = gomp4.StrToBoxType("hdlr")
)

// iTunes ilst child atoms audiomarker recognises.
var (
	AtomTitle       = gomp4.StrToBoxType("\xa9nam")
	AtomArtist      = gomp4.StrToBoxType("\xa9ART")
	AtomAlbumArtist = gomp4.StrToBoxType("aART")
	AtomAlbum       = gomp4.StrToBoxType("\xa9alb")
	AtomGenre       = gomp4.StrToBoxType("\xa9gen")
	AtomGenreID     = gomp4.StrToBoxType("gnre")
	AtomComposer    = gomp4.StrToBoxType("\xa9wrt")
	AtomComment     = gomp4.StrToBoxType("\xa9cmt")
	AtomYear        = gomp4.StrToBoxType("\xa9day")
	AtomCopyright   = gomp4.StrToBoxType("cprt")
	AtomEncoder     = gomp4.StrToBoxType("\xa9too")
	AtomTrackNumber = gomp4.StrToBoxType("trkn")
	AtomDiscNumber  = gomp4.StrToBoxType("disk")
	AtomCover       = gomp4.StrToBoxType("covr")
	AtomMediaType   = gomp4.StrToBoxType("stik")
	AtomFreeform    = gomp4.StrToBoxType("----")
	AtomBPM         = gomp4.StrToBoxType("tmpo")
	AtomLyrics      = gomp4.StrToBoxType("\xa9lyr")
)

// iTunes "data" atom type codes (the three low bytes of its 4-byte
// type field), per the Apple metadata atom convention.
const (
	DataTypeUTF8    = 1
	DataTypeJPEG    = 13
	DataTypePNG     = 14
	DataTypeInteger = 21
)

func atomTypeEquals(a, b gomp4.BoxType) bool { return a == b }

// buildBox wraps content in a box with the given 4-character type.
func buildBox(boxType string, content []byte) []byte {
	return buildBoxBytes([4]byte{boxType[0], boxType[1], boxType[2], boxType[3]}, content)
}

// buildBoxBytes wraps content in a box with a raw 4-byte type (needed
// for non-ASCII iTunes types such as "\xa9nam").
func buildBoxBytes(boxType [4]byte, content []byte) []byte {
	size := uint32(8 + len(content))
	buf := make([]byte, 8+len(content))
	binary.BigEndian.PutUint32(buf[0:4], size)
	copy(buf[4:8], boxType[:])
	copy(buf[8:], content)
	return buf
}

// readChildBoxes splits a container box's content into (type, payload)
// pairs without using go-mp4's handle API — used for rebuilding
// containers (udta/meta/ilst) where we need raw boxes we don't
// recognise preserved byte for byte. Handles the 64-bit extended-size
// form (32-bit size field == 1, real size follows as a uint64) and the
// to-EOF form (size field == 0).
func readChildBoxes(content []byte) []rawChildBox {
	var out []rawChildBox
	offset := 0
	for offset+8 <= len(content) {
		size64 := int64(binary.BigEndian.Uint32(content[offset:]))
		headerSize := 8

		switch size64 {
		case 0:
			size64 = int64(len(content) - offset)
		case 1:
			if offset+16 > len(content) {
				return out
			}
			size64 = int64(binary.BigEndian.Uint64(content[offset+8:]))
			headerSize = 16
		}

		if size64 < int64(headerSize) || offset+int(size64) > len(content) {
			break
		}

		var boxType [4]byte
		copy(boxType[:], content[offset+4:offset+8])
		out = append(out, rawChildBox{
			Type: boxType,
			Data: content[offset+headerSize : offset+int(size64)],
			Raw:  content[offset : offset+int(size64)],
		})
		offset += int(size64)
	}
	return out
}

type rawChildBox struct {
	Type [4]byte
	Data []byte // payload, excluding the 8-byte header
	Raw  []byte // full box bytes, including header
}
