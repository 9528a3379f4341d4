package id3v2

import (
	"encoding/binary"

	"github.com/atelier-socle/audiomarker/cursor"
)

const invalidFrameID = ^FrameID(0)

func validIDByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// frameIDFromBytes mirrors the teacher's frameID helper: it returns 0
// when the four bytes are all zero (the start of padding) and
// invalidFrameID when the bytes are neither a valid ID nor padding.
func frameIDFromBytes(data []byte) FrameID {
	_ = data[3]

	if validIDByte(data[0]) && validIDByte(data[1]) && validIDByte(data[2]) &&
		(validIDByte(data[3]) || data[3] == 0) {
		return FrameID(binary.BigEndian.Uint32(data))
	}

	for _, v := range data {
		if v != 0 {
			return invalidFrameID
		}
	}

	return 0
}

// reverseUnsynchronisation reverses the FF 00 -> FF escaping applied
// to an entire unsynchronised tag body, following the teacher's
// per-byte loop in Scan.
func reverseUnsynchronisation(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		v := data[i]
		out = append(out, v)
		if v == 0xff && i+1 < len(data) && data[i+1] == 0x00 {
			i++
		}
	}
	return out
}

// applyUnsynchronisation is the inverse transform used on write: every
// 0xFF byte followed by a byte with its top three bits set (or a
// literal 0x00, to protect against accidental resynchronisation by a
// naive decoder) gets a 0x00 inserted after it.
func applyUnsynchronisation(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/8+1)
	for i := 0; i < len(data); i++ {
		out = append(out, data[i])
		if data[i] == 0xff && i+1 < len(data) && (data[i+1]&0xe0 == 0xe0 || data[i+1] == 0x00) {
			out = append(out, 0x00)
		}
	}
	return out
}

// parsedFrame is a frame plus the byte length it occupied in the
// source frame block, so the caller can advance past it.
type parsedFrame struct {
	frame    Frame
	consumed int
}

// parseFrame parses one frame at the start of data, which must be
// positioned at a frame header (10 bytes: 4-byte ID, 4-byte size,
// 2-byte flags). version controls whether size is a plain uint32
// (v2.3) or a syncsafe uint32 (v2.4). tagUnsynchronised indicates the
// whole-tag unsynchronisation flag was set, in which case frame
// payloads were already reversed for the whole tag and must not be
// reversed again per-frame.
func parseFrame(data []byte, version Version, tagUnsynchronised bool) (parsedFrame, bool, error) {
	if len(data) < HeaderSize {
		return parsedFrame{}, false, InvalidTagErrorf(0, "frame header truncated")
	}

	id := frameIDFromBytes(data[:4])
	if id == 0 {
		return parsedFrame{}, false, nil // padding reached
	}
	if id == invalidFrameID {
		return parsedFrame{}, false, InvalidTagErrorf(0, "invalid frame id")
	}

	size, err := frameSize(data[4:8], version)
	if err != nil {
		return parsedFrame{}, false, err
	}

	if len(data) < HeaderSize+int(size) {
		return parsedFrame{}, false, InvalidTagErrorf(0, "frame size exceeds tag body")
	}

	flags := FrameFlags(binary.BigEndian.Uint16(data[8:10]))
	payload := append([]byte(nil), data[HeaderSize:HeaderSize+int(size)]...)

	if tagUnsynchronised || (version == Version24 && flags&frameFlagV24Unsynchronisation != 0) {
		payload = reverseUnsynchronisation(payload)
		flags &^= frameFlagV24Unsynchronisation
	}

	return parsedFrame{
		frame:    Frame{ID: id, Flags: flags, Data: payload},
		consumed: HeaderSize + int(size),
	}, true, nil
}

func frameSize(data []byte, version Version) (uint32, error) {
	if version == Version24 {
		r := cursor.NewReader(data)
		v, err := r.ReadSyncsafeU32()
		if err != nil {
			return 0, InvalidTagErrorf(0, "invalid frame size")
		}
		return v, nil
	}
	return binary.BigEndian.Uint32(data), nil
}

// writeFrameHeader appends a frame header (ID, size, flags) to w. size
// is encoded syncsafe for v2.4 and plain for v2.3.
func writeFrameHeader(w *cursor.Writer, id FrameID, size uint32, flags FrameFlags, version Version) {
	w.WriteU32(uint32(id))
	if version == Version24 {
		w.WriteSyncsafeU32(size)
	} else {
		w.WriteU32(size)
	}
	w.WriteU16(uint16(flags))
}
