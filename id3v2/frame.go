package id3v2

import (
	"github.com/atelier-socle/audiomarker/cursor"
	"github.com/pkg/errors"
)

// TextEncoding is the first byte of every text-bearing frame payload,
// selecting how the remainder of the payload is decoded (spec §4.4).
type TextEncoding byte

const (
	EncodingLatin1   TextEncoding = 0x00
	EncodingUTF16BOM TextEncoding = 0x01
	EncodingUTF16BE  TextEncoding = 0x02 // v2.4 only
	EncodingUTF8     TextEncoding = 0x03 // v2.4 only
)

// Frame is a single parsed ID3v2 frame: a four-byte ID, the raw
// (already unsynchronisation-reversed) payload, and the frame-level
// flags. Unknown frame IDs carry their payload verbatim so they can be
// re-emitted unchanged.
type Frame struct {
	ID    FrameID
	Flags FrameFlags
	Data  []byte
}

// decodeText reads data as a single encoded string, following the
// encoding byte convention from spec §4.4. data must include the
// leading encoding byte.
func decodeText(data []byte, offset int) (string, error) {
	if len(data) == 0 {
		return "", errors.New("id3v2: empty text frame payload")
	}

	body := data[1:]
	switch TextEncoding(data[0]) {
	case EncodingLatin1:
		return cursor.DecodeLatin1Terminated(body), nil
	case EncodingUTF8:
		return cursor.DecodeUTF8Terminated(body), nil
	case EncodingUTF16BOM:
		return cursor.DecodeUTF16WithBOM(body, offset)
	case EncodingUTF16BE:
		return cursor.DecodeUTF16BE(body, offset)
	default:
		return "", errors.Errorf("id3v2: unsupported text encoding 0x%02x", data[0])
	}
}

// decodeTextMulti splits a v2.4 multi-value text frame on the
// encoding-appropriate NUL. Per spec §9's documented loss, callers
// mapping to a single-valued model field retain only the first value.
func decodeTextMulti(data []byte, offset int) ([]string, error) {
	if len(data) == 0 {
		return nil, errors.New("id3v2: empty text frame payload")
	}

	enc := TextEncoding(data[0])
	body := data[1:]

	switch enc {
	case EncodingLatin1, EncodingUTF8:
		var parts []string
		start := 0
		for i := 0; i < len(body); i++ {
			if body[i] == 0x00 {
				parts = append(parts, decodeSingle(body[start:i], enc))
				start = i + 1
			}
		}
		parts = append(parts, decodeSingle(body[start:], enc))
		return trimTrailingEmpty(parts), nil
	default:
		// UTF-16 variants: split is rare in practice; treat the whole
		// body as a single value rather than hunt for U+0000 pairs
		// that might be misaligned with surrogate pairs.
		s, err := decodeText(data, offset)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
}

func decodeSingle(b []byte, enc TextEncoding) string {
	if enc == EncodingLatin1 {
		return cursor.DecodeLatin1(b)
	}
	return string(b)
}

func trimTrailingEmpty(parts []string) []string {
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// Text decodes f's payload as a single text string. It is the codec's
// equivalent of the teacher's Frame.Text method, generalized to
// operate on the already-resynchronised Data field.
func (f *Frame) Text() (string, error) {
	return decodeText(f.Data, 0)
}

// encodeText encodes s with the given encoding and a trailing
// terminator appropriate to that encoding, returning the full payload
// including the leading encoding byte.
func encodeText(enc TextEncoding, s string) ([]byte, error) {
	w := cursor.NewWriter()
	w.WriteU8(byte(enc))

	switch enc {
	case EncodingLatin1:
		w.WriteLatin1(s)
		w.WriteNUL()
	case EncodingUTF8:
		w.WriteUTF8(s)
		w.WriteNUL()
	case EncodingUTF16BOM:
		if err := w.WriteUTF16WithBOM(s); err != nil {
			return nil, err
		}
		w.WriteU16(0)
	case EncodingUTF16BE:
		if err := w.WriteUTF16BE(s); err != nil {
			return nil, err
		}
		w.WriteU16(0)
	default:
		return nil, errors.Errorf("id3v2: unsupported text encoding 0x%02x", enc)
	}

	return w.Bytes(), nil
}

// defaultEncodingFor returns the text encoding to use for a given tag
// version: Latin-1 for v2.3 (for maximum compatibility; UTF-16 is
// still accepted on read), UTF-8 for v2.4.
func defaultEncodingFor(v Version) TextEncoding {
	if v == Version24 {
		return EncodingUTF8
	}
	return EncodingLatin1
}
