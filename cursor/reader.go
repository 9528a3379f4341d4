package cursor

import (
	"encoding/binary"
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"
)

// Reader is a bounds-checked, big-endian cursor over an immutable
// byte slice. It never copies the source buffer; every read either
// returns a sub-slice of it or decodes in place.
type Reader struct {
	buf []byte
	off int
}

// NewReader wraps data for sequential, bounds-checked reads. data is
// not copied and must not be mutated while the Reader is in use.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Len returns the total size of the underlying buffer.
func (r *Reader) Len() int { return len(r.buf) }

// Offset returns the current read position.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

func (r *Reader) need(n int) error {
	if r.off+n > len(r.buf) || n < 0 {
		return &UnexpectedEndOfDataError{Offset: r.off, Requested: n, Available: len(r.buf) - r.off}
	}
	return nil
}

// Seek moves the read position to an absolute offset.
func (r *Reader) Seek(offset int) error {
	if offset < 0 || offset > len(r.buf) {
		return &SeekOutOfBoundsError{Offset: offset, Size: len(r.buf)}
	}
	r.off = offset
	return nil
}

// Skip advances the read position by n bytes.
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.off += n
	return nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

// ReadU16 reads a big-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

// ReadU32 reads a big-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

// ReadU64 reads a big-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

// ReadSyncsafeU32 reads a 28-bit syncsafe integer (four bytes, seven
// significant low bits each). It fails with InvalidEncodingError if
// any byte has its top bit set.
func (r *Reader) ReadSyncsafeU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := decodeSyncsafe(r.buf[r.off : r.off+4])
	if v == syncsafeInvalid {
		return 0, &InvalidEncodingError{Offset: r.off}
	}
	r.off += 4
	return v, nil
}

// ReadBytesRemaining returns every unread byte as a sub-slice of the
// underlying buffer and advances the cursor to the end.
func (r *Reader) ReadBytesRemaining() []byte {
	v := r.buf[r.off:]
	r.off = len(r.buf)
	return v
}

// ReadBytes returns the next n bytes as a sub-slice of the underlying
// buffer (not a copy).
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.buf[r.off : r.off+n]
	r.off += n
	return v, nil
}

// ReadUntilNUL reads bytes up to and consuming a single 0x00
// terminator byte. The terminator is not included in the returned
// slice. If no terminator is found before the end of the buffer, all
// remaining bytes are returned without error (matching lenient
// real-world tags per spec §4.4).
func (r *Reader) ReadUntilNUL() []byte {
	start := r.off
	for r.off < len(r.buf) && r.buf[r.off] != 0x00 {
		r.off++
	}
	out := r.buf[start:r.off]
	if r.off < len(r.buf) {
		r.off++ // consume the terminator
	}
	return out
}

// DecodeLatin1 decodes data as ISO-8859-1, where every byte maps
// directly to the Unicode code point of the same value.
func DecodeLatin1(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// DecodeLatin1Terminated behaves like DecodeLatin1 but first strips a
// single trailing 0x00 byte, if present.
func DecodeLatin1Terminated(data []byte) string {
	if len(data) > 0 && data[len(data)-1] == 0x00 {
		data = data[:len(data)-1]
	}
	return DecodeLatin1(data)
}

// DecodeUTF8Terminated decodes data as UTF-8, stripping a single
// trailing 0x00 byte if present.
func DecodeUTF8Terminated(data []byte) string {
	if len(data) > 0 && data[len(data)-1] == 0x00 {
		data = data[:len(data)-1]
	}
	return string(data)
}

// DecodeUTF16WithBOM decodes data as UTF-16 with a leading byte-order
// mark, stripping a single trailing 0x0000 terminator if present. It
// fails with InvalidEncodingError if the BOM is missing or invalid, or
// the data is not an even number of bytes.
func DecodeUTF16WithBOM(data []byte, offset int) (string, error) {
	if len(data) < 2 {
		return "", &InvalidEncodingError{Offset: offset}
	}

	var endian unicode.Endianness
	switch {
	case data[0] == 0xff && data[1] == 0xfe:
		endian = unicode.LittleEndian
	case data[0] == 0xfe && data[1] == 0xff:
		endian = unicode.BigEndian
	default:
		return "", &InvalidEncodingError{Offset: offset}
	}

	return decodeUTF16(data[2:], endian, offset)
}

// DecodeUTF16BE decodes data as big-endian UTF-16 with no BOM,
// stripping a single trailing 0x0000 terminator if present.
func DecodeUTF16BE(data []byte, offset int) (string, error) {
	return decodeUTF16(data, unicode.BigEndian, offset)
}

func decodeUTF16(data []byte, endian unicode.Endianness, offset int) (string, error) {
	if len(data)%2 != 0 {
		return "", &InvalidEncodingError{Offset: offset}
	}

	var order interface {
		Uint16([]byte) uint16
	}
	if endian == unicode.LittleEndian {
		order = littleEndian16{}
	} else {
		order = binary.BigEndian
	}

	u16s := make([]uint16, len(data)/2)
	for i := range u16s {
		u16s[i] = order.Uint16(data[i*2:])
	}

	if len(u16s) != 0 && u16s[len(u16s)-1] == 0x0000 {
		u16s = u16s[:len(u16s)-1]
	}

	return string(utf16.Decode(u16s)), nil
}

type littleEndian16 struct{}

func (littleEndian16) Uint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}
