package cursor

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Writer accumulates bytes into an owned buffer. Unlike Reader it
// always has bytes available to write to — Bytes exposes the
// always-available view of what has been written so far.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated buffer. The returned slice aliases the
// Writer's internal storage and is only valid until the next write.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// WriteU8 writes a single byte.
func (w *Writer) WriteU8(v byte) { w.buf.WriteByte(v) }

// WriteU16 writes a big-endian uint16.
func (w *Writer) WriteU16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// WriteU32 writes a big-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// WriteU64 writes a big-endian uint64.
func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// WriteSyncsafeU32 writes v as a 28-bit syncsafe integer. It returns
// false without writing anything if v exceeds MaxSyncsafe.
func (w *Writer) WriteSyncsafeU32(v uint32) bool {
	if v > MaxSyncsafe {
		return false
	}
	b := encodeSyncsafe(v)
	w.buf.Write(b[:])
	return true
}

// WriteBytes appends raw bytes verbatim.
func (w *Writer) WriteBytes(b []byte) { w.buf.Write(b) }

// WriteNUL appends a single 0x00 terminator byte.
func (w *Writer) WriteNUL() { w.buf.WriteByte(0x00) }

// WriteLatin1 encodes s as ISO-8859-1. Runes outside the Latin-1
// range are replaced with '?'.
func (w *Writer) WriteLatin1(s string) {
	for _, r := range s {
		if r > 0xff {
			r = '?'
		}
		w.buf.WriteByte(byte(r))
	}
}

// WriteUTF8 appends s as UTF-8, unchanged.
func (w *Writer) WriteUTF8(s string) { w.buf.WriteString(s) }

// WriteUTF16WithBOM encodes s as UTF-16LE with a leading byte-order
// mark, the form ID3v2's encoding 0x01 requires.
func (w *Writer) WriteUTF16WithBOM(s string) error {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	out, _, err := transform.Bytes(enc.NewEncoder(), []byte(s))
	if err != nil {
		return err
	}
	w.buf.Write(out)
	return nil
}

// WriteUTF16BE encodes s as big-endian UTF-16 with no BOM.
func (w *Writer) WriteUTF16BE(s string) error {
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	out, _, err := transform.Bytes(enc.NewEncoder(), []byte(s))
	if err != nil {
		return err
	}
	w.buf.Write(out)
	return nil
}
