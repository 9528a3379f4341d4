package cursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncsafeRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 16384, MaxSyncsafe} {
		encoded := encodeSyncsafe(v)
		got := decodeSyncsafe(encoded[:])
		assert.Equal(t, v, got)
	}
}

func TestSyncsafeRejectsHighBit(t *testing.T) {
	got := decodeSyncsafe([]byte{0x80, 0x00, 0x00, 0x00})
	assert.Equal(t, syncsafeInvalid, got)
}

func TestWriterReaderSyncsafeRoundTrip(t *testing.T) {
	w := NewWriter()
	assert.True(t, w.WriteSyncsafeU32(12345))
	assert.False(t, w.WriteSyncsafeU32(MaxSyncsafe+1))

	r := NewReader(w.Bytes())
	v, err := r.ReadSyncsafeU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(12345), v)
}

func TestReaderBasicTypes(t *testing.T) {
	w := NewWriter()
	w.WriteU8(0x42)
	w.WriteU16(0x1234)
	w.WriteU32(0xdeadbeef)

	r := NewReader(w.Bytes())
	u8, err := r.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), u8)

	u16, err := r.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := r.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), u32)

	assert.Equal(t, 0, r.Remaining())
}

func TestReaderNeedsMoreDataFails(t *testing.T) {
	r := NewReader([]byte{0x01})
	_, err := r.ReadU32()
	assert.Error(t, err)
}

func TestReadUntilNUL(t *testing.T) {
	r := NewReader([]byte("hello\x00world"))
	got := r.ReadUntilNUL()
	assert.Equal(t, "hello", string(got))

	rest := r.ReadBytesRemaining()
	assert.Equal(t, "world", string(rest))
}

func TestDecodeLatin1Terminated(t *testing.T) {
	assert.Equal(t, "abc", DecodeLatin1Terminated([]byte("abc\x00")))
	assert.Equal(t, "abc", DecodeLatin1Terminated([]byte("abc")))
}

func TestUTF16WithBOMRoundTrip(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteUTF16WithBOM("héllo"))

	got, err := DecodeUTF16WithBOM(w.Bytes(), 0)
	require.NoError(t, err)
	assert.Equal(t, "héllo", got)
}

func TestUTF16BERoundTrip(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteUTF16BE("test"))

	got, err := DecodeUTF16BE(w.Bytes(), 0)
	require.NoError(t, err)
	assert.Equal(t, "test", got)
}

func TestDecodeUTF16WithBOMRejectsMissingBOM(t *testing.T) {
	_, err := DecodeUTF16WithBOM([]byte{0x00, 0x41}, 0)
	assert.Error(t, err)
}
