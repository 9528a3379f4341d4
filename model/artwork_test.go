package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectArtworkFormat(t *testing.T) {
	jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 10)...)
	png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 10)...)

	f, err := DetectArtworkFormat(jpeg)
	require.NoError(t, err)
	assert.Equal(t, ArtworkFormatJPEG, f)
	assert.Equal(t, "image/jpeg", f.MIMEType())

	f, err = DetectArtworkFormat(png)
	require.NoError(t, err)
	assert.Equal(t, ArtworkFormatPNG, f)
	assert.Equal(t, "image/png", f.MIMEType())

	_, err = DetectArtworkFormat([]byte{0x00, 0x01, 0x02})
	assert.Error(t, err)
}

func TestNewArtworkRejectsUnknownFormat(t *testing.T) {
	_, err := NewArtwork([]byte("not an image"))
	assert.Error(t, err)
}

func TestArtworkIsZero(t *testing.T) {
	var a Artwork
	assert.True(t, a.IsZero())

	jpeg := append([]byte{0xFF, 0xD8, 0xFF}, make([]byte, 10)...)
	art, err := NewArtwork(jpeg)
	require.NoError(t, err)
	assert.False(t, art.IsZero())
}
