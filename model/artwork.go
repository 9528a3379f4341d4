package model

import (
	"bytes"

	"github.com/pkg/errors"
)

// ArtworkFormat is the declared image format of an Artwork value. Only
// JPEG and PNG are supported anywhere in audiomarker — see spec §1
// non-goals.
type ArtworkFormat int

const (
	// ArtworkFormatUnknown marks an Artwork value that has not been
	// classified; it is never returned by DetectArtworkFormat.
	ArtworkFormatUnknown ArtworkFormat = iota
	ArtworkFormatJPEG
	ArtworkFormatPNG
)

func (f ArtworkFormat) String() string {
	switch f {
	case ArtworkFormatJPEG:
		return "jpeg"
	case ArtworkFormatPNG:
		return "png"
	default:
		return "unknown"
	}
}

// MIMEType returns the canonical MIME type for the format.
func (f ArtworkFormat) MIMEType() string {
	switch f {
	case ArtworkFormatJPEG:
		return "image/jpeg"
	case ArtworkFormatPNG:
		return "image/png"
	default:
		return ""
	}
}

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
)

// DetectArtworkFormat classifies image bytes by magic number.
func DetectArtworkFormat(data []byte) (ArtworkFormat, error) {
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return ArtworkFormatJPEG, nil
	case bytes.HasPrefix(data, pngMagic):
		return ArtworkFormatPNG, nil
	default:
		return ArtworkFormatUnknown, errors.New("audiomarker: artwork is not JPEG or PNG")
	}
}

// Artwork is opaque embedded cover art plus its declared format.
type Artwork struct {
	Data   []byte
	Format ArtworkFormat
}

// NewArtwork detects the format from the image bytes and returns an
// Artwork value, or an artwork-error if the bytes are neither JPEG nor
// PNG.
func NewArtwork(data []byte) (Artwork, error) {
	format, err := DetectArtworkFormat(data)
	if err != nil {
		return Artwork{}, err
	}

	return Artwork{Data: data, Format: format}, nil
}

// IsZero reports whether a is the empty value (no artwork present).
func (a Artwork) IsZero() bool { return len(a.Data) == 0 && a.Format == ArtworkFormatUnknown }
