// Package detect classifies a file as MP3 (ID3v2-tagged MPEG audio) or
// one of the ISOBMFF variants (M4A, M4B) by magic bytes, refined by
// file extension, per spec §4.3.
package detect

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Format is a recognised container format.
type Format int

const (
	FormatUnknown Format = iota
	FormatMP3
	FormatM4A
	FormatM4B
)

func (f Format) String() string {
	switch f {
	case FormatMP3:
		return "mp3"
	case FormatM4A:
		return "m4a"
	case FormatM4B:
		return "m4b"
	default:
		return "unknown"
	}
}

// sniffLen is the number of leading bytes examined, matching spec
// §4.3's "read up to 12 bytes from offset 0".
const sniffLen = 12

// Detect classifies a file given its first sniffLen bytes (or fewer,
// if the file is shorter) and its path, used only to read the
// extension for ISOBMFF sub-type refinement and as a last-resort
// fallback.
func Detect(header []byte, path string) (Format, error) {
	if len(header) >= 3 && header[0] == 'I' && header[1] == 'D' && header[2] == '3' {
		return FormatMP3, nil
	}

	if len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0 {
		return FormatMP3, nil
	}

	if len(header) >= 8 && string(header[4:8]) == "ftyp" {
		if len(header) >= 12 && string(header[8:12]) == "M4B " {
			return FormatM4B, nil
		}
		return refineByExtension(path), nil
	}

	if f := formatFromExtension(path); f != FormatUnknown {
		return f, nil
	}

	return FormatUnknown, errors.Errorf("detect: unrecognised container: %s", path)
}

func refineByExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m4b":
		return FormatM4B
	default:
		return FormatM4A
	}
}

func formatFromExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return FormatMP3
	case ".m4b":
		return FormatM4B
	case ".m4a":
		return FormatM4A
	default:
		return FormatUnknown
	}
}

// SniffLen returns the number of leading bytes Detect needs.
func SniffLen() int { return sniffLen }
