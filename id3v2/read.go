package id3v2

import (
	"github.com/atelier-socle/audiomarker/cursor"
)

// ReadOptions controls the leniency of ReadTag.
type ReadOptions struct {
	// Strict disables best-effort recovery: any malformed frame
	// becomes a fatal error instead of being dropped. Defaults to
	// false (lenient), matching spec §4.4's failure semantics.
	Strict bool
}

// ParsedTag is the result of ReadTag: the tag itself plus the total
// number of bytes it occupies in the file (header + frame block),
// i.e. the offset at which the audio stream begins.
type ParsedTag struct {
	Tag      Tag
	TagSize  int // HeaderSize + body size, audio starts here
}

// ReadTag parses an ID3v2 tag from the start of data. data should
// contain at least the tag (audio bytes following it are ignored).
func ReadTag(data []byte, opts ReadOptions) (*ParsedTag, error) {
	if len(data) < HeaderSize {
		return nil, InvalidTagErrorf(0, "file shorter than tag header")
	}

	if data[0] != TagID3[0] || data[1] != TagID3[1] || data[2] != TagID3[2] {
		return nil, InvalidTagErrorf(0, "missing ID3 magic")
	}

	version := Version(data[3])
	if version != Version23 && version != Version24 {
		return nil, InvalidTagErrorf(3, "unsupported ID3v2 version 0x%02x", byte(version))
	}

	revision := data[4]
	_ = revision

	flags := data[5]
	if flags&^knownTagFlags != 0 {
		return nil, InvalidTagErrorf(5, "unknown tag flags set")
	}

	r := cursor.NewReader(data[6:10])
	size, err := r.ReadSyncsafeU32()
	if err != nil {
		return nil, InvalidTagErrorf(6, "invalid tag size")
	}

	tagUnsync := flags&tagFlagUnsynchronisation != 0

	bodyEnd := HeaderSize + int(size)
	if bodyEnd > len(data) {
		return nil, InvalidTagErrorf(HeaderSize, "declared tag size exceeds file length")
	}

	body := data[HeaderSize:bodyEnd]

	if flags&tagFlagFooter != 0 {
		if len(body) < 10 {
			return nil, InvalidTagErrorf(HeaderSize, "footer flag set but body too short")
		}
		body = body[:len(body)-10]
	}

	if flags&tagFlagExtendedHeader != 0 {
		body, err = skipExtendedHeader(body, version)
		if err != nil {
			return nil, err
		}
	}

	tag := &Tag{Version: version}

	for len(body) >= HeaderSize {
		pf, ok, perr := parseFrame(body, version, tagUnsync)
		if perr != nil {
			if opts.Strict {
				return nil, perr
			}
			// Best-effort: stop at the first malformed frame, as we
			// can no longer trust where the next frame begins.
			break
		}
		if !ok {
			break // zero ID: start of padding
		}

		tag.Frames = append(tag.Frames, pf.frame)
		body = body[pf.consumed:]
	}

	return &ParsedTag{Tag: *tag, TagSize: bodyEnd}, nil
}

// skipExtendedHeader consumes and discards a v2.3/v2.4 extended
// header, returning the remaining frame data. audiomarker does not
// expose extended-header fields (CRC, restrictions) — spec §4.4 does
// not name them among the mapped fields.
func skipExtendedHeader(body []byte, version Version) ([]byte, error) {
	if version == Version24 {
		r := cursor.NewReader(body)
		size, err := r.ReadSyncsafeU32()
		if err != nil || int(size) > len(body) {
			return nil, InvalidTagErrorf(0, "invalid extended header size")
		}
		return body[size:], nil
	}

	// v2.3: a plain uint32 size, not including the 4 size bytes
	// themselves.
	if len(body) < 4 {
		return nil, InvalidTagErrorf(0, "extended header truncated")
	}
	r := cursor.NewReader(body[:4])
	sz, _ := r.ReadU32()
	total := 4 + int(sz)
	if total > len(body) {
		return nil, InvalidTagErrorf(0, "invalid extended header size")
	}
	return body[total:], nil
}
