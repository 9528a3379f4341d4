// Package exchange implements the plain-text chapter interchange
// formats: Podlove JSON/XML, MP4Chaps, FFMetadata, Podcasting 2.0
// JSON, cue sheets, LRC, TTML, WebVTT, SRT and Markdown. Every format
// but Markdown supports both directions; Markdown is export-only.
//
// The package also exposes LRC and TTML support for synchronized
// lyrics tracks directly, since the mp4 codec's lyrics track uses the
// same two formats (LRC for the common case, TTML when karaoke or
// speaker fidelity is needed).
package exchange

import "github.com/pkg/errors"

// Format identifies one of the supported chapter interchange formats.
type Format int

const (
	FormatPodloveJSON Format = iota
	FormatPodloveXML
	FormatMP4Chaps
	FormatFFMetadata
	FormatPodcasting2
	FormatCueSheet
	FormatLRC
	FormatTTML
	FormatWebVTT
	FormatSRT
	FormatMarkdown
)

func (f Format) String() string {
	switch f {
	case FormatPodloveJSON:
		return "podlove-json"
	case FormatPodloveXML:
		return "podlove-xml"
	case FormatMP4Chaps:
		return "mp4chaps"
	case FormatFFMetadata:
		return "ffmetadata"
	case FormatPodcasting2:
		return "podcasting2"
	case FormatCueSheet:
		return "cuesheet"
	case FormatLRC:
		return "lrc"
	case FormatTTML:
		return "ttml"
	case FormatWebVTT:
		return "webvtt"
	case FormatSRT:
		return "srt"
	case FormatMarkdown:
		return "markdown"
	default:
		return "unknown"
	}
}

type parseFunc func(string) (*ChapterSet, error)
type emitFunc func(*ChapterSet) (string, error)

type formatEntry struct {
	parse parseFunc
	emit  emitFunc
}

var registry = map[Format]formatEntry{
	FormatPodloveJSON: {parsePodloveJSON, emitPodloveJSON},
	FormatPodloveXML:  {parsePodloveXML, emitPodloveXML},
	FormatMP4Chaps:    {parseMP4Chaps, emitMP4Chaps},
	FormatFFMetadata:  {parseFFMetadata, emitFFMetadata},
	FormatPodcasting2: {parsePodcasting2, emitPodcasting2},
	FormatCueSheet:    {parseCueSheet, emitCueSheet},
	FormatLRC:         {parseLRCChapters, emitLRCChapters},
	FormatTTML:        {parseTTMLChapters, emitTTMLChapters},
	FormatWebVTT:      {parseWebVTT, emitWebVTT},
	FormatSRT:         {parseSRT, emitSRT},
	FormatMarkdown:    {nil, emitMarkdown},
}

// Parse decodes text in the given format into a ChapterSet. It
// returns an error for FormatMarkdown, which is export-only.
func Parse(format Format, text string) (*ChapterSet, error) {
	entry, ok := registry[format]
	if !ok || entry.parse == nil {
		return nil, errors.Errorf("audiomarker: format %s does not support import", format)
	}
	return entry.parse(text)
}

// Emit encodes a ChapterSet as text in the given format.
func Emit(format Format, set *ChapterSet) (string, error) {
	entry, ok := registry[format]
	if !ok || entry.emit == nil {
		return "", errors.Errorf("audiomarker: format %s does not support export", format)
	}
	return entry.emit(set)
}
