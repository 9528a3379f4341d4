package exchange

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/atelier-socle/audiomarker/model"
	"github.com/pkg/errors"
)

var lrcLinePattern = regexp.MustCompile(`^\[(\d{1,3}:\d{2}(?:\.\d{1,3})?)\](.*)$`)
var lrcMetaPattern = regexp.MustCompile(`^\[[a-z]{2,4}:[^\]]*\]\s*$`)

// parseLRCChapters reads an LRC file as a chapter list: one chapter
// per timed line. LRC lines carry start times only, so no chapter is
// given an End.
func parseLRCChapters(text string) (*ChapterSet, error) {
	lines, err := parseLRCLines(text)
	if err != nil {
		return nil, err
	}

	set := &ChapterSet{}
	for _, l := range lines {
		set.Chapters = append(set.Chapters, ChapterEntry{Start: l.Time, Title: l.Text})
	}
	return set, nil
}

func emitLRCChapters(set *ChapterSet) (string, error) {
	var b strings.Builder
	for _, e := range sortedByStart(set.Chapters) {
		b.WriteString(formatLRCClock(e.Start))
		b.WriteByte(' ')
		b.WriteString(e.Title)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// parseLRCLines splits raw LRC text into timed lines, skipping
// metadata tags such as [ti:]/[ar:]/[al:] and blank lines.
func parseLRCLines(text string) ([]model.LyricLine, error) {
	var out []model.LyricLine
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if lrcMetaPattern.MatchString(line) {
			continue
		}

		m := lrcLinePattern.FindStringSubmatch(line)
		if m == nil {
			return nil, errors.Errorf("audiomarker: invalid LRC line %q", line)
		}

		ts, err := parseLRCClock(m[1])
		if err != nil {
			return nil, err
		}
		out = append(out, model.LyricLine{Time: ts, Text: strings.TrimSpace(m[2])})
	}
	return out, nil
}

// ParseLRCLyrics parses an LRC file into a single-language
// SynchronizedLyrics track. LRC has no notion of speakers or
// word-level segments, so those fields are always empty on import.
func ParseLRCLyrics(text, language string) (*model.SynchronizedLyrics, error) {
	lines, err := parseLRCLines(text)
	if err != nil {
		return nil, err
	}
	sl := &model.SynchronizedLyrics{
		Language:    language,
		ContentType: model.LyricContentLyrics,
		Lines:       lines,
	}
	return sl, nil
}

// EmitLRCLyrics renders a SynchronizedLyrics track as LRC text.
// Speaker labels and word-level segments are dropped (documented
// round-trip loss).
func EmitLRCLyrics(sl model.SynchronizedLyrics) string {
	var b strings.Builder
	for _, l := range sl.Sorted().Lines {
		fmt.Fprintf(&b, "%s %s\n", formatLRCClock(l.Time), l.Text)
	}
	return b.String()
}
