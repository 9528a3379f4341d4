package exchange

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atelier-socle/audiomarker/model"
	"github.com/pkg/errors"
)

const ffmetadataHeader = ";FFMETADATA1"

func parseFFMetadata(text string) (*ChapterSet, error) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != ffmetadataHeader {
		return nil, errors.New("audiomarker: missing ;FFMETADATA1 header")
	}

	set := &ChapterSet{}
	var inChapter bool
	var timebaseNum, timebaseDen int64 = 1, 1000
	var startMs, endMs int64
	var haveStart, haveEnd bool
	var title string

	flush := func() error {
		if !inChapter {
			return nil
		}
		if !haveStart {
			return errors.New("audiomarker: ffmetadata chapter missing START")
		}
		start, err := model.NewTimestampFromMillis(scaleToMillis(startMs, timebaseNum, timebaseDen))
		if err != nil {
			return err
		}
		entry := ChapterEntry{Start: start, Title: title}
		if haveEnd {
			end, err := model.NewTimestampFromMillis(scaleToMillis(endMs, timebaseNum, timebaseDen))
			if err != nil {
				return err
			}
			entry.End = &end
		}
		set.Chapters = append(set.Chapters, entry)
		return nil
	}

	for _, raw := range lines[1:] {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if trimmed == "[CHAPTER]" {
			if err := flush(); err != nil {
				return nil, err
			}
			inChapter = true
			timebaseNum, timebaseDen = 1, 1000
			haveStart, haveEnd = false, false
			title = ""
			continue
		}
		if strings.HasPrefix(trimmed, "[") {
			if err := flush(); err != nil {
				return nil, err
			}
			inChapter = false
			continue
		}
		if !inChapter {
			continue
		}

		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			continue
		}
		switch key {
		case "TIMEBASE":
			num, den, err := parseFraction(value)
			if err != nil {
				return nil, err
			}
			timebaseNum, timebaseDen = num, den
		case "START":
			v, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, errors.Wrap(err, "audiomarker: invalid START")
			}
			startMs = v
			haveStart = true
		case "END":
			v, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, errors.Wrap(err, "audiomarker: invalid END")
			}
			endMs = v
			haveEnd = true
		case "title":
			title = unescapeFFMetadata(value)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return set, nil
}

func emitFFMetadata(set *ChapterSet) (string, error) {
	var b strings.Builder
	b.WriteString(ffmetadataHeader)
	b.WriteByte('\n')
	for _, e := range sortedByStart(set.Chapters) {
		b.WriteString("[CHAPTER]\n")
		b.WriteString("TIMEBASE=1/1000\n")
		fmt.Fprintf(&b, "START=%d\n", e.Start.Milliseconds())
		if e.End != nil {
			fmt.Fprintf(&b, "END=%d\n", e.End.Milliseconds())
		}
		fmt.Fprintf(&b, "title=%s\n", escapeFFMetadata(e.Title))
	}
	return b.String(), nil
}

func scaleToMillis(v, num, den int64) int64 {
	if den == 0 {
		den = 1
	}
	return v * num * 1000 / den
}

func parseFraction(s string) (int64, int64, error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, errors.Errorf("audiomarker: invalid TIMEBASE %q", s)
	}
	n, err1 := strconv.ParseInt(num, 10, 64)
	d, err2 := strconv.ParseInt(den, 10, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0, 0, errors.Errorf("audiomarker: invalid TIMEBASE %q", s)
	}
	return n, d, nil
}

// escapeFFMetadata escapes the characters ffmpeg's metadata format
// treats specially in values: '=', ';', '#', '\' and newline.
func escapeFFMetadata(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '=', ';', '#', '\\', '\n':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func unescapeFFMetadata(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
