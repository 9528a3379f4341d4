package exchange

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atelier-socle/audiomarker/model"
	"github.com/pkg/errors"
)

// parseSRT parses a SubRip file as a chapter list: each cue's text
// becomes the chapter title, its start/end become the chapter bounds.
// SRT has no notion of a chapter URL, so ChapterEntry.URL stays empty
// on import (documented round-trip loss, per the exchange table).
func parseSRT(text string) (*ChapterSet, error) {
	set := &ChapterSet{}
	blocks := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")

	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		if len(lines) < 2 {
			continue
		}

		idx := 0
		if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err == nil {
			idx = 1
		}
		if idx >= len(lines) {
			return nil, errors.Errorf("audiomarker: malformed srt block %q", block)
		}

		start, end, err := parseArrowLine(lines[idx], parseSRTClock)
		if err != nil {
			return nil, err
		}

		title := strings.Join(lines[idx+1:], " ")
		set.Chapters = append(set.Chapters, ChapterEntry{Start: start, End: &end, Title: strings.TrimSpace(title)})
	}

	return set, nil
}

func emitSRT(set *ChapterSet) (string, error) {
	var b strings.Builder
	for i, e := range sortedByStart(set.Chapters) {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", formatSRTClock(e.Start), formatSRTClock(chapterEnd(e)))
		b.WriteString(e.Title)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// parseArrowLine parses a "<start> --> <end>" cue timing line with
// the given clock parser.
func parseArrowLine(line string, parse func(string) (model.Timestamp, error)) (model.Timestamp, model.Timestamp, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return model.Timestamp{}, model.Timestamp{}, errors.Errorf("audiomarker: invalid cue timing line %q", line)
	}
	start, err := parse(strings.TrimSpace(parts[0]))
	if err != nil {
		return model.Timestamp{}, model.Timestamp{}, err
	}
	endField := strings.Fields(strings.TrimSpace(parts[1]))
	if len(endField) == 0 {
		return model.Timestamp{}, model.Timestamp{}, errors.Errorf("audiomarker: invalid cue timing line %q", line)
	}
	end, err := parse(endField[0])
	if err != nil {
		return model.Timestamp{}, model.Timestamp{}, err
	}
	return start, end, nil
}

// chapterEnd returns e.End if present, otherwise e.Start (a
// zero-length cue is preferable to an emitter error when no end
// time was ever recorded for a chapter).
func chapterEnd(e ChapterEntry) model.Timestamp {
	if e.End != nil {
		return *e.End
	}
	return e.Start
}
