package exchange

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

func parseWebVTT(text string) (*ChapterSet, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) == 0 || !strings.HasPrefix(strings.TrimSpace(lines[0]), "WEBVTT") {
		return nil, errors.New("audiomarker: missing WEBVTT header")
	}

	set := &ChapterSet{}
	i := 1
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			i++
			continue
		}
		if !strings.Contains(line, "-->") {
			// Optional cue identifier line; the timing line follows.
			i++
			if i >= len(lines) {
				break
			}
			line = strings.TrimSpace(lines[i])
		}

		start, end, err := parseArrowLine(line, parseWebVTTClock)
		if err != nil {
			return nil, err
		}
		i++

		var textLines []string
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			textLines = append(textLines, lines[i])
			i++
		}

		set.Chapters = append(set.Chapters, ChapterEntry{
			Start: start,
			End:   &end,
			Title: strings.TrimSpace(strings.Join(textLines, " ")),
		})
	}

	return set, nil
}

func emitWebVTT(set *ChapterSet) (string, error) {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, e := range sortedByStart(set.Chapters) {
		fmt.Fprintf(&b, "%s --> %s\n", formatWebVTTClock(e.Start), formatWebVTTClock(chapterEnd(e)))
		b.WriteString(e.Title)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}
