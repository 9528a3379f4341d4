package exchange

import (
	"strings"

	"github.com/pkg/errors"
)

// parseMP4Chaps parses the `mp4chaps`/Chapter-tool line format:
// "HH:MM:SS.mmm Title" per line, blank lines ignored.
func parseMP4Chaps(text string) (*ChapterSet, error) {
	set := &ChapterSet{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("audiomarker: invalid mp4chaps line %q", line)
		}

		start, err := parseClock(parts[0])
		if err != nil {
			return nil, err
		}

		set.Chapters = append(set.Chapters, ChapterEntry{Start: start, Title: strings.TrimSpace(parts[1])})
	}
	return set, nil
}

func emitMP4Chaps(set *ChapterSet) (string, error) {
	var b strings.Builder
	for _, e := range sortedByStart(set.Chapters) {
		b.WriteString(formatClock(e.Start))
		b.WriteByte(' ')
		b.WriteString(e.Title)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
