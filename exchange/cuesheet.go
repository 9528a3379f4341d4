package exchange

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func parseCueSheet(text string) (*ChapterSet, error) {
	set := &ChapterSet{}
	var title string
	var haveTrack bool
	var start *ChapterEntry

	flush := func() error {
		if !haveTrack {
			return nil
		}
		if start == nil {
			return errors.New("audiomarker: cue track missing INDEX 01")
		}
		start.Title = title
		set.Chapters = append(set.Chapters, *start)
		return nil
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "TRACK "):
			if err := flush(); err != nil {
				return nil, err
			}
			haveTrack = true
			title = ""
			start = nil
		case strings.HasPrefix(line, "TITLE "):
			title = unquoteCue(strings.TrimSpace(line[len("TITLE "):]))
		case strings.HasPrefix(line, "INDEX 01 "):
			ts, err := parseCueFrames(line[len("INDEX 01 "):])
			if err != nil {
				return nil, err
			}
			entry := ChapterEntry{Start: ts}
			start = &entry
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return set, nil
}

func emitCueSheet(set *ChapterSet) (string, error) {
	var b strings.Builder
	for i, e := range sortedByStart(set.Chapters) {
		fmt.Fprintf(&b, "TRACK %02d AUDIO\n", i+1)
		fmt.Fprintf(&b, "  TITLE %q\n", e.Title)
		fmt.Fprintf(&b, "  INDEX 01 %s\n", formatCueFrames(e.Start))
	}
	return b.String(), nil
}

func unquoteCue(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	unq, err := strconv.Unquote(s)
	if err != nil {
		return s
	}
	return unq
}
