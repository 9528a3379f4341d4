package exchange

import (
	"fmt"
	"strings"

	"github.com/atelier-socle/audiomarker/model"
)

// emitMarkdown renders a bullet list of "- [HH:MM:SS] Title" lines.
// Markdown is export-only: there is no parseMarkdown.
func emitMarkdown(set *ChapterSet) (string, error) {
	var b strings.Builder
	for _, e := range sortedByStart(set.Chapters) {
		fmt.Fprintf(&b, "- [%s] %s\n", formatMarkdownClock(e.Start), e.Title)
	}
	return b.String(), nil
}

// formatMarkdownClock renders ms as "HH:MM:SS" (no milliseconds,
// matching the table's documented form).
func formatMarkdownClock(t model.Timestamp) string {
	ms := t.Milliseconds()
	hh := ms / 3600_000
	ms -= hh * 3600_000
	mm := ms / 60_000
	ms -= mm * 60_000
	ss := ms / 1000
	return fmt.Sprintf("%02d:%02d:%02d", hh, mm, ss)
}
