package exchange

import (
	"sort"

	"github.com/atelier-socle/audiomarker/model"
)

// ChapterSet is the interchange-neutral representation every format
// parses into and emits from. It carries the same fields as
// model.Chapter but as plain values, since interchange formats have
// no notion of the library's generated chapter identity.
type ChapterSet struct {
	Chapters []ChapterEntry
}

// ChapterEntry is one chapter as represented in a text interchange
// format.
type ChapterEntry struct {
	Start    model.Timestamp
	End      *model.Timestamp
	Title    string
	URL      string
	ImageURL string
}

// FromChapterList converts a model.ChapterList into interchange form.
func FromChapterList(cl *model.ChapterList) *ChapterSet {
	set := &ChapterSet{}
	for _, ch := range cl.All() {
		set.Chapters = append(set.Chapters, ChapterEntry{
			Start:    ch.Start,
			End:      ch.End,
			Title:    ch.Title,
			URL:      ch.URL,
			ImageURL: ch.ImageURL,
		})
	}
	return set
}

// ToChapterList converts interchange form back into a model.ChapterList.
// Entries with an empty title are skipped, since model.NewChapter
// rejects them.
func (set *ChapterSet) ToChapterList() *model.ChapterList {
	cl := model.NewChapterList()
	if set == nil {
		return cl
	}
	for _, e := range set.Chapters {
		ch, err := model.NewChapter(e.Start, e.Title)
		if err != nil {
			continue
		}
		ch.End = e.End
		ch.URL = e.URL
		ch.ImageURL = e.ImageURL
		cl.Append(ch)
	}
	return cl
}

// sortedByStart returns a copy of entries ordered by ascending start
// time, stable.
func sortedByStart(entries []ChapterEntry) []ChapterEntry {
	out := make([]ChapterEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
