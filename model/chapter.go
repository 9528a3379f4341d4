package model

import (
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Chapter is a single named time span within an audio file. Identity
// (ID) is stable for the lifetime of the in-memory value and is
// generated once at construction; it has no meaning across files or
// processes.
type Chapter struct {
	ID       uuid.UUID
	Start    Timestamp
	Title    string
	End      *Timestamp
	URL      string
	ImageURL string
	Artwork  *Artwork
}

// NewChapter constructs a Chapter, validating the required start
// timestamp and non-empty title, and generating a fresh identity.
func NewChapter(start Timestamp, title string) (Chapter, error) {
	if title == "" {
		return Chapter{}, errors.New("audiomarker: chapter title must not be empty")
	}

	return Chapter{
		ID:    uuid.New(),
		Start: start,
		Title: title,
	}, nil
}

// WithEnd returns a copy of c with End set, validating Start < end.
func (c Chapter) WithEnd(end Timestamp) (Chapter, error) {
	if !c.Start.Before(end) {
		return Chapter{}, errors.Errorf("audiomarker: chapter end %s must be after start %s", end, c.Start)
	}

	out := c
	out.End = &end
	return out, nil
}

// ChapterList is an ordered, mutable sequence of chapters.
type ChapterList struct {
	chapters []Chapter
}

// NewChapterList builds a ChapterList from an initial slice, copying
// it so later mutation of the caller's slice has no effect.
func NewChapterList(chapters ...Chapter) *ChapterList {
	cl := &ChapterList{chapters: make([]Chapter, len(chapters))}
	copy(cl.chapters, chapters)
	return cl
}

// Len returns the number of chapters.
func (cl *ChapterList) Len() int { return len(cl.chapters) }

// At returns the chapter at index i.
func (cl *ChapterList) At(i int) Chapter { return cl.chapters[i] }

// All returns a copy of the chapter slice in current order.
func (cl *ChapterList) All() []Chapter {
	out := make([]Chapter, len(cl.chapters))
	copy(out, cl.chapters)
	return out
}

// Append adds a chapter at the end of the list.
func (cl *ChapterList) Append(c Chapter) {
	cl.chapters = append(cl.chapters, c)
}

// InsertAt inserts c at index i, shifting later chapters right. i must
// be in [0, Len()].
func (cl *ChapterList) InsertAt(i int, c Chapter) error {
	if i < 0 || i > len(cl.chapters) {
		return errors.Errorf("audiomarker: chapter index %d out of range [0, %d]", i, len(cl.chapters))
	}

	cl.chapters = append(cl.chapters, Chapter{})
	copy(cl.chapters[i+1:], cl.chapters[i:])
	cl.chapters[i] = c
	return nil
}

// RemoveAt removes the chapter at index i.
func (cl *ChapterList) RemoveAt(i int) error {
	if i < 0 || i >= len(cl.chapters) {
		return errors.Errorf("audiomarker: chapter index %d out of range [0, %d)", i, len(cl.chapters))
	}

	cl.chapters = append(cl.chapters[:i], cl.chapters[i+1:]...)
	return nil
}

// SortByStart sorts the list in place by ascending start time. The
// sort is stable so chapters sharing a start time keep their relative
// order.
func (cl *ChapterList) SortByStart() {
	sort.SliceStable(cl.chapters, func(i, j int) bool {
		return cl.chapters[i].Start.Before(cl.chapters[j].Start)
	})
}

// WithCalculatedEndTimes returns a new ChapterList, derived from cl,
// in which every chapter missing an End has one filled in: the next
// chapter's Start, or audioDuration for the final chapter. cl itself
// is not mutated. The chapters are assumed to already be in start
// order; callers should SortByStart first if that is not guaranteed.
func (cl *ChapterList) WithCalculatedEndTimes(audioDuration Timestamp) *ChapterList {
	out := NewChapterList(cl.All()...)

	for i := range out.chapters {
		if out.chapters[i].End != nil {
			continue
		}

		var end Timestamp
		if i+1 < len(out.chapters) {
			end = out.chapters[i+1].Start
		} else {
			end = audioDuration
		}

		out.chapters[i].End = &end
	}

	return out
}
