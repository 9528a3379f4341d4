package validate

import (
	"time"

	"github.com/atelier-socle/audiomarker/model"
)

func currentYearFn() int { return time.Now().Year() }

type chapterOrderRule struct{}

func (chapterOrderRule) Name() string { return "chapter-order" }

func (chapterOrderRule) Validate(info model.AudioFileInfo) []Issue {
	if info.Chapters == nil {
		return nil
	}
	var issues []Issue
	all := info.Chapters.All()
	for i := 1; i < len(all); i++ {
		if all[i].Start.Before(all[i-1].Start) {
			issues = append(issues, Issue{
				Rule:     "chapter-order",
				Severity: SeverityError,
				Message:  "chapter start times must be non-decreasing",
				Context:  chapterContext(i, all[i]),
			})
		}
	}
	return issues
}

type chapterOverlapRule struct{}

func (chapterOverlapRule) Name() string { return "chapter-overlap" }

func (chapterOverlapRule) Validate(info model.AudioFileInfo) []Issue {
	if info.Chapters == nil {
		return nil
	}
	var issues []Issue
	all := info.Chapters.All()
	for i := 0; i+1 < len(all); i++ {
		if all[i].End == nil {
			continue
		}
		if all[i].End.After(all[i+1].Start) {
			issues = append(issues, Issue{
				Rule:     "chapter-overlap",
				Severity: SeverityError,
				Message:  "chapter end must not be after the next chapter's start",
				Context:  chapterContext(i, all[i]),
			})
		}
	}
	return issues
}

type chapterTitleRule struct{}

func (chapterTitleRule) Name() string { return "chapter-title" }

func (chapterTitleRule) Validate(info model.AudioFileInfo) []Issue {
	if info.Chapters == nil {
		return nil
	}
	var issues []Issue
	for i, ch := range info.Chapters.All() {
		if ch.Title == "" {
			issues = append(issues, Issue{
				Rule:     "chapter-title",
				Severity: SeverityError,
				Message:  "chapter title must not be empty",
				Context:  chapterContext(i, ch),
			})
		}
	}
	return issues
}

type chapterBoundsRule struct{}

func (chapterBoundsRule) Name() string { return "chapter-bounds" }

func (chapterBoundsRule) Validate(info model.AudioFileInfo) []Issue {
	if info.Chapters == nil {
		return nil
	}
	var issues []Issue
	for i, ch := range info.Chapters.All() {
		if ch.End != nil && !ch.Start.Before(*ch.End) {
			issues = append(issues, Issue{
				Rule:     "chapter-bounds",
				Severity: SeverityError,
				Message:  "chapter start must be before its end",
				Context:  chapterContext(i, ch),
			})
		}
	}
	return issues
}

type chapterNonNegativeRule struct{}

func (chapterNonNegativeRule) Name() string { return "chapter-non-negative" }

func (chapterNonNegativeRule) Validate(info model.AudioFileInfo) []Issue {
	// Timestamp cannot represent a negative value (model.NewTimestampFromMillis
	// rejects it at construction), so this rule is structurally satisfied by
	// every Chapter already in the list. It is still run, per the default
	// rule set, in case a future Timestamp constructor relaxes that
	// invariant.
	return nil
}

type metadataTitleRule struct{}

func (metadataTitleRule) Name() string { return "metadata-title" }

func (metadataTitleRule) Validate(info model.AudioFileInfo) []Issue {
	if info.Metadata.Title == "" {
		return []Issue{{
			Rule:     "metadata-title",
			Severity: SeverityWarning,
			Message:  "title is empty or missing",
		}}
	}
	return nil
}

type metadataYearRule struct {
	currentYear func() int
}

func (metadataYearRule) Name() string { return "metadata-year" }

func (r metadataYearRule) Validate(info model.AudioFileInfo) []Issue {
	if info.Metadata.Year == nil {
		return nil
	}
	y := *info.Metadata.Year
	max := r.currentYear() + 1
	if y <= 0 || y > max {
		return []Issue{{
			Rule:     "metadata-year",
			Severity: SeverityError,
			Message:  "year must be greater than 0 and no more than one year in the future",
			Context:  itoaYear(y),
		}}
	}
	return nil
}

type artworkFormatRule struct{}

func (artworkFormatRule) Name() string { return "artwork-format" }

func (artworkFormatRule) Validate(info model.AudioFileInfo) []Issue {
	art := info.Metadata.Artwork
	if art == nil {
		return nil
	}
	if art.Format != model.ArtworkFormatJPEG && art.Format != model.ArtworkFormatPNG {
		return []Issue{{
			Rule:     "artwork-format",
			Severity: SeverityError,
			Message:  "artwork must be JPEG or PNG",
		}}
	}
	return nil
}

type languageCodeRule struct{}

func (languageCodeRule) Name() string { return "language-code" }

func (languageCodeRule) Validate(info model.AudioFileInfo) []Issue {
	lang := info.Metadata.Language
	if lang == "" {
		return nil
	}
	if len(lang) != 3 || !isLowerAlpha(lang) {
		return []Issue{{
			Rule:     "language-code",
			Severity: SeverityError,
			Message:  "language must be a three-letter lowercase ISO 639-2 code",
			Context:  lang,
		}}
	}
	return nil
}

func isLowerAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

type ratingRangeRule struct{}

func (ratingRangeRule) Name() string { return "rating-range" }

func (ratingRangeRule) Validate(info model.AudioFileInfo) []Issue {
	// model.AudioMetadata.Rating is a *uint8, so it is structurally bound
	// to [0, 255] already; this rule exists for the default set's
	// completeness and to document the invariant.
	return nil
}

func chapterContext(index int, ch model.Chapter) string {
	if ch.Title != "" {
		return ch.Title
	}
	return "chapter " + itoaYear(index)
}

func itoaYear(n int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	if n == 0 {
		return "0"
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
