package exchange

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/atelier-socle/audiomarker/model"
	"github.com/pkg/errors"
)

var (
	ttmlDivPattern  = regexp.MustCompile(`(?s)<div[^>]*xml:lang="([^"]*)"[^>]*>(.*?)</div>`)
	ttmlPPattern    = regexp.MustCompile(`(?s)<p\s+([^>]*)>(.*?)</p>`)
	ttmlSpanPattern = regexp.MustCompile(`(?s)<span\s+begin="([^"]*)"\s+end="([^"]*)"[^>]*>(.*?)</span>`)
	ttmlAttrBegin   = regexp.MustCompile(`begin="([^"]*)"`)
	ttmlAttrEnd     = regexp.MustCompile(`end="([^"]*)"`)
	ttmlAttrAgent   = regexp.MustCompile(`ttm:agent="([^"]*)"`)
)

// ParseTTMLLyrics parses a TTML document into one SynchronizedLyrics
// value per <div xml:lang>. Word-level <span> children mark a line as
// karaoke; a ttm:agent attribute on <p> is carried as the line's
// speaker.
func ParseTTMLLyrics(text string) ([]model.SynchronizedLyrics, error) {
	divs := ttmlDivPattern.FindAllStringSubmatch(text, -1)
	if divs == nil {
		return nil, errors.New("audiomarker: no <div xml:lang> found in TTML")
	}

	var tracks []model.SynchronizedLyrics
	for _, div := range divs {
		lang, body := div[1], div[2]
		sl := model.SynchronizedLyrics{Language: lang, ContentType: model.LyricContentLyrics}

		for _, p := range ttmlPPattern.FindAllStringSubmatch(body, -1) {
			attrs, inner := p[1], p[2]

			beginM := ttmlAttrBegin.FindStringSubmatch(attrs)
			if beginM == nil {
				return nil, errors.New("audiomarker: TTML <p> missing begin attribute")
			}
			begin, err := parseClock(beginM[1])
			if err != nil {
				return nil, err
			}

			line := model.LyricLine{Time: begin}
			if m := ttmlAttrAgent.FindStringSubmatch(attrs); m != nil {
				line.Speaker = m[1]
			}

			spans := ttmlSpanPattern.FindAllStringSubmatch(inner, -1)
			if len(spans) == 0 {
				line.Text = html.UnescapeString(strings.TrimSpace(stripTags(inner)))
			} else {
				var words []string
				for _, s := range spans {
					segStart, err := parseClock(s[1])
					if err != nil {
						return nil, err
					}
					segEnd, err := parseClock(s[2])
					if err != nil {
						return nil, err
					}
					segText := html.UnescapeString(strings.TrimSpace(s[3]))
					line.Segments = append(line.Segments, model.LyricSegment{Start: segStart, End: segEnd, Text: segText})
					words = append(words, segText)
				}
				line.Text = strings.Join(words, " ")
			}

			sl.Lines = append(sl.Lines, line)
		}

		tracks = append(tracks, sl)
	}

	return tracks, nil
}

// EmitTTMLLyrics renders one or more SynchronizedLyrics tracks as a
// single TTML document, one <div xml:lang> per track.
func EmitTTMLLyrics(tracks []model.SynchronizedLyrics) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")

	docLang := "und"
	if len(tracks) > 0 {
		docLang = tracks[0].Language
	}
	fmt.Fprintf(&b, `<tt xmlns="http://www.w3.org/ns/ttml" xmlns:ttm="http://www.w3.org/ns/ttml#metadata" xml:lang=%q>`, docLang)
	b.WriteString("\n  <body>\n")

	for _, sl := range tracks {
		fmt.Fprintf(&b, "    <div xml:lang=%q>\n", sl.Language)
		for _, line := range sl.Sorted().Lines {
			writeTTMLLine(&b, line)
		}
		b.WriteString("    </div>\n")
	}

	b.WriteString("  </body>\n</tt>\n")
	return b.String()
}

func writeTTMLLine(b *strings.Builder, line model.LyricLine) {
	b.WriteString("      <p")
	fmt.Fprintf(b, " begin=%q", formatClock(line.Time))
	if line.Speaker != "" {
		fmt.Fprintf(b, " ttm:agent=%q", line.Speaker)
	}
	b.WriteString(">")

	if line.IsKaraoke() {
		for _, seg := range line.Segments {
			fmt.Fprintf(b, `<span begin=%q end=%q>%s</span>`, formatClock(seg.Start), formatClock(seg.End), html.EscapeString(seg.Text))
		}
	} else {
		b.WriteString(html.EscapeString(line.Text))
	}

	b.WriteString("</p>\n")
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseTTMLChapters reads a TTML document as a chapter list: every
// <p> across every <div> becomes one chapter, title taken from its
// text content, end time from its end attribute when present.
func parseTTMLChapters(text string) (*ChapterSet, error) {
	divs := ttmlDivPattern.FindAllStringSubmatch(text, -1)
	if divs == nil {
		return nil, errors.New("audiomarker: no <div xml:lang> found in TTML")
	}

	set := &ChapterSet{}
	for _, div := range divs {
		for _, p := range ttmlPPattern.FindAllStringSubmatch(div[2], -1) {
			attrs, inner := p[1], p[2]

			beginM := ttmlAttrBegin.FindStringSubmatch(attrs)
			if beginM == nil {
				return nil, errors.New("audiomarker: TTML <p> missing begin attribute")
			}
			begin, err := parseClock(beginM[1])
			if err != nil {
				return nil, err
			}

			entry := ChapterEntry{Start: begin, Title: html.UnescapeString(strings.TrimSpace(stripTags(inner)))}
			if m := ttmlAttrEnd.FindStringSubmatch(attrs); m != nil {
				if end, err := parseClock(m[1]); err == nil {
					entry.End = &end
				}
			}
			set.Chapters = append(set.Chapters, entry)
		}
	}

	return set, nil
}

func emitTTMLChapters(set *ChapterSet) (string, error) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<tt xmlns="http://www.w3.org/ns/ttml" xml:lang="und">` + "\n  <body>\n    <div xml:lang=\"und\">\n")

	for _, e := range sortedByStart(set.Chapters) {
		b.WriteString("      <p")
		fmt.Fprintf(&b, " begin=%q", formatClock(e.Start))
		if e.End != nil {
			fmt.Fprintf(&b, " end=%q", formatClock(*e.End))
		}
		b.WriteString(">")
		b.WriteString(html.EscapeString(e.Title))
		b.WriteString("</p>\n")
	}

	b.WriteString("    </div>\n  </body>\n</tt>\n")
	return b.String(), nil
}
