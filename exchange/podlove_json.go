package exchange

import (
	"encoding/json"

	"github.com/pkg/errors"
)

type podloveJSONDoc struct {
	Version  string              `json:"version"`
	Chapters []podloveJSONChapter `json:"chapters"`
}

type podloveJSONChapter struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
	Title string `json:"title"`
	Href  string `json:"href,omitempty"`
	Image string `json:"image,omitempty"`
}

func parsePodloveJSON(text string) (*ChapterSet, error) {
	var doc podloveJSONDoc
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, errors.Wrap(err, "audiomarker: parse podlove json")
	}

	set := &ChapterSet{}
	for _, c := range doc.Chapters {
		start, err := parseClock(c.Start)
		if err != nil {
			return nil, err
		}
		entry := ChapterEntry{Start: start, Title: c.Title, URL: c.Href, ImageURL: c.Image}
		if c.End != "" {
			end, err := parseClock(c.End)
			if err != nil {
				return nil, err
			}
			entry.End = &end
		}
		set.Chapters = append(set.Chapters, entry)
	}
	return set, nil
}

func emitPodloveJSON(set *ChapterSet) (string, error) {
	doc := podloveJSONDoc{Version: "1.2"}
	for _, e := range sortedByStart(set.Chapters) {
		pc := podloveJSONChapter{Start: formatClock(e.Start), Title: e.Title, Href: e.URL, Image: e.ImageURL}
		if e.End != nil {
			pc.End = formatClock(*e.End)
		}
		doc.Chapters = append(doc.Chapters, pc)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "audiomarker: emit podlove json")
	}
	return string(out) + "\n", nil
}
