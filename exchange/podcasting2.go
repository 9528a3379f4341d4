package exchange

import (
	"encoding/json"

	"github.com/atelier-socle/audiomarker/model"
	"github.com/pkg/errors"
)

type podcasting2Doc struct {
	Version  int                  `json:"version"`
	Chapters []podcasting2Chapter `json:"chapters"`
}

type podcasting2Chapter struct {
	StartTime float64 `json:"startTime"`
	Title     string  `json:"title"`
	URL       string  `json:"url,omitempty"`
	Img       string  `json:"img,omitempty"`
}

func parsePodcasting2(text string) (*ChapterSet, error) {
	var doc podcasting2Doc
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, errors.Wrap(err, "audiomarker: parse podcasting 2.0 chapters")
	}

	set := &ChapterSet{}
	for _, c := range doc.Chapters {
		start, err := model.NewTimestampFromSeconds(c.StartTime)
		if err != nil {
			return nil, err
		}
		set.Chapters = append(set.Chapters, ChapterEntry{Start: start, Title: c.Title, URL: c.URL, ImageURL: c.Img})
	}
	return set, nil
}

func emitPodcasting2(set *ChapterSet) (string, error) {
	doc := podcasting2Doc{Version: 1}
	for _, e := range sortedByStart(set.Chapters) {
		doc.Chapters = append(doc.Chapters, podcasting2Chapter{
			StartTime: e.Start.Seconds(),
			Title:     e.Title,
			URL:       e.URL,
			Img:       e.ImageURL,
		})
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "audiomarker: emit podcasting 2.0 chapters")
	}
	return string(out) + "\n", nil
}
