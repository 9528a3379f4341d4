package exchange

import (
	"encoding/xml"

	"github.com/pkg/errors"
)

type podloveXMLDoc struct {
	XMLName  xml.Name             `xml:"psc:chapters"`
	Version  string               `xml:"version,attr"`
	XMLNS    string               `xml:"xmlns:psc,attr"`
	Chapters []podloveXMLChapter `xml:"psc:chapter"`
}

type podloveXMLChapter struct {
	Start string `xml:"start,attr"`
	End   string `xml:"end,attr,omitempty"`
	Title string `xml:"title,attr"`
	Href  string `xml:"href,attr,omitempty"`
	Image string `xml:"image,attr,omitempty"`
}

func parsePodloveXML(text string) (*ChapterSet, error) {
	// The decoder resolves the "psc:" prefix to its namespace URL, so the
	// prefixed names podloveXMLDoc emits with cannot match on decode;
	// match the chapter elements by local name instead.
	var doc struct {
		Chapters []podloveXMLChapter `xml:"chapter"`
	}
	if err := xml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, errors.Wrap(err, "audiomarker: parse podlove xml")
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

func emitPodloveXML(set *ChapterSet) (string, error) {
	doc := podloveXMLDoc{Version: "1.2", XMLNS: "http://podlove.org/simple-chapters"}
	for _, e := range sortedByStart(set.Chapters) {
		pc := podloveXMLChapter{Start: formatClock(e.Start), Title: e.Title, Href: e.URL, Image: e.ImageURL}
		if e.End != nil {
			pc.End = formatClock(*e.End)
		}
		doc.Chapters = append(doc.Chapters, pc)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "audiomarker: emit podlove xml")
	}
	return xml.Header + string(out) + "\n", nil
}
