package main

import "github.com/atelier-socle/audiomarker/model"

// infoView is the JSON-friendly projection of model.AudioFileInfo.
// model.Timestamp deliberately has no exported fields (it is an
// invariant-preserving value type), so read --format json renders
// through this view instead of marshalling the model directly.
type infoView struct {
	Title       string          `json:"title,omitempty"`
	Artist      string          `json:"artist,omitempty"`
	Album       string          `json:"album,omitempty"`
	Genre       string          `json:"genre,omitempty"`
	Year        *int            `json:"year,omitempty"`
	TrackNumber string          `json:"trackNumber,omitempty"`
	DiscNumber  string          `json:"discNumber,omitempty"`
	Composer    string          `json:"composer,omitempty"`
	AlbumArtist string          `json:"albumArtist,omitempty"`
	Publisher   string          `json:"publisher,omitempty"`
	Copyright   string          `json:"copyright,omitempty"`
	Comment     string          `json:"comment,omitempty"`
	Language    string          `json:"language,omitempty"`
	Duration    string          `json:"duration,omitempty"`
	HasArtwork  bool            `json:"hasArtwork"`
	Chapters    []chapterView   `json:"chapters,omitempty"`
}

type chapterView struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

func newInfoView(info model.AudioFileInfo) infoView {
	meta := info.Metadata
	v := infoView{
		Title:       meta.Title,
		Artist:      meta.Artist,
		Album:       meta.Album,
		Genre:       meta.Genre,
		Year:        meta.Year,
		Composer:    meta.Composer,
		AlbumArtist: meta.AlbumArtist,
		Publisher:   meta.Publisher,
		Copyright:   meta.Copyright,
		Comment:     meta.Comment,
		Language:    meta.Language,
		HasArtwork:  meta.Artwork != nil,
	}
	if meta.TrackNumber != nil {
		v.TrackNumber = formatPosition(*meta.TrackNumber)
	}
	if meta.DiscNumber != nil {
		v.DiscNumber = formatPosition(*meta.DiscNumber)
	}
	if info.Duration != nil {
		v.Duration = info.Duration.String()
	}
	if info.Chapters != nil {
		for _, ch := range info.Chapters.All() {
			cv := chapterView{Start: ch.Start.String(), Title: ch.Title, URL: ch.URL}
			if ch.End != nil {
				cv.End = ch.End.String()
			}
			v.Chapters = append(v.Chapters, cv)
		}
	}
	return v
}

func formatPosition(p model.TrackPosition) string {
	if p.Total > 0 {
		return itoa(p.Number) + "/" + itoa(p.Total)
	}
	return itoa(p.Number)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
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
