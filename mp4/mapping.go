package mp4

import (
	"github.com/atelier-socle/audiomarker/model"
)

// ReadInfo reads path and returns the codec-neutral data model: tag
// fields, chapters and duration. It is the mp4 codec's equivalent of
// id3v2.ToAudioFileInfo.
func ReadInfo(path string) (model.AudioFileInfo, error) {
	info := model.NewAudioFileInfo()

	raw, rawChapters, err := ReadMetadata(path)
	if err != nil {
		return info, err
	}

	info.Metadata = toAudioMetadata(raw)

	if raw.timescale > 0 {
		d, derr := model.NewTimestampFromSeconds(float64(raw.duration) / float64(raw.timescale))
		if derr == nil {
			info.Duration = &d
		}
	}

	chapters := model.NewChapterList()
	for _, rc := range rawChapters {
		if rc.Title == "" {
			continue
		}
		start, serr := model.NewTimestampFromMillis(rc.StartMs)
		if serr != nil {
			continue
		}
		ch, cerr := model.NewChapter(start, rc.Title)
		if cerr != nil {
			continue
		}
		if rc.HasEnd {
			if end, eerr := model.NewTimestampFromMillis(rc.EndMs); eerr == nil && start.Before(end) {
				ch.End = &end
			}
		}
		chapters.Append(ch)
	}
	info.Chapters = chapters

	return info, nil
}

func toAudioMetadata(raw *rawMetadata) model.AudioMetadata {
	meta := model.AudioMetadata{
		Title:       raw.title,
		Artist:      raw.artist,
		AlbumArtist: raw.albumArtist,
		Album:       raw.album,
		Composer:    raw.composer,
		Genre:       raw.genre,
		Comment:     raw.comment,
		Copyright:   raw.copyright,
		Encoder:     raw.encoder,
	}

	if raw.year != "" {
		if y, ok := parseLeadingYear(raw.year); ok {
			meta.Year = &y
		}
	}

	if raw.trackNumber != nil {
		meta.TrackNumber = &model.TrackPosition{Number: raw.trackNumber.Number, Total: raw.trackNumber.Total}
	}
	if raw.discNumber != nil {
		meta.DiscNumber = &model.TrackPosition{Number: raw.discNumber.Number, Total: raw.discNumber.Total}
	}

	if len(raw.coverData) > 0 {
		if art, err := model.NewArtwork(raw.coverData); err == nil {
			meta.Artwork = &art
		}
	}

	if raw.bpm != nil {
		bpm := int(*raw.bpm)
		meta.BPM = &bpm
	}
	meta.UnsynchronizedLyrics = raw.lyrics
	meta.SynchronizedLyrics = raw.syncLyrics

	meta.CustomTextFields = model.NewOrderedStringMap()
	for k, v := range raw.freeform {
		meta.CustomTextFields.Set(k, v)
	}

	return meta
}

func parseLeadingYear(s string) (int, bool) {
	i := 0
	for i < len(s) && i < 4 && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	n := 0
	for _, c := range s[:i] {
		n = n*10 + int(c-'0')
	}
	return n, true
}
