package id3v2

import (
	"github.com/atelier-socle/audiomarker/fileio"
	"github.com/atelier-socle/audiomarker/model"
)

// ReadFile opens path, parses its leading ID3v2 tag (if any) and
// converts it to the codec-neutral data model. A file with no
// recognisable tag yields a zero-value AudioFileInfo, not an error.
func ReadFile(path string, opts ReadOptions) (model.AudioFileInfo, error) {
	reader, err := fileio.OpenFileReader(path)
	if err != nil {
		return model.AudioFileInfo{}, err
	}
	defer reader.Close()

	size, err := reader.FileSize()
	if err != nil {
		return model.AudioFileInfo{}, err
	}

	header, err := reader.ReadAt(0, minInt(int(size), 65536))
	if err != nil {
		return model.AudioFileInfo{}, err
	}

	parsed, err := ReadTag(header, opts)
	if err != nil {
		return model.NewAudioFileInfo(), nil
	}

	return ToAudioFileInfo(&parsed.Tag)
}

// WriteFile fully replaces path's ID3v2 tag with one built from info,
// discarding any frame the data model has no field for (spec's
// "write" operation, as distinct from Modify's unknown-frame
// preservation).
func WriteFile(path string, info model.AudioFileInfo, opts WriteOptions) error {
	return Modify(path, ReadOptions{}, func(tag *Tag) error {
		built, err := FromAudioFileInfo(info, opts.Version)
		if err != nil {
			return err
		}
		*tag = *built
		return nil
	})
}

// ReplaceChapters mutates tag in place, dropping any existing
// CHAP/CTOC frames and replacing them with ones built from chapters.
// Intended for use as (or inside) a Modify mutate callback, so that
// writeChapters can change only the chapter frames and preserve
// everything else.
func ReplaceChapters(tag *Tag, chapters *model.ChapterList) {
	tag.RemoveAll(FrameCHAP, FrameCTOC)
	tag.Frames = append(tag.Frames, buildChapterFrames(chapters, tag.Version)...)
}
