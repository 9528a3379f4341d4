package id3v2

import (
	"fmt"

	"github.com/atelier-socle/audiomarker/fileio"
)

// Strip removes any ID3v2 tag from the start of the file at path,
// leaving the audio stream untouched. It is a no-op (and not an error)
// if the file has no recognisable tag.
func Strip(path string) error {
	reader, err := fileio.OpenFileReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	size, err := reader.FileSize()
	if err != nil {
		return err
	}

	header, err := reader.ReadAt(0, minInt(int(size), 65536))
	if err != nil {
		return err
	}

	parsed, err := ReadTag(header, ReadOptions{})
	if err != nil {
		return nil // no tag to strip
	}

	tmpPath := path + fmt.Sprintf(".audiomarker-strip-%d", size)
	writer, err := fileio.CreateFileWriter(tmpPath)
	if err != nil {
		return err
	}

	audioLen := size - int64(parsed.TagSize)
	if err := writer.CopyFrom(reader, int64(parsed.TagSize), audioLen, fileio.DefaultChunkSize); err != nil {
		writer.Close()
		return err
	}

	if err := writer.Flush(); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	return fileio.AtomicReplace(tmpPath, path)
}
