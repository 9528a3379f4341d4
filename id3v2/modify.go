package id3v2

import (
	"fmt"
	"path/filepath"

	"github.com/atelier-socle/audiomarker/fileio"
	"github.com/pkg/errors"
)

// Modify rewrites the ID3v2 tag at the start of the file at path using
// mutate to transform the currently-stored Tag. When the newly emitted
// tag (with DefaultPaddingSize padding) fits within the space already
// occupied by the existing tag, Modify overwrites that region in place
// and pads any leftover space with zero bytes; otherwise it streams the
// audio data after the tag to a temporary file and replaces path
// atomically, the same two paths spec §4.2 describes for writes that
// do or don't change file length.
func Modify(path string, opts ReadOptions, mutate func(tag *Tag) error) error {
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

	var existingTagSize int64
	parsed, perr := ReadTag(header, opts)
	if perr == nil {
		existingTagSize = int64(parsed.TagSize)
	} else {
		parsed = &ParsedTag{Tag: Tag{Version: Version24}}
	}

	tag := parsed.Tag
	if err := mutate(&tag); err != nil {
		return err
	}

	newBytes, err := EmitTag(&tag, DefaultPaddingSize)
	if err != nil {
		return err
	}

	if int64(len(newBytes)) <= existingTagSize {
		writer, err := fileio.OpenFileWriter(path)
		if err != nil {
			return err
		}
		defer writer.Close()

		padded := make([]byte, existingTagSize)
		copy(padded, newBytes)
		if err := writer.WriteAt(padded, 0); err != nil {
			return err
		}
		return writer.Flush()
	}

	return rewriteWithNewTag(path, reader, existingTagSize, size, newBytes)
}

func rewriteWithNewTag(path string, reader *fileio.FileReader, oldTagSize, fileSize int64, newTag []byte) error {
	tmpPath := path + fmt.Sprintf(".audiomarker-tmp-%d", fileSize)

	writer, err := fileio.CreateFileWriter(tmpPath)
	if err != nil {
		return err
	}

	if err := writer.Append(newTag); err != nil {
		writer.Close()
		return err
	}

	audioLen := fileSize - oldTagSize
	if err := writer.CopyFrom(reader, oldTagSize, audioLen, fileio.DefaultChunkSize); err != nil {
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

	if err := fileio.AtomicReplace(tmpPath, path); err != nil {
		return errors.Wrapf(err, "id3v2: replacing %s", filepath.Base(path))
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
