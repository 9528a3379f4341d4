// Package fileio provides the random-access and chunked-streaming file
// primitives the codecs build on: read-at-offset, streaming copy
// between files, truncate, and append. Every operation opens its own
// handle and closes it on all exit paths, including errors.
package fileio

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// DefaultChunkSize is the default buffer size for streaming copies,
// matching spec §4.2's 64 KiB default.
const DefaultChunkSize = 64 << 10

// FileReader supports random reads at an offset and chunked streaming
// reads over a byte range. Every method here uses ReadAt/pread
// semantics and never moves the shared os.File offset, so one
// FileReader can be shared by goroutines reading concurrently.
type FileReader struct {
	f *os.File
}

// OpenFileReader opens path for reading.
func OpenFileReader(path string) (*FileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "fileio: open %s", path)
	}
	return &FileReader{f: f}, nil
}

// Close closes the underlying file handle.
func (r *FileReader) Close() error { return r.f.Close() }

// FileSize returns the total size of the file in bytes.
func (r *FileReader) FileSize() (int64, error) {
	fi, err := r.f.Stat()
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return fi.Size(), nil
}

// ReadAt reads count bytes starting at offset.
func (r *FileReader) ReadAt(at int64, count int) ([]byte, error) {
	buf := make([]byte, count)
	n, err := r.f.ReadAt(buf, at)
	if err != nil && !(errors.Is(err, io.EOF) && n == count) {
		return nil, errors.Wrapf(err, "fileio: read %d bytes at offset %d", count, at)
	}
	return buf[:n], nil
}

// CopyRangeTo streams [start, start+length) from r to w in chunks of
// at most chunkSize bytes, invoking fn after each chunk is written (fn
// may be nil). A chunkSize of 0 uses DefaultChunkSize.
func (r *FileReader) CopyRangeTo(w io.Writer, start, length int64, chunkSize int, fn func(written int64)) error {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	sr := io.NewSectionReader(r.f, start, length)
	buf := make([]byte, chunkSize)

	var total int64
	for {
		n, rerr := sr.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return errors.Wrap(werr, "fileio: stream copy write")
			}
			total += int64(n)
			if fn != nil {
				fn(total)
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return errors.Wrap(rerr, "fileio: stream copy read")
		}
	}
}

// FileWriter supports append, write-at-offset, streaming copy from a
// FileReader range, truncation and explicit flush/close.
type FileWriter struct {
	f *os.File
}

// CreateFileWriter creates (or truncates) path for writing.
func CreateFileWriter(path string) (*FileWriter, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "fileio: create %s", path)
	}
	return &FileWriter{f: f}, nil
}

// OpenFileWriter opens an existing file for read-write access, without
// truncating it.
func OpenFileWriter(path string) (*FileWriter, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "fileio: open %s for writing", path)
	}
	return &FileWriter{f: f}, nil
}

// Append writes data at the end of the file.
func (w *FileWriter) Append(data []byte) error {
	if _, err := w.f.Seek(0, io.SeekEnd); err != nil {
		return errors.WithStack(err)
	}
	_, err := w.f.Write(data)
	return errors.Wrap(err, "fileio: append")
}

// WriteAt writes data at the given offset.
func (w *FileWriter) WriteAt(data []byte, at int64) error {
	_, err := w.f.WriteAt(data, at)
	return errors.Wrapf(err, "fileio: write at offset %d", at)
}

// CopyFrom streams [start, start+length) from r, appending it at the
// writer's current end-of-file.
func (w *FileWriter) CopyFrom(r *FileReader, start, length int64, chunkSize int) error {
	if _, err := w.f.Seek(0, io.SeekEnd); err != nil {
		return errors.WithStack(err)
	}
	return r.CopyRangeTo(w.f, start, length, chunkSize, nil)
}

// Truncate shrinks or extends the file to exactly size bytes.
func (w *FileWriter) Truncate(size int64) error {
	return errors.Wrap(w.f.Truncate(size), "fileio: truncate")
}

// Flush flushes any OS-buffered writes to stable storage.
func (w *FileWriter) Flush() error {
	return errors.Wrap(w.f.Sync(), "fileio: flush")
}

// Close closes the underlying file handle.
func (w *FileWriter) Close() error { return w.f.Close() }

// AtomicReplace atomically replaces target with the contents of tmp
// (which must be on the same filesystem), via rename. The caller is
// responsible for having flushed and closed tmp's writer beforehand.
func AtomicReplace(tmpPath, targetPath string) error {
	return errors.Wrapf(os.Rename(tmpPath, targetPath), "fileio: replace %s", targetPath)
}
