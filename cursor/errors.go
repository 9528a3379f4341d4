package cursor

import "github.com/pkg/errors"

// UnexpectedEndOfDataError is returned when a read would consume more
// bytes than remain in the buffer.
type UnexpectedEndOfDataError struct {
	Offset    int
	Requested int
	Available int
}

func (e *UnexpectedEndOfDataError) Error() string {
	return errors.Errorf("cursor: unexpected end of data at offset %d: requested %d bytes, %d available",
		e.Offset, e.Requested, e.Available).Error()
}

// SeekOutOfBoundsError is returned when Seek targets an offset outside
// [0, size].
type SeekOutOfBoundsError struct {
	Offset int
	Size   int
}

func (e *SeekOutOfBoundsError) Error() string {
	return errors.Errorf("cursor: seek to %d out of bounds for buffer of size %d", e.Offset, e.Size).Error()
}

// InvalidEncodingError is returned when a string cannot be decoded in
// the requested encoding.
type InvalidEncodingError struct {
	Offset int
}

func (e *InvalidEncodingError) Error() string {
	return errors.Errorf("cursor: invalid encoding at offset %d", e.Offset).Error()
}
