package id3v2

import "github.com/pkg/errors"

// TagError reports a malformed ID3v2 structure at a given byte offset,
// the id3v2 package's local equivalent of the facade's
// invalid-tag error (spec §7). The facade wraps it when surfacing
// errors to callers.
type TagError struct {
	Offset int
	Reason string
}

func (e *TagError) Error() string {
	return errors.Errorf("id3v2: invalid tag at offset %d: %s", e.Offset, e.Reason).Error()
}

// InvalidTagErrorf constructs a *TagError.
func InvalidTagErrorf(offset int, format string, args ...interface{}) error {
	return &TagError{Offset: offset, Reason: errorsSprintf(format, args...)}
}

func errorsSprintf(format string, args ...interface{}) string {
	return errors.Errorf(format, args...).Error()
}
