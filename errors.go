package audiomarker

import (
	"fmt"

	"github.com/atelier-socle/audiomarker/validate"
)

// Kind identifies the category of an Error, mirroring the taxonomy in
// spec §7.
type Kind int

const (
	KindUnknownFormat Kind = iota
	KindUnsupportedFormat
	KindReadFailed
	KindWriteFailed
	KindValidationFailed
	KindInvalidTag
	KindInvalidContainer
	KindExportError
	KindTimestampError
	KindArtworkError
)

func (k Kind) String() string {
	switch k {
	case KindUnknownFormat:
		return "unknown-format"
	case KindUnsupportedFormat:
		return "unsupported-format"
	case KindReadFailed:
		return "read-failed"
	case KindWriteFailed:
		return "write-failed"
	case KindValidationFailed:
		return "validation-failed"
	case KindInvalidTag:
		return "invalid-tag"
	case KindInvalidContainer:
		return "invalid-container"
	case KindExportError:
		return "export-error"
	case KindTimestampError:
		return "timestamp-error"
	case KindArtworkError:
		return "artwork-error"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by every facade operation.
// It carries a Kind for programmatic dispatch plus a human-readable
// message, and wraps an optional underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// Issues is populated only for KindValidationFailed.
	Issues []validate.Issue
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("audiomarker: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("audiomarker: %s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

func newError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// UnknownFormatError reports that detectFormat could not classify a
// file.
func UnknownFormatError(path string) *Error {
	return newError(KindUnknownFormat, nil, "cannot determine container format of %s", path)
}

// UnsupportedFormatError reports that an operation does not apply to
// the detected format.
func UnsupportedFormatError(format, operation string) *Error {
	return newError(KindUnsupportedFormat, nil, "%s is not supported for format %s", operation, format)
}

// ReadFailedError wraps an I/O or parse failure encountered while
// reading.
func ReadFailedError(detail string, cause error) *Error {
	return newError(KindReadFailed, cause, "%s", detail)
}

// WriteFailedError wraps an I/O failure or precondition violation
// encountered while writing.
func WriteFailedError(detail string, cause error) *Error {
	return newError(KindWriteFailed, cause, "%s", detail)
}

// ValidationFailedError reports that validateBeforeWriting rejected a
// write because of one or more error-severity issues.
func ValidationFailedError(issues []validate.Issue) *Error {
	e := newError(KindValidationFailed, nil, "%d validation issue(s)", len(issues))
	e.Issues = issues
	return e
}

// InvalidTagError reports a malformed ID3v2 structure.
func InvalidTagError(offset int, reason string) *Error {
	return newError(KindInvalidTag, nil, "at offset %d: %s", offset, reason)
}

// InvalidContainerError reports a malformed ISOBMFF structure.
func InvalidContainerError(path, reason string) *Error {
	return newError(KindInvalidContainer, nil, "%s: %s", path, reason)
}

// ExportErrorFor wraps a text-exchange parse/emit failure.
func ExportErrorFor(reason string, cause error) *Error {
	return newError(KindExportError, cause, "%s", reason)
}

// TimestampErrorFor reports a bad duration string.
func TimestampErrorFor(input string) *Error {
	return newError(KindTimestampError, nil, "invalid timestamp %q", input)
}

// ArtworkErrorFor reports an unsupported image format or bad magic.
func ArtworkErrorFor(reason string) *Error {
	return newError(KindArtworkError, nil, "%s", reason)
}
