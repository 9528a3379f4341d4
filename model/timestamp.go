// Package model defines the value types shared by every codec in
// audiomarker: timestamps, artwork, chapters, metadata records and
// synchronized lyrics. All types here are plain values — cheap to
// copy, safe to share across goroutines, never mutated in place by a
// codec once constructed.
package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Timestamp is a non-negative, millisecond-precision duration. It is
// used for chapter boundaries, lyric line timing and file duration.
type Timestamp struct {
	ms int64
}

// Zero is the zero timestamp.
var Zero = Timestamp{}

// NewTimestampFromSeconds builds a Timestamp from a (possibly
// fractional) number of seconds.
func NewTimestampFromSeconds(seconds float64) (Timestamp, error) {
	if seconds < 0 {
		return Timestamp{}, errors.Errorf("audiomarker: negative timestamp: %v seconds", seconds)
	}

	return Timestamp{ms: int64(seconds*1000 + 0.5)}, nil
}

// NewTimestampFromMillis builds a Timestamp from an integer number of
// milliseconds.
func NewTimestampFromMillis(ms int64) (Timestamp, error) {
	if ms < 0 {
		return Timestamp{}, errors.Errorf("audiomarker: negative timestamp: %d ms", ms)
	}

	return Timestamp{ms: ms}, nil
}

// MustTimestampFromMillis is like NewTimestampFromMillis but panics on
// a negative input. Intended for literals in tests and codec code that
// has already validated non-negativity.
func MustTimestampFromMillis(ms int64) Timestamp {
	t, err := NewTimestampFromMillis(ms)
	if err != nil {
		panic(err)
	}

	return t
}

// ParseTimestamp parses "HH:MM:SS.mmm", "MM:SS.mmm" or "MM:SS".
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, errors.Wrap(timestampError(s), "empty timestamp")
	}

	secPart := s
	var fracMs int64
	if dot := strings.LastIndexByte(s, '.'); dot != -1 {
		secPart = s[:dot]
		frac := s[dot+1:]
		if len(frac) == 0 || len(frac) > 3 {
			return Timestamp{}, timestampError(s)
		}
		for len(frac) < 3 {
			frac += "0"
		}
		v, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return Timestamp{}, timestampError(s)
		}
		fracMs = v
	}

	parts := strings.Split(secPart, ":")
	var hh, mm, ss int64
	var err error
	switch len(parts) {
	case 3:
		hh, err = strconv.ParseInt(parts[0], 10, 64)
		if err == nil {
			mm, err = strconv.ParseInt(parts[1], 10, 64)
		}
		if err == nil {
			ss, err = strconv.ParseInt(parts[2], 10, 64)
		}
	case 2:
		mm, err = strconv.ParseInt(parts[0], 10, 64)
		if err == nil {
			ss, err = strconv.ParseInt(parts[1], 10, 64)
		}
	default:
		return Timestamp{}, timestampError(s)
	}
	if err != nil {
		return Timestamp{}, timestampError(s)
	}
	if mm < 0 || mm > 59 || ss < 0 || ss > 59 || hh < 0 {
		return Timestamp{}, timestampError(s)
	}

	total := hh*3600_000 + mm*60_000 + ss*1000 + fracMs
	return NewTimestampFromMillis(total)
}

func timestampError(input string) error {
	return errors.Errorf("audiomarker: invalid timestamp %q", input)
}

// Milliseconds returns the timestamp as an integer count of
// milliseconds.
func (t Timestamp) Milliseconds() int64 { return t.ms }

// Seconds returns the timestamp as a floating-point number of seconds.
func (t Timestamp) Seconds() float64 { return float64(t.ms) / 1000 }

// Before reports whether t occurs strictly before other.
func (t Timestamp) Before(other Timestamp) bool { return t.ms < other.ms }

// After reports whether t occurs strictly after other.
func (t Timestamp) After(other Timestamp) bool { return t.ms > other.ms }

// Equal reports whether t and other denote the same instant.
func (t Timestamp) Equal(other Timestamp) bool { return t.ms == other.ms }

// Add returns t advanced by d milliseconds.
func (t Timestamp) Add(d Timestamp) Timestamp { return Timestamp{ms: t.ms + d.ms} }

// Sub returns the duration, in milliseconds, from other to t. It may
// be negative.
func (t Timestamp) Sub(other Timestamp) int64 { return t.ms - other.ms }

// String renders the timestamp canonically as "HH:MM:SS.mmm".
func (t Timestamp) String() string {
	ms := t.ms
	hh := ms / 3600_000
	ms -= hh * 3600_000
	mm := ms / 60_000
	ms -= mm * 60_000
	ss := ms / 1000
	ms -= ss * 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hh, mm, ss, ms)
}
