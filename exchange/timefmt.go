package exchange

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atelier-socle/audiomarker/model"
	"github.com/pkg/errors"
)

// formatClock renders ms as "HH:MM:SS.mmm".
func formatClock(t model.Timestamp) string {
	ms := t.Milliseconds()
	hh := ms / 3600_000
	ms -= hh * 3600_000
	mm := ms / 60_000
	ms -= mm * 60_000
	ss := ms / 1000
	ms -= ss * 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hh, mm, ss, ms)
}

// parseClock parses "HH:MM:SS.mmm", "MM:SS.mmm", "MM:SS" or "HH:MM:SS".
func parseClock(s string) (model.Timestamp, error) {
	return model.ParseTimestamp(strings.TrimSpace(s))
}

// formatSRTClock renders ms as "HH:MM:SS,mmm" (comma decimal).
func formatSRTClock(t model.Timestamp) string {
	return strings.Replace(formatClock(t), ".", ",", 1)
}

// parseSRTClock parses "HH:MM:SS,mmm".
func parseSRTClock(s string) (model.Timestamp, error) {
	return parseClock(strings.Replace(strings.TrimSpace(s), ",", ".", 1))
}

// formatWebVTTClock renders ms as "HH:MM:SS.mmm" (period decimal, same
// as formatClock, kept as a distinct name for symmetry with the SRT
// variant and to make each format's emitter self-contained).
func formatWebVTTClock(t model.Timestamp) string { return formatClock(t) }

func parseWebVTTClock(s string) (model.Timestamp, error) { return parseClock(s) }

// formatLRCClock renders ms as "[mm:ss.xx]" (centiseconds, LRC's
// native precision).
func formatLRCClock(t model.Timestamp) string {
	ms := t.Milliseconds()
	mm := ms / 60_000
	ms -= mm * 60_000
	ss := ms / 1000
	ms -= ss * 1000
	cs := ms / 10
	return fmt.Sprintf("[%02d:%02d.%02d]", mm, ss, cs)
}

// parseLRCClock parses "mm:ss.xx" (the contents of an LRC timestamp
// tag, without brackets).
func parseLRCClock(s string) (model.Timestamp, error) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return model.Timestamp{}, errors.Errorf("audiomarker: invalid LRC timestamp %q", s)
	}
	mm, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return model.Timestamp{}, errors.Errorf("audiomarker: invalid LRC timestamp %q", s)
	}
	secPart := parts[1]
	dot := strings.IndexByte(secPart, '.')
	var ss, frac int64
	if dot == -1 {
		ss, err = strconv.ParseInt(secPart, 10, 64)
	} else {
		ss, err = strconv.ParseInt(secPart[:dot], 10, 64)
		if err == nil {
			fracStr := secPart[dot+1:]
			for len(fracStr) < 3 {
				fracStr += "0"
			}
			frac, err = strconv.ParseInt(fracStr[:3], 10, 64)
		}
	}
	if err != nil {
		return model.Timestamp{}, errors.Errorf("audiomarker: invalid LRC timestamp %q", s)
	}
	total := mm*60_000 + ss*1000 + frac
	return model.NewTimestampFromMillis(total)
}

// formatCueFrames renders ms as "MM:SS:FF" at 75 frames per second.
func formatCueFrames(t model.Timestamp) string {
	totalFrames := int64(t.Seconds()*75 + 0.5)
	mm := totalFrames / (75 * 60)
	totalFrames -= mm * 75 * 60
	ss := totalFrames / 75
	ff := totalFrames % 75
	return fmt.Sprintf("%02d:%02d:%02d", mm, ss, ff)
}

// parseCueFrames parses "MM:SS:FF" at 75 frames per second.
func parseCueFrames(s string) (model.Timestamp, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return model.Timestamp{}, errors.Errorf("audiomarker: invalid cue timestamp %q", s)
	}
	mm, err1 := strconv.ParseInt(parts[0], 10, 64)
	ss, err2 := strconv.ParseInt(parts[1], 10, 64)
	ff, err3 := strconv.ParseInt(parts[2], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return model.Timestamp{}, errors.Errorf("audiomarker: invalid cue timestamp %q", s)
	}
	seconds := float64(mm*60+ss) + float64(ff)/75
	return model.NewTimestampFromSeconds(seconds)
}
