package mp4

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLeadingYear(t *testing.T) {
	cases := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"2024-05-01", 2024, true},
		{"2024", 2024, true},
		{"", 0, false},
		{"abcd", 0, false},
	}
	for _, c := range cases {
		got, ok := parseLeadingYear(c.in)
		assert.Equal(t, c.wantOK, ok, c.in)
		if c.wantOK {
			assert.Equal(t, c.want, got, c.in)
		}
	}
}

func TestGenreIDToString(t *testing.T) {
	assert.Equal(t, "Blues", genreIDToString(1))
	assert.Equal(t, "Rock", genreIDToString(18))
	assert.Equal(t, "", genreIDToString(0))
	assert.Equal(t, "", genreIDToString(999))
}
