package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampVariants(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"01:02:03.456", 3723456},
		{"02:03.456", 123456},
		{"02:03", 123000},
		{"00:00:00.000", 0},
		{"59:59", 3599000},
	}
	for _, c := range cases {
		got, err := ParseTimestamp(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got.Milliseconds(), c.in)
	}
}

func TestParseTimestampRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1:60", "1:2:3:4", "-1:00"} {
		_, err := ParseTimestamp(in)
		assert.Error(t, err, in)
	}
}

func TestTimestampStringRoundTrip(t *testing.T) {
	ts := MustTimestampFromMillis(3723456)
	assert.Equal(t, "01:02:03.456", ts.String())

	reparsed, err := ParseTimestamp(ts.String())
	require.NoError(t, err)
	assert.True(t, ts.Equal(reparsed))
}

func TestTimestampOrdering(t *testing.T) {
	a := MustTimestampFromMillis(1000)
	b := MustTimestampFromMillis(2000)
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Equal(b))
	assert.Equal(t, int64(1000), b.Sub(a))
	assert.Equal(t, int64(-1000), a.Sub(b))
}

func TestNewTimestampFromSecondsRejectsNegative(t *testing.T) {
	_, err := NewTimestampFromSeconds(-0.5)
	assert.Error(t, err)
}

func TestNewTimestampFromMillisRejectsNegative(t *testing.T) {
	_, err := NewTimestampFromMillis(-1)
	assert.Error(t, err)
}
