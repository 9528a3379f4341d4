package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChapterRejectsEmptyTitle(t *testing.T) {
	_, err := NewChapter(Zero, "")
	assert.Error(t, err)
}

func TestChapterWithEndRejectsNonIncreasing(t *testing.T) {
	ch, err := NewChapter(MustTimestampFromMillis(5000), "Intro")
	require.NoError(t, err)

	_, err = ch.WithEnd(MustTimestampFromMillis(4000))
	assert.Error(t, err)

	_, err = ch.WithEnd(MustTimestampFromMillis(5000))
	assert.Error(t, err)

	withEnd, err := ch.WithEnd(MustTimestampFromMillis(6000))
	require.NoError(t, err)
	assert.Equal(t, int64(6000), withEnd.End.Milliseconds())
}

func TestChapterListSortByStartIsStable(t *testing.T) {
	a, _ := NewChapter(MustTimestampFromMillis(2000), "B")
	b, _ := NewChapter(MustTimestampFromMillis(1000), "A")
	c, _ := NewChapter(MustTimestampFromMillis(1000), "A again")

	cl := NewChapterList(a, b, c)
	cl.SortByStart()

	all := cl.All()
	require.Len(t, all, 3)
	assert.Equal(t, "A", all[0].Title)
	assert.Equal(t, "A again", all[1].Title)
	assert.Equal(t, "B", all[2].Title)
}

func TestChapterListInsertAndRemove(t *testing.T) {
	first, _ := NewChapter(MustTimestampFromMillis(0), "First")
	second, _ := NewChapter(MustTimestampFromMillis(1000), "Second")
	cl := NewChapterList(first, second)

	middle, _ := NewChapter(MustTimestampFromMillis(500), "Middle")
	require.NoError(t, cl.InsertAt(1, middle))
	assert.Equal(t, "Middle", cl.At(1).Title)
	assert.Equal(t, 3, cl.Len())

	require.NoError(t, cl.RemoveAt(0))
	assert.Equal(t, "Middle", cl.At(0).Title)
	assert.Equal(t, 2, cl.Len())

	assert.Error(t, cl.InsertAt(-1, middle))
	assert.Error(t, cl.RemoveAt(10))
}

func TestChapterListDoesNotAliasConstructorSlice(t *testing.T) {
	src := []Chapter{{Title: "X", Start: Zero}}
	cl := NewChapterList(src...)
	src[0].Title = "mutated"
	assert.Equal(t, "X", cl.At(0).Title)
}

func TestWithCalculatedEndTimesFillsGapsWithoutMutatingSource(t *testing.T) {
	first, _ := NewChapter(MustTimestampFromMillis(0), "First")
	second, _ := NewChapter(MustTimestampFromMillis(10_000), "Second")
	cl := NewChapterList(first, second)

	filled := cl.WithCalculatedEndTimes(MustTimestampFromMillis(20_000))

	require.Nil(t, cl.At(0).End)
	require.NotNil(t, filled.At(0).End)
	assert.Equal(t, int64(10_000), filled.At(0).End.Milliseconds())
	require.NotNil(t, filled.At(1).End)
	assert.Equal(t, int64(20_000), filled.At(1).End.Milliseconds())
}

func TestWithCalculatedEndTimesPreservesExplicitEnd(t *testing.T) {
	ch, _ := NewChapter(MustTimestampFromMillis(0), "Intro")
	ch, _ = ch.WithEnd(MustTimestampFromMillis(3000))
	cl := NewChapterList(ch)

	filled := cl.WithCalculatedEndTimes(MustTimestampFromMillis(60_000))
	assert.Equal(t, int64(3000), filled.At(0).End.Milliseconds())
}
