package id3v2

import (
	"testing"

	"github.com/atelier-socle/audiomarker/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInfo(t *testing.T) model.AudioFileInfo {
	t.Helper()
	info := model.NewAudioFileInfo()
	info.Metadata.Title = "Test Title"
	info.Metadata.Artist = "Test Artist"
	info.Metadata.Album = "Test Album"
	info.Metadata.Genre = "Rock"
	year := 2024
	info.Metadata.Year = &year
	info.Metadata.TrackNumber = &model.TrackPosition{Number: 3, Total: 12}
	info.Metadata.Comment = "a comment"
	info.Metadata.CustomURLs = model.NewOrderedStringMap()
	info.Metadata.CustomURLs.Set("homepage", "https://example.com")

	ch, err := model.NewChapter(model.MustTimestampFromMillis(0), "Intro")
	require.NoError(t, err)
	info.Chapters.Append(ch)

	return info
}

func TestTagWriteReadRoundTrip(t *testing.T) {
	info := sampleInfo(t)

	tag, err := FromAudioFileInfo(info, Version23)
	require.NoError(t, err)

	encoded, err := EmitTag(tag, DefaultPaddingSize)
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	parsed, err := ReadTag(encoded, ReadOptions{})
	require.NoError(t, err)

	back, err := ToAudioFileInfo(&parsed.Tag)
	require.NoError(t, err)

	assert.Equal(t, "Test Title", back.Metadata.Title)
	assert.Equal(t, "Test Artist", back.Metadata.Artist)
	assert.Equal(t, "Test Album", back.Metadata.Album)
	assert.Equal(t, "Rock", back.Metadata.Genre)
	require.NotNil(t, back.Metadata.Year)
	assert.Equal(t, 2024, *back.Metadata.Year)
	require.NotNil(t, back.Metadata.TrackNumber)
	assert.Equal(t, 3, back.Metadata.TrackNumber.Number)
	assert.Equal(t, 12, back.Metadata.TrackNumber.Total)
	assert.Equal(t, "a comment", back.Metadata.Comment)

	url, ok := back.Metadata.CustomURLs.Get("homepage")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", url)

	require.Equal(t, 1, back.Chapters.Len())
	assert.Equal(t, "Intro", back.Chapters.At(0).Title)
}

func TestTagRemoveAllPreservesOrderOfRemainder(t *testing.T) {
	tag := &Tag{Frames: []Frame{
		{ID: FrameTIT2, Data: []byte("a")},
		{ID: FrameTPE1, Data: []byte("b")},
		{ID: FrameTALB, Data: []byte("c")},
	}}
	tag.RemoveAll(FrameTPE1)

	require.Len(t, tag.Frames, 2)
	assert.Equal(t, FrameTIT2, tag.Frames[0].ID)
	assert.Equal(t, FrameTALB, tag.Frames[1].ID)
}

func TestTagLookupReturnsLastMatch(t *testing.T) {
	tag := &Tag{Frames: []Frame{
		{ID: FrameTXXX, Data: []byte("first")},
		{ID: FrameTXXX, Data: []byte("second")},
	}}
	f := tag.Lookup(FrameTXXX)
	require.NotNil(t, f)
	assert.Equal(t, "second", string(f.Data))

	all := tag.All(FrameTXXX)
	require.Len(t, all, 2)
	assert.Equal(t, "first", string(all[0].Data))
}
