package exchange

import (
	"testing"

	"github.com/atelier-socle/audiomarker/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChapterSet(t *testing.T) *ChapterSet {
	t.Helper()
	end1 := model.MustTimestampFromMillis(30_000)
	return &ChapterSet{Chapters: []ChapterEntry{
		{Start: model.MustTimestampFromMillis(0), End: &end1, Title: "Intro", URL: "https://example.com", ImageURL: "https://example.com/cover.jpg"},
		{Start: model.MustTimestampFromMillis(30_000), Title: "Main Segment"},
	}}
}

func TestPodloveJSONRoundTrip(t *testing.T) {
	set := sampleChapterSet(t)

	text, err := Emit(FormatPodloveJSON, set)
	require.NoError(t, err)

	got, err := Parse(FormatPodloveJSON, text)
	require.NoError(t, err)
	require.Len(t, got.Chapters, 2)
	assert.Equal(t, "Intro", got.Chapters[0].Title)
	assert.Equal(t, "https://example.com", got.Chapters[0].URL)
	assert.Equal(t, "https://example.com/cover.jpg", got.Chapters[0].ImageURL)
	require.NotNil(t, got.Chapters[0].End)
	assert.Equal(t, int64(30_000), got.Chapters[0].End.Milliseconds())
	assert.Equal(t, "Main Segment", got.Chapters[1].Title)
	assert.Nil(t, got.Chapters[1].End)
}

func TestPodloveXMLRoundTrip(t *testing.T) {
	set := sampleChapterSet(t)

	text, err := Emit(FormatPodloveXML, set)
	require.NoError(t, err)

	got, err := Parse(FormatPodloveXML, text)
	require.NoError(t, err)
	require.Len(t, got.Chapters, 2)
	assert.Equal(t, "Intro", got.Chapters[0].Title)
	assert.Equal(t, "Main Segment", got.Chapters[1].Title)
}

func TestMP4ChapsRoundTrip(t *testing.T) {
	set := sampleChapterSet(t)

	text, err := Emit(FormatMP4Chaps, set)
	require.NoError(t, err)

	got, err := Parse(FormatMP4Chaps, text)
	require.NoError(t, err)
	require.Len(t, got.Chapters, 2)
	assert.Equal(t, "Intro", got.Chapters[0].Title)
	assert.Equal(t, int64(0), got.Chapters[0].Start.Milliseconds())
	assert.Equal(t, int64(30_000), got.Chapters[1].Start.Milliseconds())
}

func TestFFMetadataRoundTrip(t *testing.T) {
	set := sampleChapterSet(t)

	text, err := Emit(FormatFFMetadata, set)
	require.NoError(t, err)

	got, err := Parse(FormatFFMetadata, text)
	require.NoError(t, err)
	require.Len(t, got.Chapters, 2)
	assert.Equal(t, "Intro", got.Chapters[0].Title)
	require.NotNil(t, got.Chapters[0].End)
}

func TestPodcasting2RoundTrip(t *testing.T) {
	set := sampleChapterSet(t)

	text, err := Emit(FormatPodcasting2, set)
	require.NoError(t, err)

	got, err := Parse(FormatPodcasting2, text)
	require.NoError(t, err)
	require.Len(t, got.Chapters, 2)
	assert.Equal(t, "Intro", got.Chapters[0].Title)
	assert.Equal(t, "https://example.com/cover.jpg", got.Chapters[0].ImageURL)
}

func TestCueSheetRoundTrip(t *testing.T) {
	set := sampleChapterSet(t)

	text, err := Emit(FormatCueSheet, set)
	require.NoError(t, err)

	got, err := Parse(FormatCueSheet, text)
	require.NoError(t, err)
	require.Len(t, got.Chapters, 2)
	assert.Equal(t, "Intro", got.Chapters[0].Title)
	// Cue sheet frame quantization is 1/75s; millisecond-exact starts
	// used here survive that rounding.
	assert.Equal(t, int64(0), got.Chapters[0].Start.Milliseconds())
}

func TestLRCChapterRoundTripOnCentisecondBoundaries(t *testing.T) {
	end1 := model.MustTimestampFromMillis(30_000)
	set := &ChapterSet{Chapters: []ChapterEntry{
		{Start: model.MustTimestampFromMillis(0), End: &end1, Title: "Intro"},
		{Start: model.MustTimestampFromMillis(30_000), Title: "Main Segment"},
	}}

	text, err := Emit(FormatLRC, set)
	require.NoError(t, err)

	got, err := Parse(FormatLRC, text)
	require.NoError(t, err)
	require.Len(t, got.Chapters, 2)
	assert.Equal(t, "Intro", got.Chapters[0].Title)
	assert.Equal(t, int64(30_000), got.Chapters[1].Start.Milliseconds())
}

func TestSRTRoundTrip(t *testing.T) {
	set := sampleChapterSet(t)

	text, err := Emit(FormatSRT, set)
	require.NoError(t, err)

	got, err := Parse(FormatSRT, text)
	require.NoError(t, err)
	require.Len(t, got.Chapters, 2)
	assert.Equal(t, "Intro", got.Chapters[0].Title)
	assert.Empty(t, got.Chapters[0].URL)
}

func TestWebVTTRoundTrip(t *testing.T) {
	set := sampleChapterSet(t)

	text, err := Emit(FormatWebVTT, set)
	require.NoError(t, err)
	assert.Contains(t, text, "WEBVTT")

	got, err := Parse(FormatWebVTT, text)
	require.NoError(t, err)
	require.Len(t, got.Chapters, 2)
	assert.Equal(t, "Intro", got.Chapters[0].Title)
}

func TestTTMLChapterRoundTrip(t *testing.T) {
	set := sampleChapterSet(t)

	text, err := Emit(FormatTTML, set)
	require.NoError(t, err)

	got, err := Parse(FormatTTML, text)
	require.NoError(t, err)
	require.Len(t, got.Chapters, 2)
	assert.Equal(t, "Intro", got.Chapters[0].Title)
	require.NotNil(t, got.Chapters[0].End)
	assert.Equal(t, int64(30_000), got.Chapters[0].End.Milliseconds())
}

func TestMarkdownIsExportOnly(t *testing.T) {
	set := sampleChapterSet(t)

	text, err := Emit(FormatMarkdown, set)
	require.NoError(t, err)
	assert.Contains(t, text, "Intro")

	_, err = Parse(FormatMarkdown, text)
	assert.Error(t, err)
}

func TestChapterListConversionRoundTrip(t *testing.T) {
	first, err := model.NewChapter(model.MustTimestampFromMillis(0), "Intro")
	require.NoError(t, err)
	first.URL = "https://example.com"
	cl := model.NewChapterList(first)

	set := FromChapterList(cl)
	require.Len(t, set.Chapters, 1)

	back := set.ToChapterList()
	require.Equal(t, 1, back.Len())
	assert.Equal(t, "Intro", back.At(0).Title)
	assert.Equal(t, "https://example.com", back.At(0).URL)
}

func TestChapterSetSkipsEmptyTitleOnConversion(t *testing.T) {
	set := &ChapterSet{Chapters: []ChapterEntry{{Start: model.Zero, Title: ""}}}
	cl := set.ToChapterList()
	assert.Equal(t, 0, cl.Len())
}

func TestParseLRCLyricsIsSingleLanguageNoSpeakersNoSegments(t *testing.T) {
	lrc := "[00:00.00]Hello there\n[00:05.00]Second line\n"

	sl, err := ParseLRCLyrics(lrc, "eng")
	require.NoError(t, err)
	assert.Equal(t, "eng", sl.Language)
	require.Len(t, sl.Lines, 2)
	assert.Equal(t, "Hello there", sl.Lines[0].Text)
	assert.False(t, sl.HasSpeakers())
	assert.False(t, sl.HasKaraoke())

	rendered := EmitLRCLyrics(*sl)
	reparsed, err := ParseLRCLyrics(rendered, "eng")
	require.NoError(t, err)
	require.Len(t, reparsed.Lines, 2)
	assert.Equal(t, sl.Lines[0].Text, reparsed.Lines[0].Text)
	assert.Equal(t, sl.Lines[1].Time.Milliseconds(), reparsed.Lines[1].Time.Milliseconds())
}

func TestTTMLLyricsFullFidelityRoundTrip(t *testing.T) {
	tracks := []model.SynchronizedLyrics{
		{
			Language:    "eng",
			ContentType: model.LyricContentLyrics,
			Lines: []model.LyricLine{
				{
					Time:    model.MustTimestampFromMillis(0),
					Speaker: "Narrator",
					Segments: []model.LyricSegment{
						{Start: model.MustTimestampFromMillis(0), End: model.MustTimestampFromMillis(500), Text: "Hello"},
						{Start: model.MustTimestampFromMillis(500), End: model.MustTimestampFromMillis(1000), Text: "world"},
					},
					Text: "Hello world",
				},
				{Time: model.MustTimestampFromMillis(2000), Text: "Plain line"},
			},
		},
	}

	doc := EmitTTMLLyrics(tracks)

	got, err := ParseTTMLLyrics(doc)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Lines, 2)

	first := got[0].Lines[0]
	assert.Equal(t, "Narrator", first.Speaker)
	assert.True(t, first.IsKaraoke())
	require.Len(t, first.Segments, 2)
	assert.Equal(t, "Hello", first.Segments[0].Text)
	assert.Equal(t, "world", first.Segments[1].Text)

	second := got[0].Lines[1]
	assert.False(t, second.IsKaraoke())
	assert.Equal(t, "Plain line", second.Text)
}
