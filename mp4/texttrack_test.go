package mp4

import (
	"testing"

	"github.com/atelier-socle/audiomarker/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSampleBytesRoundTripsThroughParseTextSample(t *testing.T) {
	s := textSample{startMs: 1500, text: "Chapter One"}
	got := parseTextSample(s.sampleBytes())
	assert.Equal(t, "Chapter One", got)
}

func TestComputeSampleTimingSingleSampleUsesFallback(t *testing.T) {
	samples := []textSample{{startMs: 0, text: "only"}}
	timing := computeSampleTiming(samples, 1000, 4000)
	require.Len(t, timing.deltas, 1)
	assert.Equal(t, uint32(4000), timing.deltas[0])
	assert.Equal(t, uint32(4000), timing.totalUnits)
}

func TestComputeSampleTimingMultiSampleUsesGaps(t *testing.T) {
	samples := []textSample{
		{startMs: 0, text: "a"},
		{startMs: 1000, text: "b"},
		{startMs: 3000, text: "c"},
	}
	timing := computeSampleTiming(samples, 1000, 0)
	require.Len(t, timing.deltas, 3)
	assert.Equal(t, uint32(1000), timing.deltas[0])
	assert.Equal(t, uint32(2000), timing.deltas[1])
	assert.Equal(t, uint32(2000), timing.deltas[2]) // last sample repeats the prior delta
}

func TestChapterTextSamplesOrdersByChapter(t *testing.T) {
	start1, _ := model.NewTimestampFromMillis(0)
	start2, _ := model.NewTimestampFromMillis(5000)
	ch1, _ := model.NewChapter(start1, "Intro")
	ch2, _ := model.NewChapter(start2, "Verse")
	list := model.NewChapterList(ch1, ch2)

	samples := chapterTextSamples(list)
	require.Len(t, samples, 2)
	assert.Equal(t, "Intro", samples[0].text)
	assert.Equal(t, int64(0), samples[0].startMs)
	assert.Equal(t, "Verse", samples[1].text)
	assert.Equal(t, int64(5000), samples[1].startMs)
}

func TestRenderLyricsTrackTextPicksLRCForSimpleTrack(t *testing.T) {
	ts, _ := model.NewTimestampFromMillis(1000)
	sl := model.SynchronizedLyrics{
		Language: "eng",
		Lines:    []model.LyricLine{{Time: ts, Text: "hello"}},
	}
	text := renderLyricsTrackText([]model.SynchronizedLyrics{sl})
	assert.Contains(t, text, "hello")
	assert.NotContains(t, text, "<tt")
}

func TestRenderLyricsTrackTextPicksTTMLForKaraoke(t *testing.T) {
	ts, _ := model.NewTimestampFromMillis(1000)
	end, _ := model.NewTimestampFromMillis(1500)
	sl := model.SynchronizedLyrics{
		Language: "eng",
		Lines: []model.LyricLine{{
			Time: ts,
			Text: "hello",
			Segments: []model.LyricSegment{
				{Start: ts, End: end, Text: "hel"},
			},
		}},
	}
	text := renderLyricsTrackText([]model.SynchronizedLyrics{sl})
	assert.Contains(t, text, "<tt")
}

func TestRenderLyricsTrackTextPicksTTMLForMultipleTracks(t *testing.T) {
	ts, _ := model.NewTimestampFromMillis(0)
	en := model.SynchronizedLyrics{Language: "eng", Lines: []model.LyricLine{{Time: ts, Text: "hi"}}}
	fr := model.SynchronizedLyrics{Language: "fra", Lines: []model.LyricLine{{Time: ts, Text: "salut"}}}
	text := renderLyricsTrackText([]model.SynchronizedLyrics{en, fr})
	assert.Contains(t, text, "<tt")
}

func TestBuildTrackBoxesHaveExpectedTypesAndWellFormedSizes(t *testing.T) {
	boxes := map[string][]byte{
		"tkhd": buildTkhd(7, 9000),
		"mdhd": buildMdhd(1000, 9000),
		"hdlr": buildHdlr(chapterHandlerType, "Chapters"),
		"stsd": buildTx3gStsd(),
		"stts": buildStts([]uint32{1000, 2000}),
		"stsc": buildStsc(),
		"stsz": buildStsz([][]byte{[]byte("a"), []byte("bb")}),
		"co64": buildCo64([]int64{100, 200}),
		"dinf": buildDinf(),
	}
	for boxType, raw := range boxes {
		require.GreaterOrEqual(t, len(raw), 8, boxType)
		children := readChildBoxes(raw)
		require.Len(t, children, 1, boxType)
		assert.Equal(t, boxType, string(children[0].Type[:]), boxType)
		assert.Equal(t, len(raw), len(children[0].Raw), boxType)
	}
}

func TestBuildTrefAndPatchSoundTrackRef(t *testing.T) {
	assert.Nil(t, buildTref(0))

	tref := buildTref(9)
	children := readChildBoxes(tref)
	require.Len(t, children, 1)
	chapChildren := readChildBoxes(children[0].Data)
	require.Len(t, chapChildren, 1)
	assert.Equal(t, "chap", string(chapChildren[0].Type[:]))

	trak := buildBox("trak", append(buildTkhd(1, 1000), buildMdhd(1000, 1000)...))
	patched := patchSoundTrackRef(trak, 9)
	assert.Equal(t, uint32(9), trakChapterRef(boxContent(patched)))

	cleared := patchSoundTrackRef(patched, 0)
	assert.Equal(t, uint32(0), trakChapterRef(boxContent(cleared)))
}

func TestBuildTextTrackPlaceholderOffsetsLayout(t *testing.T) {
	samples := []textSample{{startMs: 0, text: "one"}, {startMs: 2000, text: "two"}}
	trak := buildTextTrack(5, 1000, chapterHandlerType, "Chapters", samples, 0, -1000, 500)

	children := readChildBoxes(trak)
	require.Len(t, children, 1)
	assert.Equal(t, "trak", string(children[0].Type[:]))
	assert.Equal(t, uint32(5), trakTrackID(children[0].Data))
}
