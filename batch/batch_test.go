package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/atelier-socle/audiomarker"
	"github.com/atelier-socle/audiomarker/id3v2"
	"github.com/atelier-socle/audiomarker/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSampleMP3(t *testing.T, dir, name, title string) string {
	t.Helper()

	info := model.NewAudioFileInfo()
	info.Metadata.Title = title

	tag, err := id3v2.FromAudioFileInfo(info, id3v2.Version23)
	require.NoError(t, err)

	data, err := id3v2.EmitTag(tag, id3v2.DefaultPaddingSize)
	require.NoError(t, err)
	// An MPEG frame header after the tag, so the file keeps an audio
	// stream (and its sync word) once the tag is stripped.
	data = append(data, 0xFF, 0xFB, 0x90, 0x00)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRunSummaryWithOneMissingFile(t *testing.T) {
	dir := t.TempDir()
	a := writeSampleMP3(t, dir, "a.mp3", "Track A")
	b := writeSampleMP3(t, dir, "b.mp3", "Track B")
	missing := filepath.Join(dir, "missing.mp3")

	facade := audiomarker.New()
	items := []Item{
		{URL: a, Operation: OpRead},
		{URL: missing, Operation: OpRead},
		{URL: b, Operation: OpRead},
	}

	summary := Run(context.Background(), facade, items, 2)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, summary.Errors, 1)
	assert.Len(t, summary.ReadResults, 2)
}

func TestStreamEmitsMonotonicallyIncreasingCompletedAndFinalElement(t *testing.T) {
	dir := t.TempDir()
	a := writeSampleMP3(t, dir, "a.mp3", "Track A")
	b := writeSampleMP3(t, dir, "b.mp3", "Track B")
	c := writeSampleMP3(t, dir, "c.mp3", "Track C")

	facade := audiomarker.New()
	items := []Item{
		{URL: a, Operation: OpRead},
		{URL: b, Operation: OpRead},
		{URL: c, Operation: OpRead},
	}

	var completedSeq []int
	var sawFinished bool
	for progress := range Stream(context.Background(), facade, items, 2) {
		if progress.IsFinished {
			sawFinished = true
			continue
		}
		completedSeq = append(completedSeq, progress.Completed)
	}

	require.True(t, sawFinished)
	require.Len(t, completedSeq, 3)
	for i := 1; i < len(completedSeq); i++ {
		assert.Greater(t, completedSeq[i], completedSeq[i-1])
	}
	assert.Equal(t, 3, completedSeq[len(completedSeq)-1])
}

func TestRunStripAndReadOperations(t *testing.T) {
	dir := t.TempDir()
	path := writeSampleMP3(t, dir, "strip.mp3", "Before Strip")

	facade := audiomarker.New()
	summary := Run(context.Background(), facade, []Item{{URL: path, Operation: OpStrip}}, 1)
	require.Equal(t, 1, summary.Succeeded)

	readSummary := Run(context.Background(), facade, []Item{{URL: path, Operation: OpRead}}, 1)
	require.Equal(t, 1, readSummary.Succeeded)
	require.Len(t, readSummary.ReadResults, 1)
	assert.Empty(t, readSummary.ReadResults[0].Metadata.Title)
}
