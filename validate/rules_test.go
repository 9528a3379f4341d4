package validate

import (
	"testing"

	"github.com/atelier-socle/audiomarker/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chapterOrFail(t *testing.T, startMs int64, title string) model.Chapter {
	t.Helper()
	ch, err := model.NewChapter(model.MustTimestampFromMillis(startMs), title)
	require.NoError(t, err)
	return ch
}

func TestRunWithNoIssuesIsValid(t *testing.T) {
	info := model.AudioFileInfo{Metadata: model.AudioMetadata{Title: "Track"}}
	result := Run(info, DefaultRules())
	assert.True(t, result.IsValid())
	assert.Empty(t, result.Errors())
}

func TestChapterOrderRuleFlagsOutOfOrderChapters(t *testing.T) {
	cl := model.NewChapterList(
		chapterOrFail(t, 5000, "Second"),
		chapterOrFail(t, 1000, "First"),
	)
	info := model.AudioFileInfo{Metadata: model.AudioMetadata{Title: "T"}, Chapters: cl}

	result := Run(info, DefaultRules())
	require.False(t, result.IsValid())
	found := false
	for _, iss := range result.Errors() {
		if iss.Rule == "chapter-order" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestChapterOverlapRuleFlagsOverlap(t *testing.T) {
	first := chapterOrFail(t, 0, "First")
	first, err := first.WithEnd(model.MustTimestampFromMillis(5000))
	require.NoError(t, err)
	second := chapterOrFail(t, 3000, "Second")

	cl := model.NewChapterList(first, second)
	info := model.AudioFileInfo{Metadata: model.AudioMetadata{Title: "T"}, Chapters: cl}

	result := Run(info, DefaultRules())
	assert.False(t, result.IsValid())
}

func TestChapterTitleRuleFlagsEmptyTitle(t *testing.T) {
	cl := model.NewChapterList(model.Chapter{Start: model.Zero, Title: ""})
	info := model.AudioFileInfo{Metadata: model.AudioMetadata{Title: "T"}, Chapters: cl}

	result := Run(info, []Rule{chapterTitleRule{}})
	require.Len(t, result.Issues, 1)
	assert.Equal(t, SeverityError, result.Issues[0].Severity)
}

func TestChapterBoundsRuleFlagsStartNotBeforeEnd(t *testing.T) {
	end := model.MustTimestampFromMillis(1000)
	cl := model.NewChapterList(model.Chapter{Start: model.MustTimestampFromMillis(2000), Title: "Bad", End: &end})
	info := model.AudioFileInfo{Chapters: cl}

	result := Run(info, []Rule{chapterBoundsRule{}})
	require.Len(t, result.Issues, 1)
}

func TestMetadataTitleRuleWarnsOnEmptyTitle(t *testing.T) {
	info := model.AudioFileInfo{}
	result := Run(info, []Rule{metadataTitleRule{}})
	require.Len(t, result.Issues, 1)
	assert.Equal(t, SeverityWarning, result.Issues[0].Severity)
	assert.True(t, result.IsValid())
}

func TestMetadataYearRuleBounds(t *testing.T) {
	rule := metadataYearRule{currentYear: func() int { return 2026 }}

	bad := -1
	info := model.AudioFileInfo{Metadata: model.AudioMetadata{Year: &bad}}
	assert.NotEmpty(t, rule.Validate(info))

	tooFar := 2028
	info.Metadata.Year = &tooFar
	assert.NotEmpty(t, rule.Validate(info))

	ok := 2025
	info.Metadata.Year = &ok
	assert.Empty(t, rule.Validate(info))

	nextYear := 2027
	info.Metadata.Year = &nextYear
	assert.Empty(t, rule.Validate(info))
}

func TestArtworkFormatRuleFlagsUnknownFormat(t *testing.T) {
	info := model.AudioFileInfo{Metadata: model.AudioMetadata{
		Artwork: &model.Artwork{Format: model.ArtworkFormatUnknown},
	}}
	result := Run(info, []Rule{artworkFormatRule{}})
	require.Len(t, result.Issues, 1)
}

func TestLanguageCodeRuleRequiresThreeLetterLowercase(t *testing.T) {
	for _, lang := range []string{"EN", "e", "eng1"} {
		info := model.AudioFileInfo{Metadata: model.AudioMetadata{Language: lang}}
		result := Run(info, []Rule{languageCodeRule{}})
		assert.NotEmpty(t, result.Issues, lang)
	}

	info := model.AudioFileInfo{Metadata: model.AudioMetadata{Language: "eng"}}
	result := Run(info, []Rule{languageCodeRule{}})
	assert.Empty(t, result.Issues)
}

func TestDefaultRulesRunInFixedOrder(t *testing.T) {
	rules := DefaultRules()
	require.Len(t, rules, 10)
	assert.Equal(t, "chapter-order", rules[0].Name())
	assert.Equal(t, "rating-range", rules[len(rules)-1].Name())
}
