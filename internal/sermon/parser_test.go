package sermon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const canonicalDoc = `# Walking in Faith

## Primary Scripture

Hebrews 11:1-6

## Introduction

Faith is the assurance of things hoped for.

It shapes how we live every day.

## Biblical Context

The letter to the Hebrews was written to believers under pressure.

## Exegetical Insights

The word translated "assurance" carries the sense of a title deed.

## Sermon Points

### Point 1: Faith Sees the Unseen

Abraham obeyed without knowing where he was going.

### Point 2: Faith Acts

Noah built the ark before the first drop of rain.

## Practical Application

Choose one promise of God this week and act on it.

## Conclusion

Faith is not a leap into the dark but a walk into the light.

## Closing Prayer

Lord, strengthen our trust in You. Amen.
`

func TestParseCanonicalDocument(t *testing.T) {
	s := Parse(canonicalDoc)
	require.NotNil(t, s)

	assert.Equal(t, "Walking in Faith", s.Title)
	assert.Equal(t, "Hebrews 11:1-6", s.PrimaryScripture)
	assert.Contains(t, s.Introduction, "assurance of things hoped for")
	assert.Contains(t, s.Introduction, "shapes how we live")
	assert.Contains(t, s.BiblicalContext, "under pressure")
	assert.Contains(t, s.ExegeticalInsights, "title deed")
	assert.Contains(t, s.Application, "act on it")
	assert.Contains(t, s.Conclusion, "walk into the light")
	assert.Contains(t, s.ClosingPrayer, "Amen")

	require.Len(t, s.Points, 2)
	assert.Equal(t, "Faith Sees the Unseen", s.Points[0].Title)
	assert.Contains(t, s.Points[0].Content, "Abraham obeyed")
	assert.Equal(t, "Faith Acts", s.Points[1].Title)
	assert.Contains(t, s.Points[1].Content, "Noah built the ark")
}

func TestReconstructRoundTrip(t *testing.T) {
	first := Parse(canonicalDoc)
	require.NotNil(t, first)

	rebuilt := Reconstruct(first)
	second := Parse(rebuilt)
	require.NotNil(t, second)

	assert.Equal(t, first, second)
	// Повторная сборка стабильна.
	assert.Equal(t, rebuilt, Reconstruct(second))
}

func TestParseLenientMissingSections(t *testing.T) {
	doc := strings.Replace(canonicalDoc, "## Closing Prayer\n\nLord, strengthen our trust in You. Amen.\n", "", 1)
	s := Parse(doc)
	require.NotNil(t, s)
	assert.Empty(t, s.ClosingPrayer)
	assert.NotEmpty(t, s.Conclusion)
}

func TestParseHeadingVariants(t *testing.T) {
	doc := `# Title

## SCRIPTURE

John 3:16

## MAIN POINTS

### I. God Loved

He gave His Son.

## APPLICATION

Believe.
`
	s := Parse(doc)
	require.NotNil(t, s)
	assert.Equal(t, "John 3:16", s.PrimaryScripture)
	require.Len(t, s.Points, 1)
	assert.Equal(t, "God Loved", s.Points[0].Title)
	assert.Equal(t, "Believe.", s.Application)
}

func TestParseUnknownHeadingStaysInSection(t *testing.T) {
	doc := `## Introduction

Opening thought.

## Worship Notes

These lines belong to no known section.
`
	s := Parse(doc)
	require.NotNil(t, s)
	assert.Contains(t, s.Introduction, "Opening thought")
	assert.Contains(t, s.Introduction, "Worship Notes")
	assert.Contains(t, s.Introduction, "no known section")
}

func TestParseEmptyDocument(t *testing.T) {
	assert.Nil(t, Parse(""))
	assert.Nil(t, Parse("   \n\t\n"))
}

func TestParsePreambleBecomesIntroduction(t *testing.T) {
	s := Parse("Just a few lines\nwithout any headings.")
	require.NotNil(t, s)
	assert.Contains(t, s.Introduction, "without any headings")
}

func TestSpliceSection(t *testing.T) {
	s := Parse(canonicalDoc)
	require.NotNil(t, s)

	ok := s.SpliceSection(SectionIntroduction, "A brand new introduction.\n")
	assert.True(t, ok)
	assert.Equal(t, "A brand new introduction.", s.Introduction)

	ok = s.SpliceSection(SectionPoints, "### Point 1: New Point\n\nNew content.\n")
	assert.True(t, ok)
	require.Len(t, s.Points, 1)
	assert.Equal(t, "New Point", s.Points[0].Title)
	assert.Equal(t, "New content.", s.Points[0].Content)

	assert.False(t, s.SpliceSection("illustrations", "whatever"))

	rebuilt := Reconstruct(s)
	assert.Contains(t, rebuilt, "A brand new introduction.")
	assert.Contains(t, rebuilt, "### Point 1: New Point")
	// Остальные секции не тронуты.
	assert.Contains(t, rebuilt, "Hebrews 11:1-6")
	assert.Contains(t, rebuilt, "Amen")
}
