package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMarkdownShortTextSingleChunk(t *testing.T) {
	chunks := splitMarkdown("A short note.", 1500, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short note.", chunks[0])
}

func TestSplitMarkdownEmpty(t *testing.T) {
	assert.Nil(t, splitMarkdown("", 1500, 200))
	assert.Nil(t, splitMarkdown("   \n\n  ", 1500, 200))
}

func TestSplitMarkdownRespectsChunkSize(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("This paragraph talks about company policy in a moderate amount of detail. ")
		sb.WriteString("It keeps going for a couple of sentences to fill out the text.")
		sb.WriteString("\n\n")
	}

	chunks := splitMarkdown(sb.String(), 500, 100)

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 500, "chunk %d exceeds size", i)
		assert.NotEmpty(t, chunk)
	}
}

func TestSplitMarkdownKeepsHeadingWithParagraph(t *testing.T) {
	text := "# Leave Policy\n\nAnnual leave accrues monthly.\n\n# Remote Work\n\nRemote work requires approval."

	paragraphs := splitParagraphs(text)

	require.Len(t, paragraphs, 2)
	assert.True(t, strings.HasPrefix(paragraphs[0], "# Leave Policy\n\n"))
	assert.True(t, strings.HasPrefix(paragraphs[1], "# Remote Work\n\n"))
}

func TestSplitParagraphsTrailingHeading(t *testing.T) {
	paragraphs := splitParagraphs("Some intro text.\n\n# Dangling Heading")

	require.Len(t, paragraphs, 2)
	assert.Equal(t, "# Dangling Heading", paragraphs[1])
}

func TestSplitMarkdownOverlapCarriesText(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		sb.WriteString("Sentence number filler content for the overlap check.\n\n")
	}

	chunks := splitMarkdown(sb.String(), 300, 80)
	require.Greater(t, len(chunks), 1)

	// Each chunk after the first starts with text carried from its predecessor
	for i := 1; i < len(chunks); i++ {
		head := chunks[i]
		if len(head) > 40 {
			head = head[:40]
		}
		assert.Contains(t, chunks[i-1], strings.Fields(head)[0])
	}
}

func TestSplitLongTextBreaksOnSentences(t *testing.T) {
	text := strings.Repeat("One full sentence ends here. ", 30)

	chunks := splitLongText(strings.TrimSpace(text), 200, 40)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 200)
	}
	assert.True(t, strings.HasSuffix(chunks[0], "."))
}

func TestOverlapTailStartsAtWordBoundary(t *testing.T) {
	tail := overlapTail("the quick brown fox jumps over the lazy dog", 15)

	assert.NotEmpty(t, tail)
	assert.False(t, strings.HasPrefix(tail, " "))
	assert.True(t, strings.HasSuffix(tail, "dog"))
	// Never starts mid-word
	assert.Contains(t, []string{"the lazy dog", "lazy dog", "dog"}, tail)
}

func TestOverlapTailShortText(t *testing.T) {
	assert.Empty(t, overlapTail("tiny", 10))
	assert.Empty(t, overlapTail("anything", 0))
}
