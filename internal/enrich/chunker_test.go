package enrich

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/docintel/internal/models"
)

// reassemble stitches chunk contents back together, trimming the overlapped
// prefix of each chunk using the recorded byte offsets.
func reassemble(chunks []models.Chunk) string {
	var b strings.Builder
	prevEnd := 0
	for _, c := range chunks {
		b.WriteString(c.Content[prevEnd-c.ByteStart:])
		prevEnd = c.ByteEnd
	}
	return b.String()
}

func TestChunkContentOverlapReconstruction(t *testing.T) {
	content := "Content 1\nContent 2\nContent 3"
	chunks := ChunkContent(content, nil, 20, 5)

	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].ByteStart)
	assert.Equal(t, 20, chunks[0].ByteEnd)
	assert.Equal(t, 15, chunks[1].ByteStart)
	assert.Equal(t, len(content), chunks[1].ByteEnd)

	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, len(chunks), c.TotalChunks)
		assert.LessOrEqual(t, len(c.Content), 20)
	}
	assert.Equal(t, content, reassemble(chunks))
}

func TestChunkContentRuneBoundaries(t *testing.T) {
	// three-byte runes force the splitter off the naive byte positions
	content := strings.Repeat("日本語テキスト", 10)
	chunks := ChunkContent(content, nil, 50, 10)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.True(t, strings.HasPrefix(content[c.ByteStart:], c.Content))
		assert.Equal(t, c.Content, string([]rune(c.Content)), "chunk must not split a rune")
	}
	assert.Equal(t, content, reassemble(chunks))
}

func TestChunkContentSingleChunk(t *testing.T) {
	chunks := ChunkContent("short", nil, 100, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 1, chunks[0].TotalChunks)
}

func TestChunkContentEmpty(t *testing.T) {
	assert.Nil(t, ChunkContent("", nil, 100, 10))
}

func TestChunkContentOverlapClamped(t *testing.T) {
	// overlap >= maxChars would never advance; it gets clamped instead
	chunks := ChunkContent(strings.Repeat("a", 30), nil, 10, 10)
	require.NotEmpty(t, chunks)
	assert.Equal(t, 30, chunks[len(chunks)-1].ByteEnd)
}

func TestChunkContentPageSpans(t *testing.T) {
	content := strings.Repeat("x", 40)
	pages := []models.Page{
		{Number: 1, ByteStart: 0, ByteEnd: 20},
		{Number: 2, ByteStart: 20, ByteEnd: 40},
	}
	chunks := ChunkContent(content, pages, 25, 5)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, 1, chunks[0].FirstPage)
	assert.Equal(t, 2, chunks[0].LastPage)
	assert.Equal(t, 2, chunks[len(chunks)-1].LastPage)
}
