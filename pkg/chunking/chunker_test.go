package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := New(0, -1)
		assert.Equal(t, DefaultMaxSize, c.MaxSize())
		assert.Equal(t, 0, c.Overlap())
	})

	t.Run("overlap clamped below size", func(t *testing.T) {
		c := New(10, 10)
		assert.Equal(t, 2, c.Overlap())
	})
}

func TestChunk_EmptyText(t *testing.T) {
	assert.Empty(t, New(100, 10).Chunk(""))
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	text := "The sky is blue. Water is wet."
	chunks := New(100, 20).Chunk(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, Chunk{Index: 0, Start: 0, End: len([]rune(text)), Text: text}, chunks[0])
}

func TestChunk_PrefersSentenceBoundary(t *testing.T) {
	chunks := New(12, 0).Chunk("Aaaa. Bbbb. Cccc.")

	require.Len(t, chunks, 2)
	assert.Equal(t, "Aaaa. Bbbb.", chunks[0].Text)
	assert.Equal(t, " Cccc.", chunks[1].Text)
}

func TestChunk_CutsAtNearestBoundary(t *testing.T) {
	t.Run("sentence end closer than paragraph break", func(t *testing.T) {
		text := "Intro line here.\n\n" + strings.Repeat("x", 70) + ". " + strings.Repeat("y", 200)
		chunks := New(100, 10).Chunk(text)

		require.NotEmpty(t, chunks)
		assert.Equal(t, 89, chunks[0].End)
		assert.Equal(t, "Intro line here.\n\n"+strings.Repeat("x", 70)+".", chunks[0].Text)
	})

	t.Run("short window", func(t *testing.T) {
		chunks := New(20, 0).Chunk("Intro.\n\nFirst. Second. Third.")

		require.NotEmpty(t, chunks)
		assert.Equal(t, "Intro.\n\nFirst.", chunks[0].Text)
	})

	t.Run("paragraph break closer than sentence end", func(t *testing.T) {
		chunks := New(14, 0).Chunk("One. Two\n\nThree four five")

		require.NotEmpty(t, chunks)
		assert.Equal(t, "One. Two\n\n", chunks[0].Text)
	})
}

func TestChunk_PageBreakIsBoundary(t *testing.T) {
	chunks := New(10, 0).Chunk("page one\n\f\npage two text")

	require.NotEmpty(t, chunks)
	assert.Equal(t, "page one\n\f", chunks[0].Text)
}

func TestChunk_HardCutWithOverlap(t *testing.T) {
	chunks := New(10, 3).Chunk("abcdefghijklmnopqrstuvwxyz")

	require.Len(t, chunks, 4)
	assert.Equal(t, "abcdefghij", chunks[0].Text)
	assert.Equal(t, "hijklmnopq", chunks[1].Text)
	assert.Equal(t, "opqrstuvwx", chunks[2].Text)
	assert.Equal(t, "vwxyz", chunks[3].Text)
}

func TestChunk_MultibyteOffsetsAreRunes(t *testing.T) {
	text := strings.Repeat("é", 25)
	chunks := New(10, 2).Chunk(text)

	for _, c := range chunks {
		assert.LessOrEqual(t, c.Len(), 10)
		assert.Equal(t, c.Len(), len([]rune(c.Text)))
	}
}

func TestChunk_CoverageProperty(t *testing.T) {
	texts := []string{
		strings.Repeat("word ", 500),
		strings.Repeat("A short sentence. ", 120),
		strings.Repeat("Para line one.\n\nPara line two!\n", 60),
		strings.Repeat("x", 2345),
		"Mixed? Yes! Sure.\f" + strings.Repeat("tail ", 90),
	}
	configs := []struct{ size, overlap int }{
		{50, 0}, {50, 10}, {128, 32}, {300, 299}, {7, 3},
	}

	for _, text := range texts {
		runes := []rune(text)
		for _, cfg := range configs {
			c := New(cfg.size, cfg.overlap)
			chunks := c.Chunk(text)

			require.NotEmpty(t, chunks)
			assert.Equal(t, 0, chunks[0].Start)
			assert.Equal(t, len(runes), chunks[len(chunks)-1].End)

			for i, ch := range chunks {
				assert.Equal(t, i, ch.Index)
				assert.LessOrEqual(t, ch.Len(), c.MaxSize())
				assert.Greater(t, ch.Len(), 0)
				assert.Equal(t, string(runes[ch.Start:ch.End]), ch.Text)
				if i > 0 {
					prev := chunks[i-1]
					assert.GreaterOrEqual(t, ch.Start, prev.Start)
					assert.Equal(t, prev.End-c.Overlap(), ch.Start)
				}
			}
		}
	}
}
