// Package chunking splits normalized document text into overlapping passages
// sized for embedding-model input limits.
package chunking

import "unicode"

const (
	DefaultMaxSize = 1000
	DefaultOverlap = 200
)

// Chunk is a contiguous rune span of the source text.
type Chunk struct {
	Index int    `json:"index"`
	Start int    `json:"start"` // rune offset, inclusive
	End   int    `json:"end"`   // rune offset, exclusive
	Text  string `json:"text"`
}

// Len returns the chunk length in runes.
func (c Chunk) Len() int {
	return c.End - c.Start
}

type Chunker struct {
	maxSize int
	overlap int
}

// New builds a chunker measured in runes. Overlap that would stall progress is
// clamped to a quarter of the chunk size.
func New(maxSize, overlap int) *Chunker {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxSize {
		overlap = maxSize / 4
	}
	return &Chunker{maxSize: maxSize, overlap: overlap}
}

func (c *Chunker) MaxSize() int { return c.maxSize }
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits text. Spans are ordered by start offset, each at most maxSize
// runes, and together cover the text; consecutive spans share overlap runes.
func (c *Chunker) Chunk(text string) []Chunk {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}
	if n <= c.maxSize {
		return []Chunk{{Index: 0, Start: 0, End: n, Text: text}}
	}

	var chunks []Chunk
	start := 0
	for {
		end := start + c.maxSize
		if end >= n {
			chunks = append(chunks, newChunk(runes, len(chunks), start, n))
			return chunks
		}

		cut := c.findCut(runes, start, end)
		chunks = append(chunks, newChunk(runes, len(chunks), start, cut))
		start = cut - c.overlap
	}
}

func newChunk(runes []rune, index, start, end int) Chunk {
	return Chunk{Index: index, Start: start, End: end, Text: string(runes[start:end])}
}

// findCut picks the end of the chunk starting at start: the boundary of either
// kind nearest the limit, else the limit itself. Candidates must lie past
// start+overlap so the next chunk always advances.
func (c *Chunker) findCut(runes []rune, start, limit int) int {
	floor := start + c.overlap
	cut := max(lastParagraphBreak(runes, floor, limit), lastSentenceEnd(runes, floor, limit))
	if cut > 0 {
		return cut
	}
	return limit
}

// lastParagraphBreak returns the offset just after the last blank line or page
// break ending in (floor, limit], or 0.
func lastParagraphBreak(runes []rune, floor, limit int) int {
	for i := limit - 1; i >= floor; i-- {
		if runes[i] == '\f' {
			return i + 1
		}
		if runes[i] == '\n' && i > 0 && runes[i-1] == '\n' {
			return i + 1
		}
	}
	return 0
}

// lastSentenceEnd returns the offset just after the last terminator followed by
// whitespace, or 0.
func lastSentenceEnd(runes []rune, floor, limit int) int {
	for i := limit - 1; i >= floor; i-- {
		if !isTerminator(runes[i]) {
			continue
		}
		if i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			return i + 1
		}
	}
	return 0
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
