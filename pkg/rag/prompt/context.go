package prompt

import (
	"docqa-be/pkg/rag"
	"docqa-be/pkg/rag/index"
)

// Assemble turns ranked search results into passages that fit budget runes.
// Higher-ranked passages are kept whole; the first passage that crosses the
// budget is cut to the remaining space and everything ranked below it is
// dropped. budget <= 0 means no limit.
func Assemble(results []index.Result, budget int) []rag.Passage {
	passages := make([]rag.Passage, 0, len(results))
	remaining := budget

	for _, r := range results {
		text := r.Chunk.Text
		truncated := false

		if budget > 0 {
			if remaining <= 0 {
				break
			}
			runes := []rune(text)
			if len(runes) > remaining {
				text = string(runes[:remaining])
				truncated = true
			}
			remaining -= len([]rune(text))
		}

		passages = append(passages, rag.Passage{
			ChunkID:    r.ChunkID,
			ChunkIndex: r.Chunk.Index,
			Text:       text,
			Similarity: r.Similarity,
			Truncated:  truncated,
		})
		if truncated {
			break
		}
	}
	return passages
}
