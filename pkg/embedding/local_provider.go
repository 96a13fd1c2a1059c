package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

const DefaultLocalDimension = 384

// LocalProvider embeds text by feature hashing its lowercased word tokens.
// It needs no network and is fully deterministic; retrieval quality is
// lexical, not semantic.
type LocalProvider struct {
	dimension int
}

func NewLocalProvider(dimension int) *LocalProvider {
	if dimension <= 0 {
		dimension = DefaultLocalDimension
	}
	return &LocalProvider{dimension: dimension}
}

func (p *LocalProvider) Dimension() int {
	return p.dimension
}

func (p *LocalProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values := make([]float32, p.dimension)
	for _, token := range tokenize(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()

		bucket := int(sum % uint64(p.dimension))
		if sum&(1<<63) != 0 {
			values[bucket]--
		} else {
			values[bucket]++
		}
	}
	return NewResponse(values), nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
