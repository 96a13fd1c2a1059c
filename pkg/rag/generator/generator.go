// Package generator produces the final answer from a question and the
// retrieved passages.
package generator

import (
	"context"
	"strings"

	"docqa-be/pkg/llm"
	"docqa-be/pkg/rag"
	"docqa-be/pkg/rag/prompt"
)

// AnswerGenerator turns a question plus supporting passages into answer text.
// Zero passages is valid and means retrieval found nothing.
type AnswerGenerator interface {
	Generate(ctx context.Context, question string, passages []rag.Passage) (string, error)
}

// LLMGenerator renders a grounded prompt and sends it to an LLM provider.
type LLMGenerator struct {
	provider llm.LLMProvider
	options  []llm.Option
}

func NewLLMGenerator(provider llm.LLMProvider, options ...llm.Option) *LLMGenerator {
	return &LLMGenerator{
		provider: provider,
		options:  options,
	}
}

func (g *LLMGenerator) Generate(ctx context.Context, question string, passages []rag.Passage) (string, error) {
	promptText := prompt.NewQuestionBuilder(question, passages).Build()

	answer, err := g.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: prompt.SystemInstruction},
		{Role: "user", Content: promptText},
	}, g.options...)
	if err != nil {
		return "", rag.Wrap(rag.KindGeneration, "answer model unavailable", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", rag.Errorf(rag.KindGeneration, "answer model returned an empty completion")
	}
	return answer, nil
}
