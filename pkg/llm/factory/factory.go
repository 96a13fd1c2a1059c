package factory

import (
	"fmt"

	"docqa-be/pkg/llm"
	"docqa-be/pkg/llm/ollama"
	"docqa-be/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "huggingface":
		return openai.NewHuggingFaceProvider(apiKey, baseURL, modelName), nil
	case "groq":
		return openai.NewGroqProvider(apiKey, baseURL, modelName), nil
	case "openai":
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
