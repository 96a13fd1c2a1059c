package factory

import (
	"fmt"

	"docqa-be/pkg/embedding"
	"docqa-be/pkg/embedding/jina"
)

type Config struct {
	Provider      string // "ollama", "gemini", "jina" or "local"
	Model         string
	OllamaBaseURL string
	GeminiAPIKey  string
	JinaAPIKey    string
}

func NewEmbeddingProvider(cfg Config) (embedding.EmbeddingProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return embedding.NewOllamaProvider(cfg.OllamaBaseURL, cfg.Model), nil
	case "gemini":
		return embedding.NewGeminiProvider(cfg.GeminiAPIKey, cfg.Model), nil
	case "jina":
		return jina.NewJinaProvider(cfg.JinaAPIKey, cfg.Model), nil
	case "local", "":
		return embedding.NewLocalProvider(0), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
