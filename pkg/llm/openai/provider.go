// Package openai talks to any OpenAI-compatible /chat/completions endpoint.
// Hugging Face router, Groq and OpenAI itself differ only in base URL.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"docqa-be/pkg/llm"
	"docqa-be/pkg/retry"
)

const (
	HuggingFaceBaseURL = "https://router.huggingface.co/v1"
	GroqBaseURL        = "https://api.groq.com/openai/v1"
	OpenAIBaseURL      = "https://api.openai.com/v1"
)

var ErrEmptyChoices = errors.New("empty choices in completion response")

type ChatProvider struct {
	name    string
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = &ChatProvider{}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewChatProvider builds a provider; name only labels errors.
func NewChatProvider(name, apiKey, baseURL, model string) *ChatProvider {
	return &ChatProvider{
		name:    name,
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

func NewHuggingFaceProvider(apiKey, baseURL, model string) *ChatProvider {
	if baseURL == "" {
		baseURL = HuggingFaceBaseURL
	}
	return NewChatProvider("huggingface", apiKey, baseURL, model)
}

func NewGroqProvider(apiKey, baseURL, model string) *ChatProvider {
	if baseURL == "" {
		baseURL = GroqBaseURL
	}
	if model == "" {
		model = "llama3-8b-8192"
	}
	return NewChatProvider("groq", apiKey, baseURL, model)
}

func NewOpenAIProvider(apiKey, baseURL, model string) *ChatProvider {
	if baseURL == "" {
		baseURL = OpenAIBaseURL
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return NewChatProvider("openai", apiKey, baseURL, model)
}

func (p *ChatProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := &llm.Options{
		Model:       p.model,
		MaxTokens:   500,
		Temperature: llm.DefaultTemperature,
	}
	for _, o := range options {
		o(opts)
	}

	messages := make([]chatMessage, len(history))
	for i, m := range history {
		messages[i] = chatMessage{Role: m.Role, Content: m.Content}
	}

	jsonData, err := json.Marshal(chatRequest{
		Model:       opts.Model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", p.name, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s response: %w", p.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &retry.StatusError{Provider: p.name, StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("%s api returned error: %s", p.name, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", ErrEmptyChoices
	}

	return chatResp.Choices[0].Message.Content, nil
}

func (p *ChatProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}
