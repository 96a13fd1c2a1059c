package llm

import (
	"context"

	"docqa-be/pkg/retry"
)

type retryingProvider struct {
	next   LLMProvider
	policy retry.Policy
}

// WithRetry wraps provider so transient failures are retried under policy.
func WithRetry(provider LLMProvider, policy retry.Policy) LLMProvider {
	return &retryingProvider{next: provider, policy: policy}
}

func (p *retryingProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	return retry.Do(ctx, p.policy, func(ctx context.Context) (string, error) {
		return p.next.Chat(ctx, history, options...)
	})
}

func (p *retryingProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return retry.Do(ctx, p.policy, func(ctx context.Context) (string, error) {
		return p.next.Generate(ctx, prompt, options...)
	})
}
