package embedding

import (
	"context"

	"docqa-be/pkg/retry"
)

// RetryingProvider retries transient provider failures under a bounded policy.
type RetryingProvider struct {
	next   EmbeddingProvider
	policy retry.Policy
}

func WithRetry(next EmbeddingProvider, policy retry.Policy) *RetryingProvider {
	return &RetryingProvider{next: next, policy: policy}
}

func (p *RetryingProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	return retry.Do(ctx, p.policy, func(ctx context.Context) (*EmbeddingResponse, error) {
		return p.next.Generate(ctx, text, taskType)
	})
}
