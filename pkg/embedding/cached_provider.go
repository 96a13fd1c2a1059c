package embedding

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedProvider memoizes embeddings by task type and text. Safe because
// providers are deterministic for a fixed model.
type CachedProvider struct {
	next  EmbeddingProvider
	cache *cache.Cache
}

// NewCachedProvider caches results for ttl and purges expired items every 2*ttl.
func NewCachedProvider(next EmbeddingProvider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedProvider{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	key := taskType + "\x00" + text
	if x, found := p.cache.Get(key); found {
		return x.(*EmbeddingResponse), nil
	}

	res, err := p.next.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, res, cache.DefaultExpiration)
	return res, nil
}

// Len reports how many embeddings are cached.
func (p *CachedProvider) Len() int {
	return p.cache.ItemCount()
}
