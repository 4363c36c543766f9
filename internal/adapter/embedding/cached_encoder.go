package embedding

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"edu-recommender/internal/domain"
)

// CachedEncoder memoizes Encode results by exact query text. Embeddings for
// identical text are deterministic, so entries never go stale; the LRU
// bound only limits memory. Concurrent requests for the same text share one
// upstream call via singleflight. Failures are never cached.
type CachedEncoder struct {
	inner domain.VectorEncoder
	cache *lru.Cache[string, []float32]
	group singleflight.Group
}

// NewCachedEncoder wraps an encoder with a bounded memoization cache.
func NewCachedEncoder(inner domain.VectorEncoder, size int) (*CachedEncoder, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachedEncoder{inner: inner, cache: cache}, nil
}

func (c *CachedEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.cache.Get(text); ok {
		return vec, nil
	}

	result, err, _ := c.group.Do(text, func() (interface{}, error) {
		vec, err := c.inner.Encode(ctx, text)
		if err != nil {
			return nil, err
		}
		c.cache.Add(text, vec)
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]float32), nil
}

// EncodeBatch passes through uncached: batch callers (profile aggregation,
// the embedding backfill worker) rarely repeat inputs.
func (c *CachedEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.EncodeBatch(ctx, texts)
}

func (c *CachedEncoder) Dimensions() int {
	return c.inner.Dimensions()
}

var _ domain.VectorEncoder = (*CachedEncoder)(nil)
