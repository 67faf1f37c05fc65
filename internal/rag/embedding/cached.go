package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/akepally/ScholarRAG/pkg/logging"
)

// CacheStore is the persistence a cached embedder needs. The redis store
// implements it; the in-memory store covers tests and redis-less setups.
type CacheStore interface {
	GetVector(ctx context.Context, key string) ([]float32, bool)
	PutVector(ctx context.Context, key string, vec []float32) error
}

// Cached wraps an Embedder with an exact-text cache. Valid because the
// provider is deterministic for a fixed model version; the key includes
// the model id so a model switch never serves stale vectors.
type Cached struct {
	inner  Embedder
	store  CacheStore
	logger *logging.Logger
}

func NewCached(inner Embedder, store CacheStore) *Cached {
	return &Cached{
		inner:  inner,
		store:  store,
		logger: logging.NewLogger("embedding_cache"),
	}
}

func (c *Cached) ModelId() string { return c.inner.ModelId() }

func (c *Cached) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	key := cacheKey(c.inner.ModelId(), query)
	if vec, ok := c.store.GetVector(ctx, key); ok {
		return vec, nil
	}
	vec, err := c.inner.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := c.store.PutVector(ctx, key, vec); err != nil {
		c.logger.Warn("failed to cache query vector", "error", err)
	}
	return vec, nil
}

func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string
	for i, text := range texts {
		if vec, ok := c.store.GetVector(ctx, cacheKey(c.inner.ModelId(), text)); ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, idx := range missIdx {
		out[idx] = vecs[j]
		if err := c.store.PutVector(ctx, cacheKey(c.inner.ModelId(), texts[idx]), vecs[j]); err != nil {
			c.logger.Warn("failed to cache chunk vector", "error", err)
		}
	}
	return out, nil
}

func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return "emb:" + hex.EncodeToString(sum[:])
}
