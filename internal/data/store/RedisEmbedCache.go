package store

import (
	"context"
	"encoding/json"

	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/data/redisStore"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

// RedisEmbedCache persists embedding vectors keyed by model and text hash,
// so a rebuild over an unchanged corpus costs no provider calls. Implements
// embedding.CacheStore.
type RedisEmbedCache struct {
	store  *redisStore.Store
	logger *logging.Logger
}

// GetRedisEmbedCache returns nil when redis is offline so main can fall
// back to the in-memory cache.
func GetRedisEmbedCache(ctx context.Context) *RedisEmbedCache {
	inner := redisStore.GetRedisStore(ctx, config.RedisEmbedCache)
	if inner == nil {
		return nil
	}
	return &RedisEmbedCache{
		store:  inner,
		logger: logging.NewLogger("embedCache"),
	}
}

func (s *RedisEmbedCache) GetVector(ctx context.Context, key string) ([]float32, bool) {
	val, err := s.store.Get(ctx, key)
	if s.store.IsNil(err) {
		return nil, false
	} else if err != nil {
		s.logger.Error("error reading vector from redis", "error", err)
		return nil, false
	}

	var vec []float32
	if err := json.Unmarshal([]byte(val), &vec); err != nil {
		s.logger.Error("error unmarshalling cached vector", "error", err)
		return nil, false
	}
	return vec, true
}

func (s *RedisEmbedCache) PutVector(ctx context.Context, key string, vec []float32) error {
	data, err := json.Marshal(vec)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, key, data, config.RedisEmbedCacheTTL)
}

// TestEmbedCache wraps an externally provided store. Only in _test.go files.
func TestEmbedCache(store *redisStore.Store) *RedisEmbedCache {
	return &RedisEmbedCache{
		store:  store,
		logger: logging.NewLogger("test embedCache"),
	}
}
