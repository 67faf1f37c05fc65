package store

import (
	"context"
	"sync"
)

// InMemoryEmbedCache covers tests and redis-less setups. Vectors are stored
// as handed over and never mutated by readers.
type InMemoryEmbedCache struct {
	vecLock *sync.RWMutex
	vecMap  map[string][]float32
}

func InitInMemoryEmbedCache() *InMemoryEmbedCache {
	return &InMemoryEmbedCache{
		vecLock: new(sync.RWMutex),
		vecMap:  make(map[string][]float32),
	}
}

func (store *InMemoryEmbedCache) GetVector(ctx context.Context, key string) ([]float32, bool) {
	store.vecLock.RLock()
	defer store.vecLock.RUnlock()
	vec, found := store.vecMap[key]
	return vec, found
}

func (store *InMemoryEmbedCache) PutVector(ctx context.Context, key string, vec []float32) error {
	store.vecLock.Lock()
	defer store.vecLock.Unlock()
	store.vecMap[key] = vec
	return nil
}
