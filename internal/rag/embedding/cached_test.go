package embedding

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type memStore struct {
	mu      sync.Mutex
	vecs    map[string][]float32
	putErr  error
	putKeys []string
}

func (m *memStore) GetVector(ctx context.Context, key string) ([]float32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vec, ok := m.vecs[key]
	return vec, ok
}

func (m *memStore) PutVector(ctx context.Context, key string, vec []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	if m.vecs == nil {
		m.vecs = make(map[string][]float32)
	}
	m.vecs[key] = vec
	m.putKeys = append(m.putKeys, key)
	return nil
}

func TestCached_QueryHitSkipsProvider(t *testing.T) {
	queryCalls := 0
	inner := &scriptedEmbedder{onEmbedQuery: func(ctx context.Context, query string) ([]float32, error) {
		queryCalls++
		return []float32{42}, nil
	}}
	c := NewCached(inner, &memStore{})

	first, err := c.EmbedQuery(context.Background(), "what is attention")
	if err != nil || first[0] != 42 {
		t.Fatalf("first call = (%v, %v)", first, err)
	}
	second, err := c.EmbedQuery(context.Background(), "what is attention")
	if err != nil || second[0] != 42 {
		t.Fatalf("second call = (%v, %v)", second, err)
	}
	if queryCalls != 1 {
		t.Errorf("provider calls = %d, want 1", queryCalls)
	}
}

func TestCached_KeyIncludesModel(t *testing.T) {
	store := &memStore{}
	a := NewCached(&scriptedEmbedder{model: "model-a"}, store)
	b := NewCached(&scriptedEmbedder{model: "model-b"}, store)

	if _, err := a.EmbedQuery(context.Background(), "same text"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.EmbedQuery(context.Background(), "same text"); err != nil {
		t.Fatal(err)
	}
	if len(store.putKeys) != 2 || store.putKeys[0] == store.putKeys[1] {
		t.Errorf("keys = %v, same text under two models must not collide", store.putKeys)
	}
}

func TestCached_BatchFillsOnlyMisses(t *testing.T) {
	inner := &scriptedEmbedder{}
	store := &memStore{}
	c := NewCached(inner, store)

	// Warm hits for the first and third text.
	if err := store.PutVector(context.Background(), cacheKey(inner.ModelId(), "aa"), []float32{100}); err != nil {
		t.Fatal(err)
	}
	if err := store.PutVector(context.Background(), cacheKey(inner.ModelId(), "cccc"), []float32{300}); err != nil {
		t.Fatal(err)
	}

	got, err := c.EmbedBatch(context.Background(), []string{"aa", "b", "cccc", "ddd"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("vectors = %d, want 4", len(got))
	}
	// Hits keep their cached vectors; misses come from the provider,
	// which embeds text length in the default scripted mock.
	if got[0][0] != 100 || got[2][0] != 300 {
		t.Errorf("cached positions = %v, %v; want 100 and 300", got[0], got[2])
	}
	if got[1][0] != 1 || got[3][0] != 3 {
		t.Errorf("miss positions = %v, %v; want provider vectors in order", got[1], got[3])
	}
	if inner.batchCalls != 1 || inner.batchSizes[0] != 2 {
		t.Errorf("provider saw %v batches of %v, want one batch with the two misses", inner.batchCalls, inner.batchSizes)
	}

	// Misses are now warm.
	again, err := c.EmbedBatch(context.Background(), []string{"b", "ddd"})
	if err != nil {
		t.Fatal(err)
	}
	if inner.batchCalls != 1 {
		t.Error("a fully warm batch must not reach the provider")
	}
	if again[0][0] != 1 || again[1][0] != 3 {
		t.Errorf("warm batch = %v", again)
	}
}

func TestCached_ProviderErrorPropagates(t *testing.T) {
	inner := &scriptedEmbedder{onEmbedBatch: func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("quota exceeded")
	}}
	c := NewCached(inner, &memStore{})

	if _, err := c.EmbedBatch(context.Background(), []string{"x"}); err == nil {
		t.Error("provider failure must propagate")
	}
}

func TestCached_StoreFailureIsNotFatal(t *testing.T) {
	store := &memStore{putErr: errors.New("redis gone")}
	c := NewCached(&scriptedEmbedder{}, store)

	vec, err := c.EmbedQuery(context.Background(), "q")
	if err != nil || len(vec) == 0 {
		t.Errorf("EmbedQuery = (%v, %v), a cache write failure must not fail the call", vec, err)
	}

	got, err := c.EmbedBatch(context.Background(), []string{"one", "two"})
	if err != nil || len(got) != 2 {
		t.Errorf("EmbedBatch = (%v, %v)", got, err)
	}
}
