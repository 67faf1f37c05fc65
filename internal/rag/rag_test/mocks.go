package rag_test

import (
	"context"
	"crypto/sha256"
	"strings"
	"sync"

	"github.com/akepally/ScholarRAG/internal/domain/paper"
)

// MockEmbedder implements embedding.Embedder with deterministic vectors:
// the same text always embeds to the same vector, and different texts
// land far apart. Tests can then assert rankings by embedding a query
// as one of the indexed texts.
type MockEmbedder struct {
	Model        string
	OnEmbedQuery func(ctx context.Context, query string) ([]float32, error)
	OnEmbedBatch func(ctx context.Context, texts []string) ([][]float32, error)

	mu         sync.Mutex
	BatchCalls int
}

func (m *MockEmbedder) ModelId() string {
	if m.Model != "" {
		return m.Model
	}
	return "mock-embedder-001"
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if m.OnEmbedQuery != nil {
		return m.OnEmbedQuery(ctx, query)
	}
	return TextVector(query), nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.BatchCalls++
	m.mu.Unlock()
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = TextVector(text)
	}
	return out, nil
}

// MockLLM implements llm.Provider.
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt string, temperature float32) (string, error)

	mu            sync.Mutex
	GenerateCalls int
	LastPrompt    string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	m.mu.Lock()
	m.GenerateCalls++
	m.LastPrompt = prompt
	m.mu.Unlock()
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt, temperature)
	}
	return "mocked llm answer", nil
}

func (m *MockLLM) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.GenerateCalls
}

// MockRemote implements rag.VectorSearcher, standing in for the qdrant
// store. State lives in memory so tests can inspect what was committed.
type MockRemote struct {
	OnSearch       func(ctx context.Context, queryVec []float32, k int) ([]paper.ChunkScore, error)
	OnAdd          func(ctx context.Context, chunks []paper.Chunk, vectors [][]float32) error
	OnRemoveSource func(ctx context.Context, sourceId string) (int, error)
	OnReset        func(ctx context.Context) error

	mu       sync.Mutex
	Chunks   []paper.Chunk
	Resets   int
	Removals []string
}

func (m *MockRemote) Search(ctx context.Context, queryVec []float32, k int) ([]paper.ChunkScore, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, queryVec, k)
	}
	return nil, nil
}

func (m *MockRemote) Add(ctx context.Context, chunks []paper.Chunk, vectors [][]float32) error {
	if m.OnAdd != nil {
		return m.OnAdd(ctx, chunks, vectors)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Chunks = append(m.Chunks, chunks...)
	return nil
}

func (m *MockRemote) RemoveSource(ctx context.Context, sourceId string) (int, error) {
	if m.OnRemoveSource != nil {
		return m.OnRemoveSource(ctx, sourceId)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removals = append(m.Removals, sourceId)
	kept := m.Chunks[:0]
	removed := 0
	for _, c := range m.Chunks {
		if c.SourceId == sourceId {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	m.Chunks = kept
	return removed, nil
}

func (m *MockRemote) Reset(ctx context.Context) error {
	if m.OnReset != nil {
		return m.OnReset(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resets++
	m.Chunks = nil
	return nil
}

func (m *MockRemote) Stored() []paper.Chunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]paper.Chunk, len(m.Chunks))
	copy(out, m.Chunks)
	return out
}

// TextVector hashes text into an 8-dimensional vector. The index
// normalizes on both sides, so magnitude does not matter; only the
// all-zero hash would break cosine, and that is guarded.
func TextVector(text string) []float32 {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	vec := make([]float32, 8)
	var norm float64
	for i := range vec {
		vec[i] = float32(int(sum[i*2])-128) / 128
		norm += float64(vec[i]) * float64(vec[i])
	}
	if norm == 0 {
		vec[0] = 1
	}
	return vec
}
