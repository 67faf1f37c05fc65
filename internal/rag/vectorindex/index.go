// Package vectorindex is the in-process vector store: unit-normalized chunk
// vectors plus the chunk metadata side table, kept in insertion order and
// persisted together so the pair can never drift apart.
package vectorindex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/akepally/ScholarRAG/internal/domain/paper"
)

// Index methods take the lock themselves; the engine additionally
// serializes writers and swaps whole snapshots, so readers never observe a
// half-built index even without blocking on it.
type Index struct {
	mu        sync.RWMutex
	model     string
	dimension int
	vectors   [][]float32
	chunks    []paper.Chunk
	byId      map[string]int
}

func New(model string) *Index {
	return &Index{
		model: model,
		byId:  make(map[string]int),
	}
}

func (x *Index) Model() string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.model
}

func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.chunks)
}

func (x *Index) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

// Add appends chunk/vector pairs. Append-only: a duplicate chunk id is an
// error, re-ingesting a paper must RemoveSource first. The batch is
// validated in full before anything is committed.
func (x *Index) Add(ctx context.Context, chunks []paper.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	dimension := x.dimension
	seen := make(map[string]bool, len(chunks))
	for i, c := range chunks {
		if len(vectors[i]) == 0 {
			return fmt.Errorf("empty vector for chunk %s", c.Id)
		}
		if dimension == 0 {
			dimension = len(vectors[i])
		}
		if len(vectors[i]) != dimension {
			return fmt.Errorf("vector for chunk %s has dimension %d, index uses %d", c.Id, len(vectors[i]), dimension)
		}
		if _, exists := x.byId[c.Id]; exists || seen[c.Id] {
			return fmt.Errorf("chunk %s already indexed", c.Id)
		}
		seen[c.Id] = true
	}

	x.dimension = dimension
	for i, c := range chunks {
		x.byId[c.Id] = len(x.chunks)
		x.chunks = append(x.chunks, c)
		x.vectors = append(x.vectors, normalizeVector(vectors[i]))
	}
	return nil
}

// Search returns the k most similar chunks by cosine similarity. Ties keep
// insertion order (earlier-inserted chunk wins). An empty index returns an
// empty result, not an error.
func (x *Index) Search(ctx context.Context, queryVec []float32, k int) ([]paper.ChunkScore, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if k <= 0 || len(x.chunks) == 0 {
		return nil, nil
	}
	if len(queryVec) != x.dimension {
		return nil, fmt.Errorf("query vector has dimension %d, index uses %d", len(queryVec), x.dimension)
	}

	q := normalizeVector(queryVec)
	scores := make([]float64, len(x.vectors))
	for i, v := range x.vectors {
		scores[i] = dot(q, v)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	out := make([]paper.ChunkScore, 0, k)
	for _, idx := range order[:k] {
		out = append(out, paper.ChunkScore{Chunk: x.chunks[idx], Score: scores[idx]})
	}
	return out, nil
}

// RemoveSource drops every chunk of one paper, preserving the relative
// insertion order of the survivors.
func (x *Index) RemoveSource(ctx context.Context, sourceId string) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	removed := 0
	var keptChunks []paper.Chunk
	var keptVectors [][]float32
	for i, c := range x.chunks {
		if c.SourceId == sourceId {
			removed++
			continue
		}
		keptChunks = append(keptChunks, c)
		keptVectors = append(keptVectors, x.vectors[i])
	}
	if removed == 0 {
		return 0, nil
	}

	x.chunks = keptChunks
	x.vectors = keptVectors
	x.byId = make(map[string]int, len(keptChunks))
	for i, c := range keptChunks {
		x.byId[c.Id] = i
	}
	if len(keptChunks) == 0 {
		x.dimension = 0
	}
	return removed, nil
}

// Reset drops every chunk and vector, returning the index to its
// freshly-constructed state.
func (x *Index) Reset(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.dimension = 0
	x.vectors = nil
	x.chunks = nil
	x.byId = make(map[string]int)
	return nil
}

// Chunks returns a copy of the metadata side table in insertion order.
// The lexical scorer rebuilds from this on every corpus change.
func (x *Index) Chunks() []paper.Chunk {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]paper.Chunk, len(x.chunks))
	copy(out, x.chunks)
	return out
}

// Clone returns an independent copy for copy-on-write ingestion: the engine
// mutates the clone while queries keep hitting the original, then swaps.
func (x *Index) Clone() *Index {
	x.mu.RLock()
	defer x.mu.RUnlock()

	c := &Index{
		model:     x.model,
		dimension: x.dimension,
		byId:      make(map[string]int, len(x.byId)),
	}
	c.vectors = make([][]float32, len(x.vectors))
	copy(c.vectors, x.vectors)
	c.chunks = make([]paper.Chunk, len(x.chunks))
	copy(c.chunks, x.chunks)
	for id, i := range x.byId {
		c.byId[id] = i
	}
	return c
}

// Checksum fingerprints the chunk corpus. Stored in the manifest so a saved
// index can never be paired with a different chunk set on load.
func (x *Index) Checksum() string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return checksumChunks(x.chunks)
}

func checksumChunks(chunks []paper.Chunk) string {
	lines := make([]string, 0, len(chunks))
	for _, c := range chunks {
		t := sha256.Sum256([]byte(c.Text))
		lines = append(lines, c.Id+":"+hex.EncodeToString(t[:]))
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func normalizeVector(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)

	out := make([]float32, len(vec))
	if norm == 0 {
		return out
	}
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
