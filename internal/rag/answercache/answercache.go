// Package answercache keeps recently produced answers keyed by question
// embedding, so near-identical questions skip retrieval and generation.
// Entries are bound to the retrieval settings that produced them and the
// whole cache is dropped whenever the index is swapped.
package answercache

import (
	"math"
	"sync"

	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/rag/synthesize"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

type entry struct {
	vector   []float32
	settings string
	result   synthesize.Result
}

type Cache struct {
	mu       sync.Mutex
	capacity int
	cutoff   float64
	entries  []entry
	next     int
	logger   *logging.Logger
}

func New() *Cache {
	return &Cache{
		capacity: config.AnswerCacheCapacity,
		cutoff:   config.CacheSimilarityCutoff,
		logger:   logging.NewLogger("answer_cache"),
	}
}

// GetCachedAnswer returns the stored result whose question embedding is
// most similar to the query, provided it clears the similarity cutoff and
// was produced under the same retrieval settings.
func (c *Cache) GetCachedAnswer(queryVec []float32, settings string) (synthesize.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	best := -1
	bestScore := 0.0
	for i, e := range c.entries {
		if e.settings != settings {
			continue
		}
		if score := cosine(queryVec, e.vector); score >= c.cutoff && score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return synthesize.Result{}, false
	}
	c.logger.Debug("answer cache hit", "similarity", bestScore)
	return c.entries[best].result, true
}

// SaveToCache stores the result, overwriting the oldest entry once the
// cache is full.
func (c *Cache) SaveToCache(queryVec []float32, settings string, result synthesize.Result) {
	if len(queryVec) == 0 || result.Answer == "" {
		return
	}
	vec := make([]float32, len(queryVec))
	copy(vec, queryVec)

	c.mu.Lock()
	defer c.mu.Unlock()
	e := entry{vector: vec, settings: settings, result: result}
	if len(c.entries) < c.capacity {
		c.entries = append(c.entries, e)
		return
	}
	c.entries[c.next] = e
	c.next = (c.next + 1) % c.capacity
}

// Invalidate empties the cache. Called on every index swap, since answers
// produced against the old corpus may no longer be grounded.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.next = 0
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
