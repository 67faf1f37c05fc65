// Package lexical scores the chunk corpus with BM25 so retrieval can blend
// term overlap with vector similarity. The scorer is rebuilt whole on every
// corpus change; build cost is linear and the structures stay within corpus
// size.
package lexical

import (
	"math"
	"sort"

	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
)

type BM25 struct {
	k1      float64
	b       float64
	epsilon float64

	chunks   []paper.Chunk
	docTerms []map[string]int
	docLen   []float64
	avgdl    float64
	idf      map[string]float64
}

func NewBM25(chunks []paper.Chunk) *BM25 {
	s := &BM25{
		k1:      config.BM25K1,
		b:       config.BM25B,
		epsilon: config.BM25IDFEpsilon,
		chunks:  chunks,
		idf:     make(map[string]float64),
	}
	s.build()
	return s
}

func (s *BM25) Len() int { return len(s.chunks) }

func (s *BM25) build() {
	df := make(map[string]int)
	var totalLen float64

	s.docTerms = make([]map[string]int, len(s.chunks))
	s.docLen = make([]float64, len(s.chunks))
	for i, c := range s.chunks {
		terms := Tokenize(c.Text)
		freq := make(map[string]int, len(terms))
		for _, t := range terms {
			freq[t]++
		}
		s.docTerms[i] = freq
		s.docLen[i] = float64(len(terms))
		totalLen += s.docLen[i]
		for t := range freq {
			df[t]++
		}
	}
	if len(s.chunks) > 0 {
		s.avgdl = totalLen / float64(len(s.chunks))
	}
	if s.avgdl == 0 {
		s.avgdl = 1
	}

	// Common terms can produce negative IDF; those are floored at
	// epsilon times the average IDF so they still contribute a little.
	n := float64(len(s.chunks))
	var idfSum float64
	var negative []string
	for t, d := range df {
		idf := math.Log((n - float64(d) + 0.5) / (float64(d) + 0.5))
		s.idf[t] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, t)
		}
	}
	if len(s.idf) > 0 {
		floor := s.epsilon * idfSum / float64(len(s.idf))
		for _, t := range negative {
			s.idf[t] = floor
		}
	}
}

// Score ranks chunks containing at least one query term: score descending,
// ties by chunk id ascending, top k. Same query and same corpus snapshot
// always produce the same ranking.
func (s *BM25) Score(query string, k int) []paper.ChunkScore {
	if k <= 0 || len(s.chunks) == 0 {
		return nil
	}
	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	var scored []paper.ChunkScore
	for i := range s.chunks {
		var score float64
		matched := false
		for _, t := range terms {
			freq := s.docTerms[i][t]
			if freq == 0 {
				continue
			}
			matched = true
			f := float64(freq)
			score += s.idf[t] * (f * (s.k1 + 1)) /
				(f + s.k1*(1-s.b+s.b*s.docLen[i]/s.avgdl))
		}
		if matched {
			scored = append(scored, paper.ChunkScore{Chunk: s.chunks[i], Score: score})
		}
	}

	sort.Slice(scored, func(a, b int) bool {
		if scored[a].Score != scored[b].Score {
			return scored[a].Score > scored[b].Score
		}
		return scored[a].Chunk.Id < scored[b].Chunk.Id
	})
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}
