// Package hybrid merges vector-index and lexical rankings into one
// candidate list. Each branch's scores are min-max normalized before the
// weighted sum; substituting a different fusion (RRF and friends) would
// change ranking behavior, so this exact scheme is the contract.
package hybrid

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/internal/metrics"
	"github.com/akepally/ScholarRAG/internal/ragerr"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

// Searcher is the vector branch: the in-process index or the remote store.
type Searcher interface {
	Search(ctx context.Context, queryVec []float32, k int) ([]paper.ChunkScore, error)
}

// Scorer is the lexical branch.
type Scorer interface {
	Score(query string, k int) []paper.ChunkScore
}

type Retriever struct {
	vec    Searcher
	lex    Scorer
	logger *logging.Logger
}

func NewRetriever(vec Searcher, lex Scorer) *Retriever {
	return &Retriever{
		vec:    vec,
		lex:    lex,
		logger: logging.NewLogger("hybrid_retriever"),
	}
}

// Retrieve fetches top-N candidates from each weighted branch in parallel
// and fuses them. A zero weight skips that branch entirely, and the
// surviving branch's own ordering is returned untouched, so single-mode
// results are identical to querying that branch directly.
func (r *Retriever) Retrieve(ctx context.Context, query string, queryVec []float32, k int, semanticWeight, lexicalWeight float64) ([]paper.ChunkScore, error) {
	if semanticWeight < 0 || lexicalWeight < 0 {
		return nil, fmt.Errorf("%w: retrieval weights must be >= 0, got semantic=%v lexical=%v", ragerr.ErrValidation, semanticWeight, lexicalWeight)
	}
	if semanticWeight == 0 && lexicalWeight == 0 {
		return nil, fmt.Errorf("%w: at least one retrieval weight must be positive", ragerr.ErrValidation)
	}
	if k <= 0 {
		return nil, nil
	}

	n := k * config.CandidateMultiplier

	var (
		wg        sync.WaitGroup
		semantic  []paper.ChunkScore
		lexical   []paper.ChunkScore
		vectorErr error
	)
	if semanticWeight > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			semantic, vectorErr = r.vec.Search(ctx, queryVec, n)
			metrics.CaptureExecutionMetrics("vector_search", time.Since(start))
		}()
	}
	if lexicalWeight > 0 {
		start := time.Now()
		lexical = r.lex.Score(query, n)
		metrics.CaptureExecutionMetrics("lexical_scoring", time.Since(start))
	}
	wg.Wait()

	if vectorErr != nil {
		if lexicalWeight == 0 {
			return nil, fmt.Errorf("vector search: %w", vectorErr)
		}
		// One branch down degrades to the other instead of failing the query.
		r.logger.WithTrace(ctx).Warn("vector branch failed, serving lexical results only", "error", vectorErr)
		semantic = nil
	}

	if lexicalWeight == 0 {
		return truncate(semantic, k), nil
	}
	if semanticWeight == 0 || vectorErr != nil {
		return truncate(lexical, k), nil
	}
	return fuse(semantic, lexical, semanticWeight, lexicalWeight, k), nil
}

func truncate(list []paper.ChunkScore, k int) []paper.ChunkScore {
	if len(list) > k {
		return list[:k]
	}
	return list
}

// fuse combines the two normalized rankings. A chunk present in only one
// list keeps that list's weighted score with no penalty for its absence
// from the other, trading precision for recall on purpose.
func fuse(semantic, lexical []paper.ChunkScore, semanticWeight, lexicalWeight float64, k int) []paper.ChunkScore {
	if len(semantic) == 0 && len(lexical) == 0 {
		return nil
	}

	chunks := make(map[string]paper.Chunk, len(semantic)+len(lexical))
	for _, cs := range semantic {
		chunks[cs.Chunk.Id] = cs.Chunk
	}
	for _, cs := range lexical {
		chunks[cs.Chunk.Id] = cs.Chunk
	}

	semNorm := minMaxNormalize(semantic)
	lexNorm := minMaxNormalize(lexical)

	combined := make([]paper.ChunkScore, 0, len(chunks))
	for id, chunk := range chunks {
		score := semanticWeight*semNorm[id] + lexicalWeight*lexNorm[id]
		combined = append(combined, paper.ChunkScore{Chunk: chunk, Score: score})
	}

	sort.Slice(combined, func(a, b int) bool {
		if combined[a].Score != combined[b].Score {
			return combined[a].Score > combined[b].Score
		}
		return combined[a].Chunk.Id < combined[b].Chunk.Id
	})
	return truncate(combined, k)
}

// minMaxNormalize maps scores into [0,1] per list. A list where every score
// is equal normalizes to all ones, not all zeros, so a uniform branch still
// contributes its weight.
func minMaxNormalize(list []paper.ChunkScore) map[string]float64 {
	if len(list) == 0 {
		return nil
	}
	minScore, maxScore := list[0].Score, list[0].Score
	for _, cs := range list[1:] {
		if cs.Score < minScore {
			minScore = cs.Score
		}
		if cs.Score > maxScore {
			maxScore = cs.Score
		}
	}

	norm := make(map[string]float64, len(list))
	if maxScore == minScore {
		for _, cs := range list {
			norm[cs.Chunk.Id] = 1.0
		}
		return norm
	}
	for _, cs := range list {
		norm[cs.Chunk.Id] = (cs.Score - minScore) / (maxScore - minScore)
	}
	return norm
}
