package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/internal/metrics"
	"github.com/akepally/ScholarRAG/internal/rag/hybrid"
	"github.com/akepally/ScholarRAG/internal/rag/lexical"
	"github.com/akepally/ScholarRAG/internal/rag/vectorindex"
	"github.com/akepally/ScholarRAG/internal/ragerr"
)

func (s *service) currentState() (*snapshot, error) {
	if s.closed.Load() {
		return nil, fmt.Errorf("%w: engine is closed", ragerr.ErrIndexUnavailable)
	}
	snap := s.state.Load()
	if snap == nil {
		return nil, fmt.Errorf("%w: engine not initialized", ragerr.ErrIndexUnavailable)
	}
	return snap, nil
}

func (s *service) openLocalIndex() (*vectorindex.Index, error) {
	model := s.embedder.ModelId()
	if !vectorindex.Exists(s.indexDir) {
		return vectorindex.New(model), nil
	}
	idx, err := vectorindex.Load(s.indexDir)
	if err != nil {
		return nil, fmt.Errorf("loading saved index from %s: %w", s.indexDir, err)
	}
	if idx.Model() != model {
		return nil, fmt.Errorf("saved index was built with embedding model %q, configured model is %q", idx.Model(), model)
	}
	s.logger.Info("index loaded", "dir", s.indexDir, "chunks", idx.Len())
	return idx, nil
}

func (s *service) executeQueryEmbeddingStep(ctx context.Context, question string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("query_embedding", time.Since(start)) }()

	return s.embedder.EmbedQuery(ctx, question)
}

// ingestInto runs the per-paper pipeline against target. A rejected
// paper is skipped and the loop keeps going; an embedding or index
// failure aborts the remainder, and every paper not committed counts
// as failed. Returns the chunks that were committed.
func (s *service) ingestInto(ctx context.Context, target VectorSearcher, papers []paper.Paper, upsert bool, summary *paper.IngestSummary) ([]paper.Chunk, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("ingest", time.Since(start)) }()

	var committed []paper.Chunk
	var runErr error
	for _, p := range papers {
		if runErr != nil {
			summary.Failed++
			continue
		}
		chunks, err := s.norm.ChunkPaper(p)
		if err != nil {
			summary.Failed++
			s.logger.Warn("paper rejected", "paper", p.Id, "error", err.Error())
			continue
		}
		vectors, err := s.embedder.EmbedBatch(ctx, chunkTexts(chunks))
		if err != nil {
			summary.Failed++
			runErr = err
			s.logger.Error("embedding failed, aborting ingest", "paper", p.Id, "error", err.Error())
			continue
		}
		if upsert {
			if _, err := target.RemoveSource(ctx, p.Id); err != nil {
				summary.Failed++
				runErr = err
				continue
			}
		}
		if err := target.Add(ctx, chunks, vectors); err != nil {
			summary.Failed++
			runErr = err
			s.logger.Error("index commit failed, aborting ingest", "paper", p.Id, "error", err.Error())
			continue
		}
		committed = append(committed, chunks...)
		summary.Succeeded++
	}
	return committed, runErr
}

// swapState publishes the next search-state generation. Answers cached
// against the previous generation are dropped in the same call.
func (s *service) swapState(index *vectorindex.Index, searcher VectorSearcher, corpus []paper.Chunk) {
	lex := lexical.NewBM25(corpus)
	snap := &snapshot{
		index:     index,
		searcher:  searcher,
		lexical:   lex,
		retriever: hybrid.NewRetriever(searcher, lex),
		corpus:    corpus,
	}
	s.state.Store(snap)
	s.cache.Invalidate()
}

func (s *service) saveLocal(index *vectorindex.Index, summary *paper.IngestSummary) {
	if index == nil {
		return
	}
	if err := index.Save(s.indexDir); err != nil {
		s.logger.Error("saving index", "dir", s.indexDir, "error", err.Error())
		if summary.Error == "" {
			summary.Error = "index save failed: " + err.Error()
		}
	}
}

// settingsFingerprint keys cached answers so a hit is only served for
// an identical retrieval configuration.
func settingsFingerprint(useHybrid bool, semanticWeight, bm25Weight float64, topK int) string {
	return fmt.Sprintf("h=%t|sw=%.4f|lw=%.4f|k=%d", useHybrid, semanticWeight, bm25Weight, topK)
}

// mergeCorpus replays an upsert on the chunk mirror kept for the
// lexical scorer. Only sources that actually committed are replaced,
// so a paper whose re-ingest failed keeps its previous chunks.
func mergeCorpus(old []paper.Chunk, added []paper.Chunk) []paper.Chunk {
	replaced := make(map[string]bool)
	for _, c := range added {
		replaced[c.SourceId] = true
	}
	merged := make([]paper.Chunk, 0, len(old)+len(added))
	for _, c := range old {
		if !replaced[c.SourceId] {
			merged = append(merged, c)
		}
	}
	return append(merged, added...)
}

func countSources(corpus []paper.Chunk) int {
	seen := make(map[string]bool, len(corpus))
	for _, c := range corpus {
		seen[c.SourceId] = true
	}
	return len(seen)
}

func chunkTexts(chunks []paper.Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}
