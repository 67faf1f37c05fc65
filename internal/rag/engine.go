package rag

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/internal/metrics"
	"github.com/akepally/ScholarRAG/internal/rag/answercache"
	"github.com/akepally/ScholarRAG/internal/rag/embedding"
	"github.com/akepally/ScholarRAG/internal/rag/hybrid"
	"github.com/akepally/ScholarRAG/internal/rag/lexical"
	"github.com/akepally/ScholarRAG/internal/rag/llm"
	"github.com/akepally/ScholarRAG/internal/rag/normalize"
	"github.com/akepally/ScholarRAG/internal/rag/synthesize"
	"github.com/akepally/ScholarRAG/internal/rag/vectorindex"
	"github.com/akepally/ScholarRAG/internal/ragerr"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

/*
ARCHITECTURE NOTE:

OPAQUE INTERFACE PATTERN. The Service interface is the only thing
callers see; the service struct underneath is private, so handlers,
workers and the MCP server cannot reach into engine internals.

Readers never take a lock. The complete search state (vector searcher,
lexical scorer, fused retriever) lives in one snapshot behind an
atomic pointer. Ask loads the pointer once and works against that
snapshot for the whole request, so a rebuild finishing mid-request
cannot mix two generations of the corpus. Writers serialize on
ingestMu, build the next generation off to the side, then swap the
pointer in one store.
*/

// VectorSearcher is the mutable half of a vector backend. The local
// gob-persisted index and the qdrant store both satisfy it.
type VectorSearcher interface {
	hybrid.Searcher
	Add(ctx context.Context, chunks []paper.Chunk, vectors [][]float32) error
	RemoveSource(ctx context.Context, sourceId string) (int, error)
	Reset(ctx context.Context) error
}

// Service answers questions over the ingested paper collection and
// owns the lifecycle of the underlying indexes.
type Service interface {
	// Ask embeds the question, retrieves supporting chunks and
	// synthesizes a grounded answer.
	Ask(ctx context.Context, req AskRequest) (synthesize.Result, error)
	// RebuildIndex re-ingests the given papers into a fresh index and
	// swaps it in. Queries keep hitting the previous index until the
	// swap.
	RebuildIndex(ctx context.Context, papers []paper.Paper) (paper.IngestSummary, error)
	// IngestPapers upserts papers into the current index without a
	// full rebuild.
	IngestPapers(ctx context.Context, papers []paper.Paper) (paper.IngestSummary, error)
	// Status reports whether the engine is usable and where its index
	// lives.
	Status() EngineStatus
	// Close persists the local index. The engine rejects requests
	// afterwards.
	Close(ctx context.Context) error
}

// AskRequest carries one question plus its retrieval settings.
// Weights are final values; callers resolve defaults before calling.
type AskRequest struct {
	Question       string
	UseHybrid      bool
	SemanticWeight float64
	BM25Weight     float64
	TopK           int
}

// EngineStatus is the operational summary exposed on the status
// endpoint and the MCP status tool.
type EngineStatus struct {
	Initialized    bool   `json:"initialized"`
	IndexExists    bool   `json:"index_exists"`
	IndexLocation  string `json:"index_location"`
	ChunkCount     int    `json:"chunk_count"`
	PaperCount     int    `json:"paper_count"`
	EmbeddingModel string `json:"embedding_model"`
}

// Dependencies are the injected providers. Embedder and Generator are
// required; Remote switches the vector backend from the local index to
// an external store.
type Dependencies struct {
	Embedder  embedding.Embedder
	Generator llm.Provider
	Remote    VectorSearcher
}

// Options tune the engine. Zero values fall back to config defaults.
type Options struct {
	DataDir string
	TopK    int
}

// snapshot is one immutable generation of the search state. All three
// views are built from the same corpus, never patched in place.
type snapshot struct {
	index     *vectorindex.Index
	searcher  VectorSearcher
	lexical   *lexical.BM25
	retriever *hybrid.Retriever
	corpus    []paper.Chunk
}

type service struct {
	embedder  embedding.Embedder
	synth     *synthesize.Synthesizer
	norm      *normalize.Normalizer
	cache     *answercache.Cache
	remote    VectorSearcher
	indexDir  string
	topK      int
	state     atomic.Pointer[snapshot]
	ingestMu  sync.Mutex
	closed    atomic.Bool
	logger    *logging.Logger
}

// NewRagService wires the engine in a fixed order: embedding provider
// first, then the vector index (loaded from disk when a saved copy
// exists), then the lexical scorer over the loaded corpus. A saved
// index built with a different embedding model is refused rather than
// silently queried.
func NewRagService(deps Dependencies, opts Options) (Service, error) {
	if deps.Embedder == nil {
		return nil, fmt.Errorf("rag: embedding provider is required")
	}
	if deps.Generator == nil {
		return nil, fmt.Errorf("rag: llm provider is required")
	}
	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = config.GetDataDir()
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = config.DefaultTopK
	}
	s := &service{
		embedder: deps.Embedder,
		synth:    synthesize.New(deps.Generator),
		norm:     normalize.Default(),
		cache:    answercache.New(),
		remote:   deps.Remote,
		indexDir: filepath.Join(dataDir, config.IndexDirName),
		topK:     topK,
		logger:   logging.NewLogger("ragService"),
	}

	if s.remote != nil {
		//remote collections are re-populated from the catalog at startup
		s.swapState(nil, s.remote, nil)
		return s, nil
	}

	idx, err := s.openLocalIndex()
	if err != nil {
		return nil, err
	}
	s.swapState(idx, idx, idx.Chunks())
	return s, nil
}

func (s *service) Ask(ctx context.Context, req AskRequest) (synthesize.Result, error) {
	snap, err := s.currentState()
	if err != nil {
		return synthesize.Result{}, err
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return synthesize.Result{}, fmt.Errorf("%w: question must not be empty", ragerr.ErrValidation)
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.topK
	}
	semanticWeight, bm25Weight := req.SemanticWeight, req.BM25Weight
	if !req.UseHybrid {
		semanticWeight, bm25Weight = 1, 0
	}

	queryVec, err := s.executeQueryEmbeddingStep(ctx, question)
	if err != nil {
		return synthesize.Result{}, err
	}

	settings := settingsFingerprint(req.UseHybrid, semanticWeight, bm25Weight, topK)
	cached, ok := s.cache.GetCachedAnswer(queryVec, settings)
	metrics.CaptureCacheLookup(ok)
	if ok {
		s.logger.Info("answer cache hit", "question_len", len(question))
		return cached, nil
	}

	retrieved, err := snap.retriever.Retrieve(ctx, question, queryVec, topK, semanticWeight, bm25Weight)
	if err != nil {
		return synthesize.Result{}, err
	}

	result, err := s.synth.Answer(ctx, question, retrieved)
	if err != nil {
		return result, err
	}
	s.cache.SaveToCache(queryVec, settings, result)
	return result, nil
}

func (s *service) RebuildIndex(ctx context.Context, papers []paper.Paper) (paper.IngestSummary, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	summary := paper.IngestSummary{Total: len(papers)}
	if s.closed.Load() {
		return summary, fmt.Errorf("%w: engine is closed", ragerr.ErrIndexUnavailable)
	}

	var target VectorSearcher
	var local *vectorindex.Index
	if s.remote != nil {
		if err := s.remote.Reset(ctx); err != nil {
			return summary, fmt.Errorf("resetting vector store: %w", err)
		}
		target = s.remote
	} else {
		local = vectorindex.New(s.embedder.ModelId())
		target = local
	}

	corpus, runErr := s.ingestInto(ctx, target, papers, false, &summary)
	summary.ChunkCount = len(corpus)
	if runErr != nil {
		summary.Error = runErr.Error()
	}

	//whatever committed before a failure is still served and reported
	s.swapState(local, target, corpus)
	s.saveLocal(local, &summary)
	return summary, runErr
}

func (s *service) IngestPapers(ctx context.Context, papers []paper.Paper) (paper.IngestSummary, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	summary := paper.IngestSummary{Total: len(papers)}
	if s.closed.Load() {
		return summary, fmt.Errorf("%w: engine is closed", ragerr.ErrIndexUnavailable)
	}
	snap := s.state.Load()

	var target VectorSearcher
	var local *vectorindex.Index
	if s.remote != nil {
		target = s.remote
	} else {
		local = snap.index.Clone()
		target = local
	}

	added, runErr := s.ingestInto(ctx, target, papers, true, &summary)
	var corpus []paper.Chunk
	if local != nil {
		corpus = local.Chunks()
	} else {
		corpus = mergeCorpus(snap.corpus, added)
	}
	summary.ChunkCount = len(added)
	if runErr != nil {
		summary.Error = runErr.Error()
	}

	s.swapState(local, target, corpus)
	s.saveLocal(local, &summary)
	return summary, runErr
}

func (s *service) Status() EngineStatus {
	snap := s.state.Load()
	st := EngineStatus{
		Initialized:    snap != nil && !s.closed.Load(),
		EmbeddingModel: s.embedder.ModelId(),
	}
	if snap == nil {
		return st
	}
	st.ChunkCount = len(snap.corpus)
	st.PaperCount = countSources(snap.corpus)
	if s.remote != nil {
		st.IndexLocation = "qdrant://" + config.QdrantCollection
		st.IndexExists = st.ChunkCount > 0
		return st
	}
	st.IndexLocation = s.indexDir
	st.IndexExists = vectorindex.Exists(s.indexDir)
	return st
}

func (s *service) Close(ctx context.Context) error {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()
	if s.closed.Swap(true) {
		return nil
	}
	snap := s.state.Load()
	if snap == nil || snap.index == nil {
		return nil
	}
	if err := snap.index.Save(s.indexDir); err != nil {
		return fmt.Errorf("saving index on shutdown: %w", err)
	}
	s.logger.Info("index saved", "dir", s.indexDir, "chunks", len(snap.corpus))
	return nil
}
