package rag_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/internal/rag"
	"github.com/akepally/ScholarRAG/internal/rag/normalize"
	"github.com/akepally/ScholarRAG/internal/ragerr"
)

func fixturePapers() []paper.Paper {
	return []paper.Paper{
		{
			Id:       "attention-2017",
			Title:    "Attention Is All You Need",
			Abstract: "We propose the Transformer, a network architecture based solely on attention mechanisms, dispensing with recurrence and convolutions entirely.",
			Authors:  []string{"Vaswani", "Shazeer"},
			Venue:    "NeurIPS",
			Year:     2017,
		},
		{
			Id:       "bert-2018",
			Title:    "BERT: Pre-training of Deep Bidirectional Transformers",
			Abstract: "BERT obtains state-of-the-art results on eleven language understanding benchmarks by jointly conditioning on left and right context.",
			Authors:  []string{"Devlin", "Chang"},
			Venue:    "NAACL",
			Year:     2019,
		},
		{
			Id:       "resnet-2015",
			Title:    "Deep Residual Learning for Image Recognition",
			Abstract: "Residual connections ease the training of networks that are substantially deeper than those used previously.",
			Authors:  []string{"He", "Zhang"},
			Venue:    "CVPR",
			Year:     2016,
		},
	}
}

func newLocalEngine(t *testing.T, embedder *MockEmbedder, generator *MockLLM) rag.Service {
	t.Helper()
	svc, err := rag.NewRagService(
		rag.Dependencies{Embedder: embedder, Generator: generator},
		rag.Options{DataDir: t.TempDir()},
	)
	if err != nil {
		t.Fatalf("NewRagService: %v", err)
	}
	return svc
}

// chunkText is the indexed text of one fixture paper, used to point a
// query embedding straight at that paper.
func chunkText(t *testing.T, p paper.Paper) string {
	t.Helper()
	chunks, err := normalize.Default().ChunkPaper(p)
	if err != nil {
		t.Fatalf("chunking fixture %s: %v", p.Id, err)
	}
	return chunks[0].Text
}

func TestNewRagService_RequiresProviders(t *testing.T) {
	if _, err := rag.NewRagService(rag.Dependencies{Generator: &MockLLM{}}, rag.Options{}); err == nil {
		t.Error("expected error with no embedder")
	}
	if _, err := rag.NewRagService(rag.Dependencies{Embedder: &MockEmbedder{}}, rag.Options{}); err == nil {
		t.Error("expected error with no generator")
	}
}

func TestRebuildIndex_Scenarios(t *testing.T) {
	good := fixturePapers()
	noText := paper.Paper{Id: "empty-paper"}

	tests := []struct {
		name          string
		papers        []paper.Paper
		setupMocks    func(e *MockEmbedder)
		wantSucceeded int
		wantFailed    int
		wantChunks    int
		wantErr       error
	}{
		{
			name:          "All_Papers_Ingested",
			papers:        good,
			setupMocks:    func(e *MockEmbedder) {},
			wantSucceeded: 3,
			wantChunks:    3,
		},
		{
			name:          "Rejected_Paper_Skipped",
			papers:        []paper.Paper{good[0], noText, good[2]},
			setupMocks:    func(e *MockEmbedder) {},
			wantSucceeded: 2,
			wantFailed:    1,
			wantChunks:    2,
		},
		{
			name:   "Embedding_Failure_Aborts_Remainder",
			papers: good,
			setupMocks: func(e *MockEmbedder) {
				e.OnEmbedBatch = func(ctx context.Context, texts []string) ([][]float32, error) {
					if strings.Contains(texts[0], "BERT") {
						return nil, ragerr.ErrEmbedding
					}
					out := make([][]float32, len(texts))
					for i, text := range texts {
						out[i] = TextVector(text)
					}
					return out, nil
				}
			},
			wantSucceeded: 1,
			wantFailed:    2,
			wantChunks:    1,
			wantErr:       ragerr.ErrEmbedding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := &MockEmbedder{}
			tt.setupMocks(embedder)
			svc := newLocalEngine(t, embedder, &MockLLM{})

			summary, err := svc.RebuildIndex(context.Background(), tt.papers)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if summary.Error == "" {
					t.Error("summary.Error should carry the failure")
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if summary.Total != len(tt.papers) {
				t.Errorf("Total = %d, want %d", summary.Total, len(tt.papers))
			}
			if summary.Succeeded != tt.wantSucceeded {
				t.Errorf("Succeeded = %d, want %d", summary.Succeeded, tt.wantSucceeded)
			}
			if summary.Failed != tt.wantFailed {
				t.Errorf("Failed = %d, want %d", summary.Failed, tt.wantFailed)
			}
			if summary.ChunkCount != tt.wantChunks {
				t.Errorf("ChunkCount = %d, want %d", summary.ChunkCount, tt.wantChunks)
			}

			// Committed chunks are served even after a partial failure.
			st := svc.Status()
			if !st.Initialized {
				t.Error("engine should stay initialized")
			}
			if st.ChunkCount != tt.wantChunks {
				t.Errorf("Status().ChunkCount = %d, want %d", st.ChunkCount, tt.wantChunks)
			}
			if st.PaperCount != tt.wantSucceeded {
				t.Errorf("Status().PaperCount = %d, want %d", st.PaperCount, tt.wantSucceeded)
			}
		})
	}
}

func TestAsk_SemanticRanking(t *testing.T) {
	target := chunkText(t, fixturePapers()[1])
	embedder := &MockEmbedder{
		OnEmbedQuery: func(ctx context.Context, query string) ([]float32, error) {
			return TextVector(target), nil
		},
	}
	generator := &MockLLM{
		OnGenerate: func(ctx context.Context, prompt string, temperature float32) (string, error) {
			return "BERT conditions on both directions.", nil
		},
	}
	svc := newLocalEngine(t, embedder, generator)
	if _, err := svc.RebuildIndex(context.Background(), fixturePapers()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	result, err := svc.Ask(context.Background(), rag.AskRequest{
		Question: "what does bidirectional pre-training buy us",
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if result.Answer != "BERT conditions on both directions." {
		t.Errorf("answer = %q", result.Answer)
	}
	if len(result.Sources) == 0 || result.Sources[0] != "bert-2018" {
		t.Errorf("sources = %v, want bert-2018 first", result.Sources)
	}
	if !strings.Contains(generator.LastPrompt, "BERT: Pre-training of Deep Bidirectional Transformers") {
		t.Error("prompt should label the retrieved excerpt with its title")
	}
	if !strings.Contains(generator.LastPrompt, "what does bidirectional pre-training buy us") {
		t.Error("prompt should embed the question")
	}
}

func TestAsk_EmptyCorpusStillAnswers(t *testing.T) {
	generator := &MockLLM{
		OnGenerate: func(ctx context.Context, prompt string, temperature float32) (string, error) {
			return "The collection holds no material on this topic.", nil
		},
	}
	svc := newLocalEngine(t, &MockEmbedder{}, generator)

	result, err := svc.Ask(context.Background(), rag.AskRequest{Question: "what is flash attention"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if result.Answer == "" {
		t.Error("expected an answer even with nothing indexed")
	}
	if len(result.Sources) != 0 {
		t.Errorf("sources = %v, want none", result.Sources)
	}
	if !strings.Contains(generator.LastPrompt, "No grounding context") {
		t.Error("prompt should tell the model the collection had nothing relevant")
	}
}

func TestAsk_Validation(t *testing.T) {
	svc := newLocalEngine(t, &MockEmbedder{}, &MockLLM{})
	if _, err := svc.RebuildIndex(context.Background(), fixturePapers()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	tests := []struct {
		name string
		req  rag.AskRequest
	}{
		{name: "Empty_Question", req: rag.AskRequest{Question: "   "}},
		{name: "Negative_Weight", req: rag.AskRequest{Question: "q", UseHybrid: true, SemanticWeight: -0.5, BM25Weight: 1}},
		{name: "Both_Weights_Zero", req: rag.AskRequest{Question: "q", UseHybrid: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Ask(context.Background(), tt.req); !errors.Is(err, ragerr.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestAsk_CachedAnswer(t *testing.T) {
	generator := &MockLLM{}
	svc := newLocalEngine(t, &MockEmbedder{}, generator)
	if _, err := svc.RebuildIndex(context.Background(), fixturePapers()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	ask := func(topK int) string {
		t.Helper()
		result, err := svc.Ask(context.Background(), rag.AskRequest{Question: "how do residual connections help", TopK: topK})
		if err != nil {
			t.Fatalf("Ask: %v", err)
		}
		return result.Answer
	}

	first := ask(0)
	if got := generator.Calls(); got != 1 {
		t.Fatalf("generate calls after first ask = %d, want 1", got)
	}

	// Identical question and settings come from the cache.
	if second := ask(0); second != first {
		t.Errorf("cached answer = %q, want %q", second, first)
	}
	if got := generator.Calls(); got != 1 {
		t.Errorf("generate calls after cache hit = %d, want 1", got)
	}

	// A different top-k is a different retrieval configuration.
	ask(2)
	if got := generator.Calls(); got != 2 {
		t.Errorf("generate calls after settings change = %d, want 2", got)
	}

	// Any index swap drops the cache.
	if _, err := svc.IngestPapers(context.Background(), []paper.Paper{{
		Id:       "gpt-2020",
		Title:    "Language Models are Few-Shot Learners",
		Abstract: "Scaling language models improves task-agnostic few-shot performance.",
	}}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	ask(0)
	if got := generator.Calls(); got != 3 {
		t.Errorf("generate calls after index swap = %d, want 3", got)
	}
}

func TestAsk_GenerationFailureKeepsSources(t *testing.T) {
	generator := &MockLLM{
		OnGenerate: func(ctx context.Context, prompt string, temperature float32) (string, error) {
			return "", errors.New("provider down")
		},
	}
	svc := newLocalEngine(t, &MockEmbedder{}, generator)
	if _, err := svc.RebuildIndex(context.Background(), fixturePapers()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	result, err := svc.Ask(context.Background(), rag.AskRequest{
		Question: "attention mechanisms in sequence models",
		TopK:     2,
	})
	if !errors.Is(err, ragerr.ErrGeneration) {
		t.Fatalf("err = %v, want ErrGeneration", err)
	}
	if len(result.Sources) == 0 {
		t.Error("sources should survive a generation failure")
	}
	if result.Answer != "" {
		t.Errorf("answer should be empty on failure, got %q", result.Answer)
	}
}

func TestIngestPapers_UpsertReplacesChunks(t *testing.T) {
	svc := newLocalEngine(t, &MockEmbedder{}, &MockLLM{})
	papers := fixturePapers()[:2]
	if _, err := svc.RebuildIndex(context.Background(), papers); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	revised := papers[0]
	revised.Abstract = "The Transformer relies on zanzibar self-attention layers only."
	summary, err := svc.IngestPapers(context.Background(), []paper.Paper{revised})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if summary.Succeeded != 1 || summary.ChunkCount != 1 {
		t.Errorf("summary = %+v, want 1 succeeded / 1 chunk", summary)
	}

	st := svc.Status()
	if st.PaperCount != 2 {
		t.Errorf("PaperCount = %d, want 2 after upsert", st.PaperCount)
	}
	if st.ChunkCount != 2 {
		t.Errorf("ChunkCount = %d, want 2 after upsert", st.ChunkCount)
	}

	lexicalOnly := func(question string) []string {
		t.Helper()
		result, err := svc.Ask(context.Background(), rag.AskRequest{
			Question:   question,
			UseHybrid:  true,
			BM25Weight: 1,
		})
		if err != nil {
			t.Fatalf("Ask(%q): %v", question, err)
		}
		return result.Sources
	}

	if sources := lexicalOnly("zanzibar layers"); len(sources) != 1 || sources[0] != "attention-2017" {
		t.Errorf("revised term should hit the upserted paper, got %v", sources)
	}
	if sources := lexicalOnly("dispensing recurrence convolutions"); len(sources) != 0 {
		t.Errorf("terms unique to the replaced abstract should be gone, got %v", sources)
	}
}

func TestCloseRejectsFurtherUse(t *testing.T) {
	svc := newLocalEngine(t, &MockEmbedder{}, &MockLLM{})
	if _, err := svc.RebuildIndex(context.Background(), fixturePapers()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	if err := svc.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := svc.Close(context.Background()); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}

	if _, err := svc.Ask(context.Background(), rag.AskRequest{Question: "anything"}); !errors.Is(err, ragerr.ErrIndexUnavailable) {
		t.Errorf("Ask after close: err = %v, want ErrIndexUnavailable", err)
	}
	if _, err := svc.RebuildIndex(context.Background(), fixturePapers()); !errors.Is(err, ragerr.ErrIndexUnavailable) {
		t.Errorf("Rebuild after close: err = %v, want ErrIndexUnavailable", err)
	}
	if st := svc.Status(); st.Initialized {
		t.Error("closed engine must not report initialized")
	}
}

func TestReopenSavedIndex(t *testing.T) {
	dir := t.TempDir()
	build := func(model string) (rag.Service, error) {
		return rag.NewRagService(
			rag.Dependencies{Embedder: &MockEmbedder{Model: model}, Generator: &MockLLM{}},
			rag.Options{DataDir: dir},
		)
	}

	first, err := build("mock-embedder-001")
	if err != nil {
		t.Fatalf("first engine: %v", err)
	}
	if _, err := first.RebuildIndex(context.Background(), fixturePapers()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if err := first.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := build("mock-embedder-001")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	st := second.Status()
	if !st.IndexExists || st.ChunkCount != 3 || st.PaperCount != 3 {
		t.Errorf("reopened status = %+v, want the saved corpus back", st)
	}

	// Answers without any re-ingestion.
	result, err := second.Ask(context.Background(), rag.AskRequest{Question: "residual learning for deep networks"})
	if err != nil {
		t.Fatalf("Ask on reopened engine: %v", err)
	}
	if result.Answer == "" {
		t.Error("expected an answer from the reopened index")
	}

	// A saved index built under another embedding model is refused.
	if _, err := build("mock-embedder-002"); err == nil || !strings.Contains(err.Error(), "embedding model") {
		t.Errorf("model mismatch: err = %v, want refusal naming the model", err)
	}
}

func TestRemoteBackend_Flow(t *testing.T) {
	remote := &MockRemote{}
	svc, err := rag.NewRagService(
		rag.Dependencies{Embedder: &MockEmbedder{}, Generator: &MockLLM{}, Remote: remote},
		rag.Options{DataDir: t.TempDir()},
	)
	if err != nil {
		t.Fatalf("NewRagService: %v", err)
	}

	st := svc.Status()
	if !st.Initialized {
		t.Error("remote engine should start initialized")
	}
	if !strings.HasPrefix(st.IndexLocation, "qdrant://") {
		t.Errorf("IndexLocation = %q, want qdrant scheme", st.IndexLocation)
	}
	if st.IndexExists {
		t.Error("empty remote collection should not report an existing index")
	}

	if _, err := svc.RebuildIndex(context.Background(), fixturePapers()[:2]); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if remote.Resets != 1 {
		t.Errorf("resets = %d, want 1 before a rebuild", remote.Resets)
	}
	if got := len(remote.Stored()); got != 2 {
		t.Errorf("remote chunks = %d, want 2", got)
	}

	// Upsert removes the paper's previous chunks remotely first.
	if _, err := svc.IngestPapers(context.Background(), fixturePapers()[:1]); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(remote.Removals) != 1 || remote.Removals[0] != "attention-2017" {
		t.Errorf("removals = %v, want the re-ingested source", remote.Removals)
	}
	if st := svc.Status(); st.PaperCount != 2 || st.ChunkCount != 2 {
		t.Errorf("status after upsert = %+v, want 2 papers / 2 chunks", st)
	}
}

func TestRemoteBackend_ResetFailureAbortsRebuild(t *testing.T) {
	remote := &MockRemote{
		OnReset: func(ctx context.Context) error { return errors.New("collection locked") },
	}
	svc, err := rag.NewRagService(
		rag.Dependencies{Embedder: &MockEmbedder{}, Generator: &MockLLM{}, Remote: remote},
		rag.Options{DataDir: t.TempDir()},
	)
	if err != nil {
		t.Fatalf("NewRagService: %v", err)
	}

	summary, err := svc.RebuildIndex(context.Background(), fixturePapers())
	if err == nil || !strings.Contains(err.Error(), "resetting vector store") {
		t.Fatalf("err = %v, want reset failure", err)
	}
	if summary.Succeeded != 0 {
		t.Errorf("nothing should commit when the reset fails, got %d", summary.Succeeded)
	}
}
