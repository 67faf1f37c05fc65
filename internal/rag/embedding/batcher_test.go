package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/akepally/ScholarRAG/internal/ragerr"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

type scriptedEmbedder struct {
	model        string
	onEmbedBatch func(ctx context.Context, texts []string) ([][]float32, error)
	onEmbedQuery func(ctx context.Context, query string) ([]float32, error)
	batchCalls   int
	batchSizes   []int
}

func (s *scriptedEmbedder) ModelId() string {
	if s.model != "" {
		return s.model
	}
	return "scripted-model"
}

func (s *scriptedEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if s.onEmbedQuery != nil {
		return s.onEmbedQuery(ctx, query)
	}
	return []float32{1}, nil
}

func (s *scriptedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.batchCalls++
	s.batchSizes = append(s.batchSizes, len(texts))
	if s.onEmbedBatch != nil {
		return s.onEmbedBatch(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i]))}
	}
	return out, nil
}

// fastBatcher keeps the real batching logic but drops the retry delay so
// failure tests do not sleep.
func fastBatcher(inner Embedder, batchSize int) *Batcher {
	return &Batcher{
		inner:       inner,
		batchSize:   batchSize,
		maxAttempts: 3,
		baseDelay:   time.Millisecond,
		logger:      logging.NewLogger("test_batcher"),
	}
}

func TestBatcher_SplitsAndPreservesOrder(t *testing.T) {
	inner := &scriptedEmbedder{}
	b := fastBatcher(inner, 4)

	texts := make([]string, 10)
	for i := range texts {
		texts[i] = strings.Repeat("x", i+1)
	}

	got, err := b.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if inner.batchCalls != 3 {
		t.Errorf("provider calls = %d, want 3", inner.batchCalls)
	}
	if inner.batchSizes[0] != 4 || inner.batchSizes[1] != 4 || inner.batchSizes[2] != 2 {
		t.Errorf("batch sizes = %v, want [4 4 2]", inner.batchSizes)
	}
	if len(got) != 10 {
		t.Fatalf("vectors = %d, want 10", len(got))
	}
	// Vector i was produced from texts[i].
	for i, vec := range got {
		if vec[0] != float32(i+1) {
			t.Errorf("vector %d = %v, order not preserved", i, vec)
		}
	}
}

func TestBatcher_EmptyInput(t *testing.T) {
	inner := &scriptedEmbedder{}
	got, err := fastBatcher(inner, 4).EmbedBatch(context.Background(), nil)
	if got != nil || err != nil {
		t.Errorf("got (%v, %v), want (nil, nil)", got, err)
	}
	if inner.batchCalls != 0 {
		t.Error("provider must not be called for empty input")
	}
}

func TestBatcher_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	inner := &scriptedEmbedder{onEmbedBatch: func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("rate limited")
		}
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = []float32{1}
		}
		return out, nil
	}}

	got, err := fastBatcher(inner, 10).EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if attempts != 3 || len(got) != 2 {
		t.Errorf("attempts = %d, vectors = %d", attempts, len(got))
	}
}

func TestBatcher_ExhaustsAttempts(t *testing.T) {
	inner := &scriptedEmbedder{onEmbedBatch: func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("provider down")
	}}

	_, err := fastBatcher(inner, 10).EmbedBatch(context.Background(), []string{"a"})
	if !errors.Is(err, ragerr.ErrEmbedding) {
		t.Fatalf("err = %v, want ErrEmbedding", err)
	}
	if inner.batchCalls != 3 {
		t.Errorf("provider calls = %d, want all attempts", inner.batchCalls)
	}
}

func TestBatcher_RejectsCountMismatch(t *testing.T) {
	inner := &scriptedEmbedder{onEmbedBatch: func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil // one vector for two texts
	}}

	_, err := fastBatcher(inner, 10).EmbedBatch(context.Background(), []string{"a", "b"})
	if !errors.Is(err, ragerr.ErrEmbedding) {
		t.Fatalf("err = %v, want ErrEmbedding", err)
	}
	if inner.batchCalls != 1 {
		t.Errorf("provider calls = %d, a count mismatch is not retryable", inner.batchCalls)
	}
}

func TestBatcher_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	inner := &scriptedEmbedder{onEmbedBatch: func(_ context.Context, texts []string) ([][]float32, error) {
		cancel()
		return nil, errors.New("interrupted")
	}}

	_, err := fastBatcher(inner, 10).EmbedBatch(ctx, []string{"a"})
	if !errors.Is(err, ragerr.ErrEmbedding) {
		t.Fatalf("err = %v, want ErrEmbedding", err)
	}
	if inner.batchCalls != 1 {
		t.Errorf("provider calls = %d, canceled context must stop the retry", inner.batchCalls)
	}
}

func TestBatcher_EmbedQuery(t *testing.T) {
	inner := &scriptedEmbedder{onEmbedQuery: func(ctx context.Context, query string) ([]float32, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("query embedding should run under a deadline")
		}
		return []float32{0.5}, nil
	}}
	b := fastBatcher(inner, 10)

	vec, err := b.EmbedQuery(context.Background(), "q")
	if err != nil || len(vec) != 1 {
		t.Errorf("EmbedQuery = (%v, %v)", vec, err)
	}

	inner.onEmbedQuery = func(ctx context.Context, query string) ([]float32, error) {
		return nil, errors.New("boom")
	}
	if _, err := b.EmbedQuery(context.Background(), "q"); !errors.Is(err, ragerr.ErrEmbedding) {
		t.Errorf("err = %v, want ErrEmbedding", err)
	}
}

func TestBatcher_ModelIdPassthrough(t *testing.T) {
	if got := NewBatcher(&scriptedEmbedder{model: "text-embedding-3-small"}).ModelId(); got != "text-embedding-3-small" {
		t.Errorf("ModelId = %q", got)
	}
}
