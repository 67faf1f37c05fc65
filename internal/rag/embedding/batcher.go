package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/metrics"
	"github.com/akepally/ScholarRAG/internal/ragerr"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

// Batcher slices inputs into provider-sized batches and retries each batch
// a bounded number of times with backoff before failing the whole call.
type Batcher struct {
	inner       Embedder
	batchSize   int
	maxAttempts int
	baseDelay   time.Duration
	logger      *logging.Logger
}

func NewBatcher(inner Embedder) *Batcher {
	return &Batcher{
		inner:       inner,
		batchSize:   config.EmbeddingBatchSize,
		maxAttempts: config.EmbeddingMaxAttempts,
		baseDelay:   config.EmbeddingRetryBaseDelay,
		logger:      logging.NewLogger("embedding_batcher"),
	}
}

func (b *Batcher) ModelId() string { return b.inner.ModelId() }

func (b *Batcher) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.EmbeddingTimeout)
	defer cancel()

	vec, err := b.inner.EmbedQuery(callCtx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query embedding: %v", ragerr.ErrEmbedding, err)
	}
	return vec, nil
}

// EmbedBatch preserves order: vector i belongs to texts[i].
func (b *Batcher) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	total := (len(texts) + b.batchSize - 1) / b.batchSize
	for i := 0; i < len(texts); i += b.batchSize {
		end := min(i+b.batchSize, len(texts))
		vecs, err := b.embedOnce(ctx, texts[i:end], i/b.batchSize+1, total)
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (b *Batcher) embedOnce(ctx context.Context, batch []string, n, total int) ([][]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= b.maxAttempts; attempt++ {
		start := time.Now()
		callCtx, cancel := context.WithTimeout(ctx, config.EmbeddingTimeout)
		vecs, err := b.inner.EmbedBatch(callCtx, batch)
		cancel()
		metrics.CaptureExecutionMetrics("embedding_batch", time.Since(start))

		if err == nil {
			if len(vecs) != len(batch) {
				return nil, fmt.Errorf("%w: provider returned %d vectors for %d texts", ragerr.ErrEmbedding, len(vecs), len(batch))
			}
			return vecs, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < b.maxAttempts {
			delay := b.baseDelay << (attempt - 1)
			b.logger.Warn("embedding batch failed, backing off", "batch", n, "of", total, "attempt", attempt, "delay", delay.String(), "error", err)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: batch %d/%d: %v", ragerr.ErrEmbedding, n, total, ctx.Err())
			}
		}
	}
	return nil, fmt.Errorf("%w: batch %d/%d after %d attempts: %v", ragerr.ErrEmbedding, n, total, b.maxAttempts, lastErr)
}
