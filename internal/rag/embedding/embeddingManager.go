package embedding

import "context"

// Embedder turns text into fixed-length dense vectors. Output order always
// matches input order. Implementations wrap one remote provider; batching
// and retry live in Batcher so every provider gets the same discipline.
type Embedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	ModelId() string
}
