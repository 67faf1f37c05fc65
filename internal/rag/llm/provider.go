package llm

import "context"

// Provider is the narrow seam to the generative capability. Callers build
// the full prompt themselves; temperature varies per feature (answering is
// conservative, path generation is not).
type Provider interface {
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}
