// Package synthesize turns retrieved chunks into a grounded prompt and a
// cited answer.
package synthesize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/internal/metrics"
	"github.com/akepally/ScholarRAG/internal/rag/llm"
	"github.com/akepally/ScholarRAG/internal/ragerr"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

const answerInstructions = "You are an academic research assistant. Answer the question using only the excerpts provided below. If the excerpts do not contain enough information to answer, say so plainly instead of guessing. When you draw on an excerpt, cite the paper by its title and authors where available. Keep the answer focused and factual."

const noGroundingNote = "No grounding context was found for this question. State clearly that the paper collection does not contain relevant material; do not invent papers or findings."

// Result carries the answer and the papers behind it. Sources survive a
// generation failure so callers can still show them as a degraded response.
type Result struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type Synthesizer struct {
	provider llm.Provider
	logger   *logging.Logger
}

func New(provider llm.Provider) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		logger:   logging.NewLogger("synthesizer"),
	}
}

// Answer builds the grounded prompt and calls the generative capability
// with one bounded retry. Empty retrieval is not an error: the model is
// told no grounding exists so it can say so rather than hallucinate.
func (s *Synthesizer) Answer(ctx context.Context, question string, retrieved []paper.ChunkScore) (Result, error) {
	sources := SourceList(retrieved)
	prompt := BuildPrompt(question, retrieved)

	var answer string
	var err error
	for attempt := 1; attempt <= config.GenerationMaxAttempts; attempt++ {
		start := time.Now()
		answer, err = s.provider.Generate(ctx, prompt, config.AskTemperature)
		metrics.CaptureExecutionMetrics("llm_generation", time.Since(start))
		if err == nil {
			return Result{Answer: answer, Sources: sources}, nil
		}
		if ctx.Err() != nil {
			break
		}
		if attempt < config.GenerationMaxAttempts {
			s.logger.WithTrace(ctx).Warn("generation failed, retrying", "attempt", attempt, "error", err)
		}
	}
	return Result{Sources: sources}, fmt.Errorf("%w: %v", ragerr.ErrGeneration, err)
}

// BuildPrompt embeds the question and every retrieved excerpt, each
// prefixed with a source label the model can cite.
func BuildPrompt(question string, retrieved []paper.ChunkScore) string {
	var b strings.Builder
	b.WriteString(answerInstructions)
	b.WriteString("\n\n")
	if len(retrieved) == 0 {
		b.WriteString(noGroundingNote)
	} else {
		b.WriteString("Excerpts from the paper collection:\n\n")
		b.WriteString(joinExcerpts(retrieved))
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

func joinExcerpts(retrieved []paper.ChunkScore) string {
	blocks := make([]string, 0, len(retrieved))
	for _, cs := range retrieved {
		label := cs.Chunk.Title
		if label == "" {
			label = cs.Chunk.Id
		}
		blocks = append(blocks, fmt.Sprintf("[Source: %s]\n%s", label, cs.Chunk.Text))
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

// SourceList is the deduplicated paper ids behind the retrieval, ordered by
// the rank of each paper's best-scoring chunk.
func SourceList(retrieved []paper.ChunkScore) []string {
	var sources []string
	seen := make(map[string]bool)
	for _, cs := range retrieved {
		if cs.Chunk.SourceId == "" || seen[cs.Chunk.SourceId] {
			continue
		}
		seen[cs.Chunk.SourceId] = true
		sources = append(sources, cs.Chunk.SourceId)
	}
	return sources
}
