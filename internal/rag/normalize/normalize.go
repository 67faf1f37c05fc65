// Package normalize converts heterogeneous paper records into the uniform,
// overlapping text chunks the rest of the pipeline operates on.
package normalize

import (
	"fmt"
	"strings"

	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/internal/ragerr"
)

type Normalizer struct {
	chunkSize    int
	chunkOverlap int
}

func New(chunkSize, chunkOverlap int) (*Normalizer, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ragerr.ErrValidation, chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be in [0, %d)", ragerr.ErrValidation, chunkOverlap, chunkSize)
	}
	return &Normalizer{chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

func Default() *Normalizer {
	n, _ := New(config.ChunkSize, config.ChunkOverlap)
	return n
}

// ChunkPaper rejects papers with no text content, otherwise splits the
// canonical text block into windows. Chunk ids are deterministic, so
// re-running on identical content yields identical ids and re-ingestion
// becomes an upsert instead of an accumulation.
func (n *Normalizer) ChunkPaper(p paper.Paper) ([]paper.Chunk, error) {
	if p.Id == "" {
		return nil, fmt.Errorf("%w: paper has no id", ragerr.ErrValidation)
	}
	if !p.HasText() {
		return nil, fmt.Errorf("%w: paper %s has no text content", ragerr.ErrValidation, p.Id)
	}

	windows := splitWindows(CanonicalText(p), n.chunkSize, n.chunkOverlap)
	chunks := make([]paper.Chunk, 0, len(windows))
	for i, w := range windows {
		chunks = append(chunks, paper.Chunk{
			Id:       ChunkId(p.Id, i),
			SourceId: p.Id,
			Title:    p.Title,
			Ordinal:  i,
			Text:     w,
		})
	}
	return chunks, nil
}

func ChunkId(sourceId string, ordinal int) string {
	return fmt.Sprintf("%s:c%03d", sourceId, ordinal)
}

// CanonicalText renders the labelled field block. Empty fields are skipped;
// the authors line is truncated so one long author list cannot crowd the
// abstract out of its chunk.
func CanonicalText(p paper.Paper) string {
	var lines []string
	if title := strings.TrimSpace(p.Title); title != "" {
		lines = append(lines, "Title: "+title)
	}
	if abstract := strings.TrimSpace(p.Abstract); abstract != "" {
		lines = append(lines, "Abstract: "+abstract)
	}
	if keywords := joinNonEmpty(p.Keywords); keywords != "" {
		lines = append(lines, "Keywords: "+keywords)
	}
	if authors := joinNonEmpty(p.Authors); authors != "" {
		lines = append(lines, "Authors: "+truncate(authors, config.AuthorsMaxChars))
	}
	if venue := strings.TrimSpace(p.Venue); venue != "" {
		lines = append(lines, "Venue: "+venue)
	}
	if p.Year != 0 {
		lines = append(lines, fmt.Sprintf("Year: %d", p.Year))
	}
	return strings.Join(lines, "\n")
}

func joinNonEmpty(items []string) string {
	var kept []string
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ", ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// splitWindows slices by runes so multi-byte scripts never split mid-character.
// Consecutive windows share the configured overlap; the final window may be
// shorter; text within one window of size yields exactly one chunk.
func splitWindows(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	step := size - overlap
	var windows []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end >= len(runes) {
			windows = append(windows, string(runes[start:]))
			break
		}
		windows = append(windows, string(runes[start:end]))
	}
	return windows
}
