package lexical

import (
	"reflect"
	"testing"

	"github.com/akepally/ScholarRAG/internal/domain/paper"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "Lowercase_And_Punctuation",
			text: "BERT: Pre-training of Deep Bidirectional Transformers!",
			want: []string{"bert", "pre", "training", "of", "deep", "bidirectional", "transformers"},
		},
		{
			name: "Digits_Kept",
			text: "ResNet-50 won ILSVRC 2015",
			want: []string{"resnet", "50", "won", "ilsvrc", "2015"},
		},
		{
			name: "Han_Runes_Split_Individually",
			text: "注意力 attention",
			want: []string{"注", "意", "力", "attention"},
		},
		{
			name: "Mixed_Script_Word_Boundary",
			text: "深度learning",
			want: []string{"深", "度", "learning"},
		},
		{
			name: "Empty",
			text: "  \t ",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tokenize(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func corpus() []paper.Chunk {
	return []paper.Chunk{
		{Id: "a:c000", SourceId: "a", Text: "transformers use attention attention attention for sequence modeling"},
		{Id: "b:c000", SourceId: "b", Text: "convolutional networks use attention for images sometimes here"},
		{Id: "c:c000", SourceId: "c", Text: "residual connections help training very deep neural networks"},
		{Id: "d:c000", SourceId: "d", Text: "gradient descent converges for convex objectives under conditions"},
		{Id: "e:c000", SourceId: "e", Text: "bayesian inference estimates posterior distributions over latent variables"},
	}
}

func TestBM25_TermFrequencyRanks(t *testing.T) {
	s := NewBM25(corpus())

	got := s.Score("attention", 10)
	if len(got) != 2 {
		t.Fatalf("matches = %d, want only the two docs containing the term", len(got))
	}
	if got[0].Chunk.Id != "a:c000" {
		t.Errorf("top = %s, want the doc repeating the term", got[0].Chunk.Id)
	}
	if got[0].Score <= got[1].Score {
		t.Error("repeated term must outscore a single mention")
	}
}

func TestBM25_RareTermOutweighsCommon(t *testing.T) {
	s := NewBM25(corpus())

	// "residual" appears in one doc of five, "use" in two; the
	// rare-term doc must win when each doc matches one of the terms.
	got := s.Score("residual use", 10)
	if len(got) != 3 {
		t.Fatalf("matches = %d, want 3", len(got))
	}
	if got[0].Chunk.Id != "c:c000" {
		t.Errorf("top = %s, want the rare-term doc", got[0].Chunk.Id)
	}
}

func TestBM25_EdgeCases(t *testing.T) {
	s := NewBM25(corpus())

	if got := s.Score("", 5); got != nil {
		t.Errorf("empty query: got %v, want nil", got)
	}
	if got := s.Score("attention", 0); got != nil {
		t.Errorf("k=0: got %v, want nil", got)
	}
	if got := s.Score("zebra unicorn", 5); got != nil {
		t.Errorf("no matches: got %v, want nil", got)
	}
	if got := NewBM25(nil).Score("attention", 5); got != nil {
		t.Errorf("empty corpus: got %v, want nil", got)
	}

	// k caps the result, oversized k returns every match.
	if got := s.Score("networks", 1); len(got) != 1 {
		t.Errorf("k=1: got %d results", len(got))
	}
	if got := s.Score("networks", 100); len(got) != 2 {
		t.Errorf("oversized k: got %d results, want 2", len(got))
	}
}

func TestBM25_Deterministic(t *testing.T) {
	s := NewBM25(corpus())

	first := s.Score("attention networks training", 10)
	second := s.Score("attention networks training", 10)
	if !reflect.DeepEqual(first, second) {
		t.Error("same query on the same corpus must rank identically")
	}
}

func TestBM25_TiesOrderByChunkId(t *testing.T) {
	// Two identical docs score identically; the id breaks the tie.
	s := NewBM25([]paper.Chunk{
		{Id: "z:c000", SourceId: "z", Text: "identical words here"},
		{Id: "a:c000", SourceId: "a", Text: "identical words here"},
	})

	got := s.Score("identical", 2)
	if len(got) != 2 {
		t.Fatalf("matches = %d, want 2", len(got))
	}
	if got[0].Chunk.Id != "a:c000" || got[1].Chunk.Id != "z:c000" {
		t.Errorf("tie order = %s, %s; want ascending ids", got[0].Chunk.Id, got[1].Chunk.Id)
	}
}

func TestBM25_UbiquitousTermStillScoresPositive(t *testing.T) {
	// A term present in every doc goes negative under raw IDF and is
	// floored instead of zeroing the whole query.
	docs := []paper.Chunk{
		{Id: "a:c000", SourceId: "a", Text: "the transformer architecture"},
		{Id: "b:c000", SourceId: "b", Text: "the residual network"},
		{Id: "c:c000", SourceId: "c", Text: "the attention mechanism"},
	}
	s := NewBM25(docs)

	got := s.Score("the", 3)
	if len(got) != 3 {
		t.Fatalf("matches = %d, want every doc", len(got))
	}
	for _, cs := range got {
		if cs.Score <= 0 {
			t.Errorf("doc %s scored %f, floored IDF should stay positive", cs.Chunk.Id, cs.Score)
		}
	}
}

func TestBM25_Len(t *testing.T) {
	if got := NewBM25(corpus()).Len(); got != 5 {
		t.Errorf("Len = %d, want 5", got)
	}
	if got := NewBM25(nil).Len(); got != 0 {
		t.Errorf("Len on empty corpus = %d, want 0", got)
	}
}
