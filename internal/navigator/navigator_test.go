package navigator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type mockProvider struct {
	generateFunc func(ctx context.Context, prompt string, temperature float32) (string, error)
}

func (m *mockProvider) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	return m.generateFunc(ctx, prompt, temperature)
}

const pathResponse = `{
	"foundation": [
		{"title": "Attention Is All You Need", "authors": ["Vaswani"], "year": 2017, "venue": "NeurIPS", "cited_by_count": 100000, "url": "https://arxiv.org/abs/1706.03762"}
	],
	"core": [
		{"title": "LLaMA", "authors": ["Touvron"], "year": 2023, "venue": "arXiv"}
	],
	"frontier": []
}`

const scholarsResponse = `[
	{"name": "Yoshua Bengio", "institution": "Mila", "research_areas": ["deep learning"], "profile_url": "https://openalex.org/a1"}
]`

func TestGenerate(t *testing.T) {
	g := New(&mockProvider{
		generateFunc: func(ctx context.Context, prompt string, temperature float32) (string, error) {
			// the two prompts request different JSON shapes
			if strings.Contains(prompt, "reading path") {
				return pathResponse, nil
			}
			return scholarsResponse, nil
		},
	})

	res := g.Generate(context.Background(), "transformers", "en")
	if res.Topic != "transformers" {
		t.Errorf("unexpected topic %q", res.Topic)
	}
	if len(res.Path.Foundation) != 1 || res.Path.Foundation[0].Title != "Attention Is All You Need" {
		t.Errorf("foundation did not parse: %+v", res.Path.Foundation)
	}
	if res.Path.Foundation[0].CitedByCount != 100000 {
		t.Errorf("citation count did not parse: %d", res.Path.Foundation[0].CitedByCount)
	}
	if len(res.Path.Core) != 1 || res.Path.Core[0].Year != 2023 {
		t.Errorf("core did not parse: %+v", res.Path.Core)
	}
	if res.Path.Frontier == nil {
		t.Error("frontier must be an empty slice, not nil")
	}
	if len(res.Scholars) != 1 || res.Scholars[0].Institution != "Mila" {
		t.Errorf("scholars did not parse: %+v", res.Scholars)
	}
}

func TestGenerateDegradesPerSection(t *testing.T) {
	g := New(&mockProvider{
		generateFunc: func(ctx context.Context, prompt string, temperature float32) (string, error) {
			if strings.Contains(prompt, "reading path") {
				return "", errors.New("model unavailable")
			}
			return scholarsResponse, nil
		},
	})

	res := g.Generate(context.Background(), "graph neural networks", "en")
	if len(res.Path.Foundation) != 0 || len(res.Path.Core) != 0 || len(res.Path.Frontier) != 0 {
		t.Errorf("expected empty path on failure, got %+v", res.Path)
	}
	if res.Path.Foundation == nil {
		t.Error("failed path must still serialize as empty sections")
	}
	if len(res.Scholars) != 1 {
		t.Errorf("scholar generation should survive a path failure, got %+v", res.Scholars)
	}
}

func TestGenerateGarbageResponses(t *testing.T) {
	g := New(&mockProvider{
		generateFunc: func(ctx context.Context, prompt string, temperature float32) (string, error) {
			return "I am not going to produce JSON today.", nil
		},
	})

	res := g.Generate(context.Background(), "diffusion models", "en")
	if len(res.Path.Foundation) != 0 || len(res.Scholars) != 0 {
		t.Errorf("expected empty result from garbage responses, got %+v", res)
	}
	if res.Scholars == nil {
		t.Error("scholars must be an empty slice, not nil")
	}
}

func TestGenerateLanguageInstruction(t *testing.T) {
	var mu sync.Mutex
	var prompts []string
	g := New(&mockProvider{
		generateFunc: func(ctx context.Context, prompt string, temperature float32) (string, error) {
			mu.Lock()
			prompts = append(prompts, prompt)
			mu.Unlock()
			return "{}", nil
		},
	})

	g.Generate(context.Background(), "语音识别", "zh")
	for _, p := range prompts {
		if !strings.Contains(p, "Chinese") {
			t.Errorf("prompt missing language instruction: %s", p[len(p)-40:])
		}
	}
}
