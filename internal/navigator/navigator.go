package navigator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/akepally/ScholarRAG/internal/adapter/utils"
	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/internal/metrics"
	"github.com/akepally/ScholarRAG/internal/rag/llm"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

const pathPromptFormat = `You are an academic research guide. Build a reading path for the research topic "%s".

Return STRICTLY this JSON shape and nothing else:

{
  "foundation": [
    {"title": "...", "authors": ["..."], "year": 2017, "venue": "NeurIPS", "cited_by_count": 100000, "url": "https://arxiv.org/abs/..."}
  ],
  "core": [],
  "frontier": []
}

Requirements:
1. foundation: 2-3 classic foundational papers, highly cited and at least five years old.
2. core: 3-4 strong papers from top venues in the last three years.
3. frontier: 2-3 preprints from the last six months.
4. Keep years and citation counts as accurate as you can.
5. Prefer arxiv.org links; use https://arxiv.org/placeholder when unsure.

Respond in %s.`

const scholarsPromptFormat = `Recommend 3 to 5 leading scholars for the research topic "%s".

Return STRICTLY this JSON shape and nothing else:

[
  {"name": "...", "institution": "...", "research_areas": ["...", "..."], "profile_url": "https://openalex.org/..."}
]

Requirements:
1. Pick scholars the field itself considers authorities.
2. Institutions must be accurate.
3. Keep research areas short.
4. Use https://openalex.org/placeholder when unsure of the profile link.

Respond in %s.`

// Guide produces reading paths and scholar recommendations for a
// research topic. Both come straight from the model, not the catalog.
type Guide struct {
	provider llm.Provider
	logger   *logging.Logger
}

func New(provider llm.Provider) *Guide {
	return &Guide{
		provider: provider,
		logger:   logging.NewLogger("navigator"),
	}
}

// Result is the full navigator answer for one topic.
type Result struct {
	Topic    string             `json:"topic"`
	Path     paper.ResearchPath `json:"path"`
	Scholars []paper.Scholar    `json:"scholars"`
}

// Generate runs the path and scholar generations concurrently. Each
// side degrades to its empty section on failure, so a single bad model
// response never sinks the whole answer.
func (g *Guide) Generate(ctx context.Context, topic, language string) Result {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("navigator_generation", time.Since(start)) }()

	langName := "English"
	if language == "zh" {
		langName = "Chinese"
	}

	var wg sync.WaitGroup
	var path paper.ResearchPath
	wg.Add(1)
	go func() {
		defer wg.Done()
		path = g.researchPath(ctx, topic, langName)
	}()

	scholars := g.scholars(ctx, topic, langName)
	wg.Wait()

	return Result{
		Topic:    topic,
		Path:     path,
		Scholars: scholars,
	}
}

func (g *Guide) researchPath(ctx context.Context, topic, langName string) paper.ResearchPath {
	prompt := fmt.Sprintf(pathPromptFormat, topic, langName)

	var path paper.ResearchPath
	raw, err := g.provider.Generate(ctx, prompt, config.NavigatorTemperature)
	if err != nil {
		g.logger.Warn("research path generation failed", "topic", topic, "error", err.Error())
		return emptyPath()
	}

	span, ok := utils.ExtractJSONObject(raw)
	if !ok {
		g.logger.Warn("no JSON object in path response", "topic", topic)
		return emptyPath()
	}
	if err := json.Unmarshal([]byte(span), &path); err != nil {
		g.logger.Warn("path response did not parse", "topic", topic, "error", err.Error())
		return emptyPath()
	}

	//empty sections must serialize as [] for API clients
	if path.Foundation == nil {
		path.Foundation = []paper.PathPaper{}
	}
	if path.Core == nil {
		path.Core = []paper.PathPaper{}
	}
	if path.Frontier == nil {
		path.Frontier = []paper.PathPaper{}
	}
	return path
}

func (g *Guide) scholars(ctx context.Context, topic, langName string) []paper.Scholar {
	prompt := fmt.Sprintf(scholarsPromptFormat, topic, langName)

	raw, err := g.provider.Generate(ctx, prompt, config.NavigatorTemperature)
	if err != nil {
		g.logger.Warn("scholar generation failed", "topic", topic, "error", err.Error())
		return []paper.Scholar{}
	}

	span, ok := utils.ExtractJSONArray(raw)
	if !ok {
		g.logger.Warn("no JSON array in scholars response", "topic", topic)
		return []paper.Scholar{}
	}

	var scholars []paper.Scholar
	if err := json.Unmarshal([]byte(span), &scholars); err != nil {
		g.logger.Warn("scholars response did not parse", "topic", topic, "error", err.Error())
		return []paper.Scholar{}
	}
	return scholars
}

func emptyPath() paper.ResearchPath {
	return paper.ResearchPath{
		Foundation: []paper.PathPaper{},
		Core:       []paper.PathPaper{},
		Frontier:   []paper.PathPaper{},
	}
}
