package queryparse

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/akepally/ScholarRAG/internal/adapter/utils"
	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/internal/rag/llm"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

const parseInstructions = `You translate a natural language request about academic papers into a JSON search filter.

The filter supports exactly these fields, all optional:
- "title": a substring of the paper title
- "author": one author name
- "venue": a journal or conference name (for example CVPR, ICLR, Pattern Recognition)
- "keyword": one topical keyword
- "doc_type": "journal" or "conference"
- "year_from": earliest publication year, as a number
- "year_to": latest publication year, as a number

Rules:
1. Return ONLY the JSON object, no explanations and no code fences.
2. Omit every field the request does not constrain.
3. A single year constrains year_from and year_to to that same year.
4. If the request is unclear, return {}.`

// Parser turns free-form paper queries into structured catalog filters.
type Parser struct {
	provider llm.Provider
	logger   *logging.Logger
}

func New(provider llm.Provider) *Parser {
	return &Parser{
		provider: provider,
		logger:   logging.NewLogger("queryparse"),
	}
}

// Parse asks the model for a filter matching the request. Anything the
// model gets wrong degrades to an unfiltered search rather than an
// error, so a flaky parse never blocks the search endpoint.
func (p *Parser) Parse(ctx context.Context, message string) paper.Filter {
	prompt := fmt.Sprintf("%s\n\nUser request: %s", parseInstructions, message)

	raw, err := p.provider.Generate(ctx, prompt, config.QueryParseTemperature)
	if err != nil {
		p.logger.Warn("query parse generation failed, searching unfiltered", "error", err.Error())
		return paper.Filter{}
	}

	span, ok := utils.ExtractJSONObject(raw)
	if !ok {
		p.logger.Warn("no JSON object in model response", "response_len", len(raw))
		return paper.Filter{}
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(span), &fields); err != nil {
		p.logger.Warn("query filter did not parse", "error", err.Error())
		return paper.Filter{}
	}
	return filterFromFields(fields)
}

// filterFromFields coerces loosely-typed model output into the filter.
// Models frequently return years as strings.
func filterFromFields(fields map[string]any) paper.Filter {
	return paper.Filter{
		Title:    stringField(fields["title"]),
		Author:   stringField(fields["author"]),
		Venue:    stringField(fields["venue"]),
		Keyword:  stringField(fields["keyword"]),
		DocType:  stringField(fields["doc_type"]),
		YearFrom: intField(fields["year_from"]),
		YearTo:   intField(fields["year_to"]),
		Limit:    intField(fields["limit"]),
	}
}

func stringField(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func intField(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return 0
}
