package paper

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by stores when no paper has the requested id.
var ErrNotFound = errors.New("paper not found")

// Paper is the unit users reason about. Core fields are typed; anything
// extra a source system ships rides along in Metadata untouched.
type Paper struct {
	Id            string         `json:"id"`
	DocType       string         `json:"doc_type,omitempty"`
	Title         string         `json:"title"`
	Abstract      string         `json:"abstract,omitempty"`
	Keywords      []string       `json:"keywords,omitempty"`
	Authors       []string       `json:"authors,omitempty"`
	Venue         string         `json:"venue,omitempty"`
	Year          int            `json:"year,omitempty"`
	CitationCount int            `json:"citation_count,omitempty"`
	URL           string         `json:"url,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	IngestedAt    time.Time      `json:"ingested_at,omitempty"`
}

// HasText reports whether the paper carries at least one text-bearing field.
// Papers without any are rejected before they reach the index.
func (p Paper) HasText() bool {
	if strings.TrimSpace(p.Title) != "" || strings.TrimSpace(p.Abstract) != "" {
		return true
	}
	for _, kw := range p.Keywords {
		if strings.TrimSpace(kw) != "" {
			return true
		}
	}
	return false
}

// Chunk is the atomic unit of retrieval. Ids are derived from the source
// paper id plus the chunk's ordinal, so re-normalizing the same paper
// always yields the same ids.
type Chunk struct {
	Id       string `json:"chunk_id"`
	SourceId string `json:"source_id"`
	Title    string `json:"title,omitempty"`
	Ordinal  int    `json:"ordinal"`
	Text     string `json:"content"`
}

// ChunkScore pairs a chunk with a relevance score for one query. Ephemeral,
// never persisted.
type ChunkScore struct {
	Chunk Chunk
	Score float64
}

// Filter is the structured form a natural-language paper search is
// translated into. Zero values mean "no constraint on this field".
type Filter struct {
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Venue    string `json:"venue,omitempty"`
	Keyword  string `json:"keyword,omitempty"`
	DocType  string `json:"doc_type,omitempty"`
	YearFrom int    `json:"year_from,omitempty"`
	YearTo   int    `json:"year_to,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

func (f Filter) IsEmpty() bool {
	return f.Title == "" && f.Author == "" && f.Venue == "" && f.Keyword == "" &&
		f.DocType == "" && f.YearFrom == 0 && f.YearTo == 0
}

// IngestSummary accounts for every paper handed to an ingestion run.
// Partial runs are reported, not rolled back.
type IngestSummary struct {
	Total      int    `json:"total"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	ChunkCount int    `json:"chunk_count"`
	Error      string `json:"error,omitempty"`
}

// PathPaper is one recommended reading in a research path. These are
// model recommendations, not catalog rows, so they carry their own
// bibliographic fields.
type PathPaper struct {
	Title        string   `json:"title"`
	Authors      []string `json:"authors,omitempty"`
	Year         int      `json:"year,omitempty"`
	Venue        string   `json:"venue,omitempty"`
	CitedByCount int      `json:"cited_by_count,omitempty"`
	URL          string   `json:"url,omitempty"`
}

// ResearchPath is a staged reading list for a topic, classics first.
type ResearchPath struct {
	Foundation []PathPaper `json:"foundation"`
	Core       []PathPaper `json:"core"`
	Frontier   []PathPaper `json:"frontier"`
}

type Scholar struct {
	Name          string   `json:"name"`
	Institution   string   `json:"institution,omitempty"`
	ResearchAreas []string `json:"research_areas,omitempty"`
	ProfileURL    string   `json:"profile_url,omitempty"`
}
