package api

import (
	"time"

	"github.com/akepally/ScholarRAG/internal/domain/paper"
)

// responses -------------------

type JobResponse struct {
	Id        string            `json:"id" example:"9f0c81b4-6f2e-4c9d-a4c0-0a4b53f5f3f1"`
	Type      string            `json:"type" example:"Rebuild"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type Result struct {
	Status string        `json:"status" example:"COMPLETE"`
	Step   string        `json:"step,omitempty" example:"Indexing"`
	Report *IngestReport `json:"report,omitempty"`
}

// IngestReport mirrors the engine's ingest summary for API clients.
type IngestReport struct {
	Total      int    `json:"total"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	ChunkCount int    `json:"chunk_count"`
	Error      string `json:"error,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"502"`
	Message string `json:"message" example:"embedding provider failure"`
	Retry   bool   `json:"can_retry" example:"true"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type AskResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

// PaperSummary is the list/search row. Abstracts are truncated; the
// single-paper endpoint returns the full record.
type PaperSummary struct {
	Id            string   `json:"id"`
	DocType       string   `json:"doc_type,omitempty"`
	Title         string   `json:"title"`
	Abstract      string   `json:"abstract,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Venue         string   `json:"venue,omitempty"`
	Year          int      `json:"year,omitempty"`
	CitationCount int      `json:"citation_count,omitempty"`
	URL           string   `json:"url,omitempty"`
}

type PaperListResponse struct {
	Papers []PaperSummary `json:"papers"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Skip   int            `json:"skip"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"question must not be empty"`
}

// requests---------------------

type AskRequest struct {
	Question string `json:"question" validate:"required"`
	// Nil pointers mean "use the configured defaults"; an explicit zero
	// weight is a validation error, not a default.
	UseHybrid      *bool    `json:"use_hybrid,omitempty"`
	SemanticWeight *float64 `json:"semantic_weight,omitempty"`
	BM25Weight     *float64 `json:"bm25_weight,omitempty"`
	TopK           int      `json:"top_k,omitempty"`
}

type RebuildRequest struct {
	Source string        `json:"source,omitempty" example:"catalog"`
	Papers []paper.Paper `json:"papers,omitempty"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit,omitempty"`
}

type NavigatorRequest struct {
	Topic    string `json:"topic" validate:"required"`
	Language string `json:"language,omitempty" example:"en"`
}
