package adapter

import (
	"fmt"

	"github.com/akepally/ScholarRAG/internal/api"
	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/domain/jobModel"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/internal/rag"
	"github.com/akepally/ScholarRAG/internal/rag/synthesize"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("/api/rag/jobs/%s", id),
	}
}

func ToJobResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status: string(job.Status),
		Step:   string(job.CurrentStep),
		Report: ToIngestReport(job.JobPayload.Summary),
	}

	return api.JobResponse{
		Id:        job.Id,
		Type:      string(job.JobType),
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToIngestReport(summary *paper.IngestSummary) *api.IngestReport {
	if summary == nil {
		return nil
	}
	return &api.IngestReport{
		Total:      summary.Total,
		Succeeded:  summary.Succeeded,
		Failed:     summary.Failed,
		ChunkCount: summary.ChunkCount,
		Error:      summary.Error,
	}
}

// ToEngineAsk resolves the request's nil-able settings against the
// configured defaults. Explicit values pass through untouched, including
// invalid ones, which the engine rejects.
func ToEngineAsk(req api.AskRequest) rag.AskRequest {
	useHybrid := true
	if req.UseHybrid != nil {
		useHybrid = *req.UseHybrid
	}
	semanticWeight := float64(config.DefaultSemanticWeight)
	if req.SemanticWeight != nil {
		semanticWeight = *req.SemanticWeight
	}
	bm25Weight := float64(config.DefaultBM25Weight)
	if req.BM25Weight != nil {
		bm25Weight = *req.BM25Weight
	}
	return rag.AskRequest{
		Question:       req.Question,
		UseHybrid:      useHybrid,
		SemanticWeight: semanticWeight,
		BM25Weight:     bm25Weight,
		TopK:           req.TopK,
	}
}

func ToAskResponse(question string, result synthesize.Result) api.AskResponse {
	return api.AskResponse{
		Question: question,
		Answer:   result.Answer,
		Sources:  result.Sources,
	}
}

// ToPaperSummary truncates the abstract for list views. Uploaded papers
// carry their whole extracted text there, which is too much for a list row.
func ToPaperSummary(p paper.Paper) api.PaperSummary {
	return api.PaperSummary{
		Id:            p.Id,
		DocType:       p.DocType,
		Title:         p.Title,
		Abstract:      truncateRunes(p.Abstract, config.UploadAbstractLen),
		Keywords:      p.Keywords,
		Authors:       p.Authors,
		Venue:         p.Venue,
		Year:          p.Year,
		CitationCount: p.CitationCount,
		URL:           p.URL,
	}
}

func ToPaperListResponse(papers []paper.Paper, total, limit, skip int) api.PaperListResponse {
	out := make([]api.PaperSummary, 0, len(papers))
	for _, p := range papers {
		out = append(out, ToPaperSummary(p))
	}
	return api.PaperListResponse{
		Papers: out,
		Total:  total,
		Limit:  limit,
		Skip:   skip,
	}
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
