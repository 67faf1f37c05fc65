package jobModel

import (
	"context"
	"time"

	"github.com/akepally/ScholarRAG/internal/domain/paper"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	IngestInit  InternalStatus = "Init"
	Extracting  InternalStatus = "Extracting"
	Normalizing InternalStatus = "Normalizing"
	Embedding   InternalStatus = "EmbeddingAPI"
	Indexing    InternalStatus = "Indexing"
	Saving      InternalStatus = "Saving"

	Error InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeRebuild JobType = "Rebuild"
	JobTypeImport  JobType = "Import"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// JobPayload carries the job's input and, once finished, its outcome.
// Rebuild jobs read either the inline papers or the whole catalog;
// import jobs point at a file the upload handler parked on disk, which
// the worker deletes after processing.
type JobPayload struct {
	Source     string        `json:"source,omitempty"`
	Papers     []paper.Paper `json:"papers,omitempty"`
	UploadName string        `json:"upload_name,omitempty"`
	UploadPath string        `json:"upload_path,omitempty"`

	Summary *paper.IngestSummary `json:"summary,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobId string)
}
