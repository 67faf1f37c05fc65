package worker

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"time"

	"github.com/akepally/ScholarRAG/internal/config"
	jobmodel "github.com/akepally/ScholarRAG/internal/domain/jobModel"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/internal/ingest"
	"github.com/akepally/ScholarRAG/internal/metrics"
	"github.com/akepally/ScholarRAG/internal/ragerr"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TraceIdValue, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobExecutionTimeout)
	defer cancel()
	log := logger.With("traceId", job.TraceId, "jobId", job.Id)
	log.Debug("processing job", "type", job.JobType)

	job.Status = jobmodel.JobStatusRunning
	job = saveJobState(ctx, job, jobmodel.IngestInit)

	if job.JobType == jobmodel.JobTypeImport {
		job = importUpload(ctx, job, log)
	} else {
		job = rebuildIndex(ctx, job, log)
	}

	job.EndTime = time.Now()
	if job.Status != jobmodel.JobStatusError {
		job.Status = jobmodel.JobStatusComplete
		job.CurrentStep = jobmodel.Complete
	}
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("failed to persist final job state", "error", err)
	}
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("removed worker", "reason", reason, "workerCount", atomic.LoadInt64(&currentWorkerCount))
	metrics.DecrementActiveWorkerCount()
}

// rebuildIndex replaces the whole index from the catalog. Inline papers
// join the catalog first so the index mirrors it once the job finishes.
func rebuildIndex(ctx context.Context, job jobmodel.Job, log *logging.Logger) jobmodel.Job {
	if len(job.JobPayload.Papers) > 0 {
		if _, err := _catalog.Import(ctx, job.JobPayload.Papers); err != nil {
			log.Error("catalog import failed", "error", err)
			return failJob(job, err, "importing papers: "+err.Error())
		}
	}

	job = saveJobState(ctx, job, jobmodel.Normalizing)
	papers, err := _catalog.All(ctx)
	if err != nil {
		log.Error("reading catalog failed", "error", err)
		return failJob(job, err, "reading catalog: "+err.Error())
	}

	job = saveJobState(ctx, job, jobmodel.Embedding)
	summary, err := _ragService.RebuildIndex(ctx, papers)
	job.JobPayload.Summary = &summary
	job.JobPayload.Papers = nil //paper bodies do not belong in the job record
	if err != nil {
		log.Error("rebuild failed", "error", err)
		return failJob(job, err, err.Error())
	}

	job = saveJobState(ctx, job, jobmodel.Saving)
	log.Info("rebuild finished", "papers", summary.Succeeded, "chunks", summary.ChunkCount)
	return job
}

// importUpload turns a parked upload file into a catalog entry and an
// incremental index upsert. The parked file is deleted either way.
func importUpload(ctx context.Context, job jobmodel.Job, log *logging.Logger) jobmodel.Job {
	uploadPath := job.JobPayload.UploadPath
	if uploadPath == "" {
		return failJob(job, ragerr.ErrValidation, "upload job has no file path")
	}
	defer func() {
		if err := os.Remove(uploadPath); err != nil && !os.IsNotExist(err) {
			log.Warn("could not delete parked upload", "path", uploadPath, "error", err)
		}
	}()

	job = saveJobState(ctx, job, jobmodel.Extracting)
	p, err := ingest.PaperFromFile(uploadPath, job.JobPayload.UploadName)
	if err != nil {
		log.Error("extraction failed", "file", job.JobPayload.UploadName, "error", err)
		return failJob(job, ragerr.ErrValidation, err.Error())
	}

	job = saveJobState(ctx, job, jobmodel.Normalizing)
	papers := []paper.Paper{p}
	if _, err := _catalog.Import(ctx, papers); err != nil {
		log.Error("catalog import failed", "error", err)
		return failJob(job, err, "importing paper: "+err.Error())
	}

	job = saveJobState(ctx, job, jobmodel.Indexing)
	summary, err := _ragService.IngestPapers(ctx, papers)
	job.JobPayload.Summary = &summary
	if err != nil {
		log.Error("ingest failed", "error", err)
		return failJob(job, err, err.Error())
	}

	log.Info("upload ingested", "paper", p.Id, "chunks", summary.ChunkCount)
	return job
}

// saveJobState persists a step transition so job polling shows progress.
func saveJobState(ctx context.Context, job jobmodel.Job, step jobmodel.InternalStatus) jobmodel.Job {
	job.CurrentStep = step
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("failed to update job state in store", "jobId", job.Id, "error", err)
	}
	return job
}

func failJob(job jobmodel.Job, cause error, message string) jobmodel.Job {
	job.Status = jobmodel.JobStatusError
	job.CurrentStep = jobmodel.Error
	job.Error = jobmodel.JobError{
		Code:    jobErrorCode(cause),
		Message: message,
		Retry:   retryable(cause),
	}
	return job
}

func jobErrorCode(err error) int {
	switch {
	case errors.Is(err, ragerr.ErrValidation):
		return 422
	case errors.Is(err, ragerr.ErrEmbedding), errors.Is(err, ragerr.ErrGeneration):
		return 502
	case errors.Is(err, ragerr.ErrIndexUnavailable):
		return 503
	default:
		return 500
	}
}

// retryable marks failures worth re-submitting. Rejected input stays
// rejected, provider and storage hiccups may clear up.
func retryable(err error) bool {
	return !errors.Is(err, ragerr.ErrValidation)
}
