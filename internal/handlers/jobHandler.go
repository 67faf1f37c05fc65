package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akepally/ScholarRAG/internal/adapter/utils"
	"github.com/akepally/ScholarRAG/internal/catalog"
	"github.com/akepally/ScholarRAG/internal/catalog/queryparse"
	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/domain/jobModel"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/internal/job"
	"github.com/akepally/ScholarRAG/internal/metrics"
	"github.com/akepally/ScholarRAG/internal/navigator"
	"github.com/akepally/ScholarRAG/internal/rag"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

var (
	handlerInstance *apiHandler //private singleton
	once            sync.Once
	logJH           *logging.Logger
)

// ApiDeps is everything the HTTP surface needs. Shutdown is the trigger
// main wires to its signal channel.
type ApiDeps struct {
	Jobs      *job.Service
	Engine    rag.Service
	Catalog   *catalog.Store
	Parser    *queryparse.Parser
	Navigator *navigator.Guide
	Shutdown  func()
}

type apiHandler struct {
	deps ApiDeps
}

func InitHandlers(deps ApiDeps) {
	once.Do(func() {
		handlerInstance = &apiHandler{deps: deps}

		logJH = logging.NewLogger("jobHandler")
		logRH = logging.NewLogger("requestHandler")
		logJH.Info("handlers initialized")
	})
}

// newJobData is the enqueue-side view of a job before it becomes a
// jobModel.Job.
type newJobData struct {
	id         string
	traceId    string
	jobType    jobModel.JobType
	source     string
	papers     []paper.Paper
	uploadName string
	uploadPath string
}

func CreateNewJob(newJob newJobData) {
	logJH.With("traceId", newJob.traceId, "jobId", newJob.id).Info("creating new job", "type", newJob.jobType)
	handlerInstance.pushToJobChannel(newJob)
}

// EnqueueRebuild queues a catalog rebuild outside the HTTP flow. Main
// uses it at startup to refill a remote vector backend, which holds
// nothing until the first rebuild runs.
func EnqueueRebuild(source string) string {
	newData := newJobData{
		id:      utils.GetNewUUID(),
		traceId: utils.GetNewUUID(),
		jobType: jobModel.JobTypeRebuild,
		source:  source,
	}
	CreateNewJob(newData)
	return newData.id
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TraceIdValue, traceId)
	if handlerInstance != nil {
		return handlerInstance.deps.Jobs.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// private methods
func (h *apiHandler) pushToJobChannel(newJob newJobData) {

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued
	_job.CurrentStep = jobModel.IngestInit
	_job.JobType = newJob.jobType
	_job.JobPayload.Source = newJob.source
	_job.JobPayload.Papers = newJob.papers
	_job.JobPayload.UploadName = newJob.uploadName
	_job.JobPayload.UploadPath = newJob.uploadPath

	//persist QUEUED before the send so an immediate status poll finds it
	ctxC := context.WithValue(context.Background(), config.TraceIdValue, newJob.traceId)
	if err := h.deps.Jobs.JobStore.SaveJob(ctxC, _job); err != nil {
		logJH.Error("failed to save queued job", "jobId", _job.Id, "error", err)
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.deps.Jobs.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("queued new job", "jobId", _job.Id)

	//a rebuild is a long batch run, so it always asks for an extra worker;
	//otherwise one is requested every RequestsPerNewWorkerCount jobs
	accurateCount := atomic.AddInt64(&h.deps.Jobs.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobModel.JobTypeRebuild {
		metrics.StartDispatcherSignalCount() //metrics
		logJH.Debug("signaling dispatcher", "requestCount", accurateCount)
		h.deps.Jobs.DispatcherChannel <- true
	}
}
