package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/akepally/ScholarRAG/internal/adapter"
	"github.com/akepally/ScholarRAG/internal/adapter/utils"
	"github.com/akepally/ScholarRAG/internal/api"
	"github.com/akepally/ScholarRAG/internal/domain/jobModel"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

var logRH *logging.Logger

// HealthHandler godoc
// @Summary      Liveness probe
// @Tags         Operations
// @Success      200
// @Router       /health [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// AskHandler godoc
// @Summary      Ask a question over the paper collection
// @Description  Embeds the question, retrieves supporting chunks (hybrid semantic + BM25 by default) and returns a grounded answer with its sources.
// @Tags         RAG
// @Accept       json
// @Produce      json
// @Param        request  body      api.AskRequest  true  "Question and optional retrieval settings"
// @Success      200      {object}  api.AskResponse
// @Failure      400      {object}  api.ErrorResponse  "Empty question or invalid weights"
// @Failure      502      {object}  api.ErrorResponse  "Embedding or generation provider failure"
// @Failure      503      {object}  api.ErrorResponse  "Engine not initialized"
// @Router       /api/rag/ask [post]
func AskHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("invalid context by request", "remote", request.RemoteAddr)
		return
	}

	var requestData api.AskRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("couldn't close the ask request reader", "error", err)
		}
	}(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
		logRH.Warn("bad ask request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := handlerInstance.deps.Engine.Ask(request.Context(), adapter.ToEngineAsk(requestData))
	if err != nil {
		logRH.WithTrace(request.Context()).Warn("ask failed", "error", err)
		WriteErrorResponse(w, httpStatusFor(err), err.Error())
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToAskResponse(strings.TrimSpace(requestData.Question), result))
}

// RebuildHandler godoc
// @Summary      Rebuild the search index
// @Description  Queues an asynchronous rebuild. With inline papers they are first imported into the catalog; the index is then rebuilt from the whole catalog. An empty body rebuilds from the catalog as-is.
// @Tags         RAG
// @Accept       json
// @Produce      json
// @Param        request  body      api.RebuildRequest   false  "Rebuild source"
// @Success      202      {object}  api.InitJobResponse  "Job queued"
// @Failure      400      {object}  api.ErrorResponse
// @Router       /api/rag/rebuild [post]
func RebuildHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("invalid context by request", "remote", request.RemoteAddr)
		return
	}

	var requestData api.RebuildRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("couldn't close the rebuild request reader", "error", err)
		}
	}(request.Body)
	//an empty body is a plain catalog rebuild
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil && !errors.Is(err, io.EOF) {
		logRH.Warn("bad rebuild request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	source := requestData.Source
	if source == "" {
		source = "catalog"
		if len(requestData.Papers) > 0 {
			source = "inline"
		}
	}

	newData := newJobData{
		id:      utils.GetNewUUID(),
		traceId: traceFrom(request),
		jobType: jobModel.JobTypeRebuild,
		source:  source,
		papers:  requestData.Papers,
	}
	CreateNewJob(newData)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newData.id))
}

// GetJobStatusHandler godoc
// @Summary      Get ingestion job status
// @Description  Retrieves the current state of a rebuild or import job, including the ingest report once it finished.
// @Tags         RAG
// @Produce      json
// @Param        jobID  path      string  true  "Job ID"
// @Success      200    {object}  api.JobResponse
// @Failure      404    {object}  api.ErrorResponse  "Job not found"
// @Router       /api/rag/jobs/{jobID} [get]
func GetJobStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("invalid context by request", "remote", r.RemoteAddr)
		return
	}

	idString := utils.GetChiURLParam(r, "jobID")
	result, isFound := validateId(idString, traceFrom(r))
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, "job not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToJobResponse(result))
}

// EngineStatusHandler godoc
// @Summary      Engine status
// @Description  Reports whether the engine is initialized, where the index lives and how much it holds.
// @Tags         RAG
// @Produce      json
// @Success      200  {object}  rag.EngineStatus
// @Router       /api/rag/status [get]
func EngineStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("invalid context by request", "remote", r.RemoteAddr)
		return
	}
	writeJsonResponse(w, http.StatusOK, handlerInstance.deps.Engine.Status())
}

// ShutdownHandler godoc
// @Summary      Graceful shutdown
// @Description  Stops the server: drains in-flight requests, retires the workers and saves the index. Requires a bearer token.
// @Tags         Operations
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  map[string]string
// @Router       /api/shutdown [post]
func ShutdownHandler(w http.ResponseWriter, r *http.Request) {
	logRH.WithTrace(r.Context()).Info("shutdown requested", "remote", r.RemoteAddr)
	writeJsonResponse(w, http.StatusAccepted, map[string]string{"status": "shutting down"})
	if handlerInstance.deps.Shutdown != nil {
		go handlerInstance.deps.Shutdown()
	}
}
