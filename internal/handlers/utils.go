package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akepally/ScholarRAG/internal/api"
	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/domain/jobModel"
	"github.com/akepally/ScholarRAG/internal/ragerr"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string) {
	writeJsonResponse(w, httpCode, api.ErrorResponse{Code: httpCode, Message: message})
}

//httpStatusFor maps the engine sentinels onto response codes. Anything
//unrecognized stays a 500.
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, ragerr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ragerr.ErrIndexUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ragerr.ErrEmbedding), errors.Is(err, ragerr.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func validateId(id string, traceId string) (result jobModel.Job, isFound bool) {
	if id == "" {
		logRH.Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return GetJobStatus(id, traceId)
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

func traceFrom(r *http.Request) string {
	if v, ok := r.Context().Value(config.TraceIdValue).(string); ok {
		return v
	}
	return ""
}

//getTargetDirectory resolves the parking directory for uploaded documents,
//creating it on first use.
func getTargetDirectory() (string, string) {
	targetDir := filepath.Join(config.GetDataDir(), "uploads")
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		logRH.Error("couldn't create the upload directory", "error", err, "dir", targetDir)
		return "", "Storage Error"
	}
	return targetDir, ""
}
