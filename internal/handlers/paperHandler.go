package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/akepally/ScholarRAG/internal/adapter"
	"github.com/akepally/ScholarRAG/internal/adapter/utils"
	"github.com/akepally/ScholarRAG/internal/api"
	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/domain/jobModel"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/internal/ingest"
)

// ImportPapersHandler godoc
// @Summary      Import papers into the catalog
// @Description  Upserts a JSON array of papers synchronously. The search index is not touched; queue a rebuild to refresh it.
// @Tags         Papers
// @Accept       json
// @Produce      json
// @Param        request  body      []paper.Paper  true  "Papers to import"
// @Success      200      {object}  api.ImportResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /api/papers/import [post]
func ImportPapersHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("invalid context by request", "remote", r.RemoteAddr)
		return
	}

	var papers []paper.Paper
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("couldn't close the import request reader", "error", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&papers); err != nil {
		logRH.Warn("bad import request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "expected a JSON array of papers")
		return
	}
	if len(papers) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "no papers in request")
		return
	}

	imported, err := handlerInstance.deps.Catalog.Import(r.Context(), papers)
	if err != nil {
		logRH.WithTrace(r.Context()).Error("catalog import failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "import failed")
		return
	}
	writeJsonResponse(w, http.StatusOK, api.ImportResponse{Imported: imported, Total: len(papers)})
}

// UploadPaperHandler godoc
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, parks it under the data directory and queues an import job that extracts, catalogs and indexes it.
// @Tags         Papers
// @Accept       multipart/form-data
// @Produce      json
// @Param        document       formData  file    true   "The PDF, DOCX, ODT, RTF or TXT file to upload"
// @Param        document_name  formData  string  false  "Display name; defaults to the uploaded file name"
// @Success      202  {object}  api.InitJobResponse  "Job queued"
// @Failure      400  {object}  api.ErrorResponse    "Missing file, unsupported type or file too large"
// @Failure      500  {object}  api.ErrorResponse    "Storage or write error"
// @Router       /api/papers/upload [post]
func UploadPaperHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("invalid context by request", "remote", r.RemoteAddr)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("couldn't get target directory", "error", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, errString)
		return
	}

	const maxUploadSize = 32 << 20 //32mb
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "file too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "could not retrieve file")
		return
	}
	defer fileReader.Close()

	docName := strings.TrimSpace(r.FormValue("document_name"))
	if docName == "" {
		docName = fileMetadata.Filename
	}
	//the worker derives format, title and paper id from this name
	if filepath.Ext(docName) == "" {
		docName += filepath.Ext(fileMetadata.Filename)
	}
	if !ingest.Supported(docName) {
		WriteErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("unsupported file type: %s", filepath.Ext(docName)))
		return
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
	tempFilePath := filepath.Join(targetDir, filename)
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "storage error")
		return
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "write error")
		return
	}

	newData := newJobData{
		id:         utils.GetNewUUID(),
		traceId:    traceFrom(r),
		jobType:    jobModel.JobTypeImport,
		source:     "upload",
		uploadName: docName,
		uploadPath: tempFilePath,
	}
	CreateNewJob(newData)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newData.id))
}

// SearchPapersHandler godoc
// @Summary      Search the catalog with a natural-language query
// @Description  Translates the free-text query into a structured filter (author, venue, years, keyword) and runs it against the catalog. Unparseable queries degrade to a plain listing.
// @Tags         Papers
// @Accept       json
// @Produce      json
// @Param        request  body      api.SearchRequest  true  "Query and optional result limit"
// @Success      200      {object}  api.PaperListResponse
// @Failure      400      {object}  api.ErrorResponse  "Empty query"
// @Router       /api/papers/search [post]
func SearchPapersHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("invalid context by request", "remote", r.RemoteAddr)
		return
	}

	var requestData api.SearchRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("couldn't close the search request reader", "error", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		logRH.Warn("bad search request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	query := strings.TrimSpace(requestData.Query)
	if query == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "query is required")
		return
	}

	filter := handlerInstance.deps.Parser.Parse(r.Context(), query)
	filter.Limit = requestData.Limit
	papers, err := handlerInstance.deps.Catalog.Search(r.Context(), filter)
	if err != nil {
		logRH.WithTrace(r.Context()).Error("catalog search failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToPaperListResponse(papers, len(papers), requestData.Limit, 0))
}

// ListPapersHandler godoc
// @Summary      List papers
// @Tags         Papers
// @Produce      json
// @Param        limit  query     int  false  "Page size"
// @Param        skip   query     int  false  "Offset"
// @Success      200    {object}  api.PaperListResponse
// @Failure      500    {object}  api.ErrorResponse
// @Router       /api/papers [get]
func ListPapersHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("invalid context by request", "remote", r.RemoteAddr)
		return
	}

	limit := queryInt(r, "limit", config.DefaultSearchLimit)
	skip := queryInt(r, "skip", 0)

	papers, err := handlerInstance.deps.Catalog.List(r.Context(), limit, skip)
	if err != nil {
		logRH.WithTrace(r.Context()).Error("catalog list failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "list failed")
		return
	}
	total, err := handlerInstance.deps.Catalog.Count(r.Context())
	if err != nil {
		logRH.WithTrace(r.Context()).Error("catalog count failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "list failed")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToPaperListResponse(papers, total, limit, skip))
}

// GetPaperHandler godoc
// @Summary      Get a single paper
// @Tags         Papers
// @Produce      json
// @Param        paperID  path      string  true  "Paper ID"
// @Success      200      {object}  paper.Paper
// @Failure      404      {object}  api.ErrorResponse  "Paper not found"
// @Router       /api/papers/{paperID} [get]
func GetPaperHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("invalid context by request", "remote", r.RemoteAddr)
		return
	}

	idString := utils.GetChiURLParam(r, "paperID")
	result, err := handlerInstance.deps.Catalog.Get(r.Context(), idString)
	if err != nil {
		if errors.Is(err, paper.ErrNotFound) {
			WriteErrorResponse(w, http.StatusNotFound, "paper not found")
			return
		}
		logRH.WithTrace(r.Context()).Error("catalog get failed", "error", err, "paperId", idString)
		WriteErrorResponse(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJsonResponse(w, http.StatusOK, result)
}

// NavigatorPathHandler godoc
// @Summary      Build a research reading path
// @Description  Generates a staged reading path (foundation, core, frontier) and a list of notable scholars for a topic. Sections that the model cannot produce come back empty rather than failing the call.
// @Tags         Navigator
// @Accept       json
// @Produce      json
// @Param        request  body      api.NavigatorRequest  true  "Topic and optional language"
// @Success      200      {object}  navigator.Result
// @Failure      400      {object}  api.ErrorResponse  "Empty topic"
// @Router       /api/navigator/path [post]
func NavigatorPathHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("invalid context by request", "remote", r.RemoteAddr)
		return
	}

	var requestData api.NavigatorRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("couldn't close the navigator request reader", "error", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		logRH.Warn("bad navigator request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	topic := strings.TrimSpace(requestData.Topic)
	if topic == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "topic is required")
		return
	}
	language := strings.TrimSpace(requestData.Language)
	if language == "" {
		language = "en"
	}

	writeJsonResponse(w, http.StatusOK, handlerInstance.deps.Navigator.Generate(r.Context(), topic, language))
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
