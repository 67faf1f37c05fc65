package middleware

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/akepally/ScholarRAG/internal/handlers"
	"github.com/akepally/ScholarRAG/internal/metrics"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logging.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var (
	logMW   *logging.Logger
	logOnce sync.Once
)

var (
	HealthHandler = Wrap(handlers.HealthHandler)

	AskHandler          = Wrap(handlers.AskHandler)
	RebuildHandler      = Wrap(handlers.RebuildHandler)
	GetJobStatusHandler = Wrap(handlers.GetJobStatusHandler)
	EngineStatusHandler = Wrap(handlers.EngineStatusHandler)

	ImportPapersHandler = Wrap(handlers.ImportPapersHandler)
	UploadPaperHandler  = Wrap(handlers.UploadPaperHandler)
	SearchPapersHandler = Wrap(handlers.SearchPapersHandler)
	ListPapersHandler   = Wrap(handlers.ListPapersHandler)
	GetPaperHandler     = Wrap(handlers.GetPaperHandler)

	NavigatorPathHandler = Wrap(handlers.NavigatorPathHandler)

	//shutdown stays token-gated even when no AUTH_TOKEN is configured
	ShutdownHandler = WrapProtected(handlers.ShutdownHandler)
)

// Wrap runs the standard chain in front of a handler: trace injection,
// per-IP rate limiting and bearer auth when an AUTH_TOKEN is configured.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, false)
}

// WrapProtected is Wrap with auth made mandatory. Without a configured
// token the endpoint answers 401 to everyone.
func WrapProtected(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, true)
}

func wrap(next http.HandlerFunc, requireAuth bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logOnce.Do(func() { logMW = logging.NewLogger("middleware") })

		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec}, requireAuth)

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
		} else {
			next(rec, re.req)
		}

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

// processRequest only marks failures; handleBadRequest in wrap is the
// single place that writes an error response.
func processRequest(re requestResponseStruct, requireAuth bool) requestResponseStruct {
	re.logger = logMW
	re = injectTrace(re)
	re = rateLimiter(re)
	if re.badRequest.isBadRequest {
		return re
	}
	return authenticate(re, requireAuth)
}
