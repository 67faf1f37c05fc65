package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akepally/ScholarRAG/internal/adapter/utils"
	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/middleware"
	"github.com/akepally/ScholarRAG/internal/rag"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

var (
	server     *http.Server
	_logger    *logging.Logger
	loggerOnce sync.Once
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	Engine           rag.Service
	CloseServices    context.CancelFunc
}

func initLogger() {
	loggerOnce.Do(func() { _logger = logging.NewLogger("server") })
}

func CreateServer(listenAddr string) {
	initLogger()

	r := utils.GetRouter()

	r.Router.Get("/health", middleware.HealthHandler)

	r.Router.Post("/api/rag/ask", middleware.AskHandler)
	r.Router.Post("/api/rag/rebuild", middleware.RebuildHandler)
	r.Router.Get("/api/rag/jobs/{jobID}", middleware.GetJobStatusHandler)
	r.Router.Get("/api/rag/status", middleware.EngineStatusHandler)

	r.Router.Post("/api/papers/import", middleware.ImportPapersHandler)
	r.Router.Post("/api/papers/upload", middleware.UploadPaperHandler)
	r.Router.Post("/api/papers/search", middleware.SearchPapersHandler)
	r.Router.Get("/api/papers", middleware.ListPapersHandler)
	r.Router.Get("/api/papers/{paperID}", middleware.GetPaperHandler)

	r.Router.Post("/api/navigator/path", middleware.NavigatorPathHandler)

	r.Router.Post("/api/shutdown", middleware.ShutdownHandler)

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("server is listening", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("server crashed", "error", err.Error(), "addr", listenAddr)
	}
}

// ShutDownHandler blocks until a signal arrives, then drains in this
// order: stop accepting requests, retire the workers, save the index,
// release shared services. The index save must come after the workers
// are done so no ingest commits behind its back.
func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	initLogger()
	_logger.Info("server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("could not shutdown gracefully", "error", err)
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()

		if shutdownParams.Engine != nil {
			if err := shutdownParams.Engine.Close(ctx); err != nil {
				_logger.Error("closing engine", "error", err)
			}
		}

		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("graceful shutdown complete")
	case <-ctx.Done():
		_logger.Info("force shut down")
		os.Exit(1)
	}
}
