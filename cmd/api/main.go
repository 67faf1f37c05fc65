package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/akepally/ScholarRAG/internal/catalog"
	"github.com/akepally/ScholarRAG/internal/catalog/queryparse"
	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/data/store"
	"github.com/akepally/ScholarRAG/internal/domain/jobModel"
	"github.com/akepally/ScholarRAG/internal/handlers"
	"github.com/akepally/ScholarRAG/internal/job"
	"github.com/akepally/ScholarRAG/internal/navigator"
	"github.com/akepally/ScholarRAG/internal/rag"
	"github.com/akepally/ScholarRAG/internal/rag/embedding"
	"github.com/akepally/ScholarRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akepally/ScholarRAG/internal/rag/embedding/openaiEmbedding"
	"github.com/akepally/ScholarRAG/internal/rag/llm"
	"github.com/akepally/ScholarRAG/internal/rag/llm/gemini"
	"github.com/akepally/ScholarRAG/internal/rag/llm/openaiLLM"
	"github.com/akepally/ScholarRAG/internal/rag/vectorstore/qdrantStore"
	"github.com/akepally/ScholarRAG/internal/server"
	"github.com/akepally/ScholarRAG/internal/worker"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	//load .env before anything reads the environment; absent file is the
	//normal container case
	_ = godotenv.Load()

	logging.Init()
	var logger = logging.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobModel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	if redisJobs := store.GetRedisJobStore(serviceContext); redisJobs != nil {
		serviceConfig.JobStore = redisJobs
	} else if config.FALLBACK_REDIS_TO_INTERNALSTORE {
		logger.Warn("Redis job store is offline, using the in-memory store")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
	} else {
		logger.Error("Redis job store is offline and fallback is disabled. Shutting down.")
		return
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	//paper catalog
	catalogStore, err := catalog.NewStore(config.GetDataDir())
	if err != nil {
		logger.Error("Could not open the paper catalog. Shutting down.", "error", err)
		return
	}
	defer catalogStore.Close()

	//providers
	embedder := buildEmbedder(serviceContext)
	generator := buildGenerator(serviceContext)
	if embedder == nil || generator == nil {
		logger.Error("One or more providers failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "Embedder", embedder != nil, "LLMProvider", generator != nil)
		return
	}

	//embedding cache rides on the same redis-or-memory policy as the job store
	if redisVectors := store.GetRedisEmbedCache(serviceContext); redisVectors != nil {
		embedder = embedding.NewCached(embedder, redisVectors)
	} else if config.FALLBACK_REDIS_TO_INTERNALSTORE {
		logger.Warn("Redis embed cache is offline, using the in-memory cache")
		embedder = embedding.NewCached(embedder, store.InitInMemoryEmbedCache())
	}

	deps := rag.Dependencies{Embedder: embedder, Generator: generator}
	if config.GetVectorBackend() == "qdrant" {
		qs := qdrantStore.GetQdrantStore(serviceContext)
		if qs == nil {
			logger.Error("Qdrant backend requested but unreachable. Shutting down.")
			return
		}
		deps.Remote = qs
	}

	ragService, err := rag.NewRagService(deps, rag.Options{})
	if err != nil {
		logger.Error("Could not initialize the rag engine. Shutting down.", "error", err)
		return
	}

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	handlers.InitHandlers(handlers.ApiDeps{
		Jobs:      service,
		Engine:    ragService,
		Catalog:   catalogStore,
		Parser:    queryparse.New(generator),
		Navigator: navigator.New(generator),
		Shutdown:  func() { gracefulShutdown <- syscall.SIGTERM },
	})

	//init worker pool
	worker.InitServices(service, ragService, catalogStore)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//a remote vector backend starts empty, so refill it from the catalog
	if deps.Remote != nil {
		if n, countErr := catalogStore.Count(serviceContext); countErr == nil && n > 0 {
			jobId := handlers.EnqueueRebuild("startup")
			logger.Info("queued startup rebuild for remote backend", "jobId", jobId, "papers", n)
		}
	}

	//server handling
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		Engine:           ragService,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func buildEmbedder(ctx context.Context) embedding.Embedder {
	switch config.GetEmbedProvider() {
	case "openai":
		return openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel, config.GetOpenAIAPIKey())
	default:
		return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, config.GetGeminiAPIKey())
	}
}

func buildGenerator(ctx context.Context) llm.Provider {
	switch config.GetLLMProvider() {
	case "openai":
		return openaiLLM.GetOpenAIClient(config.OpenAIModelName, config.GetOpenAIAPIKey())
	default:
		return gemini.GetGeminiClient(ctx, config.GeminiModelName, config.GetGeminiAPIKey())
	}
}
