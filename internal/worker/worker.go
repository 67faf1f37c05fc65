package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/internal/job"
	"github.com/akepally/ScholarRAG/internal/metrics"
	"github.com/akepally/ScholarRAG/internal/rag"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

// Catalog is the slice of the paper catalog the workers touch: the full
// paper set for rebuilds, upsert for imports.
type Catalog interface {
	All(ctx context.Context) ([]paper.Paper, error)
	Import(ctx context.Context, papers []paper.Paper) (int, error)
}

var (
	_jobService        *job.Service
	_ragService        rag.Service
	_catalog           Catalog
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	dispatcherChannel  chan bool
	currentWorkerCount int64
	logger             *logging.Logger
	minWorkerCount     = config.MinWorkerCount
	idleWorkerTimeout  = config.IdleWorkerTimeout
)

func InitServices(jobService *job.Service, ragService rag.Service, catalogStore Catalog) {
	_jobService = jobService
	_ragService = ragService
	_catalog = catalogStore
	dispatcherChannel = jobService.DispatcherChannel
}

func InitWorkerPool(stopWorkerChan chan bool, waitGroup *sync.WaitGroup) {
	stopWorkerChannel = stopWorkerChan
	workerWaitGroup = waitGroup
	logger = logging.NewLogger("workerPool")
	logger.Info("initializing worker pool")
	go dispatcher()
}

func dispatcher() {
	createWorker()
	logger.Info("dispatcher started")
	for range dispatcherChannel {
		if atomic.LoadInt64(&currentWorkerCount) < config.MaxWorkerCount {
			logger.Info("creating new worker", "workerCount", atomic.LoadInt64(&currentWorkerCount))
			createWorker()
		}
	}
}

func createWorker() {
	workerWaitGroup.Add(1)
	go worker()
	atomic.AddInt64(&currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	logger.Info("created new worker")
}

func worker() {
	for {
		select {
		case currentJob := <-_jobService.JobChannel:
			executeJob(currentJob)
			metrics.DecrementJobsInQueue()

		case <-stopWorkerChannel:
			removeWorker("stop worker signal received")
			return

		case <-time.After(idleWorkerTimeout):
			//idle workers retire down to the configured pool floor
			if atomic.LoadInt64(&currentWorkerCount) > atomic.LoadInt64(&minWorkerCount) {
				removeWorker("idle worker timeout")
				return
			}
		}
	}
}
