package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akepally/ScholarRAG/internal/domain/jobModel"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/internal/job"
	"github.com/akepally/ScholarRAG/internal/rag"
	"github.com/akepally/ScholarRAG/internal/rag/synthesize"
	"github.com/akepally/ScholarRAG/internal/ragerr"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

// MockRagService tracks whether jobs reach the engine.
type MockRagService struct {
	ProcessedCount int32
	RebuildFunc    func(ctx context.Context, papers []paper.Paper) (paper.IngestSummary, error)
}

func (m *MockRagService) Ask(ctx context.Context, req rag.AskRequest) (synthesize.Result, error) {
	return synthesize.Result{}, nil
}

func (m *MockRagService) RebuildIndex(ctx context.Context, papers []paper.Paper) (paper.IngestSummary, error) {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.RebuildFunc != nil {
		return m.RebuildFunc(ctx, papers)
	}
	return paper.IngestSummary{Total: len(papers), Succeeded: len(papers), ChunkCount: len(papers) * 2}, nil
}

func (m *MockRagService) IngestPapers(ctx context.Context, papers []paper.Paper) (paper.IngestSummary, error) {
	atomic.AddInt32(&m.ProcessedCount, 1)
	return paper.IngestSummary{Total: len(papers), Succeeded: len(papers)}, nil
}

func (m *MockRagService) Status() rag.EngineStatus {
	return rag.EngineStatus{Initialized: true}
}

func (m *MockRagService) Close(ctx context.Context) error { return nil }

type MockJobStore struct {
	mu    sync.Mutex
	saved map[string]jobModel.Job
}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string]jobModel.Job)
	}
	m.saved[j.Id] = j
	return nil
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.saved[jobId]
	return j, ok
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobId string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, jobId)
}

type MockCatalog struct {
	mu     sync.Mutex
	papers []paper.Paper
}

func (m *MockCatalog) All(ctx context.Context) ([]paper.Paper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.papers, nil
}

func (m *MockCatalog) Import(ctx context.Context, papers []paper.Paper) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.papers = append(m.papers, papers...)
	return len(papers), nil
}

func TestWorkerPool_Flow(t *testing.T) {
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          &MockJobStore{},
	}
	mockRag := &MockRagService{}
	mockCatalog := &MockCatalog{papers: []paper.Paper{{Id: "attention-2017", Title: "Attention Is All You Need"}}}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockRag, mockCatalog)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true

		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker processes a rebuild job", func(t *testing.T) {
		testJob := jobModel.Job{Id: "test-1", JobType: jobModel.JobTypeRebuild}
		jobSvc.JobChannel <- testJob

		time.Sleep(100 * time.Millisecond)

		processed := atomic.LoadInt32(&mockRag.ProcessedCount)
		if processed != 1 {
			t.Errorf("Expected 1 job processed, got %d", processed)
		}

		final, found := jobSvc.JobStore.GetJob(context.Background(), "test-1")
		if !found {
			t.Fatal("final job state was never saved")
		}
		if final.Status != jobModel.JobStatusComplete {
			t.Errorf("final status = %s, want %s", final.Status, jobModel.JobStatusComplete)
		}
		if final.CurrentStep != jobModel.Complete {
			t.Errorf("final step = %s, want %s", final.CurrentStep, jobModel.Complete)
		}
		if final.JobPayload.Summary == nil || final.JobPayload.Summary.Succeeded != 1 {
			t.Errorf("summary missing or wrong: %+v", final.JobPayload.Summary)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestExecuteJob_ErrorState(t *testing.T) {
	store := &MockJobStore{}
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 1),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          store,
	}
	failing := &MockRagService{
		RebuildFunc: func(ctx context.Context, papers []paper.Paper) (paper.IngestSummary, error) {
			return paper.IngestSummary{Total: len(papers), Failed: len(papers)},
				fmt.Errorf("embedding texts: %w", ragerr.ErrEmbedding)
		},
	}
	logger = logging.NewLogger("TestWorkerPool")
	InitServices(jobSvc, failing, &MockCatalog{papers: []paper.Paper{{Id: "p1"}}})

	executeJob(jobModel.Job{Id: "bad-job", JobType: jobModel.JobTypeRebuild, TraceId: "trace-1"})

	final, found := store.GetJob(context.Background(), "bad-job")
	if !found {
		t.Fatal("job state was never saved")
	}
	if final.Status != jobModel.JobStatusError {
		t.Fatalf("status = %s, want %s", final.Status, jobModel.JobStatusError)
	}
	if final.Error.Code != 502 {
		t.Errorf("error code = %d, want 502", final.Error.Code)
	}
	if !final.Error.Retry {
		t.Error("embedding failures should be marked retryable")
	}
	if final.JobPayload.Summary == nil {
		t.Error("summary should still be reported for a failed run")
	}
}

func TestExecuteJob_ValidationNotRetryable(t *testing.T) {
	store := &MockJobStore{}
	jobSvc := &job.Service{JobChannel: make(chan jobModel.Job, 1), JobStore: store}
	logger = logging.NewLogger("TestWorkerPool")
	InitServices(jobSvc, &MockRagService{}, &MockCatalog{})

	// An import job with no parked file is rejected outright.
	executeJob(jobModel.Job{Id: "no-file", JobType: jobModel.JobTypeImport})

	final, found := store.GetJob(context.Background(), "no-file")
	if !found {
		t.Fatal("job state was never saved")
	}
	if final.Status != jobModel.JobStatusError {
		t.Fatalf("status = %s, want %s", final.Status, jobModel.JobStatusError)
	}
	if final.Error.Code != 422 {
		t.Errorf("error code = %d, want 422", final.Error.Code)
	}
	if final.Error.Retry {
		t.Error("validation failures must not be retryable")
	}
}

func TestExecuteJob_ImportUpload(t *testing.T) {
	store := &MockJobStore{}
	jobSvc := &job.Service{JobChannel: make(chan jobModel.Job, 1), JobStore: store}
	mockRag := &MockRagService{}
	mockCatalog := &MockCatalog{}
	logger = logging.NewLogger("TestWorkerPool")
	InitServices(jobSvc, mockRag, mockCatalog)

	dir := t.TempDir()
	path := filepath.Join(dir, "parked-upload.txt")
	body := "Deep residual networks ease the training of very deep models."
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	executeJob(jobModel.Job{
		Id:      "upload-job",
		JobType: jobModel.JobTypeImport,
		JobPayload: jobModel.JobPayload{
			Source:     "upload",
			UploadName: "Deep Residual Learning.txt",
			UploadPath: path,
		},
	})

	final, found := store.GetJob(context.Background(), "upload-job")
	if !found {
		t.Fatal("job state was never saved")
	}
	if final.Status != jobModel.JobStatusComplete {
		t.Fatalf("status = %s, error = %+v", final.Status, final.Error)
	}
	if got := atomic.LoadInt32(&mockRag.ProcessedCount); got != 1 {
		t.Errorf("engine ingest calls = %d, want 1", got)
	}
	if len(mockCatalog.papers) != 1 || mockCatalog.papers[0].Id != "upload-deep-residual-learning" {
		t.Errorf("catalog import missing or wrong id: %+v", mockCatalog.papers)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("parked upload should be deleted after processing")
	}
}

func TestWorker_IdleTimeout(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 0)
	idleWorkerTimeout = 50 * time.Millisecond
	logger = logging.NewLogger("TestWorkerPool")
	jobSvc := &job.Service{
		JobChannel: make(chan jobModel.Job),
	}
	InitServices(jobSvc, &MockRagService{}, &MockCatalog{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	createWorker()
	time.Sleep(idleWorkerTimeout + 100*time.Millisecond)

	count := atomic.LoadInt64(&currentWorkerCount)
	if count != 0 {
		t.Errorf("Assertion Failed: Worker should have timed out and retired, but count is %d", count)
	}
}
