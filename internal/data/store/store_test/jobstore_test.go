package store_test

import (
	"context"
	"testing"

	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/data/redisStore"
	"github.com/akepally/ScholarRAG/internal/data/store"
	"github.com/akepally/ScholarRAG/internal/domain/jobModel"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	internalStore := redisStore.NewTestStore(client)
	jobStore := store.TestJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TraceIdValue, "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:      jobID,
		JobType: jobModel.JobTypeImport,
		Status:  jobModel.JobStatusRunning,
		JobPayload: jobModel.JobPayload{
			Source:     "upload",
			UploadName: "attention.pdf",
			UploadPath: "/tmp/uploads/attention.pdf",
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		err := jobStore.SaveJob(ctx, testJob)
		if err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}

		if retrievedJob.JobPayload.UploadName != testJob.JobPayload.UploadName {
			t.Errorf("Data mismatch! Got %s, want %s",
				retrievedJob.JobPayload.UploadName, testJob.JobPayload.UploadName)
		}
		if retrievedJob.JobType != jobModel.JobTypeImport {
			t.Errorf("JobType mismatch! Got %s, want %s", retrievedJob.JobType, jobModel.JobTypeImport)
		}
	})

	t.Run("Summary Survives Roundtrip", func(t *testing.T) {
		withSummary := testJob
		withSummary.Status = jobModel.JobStatusComplete
		withSummary.JobPayload.Summary = &paper.IngestSummary{
			Total:      1,
			Succeeded:  1,
			ChunkCount: 4,
		}
		if err := jobStore.SaveJob(ctx, withSummary); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		got, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("job not found after update")
		}
		if got.JobPayload.Summary == nil || got.JobPayload.Summary.ChunkCount != 4 {
			t.Errorf("summary did not survive the roundtrip: %+v", got.JobPayload.Summary)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		_, found := jobStore.GetJob(ctx, "ghost-id")
		if found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)

		if mr.Exists(jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisJobStore_Race(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	jobStore := store.TestJobStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TraceIdValue, "race-trace")
	job := jobModel.Job{Id: "race-job"}

	const workers = 50
	for i := 0; i < workers; i++ {
		go func() {
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
}

func TestRedisEmbedCache_Roundtrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := store.TestEmbedCache(redisStore.NewTestStore(client))

	ctx := context.Background()
	key := "emb:deadbeef"
	vec := []float32{0.25, -0.5, 0.125}

	if _, found := cache.GetVector(ctx, key); found {
		t.Fatal("expected miss on empty cache")
	}

	if err := cache.PutVector(ctx, key, vec); err != nil {
		t.Fatalf("PutVector failed: %v", err)
	}

	got, found := cache.GetVector(ctx, key)
	if !found {
		t.Fatal("vector was stored but not found")
	}
	if len(got) != len(vec) {
		t.Fatalf("vector length mismatch: got %d, want %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("component %d mismatch: got %f, want %f", i, got[i], vec[i])
		}
	}
}

func TestInMemoryStores(t *testing.T) {
	ctx := context.Background()

	t.Run("JobStore", func(t *testing.T) {
		js := store.InitInMemoryJobStore()
		job := jobModel.Job{Id: "mem-job", Status: jobModel.JobStatusQueued}

		if err := js.SaveJob(ctx, job); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}
		got, found := js.GetJob(ctx, "mem-job")
		if !found || got.Status != jobModel.JobStatusQueued {
			t.Errorf("GetJob = (%+v, %t), want stored job", got, found)
		}

		js.DeleteJob(ctx, "mem-job")
		if _, found := js.GetJob(ctx, "mem-job"); found {
			t.Error("job still present after delete")
		}
	})

	t.Run("EmbedCache", func(t *testing.T) {
		ec := store.InitInMemoryEmbedCache()
		vec := []float32{1, 2, 3}

		if err := ec.PutVector(ctx, "k", vec); err != nil {
			t.Fatalf("PutVector failed: %v", err)
		}
		got, found := ec.GetVector(ctx, "k")
		if !found || len(got) != 3 || got[2] != 3 {
			t.Errorf("GetVector = (%v, %t), want stored vector", got, found)
		}
		if _, found := ec.GetVector(ctx, "missing"); found {
			t.Error("expected miss for unknown key")
		}
	})
}
