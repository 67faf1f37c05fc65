package store

import (
	"context"
	"encoding/json"

	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/data/redisStore"
	"github.com/akepally/ScholarRAG/internal/domain/jobModel"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

type RedisJobStore struct {
	store  *redisStore.Store
	logger *logging.Logger
}

// GetRedisJobStore returns nil when redis is offline so main can fall back
// to the in-memory store. Check nil before assigning to the JobStore
// interface, a typed nil inside the interface passes == nil checks as false.
func GetRedisJobStore(ctx context.Context) *RedisJobStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisJobStore)
	if inner == nil {
		return nil
	}
	return &RedisJobStore{
		store:  inner,
		logger: logging.NewLogger("jobStore"),
	}
}

func (s *RedisJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	log := s.logger.WithTrace(ctx).With("jobId", job.Id)
	log.Debug("saving job")
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, job.Id, data, config.RedisJobStoreTTL)
	if err == nil {
		log.Debug("saved job to redis")
	}
	return err
}

func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	var job jobModel.Job
	log := s.logger.WithTrace(ctx).With("jobId", jobId)
	log.Debug("getting job")
	val, err := s.store.Get(ctx, jobId)
	if s.store.IsNil(err) {
		return job, false
	} else if err != nil {
		log.Error("error reading job from redis", "error", err)
		return job, false
	}

	err = json.Unmarshal([]byte(val), &job)
	if err != nil {
		log.Error("error unmarshalling job", "error", err)
		return job, false
	}

	return job, true
}

func (s *RedisJobStore) DeleteJob(ctx context.Context, jobId string) {
	err := s.store.Del(ctx, jobId)
	if err != nil {
		s.logger.Error("error deleting job from redis", "jobId", jobId, "error", err)
		return
	}
	s.logger.Debug("job deleted from redis", "jobId", jobId)
}

// TestJobStore wraps an externally provided store. Only in _test.go files.
func TestJobStore(store *redisStore.Store) *RedisJobStore {
	return &RedisJobStore{
		store:  store,
		logger: logging.NewLogger("test jobStore"),
	}
}
