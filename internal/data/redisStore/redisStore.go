package redisStore

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/pkg/logging"
	"github.com/redis/go-redis/v9"
)

var (
	instances = make(map[int]*Store)
	mu        sync.RWMutex
	logger    *logging.Logger
	once      sync.Once
)

// Store wraps a redis client bound to one logical DB number.
type Store struct {
	client *redis.Client
	Type   int
}

// GetRedisStore returns the shared store for the given redis DB, dialing it
// on first use. Returns nil when redis is unreachable so callers can fall
// back to the in-memory stores.
func GetRedisStore(ctx context.Context, dbType int) *Store {

	mu.RLock()
	instance, exists := instances[dbType]
	mu.RUnlock()

	if exists {
		return instance
	}

	mu.Lock()
	defer mu.Unlock()

	if instance, exists = instances[dbType]; exists {
		return instance
	}
	return createNewStore(ctx, dbType)

}

func initLogger(dbType int) {
	if logger == nil {
		logger = logging.NewLogger("redisStore " + strconv.Itoa(dbType))
	}
}

func closeRedisStores(ctx context.Context) {
	<-ctx.Done()
	logger.Info("closing redis stores")
	mu.Lock()
	defer mu.Unlock()
	for _, store := range instances {
		err := store.client.Close()
		if err != nil {
			logger.Error("error closing redis client", "db", store.Type, "error", err)
		}
	}
	logger.Info("redis stores closed")
}

func createNewStore(ctx context.Context, dbType int) *Store {
	initLogger(dbType)

	newClient := redis.NewClient(&redis.Options{
		Addr:                  config.GetRedisAddr(),
		Password:              config.GetRedisPassword(),
		DB:                    dbType,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := newClient.Ping(pingCtx).Err(); err != nil {
		logger.Error("redis is offline", "db", dbType, "error", err)
		return nil
	}

	logger.Info("redis store init successfully", "db", dbType)

	newStore := &Store{
		client: newClient,
		Type:   dbType,
	}

	instances[dbType] = newStore
	once.Do(func() {
		go closeRedisStores(ctx)
	})
	return newStore

}

// NewTestStore wraps an externally provided client, bypassing the singleton.
// Only in a _test.go file or behind a build tag.
func NewTestStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}
