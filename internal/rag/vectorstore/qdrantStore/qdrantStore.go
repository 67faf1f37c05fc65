package qdrantStore

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/akepally/ScholarRAG/internal/config"
	"github.com/akepally/ScholarRAG/internal/domain/paper"
	"github.com/akepally/ScholarRAG/pkg/logging"
)

var logger *logging.Logger
var storeInstance *Store
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

// Store keeps chunk vectors in a qdrant collection. Chunk metadata
// rides along as point payload so search results come back whole.
type Store struct {
	client     *qdrant.Client
	collection string
}

// GetQdrantStore returns the process-wide store, or nil when the
// client could not be built. Callers must check for nil and fall back
// to the local index.
func GetQdrantStore(ctx context.Context) *Store {
	once.Do(func() {
		logger = logging.NewLogger("qdrantStore")
		client := newClient()
		if client != nil {
			storeInstance = &Store{client: client, collection: config.QdrantCollection}
			go closeClient(ctx, client)
		}
		//if init still fails storeInstance stays nil
	})
	return storeInstance
}

func newClient() *qdrant.Client {
	host := config.GetQdrantHost()
	if host == "" {
		host = "127.0.0.1"
	}
	port, err := strconv.Atoi(config.Env("QDRANT_GRPC_PORT", strconv.Itoa(config.QdrantGrpcPort)))
	if err != nil {
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		UseTLS: config.QdrantUseTLS,
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error", err)
		return nil
	}

	if err := ensureCollection(context.Background(), client, config.QdrantCollection); err != nil {
		logger.Error("could not create collection", "collection", config.QdrantCollection, "error", err)
		return nil
	}
	return client
}

func closeClient(ctx context.Context, client *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down qdrant client")
	if err := client.Close(); err != nil {
		logger.Error("could not close qdrant client", "error", err)
	}
}

func (st *Store) Search(ctx context.Context, queryVec []float32, k int) ([]paper.ChunkScore, error) {
	if k <= 0 {
		return nil, nil
	}
	loggr := logger.WithTrace(ctx)

	result, err := st.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: st.collection,
		Query:          qdrant.NewQuery(queryVec...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("qdrant query failed", "error", err)
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	scores := make([]paper.ChunkScore, 0, len(result))
	for _, hit := range result {
		scores = append(scores, paper.ChunkScore{
			Chunk: paper.Chunk{
				Id:       hit.Payload["chunk_id"].GetStringValue(),
				SourceId: hit.Payload["source_id"].GetStringValue(),
				Title:    hit.Payload["title"].GetStringValue(),
				Ordinal:  int(hit.Payload["ordinal"].GetIntegerValue()),
				Text:     hit.Payload["content"].GetStringValue(),
			},
			Score: float64(hit.Score),
		})
	}
	return scores, nil
}

func (st *Store) Add(ctx context.Context, chunks []paper.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	for start := 0; start < len(chunks); start += config.QdrantUpsertBatchSize {
		end := min(start+config.QdrantUpsertBatchSize, len(chunks))
		points := make([]*qdrant.PointStruct, 0, end-start)
		for i := start; i < end; i++ {
			points = append(points, &qdrant.PointStruct{
				//qdrant point ids must be UUIDs, chunk ids are not
				Id:      qdrant.NewID(pointId(chunks[i].Id)),
				Vectors: qdrant.NewVectors(vectors[i]...),
				Payload: qdrant.NewValueMap(map[string]any{
					"chunk_id":  chunks[i].Id,
					"source_id": chunks[i].SourceId,
					"title":     chunks[i].Title,
					"ordinal":   chunks[i].Ordinal,
					"content":   chunks[i].Text,
				}),
			})
		}
		_, err := st.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: st.collection,
			Points:         points,
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return fmt.Errorf("qdrant upsert failed: %w", err)
		}
	}
	return nil
}

func (st *Store) RemoveSource(ctx context.Context, sourceId string) (int, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch("source_id", sourceId)},
	}

	count, err := st.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: st.collection,
		Filter:         filter,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	_, err = st.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: st.collection,
		Points:         qdrant.NewPointsSelectorFilter(filter),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant delete: %w", err)
	}
	return int(count), nil
}

// Reset drops and recreates the collection for a full rebuild.
func (st *Store) Reset(ctx context.Context) error {
	if err := st.client.DeleteCollection(ctx, st.collection); err != nil {
		return fmt.Errorf("dropping collection %s: %w", st.collection, err)
	}
	return ensureCollection(ctx, st.client, st.collection)
}

// pointId derives a stable UUID from the chunk id so re-ingesting the
// same paper overwrites its points instead of duplicating them.
func pointId(chunkId string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("scholarrag/chunk/"+chunkId)).String()
}

func ensureCollection(ctx context.Context, client *qdrant.Client, collection string) error {
	if collection == "" {
		return fmt.Errorf("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
