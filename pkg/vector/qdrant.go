package vector

import (
	"context"
	"fmt"
	"slices"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantIndex is the Qdrant-backed Index.
type QdrantIndex struct {
	client *qdrant.Client
}

// NewQdrantIndex connects to a Qdrant instance over gRPC.
func NewQdrantIndex(host string, port int) (*QdrantIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("connect qdrant: %w", err)
	}
	return &QdrantIndex{client: client}, nil
}

// EnsureCollection creates the collection with cosine distance when absent.
func (q *QdrantIndex) EnsureCollection(ctx context.Context, name string, dims int) (bool, error) {
	collections, err := q.client.ListCollections(ctx)
	if err != nil {
		return false, fmt.Errorf("list collections: %w", err)
	}
	if slices.Contains(collections, name) {
		return true, nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dims),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return false, fmt.Errorf("create collection %s: %w", name, err)
	}
	return false, nil
}

// Upsert writes points with their question/answer payloads and waits for the
// write to be applied.
func (q *QdrantIndex) Upsert(ctx context.Context, name string, points []Point) error {
	upserts := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		upserts = append(upserts, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"question": p.Question,
				"answer":   p.Answer,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Points:         upserts,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("upsert %d points into %s: %w", len(points), name, err)
	}
	return nil
}

// Search queries the collection for the closest points.
func (q *QdrantIndex) Search(ctx context.Context, name string, vector []float32, limit int) ([]Hit, error) {
	scored, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", name, err)
	}

	hits := make([]Hit, 0, len(scored))
	for _, point := range scored {
		hits = append(hits, Hit{
			Question: point.Payload["question"].GetStringValue(),
			Answer:   point.Payload["answer"].GetStringValue(),
			Score:    point.Score,
		})
	}
	return hits, nil
}

// Close releases the underlying gRPC connection.
func (q *QdrantIndex) Close() error {
	return q.client.Close()
}
