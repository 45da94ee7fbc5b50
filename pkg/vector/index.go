// Package vector stores and searches question embeddings. The production
// implementation talks to Qdrant over gRPC; an in-memory implementation backs
// tests and Qdrant-less runs.
package vector

import "context"

// Point is one stored vector with its FAQ payload.
type Point struct {
	ID       uint64
	Vector   []float32
	Question string
	Answer   string
}

// Hit is a search result ordered by similarity.
type Hit struct {
	Question string
	Answer   string
	Score    float32
}

// Index is the vector store contract.
type Index interface {
	// EnsureCollection creates the named collection when absent. It reports
	// whether the collection already existed, so callers can skip ingestion.
	EnsureCollection(ctx context.Context, name string, dims int) (existed bool, err error)

	// Upsert writes points into the collection.
	Upsert(ctx context.Context, name string, points []Point) error

	// Search returns up to limit hits closest to the query vector.
	Search(ctx context.Context, name string, vector []float32, limit int) ([]Hit, error)
}
