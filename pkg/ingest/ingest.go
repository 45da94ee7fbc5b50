// Package ingest loads a FAQ document into the vector index.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dlazzeri/faqrag/pkg/document"
	"github.com/dlazzeri/faqrag/pkg/embedding"
	"github.com/dlazzeri/faqrag/pkg/vector"
)

// Result reports what an ingest run did.
type Result struct {
	Collection string
	Pairs      int
	Uploaded   int
	Skipped    bool
}

// Ingestor parses, embeds, and uploads FAQ documents.
type Ingestor struct {
	embedder embedding.Embedder
	index    vector.Index
	logger   *slog.Logger
}

// New builds an Ingestor.
func New(embedder embedding.Embedder, index vector.Index, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{embedder: embedder, index: index, logger: logger}
}

// Run ingests the document at path. The collection is named by the document
// fingerprint, so an unchanged document short-circuits: when the collection
// already exists nothing is embedded or uploaded.
func (in *Ingestor) Run(ctx context.Context, path string) (Result, error) {
	pairs, err := document.ParseFile(path, in.logger)
	if err != nil {
		return Result{}, err
	}
	collection := document.Fingerprint(pairs)

	// Probe the embedding dimensionality before creating the collection.
	probe, err := in.embedder.Embed(ctx, "test")
	if err != nil {
		return Result{}, fmt.Errorf("probe embedding dims: %w", err)
	}

	existed, err := in.index.EnsureCollection(ctx, collection, len(probe))
	if err != nil {
		return Result{}, err
	}
	if existed {
		in.logger.Info("collection already exists, skipping upload", "collection", collection)
		return Result{Collection: collection, Pairs: len(pairs), Skipped: true}, nil
	}

	points := make([]vector.Point, 0, len(pairs))
	for i, pair := range pairs {
		vec, err := in.embedder.Embed(ctx, pair.Question)
		if err != nil {
			return Result{}, fmt.Errorf("embed question %d: %w", i, err)
		}
		points = append(points, vector.Point{
			ID:       uint64(i),
			Vector:   vec,
			Question: pair.Question,
			Answer:   pair.Answer,
		})
	}

	in.logger.Info("uploading embeddings", "collection", collection, "points", len(points))
	if err := in.index.Upsert(ctx, collection, points); err != nil {
		return Result{}, err
	}

	return Result{Collection: collection, Pairs: len(pairs), Uploaded: len(points)}, nil
}
