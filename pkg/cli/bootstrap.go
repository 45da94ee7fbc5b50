package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dlazzeri/faqrag/pkg/config"
	"github.com/dlazzeri/faqrag/pkg/embedding"
	"github.com/dlazzeri/faqrag/pkg/ingest"
	"github.com/dlazzeri/faqrag/pkg/rag"
	"github.com/dlazzeri/faqrag/pkg/vector"
)

// bootstrap assembles the full pipeline: OpenAI client, cached embedder,
// Qdrant index, document ingestion, and the RAG engine. The returned cleanup
// closes every owned resource and is safe to call once.
func bootstrap(ctx context.Context, cfg config.Config, logger *slog.Logger) (*rag.Engine, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	client := newOpenAIClient(cfg)

	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("cleanup failed", "error", err)
			}
		}
	}

	var embedder embedding.Embedder = embedding.NewOpenAIEmbedder(client, cfg.EmbeddingModel)
	if cfg.CachePath != "" {
		cache, err := embedding.OpenCache(cfg.CachePath, embedder, logger)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, cache.Close)
		embedder = cache
	}

	index, err := vector.NewQdrantIndex(cfg.QdrantHost, cfg.QdrantPort)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closers = append(closers, index.Close)

	result, err := ingest.New(embedder, index, logger).Run(ctx, cfg.DocumentPath)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("ingest %s: %w", cfg.DocumentPath, err)
	}
	logger.Info("document ready",
		"collection", result.Collection,
		"pairs", result.Pairs,
		"uploaded", result.Uploaded,
		"skipped", result.Skipped,
	)

	completer := rag.NewOpenAICompleter(client, cfg.Model, cfg.Temperature)
	engine, err := rag.NewEngine(embedder, index, completer, rag.Options{
		Collection: result.Collection,
		TopK:       cfg.TopK,
		Timeout:    cfg.RequestTimeout,
		Logger:     logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return engine, cleanup, nil
}

// newOpenAIClient builds a client with configuration from Config.
func newOpenAIClient(cfg config.Config) openai.Client {
	opts := []option.RequestOption{}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return openai.NewClient(opts...)
}
