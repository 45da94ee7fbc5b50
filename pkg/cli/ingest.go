package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dlazzeri/faqrag/pkg/embedding"
	"github.com/dlazzeri/faqrag/pkg/ingest"
	"github.com/dlazzeri/faqrag/pkg/vector"
)

func ingestCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Parse and embed the FAQ document without serving",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := opts.logger(cfg)

			client := newOpenAIClient(cfg)

			var embedder embedding.Embedder = embedding.NewOpenAIEmbedder(client, cfg.EmbeddingModel)
			if cfg.CachePath != "" {
				cache, err := embedding.OpenCache(cfg.CachePath, embedder, logger)
				if err != nil {
					return err
				}
				defer cache.Close()
				embedder = cache
			}

			index, err := vector.NewQdrantIndex(cfg.QdrantHost, cfg.QdrantPort)
			if err != nil {
				return err
			}
			defer index.Close()

			result, err := ingest.New(embedder, index, logger).Run(cmd.Context(), cfg.DocumentPath)
			if err != nil {
				return err
			}

			if result.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "collection %s is up to date (%d pairs)\n", result.Collection, result.Pairs)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ingested %d pairs into collection %s\n", result.Uploaded, result.Collection)
			return nil
		},
	}
	return cmd
}
