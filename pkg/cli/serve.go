package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dlazzeri/faqrag/pkg/server"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Ingest the FAQ document and serve the chat API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}
			logger := opts.logger(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			engine, cleanup, err := bootstrap(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := server.New(engine, server.Options{
				Addr:          cfg.ListenAddr,
				MaxConcurrent: cfg.MaxConcurrent,
				Logger:        logger,
			})
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
