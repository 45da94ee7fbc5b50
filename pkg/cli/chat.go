package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func chatCmd(opts *rootOptions) *cobra.Command {
	var stream bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ingest the FAQ document and chat interactively in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := opts.logger(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			engine, cleanup, err := bootstrap(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			return runREPL(ctx, engine, replOptions{Stream: stream}, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&stream, "stream", false, "stream assistant output as it is generated")
	return cmd
}
