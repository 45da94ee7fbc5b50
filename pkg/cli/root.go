// Package cli implements the faqrag command tree.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dlazzeri/faqrag/pkg/config"
)

// Execute runs the root command.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the persistent flag values shared by all subcommands.
type rootOptions struct {
	configPath string
	docPath    string
	verbose    bool
}

// loadConfig resolves the effective configuration: .env, YAML file, env vars,
// then flag overrides.
func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.docPath != "" {
		cfg.DocumentPath = o.docPath
	}
	if o.verbose {
		cfg.Verbose = true
	}
	return config.Normalize(cfg), nil
}

// logger builds the process logger; verbose switches on debug logging.
func (o *rootOptions) logger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "faqrag",
		Short:        "faqrag — retrieval-augmented FAQ assistant",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			// Secrets come from the environment; .env keeps them out of
			// version control during development.
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "faqrag.yaml", "path to YAML config file (optional)")
	cmd.PersistentFlags().StringVar(&opts.docPath, "doc", "", "path to the Markdown FAQ document (overrides config)")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable debug logging")

	cmd.AddCommand(serveCmd(opts))
	cmd.AddCommand(chatCmd(opts))
	cmd.AddCommand(ingestCmd(opts))
	return cmd
}
