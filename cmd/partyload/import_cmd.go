package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/JonMunkholm/partyload/internal/config"
	"github.com/JonMunkholm/partyload/internal/importer"
	"github.com/JonMunkholm/partyload/internal/logging"
	"github.com/spf13/cobra"
)

type importOptions struct {
	file    string
	envFile string
	apply   bool
	backend string
	sqlOut  string
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Normalize the export and load it into the destination (dry run by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Input file (default: IMPORT_FILE or pessoas.csv)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "Secrets file with SUPABASE_URL and SUPABASE_KEY")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Write to the destination (default is dry-run)")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "Destination backend: rest, postgres or sql (default: STORE_BACKEND or rest)")
	cmd.Flags().StringVar(&opts.sqlOut, "sql-out", "", "Script path for the sql backend (default: STORE_SQL_OUT)")

	return cmd
}

func runImport(ctx context.Context, cmd *cobra.Command, opts importOptions) error {
	if err := config.LoadEnvFile(opts.envFile); err != nil {
		if !config.IsMissingEnvFile(err) {
			return err
		}
		slog.Warn("secrets file not found, using environment variables", "path", opts.envFile)
	}

	cfg, err := config.Load(flagOverrides(cmd, opts)...)
	if err != nil {
		return err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	return execute(ctx, cfg, cmd.OutOrStdout())
}

// flagOverrides turns explicitly set flags into config options so they win
// over environment values.
func flagOverrides(cmd *cobra.Command, opts importOptions) []config.Option {
	var overrides []config.Option

	if cmd.Flags().Changed("file") {
		overrides = append(overrides, func(c *config.Config) { c.Import.File = opts.file })
	}
	if cmd.Flags().Changed("apply") {
		overrides = append(overrides, func(c *config.Config) { c.Import.DryRun = !opts.apply })
	}
	if cmd.Flags().Changed("backend") {
		overrides = append(overrides, func(c *config.Config) { c.Store.Backend = opts.backend })
	}
	if cmd.Flags().Changed("sql-out") {
		overrides = append(overrides, func(c *config.Config) { c.Store.SQLOut = opts.sqlOut })
	}

	return overrides
}

func execute(ctx context.Context, cfg *config.Config, out io.Writer) error {
	svc, err := importer.NewService(cfg, nil, out)
	if err != nil {
		return err
	}

	if _, err := svc.Run(ctx); err != nil {
		return fmt.Errorf("import aborted: %w", err)
	}
	return nil
}
