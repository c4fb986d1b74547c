package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/okorolenko/bookcat/internal/config"
	"github.com/okorolenko/bookcat/internal/database"
	"github.com/okorolenko/bookcat/internal/export"
	"github.com/okorolenko/bookcat/internal/logging"
)

func newLoadCmd() *cobra.Command {
	var batchDir string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load an exported batch of CSV tables into Postgres",
		Long: `Reads the table files of a previous harvest run from a batch
directory and inserts them into the configured Postgres database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd, batchDir)
		},
	}
	cmd.Flags().StringVar(&batchDir, "batch", "", "batch directory of a previous harvest run")
	_ = cmd.MarkFlagRequired("batch")
	return cmd
}

func runLoad(cmd *cobra.Command, batchDir string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is not configured")
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()

	snap, err := export.ReadBatch(batchDir, cfg.Export.Encoding)
	if err != nil {
		return fmt.Errorf("read batch %s: %w", batchDir, err)
	}

	loader, err := database.New(ctx, database.Config{
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		return err
	}
	defer loader.Close()

	if err := loader.Load(ctx, snap); err != nil {
		return fmt.Errorf("load batch %s: %w", batchDir, err)
	}

	logger.Info("batch loaded",
		zap.String("batch_dir", batchDir),
		zap.Int("books", len(snap.Books)),
		zap.Int("authors", len(snap.Authors)),
		zap.Int("contributions", len(snap.Contributions)),
	)
	return nil
}
