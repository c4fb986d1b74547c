package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/okorolenko/bookcat/internal/api"
	"github.com/okorolenko/bookcat/internal/catalog"
	"github.com/okorolenko/bookcat/internal/config"
	"github.com/okorolenko/bookcat/internal/database"
	"github.com/okorolenko/bookcat/internal/export"
	collyfetcher "github.com/okorolenko/bookcat/internal/fetcher/colly"
	"github.com/okorolenko/bookcat/internal/fetcher/headless"
	"github.com/okorolenko/bookcat/internal/logging"
	"github.com/okorolenko/bookcat/internal/metrics"
	"github.com/okorolenko/bookcat/internal/publisher"
	pubsubpublisher "github.com/okorolenko/bookcat/internal/publisher/pubsub"
	"github.com/okorolenko/bookcat/internal/storage"
	gcsstore "github.com/okorolenko/bookcat/internal/storage/gcs"
	localstore "github.com/okorolenko/bookcat/internal/storage/local"
	memorystore "github.com/okorolenko/bookcat/internal/storage/memory"
)

func newHarvestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "harvest",
		Short: "Crawl the configured catalog sources and export the tables",
		Long: `Runs the full pipeline: concurrent page-range workers fetch and
parse every configured source, the aggregate is finalized and exported
as CSV tables, and optionally loaded into Postgres.`,
		RunE: runHarvest,
	}
}

func runHarvest(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("no sources configured")
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := buildStore(ctx, cfg.Export)
	if err != nil {
		return err
	}
	defer closeStore()

	exporter, err := export.New(store, export.Config{Encoding: cfg.Export.Encoding}, logger)
	if err != nil {
		return err
	}

	events, closeEvents, err := buildPublisher(ctx, cfg.Publish)
	if err != nil {
		return err
	}
	defer closeEvents()

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Crawler.UserAgent,
		Headers:   cfg.Crawler.Headers,
		Timeout:   cfg.Crawler.Timeout,
		RPS:       cfg.Crawler.RPS,
		Burst:     cfg.Crawler.Burst,
	}, logger)

	var renderer catalog.Fetcher
	if cfg.Headless.Enabled {
		chrome, err := headless.New(headless.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.Crawler.UserAgent,
			Headers:           cfg.Crawler.Headers,
			NavigationTimeout: cfg.Headless.NavTimeout,
		})
		if err != nil {
			return fmt.Errorf("init headless fetcher: %w", err)
		}
		defer chrome.Close()
		renderer = chrome
	}

	agg := catalog.NewAggregate()
	sched := catalog.NewScheduler(fetcher, renderer, agg, catalog.SchedulerConfig{
		ProcessPages:       cfg.Crawler.ProcessPages,
		MaxWorkers:         cfg.Crawler.MaxWorkers,
		StrictMissingPages: cfg.Crawler.StrictMissingPages,
	}, logger)

	runID := uuid.NewString()
	startedAt := time.Now().UTC()

	if cfg.Server.Enabled {
		startStatusServer(cfg, runID, startedAt, sched, agg, logger)
	}

	logger.Info("harvest starting",
		zap.String("run_id", runID),
		zap.Int("sources", len(cfg.Sources)),
		zap.Bool("strict_missing_pages", cfg.Crawler.StrictMissingPages),
	)

	for _, src := range cfg.Sources {
		err := sched.Start(ctx, catalog.Source{
			URL:       src.URL,
			StartPage: src.StartPage,
			EndPage:   src.EndPage,
		})
		if err != nil {
			return err
		}
	}
	if err := sched.Join(); err != nil {
		return fmt.Errorf("harvest failed: %w", err)
	}

	agg.Finalize()
	snap := agg.Snapshot()

	batch, err := exporter.Export(ctx, runID, snap)
	if err != nil {
		return fmt.Errorf("export run %s: %w", runID, err)
	}

	if cfg.Database.DSN != "" {
		loader, err := database.New(ctx, database.Config{
			DSN:      cfg.Database.DSN,
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			return err
		}
		defer loader.Close()
		if err := loader.Load(ctx, snap); err != nil {
			return fmt.Errorf("load run %s into postgres: %w", runID, err)
		}
	}

	pages, accepted, rejected, _ := sched.Progress()
	summary := map[string]any{
		"run_id":           runID,
		"sources":          sourceURLs(cfg.Sources),
		"pages_fetched":    pages,
		"records_accepted": accepted,
		"records_rejected": rejected,
		"books":            len(snap.Books),
		"authors":          len(snap.Authors),
		"batch_dir":        batch.Dir,
		"duration":         time.Since(startedAt).String(),
	}
	if _, err := events.Publish(ctx, cfg.Publish.Topic, summary); err != nil {
		logger.Warn("run event publish failed", zap.Error(err))
	}

	logger.Info("harvest complete",
		zap.String("run_id", runID),
		zap.Int64("pages_fetched", pages),
		zap.Int64("records_accepted", accepted),
		zap.Int64("records_rejected", rejected),
		zap.Int("books", len(snap.Books)),
		zap.Int("authors", len(snap.Authors)),
		zap.String("batch_dir", batch.Dir),
		zap.Duration("duration", time.Since(startedAt)),
	)
	return nil
}

func buildStore(ctx context.Context, cfg config.ExportConfig) (storage.Provider, func(), error) {
	switch cfg.Provider {
	case "local":
		store, err := localstore.New(localstore.Config{BaseDir: cfg.Dir})
		if err != nil {
			return nil, nil, fmt.Errorf("init local store: %w", err)
		}
		return store, func() {}, nil
	case "memory":
		return memorystore.New(), func() {}, nil
	case "gcs":
		store, err := gcsstore.New(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, nil, fmt.Errorf("init gcs store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown export provider: %s", cfg.Provider)
	}
}

func buildPublisher(ctx context.Context, cfg config.PublishConfig) (publisher.Publisher, func(), error) {
	switch cfg.Provider {
	case "pubsub":
		pub, err := pubsubpublisher.New(ctx, cfg.ProjectID, cfg.Topic)
		if err != nil {
			return nil, nil, fmt.Errorf("init pubsub publisher: %w", err)
		}
		return pub, func() { _ = pub.Close() }, nil
	default:
		return publisher.Noop{}, func() {}, nil
	}
}

func startStatusServer(
	cfg config.Config,
	runID string,
	startedAt time.Time,
	sched *catalog.Scheduler,
	agg *catalog.Aggregate,
	logger *zap.Logger,
) {
	status := func() api.Status {
		pages, accepted, rejected, active := sched.Progress()
		books, authors, _, _, _, _ := agg.Counts()
		return api.Status{
			RunID:           runID,
			Sources:         sourceURLs(cfg.Sources),
			PagesFetched:    pages,
			RecordsAccepted: accepted,
			RecordsRejected: rejected,
			Books:           books,
			Authors:         authors,
			ActiveWorkers:   active,
			StartedAt:       startedAt,
		}
	}
	server := api.NewServer(status, logger)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("status server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, server.Handler()); err != nil {
			logger.Error("status server failed", zap.Error(err))
		}
	}()
}

func sourceURLs(sources []config.SourceConfig) []string {
	urls := make([]string, 0, len(sources))
	for _, src := range sources {
		urls = append(urls, src.URL)
	}
	return urls
}
