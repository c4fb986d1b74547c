package catalog

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/okorolenko/bookcat/internal/metrics"
)

// SchedulerConfig controls page-range partitioning and worker fan-out.
type SchedulerConfig struct {
	// ProcessPages is the chunk size knob: each worker owns a contiguous
	// range of ProcessPages+1 pages.
	ProcessPages int
	// MaxWorkers bounds the number of concurrently running workers
	// across all sources. Zero means unbounded, matching the historic
	// behavior of one thread per chunk.
	MaxWorkers int
	// StrictMissingPages turns a 403/404 into a fatal error instead of
	// a silent range truncation.
	StrictMissingPages bool
}

// Scheduler partitions each source's page span into contiguous chunks
// and runs one PageRangeWorker per chunk. Start may be called once per
// source; Join waits for every worker launched so far.
type Scheduler struct {
	fetcher  Fetcher
	renderer Fetcher
	agg      *Aggregate
	cfg      SchedulerConfig
	logger   *zap.Logger

	group        *errgroup.Group
	pagesFetched atomic.Int64
	accepted     atomic.Int64
	rejected     atomic.Int64
	active       atomic.Int64
}

// NewScheduler builds a Scheduler. renderer may be nil; when set it is
// used as a one-shot headless fallback for pages whose static markup
// contains no product cards.
func NewScheduler(fetcher Fetcher, renderer Fetcher, agg *Aggregate, cfg SchedulerConfig, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProcessPages < 0 {
		cfg.ProcessPages = 0
	}
	group := new(errgroup.Group)
	if cfg.MaxWorkers > 0 {
		group.SetLimit(cfg.MaxWorkers)
	}
	return &Scheduler{
		fetcher:  fetcher,
		renderer: renderer,
		agg:      agg,
		cfg:      cfg,
		logger:   logger,
		group:    group,
	}
}

type pageRange struct {
	start int
	end   int
}

// chunkRanges partitions [start, end] into contiguous non-overlapping
// chunks of processPages+1 pages; the final chunk is clamped so no page
// is skipped or counted twice.
func chunkRanges(start, end, processPages int) []pageRange {
	step := processPages + 1
	var chunks []pageRange
	for cur := start; cur <= end; cur += step {
		chunkEnd := cur + processPages
		if chunkEnd > end {
			chunkEnd = end
		}
		chunks = append(chunks, pageRange{start: cur, end: chunkEnd})
	}
	return chunks
}

// Start validates the source's page span and launches its workers. It
// returns ErrInvalidRange before any work begins when the span is
// malformed.
func (s *Scheduler) Start(ctx context.Context, src Source) error {
	if src.StartPage > src.EndPage || src.StartPage < 0 || src.EndPage < 0 {
		return fmt.Errorf("%w: source %s pages [%d, %d]", ErrInvalidRange, src.URL, src.StartPage, src.EndPage)
	}

	chunks := chunkRanges(src.StartPage, src.EndPage, s.cfg.ProcessPages)
	s.logger.Info("scheduling source",
		zap.String("url", src.URL),
		zap.Int("start_page", src.StartPage),
		zap.Int("end_page", src.EndPage),
		zap.Int("workers", len(chunks)),
	)
	for _, chunk := range chunks {
		s.group.Go(func() error {
			s.active.Add(1)
			metrics.IncActiveWorkers()
			defer func() {
				s.active.Add(-1)
				metrics.DecActiveWorkers()
			}()
			return s.runRange(ctx, src, chunk)
		})
	}
	return nil
}

// Join blocks until every launched worker finishes. The only error it
// can return is a strict-mode ErrPageUnavailable.
func (s *Scheduler) Join() error {
	return s.group.Wait()
}

// Progress reports live worker counters.
func (s *Scheduler) Progress() (pagesFetched, accepted, rejected, active int64) {
	return s.pagesFetched.Load(), s.accepted.Load(), s.rejected.Load(), s.active.Load()
}

// runRange is the page-range worker loop: a linear cursor over the
// chunk, fetching, parsing, validating and aggregating each page. Any
// missing page or transport failure ends the range early; in the
// default mode that truncation is invisible to the caller.
func (s *Scheduler) runRange(ctx context.Context, src Source, chunk pageRange) error {
	for page := chunk.start; page <= chunk.end; page++ {
		outcome, err := s.fetcher.FetchPage(ctx, src.URL, page)
		if err != nil {
			metrics.ObservePage(src.URL, "error")
			s.logger.Warn("page fetch failed, truncating range",
				zap.String("url", src.URL), zap.Int("page", page), zap.Error(err))
			return nil
		}

		switch outcome.Status {
		case PageMissing:
			metrics.ObservePage(src.URL, "missing")
			if s.cfg.StrictMissingPages {
				return fmt.Errorf("%w: %s page %d (status %d)", ErrPageUnavailable, src.URL, page, outcome.StatusCode)
			}
			s.logger.Debug("page missing, truncating range",
				zap.String("url", src.URL), zap.Int("page", page), zap.Int("status", outcome.StatusCode))
			return nil
		case PageFailed:
			metrics.ObservePage(src.URL, "error")
			s.logger.Warn("transport failure, truncating range",
				zap.String("url", src.URL), zap.Int("page", page))
			return nil
		}

		s.pagesFetched.Add(1)
		metrics.ObservePage(src.URL, "ok")
		s.processPage(ctx, src, page, outcome.Body)
	}
	return nil
}

func (s *Scheduler) processPage(ctx context.Context, src Source, page int, body []byte) {
	if s.renderer != nil && NeedsRender(body) {
		rendered, err := s.renderer.FetchPage(ctx, src.URL, page)
		if err == nil && rendered.Status == PageOK {
			metrics.ObservePage(src.URL, "rendered")
			body = rendered.Body
		} else {
			s.logger.Warn("headless render failed, using static body",
				zap.String("url", src.URL), zap.Int("page", page), zap.Error(err))
		}
	}

	records, err := ParsePage(body)
	if err != nil {
		s.logger.Warn("unparseable page skipped",
			zap.String("url", src.URL), zap.Int("page", page), zap.Error(err))
		return
	}

	for _, rec := range records {
		book, ok := ValidateRecord(rec)
		if !ok {
			s.rejected.Add(1)
			metrics.ObserveRecord("rejected")
			continue
		}
		mentions, extraRoles := NormalizeAuthors(rec.RawAuthors)
		s.agg.Record(book, mentions, extraRoles)
		s.accepted.Add(1)
		metrics.ObserveRecord("accepted")
	}
}
