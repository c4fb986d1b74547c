// Package collyfetcher implements the catalog page fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/okorolenko/bookcat/internal/catalog"
	"github.com/okorolenko/bookcat/internal/ratelimit"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	// Headers are sent with every page request (the caller-supplied
	// header map of the catalog sources).
	Headers map[string]string
	Timeout time.Duration
	// RPS paces requests per catalog host across all workers. Zero
	// disables pacing.
	RPS   float64
	Burst int
}

// Fetcher requests one catalog page at a time via a cloned Colly
// collector per call.
type Fetcher struct {
	cfg     Config
	base    *colly.Collector
	limiter *ratelimit.Limiter
	logger  *zap.Logger
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.AllowURLRevisit = true
	c.WithTransport(newHTTPTransport())

	var limiter *ratelimit.Limiter
	if cfg.RPS > 0 {
		limiter = ratelimit.New(ratelimit.Config{RPS: cfg.RPS, Burst: cfg.Burst})
	}

	return &Fetcher{
		cfg:     cfg,
		base:    c,
		limiter: limiter,
		logger:  logger,
	}
}

// FetchPage requests {baseURL}?page={page} and maps the result to a
// PageOutcome: 403/404 become PageMissing, transport-level failures
// become PageFailed. The returned error is reserved for requests that
// could not be issued at all.
func (f *Fetcher) FetchPage(ctx context.Context, baseURL string, page int) (catalog.PageOutcome, error) {
	target := fmt.Sprintf("%s?page=%d", baseURL, page)

	if err := f.limiter.Wait(ctx, target); err != nil {
		return catalog.PageOutcome{}, err
	}

	collector := f.base.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	outcome := catalog.PageOutcome{Status: catalog.PageFailed}
	handled := false

	collector.OnRequest(func(r *colly.Request) {
		for key, value := range f.cfg.Headers {
			r.Headers.Set(key, value)
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		handled = true
		outcome = catalog.PageOutcome{
			Status:     catalog.PageOK,
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
		}
	})

	// Colly reports non-2xx statuses and transport failures through
	// OnError and also returns them from Visit; once this callback has
	// classified the outcome the Visit error is not surfaced again.
	collector.OnError(func(r *colly.Response, err error) {
		handled = true
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		switch status {
		case http.StatusForbidden, http.StatusNotFound:
			outcome = catalog.PageOutcome{Status: catalog.PageMissing, StatusCode: status}
		default:
			outcome = catalog.PageOutcome{Status: catalog.PageFailed, StatusCode: status}
			f.logger.Debug("page request failed",
				zap.String("url", target), zap.Int("status", status), zap.Error(err))
		}
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(target)
	}()

	select {
	case <-ctx.Done():
		return catalog.PageOutcome{}, fmt.Errorf("page fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil && !handled {
			return catalog.PageOutcome{}, fmt.Errorf("visit %s: %w", target, err)
		}
	}
	collector.Wait()
	return outcome, nil
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
