// Package metrics exposes Prometheus collectors for the harvester.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	harvestPagesTotal   *prometheus.CounterVec
	harvestRecordsTotal *prometheus.CounterVec
	harvestBooksTotal   prometheus.Counter
	activeWorkers       prometheus.Gauge

	once sync.Once
)

// Init registers the collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		harvestPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookcat_pages_total",
				Help: "Catalog pages fetched, labeled by source host and outcome.",
			},
			[]string{"source", "outcome"},
		)

		harvestRecordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookcat_records_total",
				Help: "Product records processed, labeled by validation result.",
			},
			[]string{"result"},
		)

		harvestBooksTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bookcat_books_total",
				Help: "Accepted book records, including duplicates of already-seen books.",
			},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bookcat_active_workers",
				Help: "Page-range workers currently running.",
			},
		)
	})
}

// SanitizeSource reduces a source URL to its lowercase hostname for use
// as a label value. Invalid URLs collapse to "unknown".
func SanitizeSource(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage counts one page fetch attempt with its outcome.
func ObservePage(source, outcome string) {
	if harvestPagesTotal == nil {
		return
	}
	harvestPagesTotal.WithLabelValues(SanitizeSource(source), outcome).Inc()
}

// ObserveRecord counts one processed record ("accepted" or "rejected").
func ObserveRecord(result string) {
	if harvestRecordsTotal == nil {
		return
	}
	harvestRecordsTotal.WithLabelValues(result).Inc()
	if result == "accepted" && harvestBooksTotal != nil {
		harvestBooksTotal.Inc()
	}
}

// IncActiveWorkers increments the active worker gauge.
func IncActiveWorkers() {
	if activeWorkers != nil {
		activeWorkers.Inc()
	}
}

// DecActiveWorkers decrements the active worker gauge.
func DecActiveWorkers() {
	if activeWorkers != nil {
		activeWorkers.Dec()
	}
}
