package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "eventbrite"
	subsystem = "scraper"
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Fetch kinds
const (
	KindSearch = "search"
	KindDetail = "detail"
)

// Collector tracks the metrics of one scraper run. A nil *Collector is valid
// and records nothing.
type Collector struct {
	registry *prometheus.Registry

	searchRequests *prometheus.CounterVec
	detailFetches  *prometheus.CounterVec
	cardsSkipped   prometheus.Counter
	fetchDuration  *prometheus.HistogramVec
	lastRun        prometheus.Gauge
}

// New creates a Collector backed by its own registry
func New() *Collector {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &Collector{
		registry: reg,
		searchRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "search_requests_total",
			Help:      "Search page requests by outcome",
		}, []string{"outcome"}),
		detailFetches: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "detail_fetches_total",
			Help:      "Event detail page fetches by outcome",
		}, []string{"outcome"}),
		cardsSkipped: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cards_skipped_total",
			Help:      "Event cards without a resolvable link",
		}),
		fetchDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of page fetches including parsing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		lastRun: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the metrics were last written",
		}),
	}
}

// Registry exposes the underlying registry, mainly for tests
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// SearchRequest counts one search request
func (c *Collector) SearchRequest(outcome string) {
	if c == nil {
		return
	}
	c.searchRequests.WithLabelValues(outcome).Inc()
}

// DetailFetch counts one detail page fetch
func (c *Collector) DetailFetch(outcome string) {
	if c == nil {
		return
	}
	c.detailFetches.WithLabelValues(outcome).Inc()
}

// CardSkipped counts one event card whose link could not be resolved
func (c *Collector) CardSkipped() {
	if c == nil {
		return
	}
	c.cardsSkipped.Inc()
}

// ObserveFetch records how long a fetch of the given kind took
func (c *Collector) ObserveFetch(kind string, d time.Duration) {
	if c == nil {
		return
	}
	c.fetchDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// WriteTextfile writes all metrics to path in the Prometheus text format
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return fmt.Errorf("metrics collector not configured")
	}
	c.lastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
