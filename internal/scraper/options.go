package scraper

import (
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pfrederiksen/eventbrite-events/internal/logger"
	"github.com/pfrederiksen/eventbrite-events/internal/metrics"
)

// Option configures a Scraper
type Option func(*Scraper)

// WithBaseURL sets the site address that search requests and relative card
// links are resolved against.
func WithBaseURL(baseURL string) Option {
	return func(s *Scraper) {
		if baseURL != "" {
			s.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithSelectors replaces the selector table. Empty entries keep their default.
func WithSelectors(sel Selectors) Option {
	return func(s *Scraper) {
		s.selectors = sel.WithDefaults()
	}
}

// WithHTTPClient sets the HTTP client used for all requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) {
		if c != nil {
			s.client = c
		}
	}
}

// WithTimeout sets the HTTP client timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d >= 0 {
			s.client.Timeout = d
		}
	}
}

// WithDelay sets a constant pause between detail page fetches.
func WithDelay(d time.Duration) Option {
	return func(s *Scraper) {
		if d < 0 {
			d = 0
		}
		s.pacer = backoff.NewConstantBackOff(d)
	}
}

// WithPacer sets the schedule consulted after every detail page fetch. A
// returned backoff.Stop means no pause.
func WithPacer(p backoff.BackOff) Option {
	return func(s *Scraper) {
		if p != nil {
			s.pacer = p
		}
	}
}

// WithStructuredData enables back-filling empty fields from the page's
// JSON-LD event description.
func WithStructuredData(enabled bool) Option {
	return func(s *Scraper) {
		s.structuredData = enabled
	}
}

// WithMetrics records fetch counts and durations on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Scraper) {
		s.metrics = c
	}
}

// WithLogger sets the logger used for failures and progress.
func WithLogger(l *logger.Logger) Option {
	return func(s *Scraper) {
		if l != nil {
			s.log = l
		}
	}
}
