// Package config defines the scraper configuration and how it is loaded.
//
// Values are layered, lowest precedence first: the defaults from New, an
// optional YAML file, then EVENTBRITE_* environment variables. The CLI applies
// explicitly set flags on top of the loaded result.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pfrederiksen/eventbrite-events/internal/logger"
	"github.com/pfrederiksen/eventbrite-events/internal/scraper"
	"github.com/pfrederiksen/eventbrite-events/internal/storage"
)

const (
	DefaultQuery    = "LGBTQ+ community events"
	DefaultLocation = "London, UK"
)

// Config contains the settings for one scraper run.
type Config struct {
	// BaseURL is the site that is searched and that relative card links resolve against.
	BaseURL string `koanf:"base_url"`

	UserAgent string `koanf:"user_agent"`

	// Query, Location and Page describe the single search that is run.
	Query    string `koanf:"query"`
	Location string `koanf:"location"`
	Page     int    `koanf:"page"`

	// Output is the JSON file the results are written to.
	Output string `koanf:"output"`

	// Delay is the pause after each detail page fetch.
	Delay time.Duration `koanf:"delay"`

	// Timeout bounds every HTTP request. Zero means no timeout.
	Timeout time.Duration `koanf:"timeout"`

	// StructuredData back-fills empty fields from the page's JSON-LD.
	StructuredData bool `koanf:"structured_data"`

	// MetricsFile, when set, receives the run's metrics in Prometheus text format.
	MetricsFile string `koanf:"metrics_file"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	Selectors scraper.Selectors `koanf:"selectors"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		BaseURL:   scraper.BaseURL,
		UserAgent: scraper.UserAgent,
		Query:     DefaultQuery,
		Location:  DefaultLocation,
		Page:      1,
		Output:    storage.DefaultFilename,
		Delay:     scraper.Delay,
		Timeout:   scraper.Timeout,
		LogLevel:  "info",
		LogFormat: string(logger.FormatJSON),
		Selectors: scraper.DefaultSelectors(),
	}
}

// Validate checks the configuration for values the scraper cannot run with.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: base_url must be an absolute URL, got %q", ErrInvalidConfig, c.BaseURL)
	}
	if c.Page < 1 {
		return fmt.Errorf("%w: page must be at least 1, got %d", ErrInvalidConfig, c.Page)
	}
	if c.Delay < 0 {
		return fmt.Errorf("%w: delay must not be negative", ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("%w: output must not be empty", ErrInvalidConfig)
	}
	switch logger.Format(c.LogFormat) {
	case logger.FormatJSON, logger.FormatText:
	default:
		return fmt.Errorf("%w: log_format must be json or text, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if err := c.Selectors.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ScraperOptions converts the configuration into scraper options.
func (c *Config) ScraperOptions() []scraper.Option {
	return []scraper.Option{
		scraper.WithBaseURL(c.BaseURL),
		scraper.WithUserAgent(c.UserAgent),
		scraper.WithSelectors(c.Selectors),
		scraper.WithTimeout(c.Timeout),
		scraper.WithDelay(c.Delay),
		scraper.WithStructuredData(c.StructuredData),
	}
}
