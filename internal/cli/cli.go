package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/eventbrite-events/internal/config"
	"github.com/pfrederiksen/eventbrite-events/internal/logger"
	"github.com/pfrederiksen/eventbrite-events/internal/metrics"
	"github.com/pfrederiksen/eventbrite-events/internal/scraper"
	"github.com/pfrederiksen/eventbrite-events/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig         string
	flagBaseURL        string
	flagQuery          string
	flagLocation       string
	flagPage           int
	flagOutput         string
	flagDelay          time.Duration
	flagTimeout        time.Duration
	flagStructuredData bool
	flagMetricsFile    string
	flagLogLevel       string
	flagLogFormat      string
	flagVerbose        bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eventbrite-events",
		Short: "Scrape Eventbrite search results into a JSON file",
		Long: `A CLI tool that runs one Eventbrite search, follows each result to its
event page and saves title, description, date, location and organizer to JSON.`,
		Args:          cobra.NoArgs,
		RunE:          runSearch,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaults := config.New()

	// Define flags
	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file (defaults to $EVENTBRITE_CONFIG)")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", defaults.LogLevel, "Log level: debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", defaults.LogFormat, "Log format: json or text")

	cmd.Flags().StringVar(&flagBaseURL, "base-url", defaults.BaseURL, "Site to search")
	cmd.Flags().StringVar(&flagQuery, "query", defaults.Query, "Search query")
	cmd.Flags().StringVar(&flagLocation, "location", defaults.Location, "Location filter (empty for none)")
	cmd.Flags().IntVar(&flagPage, "page", defaults.Page, "Results page to scrape (1-based)")
	cmd.Flags().StringVar(&flagOutput, "output", defaults.Output, "File to write events to")
	cmd.Flags().DurationVar(&flagDelay, "delay", defaults.Delay, "Pause after each event page fetch")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", defaults.Timeout, "HTTP request timeout (0 for none)")
	cmd.Flags().BoolVar(&flagStructuredData, "structured-data", defaults.StructuredData, "Fill empty fields from the page's JSON-LD")
	cmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Print a per-run summary to stderr")

	cmd.AddCommand(newShowCmd())

	return cmd
}

// loadConfig layers explicitly set flags over the loaded configuration
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = flagBaseURL
	}
	if flags.Changed("query") {
		cfg.Query = flagQuery
	}
	if flags.Changed("location") {
		cfg.Location = flagLocation
	}
	if flags.Changed("page") {
		cfg.Page = flagPage
	}
	if flags.Changed("output") {
		cfg.Output = flagOutput
	}
	if flags.Changed("delay") {
		cfg.Delay = flagDelay
	}
	if flags.Changed("timeout") {
		cfg.Timeout = flagTimeout
	}
	if flags.Changed("structured-data") {
		cfg.StructuredData = flagStructuredData
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = flagMetricsFile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the run logger on stderr and makes it the default
func newLogger(cmd *cobra.Command, cfg *config.Config) *logger.Logger {
	log := logger.New(logger.ParseLevel(cfg.LogLevel), cmd.ErrOrStderr(), logger.Format(cfg.LogFormat)).
		With(logger.Fields{"run_id": logger.NewRunID()})
	logger.SetDefault(log)
	return log
}

// runSearch is the main command logic
func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := newLogger(cmd, cfg)
	collector := metrics.New()

	opts := append(cfg.ScraperOptions(), scraper.WithMetrics(collector), scraper.WithLogger(log))
	sc := scraper.New(opts...)

	out := cmd.OutOrStdout()
	if cfg.Location != "" {
		fmt.Fprintf(out, "Searching for events matching: %s in %s\n", cfg.Query, cfg.Location)
	} else {
		fmt.Fprintf(out, "Searching for events matching: %s\n", cfg.Query)
	}

	result := sc.SearchEvents(cfg.Query, cfg.Location, cfg.Page)

	if len(result.Events) > 0 {
		fmt.Fprintf(out, "Found %d events\n", len(result.Events))
		if err := storage.SaveEvents(result.Events, cfg.Output); err != nil {
			return fmt.Errorf("saving events: %w", err)
		}
		fmt.Fprintf(out, "Events saved to %s\n", cfg.Output)
	} else {
		fmt.Fprintln(out, "No events found")
	}

	if flagVerbose {
		WriteSearchSummary(cmd.ErrOrStderr(), result)
	}

	if cfg.MetricsFile != "" {
		if err := collector.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error("metrics not written", logger.Fields{"path": cfg.MetricsFile}, err)
		}
	}

	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
