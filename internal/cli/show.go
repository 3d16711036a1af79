package cli

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/eventbrite-events/internal/config"
	"github.com/pfrederiksen/eventbrite-events/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagShowFormat  string
	flagShowVerbose bool
)

// newShowCmd creates the show subcommand
func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Print events from a saved JSON file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShow,
	}

	cmd.Flags().StringVar(&flagShowFormat, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&flagShowVerbose, "verbose", false, "Include IDs, scrape times and descriptions")

	return cmd
}

// runShow prints the file named on the command line, or the configured output file
func runShow(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagShowFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagShowFormat)
	}

	file := ""
	if len(args) == 1 {
		file = args[0]
	} else {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		file = cfg.Output
	}

	events, err := storage.LoadEvents(file)
	if err != nil {
		return err
	}

	result := &OutputResult{
		File:       file,
		EventCount: len(events),
		Events:     events,
	}
	return WriteOutput(cmd.OutOrStdout(), result, format, flagShowVerbose)
}
