package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pfrederiksen/eventbrite-events/internal/event"
	"github.com/pfrederiksen/eventbrite-events/internal/scraper"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains a saved events file to be printed
type OutputResult struct {
	File       string          `json:"file"`
	EventCount int             `json:"event_count"`
	Events     []*event.Record `json:"events"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.EventCount == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	for i, evt := range result.Events {
		title := evt.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "%d. %s\n", i+1, title)
		if evt.Date != "" {
			fmt.Fprintf(w, "   Date: %s\n", evt.Date)
		}
		if evt.Location != "" {
			fmt.Fprintf(w, "   Location: %s\n", evt.Location)
		}
		if evt.Organizer != "" {
			fmt.Fprintf(w, "   Organizer: %s\n", evt.Organizer)
		}
		fmt.Fprintf(w, "   URL: %s\n", evt.URL)
		if verbose {
			fmt.Fprintf(w, "   ID: %s\n", evt.ID())
			fmt.Fprintf(w, "   Scraped: %s\n", evt.ScrapedAt.Format("2006-01-02 15:04:05 MST"))
			if evt.Description != "" {
				fmt.Fprintf(w, "   Description: %s\n", evt.Description)
			}
		}
	}
	fmt.Fprintf(w, "\nTotal: %d events\n", result.EventCount)

	return nil
}

// WriteSearchSummary prints how a search went, including every failed detail fetch
func WriteSearchSummary(w io.Writer, result *scraper.SearchResult) {
	if result.Failed() {
		fmt.Fprintf(w, "Search failed: %v\n", result.Err)
		return
	}

	fmt.Fprintf(w, "Page %d: %d cards, %d fetched, %d failed, %d skipped\n",
		result.Page,
		result.Attempted+result.Skipped,
		len(result.Events),
		len(result.Failures),
		result.Skipped,
	)
	for _, f := range result.Failures {
		fmt.Fprintf(w, "  FAILED: %s: %v\n", f.URL, f.Err)
	}
}
