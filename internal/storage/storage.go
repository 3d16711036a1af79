package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/eventbrite-events/internal/event"
)

// DefaultFilename is where the CLI writes results unless told otherwise
const DefaultFilename = "eventbrite_events.json"

// SaveEvents writes events to filename as an indented JSON array, replacing
// any existing file. A nil or empty slice is written as [].
func SaveEvents(events []*event.Record, filename string) error {
	path, err := expandPath(filename)
	if err != nil {
		return err
	}

	data, err := encodeEvents(events)
	if err != nil {
		return fmt.Errorf("encoding events: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}

	return nil
}

// LoadEvents reads a file written by SaveEvents
func LoadEvents(filename string) ([]*event.Record, error) {
	path, err := expandPath(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}

	var events []*event.Record
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parsing events: %w", err)
	}

	if events == nil {
		events = make([]*event.Record, 0)
	}
	return events, nil
}

// encodeEvents marshals with two-space indentation and without HTML escaping
func encodeEvents(events []*event.Record) ([]byte, error) {
	if events == nil {
		events = make([]*event.Record, 0)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(events); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// expandPath expands a leading ~/ to the home directory
func expandPath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required")
	}
	if strings.HasPrefix(filename, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, filename[2:]), nil
	}
	return filename, nil
}
