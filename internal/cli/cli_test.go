package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pfrederiksen/eventbrite-events/internal/event"
	"github.com/pfrederiksen/eventbrite-events/internal/scraper"
	"github.com/pfrederiksen/eventbrite-events/internal/storage"
)

// fakeEventbrite serves a search page with the given detail paths as cards
type fakeEventbrite struct {
	mu           sync.Mutex
	searchStatus int
	cards        []string
	queries      []string
}

func (f *fakeEventbrite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/search" {
		f.mu.Lock()
		f.queries = append(f.queries, r.URL.RawQuery)
		f.mu.Unlock()

		if f.searchStatus != 0 {
			w.WriteHeader(f.searchStatus)
			return
		}
		var b strings.Builder
		for _, c := range f.cards {
			fmt.Fprintf(&b, `<div data-testid="event-card"><a href="%s">card</a></div>`, c)
		}
		w.Write([]byte(b.String()))
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/e/")
	fmt.Fprintf(w, `<h1>Event %s</h1><div data-testid="event-location">Venue %s</div>`, name, name)
}

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("EVENTBRITE_CONFIG", "")

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunSearch_EndToEnd(t *testing.T) {
	site := &fakeEventbrite{cards: []string{"/e/1", "/e/2", "/e/3"}}
	server := httptest.NewServer(site)
	defer server.Close()

	output := filepath.Join(t.TempDir(), "events.json")
	stdout, _, err := runCmd(t,
		"--base-url", server.URL,
		"--delay", "0s",
		"--output", output,
		"--log-level", "error",
	)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	wantOut := fmt.Sprintf("Searching for events matching: LGBTQ+ community events in London, UK\nFound 3 events\nEvents saved to %s\n", output)
	if stdout != wantOut {
		t.Errorf("stdout = %q, want %q", stdout, wantOut)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	var saved []*event.Record
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("output is not a JSON array of events: %v", err)
	}
	if len(saved) != 3 {
		t.Fatalf("saved %d events, want 3", len(saved))
	}
	for i, rec := range saved {
		wantTitle := fmt.Sprintf("Event %d", i+1)
		if rec.Title != wantTitle {
			t.Errorf("event %d title = %q, want %q", i, rec.Title, wantTitle)
		}
		if rec.URL != fmt.Sprintf("%s/e/%d", server.URL, i+1) {
			t.Errorf("event %d url = %q", i, rec.URL)
		}
		if i > 0 && rec.ScrapedAt.Before(saved[i-1].ScrapedAt) {
			t.Errorf("event %d scraped_at %v is before previous %v", i, rec.ScrapedAt, saved[i-1].ScrapedAt)
		}
	}

	if len(site.queries) != 1 {
		t.Fatalf("got %d search requests, want 1", len(site.queries))
	}
	if !strings.Contains(site.queries[0], "location=London%2C+UK") {
		t.Errorf("search query = %q, want location parameter", site.queries[0])
	}
}

func TestRunSearch_SearchFailure(t *testing.T) {
	site := &fakeEventbrite{searchStatus: http.StatusInternalServerError}
	server := httptest.NewServer(site)
	defer server.Close()

	output := filepath.Join(t.TempDir(), "events.json")
	stdout, stderr, err := runCmd(t,
		"--base-url", server.URL,
		"--delay", "0s",
		"--output", output,
	)
	if err != nil {
		t.Fatalf("Execute() should not fail when the search fails, got %v", err)
	}

	if !strings.HasSuffix(stdout, "No events found\n") {
		t.Errorf("stdout = %q, want 'No events found'", stdout)
	}
	if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output file should not be written, stat err = %v", err)
	}
	if !strings.Contains(stderr, "Error searching events") {
		t.Errorf("stderr should carry the failure log line, got %q", stderr)
	}
}

func TestRunSearch_NoLocation(t *testing.T) {
	site := &fakeEventbrite{}
	server := httptest.NewServer(site)
	defer server.Close()

	stdout, _, err := runCmd(t,
		"--base-url", server.URL,
		"--query", "drag bingo",
		"--location", "",
		"--page", "3",
		"--output", filepath.Join(t.TempDir(), "events.json"),
		"--log-level", "error",
	)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if want := "Searching for events matching: drag bingo\nNo events found\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
	if want := "page=3&q=drag+bingo"; site.queries[0] != want {
		t.Errorf("search query = %q, want %q", site.queries[0], want)
	}
}

func TestRunSearch_Verbose(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	deadURL := closed.URL + "/e/unreachable"
	closed.Close()

	site := &fakeEventbrite{cards: []string{"/e/1", deadURL}}
	server := httptest.NewServer(site)
	defer server.Close()

	_, stderr, err := runCmd(t,
		"--base-url", server.URL,
		"--delay", "0s",
		"--timeout", "2s",
		"--output", filepath.Join(t.TempDir(), "events.json"),
		"--log-level", "error",
		"--verbose",
	)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(stderr, "Page 1: 2 cards, 1 fetched, 1 failed, 0 skipped") {
		t.Errorf("stderr missing summary: %q", stderr)
	}
	if !strings.Contains(stderr, "FAILED: "+deadURL) {
		t.Errorf("stderr missing failure line: %q", stderr)
	}
}

func TestRunSearch_MetricsFile(t *testing.T) {
	server := httptest.NewServer(&fakeEventbrite{cards: []string{"/e/1"}})
	defer server.Close()

	dir := t.TempDir()
	metricsFile := filepath.Join(dir, "scraper.prom")
	_, _, err := runCmd(t,
		"--base-url", server.URL,
		"--delay", "0s",
		"--output", filepath.Join(dir, "events.json"),
		"--metrics-file", metricsFile,
		"--log-level", "error",
	)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("reading metrics file: %v", err)
	}
	if !strings.Contains(string(data), `eventbrite_scraper_detail_fetches_total{outcome="success"} 1`) {
		t.Errorf("metrics file missing detail fetch counter:\n%s", data)
	}
}

func TestRunSearch_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"page zero", []string{"--page", "0"}},
		{"relative base url", []string{"--base-url", "/nowhere"}},
		{"unknown log format", []string{"--log-format", "xml"}},
		{"unexpected argument", []string{"extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := runCmd(t, tt.args...); err == nil {
				t.Error("Execute() expected error, got nil")
			}
		})
	}
}

func TestRunSearch_ConfigFile(t *testing.T) {
	site := &fakeEventbrite{cards: []string{"/e/7"}}
	server := httptest.NewServer(site)
	defer server.Close()

	dir := t.TempDir()
	output := filepath.Join(dir, "from-config.json")
	configFile := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("base_url: %s\nquery: queer choir\ndelay: 0s\noutput: %s\nlog_level: error\n", server.URL, output)
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runCmd(t, "--config", configFile, "--query", "flag wins")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.HasPrefix(stdout, "Searching for events matching: flag wins in London, UK\n") {
		t.Errorf("stdout = %q, flag should override the config file", stdout)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("output from config file not written: %v", err)
	}
}

func TestShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	events := []*event.Record{
		{Title: "Pride Quiz", Date: "Fri 7pm", Location: "The Yard", URL: "https://www.eventbrite.com/e/1", ScrapedAt: time.Now().UTC()},
		{URL: "https://www.eventbrite.com/e/2", ScrapedAt: time.Now().UTC()},
	}
	if err := storage.SaveEvents(events, path); err != nil {
		t.Fatal(err)
	}

	t.Run("text", func(t *testing.T) {
		stdout, _, err := runCmd(t, "show", path)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		for _, want := range []string{"1. Pride Quiz", "Date: Fri 7pm", "Location: The Yard", "2. (untitled)", "Total: 2 events"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("stdout missing %q:\n%s", want, stdout)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		stdout, _, err := runCmd(t, "show", path, "--format", "json")
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		var result OutputResult
		if err := json.Unmarshal([]byte(stdout), &result); err != nil {
			t.Fatalf("stdout is not JSON: %v", err)
		}
		if result.EventCount != 2 || result.File != path {
			t.Errorf("result = %+v, want 2 events from %s", result, path)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		if _, _, err := runCmd(t, "show", path, "--format", "yaml"); err == nil {
			t.Error("Execute() expected error for invalid format")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, _, err := runCmd(t, "show", filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Error("Execute() expected error for missing file")
		}
	})
}

func TestWriteOutput_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, &OutputResult{}, FormatText, false); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}
	if buf.String() != "No events found.\n" {
		t.Errorf("output = %q, want 'No events found.'", buf.String())
	}

	if err := WriteOutput(&buf, &OutputResult{}, OutputFormat("csv"), false); err == nil {
		t.Error("WriteOutput() expected error for unknown format")
	}
}

func TestWriteSearchSummary(t *testing.T) {
	t.Run("failed search", func(t *testing.T) {
		var buf bytes.Buffer
		WriteSearchSummary(&buf, &scraper.SearchResult{Err: &scraper.StatusError{StatusCode: 500}})
		if buf.String() != "Search failed: unexpected status code: 500\n" {
			t.Errorf("summary = %q", buf.String())
		}
	})

	t.Run("partial success", func(t *testing.T) {
		var buf bytes.Buffer
		WriteSearchSummary(&buf, &scraper.SearchResult{
			Page:      1,
			Events:    []*event.Record{{Title: "a"}},
			Attempted: 2,
			Skipped:   1,
			Failures: []scraper.DetailResult{
				{URL: "https://www.eventbrite.com/e/x", Err: &scraper.StatusError{StatusCode: 404}},
			},
		})
		out := buf.String()
		if !strings.Contains(out, "Page 1: 3 cards, 1 fetched, 1 failed, 1 skipped") {
			t.Errorf("summary = %q", out)
		}
		if !strings.Contains(out, "FAILED: https://www.eventbrite.com/e/x: unexpected status code: 404") {
			t.Errorf("summary = %q", out)
		}
	})
}
