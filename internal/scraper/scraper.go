package scraper

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/pfrederiksen/eventbrite-events/internal/event"
	"github.com/pfrederiksen/eventbrite-events/internal/logger"
	"github.com/pfrederiksen/eventbrite-events/internal/metrics"
)

const (
	BaseURL   = "https://www.eventbrite.com"
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	Timeout   = 30 * time.Second
	Delay     = 1 * time.Second
)

// StatusError is returned when a page answers with a non-2xx status
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// DetailResult is the outcome of fetching one event detail page.
// Exactly one of Record and Err is set.
type DetailResult struct {
	URL    string
	Record *event.Record
	Err    error
}

// OK reports whether the record was fetched
func (r DetailResult) OK() bool {
	return r.Err == nil && r.Record != nil
}

// SearchResult is the outcome of one search. Events is never nil and keeps
// the order in which the cards appeared on the results page.
type SearchResult struct {
	Query     string
	Location  string
	Page      int
	Events    []*event.Record
	Attempted int            // detail fetches issued
	Skipped   int            // cards without a resolvable link
	Failures  []DetailResult // failed detail fetches, in card order
	Err       error          // set when the search request itself failed
}

// Failed reports whether the search request itself failed, as opposed to
// returning no events
func (r *SearchResult) Failed() bool {
	return r.Err != nil
}

// Scraper handles fetching and parsing Eventbrite search and event pages
type Scraper struct {
	client         *http.Client
	baseURL        string
	userAgent      string
	selectors      Selectors
	pacer          backoff.BackOff
	sleep          func(time.Duration)
	structuredData bool
	metrics        *metrics.Collector
	log            *logger.Logger
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		baseURL:   BaseURL,
		userAgent: UserAgent,
		selectors: DefaultSelectors(),
		pacer:     backoff.NewConstantBackOff(Delay),
		sleep:     time.Sleep,
		log:       logger.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// FetchEventDetails fetches one event detail page and extracts its fields.
// Elements missing from the page leave the matching field empty; only a
// transport error, a non-2xx status or unparsable markup fails the call.
func (s *Scraper) FetchEventDetails(eventURL string) DetailResult {
	start := time.Now()
	defer func() { s.metrics.ObserveFetch(metrics.KindDetail, time.Since(start)) }()

	doc, err := s.fetchDocument(eventURL)
	if err != nil {
		s.metrics.DetailFetch(metrics.OutcomeFailure)
		s.log.Error("Error scraping event", logger.Fields{
			"url":      eventURL,
			"event_id": event.GenerateID(eventURL),
		}, err)
		return DetailResult{URL: eventURL, Err: err}
	}

	rec := s.parseEvent(doc, eventURL)
	s.metrics.DetailFetch(metrics.OutcomeSuccess)

	if missing := rec.MissingFields(); len(missing) > 0 {
		s.log.Debug("event page missing fields", logger.Fields{
			"url":     eventURL,
			"missing": missing,
		})
	}

	return DetailResult{URL: eventURL, Record: rec}
}

// SearchEvents runs one search and fetches the detail page of every result
// card. Cards without a link are skipped and failed detail fetches are left
// out; neither aborts the batch. The pacer is consulted after every detail
// fetch regardless of its outcome.
func (s *Scraper) SearchEvents(query, location string, page int) *SearchResult {
	if page < 1 {
		page = 1
	}

	result := &SearchResult{
		Query:    query,
		Location: location,
		Page:     page,
		Events:   make([]*event.Record, 0),
	}

	links, err := s.searchLinks(query, location, page, result)
	if err != nil {
		s.metrics.SearchRequest(metrics.OutcomeFailure)
		s.log.Error("Error searching events", logger.Fields{
			"query":    query,
			"location": location,
			"page":     page,
		}, err)
		result.Err = err
		return result
	}
	s.metrics.SearchRequest(metrics.OutcomeSuccess)

	s.log.Debug("search results parsed", logger.Fields{
		"cards":   len(links) + result.Skipped,
		"links":   len(links),
		"skipped": result.Skipped,
	})

	s.pacer.Reset()
	for _, link := range links {
		result.Attempted++

		detail := s.FetchEventDetails(link)
		if detail.OK() {
			result.Events = append(result.Events, detail.Record)
		} else {
			result.Failures = append(result.Failures, detail)
		}

		s.pause()
	}

	s.log.Info("search finished", logger.Fields{
		"query":     query,
		"location":  location,
		"page":      page,
		"events":    len(result.Events),
		"attempted": result.Attempted,
		"failed":    len(result.Failures),
		"skipped":   result.Skipped,
	})

	return result
}

// searchLinks fetches the results page and returns the resolved detail page
// link of every card, in document order
func (s *Scraper) searchLinks(query, location string, page int, result *SearchResult) ([]string, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveFetch(metrics.KindSearch, time.Since(start)) }()

	doc, err := s.fetchDocument(s.searchURL(query, location, page))
	if err != nil {
		return nil, err
	}

	links := make([]string, 0)
	doc.Find(s.selectors.Card).Each(func(i int, card *goquery.Selection) {
		href, ok := card.Find(s.selectors.CardLink).First().Attr("href")
		if !ok {
			result.Skipped++
			s.metrics.CardSkipped()
			return
		}

		link, ok := s.resolveLink(href)
		if !ok {
			result.Skipped++
			s.metrics.CardSkipped()
			s.log.Debug("skipping card with unresolvable link", logger.Fields{
				"card": i,
				"href": href,
			})
			return
		}

		links = append(links, link)
	})

	return links, nil
}

// searchURL builds the search endpoint address. location is only sent when set.
func (s *Scraper) searchURL(query, location string, page int) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	if location != "" {
		params.Set("location", location)
	}
	return fmt.Sprintf("%s/search?%s", s.baseURL, params.Encode())
}

// resolveLink turns a card href into an absolute http(s) address. Relative
// links are resolved against the base URL.
func (s *Scraper) resolveLink(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	if !ref.IsAbs() {
		base, err := url.Parse(s.baseURL + "/")
		if err != nil {
			return "", false
		}
		ref = base.ResolveReference(ref)
	}

	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", false
	}
	return ref.String(), true
}

// fetchDocument GETs pageURL and parses the body as HTML
func (s *Scraper) fetchDocument(pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// parseEvent extracts a Record from a detail page
func (s *Scraper) parseEvent(doc *goquery.Document, eventURL string) *event.Record {
	rec := event.NewRecord(
		eventURL,
		firstText(doc.Selection, s.selectors.Title),
		firstText(doc.Selection, s.selectors.Description),
		firstText(doc.Selection, s.selectors.Date),
		firstText(doc.Selection, s.selectors.Location),
		firstText(doc.Selection, s.selectors.Organizer),
	)

	if s.structuredData && len(rec.MissingFields()) > 0 {
		backfill(rec, doc)
	}

	return rec
}

// firstText returns the trimmed text of the first element matching selector,
// or "" when nothing matches
func firstText(sel *goquery.Selection, selector string) string {
	match := sel.Find(selector).First()
	if match.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(match.Text())
}

// pause waits for the next interval from the pacer
func (s *Scraper) pause() {
	d := s.pacer.NextBackOff()
	if d == backoff.Stop || d <= 0 {
		return
	}
	s.sleep(d)
}

// IsStatus reports whether err is a StatusError with the given code
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
