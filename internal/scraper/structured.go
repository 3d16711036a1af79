package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/eventbrite-events/internal/event"
	"github.com/tidwall/gjson"
)

// backfill fills empty record fields from the first schema.org Event found in
// the page's application/ld+json blocks. Fields already set are left alone.
func backfill(rec *event.Record, doc *goquery.Document) {
	data, ok := findLDEvent(doc)
	if !ok {
		return
	}

	fill := func(dst *string, path string) {
		if *dst != "" {
			return
		}
		*dst = strings.TrimSpace(data.Get(path).String())
	}

	fill(&rec.Title, "name")
	fill(&rec.Description, "description")
	fill(&rec.Date, "startDate")
	fill(&rec.Location, "location.name")
	fill(&rec.Organizer, "organizer.name")
}

// findLDEvent returns the first JSON-LD object whose @type names an Event
func findLDEvent(doc *goquery.Document) (gjson.Result, bool) {
	var found gjson.Result
	ok := false

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, script *goquery.Selection) bool {
		raw := script.Text()
		if !gjson.Valid(raw) {
			return true
		}

		parsed := gjson.Parse(raw)
		candidates := []gjson.Result{parsed}
		if parsed.IsArray() {
			candidates = parsed.Array()
		} else if graph := parsed.Get("@graph"); graph.IsArray() {
			candidates = graph.Array()
		}

		for _, c := range candidates {
			if isEventType(c.Get("@type")) {
				found = c
				ok = true
				return false
			}
		}
		return true
	})

	return found, ok
}

// isEventType matches "Event" and its subtypes such as "SocialEvent"
func isEventType(t gjson.Result) bool {
	values := []gjson.Result{t}
	if t.IsArray() {
		values = t.Array()
	}
	for _, v := range values {
		if strings.HasSuffix(v.String(), "Event") {
			return true
		}
	}
	return false
}
