// Package event provides the record type produced by the Eventbrite scraper.
//
// A Record holds the free-text fields extracted from one event detail page
// together with the page URL and the time it was scraped. Records are created
// once per fetch and never modified afterwards; the URL doubles as the identity
// key, and GenerateID derives a short deterministic ID from it for log lines.
package event
