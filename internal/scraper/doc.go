// Package scraper provides HTTP fetching and HTML parsing for Eventbrite events.
//
// A Scraper runs one search against the site's search page, collects the link
// of every event card in the results, and follows each link to its detail page
// where the title, description, date, location and organizer are read with CSS
// selectors. Detail pages are fetched one at a time with a fixed pause between
// them. The selector table is configurable so that fixture markup or a changed
// site layout can be handled without touching the extraction code.
//
// Failures never escape as errors: FetchEventDetails reports them in its
// DetailResult and SearchEvents in its SearchResult, and both log the reason.
package scraper
