// Package cli implements the command-line interface for eventbrite-events.
//
// The root command runs one Eventbrite search, follows every result to its
// detail page and writes the scraped events to a JSON file. Running it without
// flags searches for "LGBTQ+ community events" in "London, UK". The show
// subcommand prints a previously saved file as text or JSON.
//
// The command exits successfully whether or not any events were found, and
// also when the search itself failed; only invalid configuration and file
// errors produce a non-zero exit code.
package cli
