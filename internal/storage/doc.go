// Package storage provides JSON file persistence for scraped event records.
//
// Records are written as a single indented JSON array. Non-ASCII text and
// HTML-significant characters are written verbatim rather than escaped, and an
// existing file is overwritten in place.
package storage
