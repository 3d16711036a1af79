// Package metrics provides Prometheus metrics for a single scraper run.
//
// The scraper is a one-shot job, so nothing is served over HTTP. Instead the
// collected counters and histograms can be written once at the end of a run
// in the node_exporter textfile format with WriteTextfile.
package metrics
