// Package metric provides Prometheus metrics for sumconf.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: the Registry with gather and listing cache metrics
//   - collector.go: a custom collector reporting listing cache size
//
// Metrics include:
//
//   - Listing cache hits and misses
//   - Gathers by outcome and their duration
//   - Fragments loaded per loader
//
// There is no HTTP endpoint. The CLI dumps a registry in the Prometheus
// text format with WriteTextfile.
package metric
