// Package prometheus provides a Prometheus adapter for
// github.com/ipmark/ipmark.
//
// The package exposes ipmark options that install a Prometheus-backed
// Metrics implementation on an extractor, using either the default registerer
// or a caller-provided registerer.
package prometheus
