// Package metrics exposes fact results as Prometheus series. fwfacts is a
// one-shot command, so the registry is written to a node_exporter textfile
// instead of being served.
package metrics
