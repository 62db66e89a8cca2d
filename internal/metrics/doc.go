// Package metrics defines the Prometheus collectors exported by the worker
// and the HTTP server that exposes them alongside health probes.
//
// Collectors are registered at package load via promauto. Call
// InitializeMetrics once at startup so every label combination is visible
// from the first scrape.
package metrics
