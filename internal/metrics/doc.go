// Package metrics defines the Prometheus collectors for the viewer core:
// thumbnail worker throughput, decode latency, viewport transitions,
// histogram computation, and directory scanning.
//
// Collectors are registered with the default registry via promauto. Mount
// promhttp.Handler() on an HTTP mux to expose them:
//
//	r.Handle("/metrics", promhttp.Handler())
package metrics
