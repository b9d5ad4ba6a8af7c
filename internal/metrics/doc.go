// Package metrics collects runtime memory snapshots and Prometheus
// simulation counters.
package metrics
