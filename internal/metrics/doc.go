// Package metrics collects fetch-cycle metrics for the dashboard's data
// sources.
//
// It uses a channel-based event pipeline. Loaders emit events for every
// cycle they start and for the outcome of every cycle (succeeded, failed or
// discarded because a newer cycle superseded it); the resolver side emits an
// event per successful configuration resolution. The collector goroutine
// folds events into:
//   - cycle counts per source and outcome
//   - cycle durations with percentile calculations (P50, P95, P99)
//   - HTTP status codes of failed requests
//   - the record count of the last successful cycle
//
// Events are sent with non-blocking semantics so a slow collector never
// stalls a loader.
//
// Example usage:
//
//	collector := metrics.NewCollector(100, logger)
//	collector.Start(ctx)
//
//	collector.EventChannel() <- metrics.MetricEvent{
//		Type:     metrics.EventCycleSucceeded,
//		Source:   "primary",
//		Duration: 35 * time.Millisecond,
//		Records:  10,
//	}
//
//	snapshot := collector.Snapshot()
//
// Every processed event is mirrored into a private Prometheus registry
// exposed by PrometheusHandler.
package metrics
