package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "source_dashboard"

type promMetrics struct {
	registry    *prometheus.Registry
	cycles      *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	records     *prometheus.GaugeVec
	resolutions prometheus.Counter
}

func newPromMetrics() *promMetrics {
	pm := &promMetrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "cycles_total",
			Help:      "Fetch cycles by source and outcome.",
		}, []string{"source", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of applied fetch cycles.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		}, []string{"source"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "records",
			Help:      "Record count of the last successful cycle.",
		}, []string{"source"}),
		resolutions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "resolutions_total",
			Help:      "Successful runtime configuration resolutions.",
		}),
	}

	pm.registry.MustRegister(pm.cycles, pm.durations, pm.records, pm.resolutions)
	return pm
}

func (pm *promMetrics) observe(event MetricEvent) {
	switch event.Type {
	case EventCycleStarted:
		pm.cycles.WithLabelValues(event.Source, "started").Inc()
	case EventCycleSucceeded:
		pm.cycles.WithLabelValues(event.Source, "succeeded").Inc()
		pm.durations.WithLabelValues(event.Source).Observe(event.Duration.Seconds())
		pm.records.WithLabelValues(event.Source).Set(float64(event.Records))
	case EventCycleFailed:
		pm.cycles.WithLabelValues(event.Source, "failed").Inc()
		pm.durations.WithLabelValues(event.Source).Observe(event.Duration.Seconds())
	case EventCycleDiscarded:
		pm.cycles.WithLabelValues(event.Source, "discarded").Inc()
	case EventConfigResolved:
		pm.resolutions.Inc()
	}
}
