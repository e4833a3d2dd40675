package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	entriesParsedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "audit_sentinel",
			Name:      "entries_parsed_total",
			Help:      "Total number of audit entries normalized by the parser.",
		},
	)

	anomaliesDetectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "audit_sentinel",
			Name:      "anomalies_detected_total",
			Help:      "Total anomalies detected, partitioned by kind.",
		},
		[]string{"kind"},
	)

	anomaliesCurrent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "audit_sentinel",
			Name:      "anomalies_current",
			Help:      "Anomalies present in the latest watch recompute, partitioned by kind.",
		},
		[]string{"kind"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "audit_sentinel",
			Name:      "analysis_seconds",
			Help:      "Full detector+aggregator recompute latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)
)

// Register attaches audit-sentinel collectors to the supplied registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		entriesParsedTotal,
		anomaliesDetectedTotal,
		anomaliesCurrent,
		analysisDurationSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// AddEntriesParsed records newly normalized entries.
func AddEntriesParsed(n int) {
	if n > 0 {
		entriesParsedTotal.Add(float64(n))
	}
}

// AddAnomaly records one detected anomaly of the given kind.
func AddAnomaly(kind string) {
	anomaliesDetectedTotal.WithLabelValues(kind).Inc()
}

// SetAnomalies replaces the current anomaly gauge with the given per-kind
// counts. Watch mode recomputes the whole snapshot every tick, so a gauge
// reflects the latest state instead of accumulating duplicates.
func SetAnomalies(counts map[string]int) {
	anomaliesCurrent.Reset()
	for kind, n := range counts {
		anomaliesCurrent.WithLabelValues(kind).Set(float64(n))
	}
}

// ObserveAnalysis records a full recompute duration.
func ObserveAnalysis(duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
}
