// Package aggregator computes summary activity metrics over an entry snapshot.
package aggregator

import (
	"sort"
	"time"

	"github.com/sentinelstack/audit-sentinel/internal/config"
	"github.com/sentinelstack/audit-sentinel/internal/detector"
	"github.com/sentinelstack/audit-sentinel/internal/models"
	"github.com/sentinelstack/audit-sentinel/internal/store"
	"github.com/sentinelstack/audit-sentinel/internal/utils"
)

// Aggregator derives ActivityMetrics from entries. Calculate is a pure
// function of the snapshot: it never fails and holds no state between calls.
type Aggregator struct {
	cfg      config.ActivityConfig
	detector *detector.Detector
}

// New constructs an Aggregator. The detector supplies the anomaly count; when
// nil a detector with default thresholds is used.
func New(cfg config.ActivityConfig, det *detector.Detector) *Aggregator {
	if cfg.HumanLatencyMs <= 0 {
		cfg.HumanLatencyMs = 60000
	}
	if cfg.AutomatedLatencyMs <= 0 {
		cfg.AutomatedLatencyMs = 60
	}
	if det == nil {
		det = detector.New(config.DetectorConfig{})
	}
	return &Aggregator{cfg: cfg, detector: det}
}

// Calculate computes metrics for the snapshot. Empty input yields an all-zero
// record with no division by zero.
func (a *Aggregator) Calculate(entries *store.EntryStore) models.ActivityMetrics {
	if entries.Len() == 0 {
		return models.ActivityMetrics{}
	}

	total := entries.Len()
	automated := 0
	for _, entry := range entries.Entries() {
		if entry.IsAutomated() {
			automated++
		}
	}
	human := total - automated

	automationRatio := float64(automated) / float64(total)

	timeSpanMinutes := timeSpan(entries.Entries())

	operationsPerMinute := float64(total)
	if timeSpanMinutes > 0 {
		operationsPerMinute = float64(total) / timeSpanMinutes
	}

	decisionLatencyMs := (float64(automated)*a.cfg.AutomatedLatencyMs +
		float64(human)*a.cfg.HumanLatencyMs) / float64(total)

	// Efficiency rewards both a high automation ratio and low decision
	// latency, capped at 100.
	latencyFactor := 1.0 - minFloat(decisionLatencyMs/a.cfg.HumanLatencyMs, 1.0)
	costEfficiencyScore := minFloat(50.0*(1.0+automationRatio)*(1.0+latencyFactor), 100.0)

	return models.ActivityMetrics{
		AutomationRatio:     automationRatio,
		OperationsPerMinute: operationsPerMinute,
		DecisionLatencyMs:   decisionLatencyMs,
		CostEfficiencyScore: costEfficiencyScore,
		ClusterCount:        len(entries.Clusters()),
		TotalOperations:     total,
		AutomatedOperations: automated,
		HumanOperations:     human,
		AnomalyCount:        len(a.detector.Detect(entries)),
		TimeSpanMinutes:     timeSpanMinutes,
	}
}

// CalculatePerCluster computes metrics for each distinct cluster, in sorted
// cluster order.
func (a *Aggregator) CalculatePerCluster(entries *store.EntryStore) []ClusterMetrics {
	clusters := entries.Clusters()
	results := make([]ClusterMetrics, 0, len(clusters))
	for _, cluster := range clusters {
		snapshot := store.New(entries.FilterByCluster(cluster))
		results = append(results, ClusterMetrics{
			Cluster: cluster,
			Metrics: a.Calculate(snapshot),
		})
	}
	return results
}

// ClusterMetrics pairs a cluster name with its metrics.
type ClusterMetrics struct {
	Cluster string
	Metrics models.ActivityMetrics
}

// timeSpan returns the span between the earliest and latest timestamp in
// minutes. Fewer than two entries span a nominal single minute.
func timeSpan(entries []models.Entry) float64 {
	if len(entries) < 2 {
		return 1.0
	}
	timestamps := make([]time.Time, len(entries))
	for i, entry := range entries {
		timestamps[i] = entry.Timestamp
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })
	return utils.DurationMinutes(timestamps[0], timestamps[len(timestamps)-1])
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
