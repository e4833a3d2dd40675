package report

import (
	"encoding/json"

	"github.com/sentinelstack/audit-sentinel/internal/aggregator"
	"github.com/sentinelstack/audit-sentinel/internal/models"
)

// MetricsDocument is the machine-readable form of an activity metrics record.
// The key set is part of the external contract and must not change.
type MetricsDocument struct {
	TotalOperations     int     `json:"total_operations"`
	AutomatedOperations int     `json:"automated_operations"`
	HumanOperations     int     `json:"human_operations"`
	AutomationRatio     float64 `json:"automation_ratio"`
	OperationsPerMinute float64 `json:"operations_per_minute"`
	DecisionLatencyMs   float64 `json:"decision_latency_ms"`
	CostEfficiencyScore float64 `json:"cost_efficiency_score"`
	ClusterCount        int     `json:"cluster_count"`
	AnomalyCount        int     `json:"anomaly_count"`
	SpeedImprovement    float64 `json:"speed_improvement"`
}

// Document pairs overall metrics with per-cluster breakdowns keyed by cluster
// name, each using the same shape.
type Document struct {
	Overall  MetricsDocument            `json:"overall"`
	Clusters map[string]MetricsDocument `json:"clusters"`
}

// NewMetricsDocument converts a metrics value into its serialized shape.
func NewMetricsDocument(m models.ActivityMetrics) MetricsDocument {
	return MetricsDocument{
		TotalOperations:     m.TotalOperations,
		AutomatedOperations: m.AutomatedOperations,
		HumanOperations:     m.HumanOperations,
		AutomationRatio:     m.AutomationRatio,
		OperationsPerMinute: m.OperationsPerMinute,
		DecisionLatencyMs:   m.DecisionLatencyMs,
		CostEfficiencyScore: m.CostEfficiencyScore,
		ClusterCount:        m.ClusterCount,
		AnomalyCount:        m.AnomalyCount,
		SpeedImprovement:    m.SpeedImprovement(),
	}
}

// NewDocument assembles the full metrics document.
func NewDocument(overall models.ActivityMetrics, clusters []aggregator.ClusterMetrics) Document {
	doc := Document{
		Overall:  NewMetricsDocument(overall),
		Clusters: make(map[string]MetricsDocument, len(clusters)),
	}
	for _, cm := range clusters {
		doc.Clusters[cm.Cluster] = NewMetricsDocument(cm.Metrics)
	}
	return doc
}

// MarshalDocument serializes the metrics document as indented JSON.
func MarshalDocument(overall models.ActivityMetrics, clusters []aggregator.ClusterMetrics) ([]byte, error) {
	return json.MarshalIndent(NewDocument(overall, clusters), "", "  ")
}
