package models

// ActivityMetrics is a pure value object summarising automation vs human
// activity over one entry snapshot. Immutable once constructed.
type ActivityMetrics struct {
	// AutomationRatio is automated/total operations, in [0,1].
	AutomationRatio float64 `json:"automation_ratio"`
	// OperationsPerMinute is total operations over the observed time span.
	OperationsPerMinute float64 `json:"operations_per_minute"`
	// DecisionLatencyMs is the estimated mean decision latency in milliseconds.
	DecisionLatencyMs float64 `json:"decision_latency_ms"`
	// CostEfficiencyScore ranges 0-100.
	CostEfficiencyScore float64 `json:"cost_efficiency_score"`
	ClusterCount        int     `json:"cluster_count"`
	TotalOperations     int     `json:"total_operations"`
	AutomatedOperations int     `json:"automated_operations"`
	HumanOperations     int     `json:"human_operations"`
	AnomalyCount        int     `json:"anomaly_count"`
	// TimeSpanMinutes is the span between the earliest and latest entry.
	TimeSpanMinutes float64 `json:"time_span_minutes"`
}

// SpeedImprovement estimates how much faster automated decisions are compared
// to a fully manual baseline.
func (m ActivityMetrics) SpeedImprovement() float64 {
	switch {
	case m.HumanOperations > 0 && m.AutomationRatio > 0:
		return 1000.0 * m.AutomationRatio
	case m.AutomatedOperations > 0:
		return 1000.0
	default:
		return 1.0
	}
}
