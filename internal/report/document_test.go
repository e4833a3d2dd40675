package report

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/sentinelstack/audit-sentinel/internal/aggregator"
	"github.com/sentinelstack/audit-sentinel/internal/models"
)

func sampleMetrics() models.ActivityMetrics {
	return models.ActivityMetrics{
		AutomationRatio:     0.8,
		OperationsPerMinute: 10,
		DecisionLatencyMs:   12048,
		CostEfficiencyScore: 72.5,
		ClusterCount:        1,
		TotalOperations:     10,
		AutomatedOperations: 8,
		HumanOperations:     2,
		AnomalyCount:        1,
		TimeSpanMinutes:     1,
	}
}

func TestDocumentKeySet(t *testing.T) {
	data, err := MarshalDocument(sampleMetrics(), nil)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		Overall  map[string]json.RawMessage `json:"overall"`
		Clusters map[string]json.RawMessage `json:"clusters"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := []string{
		"anomaly_count",
		"automated_operations",
		"automation_ratio",
		"cluster_count",
		"cost_efficiency_score",
		"decision_latency_ms",
		"human_operations",
		"operations_per_minute",
		"speed_improvement",
		"total_operations",
	}
	got := make([]string, 0, len(decoded.Overall))
	for key := range decoded.Overall {
		got = append(got, key)
	}
	sort.Strings(got)

	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key mismatch at %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDocumentPerCluster(t *testing.T) {
	clusters := []aggregator.ClusterMetrics{
		{Cluster: "prod", Metrics: sampleMetrics()},
		{Cluster: "staging", Metrics: models.ActivityMetrics{TotalOperations: 3, HumanOperations: 3}},
	}

	doc := NewDocument(sampleMetrics(), clusters)
	if len(doc.Clusters) != 2 {
		t.Fatalf("expected 2 cluster documents, got %d", len(doc.Clusters))
	}
	if doc.Clusters["prod"].TotalOperations != 10 {
		t.Fatalf("unexpected prod totals: %+v", doc.Clusters["prod"])
	}
	if doc.Clusters["staging"].SpeedImprovement != 1.0 {
		t.Fatalf("all-human cluster should report baseline speed, got %f", doc.Clusters["staging"].SpeedImprovement)
	}
}

func TestSpeedImprovementDerived(t *testing.T) {
	doc := NewMetricsDocument(sampleMetrics())
	if doc.SpeedImprovement != 800.0 {
		t.Fatalf("expected derived speed improvement 800, got %f", doc.SpeedImprovement)
	}
}
