package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/sentinelstack/audit-sentinel/internal/aggregator"
	"github.com/sentinelstack/audit-sentinel/internal/models"
	"github.com/sentinelstack/audit-sentinel/internal/patterns"
)

// Markdown generates a Markdown analysis report. Recommendations come from
// the optional rule engine, falling back to the built-in defaults.
func Markdown(
	metrics models.ActivityMetrics,
	clusters []aggregator.ClusterMetrics,
	anomalies []models.Anomaly,
	engine *RuleEngine,
) string {
	var b strings.Builder

	b.WriteString("# Audit Log Analysis Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n\n", time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))

	b.WriteString("## Executive Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Total Operations | %d |\n", metrics.TotalOperations)
	fmt.Fprintf(&b, "| Automation Ratio | %.1f%% |\n", metrics.AutomationRatio*100)
	fmt.Fprintf(&b, "| Operations/Minute | %.2f |\n", metrics.OperationsPerMinute)
	fmt.Fprintf(&b, "| Decision Latency | %.0fms |\n", metrics.DecisionLatencyMs)
	fmt.Fprintf(&b, "| Cost Efficiency | %.1f/100 |\n", metrics.CostEfficiencyScore)
	fmt.Fprintf(&b, "| Clusters Analyzed | %d |\n", metrics.ClusterCount)
	fmt.Fprintf(&b, "| Anomalies Detected | %d |\n\n", metrics.AnomalyCount)

	if speed := metrics.SpeedImprovement(); speed > 1 {
		b.WriteString("### Automation Acceleration\n\n")
		fmt.Fprintf(&b, "**Speed Improvement:** %.0fx faster automated decisions\n\n", speed)
	}

	if len(clusters) > 0 {
		b.WriteString("## Cluster Analysis\n\n")
		b.WriteString("| Cluster | Operations | Automation | Efficiency | Anomalies |\n")
		b.WriteString("|---------|------------|------------|------------|-----------|\n")
		for _, cm := range clusters {
			fmt.Fprintf(&b, "| %s | %d | %.1f%% | %.1f | %d |\n",
				cm.Cluster, cm.Metrics.TotalOperations, cm.Metrics.AutomationRatio*100,
				cm.Metrics.CostEfficiencyScore, cm.Metrics.AnomalyCount)
		}
		b.WriteString("\n")
	}

	if len(anomalies) > 0 {
		b.WriteString("## Anomalies Detected\n\n")
		b.WriteString("| Severity | Type | Description |\n")
		b.WriteString("|----------|------|-------------|\n")
		for _, anomaly := range anomalies {
			fmt.Fprintf(&b, "| %s (%d) | %s | %s |\n",
				severityWord(anomaly.Severity), anomaly.Severity, anomaly.Kind, anomaly.Description)
		}
		b.WriteString("\n")
	}

	if mined := patterns.Mine(anomalies); len(mined) > 0 {
		b.WriteString("## Recurring Principals\n\n")
		b.WriteString("| Principal | Anomalies | Kinds | Max Severity | Last Seen |\n")
		b.WriteString("|-----------|-----------|-------|--------------|-----------|\n")
		for _, pattern := range mined {
			kinds := make([]string, 0, len(pattern.Kinds))
			for _, kind := range pattern.Kinds {
				kinds = append(kinds, string(kind))
			}
			fmt.Fprintf(&b, "| %s | %d | %s | %d | %s |\n",
				pattern.Principal, pattern.Count, strings.Join(kinds, ", "),
				pattern.MaxSeverity, pattern.LastSeen.Format(time.RFC3339))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recommendations\n\n")
	recs := engine.Recommend(metrics, anomalies)
	if len(recs) == 0 {
		recs = DefaultRecommendations(metrics)
	}
	for _, rec := range recs {
		fmt.Fprintf(&b, "- %s\n", rec)
	}

	b.WriteString("\n---\n\n")
	b.WriteString("*Generated by audit-sentinel*\n")

	return b.String()
}

func severityWord(severity int) string {
	switch {
	case severity <= 3:
		return "low"
	case severity <= 6:
		return "medium"
	case severity <= 8:
		return "high"
	default:
		return "critical"
	}
}
