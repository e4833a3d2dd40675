// Package report renders analysis results for the console, for Markdown
// reports, and as machine-readable JSON documents.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sentinelstack/audit-sentinel/internal/aggregator"
	"github.com/sentinelstack/audit-sentinel/internal/models"
	"github.com/sentinelstack/audit-sentinel/internal/store"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	alertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("14")).
			Padding(0, 2)
)

// Dashboard renders the activity metrics dashboard with an optional
// per-cluster breakdown.
func Dashboard(metrics models.ActivityMetrics, clusters []aggregator.ClusterMetrics) string {
	var b strings.Builder

	b.WriteString(frameStyle.Render(titleStyle.Render("AUDIT ACTIVITY DASHBOARD")))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Overall Metrics"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", 50)))
	b.WriteString("\n")

	fmt.Fprintf(&b, "  Total Operations:     %s (%d automated, %d human)\n",
		okStyle.Render(fmt.Sprintf("%d", metrics.TotalOperations)),
		metrics.AutomatedOperations, metrics.HumanOperations)
	fmt.Fprintf(&b, "  Automation Ratio:     %s\n",
		okStyle.Render(fmt.Sprintf("%.1f%%", metrics.AutomationRatio*100)))
	fmt.Fprintf(&b, "  Ops/Minute:           %.2f\n", metrics.OperationsPerMinute)
	fmt.Fprintf(&b, "  Decision Latency:     %.0fms avg\n", metrics.DecisionLatencyMs)
	fmt.Fprintf(&b, "  Cost Efficiency:      %s\n",
		okStyle.Render(fmt.Sprintf("%.1f/100", metrics.CostEfficiencyScore)))
	fmt.Fprintf(&b, "  Time Span:            %s\n",
		dimStyle.Render(fmt.Sprintf("%.1f minutes", metrics.TimeSpanMinutes)))

	anomalyLine := okStyle.Render("0")
	if metrics.AnomalyCount > 0 {
		anomalyLine = alertStyle.Render(fmt.Sprintf("%d", metrics.AnomalyCount))
	}
	fmt.Fprintf(&b, "  Anomalies Detected:   %s\n\n", anomalyLine)

	if speed := metrics.SpeedImprovement(); speed > 1 {
		b.WriteString(accentStyle.Render("AUTOMATION ACCELERATION"))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(strings.Repeat("─", 50)))
		b.WriteString("\n")
		fmt.Fprintf(&b, "  Speed Improvement:    %s faster automated decisions\n\n",
			okStyle.Render(fmt.Sprintf("%.0fx", speed)))
	}

	if len(clusters) > 0 {
		b.WriteString(sectionStyle.Render("Cluster Breakdown"))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(strings.Repeat("─", 50)))
		b.WriteString("\n")
		for _, cm := range clusters {
			status := okStyle.Render("ok")
			if cm.Metrics.AnomalyCount > 0 {
				status = alertStyle.Render("!!")
			}
			fmt.Fprintf(&b, "  [%s] %s | %d ops | %.1f%% automated | %.1f efficiency\n",
				status, cm.Cluster, cm.Metrics.TotalOperations,
				cm.Metrics.AutomationRatio*100, cm.Metrics.CostEfficiencyScore)
		}
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("Analyzed at: %s | Clusters: %d",
		time.Now().UTC().Format("2006-01-02 15:04:05 UTC"), metrics.ClusterCount)))
	b.WriteString("\n")

	return b.String()
}

// AnomalyList renders detected anomalies one per line, severity first.
func AnomalyList(anomalies []models.Anomaly) string {
	if len(anomalies) == 0 {
		return okStyle.Render("No anomalies detected.") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", alertStyle.Render(fmt.Sprintf("Anomalies Detected (%d):", len(anomalies))))
	for _, anomaly := range anomalies {
		fmt.Fprintf(&b, "  %s [%d] %s: %s\n",
			severityBadge(anomaly.Severity), anomaly.Severity, anomaly.Kind, anomaly.Description)
	}
	return b.String()
}

// Summary renders the analyze-command activity overview over a snapshot.
func Summary(entries *store.EntryStore, anomalies []models.Anomaly, recentLimit int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Audit Log Analysis"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("═", 60)))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Total entries: %d\n\n", entries.Len())
	fmt.Fprintf(&b, "%s %s\n", sectionStyle.Render("Clusters:"), strings.Join(entries.Clusters(), ", "))
	fmt.Fprintf(&b, "%s %s\n\n", sectionStyle.Render("Namespaces:"), strings.Join(entries.Namespaces(), ", "))

	b.WriteString(sectionStyle.Render("Operations by Resource Type:"))
	b.WriteString("\n")
	writeSortedCounts(&b, entries.ResourceSummary())
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Operations by Type:"))
	b.WriteString("\n")
	writeSortedCounts(&b, entries.OperationSummary())
	b.WriteString("\n")

	b.WriteString(AnomalyList(anomalies))
	b.WriteString("\n")

	if recentLimit > 0 && entries.Len() > 0 {
		b.WriteString(sectionStyle.Render(fmt.Sprintf("Recent Activity (up to %d entries):", recentLimit)))
		b.WriteString("\n")
		for i, entry := range entries.Entries() {
			if i >= recentLimit {
				break
			}
			fmt.Fprintf(&b, "  %s | %s | %s | %s | %s\n",
				entry.Timestamp.Format("15:04:05"), entry.Cluster,
				entry.Namespace, entry.Operation, entry.ResourceName)
		}
	}

	return b.String()
}

func severityBadge(severity int) string {
	switch {
	case severity <= 3:
		return okStyle.Render("low ")
	case severity <= 6:
		return sectionStyle.Render("med ")
	case severity <= 8:
		return accentStyle.Render("high")
	default:
		return alertStyle.Render("crit")
	}
}

func writeSortedCounts(b *strings.Builder, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(b, "  %s: %d\n", key, counts[key])
	}
}
