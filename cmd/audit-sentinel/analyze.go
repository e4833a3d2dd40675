package main

import (
	"flag"
	"fmt"
	"log/slog"

	"github.com/sentinelstack/audit-sentinel/internal/metrics"
	"github.com/sentinelstack/audit-sentinel/internal/report"
	"github.com/sentinelstack/audit-sentinel/internal/store"
)

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	input := fs.String("input", "-", "Audit log file, or - for stdin")
	cluster := fs.String("cluster", "", "Restrict analysis to one cluster")
	namespace := fs.String("namespace", "", "Restrict analysis to one namespace")
	anomaliesOnly := fs.Bool("anomalies-only", false, "Print only the anomaly listing")
	recent := fs.Int("recent", 10, "Number of recent entries to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deps, err := buildDeps(*configPath)
	if err != nil {
		return err
	}

	text, err := readInput(*input)
	if err != nil {
		return err
	}

	entries, err := deps.parser.ParseLogs(text)
	if err != nil {
		return err
	}
	metrics.AddEntriesParsed(len(entries))

	snapshot := store.New(entries)
	if *cluster != "" {
		snapshot = store.New(snapshot.FilterByCluster(*cluster))
	}
	if *namespace != "" {
		snapshot = store.New(snapshot.FilterByNamespace(*namespace))
	}

	anomalies := deps.det.Detect(snapshot)
	for _, anomaly := range anomalies {
		metrics.AddAnomaly(string(anomaly.Kind))
	}

	deps.logger.Info("analysis complete",
		slog.Int("entries", snapshot.Len()),
		slog.Int("anomalies", len(anomalies)))

	if *anomaliesOnly {
		fmt.Print(report.AnomalyList(anomalies))
		return nil
	}
	fmt.Print(report.Summary(snapshot, anomalies, *recent))
	return nil
}
