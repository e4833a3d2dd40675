package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"

	"github.com/sentinelstack/audit-sentinel/internal/leases"
)

// leaseReport is the JSON shape emitted by the leases command.
type leaseReport struct {
	Summary   leases.Summary        `json:"summary"`
	Anomalies []leases.ChurnAnomaly `json:"anomalies"`
}

func runLeases(args []string) error {
	fs := flag.NewFlagSet("leases", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	input := fs.String("input", "-", "Audit log file, or - for stdin")
	asJSON := fs.Bool("json", false, "Emit results as JSON")
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

	events := leases.EventsFromEntries(entries)
	analyzer := leases.New(deps.cfg.Leases)
	analyzer.LoadEvents(events)

	summary := analyzer.Summarize()
	anomalies := analyzer.Analyze()

	deps.logger.Info("lease analysis complete",
		slog.Int("events", len(events)),
		slog.Int("anomalies", len(anomalies)))

	if *asJSON {
		out := leaseReport{Summary: summary, Anomalies: anomalies}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Lease events: %d across %d leases\n", summary.TotalEvents, summary.UniqueLeases)
	for _, action := range []leases.Action{leases.ActionAcquire, leases.ActionRenew, leases.ActionRelease, leases.ActionExpire} {
		if count := summary.EventsByAction[action]; count > 0 {
			fmt.Printf("  %s: %d\n", action, count)
		}
	}
	if len(anomalies) == 0 {
		fmt.Println("No lease churn anomalies detected.")
		return nil
	}
	fmt.Printf("\nChurn anomalies (%d):\n", len(anomalies))
	for _, anomaly := range anomalies {
		fmt.Printf("  [%s] %s %s/%s: %s\n",
			anomaly.Severity, anomaly.Kind, anomaly.Namespace, anomaly.LeaseName, anomaly.Details)
	}
	return nil
}
