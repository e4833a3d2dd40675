package main

import (
	"flag"
	"fmt"

	"github.com/sentinelstack/audit-sentinel/internal/report"
	"github.com/sentinelstack/audit-sentinel/internal/store"
)

func runMetrics(args []string) error {
	fs := flag.NewFlagSet("metrics", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	input := fs.String("input", "-", "Audit log file, or - for stdin")
	asJSON := fs.Bool("json", false, "Emit the machine-readable JSON document")
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

	snapshot := store.New(entries)
	overall := deps.agg.Calculate(snapshot)
	clusters := deps.agg.CalculatePerCluster(snapshot)

	if *asJSON {
		data, err := report.MarshalDocument(overall, clusters)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	fmt.Print(report.Dashboard(overall, clusters))
	return nil
}
