package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/sentinelstack/audit-sentinel/internal/report"
	"github.com/sentinelstack/audit-sentinel/internal/store"
)

func runReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	input := fs.String("input", "-", "Audit log file, or - for stdin")
	output := fs.String("output", "", "Write the report to a file instead of stdout")
	rulesPath := fs.String("rules", "", "Recommendation rule pack, overrides config")
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
	anomalies := deps.det.Detect(snapshot)
	overall := deps.agg.Calculate(snapshot)
	clusters := deps.agg.CalculatePerCluster(snapshot)

	path := *rulesPath
	if path == "" {
		path = deps.cfg.Rules.Path
	}
	engine, err := report.NewRuleEngine(path, deps.logger)
	if err != nil {
		return err
	}

	rendered := report.Markdown(overall, clusters, anomalies, engine)

	if *output != "" {
		if err := os.WriteFile(*output, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		deps.logger.Info("report written", slog.String("path", *output))
		return nil
	}
	fmt.Print(rendered)
	return nil
}
