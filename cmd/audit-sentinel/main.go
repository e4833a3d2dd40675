// Command audit-sentinel normalizes Kubernetes and GKE audit logs, flags
// suspicious activity, and reports automation metrics for the analyzed window.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sentinelstack/audit-sentinel/internal/aggregator"
	"github.com/sentinelstack/audit-sentinel/internal/config"
	"github.com/sentinelstack/audit-sentinel/internal/detector"
	"github.com/sentinelstack/audit-sentinel/internal/parser"
	"github.com/sentinelstack/audit-sentinel/internal/utils"
)

const usageText = `audit-sentinel analyzes Kubernetes audit logs.

Usage:
  audit-sentinel <command> [flags]

Commands:
  analyze   Parse audit logs and list detected anomalies
  metrics   Emit activity metrics as JSON
  watch     Continuously analyze a growing log stream
  report    Render a full markdown report
  leases    Analyze lease churn patterns

Run "audit-sentinel <command> -h" for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "analyze":
		err = runAnalyze(args)
	case "metrics":
		err = runMetrics(args)
	case "watch":
		err = runWatch(args)
	case "report":
		err = runReport(args)
	case "leases":
		err = runLeases(args)
	case "help", "-h", "--help":
		fmt.Print(usageText)
	default:
		fmt.Fprintf(os.Stderr, "audit-sentinel: unknown command %q\n\n%s", command, usageText)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "audit-sentinel: %v\n", err)
		os.Exit(1)
	}
}

// runtimeDeps bundles the components every command constructs the same way.
type runtimeDeps struct {
	cfg    *config.Config
	logger *slog.Logger
	parser *parser.Parser
	det    *detector.Detector
	agg    *aggregator.Aggregator
}

func buildDeps(configPath string) (*runtimeDeps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	det := detector.New(cfg.Detector)

	return &runtimeDeps{
		cfg:    cfg,
		logger: logger,
		parser: parser.New(logger),
		det:    det,
		agg:    aggregator.New(cfg.Activity, det),
	}, nil
}
