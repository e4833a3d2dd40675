// Package watch implements the continuous-watch driver: it accumulates
// parsed entries from a line stream and re-runs the full detector and
// aggregator pipeline on a fixed interval. Each refresh is a complete
// recompute over the whole accumulated snapshot, a deliberate simplicity
// tradeoff for small inputs.
package watch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sentinelstack/audit-sentinel/internal/aggregator"
	"github.com/sentinelstack/audit-sentinel/internal/detector"
	"github.com/sentinelstack/audit-sentinel/internal/metrics"
	"github.com/sentinelstack/audit-sentinel/internal/models"
	"github.com/sentinelstack/audit-sentinel/internal/parser"
	"github.com/sentinelstack/audit-sentinel/internal/store"
	"github.com/sentinelstack/audit-sentinel/internal/utils"
)

// Display receives the results of one refresh.
type Display func(metrics models.ActivityMetrics, clusters []aggregator.ClusterMetrics, anomalies []models.Anomaly)

// Watcher accumulates entries and periodically recomputes the pipeline.
type Watcher struct {
	logger    *slog.Logger
	interval  time.Duration
	parser    *parser.Parser
	detector  *detector.Detector
	agg       *aggregator.Aggregator
	display   Display
	latencies *utils.LatencyTracker

	entries   []models.Entry
	refreshes int
}

// New constructs a Watcher. The display callback renders each refresh.
func New(
	logger *slog.Logger,
	interval time.Duration,
	p *parser.Parser,
	det *detector.Detector,
	agg *aggregator.Aggregator,
	display Display,
) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{
		logger:    logger,
		interval:  interval,
		parser:    p,
		detector:  det,
		agg:       agg,
		display:   display,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// Run consumes lines until the channel closes or the context is cancelled,
// refreshing the display on every interval tick. A closed channel triggers
// one final refresh so short-lived streams still produce output.
func (w *Watcher) Run(ctx context.Context, lines <-chan string) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				w.refresh()
				return nil
			}
			w.ingest(line)
		case <-ticker.C:
			w.refresh()
		}
	}
}

// ingest parses one input line and appends the resulting entries. Lines that
// fail to parse are skipped; watch mode never aborts on bad input.
func (w *Watcher) ingest(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	entries, err := w.parser.ParseLogs(line)
	if err != nil {
		w.logger.Debug("skipping unparseable line", slog.Any("error", err))
		return
	}
	w.entries = append(w.entries, entries...)
	metrics.AddEntriesParsed(len(entries))
}

// refresh re-runs the full pipeline over the accumulated snapshot.
func (w *Watcher) refresh() {
	if len(w.entries) == 0 {
		return
	}

	snapshot := store.New(w.entries)

	start := time.Now()
	anomalies := w.detector.Detect(snapshot)
	overall := w.agg.Calculate(snapshot)
	clusters := w.agg.CalculatePerCluster(snapshot)
	duration := time.Since(start)

	w.latencies.Observe(duration)
	metrics.ObserveAnalysis(duration)
	metrics.SetAnomalies(countByKind(anomalies))

	w.refreshes++
	if w.refreshes%20 == 0 {
		w.logger.Info("refresh latency",
			slog.Duration("p95", w.latencies.Percentile(95)),
			slog.Int("samples", w.latencies.Count()))
	}

	if w.display != nil {
		w.display(overall, clusters, anomalies)
	}
}

// EntryCount returns how many entries have accumulated.
func (w *Watcher) EntryCount() int {
	return len(w.entries)
}

func countByKind(anomalies []models.Anomaly) map[string]int {
	counts := make(map[string]int)
	for _, anomaly := range anomalies {
		counts[string(anomaly.Kind)]++
	}
	return counts
}
