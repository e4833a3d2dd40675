package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sentinelstack/audit-sentinel/internal/aggregator"
	"github.com/sentinelstack/audit-sentinel/internal/metrics"
	"github.com/sentinelstack/audit-sentinel/internal/models"
	"github.com/sentinelstack/audit-sentinel/internal/report"
	"github.com/sentinelstack/audit-sentinel/internal/watch"
)

// clearScreen repositions the cursor so each refresh repaints in place.
const clearScreen = "\x1b[2J\x1b[1;1H"

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	input := fs.String("input", "-", "Audit log file to follow, or - for stdin")
	refresh := fs.Duration("refresh", 0, "Refresh interval, overrides config")
	metricsAddr := fs.String("metrics-addr", "", "Prometheus listen address, overrides config")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deps, err := buildDeps(*configPath)
	if err != nil {
		return err
	}

	interval := deps.cfg.Watch.RefreshInterval
	if *refresh > 0 {
		interval = *refresh
	}
	addr := deps.cfg.Watch.MetricsAddress
	if *metricsAddr != "" {
		addr = *metricsAddr
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			deps.logger.Info("metrics server listening", slog.String("address", addr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				deps.logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	display := func(overall models.ActivityMetrics, clusters []aggregator.ClusterMetrics, anomalies []models.Anomaly) {
		fmt.Print(clearScreen)
		fmt.Print(report.Dashboard(overall, clusters))
		if len(anomalies) > 0 {
			fmt.Print(report.AnomalyList(anomalies))
		}
	}

	watcher := watch.New(deps.logger, interval, deps.parser, deps.det, deps.agg, display)

	var lines <-chan string
	if *input == "" || *input == "-" {
		lines = watch.Lines(ctx, os.Stdin)
	} else {
		lines, err = watch.FollowFile(ctx, *input, deps.logger)
		if err != nil {
			return err
		}
	}

	deps.logger.Info("watching audit stream",
		slog.String("input", *input),
		slog.Duration("refresh", interval))

	runErr := watcher.Run(ctx, lines)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancel()
	}

	if errors.Is(runErr, context.Canceled) {
		deps.logger.Info("watch stopped", slog.Int("entries", watcher.EntryCount()))
		return nil
	}
	return runErr
}
