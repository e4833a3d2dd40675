package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sentinelstack/audit-sentinel/internal/models"
)

// Config captures the settings threaded through the analysis components.
// Every detection threshold lives here instead of in compile-time constants so
// boundary values can be exercised directly.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Detector DetectorConfig `yaml:"detector"`
	Activity ActivityConfig `yaml:"activity"`
	Leases   LeaseConfig    `yaml:"leases"`
	Watch    WatchConfig    `yaml:"watch"`
	Rules    RulesConfig    `yaml:"rules"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DetectorConfig controls the anomaly rules.
type DetectorConfig struct {
	// HighFrequencyThreshold is the per-principal event count that triggers
	// the windowed frequency rule.
	HighFrequencyThreshold int `yaml:"highFrequencyThreshold"`
	// FrequencyWindow is the sliding window the threshold applies to.
	FrequencyWindow time.Duration `yaml:"frequencyWindow"`
	// SensitiveNamespaces overrides the monitored namespace set when non-empty.
	SensitiveNamespaces []string `yaml:"sensitiveNamespaces"`
}

// IsSensitiveNamespace reports whether ns is in the monitored set.
func (c DetectorConfig) IsSensitiveNamespace(ns string) bool {
	for _, candidate := range c.SensitiveNamespaces {
		if ns == candidate {
			return true
		}
	}
	return false
}

// ActivityConfig carries the latency model behind the activity metrics.
type ActivityConfig struct {
	// HumanLatencyMs estimates the decision latency of a manual operation.
	HumanLatencyMs float64 `yaml:"humanLatencyMs"`
	// AutomatedLatencyMs estimates the decision latency of an automated operation.
	AutomatedLatencyMs float64 `yaml:"automatedLatencyMs"`
}

// LeaseConfig controls the lease churn analyzer.
type LeaseConfig struct {
	ChurnWindow      time.Duration `yaml:"churnWindow"`
	ChurnThreshold   int           `yaml:"churnThreshold"`
	ExpectedRenewal  time.Duration `yaml:"expectedRenewal"`
	AbandonThreshold time.Duration `yaml:"abandonThreshold"`
}

// WatchConfig controls the continuous-watch driver.
type WatchConfig struct {
	RefreshInterval time.Duration `yaml:"refreshInterval"`
	// MetricsAddress exposes Prometheus collectors during watch mode when set.
	MetricsAddress string `yaml:"metricsAddress"`
}

// RulesConfig controls recommendation rule-pack loading for reports.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("AUDIT_SENTINEL_CONFIG")
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// Default returns the coded defaults used when no file or override applies.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", JSON: false},
		Detector: DetectorConfig{
			HighFrequencyThreshold: 100,
			FrequencyWindow:        time.Minute,
			SensitiveNamespaces:    models.DefaultSensitiveNamespaces(),
		},
		Activity: ActivityConfig{
			HumanLatencyMs:     60000,
			AutomatedLatencyMs: 60,
		},
		Leases: LeaseConfig{
			ChurnWindow:      time.Minute,
			ChurnThreshold:   10,
			ExpectedRenewal:  15 * time.Second,
			AbandonThreshold: 5 * time.Minute,
		},
		Watch: WatchConfig{
			RefreshInterval: 5 * time.Second,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AUDIT_SENTINEL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("AUDIT_SENTINEL_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("AUDIT_SENTINEL_HIGH_FREQUENCY_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Detector.HighFrequencyThreshold = n
		}
	}
	if v := os.Getenv("AUDIT_SENTINEL_FREQUENCY_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Detector.FrequencyWindow = d
		}
	}
	if v := os.Getenv("AUDIT_SENTINEL_SENSITIVE_NAMESPACES"); v != "" {
		parts := strings.Split(v, ",")
		namespaces := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				namespaces = append(namespaces, trimmed)
			}
		}
		if len(namespaces) > 0 {
			cfg.Detector.SensitiveNamespaces = namespaces
		}
	}
	if v := os.Getenv("AUDIT_SENTINEL_WATCH_REFRESH"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Watch.RefreshInterval = d
		}
	}
	if v := os.Getenv("AUDIT_SENTINEL_METRICS_ADDRESS"); v != "" {
		cfg.Watch.MetricsAddress = v
	}
	if v := os.Getenv("AUDIT_SENTINEL_RULES_PATH"); v != "" {
		cfg.Rules.Path = v
	}
}
