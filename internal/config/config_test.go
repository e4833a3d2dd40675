package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Detector.HighFrequencyThreshold != 100 {
		t.Fatalf("expected default threshold 100, got %d", cfg.Detector.HighFrequencyThreshold)
	}
	if cfg.Detector.FrequencyWindow != time.Minute {
		t.Fatalf("expected default window 1m, got %v", cfg.Detector.FrequencyWindow)
	}
	if !cfg.Detector.IsSensitiveNamespace("kube-system") {
		t.Fatalf("kube-system should be sensitive by default")
	}
	if cfg.Activity.HumanLatencyMs != 60000 || cfg.Activity.AutomatedLatencyMs != 60 {
		t.Fatalf("unexpected latency defaults: %+v", cfg.Activity)
	}
	if cfg.Watch.RefreshInterval != 5*time.Second {
		t.Fatalf("expected 5s refresh default, got %v", cfg.Watch.RefreshInterval)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(`logging:
  level: debug
  json: true
detector:
  highFrequencyThreshold: 25
  frequencyWindow: 30s
  sensitiveNamespaces: ["payments", "vault"]
rules:
  path: /etc/audit-sentinel/rules.yaml
`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.JSON {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.Detector.HighFrequencyThreshold != 25 {
		t.Fatalf("expected threshold 25, got %d", cfg.Detector.HighFrequencyThreshold)
	}
	if cfg.Detector.FrequencyWindow != 30*time.Second {
		t.Fatalf("expected window 30s, got %v", cfg.Detector.FrequencyWindow)
	}
	if cfg.Detector.IsSensitiveNamespace("kube-system") {
		t.Fatalf("file override should replace the default namespace set")
	}
	if !cfg.Detector.IsSensitiveNamespace("payments") {
		t.Fatalf("payments should be sensitive after override")
	}
	if cfg.Rules.Path != "/etc/audit-sentinel/rules.yaml" {
		t.Fatalf("unexpected rules path %q", cfg.Rules.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AUDIT_SENTINEL_LOG_LEVEL", "warn")
	t.Setenv("AUDIT_SENTINEL_LOG_FORMAT", "json")
	t.Setenv("AUDIT_SENTINEL_HIGH_FREQUENCY_THRESHOLD", "42")
	t.Setenv("AUDIT_SENTINEL_FREQUENCY_WINDOW", "2m")
	t.Setenv("AUDIT_SENTINEL_SENSITIVE_NAMESPACES", "alpha, beta , ")
	t.Setenv("AUDIT_SENTINEL_METRICS_ADDRESS", ":9091")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "warn" || !cfg.Logging.JSON {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.Detector.HighFrequencyThreshold != 42 {
		t.Fatalf("expected threshold 42, got %d", cfg.Detector.HighFrequencyThreshold)
	}
	if cfg.Detector.FrequencyWindow != 2*time.Minute {
		t.Fatalf("expected window 2m, got %v", cfg.Detector.FrequencyWindow)
	}
	if len(cfg.Detector.SensitiveNamespaces) != 2 || cfg.Detector.SensitiveNamespaces[0] != "alpha" || cfg.Detector.SensitiveNamespaces[1] != "beta" {
		t.Fatalf("unexpected namespaces %v", cfg.Detector.SensitiveNamespaces)
	}
	if cfg.Watch.MetricsAddress != ":9091" {
		t.Fatalf("expected metrics address override, got %q", cfg.Watch.MetricsAddress)
	}
}

func TestInvalidEnvIgnored(t *testing.T) {
	t.Setenv("AUDIT_SENTINEL_HIGH_FREQUENCY_THRESHOLD", "not-a-number")
	t.Setenv("AUDIT_SENTINEL_FREQUENCY_WINDOW", "-1m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Detector.HighFrequencyThreshold != 100 {
		t.Fatalf("invalid threshold should keep default, got %d", cfg.Detector.HighFrequencyThreshold)
	}
	if cfg.Detector.FrequencyWindow != time.Minute {
		t.Fatalf("invalid window should keep default, got %v", cfg.Detector.FrequencyWindow)
	}
}
