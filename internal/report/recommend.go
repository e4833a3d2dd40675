package report

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sentinelstack/audit-sentinel/internal/models"
)

// RuleEngine contributes recommendations to reports based on metric and
// anomaly conditions. Rule packs are optional; without one the built-in
// defaults apply.
type RuleEngine struct {
	rules  []Rule
	logger *slog.Logger
}

// Rule represents a single recommendation rule.
type Rule struct {
	ID              string    `yaml:"id"`
	Match           RuleMatch `yaml:"match"`
	Recommendations []string  `yaml:"recommendations"`
}

// RuleMatch defines optional conditions for rule matching. All set conditions
// must hold.
type RuleMatch struct {
	MaxAutomationRatio   *float64 `yaml:"max_automation_ratio"`
	MinAutomationRatio   *float64 `yaml:"min_automation_ratio"`
	MinDecisionLatencyMs *float64 `yaml:"min_decision_latency_ms"`
	AnomalyKinds         []string `yaml:"anomaly_kinds"`
}

// RuleConfigFile is the YAML root structure.
type RuleConfigFile struct {
	Rules []Rule `yaml:"rules"`
}

// NewRuleEngine loads rules from the provided path. If path is empty or the
// file does not exist, returns a nil engine.
func NewRuleEngine(path string, logger *slog.Logger) (*RuleEngine, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var cfg RuleConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleEngine{rules: cfg.Rules, logger: logger}, nil
}

// Recommend evaluates every rule against the metrics and anomaly set.
func (e *RuleEngine) Recommend(metrics models.ActivityMetrics, anomalies []models.Anomaly) []string {
	if e == nil {
		return nil
	}

	matched := make([]string, 0)
	for _, rule := range e.rules {
		if rule.Match.MaxAutomationRatio != nil && metrics.AutomationRatio > *rule.Match.MaxAutomationRatio {
			continue
		}
		if rule.Match.MinAutomationRatio != nil && metrics.AutomationRatio < *rule.Match.MinAutomationRatio {
			continue
		}
		if rule.Match.MinDecisionLatencyMs != nil && metrics.DecisionLatencyMs < *rule.Match.MinDecisionLatencyMs {
			continue
		}
		if len(rule.Match.AnomalyKinds) > 0 && !anomaliesContainKind(rule.Match.AnomalyKinds, anomalies) {
			continue
		}
		matched = appendUnique(matched, rule.Recommendations...)
	}
	return matched
}

// DefaultRecommendations mirrors the built-in advice used when no rule pack
// matches.
func DefaultRecommendations(metrics models.ActivityMetrics) []string {
	recs := make([]string, 0, 4)
	if metrics.AutomationRatio < 0.8 {
		recs = append(recs, "Increase Automation: current automation ratio is below 80%. Consider automating more routine operations.")
	}
	if metrics.AnomalyCount > 0 {
		recs = append(recs, "Review Anomalies: detected anomalies require attention. Review and address security concerns.")
	}
	if metrics.DecisionLatencyMs > 10000 {
		recs = append(recs, "Reduce Latency: high average decision latency. Consider implementing more automated decision-making.")
	}
	if metrics.AutomationRatio >= 0.8 && metrics.AnomalyCount == 0 {
		recs = append(recs, "Maintain Excellence: system is operating with high automation and no anomalies. Continue monitoring.")
	}
	return recs
}

func anomaliesContainKind(kinds []string, anomalies []models.Anomaly) bool {
	for _, anomaly := range anomalies {
		for _, kind := range kinds {
			if strings.EqualFold(kind, string(anomaly.Kind)) {
				return true
			}
		}
	}
	return false
}

func appendUnique(existing []string, additions ...string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		seen[rec] = struct{}{}
	}
	for _, item := range additions {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		existing = append(existing, item)
		seen[item] = struct{}{}
	}
	return existing
}
