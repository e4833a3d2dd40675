// Package leases analyzes lease-coordination activity derived from audit
// entries: rapid churn, competing holders, abandoned leases, and renewal
// cadence problems.
package leases

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sentinelstack/audit-sentinel/internal/config"
	"github.com/sentinelstack/audit-sentinel/internal/models"
)

// Action enumerates lease lifecycle actions.
type Action string

const (
	ActionAcquire Action = "acquire"
	ActionRenew   Action = "renew"
	ActionRelease Action = "release"
	ActionExpire  Action = "expire"
)

// Event is one lease action for analysis.
type Event struct {
	Timestamp time.Time
	Namespace string
	LeaseName string
	Action    Action
	Holder    string
}

// ChurnKind enumerates lease anomaly categories.
type ChurnKind string

const (
	// ChurnHigh flags rapid acquire/release cycles.
	ChurnHigh ChurnKind = "HighChurn"
	// ChurnSplitBrain flags multiple holders competing for one lease.
	ChurnSplitBrain ChurnKind = "SplitBrain"
	// ChurnAbandoned flags leases that stop renewing.
	ChurnAbandoned ChurnKind = "AbandonedLease"
	// ChurnAggressiveRenewal flags renewals much faster than expected.
	ChurnAggressiveRenewal ChurnKind = "AggressiveRenewal"
)

// Severity levels for churn anomalies.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ChurnAnomaly is one detected lease coordination problem.
type ChurnAnomaly struct {
	Kind       ChurnKind `json:"kind"`
	Namespace  string    `json:"namespace"`
	LeaseName  string    `json:"lease_name"`
	Severity   Severity  `json:"severity"`
	Details    string    `json:"details"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	EventCount int       `json:"event_count"`
}

// Summary aggregates the analyzed event set.
type Summary struct {
	TotalEvents    int            `json:"total_events"`
	UniqueLeases   int            `json:"unique_leases"`
	EventsByAction map[Action]int `json:"events_by_action"`
}

// Analyzer detects lease churn patterns over a loaded event set.
type Analyzer struct {
	cfg    config.LeaseConfig
	events []Event
}

// New constructs an Analyzer with the given thresholds.
func New(cfg config.LeaseConfig) *Analyzer {
	if cfg.ChurnWindow <= 0 {
		cfg.ChurnWindow = time.Minute
	}
	if cfg.ChurnThreshold <= 0 {
		cfg.ChurnThreshold = 10
	}
	if cfg.ExpectedRenewal <= 0 {
		cfg.ExpectedRenewal = 15 * time.Second
	}
	if cfg.AbandonThreshold <= 0 {
		cfg.AbandonThreshold = 5 * time.Minute
	}
	return &Analyzer{cfg: cfg}
}

// LoadEvents replaces the analyzed event set, sorted by timestamp.
func (a *Analyzer) LoadEvents(events []Event) {
	a.events = make([]Event, len(events))
	copy(a.events, events)
	sort.SliceStable(a.events, func(i, j int) bool {
		return a.events[i].Timestamp.Before(a.events[j].Timestamp)
	})
}

// EventsFromEntries derives lease events from canonical audit entries.
// Only lease-resource entries contribute; the holder is the acting principal.
func EventsFromEntries(entries []models.Entry) []Event {
	events := make([]Event, 0)
	for _, entry := range entries {
		if entry.ResourceType != "leases" {
			continue
		}
		events = append(events, Event{
			Timestamp: entry.Timestamp,
			Namespace: entry.Namespace,
			LeaseName: entry.ResourceName,
			Action:    actionForOperation(entry.Operation),
			Holder:    entry.Principal,
		})
	}
	return events
}

func actionForOperation(operation string) Action {
	switch strings.ToLower(operation) {
	case "create":
		return ActionAcquire
	case "update", "patch":
		return ActionRenew
	case "delete":
		return ActionRelease
	}
	return ActionExpire
}

// Analyze runs every churn detection over the loaded events.
func (a *Analyzer) Analyze() []ChurnAnomaly {
	anomalies := make([]ChurnAnomaly, 0)
	anomalies = append(anomalies, a.detectHighChurn()...)
	anomalies = append(anomalies, a.detectSplitBrain()...)
	anomalies = append(anomalies, a.detectAbandoned()...)
	anomalies = append(anomalies, a.detectAggressiveRenewal()...)
	return anomalies
}

// detectHighChurn flags leases whose event count inside any single window
// exceeds the churn threshold. Windows are half-open [start, start+window).
func (a *Analyzer) detectHighChurn() []ChurnAnomaly {
	anomalies := make([]ChurnAnomaly, 0)
	for _, group := range a.groupByLease() {
		events := group.events
		for i := range events {
			windowEnd := events[i].Timestamp.Add(a.cfg.ChurnWindow)
			count := 0
			for j := i; j < len(events) && events[j].Timestamp.Before(windowEnd); j++ {
				count++
			}
			if count > a.cfg.ChurnThreshold {
				anomalies = append(anomalies, ChurnAnomaly{
					Kind:      ChurnHigh,
					Namespace: group.namespace,
					LeaseName: group.leaseName,
					Severity:  SeverityHigh,
					Details: fmt.Sprintf(
						"%d events inside one %s window (threshold: %d)",
						count, a.cfg.ChurnWindow, a.cfg.ChurnThreshold,
					),
					StartTime:  events[0].Timestamp,
					EndTime:    events[len(events)-1].Timestamp,
					EventCount: len(events),
				})
				break
			}
		}
	}
	return anomalies
}

// detectSplitBrain flags leases acquired by more than two distinct holders.
func (a *Analyzer) detectSplitBrain() []ChurnAnomaly {
	anomalies := make([]ChurnAnomaly, 0)
	for _, group := range a.groupByLease() {
		holders := make(map[string]struct{})
		for _, event := range group.events {
			if event.Action == ActionAcquire && event.Holder != "" {
				holders[event.Holder] = struct{}{}
			}
		}
		if len(holders) > 2 {
			names := make([]string, 0, len(holders))
			for holder := range holders {
				names = append(names, holder)
			}
			sort.Strings(names)
			anomalies = append(anomalies, ChurnAnomaly{
				Kind:      ChurnSplitBrain,
				Namespace: group.namespace,
				LeaseName: group.leaseName,
				Severity:  SeverityCritical,
				Details: fmt.Sprintf(
					"%d distinct holders detected: %s",
					len(names), strings.Join(names, ", "),
				),
				StartTime:  group.events[0].Timestamp,
				EndTime:    group.events[len(group.events)-1].Timestamp,
				EventCount: len(group.events),
			})
		}
	}
	return anomalies
}

// detectAbandoned flags leases whose last acquire/renew predates the end of
// the observed data by more than the abandon threshold.
func (a *Analyzer) detectAbandoned() []ChurnAnomaly {
	if len(a.events) == 0 {
		return nil
	}
	datasetEnd := a.events[len(a.events)-1].Timestamp

	anomalies := make([]ChurnAnomaly, 0)
	for _, group := range a.groupByLease() {
		last := group.events[len(group.events)-1]
		if last.Action != ActionAcquire && last.Action != ActionRenew {
			continue
		}
		gap := datasetEnd.Sub(last.Timestamp)
		if gap >= a.cfg.AbandonThreshold {
			anomalies = append(anomalies, ChurnAnomaly{
				Kind:      ChurnAbandoned,
				Namespace: group.namespace,
				LeaseName: group.leaseName,
				Severity:  SeverityMedium,
				Details: fmt.Sprintf(
					"no activity for %s after last %s (threshold: %s)",
					gap.Round(time.Second), last.Action, a.cfg.AbandonThreshold,
				),
				StartTime:  group.events[0].Timestamp,
				EndTime:    last.Timestamp,
				EventCount: len(group.events),
			})
		}
	}
	return anomalies
}

// detectAggressiveRenewal flags leases whose median renewal interval is less
// than half the expected cadence.
func (a *Analyzer) detectAggressiveRenewal() []ChurnAnomaly {
	anomalies := make([]ChurnAnomaly, 0)
	for _, group := range a.groupByLease() {
		renewals := make([]time.Time, 0)
		for _, event := range group.events {
			if event.Action == ActionRenew {
				renewals = append(renewals, event.Timestamp)
			}
		}
		if len(renewals) < 2 {
			continue
		}
		intervals := make([]time.Duration, 0, len(renewals)-1)
		for i := 1; i < len(renewals); i++ {
			intervals = append(intervals, renewals[i].Sub(renewals[i-1]))
		}
		sort.Slice(intervals, func(i, j int) bool { return intervals[i] < intervals[j] })
		median := intervals[len(intervals)/2]
		if median < a.cfg.ExpectedRenewal/2 {
			anomalies = append(anomalies, ChurnAnomaly{
				Kind:      ChurnAggressiveRenewal,
				Namespace: group.namespace,
				LeaseName: group.leaseName,
				Severity:  SeverityLow,
				Details: fmt.Sprintf(
					"median renewal interval %s, expected about %s",
					median.Round(time.Millisecond), a.cfg.ExpectedRenewal,
				),
				StartTime:  group.events[0].Timestamp,
				EndTime:    group.events[len(group.events)-1].Timestamp,
				EventCount: len(group.events),
			})
		}
	}
	return anomalies
}

// Summarize returns aggregate statistics for the loaded events.
func (a *Analyzer) Summarize() Summary {
	actions := make(map[Action]int)
	for _, event := range a.events {
		actions[event.Action]++
	}
	return Summary{
		TotalEvents:    len(a.events),
		UniqueLeases:   len(a.groupByLease()),
		EventsByAction: actions,
	}
}

type leaseGroup struct {
	namespace string
	leaseName string
	events    []Event
}

// groupByLease buckets events by (namespace, lease), preserving time order,
// with groups sorted for deterministic output.
func (a *Analyzer) groupByLease() []leaseGroup {
	index := make(map[string]*leaseGroup)
	keys := make([]string, 0)
	for _, event := range a.events {
		key := event.Namespace + "/" + event.LeaseName
		group, ok := index[key]
		if !ok {
			group = &leaseGroup{namespace: event.Namespace, leaseName: event.LeaseName}
			index[key] = group
			keys = append(keys, key)
		}
		group.events = append(group.events, event)
	}
	sort.Strings(keys)
	groups := make([]leaseGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, *index[key])
	}
	return groups
}
