// Package detector evaluates rule-based anomaly checks over an entry snapshot.
package detector

import (
	"fmt"
	"sort"
	"time"

	"github.com/sentinelstack/audit-sentinel/internal/config"
	"github.com/sentinelstack/audit-sentinel/internal/models"
	"github.com/sentinelstack/audit-sentinel/internal/store"
)

// Detector runs every stateless rule against every entry, plus one windowed
// frequency rule over the whole snapshot. It keeps no state between calls:
// the same snapshot always yields the same anomaly list.
type Detector struct {
	cfg config.DetectorConfig
}

// New constructs a Detector with the given rule thresholds.
func New(cfg config.DetectorConfig) *Detector {
	if cfg.HighFrequencyThreshold <= 0 {
		cfg.HighFrequencyThreshold = 100
	}
	if cfg.FrequencyWindow <= 0 {
		cfg.FrequencyWindow = time.Minute
	}
	if len(cfg.SensitiveNamespaces) == 0 {
		cfg.SensitiveNamespaces = models.DefaultSensitiveNamespaces()
	}
	return &Detector{cfg: cfg}
}

// Detect returns all anomalies in the snapshot. Stateless rules run per entry
// in a fixed order; the high-frequency rule runs once over the whole set.
func (d *Detector) Detect(entries *store.EntryStore) []models.Anomaly {
	anomalies := make([]models.Anomaly, 0)

	for _, entry := range entries.Entries() {
		if entry.IsMutation() && d.cfg.IsSensitiveNamespace(entry.Namespace) && !entry.IsAutomated() {
			anomalies = append(anomalies, models.Anomaly{
				Entry:    entry,
				Kind:     models.AnomalySensitiveNamespaceMutation,
				Severity: 7,
				Description: fmt.Sprintf(
					"User '%s' performed %s on %s in sensitive namespace '%s'",
					entry.Principal, entry.Operation, entry.ResourceName, entry.Namespace,
				),
			})
		}

		if entry.StatusCode == 401 || entry.StatusCode == 403 {
			anomalies = append(anomalies, models.Anomaly{
				Entry:    entry,
				Kind:     models.AnomalyAuthenticationFailure,
				Severity: 8,
				Description: fmt.Sprintf(
					"Authentication/authorization failure for '%s' on %s (status: %d)",
					entry.Principal, entry.ResourceName, entry.StatusCode,
				),
			})
		}

		if entry.Operation == "delete" && d.cfg.IsSensitiveNamespace(entry.Namespace) {
			anomalies = append(anomalies, models.Anomaly{
				Entry:    entry,
				Kind:     models.AnomalyCriticalResourceDeletion,
				Severity: 9,
				Description: fmt.Sprintf(
					"Deletion of '%s' in namespace '%s' by '%s'",
					entry.ResourceName, entry.Namespace, entry.Principal,
				),
			})
		}

		if entry.Principal == "unknown" || entry.Principal == "" {
			anomalies = append(anomalies, models.Anomaly{
				Entry:    entry,
				Kind:     models.AnomalyUnknownPrincipal,
				Severity: 6,
				Description: fmt.Sprintf(
					"Unknown principal performed %s on %s",
					entry.Operation, entry.ResourceName,
				),
			})
		}
	}

	anomalies = append(anomalies, d.detectHighFrequency(entries)...)
	return anomalies
}

// detectHighFrequency flags principals that exceed the configured threshold
// within any single window. Timestamps are grouped per principal into an owned
// sorted slice; windows are half-open [start, start+window). The first window
// to reach the threshold produces exactly one anomaly for that principal.
func (d *Detector) detectHighFrequency(entries *store.EntryStore) []models.Anomaly {
	byPrincipal := make(map[string][]time.Time)
	for _, entry := range entries.Entries() {
		byPrincipal[entry.Principal] = append(byPrincipal[entry.Principal], entry.Timestamp)
	}

	// Map iteration order is random; visit principals sorted so repeated runs
	// return equal anomaly lists.
	principals := make([]string, 0, len(byPrincipal))
	for principal := range byPrincipal {
		principals = append(principals, principal)
	}
	sort.Strings(principals)

	anomalies := make([]models.Anomaly, 0)
	for _, principal := range principals {
		timestamps := byPrincipal[principal]
		if len(timestamps) < d.cfg.HighFrequencyThreshold {
			continue
		}
		sort.Slice(timestamps, func(i, j int) bool { return timestamps[i].Before(timestamps[j]) })

		for _, windowStart := range timestamps {
			windowEnd := windowStart.Add(d.cfg.FrequencyWindow)
			count := 0
			for _, ts := range timestamps {
				if !ts.Before(windowStart) && ts.Before(windowEnd) {
					count++
				}
			}
			if count >= d.cfg.HighFrequencyThreshold {
				if entry, ok := firstEntryOf(entries, principal); ok {
					anomalies = append(anomalies, models.Anomaly{
						Entry:    entry,
						Kind:     models.AnomalyHighFrequencyOperations,
						Severity: 5,
						Description: fmt.Sprintf(
							"Principal '%s' performed %d operations within %s",
							principal, count, d.cfg.FrequencyWindow,
						),
					})
				}
				break
			}
		}
	}

	return anomalies
}

func firstEntryOf(entries *store.EntryStore, principal string) (models.Entry, bool) {
	for _, entry := range entries.Entries() {
		if entry.Principal == principal {
			return entry, true
		}
	}
	return models.Entry{}, false
}
