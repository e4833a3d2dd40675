// Package patterns aggregates detected anomalies into per-principal
// recurrence patterns for report output.
package patterns

import (
	"sort"
	"time"

	"github.com/sentinelstack/audit-sentinel/internal/models"
)

// PrincipalPattern summarises the anomalies attributed to one principal.
type PrincipalPattern struct {
	Principal   string
	Count       int
	Kinds       []models.AnomalyKind
	MaxSeverity int
	LastSeen    time.Time
}

// Mine groups anomalies by principal and returns patterns ordered by count
// descending, then principal name for stable output.
func Mine(anomalies []models.Anomaly) []PrincipalPattern {
	if len(anomalies) == 0 {
		return nil
	}

	stats := make(map[string]*principalAggregate)
	for _, anomaly := range anomalies {
		principal := anomaly.Entry.Principal
		agg, ok := stats[principal]
		if !ok {
			agg = &principalAggregate{kinds: make(map[models.AnomalyKind]struct{})}
			stats[principal] = agg
		}
		agg.count++
		agg.kinds[anomaly.Kind] = struct{}{}
		if anomaly.Severity > agg.maxSeverity {
			agg.maxSeverity = anomaly.Severity
		}
		if anomaly.Entry.Timestamp.After(agg.lastSeen) {
			agg.lastSeen = anomaly.Entry.Timestamp
		}
	}

	patterns := make([]PrincipalPattern, 0, len(stats))
	for principal, agg := range stats {
		kinds := make([]models.AnomalyKind, 0, len(agg.kinds))
		for kind := range agg.kinds {
			kinds = append(kinds, kind)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		patterns = append(patterns, PrincipalPattern{
			Principal:   principal,
			Count:       agg.count,
			Kinds:       kinds,
			MaxSeverity: agg.maxSeverity,
			LastSeen:    agg.lastSeen,
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Count != patterns[j].Count {
			return patterns[i].Count > patterns[j].Count
		}
		return patterns[i].Principal < patterns[j].Principal
	})
	return patterns
}

type principalAggregate struct {
	count       int
	kinds       map[models.AnomalyKind]struct{}
	maxSeverity int
	lastSeen    time.Time
}
