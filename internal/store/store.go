// Package store holds an ordered, immutable-after-load snapshot of canonical
// audit entries together with the filter and summary helpers consumed by the
// presentation layer.
package store

import (
	"sort"
	"strings"
	"time"

	"github.com/sentinelstack/audit-sentinel/internal/models"
)

// EntryStore is an ordered sequence of canonical entries. It copies its input
// once on construction and never mutates it afterwards, so detector and
// aggregator runs over the same store are deterministic.
type EntryStore struct {
	entries []models.Entry
}

// New builds a store from the given entries.
func New(entries []models.Entry) *EntryStore {
	owned := make([]models.Entry, len(entries))
	copy(owned, entries)
	return &EntryStore{entries: owned}
}

// Entries returns the entry snapshot. Callers must not modify it.
func (s *EntryStore) Entries() []models.Entry {
	return s.entries
}

// Len returns the number of entries.
func (s *EntryStore) Len() int {
	return len(s.entries)
}

// FilterByCluster returns entries belonging to the given cluster.
func (s *EntryStore) FilterByCluster(cluster string) []models.Entry {
	return s.filter(func(e models.Entry) bool { return e.Cluster == cluster })
}

// FilterByNamespace returns entries in the given namespace.
func (s *EntryStore) FilterByNamespace(namespace string) []models.Entry {
	return s.filter(func(e models.Entry) bool { return e.Namespace == namespace })
}

// FilterByTimeRange returns entries with start <= timestamp <= end.
func (s *EntryStore) FilterByTimeRange(start, end time.Time) []models.Entry {
	return s.filter(func(e models.Entry) bool {
		return !e.Timestamp.Before(start) && !e.Timestamp.After(end)
	})
}

// Mutations returns all state-changing entries.
func (s *EntryStore) Mutations() []models.Entry {
	return s.filter(models.Entry.IsMutation)
}

// ByPrincipal returns entries whose principal contains the given substring.
func (s *EntryStore) ByPrincipal(principal string) []models.Entry {
	return s.filter(func(e models.Entry) bool {
		return strings.Contains(e.Principal, principal)
	})
}

// Clusters returns the sorted set of distinct cluster names.
func (s *EntryStore) Clusters() []string {
	return s.distinct(func(e models.Entry) string { return e.Cluster })
}

// Namespaces returns the sorted set of distinct namespaces.
func (s *EntryStore) Namespaces() []string {
	return s.distinct(func(e models.Entry) string { return e.Namespace })
}

// ResourceSummary counts entries per resource type.
func (s *EntryStore) ResourceSummary() map[string]int {
	summary := make(map[string]int)
	for _, entry := range s.entries {
		summary[entry.ResourceType]++
	}
	return summary
}

// OperationSummary counts entries per operation.
func (s *EntryStore) OperationSummary() map[string]int {
	summary := make(map[string]int)
	for _, entry := range s.entries {
		summary[entry.Operation]++
	}
	return summary
}

func (s *EntryStore) filter(keep func(models.Entry) bool) []models.Entry {
	matched := make([]models.Entry, 0)
	for _, entry := range s.entries {
		if keep(entry) {
			matched = append(matched, entry)
		}
	}
	return matched
}

func (s *EntryStore) distinct(key func(models.Entry) string) []string {
	set := make(map[string]struct{})
	for _, entry := range s.entries {
		set[key(entry)] = struct{}{}
	}
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
