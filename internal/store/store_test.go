package store

import (
	"testing"
	"time"

	"github.com/sentinelstack/audit-sentinel/internal/models"
)

var baseTime = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func sampleEntries() []models.Entry {
	return []models.Entry{
		{Timestamp: baseTime, Principal: "admin@example.com", Operation: "create", Namespace: "default", ResourceType: "pods", Cluster: "prod"},
		{Timestamp: baseTime.Add(time.Minute), Principal: "system:kube-scheduler", Operation: "read", Namespace: "kube-system", ResourceType: "pods", Cluster: "prod"},
		{Timestamp: baseTime.Add(2 * time.Minute), Principal: "admin@example.com", Operation: "delete", Namespace: "default", ResourceType: "configmaps", Cluster: "staging"},
	}
}

func TestStoreIsolation(t *testing.T) {
	entries := sampleEntries()
	s := New(entries)

	entries[0].Principal = "mutated"
	if s.Entries()[0].Principal != "admin@example.com" {
		t.Fatalf("store should copy entries on construction")
	}
}

func TestFilterByCluster(t *testing.T) {
	s := New(sampleEntries())
	prod := s.FilterByCluster("prod")
	if len(prod) != 2 {
		t.Fatalf("expected 2 prod entries, got %d", len(prod))
	}
	if got := s.FilterByCluster("absent"); len(got) != 0 {
		t.Fatalf("expected no entries for unknown cluster, got %d", len(got))
	}
}

func TestFilterByTimeRangeInclusive(t *testing.T) {
	s := New(sampleEntries())
	got := s.FilterByTimeRange(baseTime, baseTime.Add(time.Minute))
	if len(got) != 2 {
		t.Fatalf("range bounds should be inclusive, got %d entries", len(got))
	}
}

func TestMutations(t *testing.T) {
	s := New(sampleEntries())
	mutations := s.Mutations()
	if len(mutations) != 2 {
		t.Fatalf("expected create and delete to count as mutations, got %d", len(mutations))
	}
}

func TestByPrincipalSubstring(t *testing.T) {
	s := New(sampleEntries())
	if got := s.ByPrincipal("admin"); len(got) != 2 {
		t.Fatalf("principal match should be a substring match, got %d entries", len(got))
	}
}

func TestDistinctSorted(t *testing.T) {
	s := New(sampleEntries())

	clusters := s.Clusters()
	if len(clusters) != 2 || clusters[0] != "prod" || clusters[1] != "staging" {
		t.Fatalf("unexpected clusters %v", clusters)
	}

	namespaces := s.Namespaces()
	if len(namespaces) != 2 || namespaces[0] != "default" || namespaces[1] != "kube-system" {
		t.Fatalf("unexpected namespaces %v", namespaces)
	}
}

func TestSummaries(t *testing.T) {
	s := New(sampleEntries())

	resources := s.ResourceSummary()
	if resources["pods"] != 2 || resources["configmaps"] != 1 {
		t.Fatalf("unexpected resource summary %v", resources)
	}

	operations := s.OperationSummary()
	if operations["create"] != 1 || operations["read"] != 1 || operations["delete"] != 1 {
		t.Fatalf("unexpected operation summary %v", operations)
	}
}
