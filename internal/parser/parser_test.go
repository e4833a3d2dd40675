package parser

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

const gkeEntry = `{
  "timestamp": "2024-03-15T10:00:00Z",
  "resource": {"labels": {"cluster_name": "red-team"}},
  "protoPayload": {
    "authenticationInfo": {"principalEmail": "system:serviceaccount:kube-system:deployment-controller"},
    "methodName": "io.k8s.core.v1.pods.update",
    "resourceName": "projects/x/zones/us-east1/clusters/red-team/k8s/namespaces/production/pods/web-1"
  }
}`

const nativeEntry = `{
  "timestamp": "2024-03-15T10:01:00Z",
  "user": {"username": "admin@example.com"},
  "verb": "delete",
  "objectRef": {"namespace": "kube-system", "name": "coredns", "resource": "deployments"},
  "responseStatus": {"code": 200}
}`

func TestParseGKEEntry(t *testing.T) {
	entries, err := ParseLogs(gkeEntry)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.Principal != "system:serviceaccount:kube-system:deployment-controller" {
		t.Fatalf("unexpected principal %q", e.Principal)
	}
	if e.Operation != "update" {
		t.Fatalf("expected operation update, got %q", e.Operation)
	}
	if e.Namespace != "production" {
		t.Fatalf("expected namespace production, got %q", e.Namespace)
	}
	if e.ResourceName != "web-1" {
		t.Fatalf("expected resource name web-1, got %q", e.ResourceName)
	}
	if e.Cluster != "red-team" {
		t.Fatalf("expected cluster red-team, got %q", e.Cluster)
	}
	if e.ResourceType != "pods" {
		t.Fatalf("expected resource type pods, got %q", e.ResourceType)
	}
	if e.StatusCode != 200 {
		t.Fatalf("expected default status 200, got %d", e.StatusCode)
	}
	if !e.IsSystemOperation {
		t.Fatalf("service account principal should be flagged as system operation")
	}
	want := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	if !e.Timestamp.Equal(want) {
		t.Fatalf("expected timestamp %v, got %v", want, e.Timestamp)
	}
}

func TestParseNativeEntry(t *testing.T) {
	entries, err := ParseLogs(nativeEntry)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.Principal != "admin@example.com" {
		t.Fatalf("unexpected principal %q", e.Principal)
	}
	if e.Operation != "delete" {
		t.Fatalf("expected operation delete, got %q", e.Operation)
	}
	if e.Namespace != "kube-system" {
		t.Fatalf("expected namespace kube-system, got %q", e.Namespace)
	}
	if e.ResourceName != "coredns" {
		t.Fatalf("expected resource name coredns, got %q", e.ResourceName)
	}
	if e.ResourceType != "deployments" {
		t.Fatalf("expected resource type deployments, got %q", e.ResourceType)
	}
	if e.Cluster != "unknown" {
		t.Fatalf("expected cluster unknown, got %q", e.Cluster)
	}
	if e.IsSystemOperation {
		t.Fatalf("human principal should not be flagged as system operation")
	}
}

func TestParseShapesEquivalent(t *testing.T) {
	asArray := "[" + gkeEntry + "," + nativeEntry + "]"
	asLines := compactLine(t, gkeEntry) + "\n" + compactLine(t, nativeEntry)

	fromArray, err := ParseLogs(asArray)
	if err != nil {
		t.Fatalf("parse array: %v", err)
	}
	fromLines, err := ParseLogs(asLines)
	if err != nil {
		t.Fatalf("parse ndjson: %v", err)
	}

	if len(fromArray) != 2 || len(fromLines) != 2 {
		t.Fatalf("expected 2 entries from each shape, got %d and %d", len(fromArray), len(fromLines))
	}
	for i := range fromArray {
		if fromArray[i].Principal != fromLines[i].Principal ||
			fromArray[i].Operation != fromLines[i].Operation ||
			fromArray[i].Namespace != fromLines[i].Namespace ||
			fromArray[i].ResourceName != fromLines[i].ResourceName ||
			fromArray[i].Cluster != fromLines[i].Cluster {
			t.Fatalf("entry %d differs between array and ndjson forms", i)
		}
	}
}

func TestParseDefaults(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := New(nil)
	p.now = func() time.Time { return fixed }

	entries, err := p.ParseLogs(`{}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	e := entries[0]
	if e.Principal != "unknown" {
		t.Fatalf("expected default principal, got %q", e.Principal)
	}
	if e.Operation != "unknown" {
		t.Fatalf("expected default operation, got %q", e.Operation)
	}
	if e.Namespace != "default" {
		t.Fatalf("expected default namespace, got %q", e.Namespace)
	}
	if e.ResourceName != "unknown" {
		t.Fatalf("expected default resource name, got %q", e.ResourceName)
	}
	if e.Cluster != "unknown" {
		t.Fatalf("expected default cluster, got %q", e.Cluster)
	}
	if e.ResourceType != "unknown" {
		t.Fatalf("expected default resource type, got %q", e.ResourceType)
	}
	if e.StatusCode != 200 {
		t.Fatalf("expected default status 200, got %d", e.StatusCode)
	}
	if !e.Timestamp.Equal(fixed) {
		t.Fatalf("expected fallback timestamp %v, got %v", fixed, e.Timestamp)
	}
}

func TestParseNullInput(t *testing.T) {
	// The literal "null" decodes into a nil slice, but it is not an array:
	// it must fall through to the line strategy and normalize into one
	// fully-defaulted entry.
	entries, err := ParseLogs("null")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 defaulted entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Principal != "unknown" || e.Namespace != "default" || e.StatusCode != 200 {
		t.Fatalf("expected defaulted fields, got %+v", e)
	}
}

func TestParseEmptyArray(t *testing.T) {
	entries, err := ParseLogs("[]")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("empty array should yield an empty list, got %d entries", len(entries))
	}
}

func TestNDJSONSkipsBadLines(t *testing.T) {
	input := compactLine(t, gkeEntry) + "\nthis is not json\n" + compactLine(t, nativeEntry)
	entries, err := ParseLogs(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected bad line skipped, got %d entries", len(entries))
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := ParseLogs("definitely not json")
	if err == nil {
		t.Fatalf("expected error for malformed input")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Kind != KindJSONSyntax {
		t.Fatalf("expected syntax kind, got %v", parseErr.Kind)
	}
}

func TestNormalizeOperation(t *testing.T) {
	cases := []struct {
		method string
		want   string
	}{
		{"io.k8s.core.v1.pods.create", "create"},
		{"update", "update"},
		{"io.k8s.core.v1.configmaps.patch", "update"},
		{"delete", "delete"},
		{"get", "read"},
		{"list", "read"},
		{"watch", "read"},
		{"deletecollection", "delete"},
		{"custom.verb", "custom.verb"},
	}
	for _, tc := range cases {
		if got := normalizeOperation(tc.method); got != tc.want {
			t.Fatalf("normalizeOperation(%q) = %q, want %q", tc.method, got, tc.want)
		}
	}
}

func TestTimestampFallback(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p := New(nil)
	p.now = func() time.Time { return fixed }

	entries, err := p.ParseLogs(`{"timestamp": "not a time"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !entries[0].Timestamp.Equal(fixed) {
		t.Fatalf("expected fallback to injected now, got %v", entries[0].Timestamp)
	}
}

func TestNaiveTimestampAccepted(t *testing.T) {
	input := fmt.Sprintf(`{"timestamp": %q}`, "2024-03-15T10:00:00.123456Z")
	entries, err := ParseLogs(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2024, 3, 15, 10, 0, 0, 123456000, time.UTC)
	if !entries[0].Timestamp.Equal(want) {
		t.Fatalf("expected %v, got %v", want, entries[0].Timestamp)
	}
}

// compactLine flattens a pretty-printed JSON object onto one line so it can
// serve as NDJSON input.
func compactLine(t *testing.T, pretty string) string {
	t.Helper()
	out := ""
	inString := false
	for _, r := range pretty {
		if r == '"' {
			inString = !inString
		}
		if !inString && (r == '\n' || r == ' ') {
			continue
		}
		out += string(r)
	}
	return out
}
