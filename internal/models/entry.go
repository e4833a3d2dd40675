package models

import (
	"strings"
	"time"
)

// Entry is the canonical, schema-independent representation of one audit record.
// String fields are never empty-by-accident: the parser substitutes fixed defaults
// for anything it cannot resolve.
type Entry struct {
	Timestamp         time.Time
	Principal         string
	ResourceType      string
	Operation         string
	Namespace         string
	ResourceName      string
	Cluster           string
	IsSystemOperation bool
	StatusCode        int
	// RawPayload keeps the original decoded record for downstream inspection.
	// The core never interprets it.
	RawPayload map[string]interface{}
}

// automatedMarkers are substrings that identify non-human principals. The set
// uses the broader "controller" token, which also covers "controller-manager".
var automatedMarkers = []string{"serviceaccount", "controller", "scheduler"}

// IsAutomatedPrincipal reports whether a principal names a system component.
// Both the parser and the detector route through this predicate so the
// IsSystemOperation flag and anomaly rules can never disagree.
func IsAutomatedPrincipal(principal string) bool {
	if strings.HasPrefix(principal, "system:") {
		return true
	}
	for _, marker := range automatedMarkers {
		if strings.Contains(principal, marker) {
			return true
		}
	}
	return false
}

// IsAutomated reports whether the operation was initiated by a system component.
func (e Entry) IsAutomated() bool {
	return e.IsSystemOperation || IsAutomatedPrincipal(e.Principal)
}

// IsMutation reports whether the operation changes cluster state.
func (e Entry) IsMutation() bool {
	switch strings.ToLower(e.Operation) {
	case "create", "update", "patch", "delete":
		return true
	}
	return false
}

// DefaultSensitiveNamespaces are the namespaces monitored for mutations and
// deletions unless the configuration overrides the set.
func DefaultSensitiveNamespaces() []string {
	return []string{"kube-system", "kube-public", "kube-node-lease", "istio-system"}
}
