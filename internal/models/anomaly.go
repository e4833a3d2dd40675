package models

// AnomalyKind enumerates the closed set of detectable anomaly categories.
type AnomalyKind string

const (
	AnomalySensitiveNamespaceMutation AnomalyKind = "SensitiveNamespaceMutation"
	AnomalyHighFrequencyOperations    AnomalyKind = "HighFrequencyOperations"
	AnomalyUnusualTimeOperation       AnomalyKind = "UnusualTimeOperation"
	AnomalyAuthenticationFailure      AnomalyKind = "AuthenticationFailure"
	AnomalyCriticalResourceDeletion   AnomalyKind = "CriticalResourceDeletion"
	AnomalyUnknownPrincipal           AnomalyKind = "UnknownPrincipal"
)

// String returns a human-readable label for the kind.
func (k AnomalyKind) String() string {
	switch k {
	case AnomalySensitiveNamespaceMutation:
		return "Sensitive Namespace Mutation"
	case AnomalyHighFrequencyOperations:
		return "High Frequency Operations"
	case AnomalyUnusualTimeOperation:
		return "Unusual Time Operation"
	case AnomalyAuthenticationFailure:
		return "Authentication Failure"
	case AnomalyCriticalResourceDeletion:
		return "Critical Resource Deletion"
	case AnomalyUnknownPrincipal:
		return "Unknown Principal"
	}
	return string(k)
}

// Anomaly flags a single suspicious audit entry. Anomalies are derived values:
// recomputed on every detection pass, never persisted or mutated.
type Anomaly struct {
	// Entry is the triggering canonical entry.
	Entry Entry
	Kind  AnomalyKind
	// Severity ranges 1-10, 10 being most severe.
	Severity    int
	Description string
}
