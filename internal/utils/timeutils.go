package utils

import "time"

// naiveUTCLayout matches timestamps that carry a trailing Z but no offset and
// optional fractional seconds, which some exporters emit instead of RFC3339.
const naiveUTCLayout = "2006-01-02T15:04:05.999999999Z"

// ParseAuditTimestamp parses a timestamp string the way audit log exporters
// write them: RFC3339 first, then the bare UTC layout. The boolean reports
// whether parsing succeeded.
func ParseAuditTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(naiveUTCLayout, value); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// DurationMinutes converts a pair of timestamps into minute duration.
// Sub-second remainder is truncated so spans are whole seconds over 60.
func DurationMinutes(start, end time.Time) float64 {
	if end.Before(start) {
		start, end = end, start
	}
	seconds := int64(end.Sub(start) / time.Second)
	return float64(seconds) / 60.0
}
