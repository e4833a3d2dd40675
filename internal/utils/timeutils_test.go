package utils

import (
	"testing"
	"time"
)

func TestParseAuditTimestamp(t *testing.T) {
	cases := []struct {
		value string
		want  time.Time
		ok    bool
	}{
		{"2024-03-15T10:00:00Z", time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), true},
		{"2024-03-15T10:00:00+02:00", time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC), true},
		{"2024-03-15T10:00:00.123456Z", time.Date(2024, 3, 15, 10, 0, 0, 123456000, time.UTC), true},
		{"not a timestamp", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tc := range cases {
		got, ok := ParseAuditTimestamp(tc.value)
		if ok != tc.ok {
			t.Fatalf("ParseAuditTimestamp(%q) ok = %v, want %v", tc.value, ok, tc.ok)
		}
		if ok && !got.Equal(tc.want) {
			t.Fatalf("ParseAuditTimestamp(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestDurationMinutes(t *testing.T) {
	start := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)

	if got := DurationMinutes(start, end); got != 1.5 {
		t.Fatalf("expected 1.5 minutes, got %f", got)
	}
	if got := DurationMinutes(end, start); got != 1.5 {
		t.Fatalf("reversed arguments should still yield 1.5, got %f", got)
	}
	if got := DurationMinutes(start, start); got != 0 {
		t.Fatalf("expected 0 for equal timestamps, got %f", got)
	}
}

func TestDurationMinutesTruncatesSubSecond(t *testing.T) {
	start := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	end := start.Add(90*time.Second + 700*time.Millisecond)

	if got := DurationMinutes(start, end); got != 1.5 {
		t.Fatalf("fractional seconds should be truncated, got %f", got)
	}
	if got := DurationMinutes(start, start.Add(900*time.Millisecond)); got != 0 {
		t.Fatalf("sub-second span should truncate to 0, got %f", got)
	}
}
