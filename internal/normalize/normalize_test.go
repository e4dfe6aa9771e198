package normalize

import (
	"testing"
	"time"
)

// refMonday is Monday 2026-08-24 at noon UTC.
var refMonday = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

func TestResolveDate(t *testing.T) {
	tests := []struct {
		name   string
		ref    time.Time
		phrase string
		tz     string
		want   string
	}{
		{"empty phrase", refMonday, "", "UTC", ""},
		{"literal iso fast path", refMonday, "on 2026-09-15 please", "UTC", "2026-09-15"},
		{"today", refMonday, "today", "UTC", "2026-08-24"},
		{"tomorrow", refMonday, "tomorrow", "UTC", "2026-08-25"},
		{"in 3 days", refMonday, "in 3 days", "UTC", "2026-08-27"},
		{"in 1 day", refMonday, "in 1 day", "UTC", "2026-08-25"},
		{"next friday from monday", refMonday, "next friday", "UTC", "2026-08-28"},
		{"this wednesday from monday", refMonday, "this wednesday", "UTC", "2026-08-26"},
		{"this monday on a monday is today", refMonday, "this monday", "UTC", "2026-08-24"},
		{"next monday on a monday pushes a week", refMonday, "next monday", "UTC", "2026-08-31"},
		{"bare monday on a monday pushes a week", refMonday, "monday", "UTC", "2026-08-31"},
		{"bare saturday", refMonday, "saturday", "UTC", "2026-08-29"},
		{"unresolvable", refMonday, "sometime soon", "UTC", ""},
		{
			// 20:00 UTC on Monday is already Tuesday 01:30 in Kolkata.
			name:   "today crosses timezone boundary",
			ref:    time.Date(2026, 8, 24, 20, 0, 0, 0, time.UTC),
			phrase: "today",
			tz:     "Asia/Kolkata",
			want:   "2026-08-25",
		},
		{
			name:   "weekday resolves against projected calendar day",
			ref:    time.Date(2026, 8, 24, 20, 0, 0, 0, time.UTC),
			phrase: "next friday",
			tz:     "Asia/Kolkata",
			want:   "2026-08-28",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveDate(tt.ref, tt.phrase, tt.tz); got != tt.want {
				t.Errorf("ResolveDate(%q) = %q, want %q", tt.phrase, got, tt.want)
			}
		})
	}
}

func TestResolveDateIsPure(t *testing.T) {
	first := ResolveDate(refMonday, "next friday", "America/New_York")
	for i := 0; i < 10; i++ {
		if got := ResolveDate(refMonday, "next friday", "America/New_York"); got != first {
			t.Fatalf("iteration %d: got %q, want %q", i, got, first)
		}
	}
}

func TestResolveDateAlwaysValidISO(t *testing.T) {
	phrases := []string{"today", "tomorrow", "in 14 days", "next friday", "this sunday", "wednesday", "2024-02-30"}
	for _, p := range phrases {
		got := ResolveDate(refMonday, p, "Asia/Kolkata")
		if got != "" && !IsValidISODate(got) {
			t.Errorf("ResolveDate(%q) = %q, not a valid ISO date", p, got)
		}
	}
}

func TestResolveTime(t *testing.T) {
	tests := []struct {
		phrase string
		want   string
	}{
		{"", ""},
		{"4pm", "16:00"},
		{"4 pm", "16:00"},
		{"4:30pm", "16:30"},
		{"12pm", "12:00"},
		{"12am", "00:00"},
		{"9am", "09:00"},
		{"16:30", "16:30"},
		{"7", "07:00"},
		{"25", "25:00"}, // bare hour passes through unvalidated
		{"no digits here", ""},
	}
	for _, tt := range tests {
		if got := ResolveTime(tt.phrase); got != tt.want {
			t.Errorf("ResolveTime(%q) = %q, want %q", tt.phrase, got, tt.want)
		}
	}
}

func TestIsValidISODate(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"2026-08-24", true},
		{"2024-02-30", true}, // format gate only, not a calendar gate
		{"2026-8-24", false},
		{"24-08-2026", false},
		{"", false},
		{"2026-08-24T10:00", false},
	}
	for _, tt := range tests {
		if got := IsValidISODate(tt.s); got != tt.want {
			t.Errorf("IsValidISODate(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestLocation(t *testing.T) {
	if Location("").String() != "UTC" {
		t.Error("empty timezone should fall back to UTC")
	}
	if Location("Not/AZone").String() != "UTC" {
		t.Error("unknown timezone should fall back to UTC")
	}
	if Location("Asia/Kolkata").String() != "Asia/Kolkata" {
		t.Error("valid timezone should load")
	}
}
