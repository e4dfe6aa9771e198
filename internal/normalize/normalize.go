// Package normalize resolves natural-language date and time phrases into
// canonical ISO calendar dates and 24-hour clock times.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDateLayout = "2006-01-02"

// weekdayIndex maps weekday names to time.Weekday (Sunday=0 … Saturday=6).
var weekdayIndex = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var (
	isoDateRE       = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	isoDateStrictRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	inDaysRE        = regexp.MustCompile(`in\s+(\d+)\s+days?`)
	weekdayRE       = regexp.MustCompile(`(?:next|this)?\s*(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`)
	clockRE         = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
)

// Location resolves an IANA timezone name, falling back to UTC when the
// name is empty or unknown.
func Location(timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ResolveDate converts a date phrase into a YYYY-MM-DD date, interpreted
// against the reference instant projected into the given timezone. The
// projection happens before any day arithmetic so "today" near midnight
// lands on the right side of the timezone boundary. Returns "" when the
// phrase cannot be resolved.
//
// A bare weekday ("friday") and a "next"-prefixed weekday never resolve to
// the reference day itself: on a Friday both mean the Friday seven days
// out. Only "this friday" accepts the current day.
func ResolveDate(ref time.Time, phrase, timezone string) string {
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" {
		return ""
	}

	// Literal ISO date anywhere in the phrase wins outright.
	if m := isoDateRE.FindString(p); m != "" {
		return m
	}

	local := ref.In(Location(timezone))

	switch p {
	case "today":
		return local.Format(isoDateLayout)
	case "tomorrow":
		return local.AddDate(0, 0, 1).Format(isoDateLayout)
	}

	if m := inDaysRE.FindStringSubmatch(p); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return local.AddDate(0, 0, n).Format(isoDateLayout)
		}
	}

	if m := weekdayRE.FindStringSubmatch(p); m != nil {
		target := weekdayIndex[m[1]]
		daysAhead := (int(target) - int(local.Weekday()) + 7) % 7
		if daysAhead == 0 {
			if strings.HasPrefix(p, "next") {
				daysAhead = 7
			} else if !strings.Contains(p, "this") {
				// Unqualified "friday" said on a Friday means next week.
				daysAhead = 7
			}
		}
		return local.AddDate(0, 0, daysAhead).Format(isoDateLayout)
	}

	return ""
}

// ResolveTime converts a time phrase into "HH:MM" 24-hour form. The minute
// defaults to 00, "pm" adds 12 unless the hour is already 12, "am" maps 12
// to 0, and a bare hour with no am/pm marker passes through unconverted.
// Returns "" when no hour digits are found.
func ResolveTime(phrase string) string {
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" {
		return ""
	}
	m := clockRE.FindStringSubmatch(p)
	if m == nil {
		return ""
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return ""
	}
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	switch m[3] {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// IsValidISODate reports whether s has the strict YYYY-MM-DD shape. This is
// a format gate, not a calendar gate: 2024-02-30 passes.
func IsValidISODate(s string) bool {
	return isoDateStrictRE.MatchString(s)
}
