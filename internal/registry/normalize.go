package registry

import (
	"fmt"
	"strings"
	"time"
)

// DefaultScheduledTime is the fallback slot for a time entry that cannot be
// parsed in any supported representation.
const DefaultScheduledTime = "08:00"

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"15:04:05",
	"3:04 PM",
	"15:04",
}

// NormalizeTime reduces any supported time representation to a zero-padded
// local HH:MM string. Short clock strings pass through re-padded; full
// datetimes are converted to local wall-clock time first. Anything
// unparseable falls back to DefaultScheduledTime.
func NormalizeTime(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DefaultScheduledTime
	}
	if hhmm, ok := parseShortClock(s); ok {
		return hhmm
	}
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if layout == time.RFC3339 || layout == time.RFC3339Nano {
			t = t.In(time.Local)
		}
		return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
	}
	return DefaultScheduledTime
}

// parseShortClock handles "8:00" and "08:00" shapes directly so that a
// missing leading zero does not route through the datetime layouts.
func parseShortClock(s string) (string, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return "", false
	}
	hour, ok := parseClockPart(parts[0], 23)
	if !ok {
		return "", false
	}
	minute, ok := parseClockPart(parts[1], 59)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

func parseClockPart(s string, max int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 2 {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if n > max {
		return 0, false
	}
	return n, true
}
