package model

import (
	"fmt"
	"time"
)

// CurrentWindowMinutes is the half-width of the "current" window around a
// dose's scheduled time. A dose counts as current from 30 minutes before to
// 30 minutes after its scheduled minute. Fixed design constant, not a knob.
const CurrentWindowMinutes = 30

// ParseClock parses a zero-padded HH:MM clock string.
func ParseClock(s string) (hour, minute int, err error) {
	t, parseErr := time.Parse("15:04", s)
	if parseErr != nil {
		return 0, 0, fmt.Errorf("parse clock %q: %w", s, parseErr)
	}
	return t.Hour(), t.Minute(), nil
}

// MinuteOfDay returns the minute index (0..1439) of t's local wall clock.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// PeriodOf buckets a local wall-clock hour into a period.
func PeriodOf(hour int) Period {
	switch {
	case hour < 12:
		return PeriodMorning
	case hour < 18:
		return PeriodAfternoon
	default:
		return PeriodEvening
	}
}

// StatusOf classifies a dose against "now". The diff is computed within the
// same day only: a dose near midnight observed from the other side of
// midnight reads as missed (or pending) by the full same-day distance. That
// non-wrapping boundary is the documented behavior.
func StatusOf(scheduled string, completed bool, now time.Time) DoseStatus {
	if completed {
		return DoseStatusCompleted
	}
	hour, minute, err := ParseClock(scheduled)
	if err != nil {
		return DoseStatusPending
	}
	diff := hour*60 + minute - MinuteOfDay(now)
	switch {
	case diff >= -CurrentWindowMinutes && diff <= CurrentWindowMinutes:
		return DoseStatusCurrent
	case diff < -CurrentWindowMinutes:
		return DoseStatusMissed
	default:
		return DoseStatusPending
	}
}

// DueAt resolves a scheduled HH:MM to the next absolute trigger time: today
// if the minute has not passed yet, otherwise the same clock time tomorrow.
// Rolling past times forward keeps a refresh from replaying old reminders.
func DueAt(scheduled string, now time.Time) (time.Time, error) {
	hour, minute, err := ParseClock(scheduled)
	if err != nil {
		return time.Time{}, err
	}
	due := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !due.After(now) {
		due = due.Add(24 * time.Hour)
	}
	return due, nil
}
