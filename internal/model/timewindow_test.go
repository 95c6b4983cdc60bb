package model

import (
	"fmt"
	"testing"
	"time"
)

func clockAt(minute int) time.Time {
	return time.Date(2026, 8, 28, minute/60, minute%60, 0, 0, time.UTC)
}

func TestPeriodOf(t *testing.T) {
	cases := []struct {
		hour int
		want Period
	}{
		{0, PeriodMorning},
		{7, PeriodMorning},
		{11, PeriodMorning},
		{12, PeriodAfternoon},
		{17, PeriodAfternoon},
		{18, PeriodEvening},
		{23, PeriodEvening},
	}
	for _, tc := range cases {
		if got := PeriodOf(tc.hour); got != tc.want {
			t.Fatalf("PeriodOf(%d) = %q, want %q", tc.hour, got, tc.want)
		}
	}
}

func TestStatusOfSweepsAllMinutePairs(t *testing.T) {
	// Exhaustive sweep over every scheduled minute against a sample of
	// "now" minutes. The classification must match the plain same-day
	// diff rule, with no wrap across midnight.
	nowMinutes := []int{0, 29, 30, 31, 420, 490, 719, 720, 1050, 1409, 1439}
	for scheduled := 0; scheduled < 24*60; scheduled++ {
		label := fmt.Sprintf("%02d:%02d", scheduled/60, scheduled%60)
		for _, nowMin := range nowMinutes {
			diff := scheduled - nowMin
			want := DoseStatusPending
			switch {
			case diff >= -CurrentWindowMinutes && diff <= CurrentWindowMinutes:
				want = DoseStatusCurrent
			case diff < -CurrentWindowMinutes:
				want = DoseStatusMissed
			}
			got := StatusOf(label, false, clockAt(nowMin))
			if got != want {
				t.Fatalf("StatusOf(%s, now=%d) = %q, want %q", label, nowMin, got, want)
			}
		}
	}
}

func TestStatusOfScenarios(t *testing.T) {
	// Vitamin D3 at 08:00: current at 08:10, missed at 09:00.
	if got := StatusOf("08:00", false, clockAt(8*60+10)); got != DoseStatusCurrent {
		t.Fatalf("expected current at 08:10, got %q", got)
	}
	if got := StatusOf("08:00", false, clockAt(9*60)); got != DoseStatusMissed {
		t.Fatalf("expected missed at 09:00, got %q", got)
	}
	if got := StatusOf("08:00", true, clockAt(9*60)); got != DoseStatusCompleted {
		t.Fatalf("completed flag must win, got %q", got)
	}
	if got := StatusOf("not-a-time", false, clockAt(9*60)); got != DoseStatusPending {
		t.Fatalf("unparseable schedule should read pending, got %q", got)
	}
}

func TestStatusOfDoesNotWrapAroundMidnight(t *testing.T) {
	// A dose at 23:50 seen at 00:05 is 1425 minutes in the future on the
	// same-day scale, so it reads pending rather than current.
	if got := StatusOf("23:50", false, clockAt(5)); got != DoseStatusPending {
		t.Fatalf("expected pending across midnight, got %q", got)
	}
	// And a dose at 00:05 seen at 23:50 reads missed by the same rule.
	if got := StatusOf("00:05", false, clockAt(23*60+50)); got != DoseStatusMissed {
		t.Fatalf("expected missed across midnight, got %q", got)
	}
}

func TestDueAtRollsPastTimesToTomorrow(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	due, err := DueAt("10:30", now)
	if err != nil {
		t.Fatalf("due at: %v", err)
	}
	if due.Day() != now.Day() || due.Hour() != 10 || due.Minute() != 30 {
		t.Fatalf("expected same-day 10:30, got %v", due)
	}

	due, err = DueAt("08:00", now)
	if err != nil {
		t.Fatalf("due at: %v", err)
	}
	if !due.After(now) || due.Day() != now.Day()+1 {
		t.Fatalf("expected tomorrow 08:00, got %v", due)
	}

	if _, err := DueAt("25:99", now); err == nil {
		t.Fatal("expected error for invalid clock")
	}
}
