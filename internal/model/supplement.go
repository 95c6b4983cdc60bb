package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidPeriod     = errors.New("model: invalid period")
	ErrInvalidDosageForm = errors.New("model: invalid dosage form")
)

// Period is the time-of-day bucket a dose belongs to.
type Period string

const (
	PeriodMorning   Period = "Morning"
	PeriodAfternoon Period = "Afternoon"
	PeriodEvening   Period = "Evening"
)

// Periods lists all periods in display and scheduling order.
var Periods = []Period{PeriodMorning, PeriodAfternoon, PeriodEvening}

func (p Period) IsValid() bool {
	switch p {
	case PeriodMorning, PeriodAfternoon, PeriodEvening:
		return true
	default:
		return false
	}
}

// Code returns the single-letter period code used in dose instance ids.
func (p Period) Code() string {
	switch p {
	case PeriodMorning:
		return "M"
	case PeriodAfternoon:
		return "A"
	case PeriodEvening:
		return "E"
	default:
		return "?"
	}
}

type DosageForm string

const (
	DosageFormTablet  DosageForm = "tablet"
	DosageFormCapsule DosageForm = "capsule"
	DosageFormSoftgel DosageForm = "softgel"
	DosageFormGummy   DosageForm = "gummy"
	DosageFormPowder  DosageForm = "powder"
	DosageFormLiquid  DosageForm = "liquid"
	DosageFormOther   DosageForm = "other"
)

func (f DosageForm) IsValid() bool {
	switch f {
	case DosageFormTablet, DosageFormCapsule, DosageFormSoftgel, DosageFormGummy,
		DosageFormPowder, DosageFormLiquid, DosageFormOther:
		return true
	default:
		return false
	}
}

// Glyph returns the list icon shown next to a dose of this form.
func (f DosageForm) Glyph() string {
	switch f {
	case DosageFormTablet:
		return "▫"
	case DosageFormCapsule:
		return "◌"
	case DosageFormSoftgel:
		return "●"
	case DosageFormGummy:
		return "◆"
	case DosageFormPowder:
		return "░"
	case DosageFormLiquid:
		return "▿"
	default:
		return "·"
	}
}

// NormalizeDosageForm maps free-form backend values onto a known form,
// falling back to DosageFormOther rather than rejecting the supplement.
func NormalizeDosageForm(raw string) DosageForm {
	f := DosageForm(strings.ToLower(strings.TrimSpace(raw)))
	if f.IsValid() {
		return f
	}
	return DosageFormOther
}

// Supplement is the remote supplement definition as this client consumes it.
// TimesOfDay holds the raw per-period time strings exactly as the backend
// sent them; normalization happens when dose instances are built.
type Supplement struct {
	ID         string
	Name       string
	Dosage     string
	DosageForm DosageForm
	TimesOfDay map[Period][]string
	RemindMe   bool
	// ActiveDays limits the schedule to certain weekdays. Empty means daily.
	ActiveDays []time.Weekday
}

func (s Supplement) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("model: supplement id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("model: supplement name is required")
	}
	if !s.DosageForm.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDosageForm, s.DosageForm)
	}
	for period := range s.TimesOfDay {
		if !period.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
		}
	}
	return nil
}

// ScheduledToday reports whether the supplement's weekday restriction, if
// any, includes the given day.
func (s Supplement) ScheduledToday(day time.Weekday) bool {
	if len(s.ActiveDays) == 0 {
		return true
	}
	for _, d := range s.ActiveDays {
		if d == day {
			return true
		}
	}
	return false
}
