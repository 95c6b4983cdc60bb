package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDoseStatus = errors.New("model: invalid dose status")

// DoseStatus is the derived, display-facing state of a dose instance
// relative to the current wall-clock time.
type DoseStatus string

const (
	DoseStatusPending   DoseStatus = "pending"
	DoseStatusCurrent   DoseStatus = "current"
	DoseStatusMissed    DoseStatus = "missed"
	DoseStatusCompleted DoseStatus = "completed"
)

func (s DoseStatus) IsValid() bool {
	switch s {
	case DoseStatusPending, DoseStatusCurrent, DoseStatusMissed, DoseStatusCompleted:
		return true
	default:
		return false
	}
}

// DoseInstance is one occurrence of a supplement at one scheduled clock time
// on the current day. Instances are pure view state: rebuilt wholesale from
// the remote supplement and log lists, never patched in place.
type DoseInstance struct {
	ID            string
	SupplementID  string
	Name          string
	Dosage        string
	DosageForm    DosageForm
	Period        Period
	ScheduledTime string // HH:MM, local clock, zero-padded
	Muted         bool
	Completed     bool
	LogID         string // empty until a log entry exists remotely
}

func (d DoseInstance) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.New("model: dose instance id is required")
	}
	if strings.TrimSpace(d.SupplementID) == "" {
		return errors.New("model: dose instance supplement_id is required")
	}
	if !d.Period.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, d.Period)
	}
	if _, _, err := ParseClock(d.ScheduledTime); err != nil {
		return fmt.Errorf("model: dose instance scheduled_time: %w", err)
	}
	return nil
}

// Active reports whether the instance should have reminder timers armed.
func (d DoseInstance) Active() bool {
	return !d.Muted && !d.Completed
}
