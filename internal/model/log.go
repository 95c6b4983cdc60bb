package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidLogStatus = errors.New("model: invalid log status")

// LogStatus is the persisted status of a dose log entry. The backend owns
// these records; the client treats them as authoritative.
type LogStatus string

const (
	LogStatusPending LogStatus = "pending"
	LogStatusTaken   LogStatus = "taken"
	LogStatusMissed  LogStatus = "missed"
	LogStatusSkipped LogStatus = "skipped"
)

func (s LogStatus) IsValid() bool {
	switch s {
	case LogStatusPending, LogStatusTaken, LogStatusMissed, LogStatusSkipped:
		return true
	default:
		return false
	}
}

// DoseLog is one persisted dose record for a supplement at a scheduled time
// on the current day.
type DoseLog struct {
	ID            string
	SupplementID  string
	ScheduledTime string
	Status        LogStatus
	TakenAt       *time.Time
	Notes         string
}

func (l DoseLog) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return errors.New("model: log id is required")
	}
	if strings.TrimSpace(l.SupplementID) == "" {
		return errors.New("model: log supplement_id is required")
	}
	if !l.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidLogStatus, l.Status)
	}
	return nil
}
