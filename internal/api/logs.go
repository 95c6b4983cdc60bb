package api

import (
	"context"
	"net/http"
	"time"

	"github.com/dosewatch/dosewatch/internal/model"
)

type doseLogDTO struct {
	ID            string     `json:"id"`
	SupplementID  string     `json:"supplementId"`
	ScheduledTime string     `json:"scheduledTime"`
	Status        string     `json:"status"`
	TakenAt       *time.Time `json:"takenAt,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// CreateLogInput creates the first log entry for a dose slot.
type CreateLogInput struct {
	SupplementID  string `json:"supplementId"`
	ScheduledTime string `json:"scheduledTime"`
	Status        string `json:"status"`
}

// UpdateLogInput updates an existing log entry's status.
type UpdateLogInput struct {
	Status  string     `json:"status"`
	TakenAt *time.Time `json:"takenAt,omitempty"`
}

// ListTodayLogs fetches the dose logs recorded for the current day.
func (c *Client) ListTodayLogs(ctx context.Context) ([]model.DoseLog, error) {
	var dtos []doseLogDTO
	if err := c.do(ctx, http.MethodGet, "/api/logs/today", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]model.DoseLog, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, toDoseLog(dto))
	}
	return out, nil
}

func (c *Client) CreateLog(ctx context.Context, in CreateLogInput) (model.DoseLog, error) {
	var dto doseLogDTO
	if err := c.do(ctx, http.MethodPost, "/api/logs", in, &dto); err != nil {
		return model.DoseLog{}, err
	}
	return toDoseLog(dto), nil
}

func (c *Client) UpdateLog(ctx context.Context, id string, in UpdateLogInput) (model.DoseLog, error) {
	var dto doseLogDTO
	if err := c.do(ctx, http.MethodPut, "/api/logs/"+id, in, &dto); err != nil {
		return model.DoseLog{}, err
	}
	return toDoseLog(dto), nil
}

func toDoseLog(dto doseLogDTO) model.DoseLog {
	status := model.LogStatus(dto.Status)
	if !status.IsValid() {
		status = model.LogStatusPending
	}
	return model.DoseLog{
		ID:            dto.ID,
		SupplementID:  dto.SupplementID,
		ScheduledTime: dto.ScheduledTime,
		Status:        status,
		TakenAt:       dto.TakenAt,
		Notes:         dto.Notes,
	}
}
