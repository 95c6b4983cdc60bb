package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/internal/model"
)

// supplementDTO mirrors the backend's supplement resource. TimesOfDay stays
// raw so one supplement's malformed schedule never fails the whole list.
type supplementDTO struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Dosage     string          `json:"dosage"`
	DosageForm string          `json:"dosageForm"`
	TimesOfDay json.RawMessage `json:"timesOfDay"`
	RemindMe   bool            `json:"remindMe"`
	ActiveDays []int           `json:"activeDays"` // 0=Sunday..6=Saturday
}

type timesOfDayDTO struct {
	Morning   []string `json:"Morning"`
	Afternoon []string `json:"Afternoon"`
	Evening   []string `json:"Evening"`
}

// SupplementInput is the create/update payload.
type SupplementInput struct {
	Name       string              `json:"name"`
	Dosage     string              `json:"dosage"`
	DosageForm string              `json:"dosageForm"`
	TimesOfDay map[string][]string `json:"timesOfDay"`
	RemindMe   bool                `json:"remindMe"`
	ActiveDays []int               `json:"activeDays,omitempty"`
}

// ListSupplements fetches the user's supplement definitions.
func (c *Client) ListSupplements(ctx context.Context) ([]model.Supplement, error) {
	var dtos []supplementDTO
	if err := c.do(ctx, http.MethodGet, "/api/supplements", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]model.Supplement, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, c.toSupplement(dto))
	}
	return out, nil
}

func (c *Client) CreateSupplement(ctx context.Context, in SupplementInput) (model.Supplement, error) {
	var dto supplementDTO
	if err := c.do(ctx, http.MethodPost, "/api/supplements", in, &dto); err != nil {
		return model.Supplement{}, err
	}
	return c.toSupplement(dto), nil
}

func (c *Client) UpdateSupplement(ctx context.Context, id string, in SupplementInput) (model.Supplement, error) {
	var dto supplementDTO
	if err := c.do(ctx, http.MethodPut, "/api/supplements/"+id, in, &dto); err != nil {
		return model.Supplement{}, err
	}
	return c.toSupplement(dto), nil
}

func (c *Client) DeleteSupplement(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/supplements/"+id, nil, nil)
}

// UpdateReminder flips the supplement-level reminder flag. This is the
// remote half of the mute toggle, keyed by supplement id.
func (c *Client) UpdateReminder(ctx context.Context, id string, remind bool) error {
	payload := map[string]bool{"remindMe": remind}
	return c.do(ctx, http.MethodPatch, "/api/supplements/"+id+"/reminder", payload, nil)
}

func (c *Client) toSupplement(dto supplementDTO) model.Supplement {
	supp := model.Supplement{
		ID:         dto.ID,
		Name:       dto.Name,
		Dosage:     dto.Dosage,
		DosageForm: model.NormalizeDosageForm(dto.DosageForm),
		RemindMe:   dto.RemindMe,
		TimesOfDay: map[model.Period][]string{},
	}
	for _, day := range dto.ActiveDays {
		if day >= 0 && day <= 6 {
			supp.ActiveDays = append(supp.ActiveDays, time.Weekday(day))
		}
	}
	if len(dto.TimesOfDay) == 0 {
		return supp
	}
	var times timesOfDayDTO
	if err := json.Unmarshal(dto.TimesOfDay, &times); err != nil {
		// Isolated per-supplement failure: the supplement simply has no
		// schedulable slots. Not surfaced to the user.
		c.log.Warn("unparseable timesOfDay, supplement yields no doses",
			zap.String("supplement_id", dto.ID),
			zap.String("name", dto.Name),
			zap.Error(err))
		return supp
	}
	if len(times.Morning) > 0 {
		supp.TimesOfDay[model.PeriodMorning] = times.Morning
	}
	if len(times.Afternoon) > 0 {
		supp.TimesOfDay[model.PeriodAfternoon] = times.Afternoon
	}
	if len(times.Evening) > 0 {
		supp.TimesOfDay[model.PeriodEvening] = times.Evening
	}
	return supp
}
