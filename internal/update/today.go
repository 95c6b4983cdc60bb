package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dosewatch/dosewatch/internal/model"
	"github.com/dosewatch/dosewatch/internal/views"
)

func (m Model) handleTodayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.Today.Cursor < m.Registry.Len()-1 {
			m.Today.Cursor++
		}
		m.syncSelectedDose()
		return m, nil
	case "k", "up":
		if m.Today.Cursor > 0 {
			m.Today.Cursor--
		}
		m.syncSelectedDose()
		return m, nil
	case " ", "space":
		return m.toggleCompletedSelected(), nil
	case "m":
		return m.toggleMuteSelected(), nil
	case "r":
		return m.refresh(), nil
	}
	return m, nil
}

func (m *Model) clampCursors() {
	if n := m.Registry.Len(); m.Today.Cursor >= n {
		m.Today.Cursor = n - 1
	}
	if m.Today.Cursor < 0 {
		m.Today.Cursor = 0
	}
	if n := len(m.supplementRows()); m.Supplements.Cursor >= n {
		m.Supplements.Cursor = n - 1
	}
	if m.Supplements.Cursor < 0 {
		m.Supplements.Cursor = 0
	}
	m.syncSelectedDose()
}

func (m *Model) syncSelectedDose() {
	instances := m.Registry.Instances()
	if len(instances) == 0 {
		m.SelectedDoseID = ""
		return
	}
	if m.Today.Cursor >= len(instances) {
		m.Today.Cursor = len(instances) - 1
	}
	m.SelectedDoseID = instances[m.Today.Cursor].ID
}

func (m Model) doseRows() []views.DoseItemData {
	now := m.now()
	instances := m.Registry.Instances()
	rows := make([]views.DoseItemData, 0, len(instances))
	for _, inst := range instances {
		rows = append(rows, views.DoseItemData{
			ID:     inst.ID,
			Name:   inst.Name,
			Dosage: inst.Dosage,
			Glyph:  inst.DosageForm.Glyph(),
			Period: strings.ToLower(string(inst.Period)),
			Time:   inst.ScheduledTime,
			Status: string(model.StatusOf(inst.ScheduledTime, inst.Completed, now)),
			Muted:  inst.Muted,
		})
	}
	return rows
}

func (m Model) renderTodayView() string {
	return views.RenderTodayPanel(views.TodayPanelData{
		Items:      m.doseRows(),
		SelectedID: m.SelectedDoseID,
		Offline:    m.Offline,
		StaleDay:   m.StaleDay,
	})
}
