package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dosewatch/dosewatch/internal/views"
)

type supplementRow struct {
	SupplementID    string
	FirstInstanceID string
	Name            string
	Dosage          string
	Form            string
	Times           []string
	Muted           bool
}

// supplementRows folds today's instances back into one row per supplement,
// in first-appearance order.
func (m Model) supplementRows() []supplementRow {
	index := make(map[string]int)
	rows := make([]supplementRow, 0)
	for _, inst := range m.Registry.Instances() {
		i, ok := index[inst.SupplementID]
		if !ok {
			index[inst.SupplementID] = len(rows)
			rows = append(rows, supplementRow{
				SupplementID:    inst.SupplementID,
				FirstInstanceID: inst.ID,
				Name:            inst.Name,
				Dosage:          inst.Dosage,
				Form:            string(inst.DosageForm),
				Muted:           inst.Muted,
			})
			i = len(rows) - 1
		}
		rows[i].Times = append(rows[i].Times, inst.ScheduledTime)
	}
	return rows
}

func (m Model) handleSupplementsKey(msg tea.KeyMsg) Model {
	rows := m.supplementRows()
	switch msg.String() {
	case "j", "down":
		if m.Supplements.Cursor < len(rows)-1 {
			m.Supplements.Cursor++
		}
	case "k", "up":
		if m.Supplements.Cursor > 0 {
			m.Supplements.Cursor--
		}
	case "m":
		if m.Supplements.Cursor < len(rows) {
			saved := m.SelectedDoseID
			m.SelectedDoseID = rows[m.Supplements.Cursor].FirstInstanceID
			m = m.toggleMuteSelected()
			m.SelectedDoseID = saved
		}
	case "r":
		return m.refresh()
	}
	return m
}

func (m Model) renderSupplementsView() string {
	rows := m.supplementRows()
	items := make([]views.SupplementItemData, 0, len(rows))
	selectedID := ""
	for i, row := range rows {
		if i == m.Supplements.Cursor {
			selectedID = row.SupplementID
		}
		items = append(items, views.SupplementItemData{
			ID:       row.SupplementID,
			Name:     row.Name,
			Dosage:   row.Dosage,
			Form:     row.Form,
			Schedule: strings.Join(row.Times, " "),
			Days:     "today",
			RemindMe: !row.Muted,
		})
	}
	return views.RenderSupplementsPanel(views.SupplementsPanelData{
		Items:      items,
		SelectedID: selectedID,
	})
}
