package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dosewatch/dosewatch/internal/commands"
	"github.com/dosewatch/dosewatch/internal/views"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.Palette.Active = false
		m.Palette.Input = ""
		return m
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Take: func(a commands.TakeArgs) (commands.Result, error) {
			inst, ok := m.findDoseByName(a.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no open dose matches %q", a.Target)}
			}
			m.SelectedDoseID = inst
			m = m.toggleCompletedSelected()
			if m.Status.IsError {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: m.Status.Text}
			}
			return commands.Result{Message: m.Status.Text}, nil
		},
		Mute: func(a commands.MuteArgs) (commands.Result, error) {
			inst, ok := m.findDoseByName(a.Target)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no dose matches %q", a.Target)}
			}
			m.SelectedDoseID = inst
			m = m.toggleMuteSelected()
			if m.Status.IsError {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: m.Status.Text}
			}
			return commands.Result{Message: m.Status.Text}, nil
		},
		Show: func(s commands.ShowArgs) (commands.Result, error) {
			switch s.Subject {
			case "today":
				m.CurrentView = ViewToday
			case "supplements":
				m.CurrentView = ViewSupplements
			case "chat":
				m.CurrentView = ViewChat
				m.chatInput.Focus()
			}
			return commands.Result{Message: "show " + s.Subject}, nil
		},
		Refresh: func(commands.RefreshArgs) (commands.Result, error) {
			m = m.refresh()
			if m.Status.IsError {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: m.Status.Text}
			}
			return commands.Result{Message: m.Status.Text}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
	} else {
		m.Status = StatusBar{Text: res.Message, IsError: false}
	}

	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	return m
}

// findDoseByName resolves a name prefix to the first matching open dose, or
// failing that, any instance of the supplement.
func (m Model) findDoseByName(target string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(target))
	fallback := ""
	for _, inst := range m.Registry.Instances() {
		if !strings.HasPrefix(strings.ToLower(inst.Name), needle) {
			continue
		}
		if !inst.Completed {
			return inst.ID, true
		}
		if fallback == "" {
			fallback = inst.ID
		}
	}
	return fallback, fallback != ""
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}
