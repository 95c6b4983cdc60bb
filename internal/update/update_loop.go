package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dosewatch/dosewatch/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.Engine != nil {
		return waitForDoseCmd(m.Engine.C())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		m.clampCursors()

		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			next := m.handlePaletteKey(typed)
			return next, nil
		}

		keyStr := typed.String()
		// A focused chat input owns every printable key, shortcut runes
		// included; only tab and ctrl+c stay global while typing.
		if m.CurrentView == ViewChat && m.chatInput.Focused() &&
			keyStr != "ctrl+c" && keyStr != "tab" {
			return m.handleChatKey(typed)
		}

		switch keyStr {
		case "tab":
			m.CurrentView = nextView(m.CurrentView)
			if m.CurrentView == ViewChat {
				m.chatInput.Focus()
			}
			return m, nil
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active", IsError: false}
			return m, nil
		case m.Keys.Today:
			m.CurrentView = ViewToday
			return m, nil
		case m.Keys.Supplements:
			m.CurrentView = ViewSupplements
			return m, nil
		case m.Keys.Chat:
			m.CurrentView = ViewChat
			m.chatInput.Focus()
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown", IsError: false}
			} else {
				m.Status = StatusBar{Text: "help hidden", IsError: false}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			if m.Engine != nil {
				m.Engine.Stop()
			}
			return m, tea.Quit
		}
		if m.CurrentView == ViewToday {
			return m.handleTodayKey(typed)
		}
		if m.CurrentView == ViewSupplements {
			return m.handleSupplementsKey(typed), nil
		}
	case spinner.TickMsg:
		if m.spinnerActive {
			var cmd tea.Cmd
			m.syncSpinner, cmd = m.syncSpinner.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
			if typed.View == ViewChat {
				m.chatInput.Focus()
			}
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		if strings.Contains(strings.ToLower(typed.Text), "refresh complete") {
			m.spinnerActive = false
		}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case DoseDueMsg:
		m = m.applyDoseEvent(typed.Event)
		if m.Engine != nil {
			return m, waitForDoseCmd(m.Engine.C())
		}
		return m, nil
	case ChatReplyMsg:
		return m.applyChatReply(typed), nil
	}

	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	body := ""
	switch m.CurrentView {
	case ViewToday:
		body = m.renderTodayView() + m.renderCommandPalette() + m.renderHelpIfVisible()
	case ViewSupplements:
		body = m.renderSupplementsView() + m.renderCommandPalette() + m.renderHelpIfVisible()
	case ViewChat:
		body = m.renderChatView() + m.renderHelpIfVisible()
	}

	notificationView := ""
	if len(m.Notifications) > 0 {
		n := m.Notifications[len(m.Notifications)-1]
		notificationView = views.RenderNotification(n.Level, n.Body)
	}
	if m.spinnerActive {
		spin := m.syncSpinner.View()
		notificationView = strings.TrimSpace(strings.Join([]string{notificationView, "refresh: " + spin + " running"}, "\n"))
	}
	notificationView = strings.TrimSpace(notificationView)

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("dosewatch | view: %s | selected: %s | %s", m.CurrentView, m.SelectedDoseID, m.now().Format("Mon 15:04")),
		Body:         body,
		StatusLine:   status,
		Notification: notificationView,
		Footer:       fmt.Sprintf("keys: %s today | %s supplements | %s chat | / cmd | %s help | %s quit", m.Keys.Today, m.Keys.Supplements, m.Keys.Chat, m.Keys.Help, m.Keys.Quit),
	})
}

func nextView(v View) View {
	switch v {
	case ViewToday:
		return ViewSupplements
	case ViewSupplements:
		return ViewChat
	default:
		return ViewToday
	}
}

func isKnownView(v View) bool {
	switch v {
	case ViewToday, ViewSupplements, ViewChat:
		return true
	default:
		return false
	}
}

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}

