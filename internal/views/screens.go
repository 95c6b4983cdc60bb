package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type DoseItemData struct {
	ID     string
	Name   string
	Dosage string
	Glyph  string
	Period string
	Time   string
	Status string
	Muted  bool
}

type TodayPanelData struct {
	Items      []DoseItemData
	SelectedID string
	Offline    bool
	StaleDay   string
}

type SupplementItemData struct {
	ID       string
	Name     string
	Dosage   string
	Form     string
	Schedule string
	Days     string
	RemindMe bool
}

type SupplementsPanelData struct {
	Items      []SupplementItemData
	SelectedID string
}

type ChatLineData struct {
	Role    string
	Content string
}

type ChatPanelData struct {
	Messages  []ChatLineData
	InputView string
	Waiting   bool
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderTodayPanel(data TodayPanelData) string {
	var b strings.Builder
	b.WriteString("today:\n")
	b.WriteString("actions: [j/k]move [space]take [m]mute [r]refresh [/]command\n")
	if data.Offline {
		b.WriteString(RenderOfflineBanner(data.StaleDay) + "\n")
	}

	if len(data.Items) == 0 {
		b.WriteString("(no doses scheduled today)")
		return strings.TrimSpace(b.String())
	}

	for _, period := range []string{"morning", "afternoon", "evening"} {
		items := make([]DoseItemData, 0)
		for _, item := range data.Items {
			if item.Period == period {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n%s:\n", period))
		for _, item := range items {
			cursor := " "
			if data.SelectedID == item.ID {
				cursor = ">"
			}
			line := fmt.Sprintf("%s %s %s %s %s %s", cursor, statusGlyph(item.Status), item.Time, item.Glyph, item.Name, item.Dosage)
			if item.Muted {
				line += " [muted]"
			}
			b.WriteString(styleForStatus(item.Status).Render(strings.TrimRight(line, " ")) + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderSupplementsPanel(data SupplementsPanelData) string {
	var b strings.Builder
	b.WriteString("supplements:\n")
	b.WriteString("actions: [j/k]move [m]toggle-reminders\n")
	if len(data.Items) == 0 {
		b.WriteString("(no supplements)")
		return strings.TrimSpace(b.String())
	}
	for _, item := range data.Items {
		cursor := " "
		if data.SelectedID == item.ID {
			cursor = ">"
		}
		bell := "on"
		if !item.RemindMe {
			bell = "off"
		}
		b.WriteString(fmt.Sprintf("%s %s %s (%s) %s days:%s reminders:%s\n",
			cursor, item.Name, item.Dosage, item.Form, item.Schedule, item.Days, bell))
	}
	return strings.TrimSpace(b.String())
}

func RenderChatPanel(data ChatPanelData) string {
	var b strings.Builder
	b.WriteString("chat:\n")
	b.WriteString("actions: [enter]send [esc]back\n")
	for _, msg := range data.Messages {
		switch msg.Role {
		case "assistant":
			b.WriteString("assistant:\n" + RenderMarkdown(msg.Content) + "\n")
		default:
			b.WriteString("you: " + msg.Content + "\n")
		}
	}
	if data.Waiting {
		b.WriteString("(waiting for reply...)\n")
	}
	b.WriteString("\n" + data.InputView)
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("\nnotification: [%s] %s", strings.ToUpper(level), body)
}

func RenderOfflineBanner(staleDay string) string {
	if staleDay == "" {
		return mutedStyle.Render("offline: showing cached data")
	}
	return mutedStyle.Render(fmt.Sprintf("offline: showing cached data from %s (read-only)", staleDay))
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func statusGlyph(status string) string {
	switch status {
	case "current":
		return "●"
	case "missed":
		return "✗"
	case "completed":
		return "✓"
	default:
		return "○"
	}
}

func styleForStatus(status string) lipgloss.Style {
	switch status {
	case "current":
		return currentStyle
	case "missed":
		return missedStyle
	case "completed":
		return takenStyle
	default:
		return mutedStyle
	}
}
