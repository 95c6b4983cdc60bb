package update

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/dosewatch/dosewatch/internal/api"
	"github.com/dosewatch/dosewatch/internal/views"
)

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.CurrentView = ViewToday
		m.chatInput.Blur()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.chatInput.Value())
		if text == "" || m.Chat.Waiting {
			return m, nil
		}
		if m.chatClient == nil {
			m.Status = StatusBar{Text: "chat is not configured", IsError: true}
			return m, nil
		}
		m.Chat.Entries = append(m.Chat.Entries, ChatEntry{
			ID:      uuid.NewString(),
			Role:    api.ChatRoleUser,
			Content: text,
		})
		m.Chat.Waiting = true
		m.chatInput.SetValue("")
		m.spinnerActive = true
		return m, tea.Batch(m.syncSpinner.Tick, chatCmd(m.chatClient, m.chatHistory()))
	default:
		if msg.Type == tea.KeyRunes {
			m.chatInput.SetValue(m.chatInput.Value() + string(msg.Runes))
			return m, nil
		}
		var cmd tea.Cmd
		m.chatInput, cmd = m.chatInput.Update(msg)
		return m, cmd
	}
}

func (m Model) chatHistory() []api.ChatMessage {
	history := make([]api.ChatMessage, 0, len(m.Chat.Entries))
	for _, entry := range m.Chat.Entries {
		history = append(history, api.ChatMessage{Role: entry.Role, Content: entry.Content})
	}
	return history
}

func chatCmd(client ChatClient, history []api.ChatMessage) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), toggleTimeout)
		defer cancel()
		reply, err := client.Chat(ctx, history)
		return ChatReplyMsg{Reply: reply, Err: err}
	}
}

func (m Model) applyChatReply(msg ChatReplyMsg) Model {
	m.Chat.Waiting = false
	m.spinnerActive = false
	if msg.Err != nil {
		m.Status = StatusBar{Text: "chat failed: " + msg.Err.Error(), IsError: true}
		m.notify("Chat Failed", msg.Err.Error(), "error")
		return m
	}
	m.Chat.Entries = append(m.Chat.Entries, ChatEntry{
		ID:      uuid.NewString(),
		Role:    msg.Reply.Role,
		Content: msg.Reply.Content,
	})
	return m
}

func (m Model) renderChatView() string {
	lines := make([]views.ChatLineData, 0, len(m.Chat.Entries))
	for _, entry := range m.Chat.Entries {
		lines = append(lines, views.ChatLineData{Role: entry.Role, Content: entry.Content})
	}
	return views.RenderChatPanel(views.ChatPanelData{
		Messages:  lines,
		InputView: m.chatInput.View(),
		Waiting:   m.Chat.Waiting,
	})
}
