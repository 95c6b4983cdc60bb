package api

import (
	"context"
	"net/http"
	"strings"
)

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type chatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

type chatResponse struct {
	Message ChatMessage `json:"message"`
}

// Chat sends the conversation so far and returns the assistant's reply. The
// backend owns the model; this client only relays turns.
func (c *Client) Chat(ctx context.Context, history []ChatMessage) (ChatMessage, error) {
	var resp chatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", chatRequest{Messages: history}, &resp); err != nil {
		return ChatMessage{}, err
	}
	reply := resp.Message
	reply.Content = strings.TrimSpace(reply.Content)
	if reply.Role == "" {
		reply.Role = ChatRoleAssistant
	}
	return reply, nil
}
