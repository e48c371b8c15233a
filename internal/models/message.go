// Package models holds the data shared between the widget, the API client and
// the terminal UI.
package models

import "strings"

// Role identifies who produced a transcript entry.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Fixed bot texts shown in place of a real reply.
const (
	FallbackReply     = "No response received."
	ConnectErrorReply = "⚠️ Sorry, I couldn't connect to the server."
)

// Message represents a chat message for TUI display
type Message struct {
	Role    Role
	Content string
}

// IsUser reports whether the message was typed by the user.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// UserMessage builds a user entry from raw input text.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: strings.TrimSpace(text)}
}

// BotMessage builds a bot entry.
func BotMessage(content string) Message {
	return Message{Role: RoleBot, Content: content}
}
