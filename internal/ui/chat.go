package ui

import (
	"html/template"
	"time"

	"github.com/runixer/evalboard/internal/markdown"
)

// ChatMessage is the view model of one chat bubble.
type ChatMessage struct {
	IsBot     bool
	Role      string
	Icon      string
	HTML      template.HTML
	CreatedAt *time.Time
}

// NewChatMessage maps a message to its bubble. The timestamp line is shown
// only for a non-nil, non-zero createdAt.
func NewChatMessage(isBot bool, text string, createdAt *time.Time) ChatMessage {
	msg := ChatMessage{
		IsBot: isBot,
		Role:  "user",
		Icon:  "👤",
		HTML:  markdown.MustHTML(text),
	}
	if isBot {
		msg.Role = "bot"
		msg.Icon = "🤖"
	}
	if createdAt != nil && !createdAt.IsZero() {
		ts := *createdAt
		msg.CreatedAt = &ts
	}
	return msg
}

// HasTimestamp reports whether the timestamp line is rendered.
func (m ChatMessage) HasTimestamp() bool {
	return m.CreatedAt != nil
}
