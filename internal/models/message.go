// Package models defines the conversation data model shared across abyss.
package models

import "time"

// Message roles.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// Message classification tags. The agent may return other tags; these are the
// ones abyss produces itself.
const (
	TypeUserInput            = "user_input"
	TypeEmpatheticReflection = "empathetic_reflection"
	TypeError                = "error"
)

// Message is a single turn in a conversation.
//
// EmotionalThemes and CrisisDetected are populated only when normalizing an
// agent reply. User-originated messages must never carry them.
type Message struct {
	ID              string    `json:"id"`
	Role            string    `json:"role"`
	Content         string    `json:"content"`
	Timestamp       time.Time `json:"timestamp"`
	Type            string    `json:"type,omitempty"`
	EmotionalThemes []string  `json:"emotional_themes_detected,omitempty"`
	CrisisDetected  bool      `json:"crisis_detected,omitempty"`
}

// NewUserMessage builds a user-role message for outgoing text.
func NewUserMessage(content string) Message {
	return Message{
		ID:        NewMessageID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
		Type:      TypeUserInput,
	}
}
