package models

import (
	"strings"
	"testing"
)

func TestValidTheme(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"dark", "dark", true},
		{"light", "light", true},
		{"empty", "", false},
		{"unknown", "solarized", false},
		{"case sensitive", "Dark", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidTheme(tt.in); got != tt.want {
				t.Errorf("ValidTheme(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDefaultSettings(t *testing.T) {
	got := DefaultSettings()
	if !got.PreserveHistory {
		t.Error("default PreserveHistory = false, want true")
	}
	if got.Theme != ThemeDark {
		t.Errorf("default Theme = %q, want %q", ThemeDark, got.Theme)
	}
}

func TestIDPrefixes(t *testing.T) {
	tests := []struct {
		name   string
		mint   func() string
		prefix string
	}{
		{"message", NewMessageID, "msg-"},
		{"session", NewSessionID, "session-"},
		{"user", NewUserID, "user-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.mint()
			if !strings.HasPrefix(id, tt.prefix) {
				t.Errorf("%s id %q missing prefix %q", tt.name, id, tt.prefix)
			}
		})
	}
}

func TestIDsDoNotCollide(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id := NewMessageID()
		if seen[id] {
			t.Fatalf("duplicate message id %q", id)
		}
		seen[id] = true
	}
}

func TestNewUserMessageCarriesNoAgentFields(t *testing.T) {
	msg := NewUserMessage("hello")

	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want %q", msg.Role, RoleUser)
	}
	if msg.Type != TypeUserInput {
		t.Errorf("Type = %q, want %q", msg.Type, TypeUserInput)
	}
	if msg.CrisisDetected {
		t.Error("user message must never set CrisisDetected")
	}
	if msg.EmotionalThemes != nil {
		t.Error("user message must never carry emotional themes")
	}
	if msg.ID == "" || msg.Timestamp.IsZero() {
		t.Error("user message missing id or timestamp")
	}
}
