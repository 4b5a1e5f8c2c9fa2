package models

import "time"

// ConversationSession is one persisted unit of history.
type ConversationSession struct {
	SessionID   string    `json:"sessionId"`
	Messages    []Message `json:"messages"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Archive is the full durable history of past sessions. It is append-only: a
// new entry is pushed on every save rather than updating the latest in place.
type Archive []ConversationSession

// Themes for the presentation layer.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Settings is the single user-preferences record. Last write wins; callers
// read-modify-write the whole record.
type Settings struct {
	PreserveHistory bool   `json:"preserveHistory"`
	Theme           string `json:"theme"`
}

// DefaultSettings returns the settings used when nothing is stored or the
// stored record cannot be parsed.
func DefaultSettings() Settings {
	return Settings{
		PreserveHistory: true,
		Theme:           ThemeDark,
	}
}

// ValidTheme reports whether s names a known theme.
func ValidTheme(s string) bool {
	return s == ThemeDark || s == ThemeLight
}
