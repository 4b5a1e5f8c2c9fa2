// Package session owns the in-memory transcript for the current run and its
// persistence lifecycle.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abysslabs/abyss/internal/models"
	"github.com/abysslabs/abyss/internal/store"
)

// State is the manager lifecycle state. Transitions run one way:
// Uninitialized -> Hydrating -> Active. A process restart is required to
// re-hydrate.
type State int

const (
	StateUninitialized State = iota
	StateHydrating
	StateActive
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHydrating:
		return "hydrating"
	case StateActive:
		return "active"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Greeting copy, matching the product voice.
const (
	greetingContent = "Hello. I'm here to listen and understand what's on your mind. " +
		"This is a judgment-free space where you can share whatever feels important to you right now. " +
		"What's been weighing on you?"

	freshStartContent = "All conversations have been cleared. This is a fresh start. " +
		"What's on your mind today?"
)

// Manager holds the current transcript and mediates all access to the store.
// It mints fresh session and user identifiers on every hydrate; past sessions
// are resumed only as "most recent in archive", never by identity.
type Manager struct {
	store  *store.Store
	logger *slog.Logger

	// OnMessagesChanged fires after the transcript changes (append, clear).
	// OnSettingsChanged fires after a settings write. Both are optional and
	// called synchronously on the mutating flow.
	OnMessagesChanged func([]models.Message)
	OnSettingsChanged func(models.Settings)

	mu        sync.Mutex
	state     State
	sessionID string
	userID    string
	messages  []models.Message
	settings  models.Settings
}

// NewManager creates an uninitialized manager. Call Hydrate before use.
// Pass nil for logger to use slog.Default().
func NewManager(st *store.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:    st,
		logger:   logger,
		settings: models.DefaultSettings(),
	}
}

// Hydrate mints identifiers, loads settings, and seeds the transcript: the
// most recent archived session when history preservation is on and the
// archive is non-empty, a single greeting message otherwise.
func (m *Manager) Hydrate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateUninitialized {
		return fmt.Errorf("hydrate from state %s", m.state)
	}
	m.state = StateHydrating

	m.sessionID = models.NewSessionID()
	m.userID = models.NewUserID()

	settings, err := m.store.LoadSettings()
	if err != nil {
		return fmt.Errorf("hydrate: %w", err)
	}
	m.settings = settings

	archive, err := m.store.LoadArchive()
	if err != nil {
		return fmt.Errorf("hydrate: %w", err)
	}

	if settings.PreserveHistory && len(archive) > 0 {
		latest := archive[len(archive)-1]
		m.messages = append([]models.Message(nil), latest.Messages...)
		m.logger.Info("restored most recent session",
			"restored_session_id", latest.SessionID,
			"messages", len(m.messages),
			"session_id", m.sessionID)
	} else {
		m.messages = []models.Message{greetingMessage(greetingContent)}
		m.logger.Info("seeded new transcript", "session_id", m.sessionID)
	}

	m.state = StateActive
	return nil
}

// SessionID returns the identifier minted for this run.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// UserID returns the identifier minted for this run.
func (m *Manager) UserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userID
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Messages returns a copy of the current transcript.
func (m *Manager) Messages() []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Message(nil), m.messages...)
}

// Settings returns the current settings record.
func (m *Manager) Settings() models.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// AppendMessage appends one message to the transcript and, when history
// preservation is on, persists the current full transcript under the current
// session id.
func (m *Manager) AppendMessage(msg models.Message) error {
	m.mu.Lock()
	if m.state != StateActive {
		m.mu.Unlock()
		return fmt.Errorf("append message from state %s", m.state)
	}

	m.messages = append(m.messages, msg)
	if err := m.persistLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	snapshot := append([]models.Message(nil), m.messages...)
	m.mu.Unlock()

	m.notifyMessages(snapshot)
	return nil
}

// ClearAll deletes the archive, resets the transcript to a single fresh
// greeting, and persists that greeting as a new session when history
// preservation is on.
func (m *Manager) ClearAll() error {
	m.mu.Lock()
	if m.state != StateActive {
		m.mu.Unlock()
		return fmt.Errorf("clear from state %s", m.state)
	}

	if err := m.store.ClearArchive(); err != nil {
		m.mu.Unlock()
		return err
	}

	m.messages = []models.Message{greetingMessage(freshStartContent)}
	if err := m.persistLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	snapshot := append([]models.Message(nil), m.messages...)
	m.mu.Unlock()

	m.logger.Info("cleared all conversation data", "session_id", m.sessionID)
	m.notifyMessages(snapshot)
	return nil
}

// ExportArchive serializes the full archive as pretty-printed JSON. An absent
// or empty archive yields store.ErrNoData. Without intervening writes the
// output is byte-identical across calls.
func (m *Manager) ExportArchive() ([]byte, error) {
	archive, err := m.store.LoadArchive()
	if err != nil {
		return nil, err
	}
	if len(archive) == 0 {
		return nil, store.ErrNoData
	}

	raw, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal archive: %w", err)
	}
	return raw, nil
}

// ExportFilename returns the export artifact name for the given time,
// e.g. abyss-conversations-2026-09-01.json.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("abyss-conversations-%s.json", now.Format("2006-01-02"))
}

// SetPreserveHistory updates the history-preservation flag, writing the whole
// settings record back.
func (m *Manager) SetPreserveHistory(preserve bool) error {
	return m.updateSettings(func(s *models.Settings) {
		s.PreserveHistory = preserve
	})
}

// SetTheme updates the display theme, writing the whole settings record back.
func (m *Manager) SetTheme(theme string) error {
	if !models.ValidTheme(theme) {
		return fmt.Errorf("unknown theme %q", theme)
	}
	return m.updateSettings(func(s *models.Settings) {
		s.Theme = theme
	})
}

func (m *Manager) updateSettings(mutate func(*models.Settings)) error {
	m.mu.Lock()
	// Read-modify-write the whole record so no fields are lost.
	settings := m.settings
	mutate(&settings)
	if err := m.store.SaveSettings(settings); err != nil {
		m.mu.Unlock()
		return err
	}
	m.settings = settings
	m.mu.Unlock()

	if m.OnSettingsChanged != nil {
		m.OnSettingsChanged(settings)
	}
	return nil
}

// persistLocked appends the current full transcript to the archive. The
// caller must hold m.mu.
func (m *Manager) persistLocked() error {
	if !m.settings.PreserveHistory {
		return nil
	}
	return m.store.AppendSession(models.ConversationSession{
		SessionID:   m.sessionID,
		Messages:    append([]models.Message(nil), m.messages...),
		LastUpdated: time.Now(),
	})
}

func (m *Manager) notifyMessages(msgs []models.Message) {
	if m.OnMessagesChanged != nil {
		m.OnMessagesChanged(msgs)
	}
}

func greetingMessage(content string) models.Message {
	return models.Message{
		ID:        models.NewMessageID(),
		Role:      models.RoleAgent,
		Content:   content,
		Timestamp: time.Now(),
		Type:      models.TypeEmpatheticReflection,
	}
}
