// Package store provides the durable local store for settings and the
// conversation archive. Everything is kept in a single sqlite database as
// whole-record JSON values under fixed keys, so callers get plain key-value
// semantics: load the record, modify it, write the whole thing back.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abysslabs/abyss/internal/models"
)

// Storage keys. These mirror the on-disk contract: one record per key.
const (
	keySettings      = "settings"
	keyConversations = "conversations"
)

// Store is the durable key-value store backing settings and the archive.
// It performs no network activity; all side effects are confined to the
// database file.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the store at the given database path.
// Pass nil for logger to use slog.Default().
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open store database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize store schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadSettings returns the stored settings record. A missing or unparseable
// record yields the defaults; corruption is logged, never fatal.
func (s *Store) LoadSettings() (models.Settings, error) {
	raw, ok, err := s.get(keySettings)
	if err != nil {
		return models.DefaultSettings(), fmt.Errorf("load settings: %w", err)
	}
	if !ok {
		return models.DefaultSettings(), nil
	}

	var settings models.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.logger.Warn("stored settings are malformed, using defaults", "error", err)
		return models.DefaultSettings(), nil
	}
	if !models.ValidTheme(settings.Theme) {
		settings.Theme = models.ThemeDark
	}
	return settings, nil
}

// SaveSettings overwrites the settings record with exactly what the caller
// passes. There are no merge semantics.
func (s *Store) SaveSettings(settings models.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.put(keySettings, raw); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// LoadArchive returns the stored conversation archive. Absent or malformed
// data yields an empty archive; corruption is logged, never fatal.
func (s *Store) LoadArchive() (models.Archive, error) {
	raw, ok, err := s.get(keyConversations)
	if err != nil {
		return nil, fmt.Errorf("load archive: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var archive models.Archive
	if err := json.Unmarshal(raw, &archive); err != nil {
		s.logger.Warn("stored archive is malformed, treating as absent", "error", err)
		return nil, nil
	}
	return archive, nil
}

// AppendSession reads the full archive, appends the session record, and
// writes the whole archive back. The archive only ever grows; pruning or
// merging old sessions is deliberately not done here.
func (s *Store) AppendSession(session models.ConversationSession) error {
	archive, err := s.LoadArchive()
	if err != nil {
		return err
	}

	archive = append(archive, session)

	raw, err := json.Marshal(archive)
	if err != nil {
		return fmt.Errorf("marshal archive: %w", err)
	}
	if err := s.put(keyConversations, raw); err != nil {
		return fmt.Errorf("save archive: %w", err)
	}
	return nil
}

// ClearArchive deletes the archive entirely. Settings are untouched.
func (s *Store) ClearArchive() error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, keyConversations); err != nil {
		return fmt.Errorf("clear archive: %w", err)
	}
	return nil
}

func (s *Store) get(key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (s *Store) put(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(value),
	)
	return err
}
