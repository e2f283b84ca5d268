// Package services provides application-level services that sit between the
// HTTP handlers and the storage layer.
package services

import (
	"database/sql"
	"errors"
	"fmt"
)

// Setting keys persisted in the settings table.
const (
	KeyOwnerName = "owner_name"
)

// UserSettings is the per-install user configuration surfaced by the API.
type UserSettings struct {
	OwnerName string `json:"owner_name"`
}

// SettingsService manages user settings persisted in the settings table.
// Values written here survive restarts and take precedence over the
// corresponding environment variables.
type SettingsService struct {
	db *sql.DB
}

// NewSettingsService creates a new SettingsService instance.
func NewSettingsService(db *sql.DB) *SettingsService {
	return &SettingsService{db: db}
}

// GetUserSettings retrieves the persisted user settings. Missing keys come
// back as zero values, not errors.
func (s *SettingsService) GetUserSettings() (*UserSettings, error) {
	ownerName, err := s.Get(KeyOwnerName)
	if err != nil {
		return nil, fmt.Errorf("load user settings: %w", err)
	}
	return &UserSettings{OwnerName: ownerName}, nil
}

// SaveUserSettings persists the user settings with upsert semantics.
func (s *SettingsService) SaveUserSettings(settings *UserSettings) error {
	if settings == nil {
		return errors.New("settings are required")
	}
	if err := s.Set(KeyOwnerName, settings.OwnerName); err != nil {
		return fmt.Errorf("save user settings: %w", err)
	}
	return nil
}

// Get retrieves a single setting value. Returns "" when the key has never
// been written.
func (s *SettingsService) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set writes a single setting value, replacing any previous one.
func (s *SettingsService) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}
