package services

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserSettings_RoundTrip(t *testing.T) {
	svc := NewSettingsService(openTestDB(t))

	require.NoError(t, svc.SaveUserSettings(&UserSettings{OwnerName: "alice"}))

	got, err := svc.GetUserSettings()
	require.NoError(t, err)
	assert.Equal(t, "alice", got.OwnerName)
}

func TestUserSettings_UpsertReplacesValue(t *testing.T) {
	svc := NewSettingsService(openTestDB(t))

	require.NoError(t, svc.SaveUserSettings(&UserSettings{OwnerName: "alice"}))
	require.NoError(t, svc.SaveUserSettings(&UserSettings{OwnerName: "bob"}))

	got, err := svc.GetUserSettings()
	require.NoError(t, err)
	assert.Equal(t, "bob", got.OwnerName)
}

func TestUserSettings_MissingKeyIsZeroValue(t *testing.T) {
	svc := NewSettingsService(openTestDB(t))

	got, err := svc.GetUserSettings()
	require.NoError(t, err)
	assert.Empty(t, got.OwnerName)
}

func TestSaveUserSettings_NilSettings(t *testing.T) {
	svc := NewSettingsService(openTestDB(t))
	assert.Error(t, svc.SaveUserSettings(nil))
}
