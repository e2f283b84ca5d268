package config_test

import (
	"database/sql"
	"os"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/lifegraph/internal/config"
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

func TestLoad_DefaultHostIsLocalhost(t *testing.T) {
	_ = os.Unsetenv("LIFEGRAPH_HOST")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host,
		"default host must be loopback")
	assert.Equal(t, 7575, cfg.Server.Port)
}

func TestLoad_CanOverrideHost(t *testing.T) {
	t.Setenv("LIFEGRAPH_HOST", "0.0.0.0")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoad_StorageDefaults(t *testing.T) {
	_ = os.Unsetenv("LIFEGRAPH_STORAGE_ENGINE")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Engine)
	assert.Equal(t, "./data", cfg.Storage.DataPath)
}

func TestLoad_OwnerNameFromEnv(t *testing.T) {
	t.Setenv("LIFEGRAPH_OWNER_NAME", "alice")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.User.OwnerName)
}

func TestSaveUserSettings_Persists(t *testing.T) {
	db := openTestDB(t)

	cfg := &config.Config{}
	cfg.User.OwnerName = "bob"
	require.NoError(t, cfg.SaveUserSettings(db))

	var value string
	require.NoError(t, db.QueryRow("SELECT value FROM settings WHERE key = 'owner_name'").Scan(&value))
	assert.Equal(t, "bob", value)
}

func TestLoadFromDB_DBValueWins(t *testing.T) {
	db := openTestDB(t)
	t.Setenv("LIFEGRAPH_OWNER_NAME", "env-name")

	_, err := db.Exec("INSERT INTO settings (key, value) VALUES ('owner_name', 'db-name')")
	require.NoError(t, err)

	cfg, err := config.LoadFromDB(db)
	require.NoError(t, err)
	assert.Equal(t, "db-name", cfg.User.OwnerName)
}

func TestLoadFromDB_FallsBackToEnv(t *testing.T) {
	db := openTestDB(t)
	t.Setenv("LIFEGRAPH_OWNER_NAME", "env-name")

	cfg, err := config.LoadFromDB(db)
	require.NoError(t, err)
	assert.Equal(t, "env-name", cfg.User.OwnerName)
}

func TestLoadFromDB_NilDB(t *testing.T) {
	_, err := config.LoadFromDB(nil)
	assert.Error(t, err)
}
