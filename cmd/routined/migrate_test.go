package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"routinetracker/internal/model"
)

// useConfig points the CLI at a temporary config directory holding base.yaml.
func useConfig(t *testing.T, baseYAML string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(baseYAML), 0o600))

	t.Setenv("DATASTORE_DRIVER", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("TRACKER_MODE", "")
	prevEnv, prevDir := configEnv, configDir
	configEnv, configDir = "test", dir
	t.Cleanup(func() { configEnv, configDir = prevEnv, prevDir })
}

func sqliteConfig(path string) string {
	return fmt.Sprintf("tracker:\n  mode: weekly\ndatastore:\n  driver: sqlite\n  sqlite_path: %q\n", path)
}

func TestMigrateSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "routines.db")
	useConfig(t, sqliteConfig(dbPath))

	require.NoError(t, runMigrate(migrateCmd, nil))

	sqlDB, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer sqlDB.Close()

	for _, table := range []string{"routines", "user_profiles"} {
		var name string
		err := sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	// A second run finds nothing pending.
	require.NoError(t, runMigrate(migrateCmd, nil))
}

func TestMigrateMemoryHasNothingToDo(t *testing.T) {
	useConfig(t, "datastore:\n  driver: memory\n")

	var out bytes.Buffer
	migrateCmd.SetOut(&out)
	t.Cleanup(func() { migrateCmd.SetOut(nil) })

	require.NoError(t, runMigrate(migrateCmd, nil))
	assert.Contains(t, out.String(), "driver memory has no schema to migrate")
}

func TestTrackerStateSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "routines.db")
	useConfig(t, sqliteConfig(dbPath))
	cfg, err := loadConfig()
	require.NoError(t, err)

	ctx := context.Background()
	ds, err := openDatastore(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, ds.pinger)

	tracker, err := newTracker(ctx, cfg, ds, zap.NewNop())
	require.NoError(t, err)
	r, err := tracker.Add(ctx, "Stretch", model.CategoryHealth, []model.Weekday{model.Tuesday})
	require.NoError(t, err)
	_, err = tracker.SetTheme(ctx, model.ThemeSunset)
	require.NoError(t, err)
	ds.close()

	ds, err = openDatastore(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer ds.close()
	reloaded, err := newTracker(ctx, cfg, ds, zap.NewNop())
	require.NoError(t, err)

	got, ok := reloaded.Get(r.ID)
	require.True(t, ok)
	assert.Equal(t, "Stretch", got.Content)
	assert.Equal(t, model.ThemeSunset, reloaded.Theme())
}

func TestOpenDatastoreMemory(t *testing.T) {
	useConfig(t, "datastore:\n  driver: memory\n")
	cfg, err := loadConfig()
	require.NoError(t, err)

	ds, err := openDatastore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer ds.close()
	assert.Nil(t, ds.routines)
	assert.Nil(t, ds.pinger)
	assert.Empty(t, ds.trackerOptions())
}
