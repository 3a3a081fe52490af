package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"routinetracker/internal/model"
	"routinetracker/internal/repository"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "routines.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), " ", zap.NewNop())
	assert.Error(t, err)
}

func TestOpenIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routines.db")
	first, err := Open(context.Background(), path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(context.Background(), path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestRoutineLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	days, err := model.NewDaySet(model.Monday, model.Wednesday, model.Friday)
	require.NoError(t, err)
	base := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

	water := model.Routine{ID: "b", Content: "Drink Water", Category: model.CategoryWater, Days: days, CreatedAt: base}
	walk := model.Routine{ID: "a", Content: "Walk", Category: model.CategoryHealth, Days: days, CreatedAt: base.Add(time.Minute)}
	require.NoError(t, store.Insert(ctx, walk))
	require.NoError(t, store.Insert(ctx, water))

	list, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID, "ordered by creation time")
	assert.Equal(t, water, list[0])

	water.Content = "Drink more water"
	water.CompletedDays = water.CompletedDays.Add(model.Wednesday)
	require.NoError(t, store.Update(ctx, water))

	list, err = store.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, water, list[0])

	require.NoError(t, store.Delete(ctx, "b"))
	require.NoError(t, store.Delete(ctx, "b"))
	list, err = store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)

	err = store.Update(ctx, water)
	assert.ErrorIs(t, err, repository.ErrRowNotFound)
}

func TestThemeUpsert(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, found, err := store.GetTheme(ctx, "me")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.SetTheme(ctx, "me", model.ThemeForest))
	require.NoError(t, store.SetTheme(ctx, "me", model.ThemeSunset))
	require.NoError(t, store.SetTheme(ctx, "other", model.ThemeOcean))

	theme, found, err := store.GetTheme(ctx, "me")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, model.ThemeSunset, theme)
}

func TestUpSection(t *testing.T) {
	assert.Equal(t, "\nA;\n", upSection("-- +migrate Up\nA;\n-- +migrate Down\nB;"))
	assert.Equal(t, "plain", upSection("plain"))
}
