package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"routinetracker/internal/model"
	"routinetracker/pkg/config"
	"routinetracker/pkg/db"
)

// openTestPool connects to the database named by DB_HOST, DB_PORT, DB_USER,
// DB_PASSWORD and DB_NAME, and skips when DB_HOST is unset.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("DB_HOST") == "" {
		t.Skip("DB_HOST not set, skipping PostgreSQL tests")
	}

	cfg := config.DBConfig{Port: 5432, User: "postgres", Name: "postgres"}
	config.OverrideDBFromEnv(&cfg)

	ctx := context.Background()
	pool, err := db.NewConnection(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool, zap.NewNop()))
	return pool
}

func TestRoutineRepositoryLifecycle(t *testing.T) {
	pool := openTestPool(t)
	repo := NewRoutineRepository(pool, zap.NewNop())
	ctx := context.Background()

	days, err := model.NewDaySet(model.Monday, model.Wednesday)
	require.NoError(t, err)
	rt := model.Routine{
		ID:        uuid.NewString(),
		Content:   "Drink Water",
		Category:  model.CategoryWater,
		Days:      days,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	t.Cleanup(func() { _ = repo.Delete(context.Background(), rt.ID) })

	require.NoError(t, repo.Insert(ctx, rt))

	done, err := model.NewDaySet(model.Wednesday)
	require.NoError(t, err)
	rt.Content = "Drink more water"
	rt.CompletedDays = done
	require.NoError(t, repo.Update(ctx, rt))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	var got *model.Routine
	for i := range all {
		if all[i].ID == rt.ID {
			got = &all[i]
		}
	}
	require.NotNil(t, got)
	assert.Equal(t, "Drink more water", got.Content)
	assert.Equal(t, model.CategoryWater, got.Category)
	assert.Equal(t, days, got.Days)
	assert.Equal(t, done, got.CompletedDays)
	assert.False(t, got.Completed)
	assert.WithinDuration(t, rt.CreatedAt, got.CreatedAt, time.Millisecond)

	require.NoError(t, repo.Delete(ctx, rt.ID))
	assert.ErrorIs(t, repo.Update(ctx, rt), ErrRowNotFound)
}

func TestProfileRepositoryUpsert(t *testing.T) {
	pool := openTestPool(t)
	repo := NewProfileRepository(pool, zap.NewNop())
	ctx := context.Background()

	id := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM user_profiles WHERE id = $1`, id)
	})

	_, found, err := repo.GetTheme(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.SetTheme(ctx, id, model.ThemeSunset))
	require.NoError(t, repo.SetTheme(ctx, id, model.ThemeForest))

	theme, found, err := repo.GetTheme(ctx, id)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, model.ThemeForest, theme)
}
