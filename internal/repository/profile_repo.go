package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"routinetracker/internal/model"
)

// ProfileRepository reads and writes user_profiles rows by explicit id.
type ProfileRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProfileRepository(db *pgxpool.Pool, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{db: db, logger: logger}
}

// GetTheme returns found=false when the profile row does not exist.
func (r *ProfileRepository) GetTheme(ctx context.Context, profileID string) (theme model.Theme, found bool, err error) {
	var raw string
	err = r.db.QueryRow(ctx,
		`SELECT current_theme FROM user_profiles WHERE id = $1`,
		profileID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		r.logger.Debug("Profile not found", zap.String("profile_id", profileID))
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("Failed to load profile theme", zap.String("profile_id", profileID), zap.Error(err))
		return "", false, err
	}
	return model.Theme(raw), true, nil
}

// SetTheme upserts the profile row.
func (r *ProfileRepository) SetTheme(ctx context.Context, profileID string, theme model.Theme) error {
	query := `
        INSERT INTO user_profiles (id, current_theme)
        VALUES ($1, $2)
        ON CONFLICT (id) DO UPDATE SET current_theme = EXCLUDED.current_theme
    `
	if _, err := r.db.Exec(ctx, query, profileID, string(theme)); err != nil {
		r.logger.Error("Failed to save profile theme",
			zap.String("profile_id", profileID),
			zap.String("theme", string(theme)),
			zap.Error(err),
		)
		return err
	}

	r.logger.Info("Profile theme saved",
		zap.String("profile_id", profileID),
		zap.String("theme", string(theme)),
	)
	return nil
}
