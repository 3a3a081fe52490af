// Package sqlite persists routines and profiles in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"routinetracker/internal/model"
	"routinetracker/internal/repository"
	"routinetracker/internal/repository/sqlite/migrations"
)

// Store provides SQLite-backed routine and profile persistence.
type Store struct {
	sqlDB  *sql.DB
	logger *zap.Logger
}

// Open opens and migrates the database at path.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("SQLite datastore opened", zap.String("path", path))
	return &Store{sqlDB: sqlDB, logger: logger}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

func (s *Store) Insert(ctx context.Context, rt model.Routine) error {
	days, done, err := encodeDays(rt)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO routines (id, content, is_completed, category, day_of_week, completed_days, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rt.ID, rt.Content, rt.Completed, string(rt.Category), days, done, rt.CreatedAt.UTC().UnixNano(),
	)
	if err != nil {
		s.logger.Error("Failed to insert routine", zap.String("id", rt.ID), zap.Error(err))
		return fmt.Errorf("insert routine: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, rt model.Routine) error {
	days, done, err := encodeDays(rt)
	if err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE routines
		 SET content = ?, is_completed = ?, category = ?, day_of_week = ?, completed_days = ?
		 WHERE id = ?`,
		rt.Content, rt.Completed, string(rt.Category), days, done, rt.ID,
	)
	if err != nil {
		s.logger.Error("Failed to update routine", zap.String("id", rt.ID), zap.Error(err))
		return fmt.Errorf("update routine: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update routine rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("routine %s: %w", rt.ID, repository.ErrRowNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM routines WHERE id = ?`, id); err != nil {
		s.logger.Error("Failed to delete routine", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("delete routine: %w", err)
	}
	return nil
}

// ListAll returns every routine, oldest first.
func (s *Store) ListAll(ctx context.Context) ([]model.Routine, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, content, is_completed, category, day_of_week, completed_days, created_at
		 FROM routines
		 ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	defer rows.Close()

	routines := []model.Routine{}
	for rows.Next() {
		var (
			rt        model.Routine
			category  string
			days      string
			done      string
			createdAt int64
		)
		if err := rows.Scan(&rt.ID, &rt.Content, &rt.Completed, &category, &days, &done, &createdAt); err != nil {
			return nil, fmt.Errorf("scan routine: %w", err)
		}
		if err := json.Unmarshal([]byte(days), &rt.Days); err != nil {
			return nil, fmt.Errorf("routine %s day_of_week: %w", rt.ID, err)
		}
		if err := json.Unmarshal([]byte(done), &rt.CompletedDays); err != nil {
			return nil, fmt.Errorf("routine %s completed_days: %w", rt.ID, err)
		}
		rt.Category = model.Category(category)
		rt.CreatedAt = time.Unix(0, createdAt).UTC()
		routines = append(routines, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate routines: %w", err)
	}
	return routines, nil
}

func (s *Store) GetTheme(ctx context.Context, profileID string) (model.Theme, bool, error) {
	var raw string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT current_theme FROM user_profiles WHERE id = ?`, profileID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get theme: %w", err)
	}
	return model.Theme(raw), true, nil
}

func (s *Store) SetTheme(ctx context.Context, profileID string, theme model.Theme) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO user_profiles (id, current_theme) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET current_theme = excluded.current_theme`,
		profileID, string(theme),
	)
	if err != nil {
		s.logger.Error("Failed to save theme", zap.String("profile_id", profileID), zap.Error(err))
		return fmt.Errorf("set theme: %w", err)
	}
	return nil
}

func encodeDays(rt model.Routine) (days, done string, err error) {
	d, err := json.Marshal(rt.Days)
	if err != nil {
		return "", "", fmt.Errorf("encode day_of_week: %w", err)
	}
	c, err := json.Marshal(rt.CompletedDays)
	if err != nil {
		return "", "", fmt.Errorf("encode completed_days: %w", err)
	}
	return string(d), string(c), nil
}
