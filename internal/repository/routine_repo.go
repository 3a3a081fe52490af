package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"routinetracker/internal/model"
)

type RoutineRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRoutineRepository(db *pgxpool.Pool, logger *zap.Logger) *RoutineRepository {
	return &RoutineRepository{
		db:     db,
		logger: logger,
	}
}

func (r *RoutineRepository) Insert(ctx context.Context, rt model.Routine) error {
	r.logger.Debug("Inserting routine",
		zap.String("id", rt.ID),
		zap.String("content", rt.Content),
		zap.Ints("day_of_week", rt.Days.Ints()),
	)

	query := `
        INSERT INTO routines (id, content, is_completed, category, day_of_week, completed_days, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.db.Exec(ctx, query,
		rt.ID,
		rt.Content,
		rt.Completed,
		string(rt.Category),
		toInt16s(rt.Days),
		toInt16s(rt.CompletedDays),
		rt.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert routine", zap.String("id", rt.ID), zap.Error(err))
		return err
	}

	r.logger.Info("Routine inserted successfully", zap.String("id", rt.ID))
	return nil
}

func (r *RoutineRepository) Update(ctx context.Context, rt model.Routine) error {
	r.logger.Debug("Updating routine", zap.String("id", rt.ID))

	query := `
        UPDATE routines
        SET content = $2, is_completed = $3, category = $4, day_of_week = $5, completed_days = $6
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query,
		rt.ID,
		rt.Content,
		rt.Completed,
		string(rt.Category),
		toInt16s(rt.Days),
		toInt16s(rt.CompletedDays),
	)
	if err != nil {
		r.logger.Error("Failed to update routine", zap.String("id", rt.ID), zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		r.logger.Warn("Routine to update does not exist", zap.String("id", rt.ID))
		return fmt.Errorf("routine %s: %w", rt.ID, ErrRowNotFound)
	}

	r.logger.Info("Routine updated successfully", zap.String("id", rt.ID))
	return nil
}

func (r *RoutineRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debug("Deleting routine", zap.String("id", id))

	result, err := r.db.Exec(ctx, `DELETE FROM routines WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete routine", zap.String("id", id), zap.Error(err))
		return err
	}

	r.logger.Info("Routine deleted",
		zap.String("id", id),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}

// ListAll returns every routine, oldest first.
func (r *RoutineRepository) ListAll(ctx context.Context) ([]model.Routine, error) {
	r.logger.Debug("Listing all routines")

	query := `
        SELECT id, content, is_completed, category, day_of_week, completed_days, created_at
        FROM routines
        ORDER BY created_at ASC, id ASC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list routines", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	routines := []model.Routine{}
	for rows.Next() {
		var (
			rt       model.Routine
			category string
			days     []int16
			done     []int16
		)
		if err := rows.Scan(
			&rt.ID,
			&rt.Content,
			&rt.Completed,
			&category,
			&days,
			&done,
			&rt.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan routine", zap.Error(err))
			return nil, err
		}
		if rt.Days, err = fromInt16s(days); err != nil {
			return nil, fmt.Errorf("routine %s day_of_week: %w", rt.ID, err)
		}
		if rt.CompletedDays, err = fromInt16s(done); err != nil {
			return nil, fmt.Errorf("routine %s completed_days: %w", rt.ID, err)
		}
		rt.Category = model.Category(category)
		routines = append(routines, rt)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate routines", zap.Error(err))
		return nil, err
	}

	r.logger.Debug("Listed routines", zap.Int("count", len(routines)))
	return routines, nil
}

func toInt16s(s model.DaySet) []int16 {
	ints := s.Ints()
	out := make([]int16, len(ints))
	for i, d := range ints {
		out[i] = int16(d)
	}
	return out
}

func fromInt16s(days []int16) (model.DaySet, error) {
	ints := make([]int, len(days))
	for i, d := range days {
		ints[i] = int(d)
	}
	return model.DaySetFromInts(ints)
}
