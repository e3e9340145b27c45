package goals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"goal-tracker-backend/internal/db"
	"goal-tracker-backend/internal/progress"
)

const constraintGoalKey = "goals_pkey"

const goalColumns = `id, name, goal_type, target_value, start_date, end_date, current_value, progress_updated_at`

type PostgresRepository struct {
	db db.DBTX
}

func NewPostgresRepository(dbx db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: dbx}
}

// owner ids are UUIDs; anything else owns nothing.
func validOwner(ownerID string) bool {
	_, err := uuid.Parse(ownerID)
	return err == nil
}

func (r *PostgresRepository) Create(ctx context.Context, ownerID string, g *Goal) error {
	if !validOwner(ownerID) {
		return ErrOwnerNotFound
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (owner_id, id, name, goal_type, target_value, start_date, end_date, current_value, progress_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, ownerID, g.ID, g.Name, g.GoalType, g.TargetValue, g.StartDate, g.EndDate,
		g.Progress.CurrentValue, g.Progress.UpdatedAt)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err, constraintGoalKey):
			return ErrDuplicateID
		case db.IsForeignKeyViolation(err):
			return ErrOwnerNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, ownerID string, g *Goal) error {
	if !validOwner(ownerID) {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE goals
		SET name = $3, goal_type = $4, target_value = $5, start_date = $6, end_date = $7
		WHERE owner_id = $1 AND id = $2
	`, ownerID, g.ID, g.Name, g.GoalType, g.TargetValue, g.StartDate, g.EndDate)
	return oneRow(res, err)
}

func (r *PostgresRepository) SetProgress(ctx context.Context, ownerID, goalID string, p progress.Progress) error {
	if !validOwner(ownerID) {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE goals
		SET current_value = $3, progress_updated_at = $4
		WHERE owner_id = $1 AND id = $2
	`, ownerID, goalID, p.CurrentValue, p.UpdatedAt)
	return oneRow(res, err)
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, goalID string) error {
	if !validOwner(ownerID) {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM goals
		WHERE owner_id = $1 AND id = $2
	`, ownerID, goalID)
	return oneRow(res, err)
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID, goalID string) (*Goal, error) {
	if !validOwner(ownerID) {
		return nil, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE owner_id = $1 AND id = $2
	`, ownerID, goalID)

	g, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

func (r *PostgresRepository) List(ctx context.Context, ownerID string) ([]Goal, error) {
	if !validOwner(ownerID) {
		return []Goal{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE owner_id = $1
		ORDER BY position
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(s scanner) (*Goal, error) {
	var (
		g          Goal
		start, end sql.NullString
	)
	err := s.Scan(&g.ID, &g.Name, &g.GoalType, &g.TargetValue, &start, &end,
		&g.Progress.CurrentValue, &g.Progress.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if start.Valid {
		g.StartDate = &start.String
	}
	if end.Valid {
		g.EndDate = &end.String
	}
	return &g, nil
}

func oneRow(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)
