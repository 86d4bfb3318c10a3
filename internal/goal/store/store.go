package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/database"
	"github.com/MrJamesThe3rd/finsight/internal/goal"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectGoalColumns = `
	id, user_id, name, target_amount, current_amount, target_date, priority, status, created_at, updated_at
`

func scanGoal(s database.Scanner) (*goal.Goal, error) {
	var g goal.Goal

	var priority, status string

	if err := s.Scan(
		&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate,
		&priority, &status, &g.CreatedAt, &g.UpdatedAt,
	); err != nil {
		return nil, err
	}

	g.Priority = goal.Priority(priority)
	g.Status = goal.Status(status)

	return &g, nil
}

func (s *Store) CreateGoal(ctx context.Context, g *goal.Goal) error {
	query := `
		INSERT INTO goals (user_id, name, target_amount, current_amount, target_date, priority, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		g.UserID,
		g.Name,
		g.TargetAmount,
		g.CurrentAmount,
		g.TargetDate,
		g.Priority,
		g.Status,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return apperr.DataAccess("creating goal", err)
	}

	return nil
}

func (s *Store) GetGoal(ctx context.Context, id uuid.UUID) (*goal.Goal, error) {
	query := `SELECT ` + selectGoalColumns + ` FROM goals WHERE id = $1`

	g, err := scanGoal(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goal.ErrNotFound
		}

		return nil, apperr.DataAccess("getting goal", err)
	}

	return g, nil
}

func (s *Store) UpdateGoal(ctx context.Context, g *goal.Goal) error {
	query := `
		UPDATE goals
		SET name = $1, target_amount = $2, current_amount = $3, target_date = $4,
			priority = $5, status = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		g.Name,
		g.TargetAmount,
		g.CurrentAmount,
		g.TargetDate,
		g.Priority,
		g.Status,
		g.ID,
	).Scan(&g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return goal.ErrNotFound
		}

		return apperr.DataAccess("updating goal", err)
	}

	return nil
}

func (s *Store) ListGoals(ctx context.Context, userID uuid.UUID) ([]*goal.Goal, error) {
	query := `SELECT ` + selectGoalColumns + ` FROM goals WHERE user_id = $1 ORDER BY target_date ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperr.DataAccess("listing goals", err)
	}
	defer rows.Close()

	var goals []*goal.Goal

	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, apperr.DataAccess("scanning goal", err)
		}

		goals = append(goals, g)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.DataAccess("iterating goals", err)
	}

	return goals, nil
}

func (s *Store) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return apperr.DataAccess("deleting goal", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperr.DataAccess("deleting goal", err)
	}

	if n == 0 {
		return goal.ErrNotFound
	}

	return nil
}
