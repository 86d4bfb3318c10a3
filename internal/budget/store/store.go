package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/budget"
	"github.com/MrJamesThe3rd/finsight/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectBudgetColumns = `
	id, user_id, category, amount, spent, period, start_date, end_date, alert_threshold, created_at, updated_at
`

func scanBudget(s database.Scanner) (*budget.Budget, error) {
	var b budget.Budget

	var periodStr string

	if err := s.Scan(
		&b.ID, &b.UserID, &b.Category, &b.Amount, &b.Spent, &periodStr,
		&b.StartDate, &b.EndDate, &b.AlertThreshold, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}

	b.Period = budget.Period(periodStr)

	return &b, nil
}

func (s *Store) CreateBudget(ctx context.Context, b *budget.Budget) error {
	query := `
		INSERT INTO budgets (user_id, category, amount, spent, period, start_date, end_date, alert_threshold, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		b.UserID,
		b.Category,
		b.Amount,
		b.Spent,
		b.Period,
		b.StartDate,
		b.EndDate,
		b.AlertThreshold,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return apperr.DataAccess("creating budget", err)
	}

	return nil
}

func (s *Store) GetBudget(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	query := `SELECT ` + selectBudgetColumns + ` FROM budgets WHERE id = $1`

	b, err := scanBudget(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, budget.ErrNotFound
		}

		return nil, apperr.DataAccess("getting budget", err)
	}

	return b, nil
}

func (s *Store) UpdateBudget(ctx context.Context, b *budget.Budget) error {
	query := `
		UPDATE budgets
		SET category = $1, amount = $2, start_date = $3, end_date = $4, alert_threshold = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		b.Category,
		b.Amount,
		b.StartDate,
		b.EndDate,
		b.AlertThreshold,
		b.ID,
	).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return budget.ErrNotFound
		}

		return apperr.DataAccess("updating budget", err)
	}

	return nil
}

func (s *Store) UpdateSpent(ctx context.Context, id uuid.UUID, spent int64) error {
	query := `UPDATE budgets SET spent = $1, updated_at = NOW() WHERE id = $2`

	if _, err := s.db.ExecContext(ctx, query, spent, id); err != nil {
		return apperr.DataAccess("updating budget spent", err)
	}

	return nil
}

func (s *Store) ListBudgets(ctx context.Context, filter budget.ListFilter) ([]*budget.Budget, error) {
	query := `SELECT ` + selectBudgetColumns + ` FROM budgets WHERE user_id = $1`

	args := []any{filter.UserID}

	if filter.From != nil && filter.To != nil {
		query += " AND start_date <= $2 AND end_date >= $3"

		args = append(args, *filter.To, *filter.From)
	}

	query += " ORDER BY start_date ASC, category ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.DataAccess("listing budgets", err)
	}
	defer rows.Close()

	var budgets []*budget.Budget

	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, apperr.DataAccess("scanning budget", err)
		}

		budgets = append(budgets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.DataAccess("iterating budgets", err)
	}

	return budgets, nil
}

func (s *Store) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return apperr.DataAccess("deleting budget", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperr.DataAccess("deleting budget", err)
	}

	if n == 0 {
		return budget.ErrNotFound
	}

	return nil
}
