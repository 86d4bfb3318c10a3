package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/database"
	"github.com/MrJamesThe3rd/finsight/internal/recurring"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectRecurringColumns = `
	id, user_id, type, amount, category, description, payment_method, frequency, start_date,
	next_occurrence, end_date, is_active, auto_process, last_processed_at, created_at, updated_at
`

func scanRecurring(s database.Scanner) (*recurring.Recurring, error) {
	var r recurring.Recurring

	var typ, method, freq string

	if err := s.Scan(
		&r.ID, &r.UserID, &typ, &r.Amount, &r.Category, &r.Description, &method, &freq, &r.StartDate,
		&r.NextOccurrence, &r.EndDate, &r.IsActive, &r.AutoProcess, &r.LastProcessedAt, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}

	r.Type = transaction.Type(typ)
	r.PaymentMethod = transaction.PaymentMethod(method)
	r.Frequency = recurring.Frequency(freq)

	return &r, nil
}

func (s *Store) CreateRecurring(ctx context.Context, r *recurring.Recurring) error {
	query := `
		INSERT INTO recurring_transactions (user_id, type, amount, category, description, payment_method,
			frequency, start_date, next_occurrence, end_date, is_active, auto_process, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		r.UserID,
		r.Type,
		r.Amount,
		r.Category,
		r.Description,
		r.PaymentMethod,
		r.Frequency,
		r.StartDate,
		r.NextOccurrence,
		r.EndDate,
		r.IsActive,
		r.AutoProcess,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return apperr.DataAccess("creating recurring transaction", err)
	}

	return nil
}

func (s *Store) GetRecurring(ctx context.Context, id uuid.UUID) (*recurring.Recurring, error) {
	query := `SELECT ` + selectRecurringColumns + ` FROM recurring_transactions WHERE id = $1`

	r, err := scanRecurring(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recurring.ErrNotFound
		}

		return nil, apperr.DataAccess("getting recurring transaction", err)
	}

	return r, nil
}

func (s *Store) UpdateRecurring(ctx context.Context, r *recurring.Recurring) error {
	query := `
		UPDATE recurring_transactions
		SET amount = $1, category = $2, description = $3, payment_method = $4, frequency = $5,
			next_occurrence = $6, end_date = $7, is_active = $8, auto_process = $9,
			last_processed_at = $10, updated_at = NOW()
		WHERE id = $11
	`

	_, err := s.db.ExecContext(ctx, query,
		r.Amount,
		r.Category,
		r.Description,
		r.PaymentMethod,
		r.Frequency,
		r.NextOccurrence,
		r.EndDate,
		r.IsActive,
		r.AutoProcess,
		r.LastProcessedAt,
		r.ID,
	)
	if err != nil {
		return apperr.DataAccess("updating recurring transaction", err)
	}

	return nil
}

func (s *Store) ClaimOccurrence(ctx context.Context, r *recurring.Recurring, prev time.Time) (bool, error) {
	query := `
		UPDATE recurring_transactions
		SET next_occurrence = $1, is_active = $2, last_processed_at = $3, updated_at = NOW()
		WHERE id = $4 AND next_occurrence = $5
	`

	res, err := s.db.ExecContext(ctx, query, r.NextOccurrence, r.IsActive, r.LastProcessedAt, r.ID, prev)
	if err != nil {
		return false, apperr.DataAccess("claiming recurring occurrence", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.DataAccess("claiming recurring occurrence", err)
	}

	return n == 1, nil
}

func (s *Store) ListRecurring(ctx context.Context, filter recurring.ListFilter) ([]*recurring.Recurring, error) {
	query := `SELECT ` + selectRecurringColumns + ` FROM recurring_transactions WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)

		args = append(args, *filter.UserID)
		argIdx++
	}

	if filter.DueAt != nil {
		query += fmt.Sprintf(" AND is_active AND (next_occurrence <= $%d OR end_date < $%d)", argIdx, argIdx)

		args = append(args, *filter.DueAt)
	}

	query += " ORDER BY next_occurrence ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.DataAccess("listing recurring transactions", err)
	}
	defer rows.Close()

	var out []*recurring.Recurring

	for rows.Next() {
		r, err := scanRecurring(rows)
		if err != nil {
			return nil, apperr.DataAccess("scanning recurring transaction", err)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.DataAccess("iterating recurring transactions", err)
	}

	return out, nil
}

func (s *Store) DeleteRecurring(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recurring_transactions WHERE id = $1`, id)
	if err != nil {
		return apperr.DataAccess("deleting recurring transaction", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperr.DataAccess("deleting recurring transaction", err)
	}

	if n == 0 {
		return recurring.ErrNotFound
	}

	return nil
}
