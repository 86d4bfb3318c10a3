package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/category"
	"github.com/MrJamesThe3rd/finsight/internal/database"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectCategoryColumns = `id, user_id, name, type, icon, color, created_at`

// scanCategory maps the nullable user_id column onto the Owner variant.
func scanCategory(s database.Scanner) (*category.Category, error) {
	var c category.Category

	var userID *uuid.UUID

	var typeStr string

	if err := s.Scan(&c.ID, &userID, &c.Name, &typeStr, &c.Icon, &c.Color, &c.CreatedAt); err != nil {
		return nil, err
	}

	c.Type = transaction.Type(typeStr)

	if userID == nil {
		c.Owner = category.DefaultOwner{}
	} else {
		c.Owner = category.UserOwner{UserID: *userID}
	}

	return &c, nil
}

func ownerColumn(o category.Owner) *uuid.UUID {
	if u, ok := o.(category.UserOwner); ok {
		return &u.UserID
	}

	return nil
}

func (s *Store) CreateCategory(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (user_id, name, type, icon, color, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		ownerColumn(c.Owner),
		c.Name,
		c.Type,
		c.Icon,
		c.Color,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", c.Name, apperr.ErrConflict)
		}

		return apperr.DataAccess("creating category", err)
	}

	return nil
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + ` FROM categories WHERE id = $1`

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, category.ErrNotFound
		}

		return nil, apperr.DataAccess("getting category", err)
	}

	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *category.Category) error {
	query := `UPDATE categories SET name = $1, icon = $2, color = $3 WHERE id = $4`

	if _, err := s.db.ExecContext(ctx, query, c.Name, c.Icon, c.Color, c.ID); err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", c.Name, apperr.ErrConflict)
		}

		return apperr.DataAccess("updating category", err)
	}

	return nil
}

func (s *Store) ListCategories(ctx context.Context, userID uuid.UUID, typ *transaction.Type) ([]*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + `
		FROM categories
		WHERE (user_id IS NULL OR user_id = $1)`

	args := []any{userID}

	if typ != nil {
		query += " AND type = $2"

		args = append(args, *typ)
	}

	query += " ORDER BY user_id NULLS FIRST, name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.DataAccess("listing categories", err)
	}
	defer rows.Close()

	var categories []*category.Category

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, apperr.DataAccess("scanning category", err)
		}

		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.DataAccess("iterating categories", err)
	}

	return categories, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND user_id IS NOT NULL`, id); err != nil {
		return apperr.DataAccess("deleting category", err)
	}

	return nil
}
