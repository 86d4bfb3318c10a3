package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/notification"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateNotification(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, priority, title, message, related_kind, related_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		n.UserID,
		n.Type,
		n.Priority,
		n.Title,
		n.Message,
		n.Related.Kind,
		n.Related.ID,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return apperr.DataAccess("creating notification", err)
	}

	return nil
}

func (s *Store) ExistsSince(ctx context.Context, userID uuid.UUID, typ notification.Type, relatedID uuid.UUID, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND type = $2 AND related_id = $3 AND created_at >= $4
		)
	`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, userID, typ, relatedID, since).Scan(&exists); err != nil {
		return false, apperr.DataAccess("checking notification", err)
	}

	return exists, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*notification.Notification, error) {
	query := `
		SELECT id, user_id, type, priority, title, message, related_kind, related_id, read, created_at
		FROM notifications
		WHERE user_id = $1 AND ($2 = FALSE OR read = FALSE)
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, unreadOnly, limit)
	if err != nil {
		return nil, apperr.DataAccess("listing notifications", err)
	}
	defer rows.Close()

	var out []*notification.Notification

	for rows.Next() {
		var n notification.Notification

		var typ, priority string

		if err := rows.Scan(
			&n.ID, &n.UserID, &typ, &priority, &n.Title, &n.Message,
			&n.Related.Kind, &n.Related.ID, &n.Read, &n.CreatedAt,
		); err != nil {
			return nil, apperr.DataAccess("scanning notification", err)
		}

		n.Type = notification.Type(typ)
		n.Priority = notification.Priority(priority)
		out = append(out, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.DataAccess("iterating notifications", err)
	}

	return out, nil
}

func (s *Store) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperr.DataAccess("marking notification read", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperr.DataAccess("marking notification read", err)
	}

	if n == 0 {
		return notification.ErrNotFound
	}

	return nil
}
