package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
)

// DedupWindow is how long an alert for the same user, type and entity is
// suppressed after it was sent.
const DedupWindow = 24 * time.Hour

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=notification
type Repository interface {
	CreateNotification(ctx context.Context, n *Notification) error
	// ExistsSince reports whether a notification with the same user, type and
	// related entity was created at or after since.
	ExistsSince(ctx context.Context, userID uuid.UUID, typ Type, relatedID uuid.UUID, since time.Time) (bool, error)
	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
}

// Pusher delivers a message to a connected client, best effort.
type Pusher interface {
	Send(userID uuid.UUID, msg any) bool
}

// Publisher hands a message to the broker for other processes.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

type Service struct {
	repo      Repository
	pusher    Pusher
	publisher Publisher
	now       func() time.Time
}

// NewService builds a notification service. pusher and publisher may be nil.
func NewService(repo Repository, pusher Pusher, publisher Publisher) *Service {
	return &Service{
		repo:      repo,
		pusher:    pusher,
		publisher: publisher,
		now:       time.Now,
	}
}

// dedupSince returns the start of the suppression window for typ. An
// achieved goal is only ever announced once.
func (s *Service) dedupSince(typ Type) time.Time {
	if typ == TypeGoalAchieved {
		return time.Time{}
	}

	return s.now().Add(-DedupWindow)
}

// Notify persists and delivers n unless an equivalent notification was sent
// recently. It reports whether n was sent.
func (s *Service) Notify(ctx context.Context, n *Notification) (bool, error) {
	if n.UserID == uuid.Nil {
		return false, apperr.Validation("user is required")
	}

	if n.Priority == "" {
		n.Priority = PriorityMedium
	}

	if n.Related.ID != nil {
		exists, err := s.repo.ExistsSince(ctx, n.UserID, n.Type, *n.Related.ID, s.dedupSince(n.Type))
		if err != nil {
			return false, fmt.Errorf("checking duplicate notification: %w", err)
		}

		if exists {
			return false, nil
		}
	}

	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return false, err
	}

	s.Deliver(ctx, n.ToMessage())

	return true, nil
}

// Deliver pushes msg to the user's live connection and the broker. Failures
// are logged, never returned.
func (s *Service) Deliver(ctx context.Context, msg Message) {
	if s.pusher != nil {
		s.pusher.Send(msg.UserID, msg)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, msg); err != nil {
			slog.WarnContext(ctx, "failed to publish notification", "id", msg.ID, "error", err)
		}
	}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	return s.repo.ListNotifications(ctx, userID, unreadOnly, limit)
}

func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id)
}
