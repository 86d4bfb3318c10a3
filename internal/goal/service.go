package goal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=goal
type Repository interface {
	CreateGoal(ctx context.Context, g *Goal) error
	GetGoal(ctx context.Context, id uuid.UUID) (*Goal, error)
	UpdateGoal(ctx context.Context, g *Goal) error
	ListGoals(ctx context.Context, userID uuid.UUID) ([]*Goal, error)
	DeleteGoal(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	UserID        uuid.UUID
	Name          string
	TargetAmount  int64
	CurrentAmount int64
	TargetDate    time.Time
	Priority      Priority
}

type UpdateParams struct {
	Name          *string
	TargetAmount  *int64
	CurrentAmount *int64
	TargetDate    *time.Time
	Priority      *Priority
	Status        *Status
}

func validate(g *Goal) error {
	if strings.TrimSpace(g.Name) == "" {
		return apperr.Validation("name is required")
	}

	if g.TargetAmount <= 0 {
		return apperr.Validation("target amount must be positive")
	}

	if g.CurrentAmount < 0 {
		return apperr.Validation("current amount cannot be negative")
	}

	if g.TargetDate.IsZero() {
		return apperr.Validation("target date is required")
	}

	if !g.Priority.Valid() {
		return apperr.Validation("invalid priority %q", g.Priority)
	}

	if !g.Status.Valid() {
		return apperr.Validation("invalid status %q", g.Status)
	}

	return nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Goal, error) {
	if params.UserID == uuid.Nil {
		return nil, apperr.Validation("user is required")
	}

	g := &Goal{
		UserID:        params.UserID,
		Name:          strings.TrimSpace(params.Name),
		TargetAmount:  params.TargetAmount,
		CurrentAmount: params.CurrentAmount,
		TargetDate:    params.TargetDate,
		Priority:      params.Priority,
		Status:        StatusActive,
	}

	if g.Priority == "" {
		g.Priority = PriorityMedium
	}

	if err := validate(g); err != nil {
		return nil, err
	}

	g.settle()

	if err := s.repo.CreateGoal(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Goal, error) {
	g, err := s.repo.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}

	if g.UserID != userID {
		return nil, ErrNotFound
	}

	return g, nil
}

func (s *Service) owned(ctx context.Context, userID, id uuid.UUID) (*Goal, error) {
	g, err := s.repo.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}

	if g.UserID != userID {
		return nil, fmt.Errorf("goal %s: %w", id, apperr.ErrForbidden)
	}

	return g, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Goal, error) {
	if userID == uuid.Nil {
		return nil, apperr.Validation("user is required")
	}

	return s.repo.ListGoals(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Goal, error) {
	g, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		g.Name = strings.TrimSpace(*params.Name)
	}

	if params.TargetAmount != nil {
		g.TargetAmount = *params.TargetAmount
	}

	if params.CurrentAmount != nil {
		g.CurrentAmount = *params.CurrentAmount
	}

	if params.TargetDate != nil {
		g.TargetDate = *params.TargetDate
	}

	if params.Priority != nil {
		g.Priority = *params.Priority
	}

	if params.Status != nil {
		g.Status = *params.Status
	}

	if err := validate(g); err != nil {
		return nil, err
	}

	g.settle()

	if err := s.repo.UpdateGoal(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

// Contribute adds amount to the goal's savings and completes it when the
// target is reached.
func (s *Service) Contribute(ctx context.Context, userID, id uuid.UUID, amount int64) (*Goal, error) {
	if amount <= 0 {
		return nil, apperr.Validation("contribution must be positive")
	}

	g, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if g.Status == StatusCancelled {
		return nil, apperr.Validation("cannot contribute to a cancelled goal")
	}

	g.CurrentAmount += amount
	g.settle()

	if err := s.repo.UpdateGoal(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}

	return s.repo.DeleteGoal(ctx, id)
}
