package matching

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindMatch returns the category of the longest pattern contained in
	// description, or "" when none matches.
	FindMatch(ctx context.Context, userID uuid.UUID, description string) (string, error)
	ListRules(ctx context.Context, userID uuid.UUID) ([]*Rule, error)
	CreateRule(ctx context.Context, r *Rule) error
	DeleteRule(ctx context.Context, userID, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the category for description. Returns "" if no rule
// matches.
func (s *Service) Suggest(ctx context.Context, userID uuid.UUID, description string) (string, error) {
	return s.repo.FindMatch(ctx, userID, description)
}

// Rules loads the user's rules for repeated in-memory matching.
func (s *Service) Rules(ctx context.Context, userID uuid.UUID) (Rules, error) {
	rules, err := s.repo.ListRules(ctx, userID)
	if err != nil {
		return nil, err
	}

	return NewRules(rules), nil
}

// Learn remembers that descriptions containing pattern belong to category.
func (s *Service) Learn(ctx context.Context, userID uuid.UUID, pattern, category string) (*Rule, error) {
	pattern = strings.TrimSpace(pattern)
	category = strings.TrimSpace(category)

	if pattern == "" || category == "" {
		return nil, apperr.Validation("pattern and category are required")
	}

	r := &Rule{UserID: userID, Pattern: pattern, Category: category}
	if err := s.repo.CreateRule(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Rule, error) {
	return s.repo.ListRules(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteRule(ctx, userID, id)
}
