package category

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	// ListCategories returns the default categories plus the ones owned by userID.
	ListCategories(ctx context.Context, userID uuid.UUID, typ *transaction.Type) ([]*Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	UserID uuid.UUID
	Name   string
	Type   transaction.Type
	Icon   string
	Color  string
}

type UpdateParams struct {
	Name  *string
	Icon  *string
	Color *string
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, typ *transaction.Type) ([]*Category, error) {
	if typ != nil && !typ.Valid() {
		return nil, apperr.Validation("invalid category type %q", *typ)
	}

	return s.repo.ListCategories(ctx, userID, typ)
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Category, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if !c.VisibleTo(userID) {
		return nil, ErrNotFound
	}

	return c, nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Category, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	if !params.Type.Valid() {
		return nil, apperr.Validation("invalid category type %q", params.Type)
	}

	if params.UserID == uuid.Nil {
		return nil, apperr.Validation("user is required")
	}

	c := &Category{
		Name:  name,
		Type:  params.Type,
		Icon:  params.Icon,
		Color: params.Color,
		Owner: UserOwner{UserID: params.UserID},
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) modifiable(ctx context.Context, userID, id uuid.UUID) (*Category, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if !c.CanModify(userID) {
		return nil, fmt.Errorf("category %s: %w", id, apperr.ErrForbidden)
	}

	return c, nil
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Category, error) {
	c, err := s.modifiable(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, apperr.Validation("name is required")
		}

		c.Name = name
	}

	if params.Icon != nil {
		c.Icon = *params.Icon
	}

	if params.Color != nil {
		c.Color = *params.Color
	}

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.modifiable(ctx, userID, id); err != nil {
		return err
	}

	return s.repo.DeleteCategory(ctx, id)
}
