package recurring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=recurring
type Repository interface {
	CreateRecurring(ctx context.Context, r *Recurring) error
	GetRecurring(ctx context.Context, id uuid.UUID) (*Recurring, error)
	UpdateRecurring(ctx context.Context, r *Recurring) error
	// ClaimOccurrence persists r's schedule fields only while the stored
	// next occurrence still equals prev, and reports whether it did.
	ClaimOccurrence(ctx context.Context, r *Recurring, prev time.Time) (bool, error)
	ListRecurring(ctx context.Context, filter ListFilter) ([]*Recurring, error)
	DeleteRecurring(ctx context.Context, id uuid.UUID) error
}

type ListFilter struct {
	UserID *uuid.UUID
	// DueAt selects active templates that are due or expired at that instant.
	DueAt *time.Time
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	UserID        uuid.UUID
	Type          transaction.Type
	Amount        int64
	Category      string
	Description   string
	PaymentMethod transaction.PaymentMethod
	Frequency     Frequency
	StartDate     time.Time
	EndDate       *time.Time
	AutoProcess   *bool
}

type UpdateParams struct {
	Amount        *int64
	Category      *string
	Description   *string
	PaymentMethod *transaction.PaymentMethod
	Frequency     *Frequency
	EndDate       *time.Time
	IsActive      *bool
	AutoProcess   *bool
}

func validate(r *Recurring) error {
	if r.Amount <= 0 {
		return apperr.Validation("amount must be positive")
	}

	if !r.Type.Valid() {
		return apperr.Validation("invalid transaction type %q", r.Type)
	}

	if !r.Frequency.Valid() {
		return apperr.Validation("unknown frequency %q", r.Frequency)
	}

	if !r.PaymentMethod.Valid() {
		return apperr.Validation("invalid payment method %q", r.PaymentMethod)
	}

	if r.StartDate.IsZero() {
		return apperr.Validation("start date is required")
	}

	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return apperr.Validation("end date must not be before start date")
	}

	return nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Recurring, error) {
	if params.UserID == uuid.Nil {
		return nil, apperr.Validation("user is required")
	}

	r := &Recurring{
		UserID:         params.UserID,
		Type:           params.Type,
		Amount:         params.Amount,
		Category:       strings.TrimSpace(params.Category),
		Description:    params.Description,
		PaymentMethod:  params.PaymentMethod,
		Frequency:      params.Frequency,
		StartDate:      params.StartDate,
		NextOccurrence: params.StartDate,
		EndDate:        params.EndDate,
		IsActive:       true,
		AutoProcess:    true,
	}

	if r.Category == "" {
		r.Category = transaction.DefaultCategory
	}

	if r.PaymentMethod == "" {
		r.PaymentMethod = transaction.PaymentOther
	}

	if params.AutoProcess != nil {
		r.AutoProcess = *params.AutoProcess
	}

	if err := validate(r); err != nil {
		return nil, err
	}

	if err := s.repo.CreateRecurring(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Recurring, error) {
	r, err := s.repo.GetRecurring(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.UserID != userID {
		return nil, ErrNotFound
	}

	return r, nil
}

func (s *Service) owned(ctx context.Context, userID, id uuid.UUID) (*Recurring, error) {
	r, err := s.repo.GetRecurring(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.UserID != userID {
		return nil, fmt.Errorf("recurring transaction %s: %w", id, apperr.ErrForbidden)
	}

	return r, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Recurring, error) {
	if userID == uuid.Nil {
		return nil, apperr.Validation("user is required")
	}

	return s.repo.ListRecurring(ctx, ListFilter{UserID: &userID})
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Recurring, error) {
	r, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Amount != nil {
		r.Amount = *params.Amount
	}

	if params.Category != nil {
		r.Category = strings.TrimSpace(*params.Category)
	}

	if params.Description != nil {
		r.Description = *params.Description
	}

	if params.PaymentMethod != nil {
		r.PaymentMethod = *params.PaymentMethod
	}

	if params.Frequency != nil {
		r.Frequency = *params.Frequency
	}

	if params.EndDate != nil {
		r.EndDate = params.EndDate
	}

	if params.IsActive != nil {
		r.IsActive = *params.IsActive
	}

	if params.AutoProcess != nil {
		r.AutoProcess = *params.AutoProcess
	}

	if err := validate(r); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateRecurring(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}

	return s.repo.DeleteRecurring(ctx, id)
}
