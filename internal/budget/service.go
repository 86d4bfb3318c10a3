package budget

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	CreateBudget(ctx context.Context, b *Budget) error
	GetBudget(ctx context.Context, id uuid.UUID) (*Budget, error)
	UpdateBudget(ctx context.Context, b *Budget) error
	UpdateSpent(ctx context.Context, id uuid.UUID, spent int64) error
	ListBudgets(ctx context.Context, filter ListFilter) ([]*Budget, error)
	DeleteBudget(ctx context.Context, id uuid.UUID) error
}

// TransactionSource lists the transactions a budget's spending is derived from.
type TransactionSource interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type ListFilter struct {
	UserID uuid.UUID
	// When both are set only budgets overlapping [From, To] are returned.
	From *time.Time
	To   *time.Time
}

type Service struct {
	repo Repository
	txs  TransactionSource
}

func NewService(repo Repository, txs TransactionSource) *Service {
	return &Service{repo: repo, txs: txs}
}

type CreateParams struct {
	UserID         uuid.UUID
	Category       string
	Amount         int64
	Period         Period
	StartDate      time.Time
	EndDate        *time.Time
	AlertThreshold *int
}

type UpdateParams struct {
	Category       *string
	Amount         *int64
	StartDate      *time.Time
	EndDate        *time.Time
	AlertThreshold *int
}

func validate(b *Budget) error {
	if strings.TrimSpace(b.Category) == "" {
		return apperr.Validation("category is required")
	}

	if b.Amount <= 0 {
		return apperr.Validation("amount must be positive")
	}

	if !b.Period.Valid() {
		return apperr.Validation("invalid budget period %q", b.Period)
	}

	if b.AlertThreshold < 0 || b.AlertThreshold > 100 {
		return apperr.Validation("alert threshold must be between 0 and 100")
	}

	if !b.EndDate.After(b.StartDate) {
		return apperr.Validation("end date must be after start date")
	}

	return nil
}

// Create stores a new budget. Without an explicit end date the window spans
// exactly one period from the start date.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Budget, error) {
	if params.UserID == uuid.Nil {
		return nil, apperr.Validation("user is required")
	}

	if params.Period == "" {
		params.Period = PeriodMonthly
	}

	b := &Budget{
		UserID:         params.UserID,
		Category:       strings.TrimSpace(params.Category),
		Amount:         params.Amount,
		Period:         params.Period,
		StartDate:      params.StartDate,
		AlertThreshold: DefaultAlertThreshold,
	}

	if params.AlertThreshold != nil {
		b.AlertThreshold = *params.AlertThreshold
	}

	if params.EndDate != nil {
		b.EndDate = *params.EndDate
	} else {
		b.EndDate = b.Period.End(b.StartDate)
	}

	if err := validate(b); err != nil {
		return nil, err
	}

	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Budget, error) {
	b, err := s.repo.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.UserID != userID {
		return nil, ErrNotFound
	}

	return b, nil
}

func (s *Service) owned(ctx context.Context, userID, id uuid.UUID) (*Budget, error) {
	b, err := s.repo.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.UserID != userID {
		return nil, fmt.Errorf("budget %s: %w", id, apperr.ErrForbidden)
	}

	return b, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Budget, error) {
	if filter.UserID == uuid.Nil {
		return nil, apperr.Validation("user is required")
	}

	return s.repo.ListBudgets(ctx, filter)
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Budget, error) {
	b, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Category != nil {
		b.Category = strings.TrimSpace(*params.Category)
	}

	if params.Amount != nil {
		b.Amount = *params.Amount
	}

	if params.StartDate != nil {
		b.StartDate = *params.StartDate
	}

	if params.EndDate != nil {
		b.EndDate = *params.EndDate
	}

	if params.AlertThreshold != nil {
		b.AlertThreshold = *params.AlertThreshold
	}

	if err := validate(b); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}

	return s.repo.DeleteBudget(ctx, id)
}

// Spent sums the user's expenses in the budget's category inside its window.
func (s *Service) Spent(ctx context.Context, b *Budget) (int64, error) {
	expense := transaction.TypeExpense

	txs, err := s.txs.List(ctx, transaction.ListFilter{
		UserID:    b.UserID,
		Type:      &expense,
		Category:  &b.Category,
		StartDate: &b.StartDate,
		EndDate:   &b.EndDate,
	})
	if err != nil {
		return 0, fmt.Errorf("listing budget transactions: %w", err)
	}

	var total int64
	for _, tx := range txs {
		total += tx.Amount
	}

	return total, nil
}

// RefreshSpent recomputes and persists the cached spent value. Concurrent
// refreshes of the same budget write the same value, last write wins.
func (s *Service) RefreshSpent(ctx context.Context, userID, id uuid.UUID) (*Budget, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.refresh(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// RefreshAll refreshes every budget of userID whose window contains now.
func (s *Service) RefreshAll(ctx context.Context, userID uuid.UUID, now time.Time) ([]*Budget, error) {
	budgets, err := s.List(ctx, ListFilter{UserID: userID, From: &now, To: &now})
	if err != nil {
		return nil, err
	}

	for _, b := range budgets {
		if err := s.refresh(ctx, b); err != nil {
			return nil, err
		}
	}

	return budgets, nil
}

func (s *Service) refresh(ctx context.Context, b *Budget) error {
	spent, err := s.Spent(ctx, b)
	if err != nil {
		return err
	}

	if spent == b.Spent {
		return nil
	}

	if err := s.repo.UpdateSpent(ctx, b.ID, spent); err != nil {
		return err
	}

	b.Spent = spent

	return nil
}
