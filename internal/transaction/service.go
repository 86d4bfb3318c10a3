package transaction

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error

	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	BeginImport(ctx context.Context, userID uuid.UUID, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, userID uuid.UUID, params []CreateParams) ([]*Transaction, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

// ChangeListener is notified after a user's transactions were written.
type ChangeListener func(ctx context.Context, userID uuid.UUID)

type Service struct {
	repo Repository

	mu        sync.RWMutex
	listeners []ChangeListener
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Subscribe registers l to run after every successful write.
func (s *Service) Subscribe(l ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, l)
}

func (s *Service) changed(ctx context.Context, userID uuid.UUID) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.listeners {
		l(ctx, userID)
	}
}

type CreateParams struct {
	UserID         uuid.UUID
	Amount         int64
	Type           Type
	Category       string
	Description    string
	RawDescription string
	Date           time.Time
	PaymentMethod  PaymentMethod
	Tags           []string
	Notes          string
	RecurringID    *uuid.UUID
}

func (p *CreateParams) normalize() error {
	if p.UserID == uuid.Nil {
		return apperr.Validation("user is required")
	}

	if p.Amount <= 0 {
		return apperr.Validation("amount must be positive")
	}

	if !p.Type.Valid() {
		return apperr.Validation("invalid transaction type %q", p.Type)
	}

	if p.Date.IsZero() {
		return apperr.Validation("date is required")
	}

	p.Category = strings.TrimSpace(p.Category)
	if p.Category == "" {
		p.Category = DefaultCategory
	}

	if p.PaymentMethod == "" {
		p.PaymentMethod = PaymentOther
	}

	if !p.PaymentMethod.Valid() {
		return apperr.Validation("invalid payment method %q", p.PaymentMethod)
	}

	return nil
}

// UpdateParams carries a partial update; nil fields are left untouched.
type UpdateParams struct {
	Amount        *int64
	Type          *Type
	Category      *string
	Description   *string
	Date          *time.Time
	PaymentMethod *PaymentMethod
	Tags          []string
	Notes         *string
}

type ListFilter struct {
	UserID    uuid.UUID
	Type      *Type
	Category  *string
	StartDate *time.Time
	EndDate   *time.Time
	// Limit > 0 returns the newest Limit transactions, newest first.
	Limit int
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := params.normalize(); err != nil {
		return nil, err
	}

	tx := paramsToTransaction(params)
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.changed(ctx, tx.UserID)

	return tx, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	if filter.UserID == uuid.Nil {
		return nil, apperr.Validation("user is required")
	}

	return s.repo.ListTransactions(ctx, filter)
}

// Get returns the transaction if it belongs to userID. Transactions of other
// users are reported as not found.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.UserID != userID {
		return nil, ErrNotFound
	}

	return tx, nil
}

// owned loads a transaction for mutation; a foreign owner is a forbidden access.
func (s *Service) owned(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.UserID != userID {
		return nil, fmt.Errorf("transaction %s: %w", id, apperr.ErrForbidden)
	}

	return tx, nil
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	tx, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Amount != nil {
		if *params.Amount <= 0 {
			return nil, apperr.Validation("amount must be positive")
		}

		tx.Amount = *params.Amount
	}

	if params.Type != nil {
		if !params.Type.Valid() {
			return nil, apperr.Validation("invalid transaction type %q", *params.Type)
		}

		tx.Type = *params.Type
	}

	if params.Category != nil {
		tx.Category = strings.TrimSpace(*params.Category)
		if tx.Category == "" {
			tx.Category = DefaultCategory
		}
	}

	if params.Description != nil {
		tx.Description = *params.Description
	}

	if params.Date != nil {
		tx.Date = *params.Date
	}

	if params.PaymentMethod != nil {
		if !params.PaymentMethod.Valid() {
			return nil, apperr.Validation("invalid payment method %q", *params.PaymentMethod)
		}

		tx.PaymentMethod = *params.PaymentMethod
	}

	if params.Tags != nil {
		tx.Tags = params.Tags
	}

	if params.Notes != nil {
		tx.Notes = *params.Notes
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.changed(ctx, userID)

	return tx, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}

	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.changed(ctx, userID)

	return nil
}

type ImportResult struct {
	Imported  []*Transaction
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Transaction
}

// ImportBatch creates all params for userID unless some of them already exist.
// On conflict nothing is written and the caller gets the split between new rows
// and conflicting ones so the user can confirm.
func (s *Service) ImportBatch(ctx context.Context, userID uuid.UUID, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	itx, err := s.beginBatch(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	defer itx.Rollback()

	newParams, conflicts, err := classify(ctx, itx, userID, params)
	if err != nil {
		return nil, err
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	txs := paramsToTransactions(newParams)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	s.changed(ctx, userID)

	return &ImportResult{Imported: txs}, nil
}

// CheckBatch is ImportBatch without the write: it reports which params are
// new and which collide with stored transactions.
func (s *Service) CheckBatch(ctx context.Context, userID uuid.UUID, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	itx, err := s.beginBatch(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	defer itx.Rollback()

	newParams, conflicts, err := classify(ctx, itx, userID, params)
	if err != nil {
		return nil, err
	}

	return &ImportResult{New: newParams, Conflicts: conflicts}, nil
}

// beginBatch normalizes params in place and opens the per-user import
// transaction over their date span.
func (s *Service) beginBatch(ctx context.Context, userID uuid.UUID, params []CreateParams) (ImportTx, error) {
	for i := range params {
		params[i].UserID = userID
		if err := params[i].normalize(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, userID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}

	return itx, nil
}

func classify(ctx context.Context, itx ImportTx, userID uuid.UUID, params []CreateParams) ([]CreateParams, []Conflict, error) {
	duplicates, err := itx.FindDuplicates(ctx, userID, params)
	if err != nil {
		return nil, nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Transaction, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOf(d.Date, d.Amount, d.Type, d.RawDescription)] = d
	}

	var newParams []CreateParams

	var conflicts []Conflict

	for _, p := range params {
		existing, found := lookup[keyOf(p.Date, p.Amount, p.Type, p.RawDescription)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	return newParams, conflicts, nil
}

// CreateBatch writes all params for userID without duplicate checks.
func (s *Service) CreateBatch(ctx context.Context, userID uuid.UUID, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	itx, err := s.beginBatch(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	defer itx.Rollback()

	txs := paramsToTransactions(params)
	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	s.changed(ctx, userID)

	return txs, nil
}

type dupKey struct {
	Date           string
	Amount         int64
	Type           Type
	RawDescription string
}

func keyOf(date time.Time, amount int64, typ Type, raw string) dupKey {
	return dupKey{
		Date:           date.Format(time.DateOnly),
		Amount:         amount,
		Type:           typ,
		RawDescription: raw,
	}
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}

func paramsToTransaction(p CreateParams) *Transaction {
	return &Transaction{
		UserID:         p.UserID,
		Amount:         p.Amount,
		Type:           p.Type,
		Category:       p.Category,
		Description:    p.Description,
		RawDescription: p.RawDescription,
		Date:           p.Date,
		PaymentMethod:  p.PaymentMethod,
		Tags:           p.Tags,
		Notes:          p.Notes,
		RecurringID:    p.RecurringID,
	}
}

func paramsToTransactions(params []CreateParams) []*Transaction {
	txs := make([]*Transaction, len(params))
	for i, p := range params {
		txs[i] = paramsToTransaction(p)
	}

	return txs
}
