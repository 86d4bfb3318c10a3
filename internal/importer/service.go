package importer

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/matching"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=importer
type TransactionWriter interface {
	ImportBatch(ctx context.Context, userID uuid.UUID, params []transaction.CreateParams) (*transaction.ImportResult, error)
	CreateBatch(ctx context.Context, userID uuid.UUID, params []transaction.CreateParams) ([]*transaction.Transaction, error)
	CheckBatch(ctx context.Context, userID uuid.UUID, params []transaction.CreateParams) (*transaction.ImportResult, error)
}

type RuleSource interface {
	Rules(ctx context.Context, userID uuid.UUID) (matching.Rules, error)
}

type Service struct {
	transactions TransactionWriter
	rules        RuleSource
}

func NewService(transactions TransactionWriter, rules RuleSource) *Service {
	return &Service{transactions: transactions, rules: rules}
}

type Result struct {
	Profile string
	Charset string
	*transaction.ImportResult
}

// Import parses a statement, fills in missing categories from the user's
// rules and writes it. When some rows already exist nothing is written and
// the result carries the conflicts for the user to confirm.
func (s *Service) Import(ctx context.Context, userID uuid.UUID, format Format, r io.Reader) (*Result, error) {
	parsed, err := Parse(format, r)
	if err != nil {
		return nil, err
	}

	if _, err := s.categorize(ctx, userID, parsed.Rows); err != nil {
		return nil, err
	}

	res, err := s.transactions.ImportBatch(ctx, userID, parsed.Rows)
	if err != nil {
		return nil, err
	}

	return &Result{Profile: parsed.Profile, Charset: parsed.Charset, ImportResult: res}, nil
}

// Confirm writes rows the user accepted after a conflicting import.
func (s *Service) Confirm(ctx context.Context, userID uuid.UUID, rows []transaction.CreateParams) ([]*transaction.Transaction, error) {
	return s.transactions.CreateBatch(ctx, userID, rows)
}

// CategorySource tells where a previewed row's category came from.
type CategorySource string

const (
	SourceFile CategorySource = "file"
	SourceRule CategorySource = "rule"
	SourceNone CategorySource = "none"
)

type PreviewRow struct {
	Params transaction.CreateParams
	Source CategorySource
	// Existing is the stored transaction this row duplicates, if any.
	Existing *transaction.Transaction
}

type Preview struct {
	Profile string
	Charset string
	Rows    []PreviewRow
}

// Preview parses and categorizes a statement and flags duplicates, without
// writing anything. Rows keep the statement's order; the caller edits them
// and passes the ones to keep to Confirm.
func (s *Service) Preview(ctx context.Context, userID uuid.UUID, format Format, r io.Reader) (*Preview, error) {
	parsed, err := Parse(format, r)
	if err != nil {
		return nil, err
	}

	sources, err := s.categorize(ctx, userID, parsed.Rows)
	if err != nil {
		return nil, err
	}

	res, err := s.transactions.CheckBatch(ctx, userID, parsed.Rows)
	if err != nil {
		return nil, err
	}

	preview := &Preview{Profile: parsed.Profile, Charset: parsed.Charset, Rows: make([]PreviewRow, 0, len(sources))}

	// New and Conflicts are both in statement order, so a merge restores it.
	var ni, ci int

	for i, row := range parsed.Rows {
		if ci < len(res.Conflicts) && sameRow(res.Conflicts[ci].Incoming, row) {
			c := res.Conflicts[ci]
			preview.Rows = append(preview.Rows, PreviewRow{Params: c.Incoming, Source: sources[i], Existing: c.Existing})
			ci++

			continue
		}

		if ni < len(res.New) {
			preview.Rows = append(preview.Rows, PreviewRow{Params: res.New[ni], Source: sources[i]})
			ni++
		}
	}

	return preview, nil
}

func sameRow(a, b transaction.CreateParams) bool {
	return a.Date.Equal(b.Date) && a.Amount == b.Amount && a.Type == b.Type && a.RawDescription == b.RawDescription
}

// categorize fills empty categories from the user's rules and reports the
// origin of every row's category.
func (s *Service) categorize(ctx context.Context, userID uuid.UUID, rows []transaction.CreateParams) ([]CategorySource, error) {
	rules, err := s.rules.Rules(ctx, userID)
	if err != nil {
		return nil, err
	}

	sources := make([]CategorySource, len(rows))

	for i := range rows {
		if rows[i].Category != "" {
			sources[i] = SourceFile
			continue
		}

		sources[i] = SourceNone

		if category, ok := rules.Match(rows[i].RawDescription); ok {
			rows[i].Category = category
			sources[i] = SourceRule
		}
	}

	return sources, nil
}
