package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/analytics"
	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/auth"
	"github.com/MrJamesThe3rd/finsight/internal/period"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=source_mock.go -package=export
type TransactionSource interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

// Analytics supplies the computed sections of a report.
type Analytics interface {
	Dashboard(ctx context.Context, userID uuid.UUID, r period.Range) (analytics.Dashboard, error)
	DailyTrend(ctx context.Context, userID uuid.UUID, r period.Range, fillGaps bool) ([]analytics.DailyPoint, error)
	MonthlyComparison(ctx context.Context, userID uuid.UUID, monthsBack int, now time.Time) ([]analytics.MonthlyPoint, error)
}

type UserSource interface {
	Me(ctx context.Context, userID uuid.UUID) (*auth.User, error)
}

type Service struct {
	transactions TransactionSource
	analytics    Analytics
	users        UserSource
	now          func() time.Time
}

func NewService(transactions TransactionSource, analytics Analytics, users UserSource) *Service {
	return &Service{transactions: transactions, analytics: analytics, users: users, now: time.Now}
}

// Build collects the report for userID over r.
func (s *Service) Build(ctx context.Context, userID uuid.UUID, r period.Range) (*Report, error) {
	user, err := s.users.Me(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}

	txs, err := s.transactions.List(ctx, transaction.ListFilter{
		UserID:    userID,
		StartDate: &r.Start,
		EndDate:   &r.End,
	})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	dash, err := s.analytics.Dashboard(ctx, userID, r)
	if err != nil {
		return nil, fmt.Errorf("building dashboard: %w", err)
	}

	daily, err := s.analytics.DailyTrend(ctx, userID, r, true)
	if err != nil {
		return nil, fmt.Errorf("building daily trend: %w", err)
	}

	// Anchored on the report's last month, not on today.
	monthly, err := s.analytics.MonthlyComparison(ctx, userID, analytics.DefaultMonthsBack, r.End)
	if err != nil {
		return nil, fmt.Errorf("building monthly trend: %w", err)
	}

	report := &Report{
		UserName:     user.Name,
		UserEmail:    user.Email,
		GeneratedAt:  s.now(),
		Range:        Range{Start: r.Start, End: r.End},
		Overview:     dash.Overview,
		Income:       dash.IncomeBreakdown,
		Expenses:     dash.ExpenseBreakdown,
		Budgets:      dash.Budgets,
		Goals:        dash.Goals,
		Insights:     dash.Insights,
		DailyTrend:   daily,
		MonthlyTrend: monthly,
		Transactions: make([]Row, 0, len(txs)),
	}

	for _, tx := range txs {
		tags := tx.Tags
		if tags == nil {
			tags = []string{}
		}

		report.Transactions = append(report.Transactions, Row{
			Date:          tx.Date,
			Type:          tx.Type,
			Category:      tx.Category,
			Description:   tx.Description,
			Amount:        tx.Amount,
			PaymentMethod: tx.PaymentMethod,
			Tags:          tags,
			Notes:         tx.Notes,
		})
	}

	return report, nil
}

// Render encodes report in format.
func Render(report *Report, format Format) (*Document, error) {
	var buf bytes.Buffer

	switch format {
	case FormatCSV:
		if err := WriteCSV(&buf, report.Transactions); err != nil {
			return nil, apperr.External("rendering csv", err)
		}
	case FormatPDF:
		if err := WritePDF(&buf, report); err != nil {
			return nil, apperr.External("rendering pdf", err)
		}
	case FormatJSON:
		if err := json.NewEncoder(&buf).Encode(report); err != nil {
			return nil, apperr.External("rendering json", err)
		}
	default:
		return nil, apperr.Validation("unsupported export format %q", format)
	}

	return &Document{
		Format:      format,
		Filename:    filename(report, format),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

// Export builds and renders the report in one step.
func (s *Service) Export(ctx context.Context, userID uuid.UUID, r period.Range, format Format) (*Document, error) {
	report, err := s.Build(ctx, userID, r)
	if err != nil {
		return nil, err
	}

	return Render(report, format)
}

// Format: finsight_YYYYMMDD_YYYYMMDD.ext
func filename(report *Report, format Format) string {
	return fmt.Sprintf("finsight_%s_%s.%s",
		report.Range.Start.Format("20060102"), report.Range.End.Format("20060102"), format)
}
