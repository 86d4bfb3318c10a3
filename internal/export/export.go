// Package export renders a user's analytics and transactions for a date
// range as a downloadable CSV, PDF or JSON report.
package export

import (
	"strings"
	"time"

	"github.com/MrJamesThe3rd/finsight/internal/analytics"
	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatPDF, FormatJSON:
		return f, nil
	case "":
		return FormatCSV, nil
	default:
		return "", apperr.Validation("unsupported export format %q", s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	default:
		return "text/csv"
	}
}

type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Row struct {
	Date          time.Time                 `json:"date"`
	Type          transaction.Type          `json:"type"`
	Category      string                    `json:"category"`
	Description   string                    `json:"description"`
	Amount        int64                     `json:"amount"`
	PaymentMethod transaction.PaymentMethod `json:"payment_method"`
	Tags          []string                  `json:"tags"`
	Notes         string                    `json:"notes"`
}

// Report is everything a rendered export contains.
type Report struct {
	UserName     string                        `json:"user_name"`
	UserEmail    string                        `json:"user_email"`
	GeneratedAt  time.Time                     `json:"generated_at"`
	Range        Range                         `json:"range"`
	Overview     analytics.Overview            `json:"overview"`
	Income       []analytics.CategoryTotal     `json:"income_breakdown"`
	Expenses     []analytics.CategoryTotal     `json:"expense_breakdown"`
	Budgets      []analytics.BudgetPerformance `json:"budget_performance"`
	Goals        analytics.GoalReport          `json:"goal_progress"`
	Insights     []analytics.Insight           `json:"insights"`
	DailyTrend   []analytics.DailyPoint        `json:"daily_trend"`
	MonthlyTrend []analytics.MonthlyPoint      `json:"monthly_trend"`
	Transactions []Row                         `json:"transactions"`
}

// Document is a rendered report ready to be sent to the client.
type Document struct {
	Format      Format
	Filename    string
	ContentType string
	Body        []byte
}
