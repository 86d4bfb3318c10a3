// Package advisor asks a language model for short, personalised advice based
// on the user's analytics.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/analytics"
	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/money"
	"github.com/MrJamesThe3rd/finsight/internal/period"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

// ErrDisabled is returned when no model is configured.
var ErrDisabled = fmt.Errorf("advisor is not configured: %w", apperr.ErrUnavailable)

const topCategories = 5

//go:generate mockgen -source=advisor.go -destination=advisor_mock.go -package=advisor
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

type Analytics interface {
	Overview(ctx context.Context, userID uuid.UUID, r period.Range) (analytics.Overview, error)
	CategoryBreakdown(ctx context.Context, userID uuid.UUID, r period.Range, typ transaction.Type) ([]analytics.CategoryTotal, error)
	Insights(ctx context.Context, userID uuid.UUID, r period.Range) ([]analytics.Insight, error)
	GoalProgress(ctx context.Context, userID uuid.UUID) (analytics.GoalReport, error)
}

type Advice struct {
	Advice      string    `json:"advice"`
	GeneratedAt time.Time `json:"generated_at"`
	Model       string    `json:"model"`
}

type Service struct {
	analytics Analytics
	generator Generator
	now       func() time.Time
}

// NewService builds the advisor. A nil generator disables it.
func NewService(a Analytics, g Generator) *Service {
	return &Service{analytics: a, generator: g, now: time.Now}
}

func (s *Service) Enabled() bool {
	return s.generator != nil
}

// Snapshot is the data the prompt is built from.
type Snapshot struct {
	Range    period.Range
	Overview analytics.Overview
	Expenses []analytics.CategoryTotal
	Insights []analytics.Insight
	Goals    analytics.GoalSummary
}

func (s *Service) Advise(ctx context.Context, userID uuid.UUID, r period.Range) (*Advice, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	snap, err := s.snapshot(ctx, userID, r)
	if err != nil {
		return nil, err
	}

	text, err := s.generator.Generate(ctx, BuildPrompt(snap))
	if err != nil {
		return nil, apperr.External("generating advice", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.External("generating advice", errors.New("empty response from model"))
	}

	return &Advice{Advice: text, GeneratedAt: s.now(), Model: s.generator.Model()}, nil
}

func (s *Service) snapshot(ctx context.Context, userID uuid.UUID, r period.Range) (Snapshot, error) {
	snap := Snapshot{Range: r}

	var err error

	if snap.Overview, err = s.analytics.Overview(ctx, userID, r); err != nil {
		return Snapshot{}, err
	}

	if snap.Expenses, err = s.analytics.CategoryBreakdown(ctx, userID, r, transaction.TypeExpense); err != nil {
		return Snapshot{}, err
	}

	if snap.Insights, err = s.analytics.Insights(ctx, userID, r); err != nil {
		return Snapshot{}, err
	}

	goals, err := s.analytics.GoalProgress(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	snap.Goals = goals.Summary

	return snap, nil
}

// BuildPrompt renders snap as plain-text instructions for the model.
func BuildPrompt(snap Snapshot) string {
	var b strings.Builder

	b.WriteString("You are a personal finance advisor. Based on the figures below, give the user ")
	b.WriteString("three to five short, concrete and encouraging recommendations. ")
	b.WriteString("Answer in plain text without Markdown. Amounts are in the user's currency.\n\n")

	fmt.Fprintf(&b, "Period: %s\n", snap.Range)

	ov := snap.Overview
	fmt.Fprintf(&b, "Income: %s\n", money.Format(ov.TotalIncome))
	fmt.Fprintf(&b, "Expenses: %s\n", money.Format(ov.TotalExpenses))
	fmt.Fprintf(&b, "Net savings: %s\n", money.Format(ov.NetSavings))
	fmt.Fprintf(&b, "Savings rate: %.2f%%\n", ov.SavingsRate)
	fmt.Fprintf(&b, "Transactions: %d\n", ov.TransactionCount)

	if len(snap.Expenses) > 0 {
		b.WriteString("\nTop expense categories:\n")

		for _, ct := range snap.Expenses[:min(len(snap.Expenses), topCategories)] {
			fmt.Fprintf(&b, "- %s: %s (%.2f%%)\n", ct.Category, money.Format(ct.Total), ct.Percentage)
		}
	}

	if len(snap.Insights) > 0 {
		b.WriteString("\nObservations:\n")

		for _, in := range snap.Insights {
			fmt.Fprintf(&b, "- [%s] %s\n", in.Type, in.Message)
		}
	}

	if g := snap.Goals; g.TotalGoals > 0 {
		fmt.Fprintf(&b, "\nSavings goals: %d active, %d completed, %s saved of %s (%.2f%%)\n",
			g.Active, g.Completed, money.Format(g.TotalSaved), money.Format(g.TotalTarget), g.OverallProgress)
	}

	return b.String()
}
