package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/budget"
	"github.com/MrJamesThe3rd/finsight/internal/goal"
	"github.com/MrJamesThe3rd/finsight/internal/period"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

const (
	DefaultMonthsBack = 6
	MaxMonthsBack     = 24
	recentLimit       = 10
)

//go:generate mockgen -source=engine.go -destination=source_mock.go -package=analytics
type TransactionSource interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type BudgetSource interface {
	List(ctx context.Context, filter budget.ListFilter) ([]*budget.Budget, error)
}

type GoalSource interface {
	List(ctx context.Context, userID uuid.UUID) ([]*goal.Goal, error)
}

// Engine answers analytics queries for a single user at a time. It never
// retries; source failures surface as data access errors.
type Engine struct {
	txs     TransactionSource
	budgets BudgetSource
	goals   GoalSource
	now     func() time.Time
}

func NewEngine(txs TransactionSource, budgets BudgetSource, goals GoalSource) *Engine {
	return &Engine{txs: txs, budgets: budgets, goals: goals, now: time.Now}
}

func dataAccess(op string, err error) error {
	if errors.Is(err, apperr.ErrDataAccess) {
		return err
	}

	return apperr.DataAccess(op, err)
}

func (e *Engine) transactions(ctx context.Context, userID uuid.UUID, r period.Range) ([]*transaction.Transaction, error) {
	txs, err := e.txs.List(ctx, transaction.ListFilter{
		UserID:    userID,
		StartDate: &r.Start,
		EndDate:   &r.End,
	})
	if err != nil {
		return nil, dataAccess("listing transactions", err)
	}

	return txs, nil
}

func (e *Engine) budgetsIn(ctx context.Context, userID uuid.UUID, r period.Range) ([]*budget.Budget, error) {
	budgets, err := e.budgets.List(ctx, budget.ListFilter{UserID: userID, From: &r.Start, To: &r.End})
	if err != nil {
		return nil, dataAccess("listing budgets", err)
	}

	return budgets, nil
}

func (e *Engine) Overview(ctx context.Context, userID uuid.UUID, r period.Range) (Overview, error) {
	txs, err := e.transactions(ctx, userID, r)
	if err != nil {
		return Overview{}, err
	}

	return ComputeOverview(txs), nil
}

func (e *Engine) CategoryBreakdown(ctx context.Context, userID uuid.UUID, r period.Range, typ transaction.Type) ([]CategoryTotal, error) {
	if !typ.Valid() {
		return nil, apperr.Validation("invalid transaction type %q", typ)
	}

	txs, err := e.transactions(ctx, userID, r)
	if err != nil {
		return nil, err
	}

	return ComputeBreakdown(txs, typ), nil
}

func (e *Engine) DailyTrend(ctx context.Context, userID uuid.UUID, r period.Range, fillGaps bool) ([]DailyPoint, error) {
	txs, err := e.transactions(ctx, userID, r)
	if err != nil {
		return nil, err
	}

	return ComputeDailyTrend(txs, r, fillGaps), nil
}

// MonthlyComparison covers the trailing monthsBack months, the current one
// included. monthsBack defaults to DefaultMonthsBack and is capped at
// MaxMonthsBack.
func (e *Engine) MonthlyComparison(ctx context.Context, userID uuid.UUID, monthsBack int, now time.Time) ([]MonthlyPoint, error) {
	if monthsBack <= 0 {
		monthsBack = DefaultMonthsBack
	}

	monthsBack = min(monthsBack, MaxMonthsBack)

	first := period.StartOfMonth(now).AddDate(0, -(monthsBack - 1), 0)
	r := period.Range{
		Start: first,
		End:   period.StartOfMonth(now).AddDate(0, 1, 0).Add(-time.Millisecond),
	}

	months := make([]string, monthsBack)
	for i := range months {
		months[i] = first.AddDate(0, i, 0).Format("2006-01")
	}

	txs, err := e.transactions(ctx, userID, r)
	if err != nil {
		return nil, err
	}

	return ComputeMonthly(txs, months, now.Location()), nil
}

func (e *Engine) BudgetPerformance(ctx context.Context, userID uuid.UUID, r period.Range) ([]BudgetPerformance, error) {
	var budgets []*budget.Budget

	var txs []*transaction.Transaction

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		budgets, err = e.budgetsIn(gctx, userID, r)
		return err
	})

	g.Go(func() (err error) {
		txs, err = e.transactions(gctx, userID, r)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ComputeBudgetPerformance(budgets, txs, r), nil
}

func (e *Engine) GoalProgress(ctx context.Context, userID uuid.UUID) (GoalReport, error) {
	goals, err := e.goals.List(ctx, userID)
	if err != nil {
		return GoalReport{}, dataAccess("listing goals", err)
	}

	return ComputeGoalReport(goals, e.now()), nil
}

func (e *Engine) Insights(ctx context.Context, userID uuid.UUID, r period.Range) ([]Insight, error) {
	var budgets []*budget.Budget

	var txs []*transaction.Transaction

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		budgets, err = e.budgetsIn(gctx, userID, r)
		return err
	})

	g.Go(func() (err error) {
		txs, err = e.transactions(gctx, userID, r)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return DeriveInsights(
		ComputeOverview(txs),
		ComputeBreakdown(txs, transaction.TypeExpense),
		ComputeBudgetPerformance(budgets, txs, r),
	), nil
}

type Change struct {
	Amount     int64   `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type Changes struct {
	Income           Change `json:"income"`
	Expenses         Change `json:"expenses"`
	Savings          Change `json:"savings"`
	TransactionCount Change `json:"transaction_count"`
}

type Comparison struct {
	Current       Overview  `json:"current"`
	Previous      Overview  `json:"previous"`
	CurrentRange  RangeJSON `json:"current_range"`
	PreviousRange RangeJSON `json:"previous_range"`
	Changes       Changes   `json:"changes"`
}

type RangeJSON struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func change(cur, prev int64) Change {
	return Change{Amount: cur - prev, Percentage: PercentChange(cur, prev)}
}

// Compare diffs two overviews.
func Compare(cur, prev Overview) Changes {
	return Changes{
		Income:           change(cur.TotalIncome, prev.TotalIncome),
		Expenses:         change(cur.TotalExpenses, prev.TotalExpenses),
		Savings:          change(cur.NetSavings, prev.NetSavings),
		TransactionCount: change(int64(cur.TransactionCount), int64(prev.TransactionCount)),
	}
}

// PeriodComparison compares r with the window of equal length right before it.
func (e *Engine) PeriodComparison(ctx context.Context, userID uuid.UUID, r period.Range) (Comparison, error) {
	prev := r.Previous()

	var cur, old Overview

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		cur, err = e.Overview(gctx, userID, r)
		return err
	})

	g.Go(func() (err error) {
		old, err = e.Overview(gctx, userID, prev)
		return err
	})

	if err := g.Wait(); err != nil {
		return Comparison{}, err
	}

	return Comparison{
		Current:       cur,
		Previous:      old,
		CurrentRange:  RangeJSON{Start: r.Start, End: r.End},
		PreviousRange: RangeJSON{Start: prev.Start, End: prev.End},
		Changes:       Compare(cur, old),
	}, nil
}
