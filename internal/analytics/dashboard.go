package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/finsight/internal/budget"
	"github.com/MrJamesThe3rd/finsight/internal/goal"
	"github.com/MrJamesThe3rd/finsight/internal/period"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

type RecentTransaction struct {
	ID          uuid.UUID        `json:"id"`
	Type        transaction.Type `json:"type"`
	Amount      int64            `json:"amount"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Date        time.Time        `json:"date"`
}

type Dashboard struct {
	Range              RangeJSON           `json:"range"`
	Overview           Overview            `json:"overview"`
	ExpenseBreakdown   []CategoryTotal     `json:"expense_breakdown"`
	IncomeBreakdown    []CategoryTotal     `json:"income_breakdown"`
	RecentTransactions []RecentTransaction `json:"recent_transactions"`
	Budgets            []BudgetPerformance `json:"budgets"`
	Goals              GoalReport          `json:"goals"`
	Insights           []Insight           `json:"insights"`
}

// Dashboard fetches everything the overview screen needs concurrently and
// derives the sections from the shared results.
func (e *Engine) Dashboard(ctx context.Context, userID uuid.UUID, r period.Range) (Dashboard, error) {
	var (
		txs     []*transaction.Transaction
		recent  []*transaction.Transaction
		budgets []*budget.Budget
		goals   []*goal.Goal
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		txs, err = e.transactions(gctx, userID, r)
		return err
	})

	g.Go(func() error {
		var err error

		recent, err = e.txs.List(gctx, transaction.ListFilter{UserID: userID, Limit: recentLimit})
		if err != nil {
			return dataAccess("listing recent transactions", err)
		}

		return nil
	})

	g.Go(func() (err error) {
		budgets, err = e.budgetsIn(gctx, userID, r)
		return err
	})

	g.Go(func() error {
		var err error

		goals, err = e.goals.List(gctx, userID)
		if err != nil {
			return dataAccess("listing goals", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	ov := ComputeOverview(txs)
	expenses := ComputeBreakdown(txs, transaction.TypeExpense)
	perf := ComputeBudgetPerformance(budgets, txs, r)

	d := Dashboard{
		Range:              RangeJSON{Start: r.Start, End: r.End},
		Overview:           ov,
		ExpenseBreakdown:   expenses,
		IncomeBreakdown:    ComputeBreakdown(txs, transaction.TypeIncome),
		RecentTransactions: make([]RecentTransaction, 0, len(recent)),
		Budgets:            perf,
		Goals:              ComputeGoalReport(goals, e.now()),
		Insights:           DeriveInsights(ov, expenses, perf),
	}

	for _, tx := range recent {
		d.RecentTransactions = append(d.RecentTransactions, RecentTransaction{
			ID:          tx.ID,
			Type:        tx.Type,
			Amount:      tx.Amount,
			Category:    tx.Category,
			Description: tx.Description,
			Date:        tx.Date,
		})
	}

	return d, nil
}
