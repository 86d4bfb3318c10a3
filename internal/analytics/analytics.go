// Package analytics derives financial metrics from a user's transactions,
// budgets and goals. The compute functions are pure; Engine wires them to
// their data sources.
package analytics

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finsight/internal/budget"
	"github.com/MrJamesThe3rd/finsight/internal/money"
	"github.com/MrJamesThe3rd/finsight/internal/period"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

type Overview struct {
	TotalIncome      int64   `json:"total_income"`
	TotalExpenses    int64   `json:"total_expenses"`
	NetSavings       int64   `json:"net_savings"`
	SavingsRate      float64 `json:"savings_rate"`
	TransactionCount int     `json:"transaction_count"`
}

type CategoryTotal struct {
	Category      string  `json:"category"`
	Total         int64   `json:"total"`
	Count         int     `json:"count"`
	AverageAmount int64   `json:"average_amount"`
	Percentage    float64 `json:"percentage"`
}

type DailyPoint struct {
	Date     string `json:"date"`
	Income   int64  `json:"income"`
	Expenses int64  `json:"expenses"`
	Net      int64  `json:"net"`
}

type MonthlyPoint struct {
	Month    string `json:"month"`
	Income   int64  `json:"income"`
	Expenses int64  `json:"expenses"`
	Savings  int64  `json:"savings"`
}

type BudgetPerformance struct {
	BudgetID     string        `json:"budget_id"`
	Category     string        `json:"category"`
	Period       budget.Period `json:"period"`
	BudgetAmount int64         `json:"budget_amount"`
	Spent        int64         `json:"spent"`
	Remaining    int64         `json:"remaining"`
	PercentUsed  float64       `json:"percent_used"`
	Status       budget.Status `json:"status"`
}

// ComputeOverview totals income and expenses. The savings rate is 0 when
// there is no income.
func ComputeOverview(txs []*transaction.Transaction) Overview {
	var ov Overview

	for _, tx := range txs {
		switch tx.Type {
		case transaction.TypeIncome:
			ov.TotalIncome += tx.Amount
		case transaction.TypeExpense:
			ov.TotalExpenses += tx.Amount
		}
	}

	ov.NetSavings = ov.TotalIncome - ov.TotalExpenses
	ov.SavingsRate = money.Percent(ov.NetSavings, ov.TotalIncome)
	ov.TransactionCount = len(txs)

	return ov
}

// ComputeBreakdown groups transactions of typ by category, largest total
// first. Ties are ordered by category name.
func ComputeBreakdown(txs []*transaction.Transaction, typ transaction.Type) []CategoryTotal {
	byCategory := make(map[string]*CategoryTotal)

	var grand int64

	for _, tx := range txs {
		if tx.Type != typ {
			continue
		}

		ct, ok := byCategory[tx.Category]
		if !ok {
			ct = &CategoryTotal{Category: tx.Category}
			byCategory[tx.Category] = ct
		}

		ct.Total += tx.Amount
		ct.Count++
		grand += tx.Amount
	}

	out := make([]CategoryTotal, 0, len(byCategory))

	for _, ct := range byCategory {
		ct.AverageAmount = money.Average(ct.Total, ct.Count)
		ct.Percentage = money.Percent(ct.Total, grand)
		out = append(out, *ct)
	}

	slices.SortFunc(out, func(a, b CategoryTotal) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}

		return strings.Compare(a.Category, b.Category)
	})

	return out
}

// ComputeDailyTrend buckets transactions per calendar day, ascending. With
// fillGaps every day of r is present, otherwise only days with activity.
func ComputeDailyTrend(txs []*transaction.Transaction, r period.Range, fillGaps bool) []DailyPoint {
	byDay := make(map[string]*DailyPoint)

	if fillGaps {
		for d := range r.Days() {
			key := d.Format(time.DateOnly)
			byDay[key] = &DailyPoint{Date: key}
		}
	}

	loc := r.Start.Location()

	for _, tx := range txs {
		key := tx.Date.In(loc).Format(time.DateOnly)

		p, ok := byDay[key]
		if !ok {
			p = &DailyPoint{Date: key}
			byDay[key] = p
		}

		switch tx.Type {
		case transaction.TypeIncome:
			p.Income += tx.Amount
		case transaction.TypeExpense:
			p.Expenses += tx.Amount
		}
	}

	out := make([]DailyPoint, 0, len(byDay))

	for _, p := range byDay {
		p.Net = p.Income - p.Expenses
		out = append(out, *p)
	}

	slices.SortFunc(out, func(a, b DailyPoint) int { return strings.Compare(a.Date, b.Date) })

	return out
}

// ComputeMonthly buckets transactions into the months listed, which must be
// "YYYY-MM" keys in ascending order. Months without activity are zero.
func ComputeMonthly(txs []*transaction.Transaction, months []string, loc *time.Location) []MonthlyPoint {
	out := make([]MonthlyPoint, len(months))
	index := make(map[string]int, len(months))

	for i, m := range months {
		out[i] = MonthlyPoint{Month: m}
		index[m] = i
	}

	for _, tx := range txs {
		i, ok := index[tx.Date.In(loc).Format("2006-01")]
		if !ok {
			continue
		}

		switch tx.Type {
		case transaction.TypeIncome:
			out[i].Income += tx.Amount
		case transaction.TypeExpense:
			out[i].Expenses += tx.Amount
		}
	}

	for i := range out {
		out[i].Savings = out[i].Income - out[i].Expenses
	}

	return out
}

// ComputeBudgetPerformance measures each budget against the expenses of its
// category inside the budget window clipped to r.
func ComputeBudgetPerformance(budgets []*budget.Budget, txs []*transaction.Transaction, r period.Range) []BudgetPerformance {
	out := make([]BudgetPerformance, 0, len(budgets))

	for _, b := range budgets {
		window := period.Range{
			Start: latest(b.StartDate, r.Start),
			End:   earliest(b.EndDate, r.End),
		}

		var spent int64

		for _, tx := range txs {
			if tx.Type != transaction.TypeExpense || !strings.EqualFold(tx.Category, b.Category) {
				continue
			}

			if window.Contains(tx.Date) {
				spent += tx.Amount
			}
		}

		measured := *b
		measured.Spent = spent

		out = append(out, BudgetPerformance{
			BudgetID:     b.ID.String(),
			Category:     b.Category,
			Period:       b.Period,
			BudgetAmount: b.Amount,
			Spent:        spent,
			Remaining:    measured.Remaining(),
			PercentUsed:  measured.PercentUsed(),
			Status:       measured.Status(),
		})
	}

	return out
}

// PercentChange is the signed change from prev to cur relative to |prev|.
// From zero it is +100 or -100 by the sign of cur, and 0 when both are zero.
func PercentChange(cur, prev int64) float64 {
	if prev == 0 {
		switch {
		case cur > 0:
			return 100
		case cur < 0:
			return -100
		default:
			return 0
		}
	}

	delta := decimal.NewFromInt(cur - prev).Mul(decimal.NewFromInt(100))

	return money.Round2(delta.Div(decimal.NewFromInt(prev).Abs()))
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}

	return b
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}

	return b
}
