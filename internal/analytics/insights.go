package analytics

import (
	"fmt"

	"github.com/MrJamesThe3rd/finsight/internal/budget"
)

type InsightType string

const (
	InsightWarning InsightType = "warning"
	InsightSuccess InsightType = "success"
	InsightInfo    InsightType = "info"
	InsightAlert   InsightType = "alert"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const (
	lowSavingsRate       = 20
	healthySavingsRate   = 30
	dominantCategoryRate = 30
)

type Insight struct {
	Type     InsightType `json:"type"`
	Category string      `json:"category"`
	Message  string      `json:"message"`
	Priority Priority    `json:"priority"`
}

// DeriveInsights applies the threshold rules. Every rule is evaluated on its
// own; none suppresses another. expenses must be sorted largest first.
func DeriveInsights(ov Overview, expenses []CategoryTotal, budgets []BudgetPerformance) []Insight {
	insights := []Insight{}

	if ov.SavingsRate < lowSavingsRate {
		insights = append(insights, Insight{
			Type:     InsightWarning,
			Category: "savings",
			Message:  fmt.Sprintf("Your savings rate is %.2f%%. Try to save at least %d%% of your income.", ov.SavingsRate, lowSavingsRate),
			Priority: PriorityHigh,
		})
	}

	if ov.SavingsRate >= healthySavingsRate {
		insights = append(insights, Insight{
			Type:     InsightSuccess,
			Category: "savings",
			Message:  fmt.Sprintf("Great job! You are saving %.2f%% of your income.", ov.SavingsRate),
			Priority: PriorityLow,
		})
	}

	if len(expenses) > 0 && expenses[0].Percentage > dominantCategoryRate {
		top := expenses[0]
		insights = append(insights, Insight{
			Type:     InsightInfo,
			Category: top.Category,
			Message:  fmt.Sprintf("%s accounts for %.2f%% of your expenses.", top.Category, top.Percentage),
			Priority: PriorityMedium,
		})
	}

	if ov.NetSavings < 0 {
		insights = append(insights, Insight{
			Type:     InsightAlert,
			Category: "savings",
			Message:  "You are spending more than you earn in this period.",
			Priority: PriorityHigh,
		})
	}

	for _, b := range budgets {
		if b.Status != budget.StatusExceeded {
			continue
		}

		insights = append(insights, Insight{
			Type:     InsightAlert,
			Category: b.Category,
			Message:  fmt.Sprintf("You exceeded your %s budget (%.2f%% used).", b.Category, b.PercentUsed),
			Priority: PriorityHigh,
		})
	}

	return insights
}
