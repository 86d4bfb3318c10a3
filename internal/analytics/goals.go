package analytics

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/goal"
	"github.com/MrJamesThe3rd/finsight/internal/money"
)

type GoalSummary struct {
	TotalGoals      int     `json:"total_goals"`
	Active          int     `json:"active"`
	Completed       int     `json:"completed"`
	TotalTarget     int64   `json:"total_target"`
	TotalSaved      int64   `json:"total_saved"`
	OverallProgress float64 `json:"overall_progress"`
}

type GoalStatus struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	TargetAmount  int64         `json:"target_amount"`
	CurrentAmount int64         `json:"current_amount"`
	TargetDate    time.Time     `json:"target_date"`
	Priority      goal.Priority `json:"priority"`
	Status        goal.Status   `json:"status"`
	Progress      float64       `json:"progress"`
	Remaining     int64         `json:"remaining"`
	DaysLeft      int           `json:"days_left"`
}

type GoalReport struct {
	Summary GoalSummary  `json:"summary"`
	Goals   []GoalStatus `json:"goals"`
}

// ComputeGoalReport summarizes goals. Cancelled goals count towards
// TotalGoals only.
func ComputeGoalReport(goals []*goal.Goal, now time.Time) GoalReport {
	report := GoalReport{Goals: make([]GoalStatus, 0, len(goals))}

	for _, g := range goals {
		report.Summary.TotalGoals++

		switch g.Status {
		case goal.StatusActive:
			report.Summary.Active++
		case goal.StatusCompleted:
			report.Summary.Completed++
		}

		if g.Status != goal.StatusCancelled {
			report.Summary.TotalTarget += g.TargetAmount
			report.Summary.TotalSaved += g.CurrentAmount
		}

		report.Goals = append(report.Goals, GoalStatus{
			ID:            g.ID,
			Name:          g.Name,
			TargetAmount:  g.TargetAmount,
			CurrentAmount: g.CurrentAmount,
			TargetDate:    g.TargetDate,
			Priority:      g.Priority,
			Status:        g.Status,
			Progress:      g.Progress(),
			Remaining:     g.Remaining(),
			DaysLeft:      g.DaysLeft(now),
		})
	}

	report.Summary.OverallProgress = money.Percent(report.Summary.TotalSaved, report.Summary.TotalTarget)

	return report
}
