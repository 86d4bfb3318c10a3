package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/budget"
	"github.com/MrJamesThe3rd/finsight/internal/goal"
	"github.com/MrJamesThe3rd/finsight/internal/money"
)

//go:generate mockgen -source=alerter.go -destination=alerter_mock.go -package=notification
type BudgetSource interface {
	RefreshAll(ctx context.Context, userID uuid.UUID, now time.Time) ([]*budget.Budget, error)
}

type GoalSource interface {
	List(ctx context.Context, userID uuid.UUID) ([]*goal.Goal, error)
}

type Notifier interface {
	Notify(ctx context.Context, n *Notification) (bool, error)
}

// Alerter derives budget and goal notifications from current state.
type Alerter struct {
	budgets  BudgetSource
	goals    GoalSource
	notifier Notifier
	now      func() time.Time
}

func NewAlerter(budgets BudgetSource, goals GoalSource, notifier Notifier) *Alerter {
	return &Alerter{budgets: budgets, goals: goals, notifier: notifier, now: time.Now}
}

// BudgetAlert returns the notification b warrants, or nil.
func BudgetAlert(b *budget.Budget) *Notification {
	id := b.ID
	n := &Notification{
		UserID:  b.UserID,
		Related: Related{Kind: "budget", ID: &id},
	}

	switch b.Status() {
	case budget.StatusExceeded:
		n.Type = TypeBudgetExceeded
		n.Priority = PriorityHigh
		n.Title = "Budget exceeded"
		n.Message = fmt.Sprintf("You have spent %s of your %s budget for %s (%.2f%%).",
			money.Format(b.Spent), money.Format(b.Amount), b.Category, b.PercentUsed())
	case budget.StatusWarning:
		n.Type = TypeBudgetWarning
		n.Priority = PriorityMedium
		n.Title = "Budget alert"
		n.Message = fmt.Sprintf("You have used %.2f%% of your %s budget.", b.PercentUsed(), b.Category)
	default:
		return nil
	}

	return n
}

// GoalAlert returns the notification g warrants, or nil.
func GoalAlert(g *goal.Goal) *Notification {
	if g.Status != goal.StatusCompleted {
		return nil
	}

	id := g.ID

	return &Notification{
		UserID:   g.UserID,
		Type:     TypeGoalAchieved,
		Priority: PriorityLow,
		Title:    "Goal achieved",
		Message:  fmt.Sprintf("Congratulations! You reached your goal %q.", g.Name),
		Related:  Related{Kind: "goal", ID: &id},
	}
}

// CheckBudgets refreshes the user's current budgets and notifies about the
// ones over their alert threshold. It returns the number of notifications sent.
func (a *Alerter) CheckBudgets(ctx context.Context, userID uuid.UUID) (int, error) {
	budgets, err := a.budgets.RefreshAll(ctx, userID, a.now())
	if err != nil {
		return 0, fmt.Errorf("refreshing budgets: %w", err)
	}

	var alerts []*Notification

	for _, b := range budgets {
		if n := BudgetAlert(b); n != nil {
			alerts = append(alerts, n)
		}
	}

	return a.send(ctx, alerts)
}

func (a *Alerter) CheckGoals(ctx context.Context, userID uuid.UUID) (int, error) {
	goals, err := a.goals.List(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("listing goals: %w", err)
	}

	var alerts []*Notification

	for _, g := range goals {
		if n := GoalAlert(g); n != nil {
			alerts = append(alerts, n)
		}
	}

	return a.send(ctx, alerts)
}

func (a *Alerter) send(ctx context.Context, alerts []*Notification) (int, error) {
	var sent int

	var errs []error

	for _, n := range alerts {
		ok, err := a.notifier.Notify(ctx, n)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if ok {
			sent++
		}
	}

	return sent, errors.Join(errs...)
}

// Check runs both checks and logs failures. It has the shape of a
// transaction change listener.
func (a *Alerter) Check(ctx context.Context, userID uuid.UUID) {
	if _, err := a.CheckBudgets(ctx, userID); err != nil {
		slog.ErrorContext(ctx, "budget alert check failed", "user_id", userID, "error", err)
	}

	if _, err := a.CheckGoals(ctx, userID); err != nil {
		slog.ErrorContext(ctx, "goal alert check failed", "user_id", userID, "error", err)
	}
}
