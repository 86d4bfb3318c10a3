package goal

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/money"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusCompleted || s == StatusCancelled
}

var ErrNotFound = fmt.Errorf("goal %w", apperr.ErrNotFound)

// Goal is a savings target.
type Goal struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Name          string
	TargetAmount  int64
	CurrentAmount int64
	TargetDate    time.Time
	Priority      Priority
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// Progress is CurrentAmount as a percentage of TargetAmount.
func (g *Goal) Progress() float64 {
	return money.Percent(g.CurrentAmount, g.TargetAmount)
}

func (g *Goal) Remaining() int64 {
	return max(g.TargetAmount-g.CurrentAmount, 0)
}

// DaysLeft counts whole days until TargetDate, negative once it has passed.
func (g *Goal) DaysLeft(now time.Time) int {
	return int(math.Ceil(g.TargetDate.Sub(now).Hours() / 24))
}

// settle completes an active goal once its target is reached.
func (g *Goal) settle() {
	if g.Status == StatusActive && g.CurrentAmount >= g.TargetAmount {
		g.Status = StatusCompleted
	}
}
