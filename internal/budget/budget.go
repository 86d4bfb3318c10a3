package budget

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/money"
)

type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

func (p Period) Valid() bool {
	return p == PeriodWeekly || p == PeriodMonthly || p == PeriodYearly
}

// End returns the last instant of the period that begins at start. Monthly
// and yearly periods clamp to the last day of the target month, so a budget
// starting Jan 31 runs until the end of Feb 28/29 rather than into March.
func (p Period) End(start time.Time) time.Time {
	switch p {
	case PeriodWeekly:
		return start.AddDate(0, 0, 7).Add(-time.Millisecond)
	case PeriodYearly:
		return addMonths(start, 12).Add(-time.Millisecond)
	default:
		return addMonths(start, 1).Add(-time.Millisecond)
	}
}

func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()

	return first.AddDate(0, 0, min(t.Day(), last)-1)
}

type Status string

const (
	StatusGood     Status = "good"
	StatusWarning  Status = "warning"
	StatusExceeded Status = "exceeded"
)

const DefaultAlertThreshold = 80

var ErrNotFound = fmt.Errorf("budget %w", apperr.ErrNotFound)

// Budget caps spending in one category for a time window. Spent is a cached
// value refreshed from transactions; it is not authoritative until refreshed.
type Budget struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Category       string
	Amount         int64
	Spent          int64
	Period         Period
	StartDate      time.Time
	EndDate        time.Time
	AlertThreshold int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

func (b *Budget) IsExceeded() bool {
	return b.Spent >= b.Amount
}

// PercentUsed is truncated, never rounded up, so a budget that is not
// exceeded never displays 100 and one below its threshold never displays it.
func (b *Budget) PercentUsed() float64 {
	return money.PercentFloor(b.Spent, b.Amount)
}

// ShouldAlert compares spent/amount*100 against the threshold exactly.
func (b *Budget) ShouldAlert() bool {
	return b.Spent*100 >= int64(b.AlertThreshold)*b.Amount
}

func (b *Budget) Remaining() int64 {
	return b.Amount - b.Spent
}

func (b *Budget) Status() Status {
	if b.IsExceeded() {
		return StatusExceeded
	}

	if b.ShouldAlert() {
		return StatusWarning
	}

	return StatusGood
}

// Overlaps reports whether the budget window intersects [start, end].
func (b *Budget) Overlaps(start, end time.Time) bool {
	return !b.StartDate.After(end) && !b.EndDate.Before(start)
}
