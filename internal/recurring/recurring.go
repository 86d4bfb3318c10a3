package recurring

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

type Frequency string

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Biweekly, Monthly, Quarterly, Yearly:
		return true
	}

	return false
}

// months returns the month step of calendar frequencies, 0 for day based ones.
func (f Frequency) months() int {
	switch f {
	case Monthly:
		return 1
	case Quarterly:
		return 3
	case Yearly:
		return 12
	}

	return 0
}

func (f Frequency) days() int {
	switch f {
	case Daily:
		return 1
	case Weekly:
		return 7
	case Biweekly:
		return 14
	}

	return 0
}

var ErrNotFound = fmt.Errorf("recurring transaction %w", apperr.ErrNotFound)

// Recurring is a template materialized into a transaction at every occurrence.
type Recurring struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Type            transaction.Type
	Amount          int64
	Category        string
	Description     string
	PaymentMethod   transaction.PaymentMethod
	Frequency       Frequency
	StartDate       time.Time
	NextOccurrence  time.Time
	EndDate         *time.Time
	IsActive        bool
	AutoProcess     bool
	LastProcessedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// NextOccurrence advances current by one frequency unit.
//
// Calendar frequencies clamp to the last day of the target month, anchored on
// current's day: Jan 31 -> Feb 29 (2024). Applying it again from Feb 29 gives
// Mar 29, so chained calls drift after a short month. Recurring.Advance
// anchors on the start date instead and does not drift.
func NextOccurrence(current time.Time, f Frequency) (time.Time, error) {
	return next(current, f, current.Day())
}

func next(current time.Time, f Frequency, anchorDay int) (time.Time, error) {
	if !f.Valid() {
		return time.Time{}, apperr.Validation("unknown frequency %q", f)
	}

	if d := f.days(); d > 0 {
		return current.AddDate(0, 0, d), nil
	}

	return addMonths(current, f.months(), anchorDay), nil
}

// addMonths moves t by n calendar months, landing on anchorDay or the last
// day of the target month when it is shorter.
func addMonths(t time.Time, n, anchorDay int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, n, 0)
	day := min(anchorDay, daysIn(target.Year(), target.Month(), t.Location()))

	return target.AddDate(0, 0, day-1)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// Advance moves NextOccurrence forward one unit, anchored on StartDate's day,
// and deactivates the template once it runs past EndDate.
func (r *Recurring) Advance() error {
	n, err := next(r.NextOccurrence, r.Frequency, r.StartDate.Day())
	if err != nil {
		return err
	}

	r.NextOccurrence = n

	if r.EndDate != nil && n.After(*r.EndDate) {
		r.IsActive = false
	}

	return nil
}

// ShouldProcess reports whether r is due at now. A template whose EndDate
// has passed is deactivated as a side effect; the caller persists it.
func ShouldProcess(r *Recurring, now time.Time) bool {
	if r.EndDate != nil && r.EndDate.Before(now) {
		r.IsActive = false
	}

	return r.IsActive && r.AutoProcess && !r.NextOccurrence.After(now)
}

func (r *Recurring) transactionParams() transaction.CreateParams {
	id := r.ID

	return transaction.CreateParams{
		UserID:         r.UserID,
		Amount:         r.Amount,
		Type:           r.Type,
		Category:       r.Category,
		Description:    r.Description,
		RawDescription: "recurring:" + r.ID.String(),
		Date:           r.NextOccurrence,
		PaymentMethod:  r.PaymentMethod,
		RecurringID:    &id,
	}
}
