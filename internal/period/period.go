// Package period resolves named reporting periods ("month", "last-week", ...)
// into concrete, inclusive time ranges.
package period

import (
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
)

type Token string

const (
	Today     Token = "today"
	Yesterday Token = "yesterday"
	Week      Token = "week"
	LastWeek  Token = "last-week"
	Month     Token = "month"
	LastMonth Token = "last-month"
	Quarter   Token = "quarter"
	Year      Token = "year"
	LastYear  Token = "last-year"
	Custom    Token = "custom"
)

// Tokens lists every supported token in display order.
var Tokens = []Token{Today, Yesterday, Week, LastWeek, Month, LastMonth, Quarter, Year, LastYear, Custom}

// InvalidRangeError reports a custom range that cannot be resolved.
type InvalidRangeError struct {
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return "invalid date range: " + e.Reason
}

func (e *InvalidRangeError) Unwrap() error {
	return apperr.ErrValidation
}

// Range is an inclusive [Start, End] window.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Contains reports whether t falls inside the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Previous returns the window of identical duration that ends one
// millisecond before r starts.
func (r Range) Previous() Range {
	end := r.Start.Add(-time.Millisecond)
	return Range{Start: end.Add(-r.Duration()), End: end}
}

// Days yields the start of every calendar day touched by the range.
func (r Range) Days() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for d := StartOfDay(r.Start); !d.After(r.End); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

func (r Range) String() string {
	return r.Start.Format(time.DateOnly) + " - " + r.End.Format(time.DateOnly)
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return StartOfDay(t).AddDate(0, 0, -offset)
}

func days(start time.Time, n int) Range {
	return Range{Start: start, End: start.AddDate(0, 0, n).Add(-time.Millisecond)}
}

func months(start time.Time, n int) Range {
	return Range{Start: start, End: start.AddDate(0, n, 0).Add(-time.Millisecond)}
}

// Resolve maps token to a concrete range relative to now. Unknown or empty
// tokens resolve to the current month. Custom requires both bounds.
func Resolve(token Token, start, end *time.Time, now time.Time) (Range, error) {
	today := StartOfDay(now)

	switch token {
	case Today:
		return days(today, 1), nil
	case Yesterday:
		return days(today.AddDate(0, 0, -1), 1), nil
	case Week:
		return days(startOfWeek(now), 7), nil
	case LastWeek:
		return days(startOfWeek(now).AddDate(0, 0, -7), 7), nil
	case LastMonth:
		return months(StartOfMonth(now).AddDate(0, -1, 0), 1), nil
	case Quarter:
		q := (int(now.Month()) - 1) / 3
		return months(time.Date(now.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, now.Location()), 3), nil
	case Year:
		return months(time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), 12), nil
	case LastYear:
		return months(time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, now.Location()), 12), nil
	case Custom:
		return custom(start, end)
	default:
		return months(StartOfMonth(now), 1), nil
	}
}

func custom(start, end *time.Time) (Range, error) {
	if start == nil || end == nil {
		return Range{}, &InvalidRangeError{Reason: "custom period requires startDate and endDate"}
	}

	r := Range{Start: StartOfDay(*start), End: EndOfDay(*end)}
	if r.End.Before(r.Start) {
		return Range{}, &InvalidRangeError{Reason: "endDate is before startDate"}
	}

	return r, nil
}

// ParseRequest resolves the period, startDate and endDate query parameters.
// When no period is given but both dates are, the range is custom.
func ParseRequest(q url.Values, now time.Time) (Range, error) {
	token := Token(strings.ToLower(strings.TrimSpace(q.Get("period"))))

	start, err := parseDate(q.Get("startDate"), now.Location())
	if err != nil {
		return Range{}, &InvalidRangeError{Reason: fmt.Sprintf("startDate: %v", err)}
	}

	end, err := parseDate(q.Get("endDate"), now.Location())
	if err != nil {
		return Range{}, &InvalidRangeError{Reason: fmt.Sprintf("endDate: %v", err)}
	}

	if token == "" && start != nil && end != nil {
		token = Custom
	}

	return Resolve(token, start, end, now)
}

var errBadDate = errors.New("expected YYYY-MM-DD or RFC3339")

func parseDate(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return &t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, errBadDate
	}

	t = t.In(loc)

	return &t, nil
}
