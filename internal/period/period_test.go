package period_test

import (
	"net/url"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/period"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOf(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

func TestResolve(t *testing.T) {
	// Wednesday
	now := time.Date(2024, time.May, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		token     period.Token
		wantStart time.Time
		wantEnd   time.Time
	}{
		{name: "Today", token: period.Today, wantStart: date(2024, 5, 15), wantEnd: endOf(2024, 5, 15)},
		{name: "Yesterday", token: period.Yesterday, wantStart: date(2024, 5, 14), wantEnd: endOf(2024, 5, 14)},
		{name: "Week", token: period.Week, wantStart: date(2024, 5, 13), wantEnd: endOf(2024, 5, 19)},
		{name: "LastWeek", token: period.LastWeek, wantStart: date(2024, 5, 6), wantEnd: endOf(2024, 5, 12)},
		{name: "Month", token: period.Month, wantStart: date(2024, 5, 1), wantEnd: endOf(2024, 5, 31)},
		{name: "LastMonth", token: period.LastMonth, wantStart: date(2024, 4, 1), wantEnd: endOf(2024, 4, 30)},
		{name: "Quarter", token: period.Quarter, wantStart: date(2024, 4, 1), wantEnd: endOf(2024, 6, 30)},
		{name: "Year", token: period.Year, wantStart: date(2024, 1, 1), wantEnd: endOf(2024, 12, 31)},
		{name: "LastYear", token: period.LastYear, wantStart: date(2023, 1, 1), wantEnd: endOf(2023, 12, 31)},
		{name: "UnknownFallsBackToMonth", token: "fortnight", wantStart: date(2024, 5, 1), wantEnd: endOf(2024, 5, 31)},
		{name: "EmptyFallsBackToMonth", token: "", wantStart: date(2024, 5, 1), wantEnd: endOf(2024, 5, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := period.Resolve(tt.token, nil, nil, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, got.Start)
			assert.Equal(t, tt.wantEnd, got.End)
		})
	}
}

func TestResolve_WeekOnSunday(t *testing.T) {
	now := time.Date(2024, time.May, 19, 8, 0, 0, 0, time.UTC)

	got, err := period.Resolve(period.Week, nil, nil, now)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 5, 13), got.Start)
	assert.Equal(t, endOf(2024, 5, 19), got.End)
}

func TestResolve_Custom(t *testing.T) {
	now := time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, time.February, 3, 10, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.February, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		start   *time.Time
		end     *time.Time
		want    period.Range
		wantErr bool
	}{
		{
			name:  "Normalized",
			start: &start,
			end:   &end,
			want:  period.Range{Start: date(2024, 2, 3), End: endOf(2024, 2, 10)},
		},
		{name: "MissingStart", end: &end, wantErr: true},
		{name: "MissingEnd", start: &start, wantErr: true},
		{name: "Reversed", start: &end, end: &start, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := period.Resolve(period.Custom, tt.start, tt.end, now)
			if tt.wantErr {
				var rangeErr *period.InvalidRangeError
				assert.ErrorAs(t, err, &rangeErr)
				assert.ErrorIs(t, err, apperr.ErrValidation)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRange_Previous(t *testing.T) {
	r := period.Range{Start: date(2024, 5, 1), End: endOf(2024, 5, 31)}

	prev := r.Previous()
	assert.Equal(t, endOf(2024, 4, 30), prev.End)
	assert.Equal(t, r.Duration(), prev.Duration())
	assert.Equal(t, date(2024, 3, 31), prev.Start)
}

func TestRange_Days(t *testing.T) {
	r := period.Range{Start: date(2024, 2, 27), End: endOf(2024, 3, 1)}

	got := slices.Collect(r.Days())
	assert.Equal(t, []time.Time{
		date(2024, 2, 27),
		date(2024, 2, 28),
		date(2024, 2, 29),
		date(2024, 3, 1),
	}, got)
}

func TestParseRequest(t *testing.T) {
	now := time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		query   url.Values
		want    period.Range
		wantErr bool
	}{
		{
			name:  "Default",
			query: url.Values{},
			want:  period.Range{Start: date(2024, 5, 1), End: endOf(2024, 5, 31)},
		},
		{
			name:  "Token",
			query: url.Values{"period": {"Year"}},
			want:  period.Range{Start: date(2024, 1, 1), End: endOf(2024, 12, 31)},
		},
		{
			name:  "ImplicitCustom",
			query: url.Values{"startDate": {"2024-01-10"}, "endDate": {"2024-01-20"}},
			want:  period.Range{Start: date(2024, 1, 10), End: endOf(2024, 1, 20)},
		},
		{
			name:  "RFC3339",
			query: url.Values{"period": {"custom"}, "startDate": {"2024-01-10T12:00:00Z"}, "endDate": {"2024-01-11"}},
			want:  period.Range{Start: date(2024, 1, 10), End: endOf(2024, 1, 11)},
		},
		{
			name:    "MalformedDate",
			query:   url.Values{"startDate": {"10/01/2024"}},
			wantErr: true,
		},
		{
			name:    "CustomWithoutBounds",
			query:   url.Values{"period": {"custom"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := period.ParseRequest(tt.query, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
