package recurring_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/recurring"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name      string
		current   time.Time
		frequency recurring.Frequency
		want      time.Time
	}{
		{name: "Daily", current: day(2024, 3, 31), frequency: recurring.Daily, want: day(2024, 4, 1)},
		{name: "Weekly", current: day(2024, 12, 28), frequency: recurring.Weekly, want: day(2025, 1, 4)},
		{name: "Biweekly", current: day(2024, 2, 20), frequency: recurring.Biweekly, want: day(2024, 3, 5)},
		{name: "Monthly", current: day(2024, 1, 15), frequency: recurring.Monthly, want: day(2024, 2, 15)},
		{name: "MonthlyClampsLeap", current: day(2024, 1, 31), frequency: recurring.Monthly, want: day(2024, 2, 29)},
		{name: "MonthlyClamps", current: day(2023, 1, 31), frequency: recurring.Monthly, want: day(2023, 2, 28)},
		{name: "MonthlyYearWrap", current: day(2024, 12, 31), frequency: recurring.Monthly, want: day(2025, 1, 31)},
		{name: "Quarterly", current: day(2024, 11, 30), frequency: recurring.Quarterly, want: day(2025, 2, 28)},
		{name: "Yearly", current: day(2023, 6, 1), frequency: recurring.Yearly, want: day(2024, 6, 1)},
		{name: "YearlyFromLeapDay", current: day(2024, 2, 29), frequency: recurring.Yearly, want: day(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := recurring.NextOccurrence(tt.current, tt.frequency)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.After(tt.current))
		})
	}
}

func TestNextOccurrence_UnknownFrequency(t *testing.T) {
	_, err := recurring.NextOccurrence(day(2024, 1, 1), "hourly")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestNextOccurrence_MonthlyKeepsDayOfMonth(t *testing.T) {
	current := day(2024, 1, 15)

	for range 24 {
		next, err := recurring.NextOccurrence(current, recurring.Monthly)
		require.NoError(t, err)
		assert.Equal(t, 15, next.Day())

		current = next
	}
}

// Chaining the free function from the 31st drifts to the clamped day.
func TestNextOccurrence_MonthlyDriftsAfterShortMonth(t *testing.T) {
	current := day(2023, 1, 31)

	feb, err := recurring.NextOccurrence(current, recurring.Monthly)
	require.NoError(t, err)

	mar, err := recurring.NextOccurrence(feb, recurring.Monthly)
	require.NoError(t, err)

	assert.Equal(t, day(2023, 2, 28), feb)
	assert.Equal(t, day(2023, 3, 28), mar)
}

func TestRecurring_AdvanceAnchorsOnStartDay(t *testing.T) {
	r := &recurring.Recurring{
		Frequency:      recurring.Monthly,
		StartDate:      day(2023, 1, 31),
		NextOccurrence: day(2023, 1, 31),
		IsActive:       true,
	}

	want := []time.Time{day(2023, 2, 28), day(2023, 3, 31), day(2023, 4, 30), day(2023, 5, 31)}

	for _, w := range want {
		require.NoError(t, r.Advance())
		assert.Equal(t, w, r.NextOccurrence)
	}
}

func TestRecurring_AdvancePastEndDeactivates(t *testing.T) {
	end := day(2024, 1, 20)
	r := &recurring.Recurring{
		Frequency:      recurring.Weekly,
		StartDate:      day(2024, 1, 1),
		NextOccurrence: day(2024, 1, 15),
		EndDate:        &end,
		IsActive:       true,
	}

	require.NoError(t, r.Advance())
	assert.False(t, r.IsActive)
}

func TestShouldProcess(t *testing.T) {
	now := day(2024, 5, 10)
	past := day(2024, 5, 1)
	future := day(2024, 6, 1)

	tests := []struct {
		name       string
		r          recurring.Recurring
		want       bool
		wantActive bool
	}{
		{
			name:       "Due",
			r:          recurring.Recurring{IsActive: true, AutoProcess: true, NextOccurrence: past},
			want:       true,
			wantActive: true,
		},
		{
			name:       "DueExactlyNow",
			r:          recurring.Recurring{IsActive: true, AutoProcess: true, NextOccurrence: now},
			want:       true,
			wantActive: true,
		},
		{
			name:       "NotYetDue",
			r:          recurring.Recurring{IsActive: true, AutoProcess: true, NextOccurrence: future},
			wantActive: true,
		},
		{
			name:       "Manual",
			r:          recurring.Recurring{IsActive: true, AutoProcess: false, NextOccurrence: past},
			wantActive: true,
		},
		{
			name: "Inactive",
			r:    recurring.Recurring{IsActive: false, AutoProcess: true, NextOccurrence: past},
		},
		{
			name: "ExpiredDeactivates",
			r:    recurring.Recurring{IsActive: true, AutoProcess: true, NextOccurrence: past, EndDate: &past},
		},
		{
			name:       "EndsInFuture",
			r:          recurring.Recurring{IsActive: true, AutoProcess: true, NextOccurrence: past, EndDate: &future},
			want:       true,
			wantActive: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.r
			assert.Equal(t, tt.want, recurring.ShouldProcess(&r, now))
			assert.Equal(t, tt.wantActive, r.IsActive)
		})
	}
}
