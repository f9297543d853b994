package generic_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeswim/tuition/generic"
)

// =============================================================================
// MONTH PARSING
// =============================================================================

func TestParseMonth_Valid(t *testing.T) {
	m, err := generic.ParseMonth("2025-03")
	require.NoError(t, err)
	assert.Equal(t, 2025, m.Year)
	assert.Equal(t, time.March, m.Month)
	assert.Equal(t, "2025-03", m.String())
}

func TestParseMonth_Malformed(t *testing.T) {
	for _, s := range []string{"", "2025", "2025-3", "2025-13", "2025-00", "0000-01", "25-03", "2025/03", "2025-03-01", " 2025-03"} {
		t.Run(s, func(t *testing.T) {
			_, err := generic.ParseMonth(s)
			require.Error(t, err)
			assert.True(t, errors.Is(err, generic.ErrInvalidMonth), "expected ErrInvalidMonth, got %v", err)
			assert.True(t, generic.IsClientError(err))
		})
	}
}

// =============================================================================
// CALENDAR EXPANSION
// =============================================================================

func TestMonthDays_Lengths(t *testing.T) {
	tests := []struct {
		month string
		days  int
	}{
		{"2025-01", 31},
		{"2025-02", 28},
		{"2024-02", 29},
		{"2000-02", 29},
		{"1900-02", 28},
		{"2025-04", 30},
		{"2025-12", 31},
	}
	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			days := generic.MustParseMonth(tt.month).Days()
			require.Len(t, days, tt.days)
			assert.Equal(t, tt.month+"-01", days[0].String())
			assert.Equal(t, tt.days, days[len(days)-1].Day())
		})
	}
}

func TestMonthDays_OrderedWithWeekdays(t *testing.T) {
	// GIVEN: March 2025, which starts on a Saturday
	days := generic.MustParseMonth("2025-03").Days()

	// THEN: Days are ascending and weekday indices cycle from 6
	assert.Equal(t, 6, days[0].WeekdayIndex())
	assert.Equal(t, 0, days[1].WeekdayIndex())
	for i := 1; i < len(days); i++ {
		assert.True(t, days[i-1].Before(days[i]))
		assert.Equal(t, (days[i-1].WeekdayIndex()+1)%7, days[i].WeekdayIndex())
	}
}

func TestMonthContains(t *testing.T) {
	m := generic.MustParseMonth("2025-03")
	assert.True(t, m.Contains(generic.NewTimePoint(2025, time.March, 31)))
	assert.False(t, m.Contains(generic.NewTimePoint(2025, time.April, 1)))
	assert.False(t, m.Contains(generic.NewTimePoint(2024, time.March, 10)))
}

func TestMonthNext_WrapsYear(t *testing.T) {
	assert.Equal(t, "2026-01", generic.MustParseMonth("2025-12").Next().String())
}

// =============================================================================
// DATES AND MONEY
// =============================================================================

func TestParseDate_RejectsImpossibleDates(t *testing.T) {
	_, err := generic.ParseDate("2025-02-30")
	assert.Error(t, err)

	_, err = generic.ParseDate("2025-3-1")
	assert.Error(t, err)

	d, err := generic.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Thursday, d.Weekday())
}

func TestWeekdayName(t *testing.T) {
	assert.Equal(t, "Sunday", generic.WeekdayName(0))
	assert.Equal(t, "Saturday", generic.WeekdayName(6))
	assert.Equal(t, "", generic.WeekdayName(7))
}

func TestMustParseDecimal_PanicsOnTypo(t *testing.T) {
	assert.Equal(t, "40", generic.MustParseDecimal("40").String())
	assert.Panics(t, func() { generic.MustParseDecimal("4O") })
}

func TestRoundCurrency_HalfUp(t *testing.T) {
	assert.Equal(t, "10.13", generic.RoundCurrency(generic.MustParseDecimal("10.125")).StringFixed(2))
	assert.Equal(t, "10.12", generic.RoundCurrency(generic.MustParseDecimal("10.1249")).StringFixed(2))
	assert.True(t, generic.Sum(decimal.NewFromInt(1), generic.MustParseDecimal("2.5")).Equal(generic.MustParseDecimal("3.5")))
}
