package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - A calendar day (the engine never deals in hours)
// =============================================================================

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a strict YYYY-MM-DD string. Impossible dates such as
// 2025-02-30 are rejected rather than normalized.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return TimePoint{Time: t}, nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, n, 0)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

// WeekdayIndex returns 0 for Sunday through 6 for Saturday.
func (tp TimePoint) WeekdayIndex() int { return int(tp.Time.Weekday()) }

func (tp TimePoint) String() string { return tp.Time.Format(DateLayout) }

// =============================================================================
// WEEKDAYS
// =============================================================================

// ValidWeekday reports whether d is a weekday index in 0..6.
func ValidWeekday(d int) bool { return d >= 0 && d <= 6 }

// WeekdayName returns the English name for a weekday index, or "" when the
// index is out of range.
func WeekdayName(d int) string {
	if !ValidWeekday(d) {
		return ""
	}
	return time.Weekday(d).String()
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }

// time.Date normalizes day 0 of the next month to the last day of this one,
// which handles leap-year February.
func EndOfMonth(year int, month time.Month) TimePoint {
	return TimePoint{Time: time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)}
}

func DaysInMonth(year int, month time.Month) int { return EndOfMonth(year, month).Day() }
