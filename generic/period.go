package generic

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// =============================================================================
// PERIOD - An inclusive run of calendar days
// =============================================================================

type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// MONTH - The billing unit
// =============================================================================

// MonthLayout is the wire format for billing months.
const MonthLayout = "2006-01"

var monthPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// Month is a calendar month in the proleptic Gregorian calendar.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a strict "YYYY-MM" string. Anything else, including
// "2025-3", "2025-13" and "0000-01", is an ErrInvalidMonth.
func ParseMonth(s string) (Month, error) {
	m := monthPattern.FindStringSubmatch(s)
	if m == nil {
		return Month{}, fmt.Errorf("%w: %q is not YYYY-MM", ErrInvalidMonth, s)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if year < 1 {
		return Month{}, fmt.Errorf("%w: year %d out of range", ErrInvalidMonth, year)
	}
	if month < 1 || month > 12 {
		return Month{}, fmt.Errorf("%w: month %d out of range", ErrInvalidMonth, month)
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

// MustParseMonth is ParseMonth for literals in tests and seed data.
func MustParseMonth(s string) Month {
	m, err := ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Month) String() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)) }

func (m Month) Start() TimePoint { return StartOfMonth(m.Year, m.Month) }
func (m Month) End() TimePoint   { return EndOfMonth(m.Year, m.Month) }

func (m Month) Period() Period { return Period{Start: m.Start(), End: m.End()} }

// Contains reports whether the day falls inside this month.
func (m Month) Contains(t TimePoint) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

// Days expands the month into its ordered calendar dates.
func (m Month) Days() []TimePoint { return m.Period().Days() }

// Next returns the following month.
func (m Month) Next() Month {
	t := m.Start().AddMonths(1)
	return Month{Year: t.Year(), Month: t.Month()}
}
