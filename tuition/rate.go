package tuition

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE RESOLVER
// =============================================================================

// ResolveRate returns the hourly rate for a participant.
//
// Precedence:
//   - RatePerHourOverride, unconditionally (zero included)
//   - ReducedRatePerHour when defined and weekdayCount < MinDaysPerWeek
//   - DefaultRatePerHour
//
// weekdayCount is the number of weekdays the swimmer trains, never the
// month's realized session count: a two-day swimmer pays the reduced rate
// for the whole month even when a holiday changes that month's total.
// A nil level yields zero, override or not; the row's needsConfig flag tells
// the caller the rate means nothing.
func ResolveRate(swimmer SwimmerConfig, level *LevelConfig, weekdayCount int) decimal.Decimal {
	if level == nil {
		return decimal.Zero
	}
	if swimmer.RatePerHourOverride != nil {
		return *swimmer.RatePerHourOverride
	}
	if level.ReducedRatePerHour != nil && weekdayCount < level.MinDaysPerWeek {
		return *level.ReducedRatePerHour
	}
	return level.DefaultRatePerHour
}
