package tuition

import (
	"github.com/primeswim/tuition/generic"
)

// =============================================================================
// EXCEPTION FILTER
// =============================================================================

// FilterExceptions returns the days that are not no-training dates.
//
// Dates match by exact YYYY-MM-DD string. An exception that is not a real
// calendar date, or that falls outside the month, is ignored and reported.
// Repeated dates are harmless.
func FilterExceptions(days []generic.TimePoint, month generic.Month, noTrainingDates []string) ([]generic.TimePoint, []Warning) {
	excluded, warnings := exceptionSet(month, noTrainingDates)

	kept := make([]generic.TimePoint, 0, len(days))
	for _, day := range days {
		if excluded[day.String()] {
			continue
		}
		kept = append(kept, day)
	}
	return kept, warnings
}

func exceptionSet(month generic.Month, dates []string) (map[string]bool, []Warning) {
	set := make(map[string]bool, len(dates))
	var warnings []Warning
	for _, s := range dates {
		if err := checkExceptionDate(month, s); err != nil {
			warnings = append(warnings, exceptionWarning(err))
			continue
		}
		set[s] = true
	}
	return set, warnings
}

func checkExceptionDate(month generic.Month, s string) error {
	d, err := generic.ParseDate(s)
	if err != nil {
		return &generic.ExceptionDateError{Date: s, Month: month.String(), Reason: "not a valid YYYY-MM-DD calendar date"}
	}
	if !month.Contains(d) {
		return &generic.ExceptionDateError{Date: s, Month: month.String(), Reason: "outside the billing month"}
	}
	return nil
}
