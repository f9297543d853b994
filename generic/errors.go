/*
errors.go - Centralized error types for the tuition engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers classify errors with errors.Is against the sentinels below.

ERROR CATEGORIES:
  1. Fatal caller errors - ErrInvalidMonth, ErrInvalidInput. The whole
     calculation is aborted and nothing is computed.
  2. Per-participant conditions - ErrMissingLevel, ErrInvalidLevelReference,
     ErrMissingWeekdays. Never returned from a calculation; they travel as
     warnings and the affected row carries needsConfig.
  3. Bad data - ErrMalformedException, ErrInvalidWeekday. Reported as a
     warning, the offending date or weekday is ignored.
  4. Store errors - ErrNotFound.

SEE ALSO:
  - tuition/warning.go: Warnings wrap the per-participant sentinels
  - api/handlers.go: Maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidMonth is returned when the billing month is not a valid YYYY-MM.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrInvalidInput is returned for structural caller errors such as
	// duplicate participant IDs.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingLevel marks a participant with no level assigned.
	ErrMissingLevel = errors.New("participant has no level")

	// ErrInvalidLevelReference marks a participant whose level is not configured.
	ErrInvalidLevelReference = errors.New("level not configured")

	// ErrMissingWeekdays marks a participant with a level but no training weekdays.
	ErrMissingWeekdays = errors.New("no training weekdays")

	// ErrInvalidWeekday marks a training weekday index outside 0..6. The index
	// is dropped and the rest of the participant's pattern is used.
	ErrInvalidWeekday = errors.New("weekday out of range")

	// ErrMalformedException marks a no-training date that is not a valid
	// calendar date or falls outside the billing month.
	ErrMalformedException = errors.New("malformed exception date")

	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidInputError describes which part of a calculation request is wrong.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid input: %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// ExceptionDateError provides details about an ignored no-training date.
type ExceptionDateError struct {
	Date   string
	Month  string
	Reason string
}

func (e *ExceptionDateError) Error() string {
	return fmt.Sprintf("exception date %q ignored for %s: %s", e.Date, e.Month, e.Reason)
}

func (e *ExceptionDateError) Unwrap() error {
	return ErrMalformedException
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidMonth) ||
		errors.Is(err, ErrInvalidInput)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// NeedsConfig returns true for the per-participant conditions that degrade a
// row instead of failing the calculation.
func NeedsConfig(err error) bool {
	return errors.Is(err, ErrMissingLevel) ||
		errors.Is(err, ErrInvalidLevelReference) ||
		errors.Is(err, ErrMissingWeekdays)
}
