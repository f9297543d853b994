/*
Package generic provides the calendar, money and error primitives the
tuition engine is built on.

KEY CONCEPTS:
  - TimePoint: a calendar day (UTC midnight), the unit of session counting
  - Month: a billing month parsed from "YYYY-MM", expandable into its days
  - Money: decimal amounts with currency rounding (2 dp, half-up)
  - Sentinel errors: InvalidMonth, InvalidInput and the per-participant
    degrade-not-fail conditions

DESIGN PRINCIPLES:
  1. Precision: rates and totals use decimal.Decimal, never float64
  2. Purity: nothing here reads the clock or performs I/O
  3. Strict parsing: malformed months and dates are rejected, never normalized

USAGE:
  month, err := generic.ParseMonth("2025-03")
  for _, day := range month.Days() {
      fmt.Println(day, day.WeekdayIndex())
  }
  total := generic.RoundCurrency(decimal.NewFromInt(9).Mul(rate))

SEE ALSO:
  - period.go: Month and Period
  - errors.go: Error taxonomy
  - tuition/engine.go: The calculation built on these types
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY
// =============================================================================

// CurrencyPlaces is the minor-unit precision of every billed amount.
const CurrencyPlaces = 2

// RoundCurrency rounds to the currency's minor unit, half-up. Amounts in
// this system are never negative, so decimal's half-away-from-zero rounding
// is half-up here.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// Sum adds amounts without intermediate rounding.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// DecimalPtr returns a pointer to d, for optional rates.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }

// MustParseDecimal is decimal.NewFromString for literals. It panics on a
// malformed value.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
