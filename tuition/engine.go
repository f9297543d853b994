/*
engine.go - Calculation orchestrator

PURPOSE:
  Runs the monthly calculation for a whole roster:

    month -> calendar days -> exception filter            (once per month)
    per participant: schedule resolver -> rate resolver -> aggregator

FAILURE POLICY:
  Only structural caller errors abort the call:
    - malformed month          -> generic.ErrInvalidMonth
    - empty or duplicate IDs   -> generic.ErrInvalidInput
  Everything else is recovered per participant. A missing level, an unknown
  level or an empty weekday pattern produces a needsConfig row with zero
  sessions and zero tuition plus a warning. No participant is dropped and
  rows keep input order.

CONCURRENCY:
  Calculate is a pure function of its Input. Concurrent calls need no
  coordination; CalculateMonths fans independent months out over goroutines.
  The snapshot source, not the engine, is responsible for handing out a
  consistent view of configuration.

SEE ALSO:
  - schedule.go, exceptions.go, rate.go, aggregate.go: The stages
  - store/sqlite, store/memory: SnapshotSource implementations
*/
package tuition

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/primeswim/tuition/generic"
)

// SnapshotSource supplies one consistent view of levels, participants and
// the month's exception for a calculation.
type SnapshotSource interface {
	Snapshot(ctx context.Context, month string) (Input, error)
}

// Calculate computes one row per participant for the input month.
func Calculate(in Input) (*Result, error) {
	month, err := generic.ParseMonth(in.Month)
	if err != nil {
		return nil, err
	}
	if err := validateParticipants(in.Participants); err != nil {
		return nil, err
	}

	days, warnings := FilterExceptions(month.Days(), month, in.Exception.NoTrainingDates)

	result := &Result{
		Month:    month.String(),
		Rows:     make([]CalculationRow, 0, len(in.Participants)),
		Warnings: append([]Warning{}, warnings...),
		Total:    decimal.Zero,
	}

	for _, p := range in.Participants {
		row, ws := calculateRow(p, in.Levels, days)
		result.Rows = append(result.Rows, row)
		result.Warnings = append(result.Warnings, ws...)
		result.Sessions += row.SessionCount
		result.Total = result.Total.Add(row.Tuition)
	}
	return result, nil
}

func calculateRow(p Participant, levels map[string]LevelConfig, days []generic.TimePoint) (CalculationRow, []Warning) {
	var warnings []Warning

	level, warn := lookupLevel(p, levels)
	if warn != nil {
		warnings = append(warnings, *warn)
	}

	res := ResolveSchedule(level, p.SwimmerConfig)
	for _, d := range res.Dropped {
		warnings = append(warnings, participantWarning(WarnInvalidWeekday, p.ID, "weekday %d is not in 0..6", d))
	}
	if level != nil && res.Empty() {
		warnings = append(warnings, participantWarning(WarnMissingWeekdays, p.ID, "level %q assigned but no training weekdays", p.Level))
	}

	weekdayCount := res.WeekdayCount()
	rate := ResolveRate(p.SwimmerConfig, level, weekdayCount)
	return Aggregate(p, level, days, res, rate), warnings
}

func lookupLevel(p Participant, levels map[string]LevelConfig) (*LevelConfig, *Warning) {
	if p.Level == "" {
		w := participantWarning(WarnMissingLevel, p.ID, "no level assigned")
		return nil, &w
	}
	level, ok := levels[p.Level]
	if !ok {
		w := participantWarning(WarnInvalidLevelReference, p.ID, "level %q is not configured", p.Level)
		return nil, &w
	}
	return &level, nil
}

func validateParticipants(ps []Participant) error {
	seen := make(map[string]bool, len(ps))
	for i, p := range ps {
		if p.ID == "" {
			return &generic.InvalidInputError{Field: fmt.Sprintf("participants[%d].id", i), Reason: "must not be empty"}
		}
		if seen[p.ID] {
			return &generic.InvalidInputError{Field: "participants.id", Value: p.ID, Reason: "duplicate participant"}
		}
		seen[p.ID] = true
	}
	return nil
}

// =============================================================================
// MULTI-MONTH FAN-OUT
// =============================================================================

// CalculateMonths snapshots and calculates several months concurrently.
// Results come back in the order of months. The first error cancels the rest.
func CalculateMonths(ctx context.Context, src SnapshotSource, months []string) ([]*Result, error) {
	results := make([]*Result, len(months))
	g, ctx := errgroup.WithContext(ctx)
	for i, m := range months {
		i, m := i, m
		g.Go(func() error {
			in, err := src.Snapshot(ctx, m)
			if err != nil {
				return fmt.Errorf("snapshot %s: %w", m, err)
			}
			r, err := Calculate(in)
			if err != nil {
				return fmt.Errorf("calculate %s: %w", m, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// =============================================================================
// FINGERPRINT
// =============================================================================

// Fingerprint identifies an input snapshot. Equal inputs give equal
// fingerprints (encoding/json sorts map keys), so it keys result caches.
func Fingerprint(in Input) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
