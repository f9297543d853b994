// Package storetest holds behavior checks shared by every tuition.Store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeswim/tuition/generic"
	"github.com/primeswim/tuition/tuition"
)

// Run exercises a store built fresh by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) tuition.Store) {
	t.Run("LevelRoundTrip", func(t *testing.T) { testLevelRoundTrip(t, newStore(t)) })
	t.Run("LevelNotFound", func(t *testing.T) { testLevelNotFound(t, newStore(t)) })
	t.Run("ParticipantOrdering", func(t *testing.T) { testParticipantOrdering(t, newStore(t)) })
	t.Run("BulkWeekdays", func(t *testing.T) { testBulkWeekdays(t, newStore(t)) })
	t.Run("BulkWeekdaysUnknownID", func(t *testing.T) { testBulkWeekdaysUnknownID(t, newStore(t)) })
	t.Run("Exceptions", func(t *testing.T) { testExceptions(t, newStore(t)) })
	t.Run("SnapshotIsolation", func(t *testing.T) { testSnapshotIsolation(t, newStore(t)) })
	t.Run("Runs", func(t *testing.T) { testRuns(t, newStore(t)) })
	t.Run("Reset", func(t *testing.T) { testReset(t, newStore(t)) })
}

// GoldLevel is the sample level used across store tests.
func GoldLevel() tuition.LevelConfig {
	reduced := generic.MustParseDecimal("45")
	l := tuition.LevelConfig{
		Name:               "Gold",
		DefaultRatePerHour: generic.MustParseDecimal("40"),
		ReducedRatePerHour: &reduced,
		DaysPerWeek:        3,
		MinDaysPerWeek:     3,
		DefaultTimeSlot:    "6-7PM",
		DefaultLocation:    "Main Pool",
	}
	l.SetScheduleEntry(1, tuition.Slot{TimeSlot: "7-8PM", Location: "Pool A"})
	return l
}

func swimmer(id, name string, days ...int) tuition.Participant {
	return tuition.Participant{
		ID:            id,
		Name:          name,
		SwimmerConfig: tuition.SwimmerConfig{Level: "Gold", TrainingWeekdays: days},
	}
}

func testLevelRoundTrip(t *testing.T, s tuition.Store) {
	ctx := context.Background()

	// GIVEN a saved level
	require.NoError(t, s.SaveLevel(ctx, GoldLevel()))

	// WHEN read back
	got, err := s.GetLevel(ctx, "Gold")
	require.NoError(t, err)

	// THEN decimals and schedule survive
	assert.Equal(t, "40", got.DefaultRatePerHour.String())
	require.NotNil(t, got.ReducedRatePerHour)
	assert.Equal(t, "45", got.ReducedRatePerHour.String())
	slot, ok := got.ScheduleFor(1)
	require.True(t, ok)
	assert.Equal(t, "Pool A", slot.Location)

	// AND saving again replaces
	updated := GoldLevel()
	updated.DefaultLocation = "Annex"
	require.NoError(t, s.SaveLevel(ctx, updated))
	levels, err := s.ListLevels(ctx)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, "Annex", levels[0].DefaultLocation)
}

func testLevelNotFound(t *testing.T, s tuition.Store) {
	ctx := context.Background()

	_, err := s.GetLevel(ctx, "Nope")
	assert.ErrorIs(t, err, generic.ErrNotFound)
	assert.ErrorIs(t, s.DeleteLevel(ctx, "Nope"), generic.ErrNotFound)
	_, err = s.GetParticipant(ctx, "nobody")
	assert.ErrorIs(t, err, generic.ErrNotFound)
	assert.ErrorIs(t, s.DeleteParticipant(ctx, "nobody"), generic.ErrNotFound)
}

func testParticipantOrdering(t *testing.T, s tuition.Store) {
	ctx := context.Background()

	// GIVEN swimmers saved out of order, two sharing a name
	require.NoError(t, s.SaveParticipant(ctx, swimmer("b2", "Blake", 1)))
	require.NoError(t, s.SaveParticipant(ctx, swimmer("a1", "Alex", 1, 3)))
	require.NoError(t, s.SaveParticipant(ctx, swimmer("b1", "Blake", 2)))

	// WHEN listed
	ps, err := s.ListParticipants(ctx)
	require.NoError(t, err)

	// THEN ordered by name, then ID
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"a1", "b1", "b2"}, ids)
	assert.Equal(t, []int{1, 3}, ps[0].TrainingWeekdays)
}

func testBulkWeekdays(t *testing.T, s tuition.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveParticipant(ctx, swimmer("a1", "Alex", 1)))
	require.NoError(t, s.SaveParticipant(ctx, swimmer("b1", "Blake", 2)))

	// WHEN both get new weekdays at once
	err := s.SetTrainingWeekdays(ctx, map[string][]int{"a1": {1, 3, 5}, "b1": {}})
	require.NoError(t, err)

	// THEN both changed and nothing else did
	a, err := s.GetParticipant(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, a.TrainingWeekdays)
	assert.Equal(t, "Gold", a.Level)
	b, err := s.GetParticipant(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, b.TrainingWeekdays)
}

func testBulkWeekdaysUnknownID(t *testing.T, s tuition.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveParticipant(ctx, swimmer("a1", "Alex", 1)))

	// WHEN one ID in the batch is unknown
	err := s.SetTrainingWeekdays(ctx, map[string][]int{"a1": {2}, "ghost": {3}})

	// THEN nothing is written
	assert.ErrorIs(t, err, generic.ErrNotFound)
	a, err := s.GetParticipant(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, a.TrainingWeekdays)
}

func testExceptions(t *testing.T, s tuition.Store) {
	ctx := context.Background()

	// no exception stored yet
	e, err := s.GetMonthException(ctx, "2025-04")
	require.NoError(t, err)
	assert.Equal(t, "2025-04", e.Month)
	assert.Empty(t, e.NoTrainingDates)

	require.NoError(t, s.SaveMonthException(ctx, tuition.MonthException{Month: "2025-04", NoTrainingDates: []string{"2025-04-16"}}))
	require.NoError(t, s.SaveMonthException(ctx, tuition.MonthException{Month: "2025-04", NoTrainingDates: []string{"2025-04-14", "2025-04-16"}}))

	e, err = s.GetMonthException(ctx, "2025-04")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-04-14", "2025-04-16"}, e.NoTrainingDates)
}

func testSnapshotIsolation(t *testing.T, s tuition.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveLevel(ctx, GoldLevel()))
	require.NoError(t, s.SaveParticipant(ctx, swimmer("a1", "Alex", 1, 3)))
	require.NoError(t, s.SaveMonthException(ctx, tuition.MonthException{Month: "2025-03", NoTrainingDates: []string{"2025-03-10"}}))

	// GIVEN a snapshot
	in, err := s.Snapshot(ctx, "2025-03")
	require.NoError(t, err)

	// WHEN the snapshot is mutated and the store edited afterwards
	in.Participants[0].TrainingWeekdays[0] = 6
	require.NoError(t, s.SaveParticipant(ctx, swimmer("z9", "Zed", 2)))

	// THEN neither affects the other
	assert.Len(t, in.Participants, 1)
	assert.Equal(t, "2025-03", in.Month)
	assert.Contains(t, in.Levels, "Gold")
	assert.Equal(t, []string{"2025-03-10"}, in.Exception.NoTrainingDates)

	again, err := s.Snapshot(ctx, "2025-03")
	require.NoError(t, err)
	assert.Len(t, again.Participants, 2)
	assert.Equal(t, []int{1, 3}, again.Participants[0].TrainingWeekdays)

	// AND a month without exceptions snapshots an empty list
	other, err := s.Snapshot(ctx, "2025-05")
	require.NoError(t, err)
	assert.Empty(t, other.Exception.NoTrainingDates)
}

func testRuns(t *testing.T, s tuition.Store) {
	ctx := context.Background()
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

	for i, m := range []string{"2025-03", "2025-04", "2025-03"} {
		r := &tuition.Result{Month: m, Rows: []tuition.CalculationRow{}, Warnings: []tuition.Warning{}, Total: generic.MustParseDecimal("405")}
		require.NoError(t, s.SaveRun(ctx, tuition.Run{
			ID:          m + "-" + string(rune('a'+i)),
			Month:       m,
			Fingerprint: "fp",
			CreatedAt:   now.Add(time.Duration(i) * time.Minute),
			Result:      r,
		}))
	}

	march, err := s.ListRuns(ctx, "2025-03")
	require.NoError(t, err)
	require.Len(t, march, 2)
	assert.Equal(t, "2025-03-c", march[0].ID, "newest first")
	assert.Equal(t, "405", march[0].Result.Total.String())
	assert.True(t, march[0].CreatedAt.Equal(now.Add(2*time.Minute)))

	all, err := s.ListRuns(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func testReset(t *testing.T, s tuition.Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveLevel(ctx, GoldLevel()))
	require.NoError(t, s.SaveParticipant(ctx, swimmer("a1", "Alex", 1)))

	require.NoError(t, s.Reset(ctx))

	levels, err := s.ListLevels(ctx)
	require.NoError(t, err)
	assert.Empty(t, levels)
	ps, err := s.ListParticipants(ctx)
	require.NoError(t, err)
	assert.Empty(t, ps)
}
