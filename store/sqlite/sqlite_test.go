package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeswim/tuition/store/sqlite"
	"github.com/primeswim/tuition/store/storetest"
	"github.com/primeswim/tuition/tuition"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) tuition.Store { return newStore(t) })
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tuition.db")

	// GIVEN a level written to a file database
	s, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveLevel(ctx, storetest.GoldLevel()))
	require.NoError(t, s.Close())

	// WHEN reopened
	s, err = sqlite.New(path)
	require.NoError(t, err)
	defer s.Close()

	// THEN the level is still there
	l, err := s.GetLevel(ctx, "Gold")
	require.NoError(t, err)
	assert.Equal(t, "Main Pool", l.DefaultLocation)
}

func TestSQLiteStore_SnapshotFeedsEngine(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveLevel(ctx, storetest.GoldLevel()))
	require.NoError(t, s.SaveParticipant(ctx, tuition.Participant{
		ID:            "sw-001",
		Name:          "Alex",
		SwimmerConfig: tuition.SwimmerConfig{Level: "Gold", TrainingWeekdays: []int{1, 3}},
	}))

	in, err := s.Snapshot(ctx, "2025-03")
	require.NoError(t, err)

	result, err := tuition.Calculate(in)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	// 5 Mondays + 4 Wednesdays, two weekdays is below the minimum of 3
	assert.Equal(t, 9, result.Rows[0].SessionCount)
	assert.Equal(t, "405.00", result.Rows[0].Tuition.StringFixed(2))
}
