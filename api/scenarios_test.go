package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_AllParse(t *testing.T) {
	s := newTestServer(t)
	for _, sc := range scenarios {
		t.Run(sc.ID, func(t *testing.T) {
			require.NoError(t, s.h.SeedScenario(context.Background(), sc.ID))
		})
	}
}

func TestLoadScenario_GoldMarch(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "POST", "/api/scenarios/load", `{"scenario_id": "gold-march"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	loaded := decode[ScenarioLoadedResponse](t, rec)
	assert.Equal(t, 1, loaded.Levels)
	assert.Equal(t, 1, loaded.Swimmers)

	res := decode[ResultDTO](t, s.do(t, "POST", "/api/calculations/2025-03", ""))
	assert.Equal(t, "360.00", res.Total)
}

func TestLoadScenario_MixedRoster(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(t, "POST", "/api/scenarios/load", `{"scenario_id": "mixed-roster"}`).Code)

	// WHEN April 2025 is calculated (April 18 is cancelled)
	res := decode[ResultDTO](t, s.do(t, "POST", "/api/calculations/2025-04", ""))

	// THEN each swimmer gets the expected line
	want := []struct {
		name     string
		sessions int
		rate     string
		tuition  string
		flagged  bool
	}{
		{"Avery", 9, "25.00", "225.00", false},  // Tue 5 + Thu 4
		{"Blake", 13, "32.50", "422.50", false}, // Tue 5 + Thu 4 + Sat 4, at the default rate
		{"Casey", 4, "35.00", "140.00", false},  // one weekday is below the minimum of 2
		{"Devon", 12, "40.00", "480.00", false}, // Mon 4 + Wed 5 + Fri 3
		{"Emery", 9, "20.00", "180.00", false},  // override
		{"Frankie", 0, "0.00", "0.00", true},    // no level
		{"Gray", 0, "0.00", "0.00", true},       // no weekdays
	}
	require.Len(t, res.Rows, len(want))
	for i, w := range want {
		row := res.Rows[i]
		assert.Equal(t, w.name, row.ParticipantName)
		assert.Equal(t, w.sessions, row.SessionCount, w.name)
		assert.Equal(t, w.rate, row.RatePerHour, w.name)
		assert.Equal(t, w.tuition, row.Tuition, w.name)
		assert.Equal(t, w.flagged, row.NeedsConfig, w.name)
	}
	assert.Equal(t, "1447.50", res.Total)
	assert.Equal(t, 47, res.Sessions)
	assert.Equal(t, 2, res.NeedsConfigCount)

	// Casey's location override applies on the Silver schedule
	assert.Equal(t, "Lane 8", res.Rows[2].Location)
	assert.Equal(t, "5-6PM", res.Rows[2].TimeSlot)
}

func TestLoadScenario_Unknown(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, s.do(t, "POST", "/api/scenarios/load", `{"scenario_id": "nope"}`).Code)
}

func TestResetDatabase(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.h.SeedScenario(context.Background(), "gold-march"))

	assert.Equal(t, http.StatusNoContent, s.do(t, "POST", "/api/scenarios/reset", "").Code)
	assert.Empty(t, decode[[]map[string]any](t, s.do(t, "GET", "/api/swimmers", "")))
}

func TestWarmupScheduler_WarmsCache(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.h.SeedScenario(context.Background(), "gold-march"))

	ws := NewWarmupScheduler(s.h)
	months := ws.Months()
	require.Len(t, months, 2)
	assert.Equal(t, "2025-03", months[0].String())
	assert.Equal(t, "2025-04", months[1].String())

	// WHEN a pass runs
	assert.Equal(t, 2, ws.Warm(context.Background()))

	// THEN both months are cached and no run was recorded
	assert.Equal(t, 2, s.redis.Len())
	res := decode[ResultDTO](t, s.do(t, "POST", "/api/calculations/2025-03", ""))
	assert.True(t, res.Cached)
	runs := decode[[]RunDTO](t, s.do(t, "GET", "/api/runs", ""))
	assert.Len(t, runs, 1)
}

func TestWarmupScheduler_StartStop(t *testing.T) {
	s := newTestServer(t)
	ws := NewWarmupScheduler(s.h)
	ws.CheckInterval = time.Hour

	ws.Start()
	ws.Stop()
	ws.Stop()
}

func TestWarmupScheduler_RestartKeepsTicking(t *testing.T) {
	s := newTestServer(t)
	ws := NewWarmupScheduler(s.h)
	ws.CheckInterval = 5 * time.Millisecond

	// GIVEN a scheduler that was stopped once
	ws.Start()
	ws.Stop()
	after := ws.Passes()

	// WHEN it is started again
	ws.Start()
	defer ws.Stop()

	// THEN ticks keep producing passes beyond the immediate one
	assert.Eventually(t, func() bool { return ws.Passes() >= after+3 }, 2*time.Second, 5*time.Millisecond)
}
