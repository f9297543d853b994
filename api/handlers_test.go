/*
handlers_test.go - HTTP tests for the API

Tests for:
- Level, swimmer and exception editing
- Calculation, caching and recorded runs
- Error status mapping
- Exports and chart
*/
package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeswim/tuition/cache"
	"github.com/primeswim/tuition/store/memory"
)

type testServer struct {
	h      *Handler
	router http.Handler
	redis  *cache.MockClient
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	redis := cache.NewMockClient()
	h := NewHandler(memory.New(), cache.NewResultCache(redis, time.Hour), nil)
	h.now = func() time.Time { return time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC) }
	return &testServer{h: h, router: NewRouter(h), redis: redis}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const goldJSON = `{
	"name": "Gold",
	"default_rate_per_hour": 40,
	"reduced_rate_per_hour": 45,
	"days_per_week": 3,
	"min_days_per_week": 3,
	"default_time_slot": "6-7PM",
	"default_location": "Main Pool",
	"schedule": [
		{"weekday": 1, "time_slot": "7-8PM", "location": "Pool A"},
		{"weekday": 3, "time_slot": "7-8PM", "location": "Pool A"}
	]
}`

const alexJSON = `{"id": "sw-001", "name": "Alex", "level": "Gold", "training_weekdays": [1, 3]}`

func (s *testServer) seedGoldAlex(t *testing.T) {
	t.Helper()
	require.Equal(t, http.StatusCreated, s.do(t, "POST", "/api/levels", goldJSON).Code)
	require.Equal(t, http.StatusCreated, s.do(t, "POST", "/api/swimmers", alexJSON).Code)
	rec := s.do(t, "PUT", "/api/exceptions/2025-03", `{"no_training_dates": ["2025-03-10"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// =============================================================================
// CONFIGURATION ENDPOINTS
// =============================================================================

func TestLevels_CreateGetDelete(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "POST", "/api/levels", goldJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, "GET", "/api/levels/Gold", "")
	require.Equal(t, http.StatusOK, rec.Code)
	level := decode[map[string]any](t, rec)
	assert.Equal(t, 45.0, level["reduced_rate_per_hour"])
	assert.Len(t, level["schedule"], 2)

	rec = s.do(t, "GET", "/api/levels", "")
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	assert.Equal(t, http.StatusNoContent, s.do(t, "DELETE", "/api/levels/Gold", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, "GET", "/api/levels/Gold", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, "DELETE", "/api/levels/Gold", "").Code)
}

func TestLevels_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"blank name", `{"name": "  ", "default_rate_per_hour": 40}`, "name"},
		{"negative rate", `{"name": "X", "default_rate_per_hour": -1}`, "default_rate_per_hour"},
		{"negative reduced rate", `{"name": "X", "reduced_rate_per_hour": -5}`, "reduced_rate_per_hour"},
		{"min above days", `{"name": "X", "days_per_week": 2, "min_days_per_week": 3}`, "min_days_per_week"},
		{"schedule weekday", `{"name": "X", "schedule": [{"weekday": 7}]}`, "weekday"},
		{"not json", `{`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, "POST", "/api/levels", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[ErrorResponse](t, rec).Details, tt.want)
		})
	}
}

func TestSwimmers_CRUDAndBulkTrainingDays(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, "POST", "/api/swimmers", alexJSON).Code)
	require.Equal(t, http.StatusCreated, s.do(t, "POST", "/api/swimmers", `{"id": "sw-002", "name": "Blake"}`).Code)

	// WHEN both swimmers get new weekdays in one call
	rec := s.do(t, "PUT", "/api/swimmers/training-days", `{"assignments": {"sw-001": [2, 4], "sw-002": [6]}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[TrainingDaysResponse](t, rec).Updated)

	// THEN both are updated
	rec = s.do(t, "GET", "/api/swimmers/sw-002", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{6.0}, decode[map[string]any](t, rec)["training_weekdays"])

	// AND an unknown swimmer rejects the whole batch
	rec = s.do(t, "PUT", "/api/swimmers/training-days", `{"assignments": {"sw-001": [1], "ghost": [2]}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, "GET", "/api/swimmers/sw-001", "")
	assert.Equal(t, []any{2.0, 4.0}, decode[map[string]any](t, rec)["training_weekdays"])

	// AND invalid weekdays are a client error
	rec = s.do(t, "PUT", "/api/swimmers/training-days", `{"assignments": {"sw-001": [1, 1]}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, "PUT", "/api/swimmers/training-days", `{"assignments": {"sw-001": [9]}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, "PUT", "/api/swimmers/training-days", `{"assignments": {}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNoContent, s.do(t, "DELETE", "/api/swimmers/sw-002", "").Code)
	rec = s.do(t, "GET", "/api/swimmers", "")
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
}

func TestExceptions(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "GET", "/api/exceptions/2025-04", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decode[map[string]any](t, rec)["no_training_dates"])

	rec = s.do(t, "PUT", "/api/exceptions/2025-04", `{"no_training_dates": ["2025-04-16", "2025-04-16"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"2025-04-16"}, decode[map[string]any](t, rec)["no_training_dates"])

	assert.Equal(t, http.StatusBadRequest, s.do(t, "GET", "/api/exceptions/2025-13", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, "PUT", "/api/exceptions/2025-04", `{"no_training_dates": ["2025-05-01"]}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, "PUT", "/api/exceptions/2025-04", `{"no_training_dates": ["2025-04-31"]}`).Code)
}

// =============================================================================
// CALCULATION ENDPOINTS
// =============================================================================

func TestCalculate_GoldAlexMarch(t *testing.T) {
	s := newTestServer(t)
	s.seedGoldAlex(t)

	// WHEN calculating March 2025
	rec := s.do(t, "POST", "/api/calculations/2025-03", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[ResultDTO](t, rec)

	// THEN Alex has 8 sessions at the reduced rate
	require.Len(t, res.Rows, 1)
	row := res.Rows[0]
	assert.Equal(t, 8, row.SessionCount)
	assert.Equal(t, "45.00", row.RatePerHour)
	assert.Equal(t, "360.00", row.Tuition)
	assert.Equal(t, []string{"Monday", "Wednesday"}, row.TrainingDays)
	assert.Equal(t, "Monday March 3 — 7-8PM @ Pool A", row.ScheduleLines[0])
	assert.Equal(t, "360.00", res.Total)
	assert.False(t, res.Cached)
	assert.NotEmpty(t, res.RunID)
	assert.NotEmpty(t, res.Fingerprint)
	assert.Empty(t, res.Warnings)
}

func TestCalculate_CachedUntilConfigChanges(t *testing.T) {
	s := newTestServer(t)
	s.seedGoldAlex(t)

	first := decode[ResultDTO](t, s.do(t, "POST", "/api/calculations/2025-03", ""))
	second := decode[ResultDTO](t, s.do(t, "POST", "/api/calculations/2025-03", ""))

	// GIVEN an unchanged snapshot, the second call is a cache hit with the same body
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, 1, s.redis.Len())

	// WHEN the exception is removed
	require.Equal(t, http.StatusOK, s.do(t, "PUT", "/api/exceptions/2025-03", `{"no_training_dates": []}`).Code)
	third := decode[ResultDTO](t, s.do(t, "POST", "/api/calculations/2025-03", ""))

	// THEN the fingerprint changes and the engine runs again
	assert.False(t, third.Cached)
	assert.NotEqual(t, first.Fingerprint, third.Fingerprint)
	assert.Equal(t, "405.00", third.Total)

	// AND every POST was recorded
	runs := decode[[]RunDTO](t, s.do(t, "GET", "/api/runs?month=2025-03", ""))
	require.Len(t, runs, 3)
	assert.Equal(t, third.RunID, runs[0].ID)
	assert.Equal(t, "405.00", runs[0].Total)
}

func TestCalculate_UnconfiguredSwimmersAreFlagged(t *testing.T) {
	s := newTestServer(t)
	s.seedGoldAlex(t)
	require.Equal(t, http.StatusCreated, s.do(t, "POST", "/api/swimmers", `{"id": "sw-009", "name": "Zed", "level": "Platinum", "training_weekdays": [1]}`).Code)

	res := decode[ResultDTO](t, s.do(t, "POST", "/api/calculations/2025-03", ""))

	require.Len(t, res.Rows, 2)
	zed := res.Rows[1]
	assert.True(t, zed.NeedsConfig)
	assert.Equal(t, 0, zed.SessionCount)
	assert.Equal(t, "0.00", zed.Tuition)
	assert.Equal(t, 1, res.NeedsConfigCount)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "invalid_level_reference", string(res.Warnings[0].Code))
}

func TestCalculate_ErrorStatus(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, s.do(t, "POST", "/api/calculations/2025-3", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, "POST", "/api/calculations/2025-00", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, "GET", "/api/runs?month=march", "").Code)

	// an empty roster is a valid calculation
	rec := s.do(t, "POST", "/api/calculations/2025-03", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[ResultDTO](t, rec)
	assert.Empty(t, res.Rows)
	assert.Equal(t, "0.00", res.Total)
}

func TestCalculateBatch(t *testing.T) {
	s := newTestServer(t)
	s.seedGoldAlex(t)

	rec := s.do(t, "POST", "/api/calculations/batch", `{"months": ["2025-12", "2025-03"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[BatchResponse](t, rec)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "2025-12", resp.Results[0].Month)
	assert.Equal(t, "450.00", resp.Results[0].Total)
	assert.Equal(t, "2025-03", resp.Results[1].Month)
	assert.Equal(t, "360.00", resp.Results[1].Total)

	assert.Equal(t, http.StatusBadRequest, s.do(t, "POST", "/api/calculations/batch", `{"months": []}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, "POST", "/api/calculations/batch", `{"months": ["2025-03", "bad"]}`).Code)
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)
	s.seedGoldAlex(t)

	rec := s.do(t, "GET", "/api/calculations/2025-03/export.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tuition_2025-03.csv")

	records, err := csv.NewReader(bytes.NewReader(rec.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Alex", records[1][1])
	assert.Equal(t, "360.00", records[1][6])

	// exports don't record runs
	runs := decode[[]RunDTO](t, s.do(t, "GET", "/api/runs", ""))
	assert.Empty(t, runs)
}

func TestExportXLSXAndChart(t *testing.T) {
	s := newTestServer(t)
	s.seedGoldAlex(t)

	rec := s.do(t, "GET", "/api/calculations/2025-03/export.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	rec = s.do(t, "GET", "/api/calculations/2025-03/chart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tuition by level, 2025-03")

	assert.Equal(t, http.StatusBadRequest, s.do(t, "GET", "/api/calculations/nope/export.csv", "").Code)
}

func TestErrorStatus(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, s.do(t, "GET", "/api/swimmers/nobody", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, "GET", "/api/health", "").Code)
}
