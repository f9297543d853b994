package factory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeswim/tuition/generic"
)

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
		{"weekday": 3, "time_slot": "7-8PM", "location": "Pool A"},
		{"weekday": 1, "time_slot": "8-9PM", "location": "Pool C"}
	]
}`

func TestParseLevel(t *testing.T) {
	f := New()

	level, err := f.ParseLevel(goldJSON)
	require.NoError(t, err)

	assert.Equal(t, "Gold", level.Name)
	assert.Equal(t, "40", level.DefaultRatePerHour.String())
	require.NotNil(t, level.ReducedRatePerHour)
	assert.Equal(t, "45", level.ReducedRatePerHour.String())
	assert.Equal(t, []int{1, 3}, level.ScheduledWeekdays())

	// repeated weekday: last entry wins
	monday, ok := level.ScheduleFor(1)
	require.True(t, ok)
	assert.Equal(t, "8-9PM", monday.TimeSlot)
	assert.Equal(t, "Pool C", monday.Location)
}

func TestLevelToJSON_RoundTrip(t *testing.T) {
	f := New()
	level, err := f.ParseLevel(goldJSON)
	require.NoError(t, err)

	lj := f.LevelToJSON(level)
	assert.Equal(t, 40.0, lj.DefaultRatePerHour)
	require.NotNil(t, lj.ReducedRatePerHour)
	assert.Equal(t, 45.0, *lj.ReducedRatePerHour)
	require.Len(t, lj.Schedule, 2)
	assert.Equal(t, 1, lj.Schedule[0].Weekday)
	assert.Equal(t, 3, lj.Schedule[1].Weekday)

	again, err := f.LevelFromJSON(lj)
	require.NoError(t, err)
	assert.Equal(t, level, again)
}

func TestParseLevel_NoReducedRate(t *testing.T) {
	level, err := New().ParseLevel(`{"name": "Bronze", "default_rate_per_hour": 25}`)
	require.NoError(t, err)
	assert.Nil(t, level.ReducedRatePerHour)
	assert.Empty(t, level.ScheduledWeekdays())
}

func TestParseLevel_Validation(t *testing.T) {
	f := New()

	tests := []struct {
		name  string
		json  string
		field string
	}{
		{"blank name", `{"name": " "}`, "name"},
		{"negative default rate", `{"name": "X", "default_rate_per_hour": -0.01}`, "default_rate_per_hour"},
		{"negative reduced rate", `{"name": "X", "reduced_rate_per_hour": -1}`, "reduced_rate_per_hour"},
		{"days above seven", `{"name": "X", "days_per_week": 8}`, "days_per_week"},
		{"min above days", `{"name": "X", "days_per_week": 2, "min_days_per_week": 3}`, "min_days_per_week"},
		{"schedule weekday out of range", `{"name": "X", "schedule": [{"weekday": -1}]}`, "schedule[0].weekday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseLevel(tt.json)
			require.Error(t, err)
			assert.ErrorIs(t, err, generic.ErrInvalidInput)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), err.Error())
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestParseLevel_MalformedJSON(t *testing.T) {
	_, err := New().ParseLevel(`{"name": `)
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
}

func TestParseLevels_DuplicateName(t *testing.T) {
	f := New()

	levels, err := f.ParseLevels(`[{"name": "Gold"}, {"name": "Silver"}]`)
	require.NoError(t, err)
	assert.Len(t, levels, 2)

	_, err = f.ParseLevels(`[{"name": "Gold"}, {"name": "Gold"}]`)
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
}

func TestParseParticipant(t *testing.T) {
	f := New()

	p, err := f.ParseParticipant(`{"id": "sw-001", "name": "Alex", "level": "Gold", "training_weekdays": [3, 1], "rate_per_hour_override": 0}`)
	require.NoError(t, err)

	assert.Equal(t, "sw-001", p.ID)
	assert.Equal(t, []int{3, 1}, p.TrainingWeekdays)
	require.NotNil(t, p.RatePerHourOverride, "a zero override is still set")
	assert.True(t, p.RatePerHourOverride.IsZero())

	pj := f.ParticipantToJSON(p)
	require.NotNil(t, pj.RatePerHourOverride)
	assert.Equal(t, 0.0, *pj.RatePerHourOverride)
}

func TestParseParticipant_Validation(t *testing.T) {
	f := New()

	tests := []struct {
		name  string
		json  string
		field string
	}{
		{"blank id", `{"id": ""}`, "id"},
		{"weekday out of range", `{"id": "a", "training_weekdays": [1, 7]}`, "training_weekdays[1]"},
		{"duplicate weekday", `{"id": "a", "training_weekdays": [1, 1]}`, "training_weekdays"},
		{"negative override", `{"id": "a", "rate_per_hour_override": -3}`, "rate_per_hour_override"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseParticipant(tt.json)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestParseParticipants_DuplicateID(t *testing.T) {
	f := New()

	ps, err := f.ParseParticipants(`[{"id": "a"}, {"id": "b"}]`)
	require.NoError(t, err)
	assert.Len(t, ps, 2)

	_, err = f.ParseParticipants(`[{"id": "a"}, {"id": "a"}]`)
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
}

func TestValidateWeekdays(t *testing.T) {
	f := New()
	assert.NoError(t, f.ValidateWeekdays("a", []int{0, 6}))
	assert.NoError(t, f.ValidateWeekdays("a", nil))
	assert.Error(t, f.ValidateWeekdays("a", []int{2, 2}))
	assert.Error(t, f.ValidateWeekdays("", []int{2}))
}

func TestParseMonthException(t *testing.T) {
	f := New()

	e, err := f.ParseMonthException(`{"month": "2025-04", "no_training_dates": ["2025-04-16", "2025-04-18", "2025-04-16"]}`)
	require.NoError(t, err)
	assert.Equal(t, "2025-04", e.Month)
	assert.Equal(t, []string{"2025-04-16", "2025-04-18"}, e.NoTrainingDates)

	e, err = f.ParseMonthException(`{"month": "2025-04"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{}, e.NoTrainingDates)
}

func TestParseMonthException_Errors(t *testing.T) {
	f := New()

	tests := []struct {
		name string
		json string
		want error
	}{
		{"missing month", `{"no_training_dates": []}`, generic.ErrInvalidInput},
		{"bad month", `{"month": "2025-13"}`, generic.ErrInvalidMonth},
		{"bad date", `{"month": "2025-04", "no_training_dates": ["2025-04-31"]}`, generic.ErrInvalidInput},
		{"not a date", `{"month": "2025-04", "no_training_dates": ["someday"]}`, generic.ErrInvalidInput},
		{"other month", `{"month": "2025-04", "no_training_dates": ["2025-05-01"]}`, generic.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseMonthException(tt.json)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"b": "second", "a": "first"}}
	assert.Equal(t, "validation failed: a: first; b: second", err.Error())
}
