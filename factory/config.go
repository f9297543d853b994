/*
Package factory converts JSON configuration into tuition engine types.

PURPOSE:
  Levels, swimmers and month exceptions are edited by administrators and
  stored as JSON. The factory validates them once, at load time, so the
  engine can trust its snapshot.

JSON SCHEMA (level):
  {
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
  }

JSON SCHEMA (swimmer):
  {
    "id": "sw-001",
    "name": "Alex",
    "level": "Gold",
    "training_weekdays": [1, 3],
    "training_time_slot": "",
    "training_location": "",
    "rate_per_hour_override": null
  }

VALIDATION:
  - rates are >= 0
  - min_days_per_week <= days_per_week
  - weekdays are in 0..6; swimmer weekdays are unique
  - a repeated schedule weekday is not an error: the last entry wins

SEE ALSO:
  - validate.go: validator/v10 setup and custom tags
  - tuition/types.go: Target types
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/primeswim/tuition/generic"
	"github.com/primeswim/tuition/tuition"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// LevelJSON is the JSON representation of a level.
type LevelJSON struct {
	Name               string              `json:"name" validate:"notblank"`
	DefaultRatePerHour float64             `json:"default_rate_per_hour" validate:"gte=0"`
	ReducedRatePerHour *float64            `json:"reduced_rate_per_hour,omitempty" validate:"omitempty,gte=0"`
	DaysPerWeek        int                 `json:"days_per_week" validate:"gte=0,lte=7"`
	MinDaysPerWeek     int                 `json:"min_days_per_week" validate:"gte=0,lte=7"`
	DefaultTimeSlot    string              `json:"default_time_slot"`
	DefaultLocation    string              `json:"default_location"`
	Schedule           []ScheduleEntryJSON `json:"schedule,omitempty" validate:"dive"`
}

// ScheduleEntryJSON is one weekday of a level's meeting pattern.
type ScheduleEntryJSON struct {
	Weekday  int    `json:"weekday" validate:"gte=0,lte=6"`
	TimeSlot string `json:"time_slot"`
	Location string `json:"location"`
}

// ParticipantJSON is the JSON representation of an enrolled swimmer.
type ParticipantJSON struct {
	ID                  string   `json:"id" validate:"notblank"`
	Name                string   `json:"name"`
	Level               string   `json:"level"`
	TrainingWeekdays    []int    `json:"training_weekdays" validate:"dive,gte=0,lte=6"`
	TrainingTimeSlot    string   `json:"training_time_slot,omitempty"`
	TrainingLocation    string   `json:"training_location,omitempty"`
	RatePerHourOverride *float64 `json:"rate_per_hour_override,omitempty" validate:"omitempty,gte=0"`
}

// MonthExceptionJSON lists the no-training dates of one month.
type MonthExceptionJSON struct {
	Month           string   `json:"month" validate:"required"`
	NoTrainingDates []string `json:"no_training_dates" validate:"dive,datetime=2006-01-02"`
}

// =============================================================================
// FACTORY
// =============================================================================

// Factory converts JSON configuration to engine types.
type Factory struct{}

// New creates a new factory.
func New() *Factory {
	return &Factory{}
}

// ParseLevel parses a JSON string into a LevelConfig.
func (f *Factory) ParseLevel(jsonStr string) (tuition.LevelConfig, error) {
	var lj LevelJSON
	if err := json.Unmarshal([]byte(jsonStr), &lj); err != nil {
		return tuition.LevelConfig{}, fmt.Errorf("%w: failed to parse level JSON: %v", generic.ErrInvalidInput, err)
	}
	return f.LevelFromJSON(lj)
}

// ParseLevels parses a JSON array of levels keyed by name. A level name may
// appear only once.
func (f *Factory) ParseLevels(jsonStr string) (map[string]tuition.LevelConfig, error) {
	var list []LevelJSON
	if err := json.Unmarshal([]byte(jsonStr), &list); err != nil {
		return nil, fmt.Errorf("%w: failed to parse levels JSON: %v", generic.ErrInvalidInput, err)
	}
	levels := make(map[string]tuition.LevelConfig, len(list))
	for _, lj := range list {
		l, err := f.LevelFromJSON(lj)
		if err != nil {
			return nil, err
		}
		if _, dup := levels[l.Name]; dup {
			return nil, &generic.InvalidInputError{Field: "levels.name", Value: l.Name, Reason: "duplicate level"}
		}
		levels[l.Name] = l
	}
	return levels, nil
}

// LevelFromJSON validates and converts a LevelJSON.
func (f *Factory) LevelFromJSON(lj LevelJSON) (tuition.LevelConfig, error) {
	if err := validateStruct(lj); err != nil {
		return tuition.LevelConfig{}, err
	}

	level := tuition.LevelConfig{
		Name:               lj.Name,
		DefaultRatePerHour: decimal.NewFromFloat(lj.DefaultRatePerHour),
		DaysPerWeek:        lj.DaysPerWeek,
		MinDaysPerWeek:     lj.MinDaysPerWeek,
		DefaultTimeSlot:    lj.DefaultTimeSlot,
		DefaultLocation:    lj.DefaultLocation,
		Schedule:           map[int]tuition.Slot{},
	}
	if lj.ReducedRatePerHour != nil {
		level.ReducedRatePerHour = generic.DecimalPtr(decimal.NewFromFloat(*lj.ReducedRatePerHour))
	}
	for _, e := range lj.Schedule {
		level.SetScheduleEntry(e.Weekday, tuition.Slot{TimeSlot: e.TimeSlot, Location: e.Location})
	}
	return level, nil
}

// LevelToJSON converts a LevelConfig to LevelJSON, schedule ascending by weekday.
func (f *Factory) LevelToJSON(l tuition.LevelConfig) LevelJSON {
	rate, _ := l.DefaultRatePerHour.Float64()
	lj := LevelJSON{
		Name:               l.Name,
		DefaultRatePerHour: rate,
		DaysPerWeek:        l.DaysPerWeek,
		MinDaysPerWeek:     l.MinDaysPerWeek,
		DefaultTimeSlot:    l.DefaultTimeSlot,
		DefaultLocation:    l.DefaultLocation,
	}
	if l.ReducedRatePerHour != nil {
		v, _ := l.ReducedRatePerHour.Float64()
		lj.ReducedRatePerHour = &v
	}
	for _, d := range l.ScheduledWeekdays() {
		s := l.Schedule[d]
		lj.Schedule = append(lj.Schedule, ScheduleEntryJSON{Weekday: d, TimeSlot: s.TimeSlot, Location: s.Location})
	}
	return lj
}

// ParseParticipant parses a JSON string into a Participant.
func (f *Factory) ParseParticipant(jsonStr string) (tuition.Participant, error) {
	var pj ParticipantJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return tuition.Participant{}, fmt.Errorf("%w: failed to parse swimmer JSON: %v", generic.ErrInvalidInput, err)
	}
	return f.ParticipantFromJSON(pj)
}

// ParseParticipants parses a JSON array of swimmers. IDs must be unique.
func (f *Factory) ParseParticipants(jsonStr string) ([]tuition.Participant, error) {
	var list []ParticipantJSON
	if err := json.Unmarshal([]byte(jsonStr), &list); err != nil {
		return nil, fmt.Errorf("%w: failed to parse swimmers JSON: %v", generic.ErrInvalidInput, err)
	}
	out := make([]tuition.Participant, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, pj := range list {
		p, err := f.ParticipantFromJSON(pj)
		if err != nil {
			return nil, err
		}
		if seen[p.ID] {
			return nil, &generic.InvalidInputError{Field: "swimmers.id", Value: p.ID, Reason: "duplicate swimmer"}
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out, nil
}

// ParticipantFromJSON validates and converts a ParticipantJSON.
func (f *Factory) ParticipantFromJSON(pj ParticipantJSON) (tuition.Participant, error) {
	if err := validateStruct(pj); err != nil {
		return tuition.Participant{}, err
	}
	p := tuition.Participant{
		ID:   pj.ID,
		Name: pj.Name,
		SwimmerConfig: tuition.SwimmerConfig{
			Level:            pj.Level,
			TrainingWeekdays: append([]int{}, pj.TrainingWeekdays...),
			TrainingTimeSlot: pj.TrainingTimeSlot,
			TrainingLocation: pj.TrainingLocation,
		},
	}
	if pj.RatePerHourOverride != nil {
		p.RatePerHourOverride = generic.DecimalPtr(decimal.NewFromFloat(*pj.RatePerHourOverride))
	}
	return p, nil
}

// ParticipantToJSON converts a Participant to ParticipantJSON.
func (f *Factory) ParticipantToJSON(p tuition.Participant) ParticipantJSON {
	pj := ParticipantJSON{
		ID:               p.ID,
		Name:             p.Name,
		Level:            p.Level,
		TrainingWeekdays: append([]int{}, p.TrainingWeekdays...),
		TrainingTimeSlot: p.TrainingTimeSlot,
		TrainingLocation: p.TrainingLocation,
	}
	if p.RatePerHourOverride != nil {
		v, _ := p.RatePerHourOverride.Float64()
		pj.RatePerHourOverride = &v
	}
	return pj
}

// ValidateWeekdays checks a bulk weekday assignment the way a swimmer's
// training_weekdays field is checked.
func (f *Factory) ValidateWeekdays(id string, weekdays []int) error {
	_, err := f.ParticipantFromJSON(ParticipantJSON{ID: id, TrainingWeekdays: weekdays})
	return err
}

// ParseMonthException parses a JSON string into a MonthException.
func (f *Factory) ParseMonthException(jsonStr string) (tuition.MonthException, error) {
	var ej MonthExceptionJSON
	if err := json.Unmarshal([]byte(jsonStr), &ej); err != nil {
		return tuition.MonthException{}, fmt.Errorf("%w: failed to parse exception JSON: %v", generic.ErrInvalidInput, err)
	}
	return f.MonthExceptionFromJSON(ej)
}

// MonthExceptionFromJSON validates the month and every date. Dates must fall
// inside the month; repeats are collapsed.
func (f *Factory) MonthExceptionFromJSON(ej MonthExceptionJSON) (tuition.MonthException, error) {
	if err := validateStruct(ej); err != nil {
		return tuition.MonthException{}, err
	}
	month, err := generic.ParseMonth(ej.Month)
	if err != nil {
		return tuition.MonthException{}, err
	}

	me := tuition.MonthException{Month: month.String(), NoTrainingDates: []string{}}
	seen := make(map[string]bool, len(ej.NoTrainingDates))
	for _, s := range ej.NoTrainingDates {
		d, err := generic.ParseDate(s)
		if err != nil {
			return tuition.MonthException{}, &generic.InvalidInputError{Field: "no_training_dates", Value: s, Reason: "not a calendar date"}
		}
		if !month.Contains(d) {
			return tuition.MonthException{}, &generic.InvalidInputError{Field: "no_training_dates", Value: s, Reason: "outside " + month.String()}
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		me.NoTrainingDates = append(me.NoTrainingDates, s)
	}
	return me, nil
}
