// Package tuition implements the monthly tuition and training-schedule
// calculation. Everything in this package is a pure function over a
// snapshot of configuration: no I/O, no clock, no shared state.
package tuition

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEVEL CONFIG - A named training group with its schedule and rate policy
// =============================================================================

// Slot is where and when a level meets on a given weekday.
type Slot struct {
	TimeSlot string `json:"time_slot"`
	Location string `json:"location"`
}

type LevelConfig struct {
	Name               string           `json:"name"`
	DefaultRatePerHour decimal.Decimal  `json:"default_rate_per_hour"`
	ReducedRatePerHour *decimal.Decimal `json:"reduced_rate_per_hour,omitempty"`
	DaysPerWeek        int              `json:"days_per_week"`
	MinDaysPerWeek     int              `json:"min_days_per_week"`
	DefaultTimeSlot    string           `json:"default_time_slot"`
	DefaultLocation    string           `json:"default_location"`

	// Schedule is keyed by weekday index (0=Sunday). Use SetScheduleEntry so
	// a repeated weekday overwrites the earlier entry.
	Schedule map[int]Slot `json:"schedule,omitempty"`
}

// SetScheduleEntry records the slot for a weekday. Last write wins.
func (l *LevelConfig) SetScheduleEntry(weekday int, slot Slot) {
	if l.Schedule == nil {
		l.Schedule = make(map[int]Slot)
	}
	l.Schedule[weekday] = slot
}

// ScheduleFor returns the level's entry for a weekday, if any.
func (l *LevelConfig) ScheduleFor(weekday int) (Slot, bool) {
	if l == nil || l.Schedule == nil {
		return Slot{}, false
	}
	s, ok := l.Schedule[weekday]
	return s, ok
}

// ScheduledWeekdays returns the weekdays with an explicit entry, ascending.
func (l *LevelConfig) ScheduledWeekdays() []int {
	days := make([]int, 0, len(l.Schedule))
	for d := range l.Schedule {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// Clone returns a deep copy, so stores can hand out snapshots.
func (l LevelConfig) Clone() LevelConfig {
	c := l
	if l.ReducedRatePerHour != nil {
		r := *l.ReducedRatePerHour
		c.ReducedRatePerHour = &r
	}
	if l.Schedule != nil {
		c.Schedule = make(map[int]Slot, len(l.Schedule))
		for d, s := range l.Schedule {
			c.Schedule[d] = s
		}
	}
	return c
}

// =============================================================================
// SWIMMER CONFIG - Per-participant assignment and overrides
// =============================================================================

type SwimmerConfig struct {
	// Level references a LevelConfig by name. Empty means unconfigured.
	Level            string `json:"level"`
	TrainingWeekdays []int  `json:"training_weekdays"`

	// Optional overrides. An empty string means "not set"; each one replaces
	// only its own field on every resolved weekday.
	TrainingTimeSlot string `json:"training_time_slot,omitempty"`
	TrainingLocation string `json:"training_location,omitempty"`

	// RatePerHourOverride wins over every level-derived rate, including when
	// it is zero.
	RatePerHourOverride *decimal.Decimal `json:"rate_per_hour_override,omitempty"`
}

// Participant is one enrolled swimmer as supplied to a calculation.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	SwimmerConfig
}

// Clone returns a deep copy.
func (p Participant) Clone() Participant {
	c := p
	c.TrainingWeekdays = append([]int(nil), p.TrainingWeekdays...)
	if p.RatePerHourOverride != nil {
		r := *p.RatePerHourOverride
		c.RatePerHourOverride = &r
	}
	return c
}

// =============================================================================
// MONTH EXCEPTION - Dates with no training for anyone
// =============================================================================

type MonthException struct {
	Month           string   `json:"month"`
	NoTrainingDates []string `json:"no_training_dates"`
}

func (e MonthException) Clone() MonthException {
	c := e
	c.NoTrainingDates = append([]string(nil), e.NoTrainingDates...)
	return c
}

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// Input is one consistent snapshot of everything a monthly calculation reads.
type Input struct {
	Month        string                 `json:"month"`
	Levels       map[string]LevelConfig `json:"levels"`
	Participants []Participant          `json:"participants"`
	Exception    MonthException         `json:"exception"`
}

// CalculationRow is the billing outcome for one participant in one month.
type CalculationRow struct {
	ParticipantID    string          `json:"participant_id"`
	ParticipantName  string          `json:"participant_name"`
	Level            string          `json:"level"`
	TrainingWeekdays []int           `json:"training_weekdays"`
	SessionCount     int             `json:"session_count"`
	RatePerHour      decimal.Decimal `json:"rate_per_hour"`
	Tuition          decimal.Decimal `json:"tuition"`
	ScheduleLines    []string        `json:"schedule_lines"`
	TimeSlot         string          `json:"time_slot"`
	Location         string          `json:"location"`
	NeedsConfig      bool            `json:"needs_config"`
}

// Result is the full output of one monthly calculation.
type Result struct {
	Month    string           `json:"month"`
	Rows     []CalculationRow `json:"rows"`
	Warnings []Warning        `json:"warnings"`

	// Totals across rows.
	Sessions int             `json:"sessions"`
	Total    decimal.Decimal `json:"total"`
}

// NeedsConfigCount returns the number of rows flagged for follow-up.
func (r *Result) NeedsConfigCount() int {
	n := 0
	for _, row := range r.Rows {
		if row.NeedsConfig {
			n++
		}
	}
	return n
}
