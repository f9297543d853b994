/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's types from the external API contract. Money leaves the API
  as a string with exactly two decimals ("405.00").

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Levels and swimmers:
    factory.LevelJSON, factory.ParticipantJSON (shared with the factory)
    TrainingDaysRequest

  Exceptions:
    ExceptionRequest

  Calculations:
    ResultDTO, RowDTO, RunDTO, BatchRequest, BatchResponse

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: JSON schema types
*/
package api

import (
	"time"

	"github.com/primeswim/tuition/generic"
	"github.com/primeswim/tuition/tuition"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// TrainingDaysRequest replaces the weekdays of several swimmers at once.
type TrainingDaysRequest struct {
	Assignments map[string][]int `json:"assignments"`
}

// ExceptionRequest sets the no-training dates of the month in the path.
type ExceptionRequest struct {
	NoTrainingDates []string `json:"no_training_dates"`
}

// BatchRequest asks for several months at once.
type BatchRequest struct {
	Months []string `json:"months"`
}

// LoadScenarioRequest is the request to load a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// RowDTO is one participant's billing line.
type RowDTO struct {
	ParticipantID    string   `json:"participant_id"`
	ParticipantName  string   `json:"participant_name"`
	Level            string   `json:"level"`
	TrainingWeekdays []int    `json:"training_weekdays"`
	TrainingDays     []string `json:"training_days"`
	SessionCount     int      `json:"session_count"`
	RatePerHour      string   `json:"rate_per_hour"`
	Tuition          string   `json:"tuition"`
	ScheduleLines    []string `json:"schedule_lines"`
	TimeSlot         string   `json:"time_slot"`
	Location         string   `json:"location"`
	NeedsConfig      bool     `json:"needs_config"`
}

// ResultDTO is a month's calculation.
type ResultDTO struct {
	Month            string            `json:"month"`
	Rows             []RowDTO          `json:"rows"`
	Warnings         []tuition.Warning `json:"warnings"`
	Sessions         int               `json:"sessions"`
	Total            string            `json:"total"`
	NeedsConfigCount int               `json:"needs_config_count"`
	Fingerprint      string            `json:"fingerprint,omitempty"`
	RunID            string            `json:"run_id,omitempty"`
	Cached           bool              `json:"cached"`
}

// BatchResponse holds one result per requested month, in request order.
type BatchResponse struct {
	Results []ResultDTO `json:"results"`
}

// RunDTO summarizes a persisted calculation.
type RunDTO struct {
	ID               string `json:"id"`
	Month            string `json:"month"`
	Fingerprint      string `json:"fingerprint"`
	CreatedAt        string `json:"created_at"`
	Sessions         int    `json:"sessions"`
	Total            string `json:"total"`
	NeedsConfigCount int    `json:"needs_config_count"`
}

// TrainingDaysResponse reports a bulk weekday update.
type TrainingDaysResponse struct {
	Updated int `json:"updated"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Month       string `json:"month"`
}

// ScenarioLoadedResponse reports what a scenario seeded.
type ScenarioLoadedResponse struct {
	Scenario ScenarioDTO `json:"scenario"`
	Levels   int         `json:"levels"`
	Swimmers int         `json:"swimmers"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toRowDTO(row tuition.CalculationRow) RowDTO {
	days := make([]string, 0, len(row.TrainingWeekdays))
	for _, d := range row.TrainingWeekdays {
		days = append(days, generic.WeekdayName(d))
	}
	weekdays := row.TrainingWeekdays
	if weekdays == nil {
		weekdays = []int{}
	}
	lines := row.ScheduleLines
	if lines == nil {
		lines = []string{}
	}
	return RowDTO{
		ParticipantID:    row.ParticipantID,
		ParticipantName:  row.ParticipantName,
		Level:            row.Level,
		TrainingWeekdays: weekdays,
		TrainingDays:     days,
		SessionCount:     row.SessionCount,
		RatePerHour:      row.RatePerHour.StringFixed(generic.CurrencyPlaces),
		Tuition:          row.Tuition.StringFixed(generic.CurrencyPlaces),
		ScheduleLines:    lines,
		TimeSlot:         row.TimeSlot,
		Location:         row.Location,
		NeedsConfig:      row.NeedsConfig,
	}
}

func toResultDTO(r *tuition.Result) ResultDTO {
	rows := make([]RowDTO, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = toRowDTO(row)
	}
	warnings := r.Warnings
	if warnings == nil {
		warnings = []tuition.Warning{}
	}
	return ResultDTO{
		Month:            r.Month,
		Rows:             rows,
		Warnings:         warnings,
		Sessions:         r.Sessions,
		Total:            r.Total.StringFixed(generic.CurrencyPlaces),
		NeedsConfigCount: r.NeedsConfigCount(),
	}
}

func toRunDTO(run tuition.Run) RunDTO {
	dto := RunDTO{
		ID:          run.ID,
		Month:       run.Month,
		Fingerprint: run.Fingerprint,
		CreatedAt:   run.CreatedAt.Format(time.RFC3339),
	}
	if run.Result != nil {
		dto.Sessions = run.Result.Sessions
		dto.Total = run.Result.Total.StringFixed(generic.CurrencyPlaces)
		dto.NeedsConfigCount = run.Result.NeedsConfigCount()
	}
	return dto
}
