/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built rosters that populate the database with realistic
	levels, swimmers and exceptions. Each scenario demonstrates one part of
	the calculation.

AVAILABLE SCENARIOS:

	gold-march:   One level, one swimmer, one cancelled Monday
	mixed-roster: Several levels, overrides and unconfigured swimmers

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Parse levels and swimmers from JSON via the factory
 3. Save them and the month's exception

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "mixed-roster"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - factory/config.go: JSON schema
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/primeswim/tuition/generic"
	"github.com/primeswim/tuition/tuition"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	levels     string
	swimmers   string
	exceptions []string
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "gold-march",
			Name:        "Gold, March 2025",
			Description: "Alex trains Monday and Wednesday at the reduced rate; March 10 is cancelled",
			Month:       "2025-03",
		},
		levels: `[{
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
		}]`,
		swimmers: `[
			{"id": "sw-001", "name": "Alex", "level": "Gold", "training_weekdays": [1, 3]}
		]`,
		exceptions: []string{"2025-03-10"},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "mixed-roster",
			Name:        "Mixed Roster",
			Description: "Three levels, a scholarship override, a custom lane and two swimmers needing setup",
			Month:       "2025-04",
		},
		levels: `[
			{
				"name": "Bronze",
				"default_rate_per_hour": 25,
				"days_per_week": 2,
				"min_days_per_week": 0,
				"default_time_slot": "4-5PM",
				"default_location": "Teaching Pool"
			},
			{
				"name": "Silver",
				"default_rate_per_hour": 32.5,
				"reduced_rate_per_hour": 35,
				"days_per_week": 3,
				"min_days_per_week": 2,
				"default_time_slot": "5-6PM",
				"default_location": "Main Pool",
				"schedule": [
					{"weekday": 2, "time_slot": "6-7AM", "location": "Pool B"},
					{"weekday": 4, "time_slot": "5-6PM", "location": "Pool B"}
				]
			},
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
					{"weekday": 3, "time_slot": "7-8PM", "location": "Pool A"},
					{"weekday": 5, "time_slot": "7-8PM", "location": "Pool A"}
				]
			}
		]`,
		swimmers: `[
			{"id": "sw-101", "name": "Avery", "level": "Bronze", "training_weekdays": [2, 4]},
			{"id": "sw-102", "name": "Blake", "level": "Silver", "training_weekdays": [2, 4, 6]},
			{"id": "sw-103", "name": "Casey", "level": "Silver", "training_weekdays": [4], "training_location": "Lane 8"},
			{"id": "sw-104", "name": "Devon", "level": "Gold", "training_weekdays": [1, 3, 5]},
			{"id": "sw-105", "name": "Emery", "level": "Gold", "training_weekdays": [1, 3], "rate_per_hour_override": 20},
			{"id": "sw-106", "name": "Frankie", "level": "", "training_weekdays": [1]},
			{"id": "sw-107", "name": "Gray", "level": "Gold", "training_weekdays": []}
		]`,
		exceptions: []string{"2025-04-18"},
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// =============================================================================
// SCENARIO ENDPOINTS
// =============================================================================

// ListScenarios returns the available demo scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadScenario resets the database and loads a scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, "Invalid request body", err)
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		h.fail(w, "Unknown scenario", fmt.Errorf("scenario %q: %w", req.ScenarioID, generic.ErrNotFound))
		return
	}

	resp, err := h.loadScenario(r.Context(), s)
	if err != nil {
		h.fail(w, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ResetDatabase clears all data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(w, "Failed to reset database", err)
		return
	}
	h.Logger.Info("database reset")
	w.WriteHeader(http.StatusNoContent)
}

// SeedScenario loads a scenario by ID without going through HTTP.
func (h *Handler) SeedScenario(ctx context.Context, id string) error {
	s, ok := findScenario(id)
	if !ok {
		return fmt.Errorf("scenario %q: %w", id, generic.ErrNotFound)
	}
	_, err := h.loadScenario(ctx, s)
	return err
}

func (h *Handler) loadScenario(ctx context.Context, s scenario) (*ScenarioLoadedResponse, error) {
	levels, err := h.Factory.ParseLevels(s.levels)
	if err != nil {
		return nil, fmt.Errorf("scenario %s levels: %w", s.ID, err)
	}
	swimmers, err := h.Factory.ParseParticipants(s.swimmers)
	if err != nil {
		return nil, fmt.Errorf("scenario %s swimmers: %w", s.ID, err)
	}

	if err := h.Store.Reset(ctx); err != nil {
		return nil, err
	}
	for _, l := range levels {
		if err := h.Store.SaveLevel(ctx, l); err != nil {
			return nil, err
		}
	}
	for _, p := range swimmers {
		if err := h.Store.SaveParticipant(ctx, p); err != nil {
			return nil, err
		}
	}
	if err := h.Store.SaveMonthException(ctx, tuition.MonthException{Month: s.Month, NoTrainingDates: s.exceptions}); err != nil {
		return nil, err
	}

	h.Logger.Info("scenario loaded",
		zap.String("scenario", s.ID),
		zap.Int("levels", len(levels)),
		zap.Int("swimmers", len(swimmers)),
	)
	return &ScenarioLoadedResponse{Scenario: s.ScenarioDTO, Levels: len(levels), Swimmers: len(swimmers)}, nil
}
