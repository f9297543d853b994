/*
handlers.go - HTTP API handlers for the tuition engine

PURPOSE:
  Exposes level, swimmer and exception editing plus monthly calculations
  over REST. Handles HTTP request/response and JSON serialization, and
  delegates to the factory, the store and the engine.

ENDPOINTS:
  Levels:
    GET    /api/levels                     List levels
    POST   /api/levels                     Create or replace a level
    GET    /api/levels/{name}              Get one level
    DELETE /api/levels/{name}              Delete a level

  Swimmers:
    GET    /api/swimmers                   List swimmers
    POST   /api/swimmers                   Create or replace a swimmer
    PUT    /api/swimmers/training-days     Bulk weekday editor
    GET    /api/swimmers/{id}              Get one swimmer
    DELETE /api/swimmers/{id}              Delete a swimmer

  Exceptions:
    GET    /api/exceptions/{month}         No-training dates of a month
    PUT    /api/exceptions/{month}         Replace them

  Calculations (calculations.go):
    POST   /api/calculations/{month}       Calculate and record a run
    POST   /api/calculations/batch         Several months at once
    GET    /api/calculations/{month}/export.csv
    GET    /api/calculations/{month}/export.xlsx
    GET    /api/calculations/{month}/chart
    GET    /api/runs?month=YYYY-MM         Recorded runs, newest first

  Scenarios (scenarios.go):
    GET    /api/scenarios                  List demo scenarios
    POST   /api/scenarios/load             Load a demo scenario
    POST   /api/scenarios/reset            Clear the database

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, malformed month, invalid input
  - 404: Resource not found
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - calculations.go: Calculation endpoints
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/primeswim/tuition/cache"
	"github.com/primeswim/tuition/factory"
	"github.com/primeswim/tuition/generic"
	"github.com/primeswim/tuition/tuition"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   tuition.Store
	Factory *factory.Factory
	Cache   *cache.ResultCache
	Logger  *zap.Logger

	now func() time.Time
}

// NewHandler creates a handler. A nil cache disables result caching and a
// nil logger discards logs.
func NewHandler(store tuition.Store, resultCache *cache.ResultCache, logger *zap.Logger) *Handler {
	if resultCache == nil {
		resultCache = cache.NewResultCache(nil, 0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:   store,
		Factory: factory.New(),
		Cache:   resultCache,
		Logger:  logger,
		now:     time.Now,
	}
}

// =============================================================================
// LEVEL ENDPOINTS
// =============================================================================

// ListLevels returns all levels.
// GET /api/levels
func (h *Handler) ListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.Store.ListLevels(r.Context())
	if err != nil {
		h.fail(w, "Failed to list levels", err)
		return
	}

	dtos := make([]factory.LevelJSON, len(levels))
	for i, l := range levels {
		dtos[i] = h.Factory.LevelToJSON(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLevel creates or replaces a level.
// POST /api/levels
func (h *Handler) CreateLevel(w http.ResponseWriter, r *http.Request) {
	var req factory.LevelJSON
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, "Invalid request body", err)
		return
	}

	level, err := h.Factory.LevelFromJSON(req)
	if err != nil {
		h.fail(w, "Invalid level", err)
		return
	}
	if err := h.Store.SaveLevel(r.Context(), level); err != nil {
		h.fail(w, "Failed to save level", err)
		return
	}

	h.Logger.Info("level saved", zap.String("level", level.Name))
	writeJSON(w, http.StatusCreated, h.Factory.LevelToJSON(level))
}

// GetLevel returns a single level.
// GET /api/levels/{name}
func (h *Handler) GetLevel(w http.ResponseWriter, r *http.Request) {
	level, err := h.Store.GetLevel(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, "Level not found", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.LevelToJSON(*level))
}

// DeleteLevel removes a level. Swimmers assigned to it show up as needing
// configuration in later calculations.
// DELETE /api/levels/{name}
func (h *Handler) DeleteLevel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.Store.DeleteLevel(r.Context(), name); err != nil {
		h.fail(w, "Failed to delete level", err)
		return
	}
	h.Logger.Info("level deleted", zap.String("level", name))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SWIMMER ENDPOINTS
// =============================================================================

// ListSwimmers returns all swimmers ordered by name.
// GET /api/swimmers
func (h *Handler) ListSwimmers(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Store.ListParticipants(r.Context())
	if err != nil {
		h.fail(w, "Failed to list swimmers", err)
		return
	}

	dtos := make([]factory.ParticipantJSON, len(ps))
	for i, p := range ps {
		dtos[i] = h.Factory.ParticipantToJSON(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSwimmer creates or replaces a swimmer. A level that doesn't exist yet
// is accepted; the swimmer is flagged at calculation time.
// POST /api/swimmers
func (h *Handler) CreateSwimmer(w http.ResponseWriter, r *http.Request) {
	var req factory.ParticipantJSON
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, "Invalid request body", err)
		return
	}

	p, err := h.Factory.ParticipantFromJSON(req)
	if err != nil {
		h.fail(w, "Invalid swimmer", err)
		return
	}
	if err := h.Store.SaveParticipant(r.Context(), p); err != nil {
		h.fail(w, "Failed to save swimmer", err)
		return
	}

	writeJSON(w, http.StatusCreated, h.Factory.ParticipantToJSON(p))
}

// GetSwimmer returns a single swimmer.
// GET /api/swimmers/{id}
func (h *Handler) GetSwimmer(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetParticipant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "Swimmer not found", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.ParticipantToJSON(*p))
}

// DeleteSwimmer removes a swimmer.
// DELETE /api/swimmers/{id}
func (h *Handler) DeleteSwimmer(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteParticipant(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "Failed to delete swimmer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetTrainingDays replaces the weekdays of several swimmers in one call.
// Every assignment is validated first; the store applies all or none.
// PUT /api/swimmers/training-days
func (h *Handler) SetTrainingDays(w http.ResponseWriter, r *http.Request) {
	var req TrainingDaysRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, "Invalid request body", err)
		return
	}
	if len(req.Assignments) == 0 {
		h.fail(w, "Invalid request body", &generic.InvalidInputError{Field: "assignments", Reason: "must not be empty"})
		return
	}
	for id, days := range req.Assignments {
		if err := h.Factory.ValidateWeekdays(id, days); err != nil {
			h.fail(w, fmt.Sprintf("Invalid weekdays for %q", id), err)
			return
		}
	}

	if err := h.Store.SetTrainingWeekdays(r.Context(), req.Assignments); err != nil {
		h.fail(w, "Failed to update training days", err)
		return
	}

	h.Logger.Info("training days updated", zap.Int("swimmers", len(req.Assignments)))
	writeJSON(w, http.StatusOK, TrainingDaysResponse{Updated: len(req.Assignments)})
}

// =============================================================================
// EXCEPTION ENDPOINTS
// =============================================================================

// GetException returns the no-training dates of a month.
// GET /api/exceptions/{month}
func (h *Handler) GetException(w http.ResponseWriter, r *http.Request) {
	month, err := generic.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		h.fail(w, "Invalid month", err)
		return
	}

	e, err := h.Store.GetMonthException(r.Context(), month.String())
	if err != nil {
		h.fail(w, "Failed to load exception", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// PutException replaces the no-training dates of a month.
// PUT /api/exceptions/{month}
func (h *Handler) PutException(w http.ResponseWriter, r *http.Request) {
	var req ExceptionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, "Invalid request body", err)
		return
	}

	dates := req.NoTrainingDates
	if dates == nil {
		dates = []string{}
	}
	e, err := h.Factory.MonthExceptionFromJSON(factory.MonthExceptionJSON{
		Month:           chi.URLParam(r, "month"),
		NoTrainingDates: dates,
	})
	if err != nil {
		h.fail(w, "Invalid exception", err)
		return
	}
	if err := h.Store.SaveMonthException(r.Context(), e); err != nil {
		h.fail(w, "Failed to save exception", err)
		return
	}

	h.Logger.Info("exception saved", zap.String("month", e.Month), zap.Int("dates", len(e.NoTrainingDates)))
	writeJSON(w, http.StatusOK, e)
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", generic.ErrInvalidInput, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// errorStatus maps an error to its HTTP status.
func errorStatus(err error) int {
	switch {
	case generic.IsClientError(err):
		return http.StatusBadRequest
	case generic.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error with its mapped status. Server errors are logged.
func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error(message, zap.Error(err))
	}
	writeError(w, status, message, err)
}
