package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/primeswim/tuition/export"
	"github.com/primeswim/tuition/generic"
	"github.com/primeswim/tuition/report"
	"github.com/primeswim/tuition/tuition"
)

// maxBatchMonths bounds POST /api/calculations/batch.
const maxBatchMonths = 24

// calculation is one month's result plus where it came from.
type calculation struct {
	Result      *tuition.Result
	Fingerprint string
	Cached      bool
	RunID       string
}

// calculate snapshots the store, serves the result from cache when the
// snapshot is unchanged and otherwise runs the engine. With record set the
// result is persisted as a run.
func (h *Handler) calculate(ctx context.Context, raw string, record bool) (*calculation, error) {
	month, err := generic.ParseMonth(raw)
	if err != nil {
		return nil, err
	}

	in, err := h.Store.Snapshot(ctx, month.String())
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", month, err)
	}
	fp, err := tuition.Fingerprint(in)
	if err != nil {
		return nil, err
	}

	calc := &calculation{Fingerprint: fp}
	result, hit, err := h.Cache.Get(ctx, month.String(), fp)
	if err != nil {
		h.Logger.Warn("result cache unavailable", zap.String("month", month.String()), zap.Error(err))
	}
	if hit {
		calc.Result, calc.Cached = result, true
	} else {
		result, err = tuition.Calculate(in)
		if err != nil {
			return nil, err
		}
		calc.Result = result
		if err := h.Cache.Put(ctx, fp, result); err != nil {
			h.Logger.Warn("failed to cache result", zap.String("month", month.String()), zap.Error(err))
		}
		h.logWarnings(result)
	}

	if record {
		run := tuition.Run{
			ID:          uuid.NewString(),
			Month:       result.Month,
			Fingerprint: fp,
			CreatedAt:   h.now().UTC(),
			Result:      result,
		}
		if err := h.Store.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
		calc.RunID = run.ID
	}

	h.Logger.Info("calculation complete",
		zap.String("month", result.Month),
		zap.Int("rows", len(result.Rows)),
		zap.Int("needs_config", result.NeedsConfigCount()),
		zap.String("total", result.Total.StringFixed(generic.CurrencyPlaces)),
		zap.Bool("cached", calc.Cached),
	)
	return calc, nil
}

func (h *Handler) logWarnings(r *tuition.Result) {
	for _, w := range r.Warnings {
		h.Logger.Warn("calculation warning",
			zap.String("month", r.Month),
			zap.String("code", string(w.Code)),
			zap.String("participant", w.ParticipantID),
			zap.String("date", w.Date),
			zap.String("message", w.Message),
		)
	}
}

func (c *calculation) dto() ResultDTO {
	dto := toResultDTO(c.Result)
	dto.Fingerprint = c.Fingerprint
	dto.Cached = c.Cached
	dto.RunID = c.RunID
	return dto
}

// =============================================================================
// CALCULATION ENDPOINTS
// =============================================================================

// Calculate runs the month and records the run.
// POST /api/calculations/{month}
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	calc, err := h.calculate(r.Context(), chi.URLParam(r, "month"), true)
	if err != nil {
		h.fail(w, "Calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, calc.dto())
}

// CalculateBatch runs several months concurrently without recording runs.
// Results keep the order of the request.
// POST /api/calculations/batch
func (h *Handler) CalculateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, "Invalid request body", err)
		return
	}
	if len(req.Months) == 0 || len(req.Months) > maxBatchMonths {
		h.fail(w, "Invalid request body", &generic.InvalidInputError{
			Field:  "months",
			Value:  fmt.Sprint(len(req.Months)),
			Reason: fmt.Sprintf("must list 1 to %d months", maxBatchMonths),
		})
		return
	}
	for _, m := range req.Months {
		if _, err := generic.ParseMonth(m); err != nil {
			h.fail(w, "Invalid month", err)
			return
		}
	}

	results, err := tuition.CalculateMonths(r.Context(), h.Store, req.Months)
	if err != nil {
		h.fail(w, "Calculation failed", err)
		return
	}

	resp := BatchResponse{Results: make([]ResultDTO, len(results))}
	for i, res := range results {
		h.logWarnings(res)
		resp.Results[i] = toResultDTO(res)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ExportCSV downloads the month's rows as CSV.
// GET /api/calculations/{month}/export.csv
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "csv", "text/csv; charset=utf-8", export.WriteCSV)
}

// ExportXLSX downloads the month's rows as an Excel workbook.
// GET /api/calculations/{month}/export.xlsx
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.WriteXLSX)
}

// Chart renders the per-level summary as an HTML page.
// GET /api/calculations/{month}/chart
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	calc, err := h.calculate(r.Context(), chi.URLParam(r, "month"), false)
	if err != nil {
		h.fail(w, "Calculation failed", err)
		return
	}

	var buf bytes.Buffer
	if err := report.RenderLevelChart(&buf, calc.Result); err != nil {
		h.fail(w, "Failed to render chart", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// download renders into a buffer first so a failed render still gets a JSON
// error instead of a truncated file.
func (h *Handler) download(w http.ResponseWriter, r *http.Request, ext, contentType string, render func(io.Writer, *tuition.Result) error) {
	calc, err := h.calculate(r.Context(), chi.URLParam(r, "month"), false)
	if err != nil {
		h.fail(w, "Calculation failed", err)
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, calc.Result); err != nil {
		h.fail(w, "Export failed", err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+export.FileName(calc.Result.Month, ext))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// =============================================================================
// RUN ENDPOINTS
// =============================================================================

// ListRuns returns recorded runs, newest first.
// GET /api/runs?month=YYYY-MM
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month != "" {
		m, err := generic.ParseMonth(month)
		if err != nil {
			h.fail(w, "Invalid month", err)
			return
		}
		month = m.String()
	}

	runs, err := h.Store.ListRuns(r.Context(), month)
	if err != nil {
		h.fail(w, "Failed to list runs", err)
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}
