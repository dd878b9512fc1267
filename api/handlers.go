/*
handlers.go - HTTP API handlers for the adjustment ledger

PURPOSE:
  Exposes the ledger to the two consumers the system has: the editing
  surface (save batches, reverse, audit history) and the payroll
  calculator (reads and totals). Handles HTTP parsing and JSON
  serialization, delegates everything else to the ledger.

ENDPOINTS:
  Adjustments:
    GET  /api/drivers/{driverID}/weeks/{week}/adjustments          Effective records
    GET  /api/drivers/{driverID}/weeks/{week}/adjustments/history  All records, Reversed included
    PUT  /api/drivers/{driverID}/weeks/{week}/adjustments          Batch replace
    POST /api/adjustments/{id}/reverse                             Reverse one record

  Aggregates:
    GET  /api/drivers/{driverID}/weeks/{week}/totals[?load=L123]   Per-week totals
    GET  /api/drivers/{driverID}/summary?start=&end=               Employee summary

  Audit:
    GET  /api/audit[?employee_id=&start=&end=]                     Audit trail, newest first

ERROR HANDLING:
  - 400: malformed path/query/body, batch validation failures
  - 404: reversal target not found or already reversed
  - 500: persistence failures (the batch was NOT durably saved)

SECURITY NOTE:
  No authentication. The tool runs on a trusted single-operator host.

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/payroll-ledger/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *ledger.Store
	Logger *zap.Logger
}

// NewHandler creates a Handler backed by the given store.
func NewHandler(store *ledger.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Store: store, Logger: logger}
}

// =============================================================================
// ADJUSTMENT ENDPOINTS
// =============================================================================

// GetAdjustments returns the effective (Active/Approved) records for one
// driver-week.
func (h *Handler) GetAdjustments(w http.ResponseWriter, r *http.Request) {
	driverID, week, ok := h.driverWeekParams(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, fromAdjustments(h.Store.AdjustmentsForDriverWeek(driverID, week)))
}

// GetAdjustmentHistory returns every record for one driver-week, Reversed
// rows included.
func (h *Handler) GetAdjustmentHistory(w http.ResponseWriter, r *http.Request) {
	driverID, week, ok := h.driverWeekParams(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, fromAdjustments(h.Store.AdjustmentHistoryForDriverWeek(driverID, week)))
}

// SaveAdjustments replaces the full record list for one driver-week.
// All-or-nothing: one invalid record rejects the whole batch with 400.
func (h *Handler) SaveAdjustments(w http.ResponseWriter, r *http.Request) {
	driverID, week, ok := h.driverWeekParams(w, r)
	if !ok {
		return
	}

	var req SaveAdjustmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	batch := make([]ledger.Adjustment, len(req.Adjustments))
	for i, dto := range req.Adjustments {
		a, err := toAdjustment(dto)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Adjustment %d is malformed", i+1), err)
			return
		}
		batch[i] = a
	}

	if err := h.Store.SaveAdjustmentsForDriverWeek(driverID, week, batch); err != nil {
		if errors.Is(err, ledger.ErrPersistFailed) {
			h.Logger.Error("save batch not persisted",
				zap.Int64("driver_id", driverID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Adjustments were not durably saved", err)
			return
		}
		writeError(w, http.StatusBadRequest, "Adjustment batch rejected", err)
		return
	}

	writeJSON(w, http.StatusOK, fromAdjustments(h.Store.AdjustmentsForDriverWeek(driverID, week)))
}

// ReverseAdjustment soft-deletes one record by id. The record is never
// removed: it is rewritten as Reversed and a Reversed duplicate explaining
// why is appended alongside it.
func (h *Handler) ReverseAdjustment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid adjustment id", err)
		return
	}

	var req ReverseAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PerformedBy == "" {
		req.PerformedBy = "System"
	}
	if req.Reason == "" {
		req.Reason = "No reason provided"
	}

	if err := h.Store.RemoveAdjustmentByID(id, req.PerformedBy, req.Reason); err != nil {
		if errors.Is(err, ledger.ErrAdjustmentNotFound) {
			writeError(w, http.StatusNotFound, "Adjustment not found or already reversed", err)
			return
		}
		h.Logger.Error("reversal not persisted", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Reversal was not durably saved", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "reversed", "id": id})
}

// =============================================================================
// AGGREGATE ENDPOINTS
// =============================================================================

// GetWeekTotals returns deduction/fuel/reimbursement totals for one
// driver-week, plus the bonus for a specific load when ?load= is given.
func (h *Handler) GetWeekTotals(w http.ResponseWriter, r *http.Request) {
	driverID, week, ok := h.driverWeekParams(w, r)
	if !ok {
		return
	}

	totals := WeekTotalsDTO{
		DriverID:            driverID,
		WeekStart:           ledger.DateOf(week).Format(dateLayout),
		TotalDeductions:     h.Store.TotalDeductionsForDriverWeek(driverID, week).String(),
		FuelDeductions:      h.Store.FuelDeductionsForDriverWeek(driverID, week).String(),
		TotalReimbursements: h.Store.TotalReimbursementsForDriverWeek(driverID, week).String(),
	}
	if load := r.URL.Query().Get("load"); load != "" {
		bonus := h.Store.BonusForLoad(driverID, week, load).String()
		totals.LoadBonus = &bonus
	}
	writeJSON(w, http.StatusOK, totals)
}

// GetEmployeeSummary returns one driver's totals over a week-start range.
func (h *Handler) GetEmployeeSummary(w http.ResponseWriter, r *http.Request) {
	driverID, err := strconv.ParseInt(chi.URLParam(r, "driverID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid driver id", err)
		return
	}
	start, err := time.Parse(dateLayout, r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing start date", err)
		return
	}
	end, err := time.Parse(dateLayout, r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing end date", err)
		return
	}

	writeJSON(w, http.StatusOK, fromSummary(h.Store.EmployeeSummary(driverID, start, end)))
}

// =============================================================================
// AUDIT ENDPOINT
// =============================================================================

// GetAuditTrail returns audit entries newest first. All filters optional.
func (h *Handler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	var filter ledger.AuditFilter

	if raw := r.URL.Query().Get("employee_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid employee_id", err)
			return
		}
		filter.EmployeeID = &id
	}
	if raw := r.URL.Query().Get("start"); raw != "" {
		start, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start date", err)
			return
		}
		filter.Start = &start
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		end, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end date", err)
			return
		}
		filter.End = &end
	}

	writeJSON(w, http.StatusOK, fromAuditEntries(h.Store.AuditTrail(filter)))
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) driverWeekParams(w http.ResponseWriter, r *http.Request) (int64, time.Time, bool) {
	driverID, err := strconv.ParseInt(chi.URLParam(r, "driverID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid driver id", err)
		return 0, time.Time{}, false
	}
	week, err := time.Parse(dateLayout, chi.URLParam(r, "week"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week date (want YYYY-MM-DD)", err)
		return 0, time.Time{}, false
	}
	return driverID, week, true
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
