/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the ledger's domain
  types from the wire contract. Money crosses the wire as a fixed-point
  decimal string ("120.50"), never a float; dates as "2006-01-02"; full
  timestamps as RFC3339 with nanoseconds, so an unchanged record survives a
  GET -> PUT round trip without looking modified.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

VALIDATION:
  DTOs are pure data carriers. Parse errors (malformed amount/date) are
  caught during conversion here; business validation (amount range,
  category, blank type) belongs to the ledger and is reported per batch.

SEE ALSO:
  - handlers.go: uses these types
  - ledger/types.go: the domain record these map onto
*/
package api

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-ledger/ledger"
)

const dateLayout = "2006-01-02"

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// AdjustmentDTO represents one adjustment record on the wire.
type AdjustmentDTO struct {
	ID              int64  `json:"id"`
	DriverID        int64  `json:"driver_id"`
	Category        string `json:"category"`
	Type            string `json:"type"`
	Amount          string `json:"amount"`
	Description     string `json:"description"`
	WeekStart       string `json:"week_start"`
	LoadNumber      string `json:"load_number,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
	CreatedBy       string `json:"created_by"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	Status          string `json:"status"`
}

// SaveAdjustmentsRequest is the batch-replace body for one driver-week.
// New records carry id 0; the response echoes the allocated ids.
type SaveAdjustmentsRequest struct {
	Adjustments []AdjustmentDTO `json:"adjustments"`
}

// ReverseAdjustmentRequest asks for a reversal of one record by id.
type ReverseAdjustmentRequest struct {
	PerformedBy string `json:"performed_by"`
	Reason      string `json:"reason"`
}

// WeekTotalsDTO bundles the per-week aggregates. LoadBonus is present only
// when the request named a load.
type WeekTotalsDTO struct {
	DriverID            int64   `json:"driver_id"`
	WeekStart           string  `json:"week_start"`
	TotalDeductions     string  `json:"total_deductions"`
	FuelDeductions      string  `json:"fuel_deductions"`
	TotalReimbursements string  `json:"total_reimbursements"`
	LoadBonus           *string `json:"load_bonus,omitempty"`
}

// SummaryDTO is the employee summary over a week-start range.
type SummaryDTO struct {
	DriverID            int64  `json:"driver_id"`
	PeriodStart         string `json:"period_start"`
	PeriodEnd           string `json:"period_end"`
	TotalDeductions     string `json:"total_deductions"`
	TotalReimbursements string `json:"total_reimbursements"`
	TotalBonuses        string `json:"total_bonuses"`
	FuelDeductions      string `json:"fuel_deductions"`
	AdjustmentCount     int    `json:"adjustment_count"`
	NetAdjustment       string `json:"net_adjustment"`
}

// AuditEntryDTO represents one audit-trail entry.
type AuditEntryDTO struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Action      string `json:"action"`
	EmployeeID  int64  `json:"employee_id"`
	Details     string `json:"details"`
	PerformedBy string `json:"performed_by"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toAdjustment(dto AdjustmentDTO) (ledger.Adjustment, error) {
	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		return ledger.Adjustment{}, fmt.Errorf("amount %q: %w", dto.Amount, err)
	}

	var weekStart time.Time
	if dto.WeekStart != "" {
		if weekStart, err = time.Parse(dateLayout, dto.WeekStart); err != nil {
			return ledger.Adjustment{}, fmt.Errorf("week_start %q: %w", dto.WeekStart, err)
		}
	}

	var createdAt time.Time
	if dto.CreatedAt != "" {
		if createdAt, err = time.Parse(time.RFC3339Nano, dto.CreatedAt); err != nil {
			return ledger.Adjustment{}, fmt.Errorf("created_at %q: %w", dto.CreatedAt, err)
		}
	}

	return ledger.Adjustment{
		ID:              dto.ID,
		DriverID:        dto.DriverID,
		Category:        ledger.Category(dto.Category),
		Type:            dto.Type,
		Amount:          ledger.NewMoney(amount),
		Description:     dto.Description,
		WeekStart:       weekStart,
		LoadNumber:      dto.LoadNumber,
		CreatedAt:       createdAt,
		CreatedBy:       dto.CreatedBy,
		ReferenceNumber: dto.ReferenceNumber,
		Status:          ledger.Status(dto.Status),
	}, nil
}

func fromAdjustment(a ledger.Adjustment) AdjustmentDTO {
	return AdjustmentDTO{
		ID:              a.ID,
		DriverID:        a.DriverID,
		Category:        string(a.Category),
		Type:            a.Type,
		Amount:          a.Amount.String(),
		Description:     a.Description,
		WeekStart:       a.WeekStart.Format(dateLayout),
		LoadNumber:      a.LoadNumber,
		CreatedAt:       a.CreatedAt.Format(time.RFC3339Nano),
		CreatedBy:       a.CreatedBy,
		ReferenceNumber: a.ReferenceNumber,
		Status:          string(a.Status),
	}
}

func fromAdjustments(records []ledger.Adjustment) []AdjustmentDTO {
	dtos := make([]AdjustmentDTO, len(records))
	for i, a := range records {
		dtos[i] = fromAdjustment(a)
	}
	return dtos
}

func fromSummary(s ledger.Summary) SummaryDTO {
	return SummaryDTO{
		DriverID:            s.DriverID,
		PeriodStart:         s.PeriodStart.Format(dateLayout),
		PeriodEnd:           s.PeriodEnd.Format(dateLayout),
		TotalDeductions:     s.TotalDeductions.String(),
		TotalReimbursements: s.TotalReimbursements.String(),
		TotalBonuses:        s.TotalBonuses.String(),
		FuelDeductions:      s.FuelDeductions.String(),
		AdjustmentCount:     s.AdjustmentCount,
		NetAdjustment:       s.NetAdjustment().String(),
	}
}

func fromAuditEntries(entries []ledger.AuditEntry) []AuditEntryDTO {
	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = AuditEntryDTO{
			ID:          e.ID,
			Timestamp:   e.Timestamp.Format(time.RFC3339),
			Action:      e.Action,
			EmployeeID:  e.EmployeeID,
			Details:     e.Details,
			PerformedBy: e.PerformedBy,
		}
	}
	return dtos
}
