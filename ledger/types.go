/*
types.go - Adjustment record and its enumerations

PURPOSE:
  Defines the Adjustment value object: one deduction, reimbursement, or
  load bonus applied to one driver for one pay week. Records are immutable
  once constructed - the store only ever replaces whole records, and a
  correction is a reversal, never an edit.

KEY CONVENTIONS:
  - Amount is always a positive magnitude. Whether it adds to or subtracts
    from a driver's pay is decided by Category at aggregation time.
  - ID 0 means "not yet assigned"; the store allocates the real id on save.
  - Type is a free-text label. The reserved form "Load Bonus: {loadNumber}"
    marks a Reimbursement as tied to one specific load; those are reported
    as bonuses, not as plain reimbursements.
  - Only Active and Approved records count toward any total.

SEE ALSO:
  - money.go: amount normalization and range
  - store.go: id allocation, save, reversal
  - aggregate.go: how Category/Type drive totals
*/
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CATEGORY - Deduction vs Reimbursement
// =============================================================================

// Category determines the sign an adjustment contributes at aggregation time.
type Category string

const (
	CategoryDeduction     Category = "Deduction"
	CategoryReimbursement Category = "Reimbursement"
)

// Valid reports whether the category is one of the two allowed values.
// Matching is exact: "deduction" is not a Category.
func (c Category) Valid() bool {
	return c == CategoryDeduction || c == CategoryReimbursement
}

// =============================================================================
// STATUS - Record lifecycle
// =============================================================================

// Status is the lifecycle state of an adjustment. Transitions only move
// forward: an Active or Approved record can become Reversed, and nothing
// ever leaves Reversed.
type Status string

const (
	StatusActive   Status = "Active"
	StatusReversed Status = "Reversed"
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Effective reports whether the record counts toward totals and summaries.
func (s Status) Effective() bool {
	return s == StatusActive || s == StatusApproved
}

// =============================================================================
// LOAD BONUS CONVENTION
// =============================================================================

// LoadBonusPrefix marks a Reimbursement type as a load-specific bonus.
const LoadBonusPrefix = "Load Bonus: "

// ReversedDescriptionPrefix marks the duplicate record appended by a reversal.
const ReversedDescriptionPrefix = "REVERSED: "

// FuelType is the exact type label counted by the fuel-deduction total.
const FuelType = "Fuel"

// LoadBonusType builds the reserved type label for a load-specific bonus.
func LoadBonusType(loadNumber string) string {
	return LoadBonusPrefix + loadNumber
}

// IsLoadBonusType reports whether a type label follows the load-bonus
// convention. Bonuses are excluded from plain reimbursement totals.
func IsLoadBonusType(adjType string) bool {
	return strings.HasPrefix(adjType, LoadBonusPrefix)
}

// =============================================================================
// ADJUSTMENT - Immutable ledger record
// =============================================================================

// Adjustment is one financial adjustment for one driver in one pay week.
// Treat as immutable: the store hands out copies and never mutates a record
// except to flip Status to Reversed during a reversal.
type Adjustment struct {
	ID              int64     `json:"id"`
	DriverID        int64     `json:"driver_id"`
	Category        Category  `json:"category"`
	Type            string    `json:"type"`
	Amount          Money     `json:"amount"`
	Description     string    `json:"description"`
	WeekStart       time.Time `json:"week_start"`
	LoadNumber      string    `json:"load_number,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	CreatedBy       string    `json:"created_by"`
	ReferenceNumber string    `json:"reference_number,omitempty"`
	Status          Status    `json:"status"`
}

// AdjustmentInput carries the caller-supplied fields for a new record.
type AdjustmentInput struct {
	DriverID        int64
	Category        Category
	Type            string
	Amount          decimal.Decimal
	Description     string
	WeekStart       time.Time
	LoadNumber      string
	CreatedBy       string
	ReferenceNumber string
	Status          Status // defaults to Active
}

// NewAdjustment validates the input and constructs a record with ID 0
// (unassigned) and CreatedAt set to now. Validation failures here are
// contract violations: the amount range and category set are fixed.
func NewAdjustment(in AdjustmentInput) (Adjustment, error) {
	amount, err := NewAdjustmentAmount(in.Amount)
	if err != nil {
		return Adjustment{}, err
	}
	if !in.Category.Valid() {
		return Adjustment{}, fmt.Errorf("%w: %q", ErrInvalidCategory, in.Category)
	}
	if strings.TrimSpace(in.Type) == "" {
		return Adjustment{}, ErrMissingType
	}
	status := in.Status
	if status == "" {
		status = StatusActive
	}
	return Adjustment{
		DriverID:        in.DriverID,
		Category:        in.Category,
		Type:            in.Type,
		Amount:          amount,
		Description:     in.Description,
		WeekStart:       DateOf(in.WeekStart),
		LoadNumber:      in.LoadNumber,
		CreatedAt:       time.Now().UTC(),
		CreatedBy:       in.CreatedBy,
		ReferenceNumber: in.ReferenceNumber,
		Status:          status,
	}, nil
}

// NewLoadBonus constructs a Reimbursement tied to a specific load, using the
// reserved "Load Bonus: {loadNumber}" type label.
func NewLoadBonus(driverID int64, loadNumber string, amount decimal.Decimal, weekStart time.Time, createdBy string) (Adjustment, error) {
	return NewAdjustment(AdjustmentInput{
		DriverID:    driverID,
		Category:    CategoryReimbursement,
		Type:        LoadBonusType(loadNumber),
		Amount:      amount,
		Description: "Bonus for load " + loadNumber,
		WeekStart:   weekStart,
		LoadNumber:  loadNumber,
		CreatedBy:   createdBy,
	})
}

// validate re-checks the invariants the constructor enforces. The store runs
// it over every incoming batch record, since API callers can hand-build
// Adjustment values without going through NewAdjustment.
func (a Adjustment) validate() error {
	if _, err := NewAdjustmentAmount(a.Amount.Value); err != nil {
		return err
	}
	if !a.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, a.Category)
	}
	if strings.TrimSpace(a.Type) == "" {
		return ErrMissingType
	}
	return nil
}

// equalAdjustments compares field by field. Used by the save path to decide
// whether a re-submitted record was actually modified.
func equalAdjustments(a, b Adjustment) bool {
	return a.ID == b.ID &&
		a.DriverID == b.DriverID &&
		a.Category == b.Category &&
		a.Type == b.Type &&
		a.Amount.Equal(b.Amount) &&
		a.Description == b.Description &&
		a.WeekStart.Equal(b.WeekStart) &&
		a.LoadNumber == b.LoadNumber &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.CreatedBy == b.CreatedBy &&
		a.ReferenceNumber == b.ReferenceNumber &&
		a.Status == b.Status
}
