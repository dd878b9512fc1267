/*
errors.go - Sentinel errors for the adjustment ledger

PURPOSE:
  All domain error values in one place. Callers match with errors.Is();
  messages carry the specific field/value via fmt.Errorf("%w: ...") at
  the point of failure.

SEE ALSO:
  - money.go: amount range validation
  - types.go: record construction validation
  - store.go: batch save and reversal failures
*/
package ledger

import "errors"

var (
	// ErrAmountOutOfRange is returned when an adjustment amount falls outside
	// the allowed [0.01, 50000.00] range after rounding.
	ErrAmountOutOfRange = errors.New("adjustment amount out of range")

	// ErrInvalidCategory is returned when a record's category is neither
	// Deduction nor Reimbursement. Matching is exact - no case folding.
	ErrInvalidCategory = errors.New("invalid adjustment category")

	// ErrMissingType is returned when a record's type label is blank.
	ErrMissingType = errors.New("adjustment type is required")

	// ErrAdjustmentNotFound is returned by reversal when no Active or Approved
	// record carries the requested id.
	ErrAdjustmentNotFound = errors.New("adjustment not found or already reversed")

	// ErrPersistFailed wraps a persistence-gateway failure during a mutation.
	// The in-memory change was applied but nothing durable changed; callers
	// must treat the operation as failed.
	ErrPersistFailed = errors.New("failed to persist ledger state")
)
