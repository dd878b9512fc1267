/*
audit.go - Append-only audit trail

PURPOSE:
  Every state-changing ledger operation appends an AuditEntry. Entries are
  never edited or individually deleted; the only removal is a periodic bulk
  retention trim of the oldest entries.

RETENTION:
  When the log exceeds 10,000 entries, the 1,000 oldest (by timestamp) are
  purged in one batch. This is a bulk trim, not a ring buffer: under
  sustained load the log size fluctuates between roughly 9,000 and 11,000.
  Purged entries are offered to an optional archive sink (see
  store/sqlite) before they leave memory, so history survives the trim.

SEE ALSO:
  - store.go: appends entries under the write lock
  - store/sqlite/archive.go: durable archive for trimmed entries
*/
package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ACTION CODES
// =============================================================================

const (
	ActionAdjustmentCreated  = "ADJUSTMENT_CREATED"
	ActionAdjustmentModified = "ADJUSTMENT_MODIFIED"
	ActionAdjustmentReversed = "ADJUSTMENT_REVERSED"
)

// =============================================================================
// AUDIT ENTRY
// =============================================================================

// AuditEntry records one ledger action. Immutable once appended.
type AuditEntry struct {
	ID          string    `json:"id"` // random UUID
	Timestamp   time.Time `json:"timestamp"`
	Action      string    `json:"action"`
	EmployeeID  int64     `json:"employee_id"`
	Details     string    `json:"details"`
	PerformedBy string    `json:"performed_by"`
}

func newAuditEntry(action string, employeeID int64, details, performedBy string, at time.Time) AuditEntry {
	return AuditEntry{
		ID:          uuid.NewString(),
		Timestamp:   at,
		Action:      action,
		EmployeeID:  employeeID,
		Details:     details,
		PerformedBy: performedBy,
	}
}

// AuditFilter narrows an audit-trail query. All fields are optional; the
// zero filter returns the full log. Date bounds compare against the entry's
// date component, inclusive.
type AuditFilter struct {
	EmployeeID *int64
	Start      *time.Time
	End        *time.Time
}

func (f AuditFilter) matches(e AuditEntry) bool {
	if f.EmployeeID != nil && e.EmployeeID != *f.EmployeeID {
		return false
	}
	if f.Start != nil && DateOf(e.Timestamp).Before(DateOf(*f.Start)) {
		return false
	}
	if f.End != nil && DateOf(e.Timestamp).After(DateOf(*f.End)) {
		return false
	}
	return true
}

// =============================================================================
// RETENTION
// =============================================================================

const (
	auditTrimThreshold = 10000
	auditTrimBatch     = 1000
)

// AuditArchiver receives entries purged by the retention trim, before they
// are dropped from memory. Implementations must tolerate duplicate delivery:
// if archiving succeeds but the subsequent snapshot save fails, the same
// entries can be offered again after a reload.
type AuditArchiver interface {
	Archive(entries []AuditEntry) error
}

// trimAudit removes the auditTrimBatch oldest entries once the log exceeds
// auditTrimThreshold. Returns the kept log (chronological) and the purged
// entries, or the input unchanged when no trim is due.
func trimAudit(log []AuditEntry) (kept, purged []AuditEntry) {
	if len(log) <= auditTrimThreshold {
		return log, nil
	}
	sorted := make([]AuditEntry, len(log))
	copy(sorted, log)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted[auditTrimBatch:], sorted[:auditTrimBatch]
}
