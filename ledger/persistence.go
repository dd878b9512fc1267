/*
persistence.go - Snapshot shape and the gateway contract

PURPOSE:
  The store persists as one opaque snapshot of everything: every keyed
  adjustment list plus the whole audit log. The Gateway owns the file
  mechanics (backup, atomic replace, fallback load); this file owns the
  shape of what crosses that boundary.

SEE ALSO:
  - store/snapshot: the file-backed Gateway implementation
*/
package ledger

import "sort"

// SnapshotFormatVersion identifies the serialized layout. A loader that sees
// a higher version than it understands treats the file as unreadable and
// falls back, same as corruption.
const SnapshotFormatVersion = 1

// Snapshot is the full serializable state of a Store.
type Snapshot struct {
	Version int               `json:"version"`
	Weeks   []WeekAdjustments `json:"weeks"`
	Audit   []AuditEntry      `json:"audit"`
}

// WeekAdjustments is one (driver, week) key with its ordered record list.
type WeekAdjustments struct {
	DriverID    int64        `json:"driver_id"`
	WeekStart   string       `json:"week_start"` // "2006-01-02"
	Adjustments []Adjustment `json:"adjustments"`
}

// Gateway saves and loads full-store snapshots. Save must replace the
// previous snapshot atomically; Load must fall back to the backup copy
// before giving up.
type Gateway interface {
	Save(snap Snapshot) error
	Load() (Snapshot, error)
}

// snapshotLocked copies current state into a Snapshot. Keys are emitted in a
// stable order so identical state serializes to identical bytes.
func (s *Store) snapshotLocked() Snapshot {
	weeks := make([]WeekAdjustments, 0, len(s.weeks))
	for k, records := range s.weeks {
		copied := make([]Adjustment, len(records))
		copy(copied, records)
		weeks = append(weeks, WeekAdjustments{
			DriverID:    k.driverID,
			WeekStart:   k.weekStart,
			Adjustments: copied,
		})
	}
	sort.Slice(weeks, func(i, j int) bool {
		if weeks[i].DriverID != weeks[j].DriverID {
			return weeks[i].DriverID < weeks[j].DriverID
		}
		return weeks[i].WeekStart < weeks[j].WeekStart
	})

	audit := make([]AuditEntry, len(s.audit))
	copy(audit, s.audit)

	return Snapshot{
		Version: SnapshotFormatVersion,
		Weeks:   weeks,
		Audit:   audit,
	}
}
