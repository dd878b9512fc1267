/*
store.go - The adjustment store: keyed records + audit log under one lock

PURPOSE:
  The stateful core of the ledger. Holds every adjustment keyed by
  (driverID, weekStart) plus the audit log, guarded by a single
  multi-reader/single-writer lock, and pushes a full snapshot through the
  persistence gateway after every mutation.

CRITICAL INVARIANTS:
  1. NO PHYSICAL DELETE: reversal is the only removal mechanism. A reversal
     rewrites the original record to Reversed AND appends a second Reversed
     record describing why. Both stay forever.
  2. ALL-OR-NOTHING SAVE: a batch save validates every record before
     touching state; one bad record aborts the whole call.
  3. COPY-ON-READ: queries hand out independent copies; callers can never
     reach the store's slices.
  4. IDS ONLY GO UP: ids are allocated monotonically, re-seeded at startup
     from max existing id + 1.

LOCKING:
  Writers hold the exclusive lock for their entire duration, including the
  synchronous snapshot write to disk. A slow disk therefore stalls every
  reader until the save returns. That is a deliberate trade: when a save
  returns an error, nothing durable changed, and no reader ever observes a
  half-applied batch. The tool is low-throughput; don't reuse this locking
  scheme somewhere hot.

FAILURE MODEL:
  A persistence failure during save/reverse is logged and returned as an
  error. The in-memory mutation is NOT rolled back - this matches the
  source system. Callers must treat an error as "no durable change".

SEE ALSO:
  - persistence.go: snapshot shape and gateway contract
  - aggregate.go: read-side totals and summaries
  - audit.go: audit entries and retention
*/
package ledger

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// KEYS
// =============================================================================

// weekKey identifies one driver's adjustment list for one pay week. The week
// start is stored as a date string so that differing times-of-day or zones
// on input can never split a week into two keys.
type weekKey struct {
	driverID  int64
	weekStart string
}

func newWeekKey(driverID int64, weekStart time.Time) weekKey {
	return weekKey{driverID: driverID, weekStart: DateOf(weekStart).Format(dateLayout)}
}

// =============================================================================
// STORE
// =============================================================================

// Store is the process-wide adjustment ledger. Construct exactly one with
// NewStore and inject it; there is no package-level instance.
type Store struct {
	mu     sync.RWMutex
	weeks  map[weekKey][]Adjustment
	audit  []AuditEntry
	nextID int64
	dirty  bool

	gateway Gateway
	archive AuditArchiver
	logger  *zap.Logger
	nowFn   func() time.Time
}

// Option configures a Store at construction.
type Option func(*Store)

// WithAuditArchiver wires a sink that receives audit entries purged by the
// retention trim. Archiving is best effort: a sink failure is logged and the
// trim proceeds.
func WithAuditArchiver(archive AuditArchiver) Option {
	return func(s *Store) { s.archive = archive }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.nowFn = now }
}

// NewStore builds a Store and loads prior state through the gateway.
// Loading never fails: a missing or corrupt primary file falls back to the
// backup inside the gateway, and if both are unreadable the store starts
// empty with a logged warning. A nil gateway yields a memory-only store.
func NewStore(gateway Gateway, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		weeks:   make(map[weekKey][]Adjustment),
		nextID:  1,
		gateway: gateway,
		logger:  logger,
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if gateway != nil {
		snap, err := gateway.Load()
		if err != nil {
			logger.Warn("no usable ledger snapshot, starting empty", zap.Error(err))
		} else {
			s.restoreSnapshot(snap)
		}
	}
	return s
}

// restoreSnapshot installs loaded state and re-seeds the id counter.
func (s *Store) restoreSnapshot(snap Snapshot) {
	var maxID int64
	for _, week := range snap.Weeks {
		k := weekKey{driverID: week.DriverID, weekStart: week.WeekStart}
		records := make([]Adjustment, len(week.Adjustments))
		copy(records, week.Adjustments)
		s.weeks[k] = records
		for _, a := range records {
			if a.ID > maxID {
				maxID = a.ID
			}
		}
	}
	s.audit = append(s.audit[:0], snap.Audit...)
	s.nextID = maxID + 1
	s.logger.Info("ledger snapshot loaded",
		zap.Int("weeks", len(snap.Weeks)),
		zap.Int("audit_entries", len(snap.Audit)),
		zap.Int64("next_id", s.nextID))
}

// =============================================================================
// READS
// =============================================================================

// AdjustmentsForDriverWeek returns copies of the Active/Approved records for
// one driver-week, in original insertion order. Mutating the result never
// affects store state.
func (s *Store) AdjustmentsForDriverWeek(driverID int64, weekStart time.Time) []Adjustment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.weeks[newWeekKey(driverID, weekStart)]
	result := make([]Adjustment, 0, len(records))
	for _, a := range records {
		if a.Status.Effective() {
			result = append(result, a)
		}
	}
	return result
}

// AdjustmentHistoryForDriverWeek returns copies of every record for one
// driver-week regardless of status, Reversed rows included. This is what the
// editing surface's history view renders.
func (s *Store) AdjustmentHistoryForDriverWeek(driverID int64, weekStart time.Time) []Adjustment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.weeks[newWeekKey(driverID, weekStart)]
	result := make([]Adjustment, len(records))
	copy(result, records)
	return result
}

// AuditTrail returns matching audit entries, most recent first. The zero
// filter returns the whole log.
func (s *Store) AuditTrail(filter AuditFilter) []AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]AuditEntry, 0, len(s.audit))
	for _, e := range s.audit {
		if filter.matches(e) {
			result = append(result, e)
		}
	}
	// Newest first. Stable so same-timestamp entries keep append order.
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}

// =============================================================================
// BATCH SAVE
// =============================================================================

// SaveAdjustmentsForDriverWeek replaces the full record list for one
// driver-week. All-or-nothing: every incoming record is validated before any
// state changes, and one invalid record fails the whole batch.
//
// Records with ID 0 are finalized with a freshly allocated id and an
// ADJUSTMENT_CREATED audit entry. Records carrying an existing id are diffed
// field-by-field against the stored record; a difference emits
// ADJUSTMENT_MODIFIED. The stored list is then overwritten wholesale -
// records absent from the batch are dropped from the key, not reversed.
//
// On a persistence failure the in-memory replacement has already happened;
// the returned error means nothing durable changed.
func (s *Store) SaveAdjustmentsForDriverWeek(driverID int64, weekStart time.Time, batch []Adjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range batch {
		if err := a.validate(); err != nil {
			s.logger.Warn("rejecting adjustment batch",
				zap.Int64("driver_id", driverID),
				zap.Int("index", i),
				zap.Error(err))
			return fmt.Errorf("adjustment %d of %d: %w", i+1, len(batch), err)
		}
	}

	now := s.nowFn()
	week := DateOf(weekStart)
	k := newWeekKey(driverID, week)

	previous := make(map[int64]Adjustment, len(s.weeks[k]))
	for _, a := range s.weeks[k] {
		previous[a.ID] = a
	}

	processed := make([]Adjustment, 0, len(batch))
	for _, a := range batch {
		a.DriverID = driverID
		a.WeekStart = week
		if a.Status == "" {
			a.Status = StatusActive
		}
		if a.ID >= s.nextID {
			// A caller-supplied id from a restore or an external batch; keep it
			// but advance the allocator past it so no later record collides.
			s.nextID = a.ID + 1
		}
		if a.ID == 0 {
			a.ID = s.allocateIDLocked()
			if a.CreatedAt.IsZero() {
				a.CreatedAt = now
			}
			s.appendAuditLocked(newAuditEntry(ActionAdjustmentCreated, driverID,
				fmt.Sprintf("Adjustment %d created: %s %q %s for week %s",
					a.ID, a.Category, a.Type, a.Amount, k.weekStart),
				a.CreatedBy, now))
		} else if prev, ok := previous[a.ID]; ok && !equalAdjustments(prev, a) {
			s.appendAuditLocked(newAuditEntry(ActionAdjustmentModified, driverID,
				fmt.Sprintf("Adjustment %d modified: %s %q %s for week %s",
					a.ID, a.Category, a.Type, a.Amount, k.weekStart),
				a.CreatedBy, now))
		}
		processed = append(processed, a)
	}

	s.weeks[k] = processed
	s.dirty = true
	return s.persistLocked()
}

// =============================================================================
// REVERSAL
// =============================================================================

// RemoveAdjustmentByID reverses the Active/Approved record carrying the given
// id, wherever it lives. The original record keeps its id and is rewritten in
// place with Status Reversed; a second record with a new id and a
// "REVERSED: ..." description is appended alongside it. Both stay forever.
//
// Returns ErrAdjustmentNotFound when no effective record carries the id.
func (s *Store) RemoveAdjustmentByID(id int64, removedBy, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, records := range s.weeks {
		for i, a := range records {
			if a.ID != id || !a.Status.Effective() {
				continue
			}
			now := s.nowFn()
			records[i].Status = StatusReversed

			duplicate := a
			duplicate.ID = s.allocateIDLocked()
			duplicate.Status = StatusReversed
			duplicate.Description = ReversedDescriptionPrefix + a.Description + " - " + reason
			duplicate.CreatedAt = now
			duplicate.CreatedBy = removedBy
			s.weeks[k] = append(records, duplicate)

			s.appendAuditLocked(newAuditEntry(ActionAdjustmentReversed, a.DriverID,
				fmt.Sprintf("Adjustment %d reversed: %s %q %s - %s",
					id, a.Category, a.Type, a.Amount, reason),
				removedBy, now))

			s.dirty = true
			return s.persistLocked()
		}
	}
	return fmt.Errorf("%w: id %d", ErrAdjustmentNotFound, id)
}

// RemoveAdjustment is the legacy variant: reversal attributed to "System".
func (s *Store) RemoveAdjustment(id int64) error {
	return s.RemoveAdjustmentByID(id, "System", "No reason provided")
}

// =============================================================================
// INTERNALS (call with the write lock held)
// =============================================================================

func (s *Store) allocateIDLocked() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Store) appendAuditLocked(entry AuditEntry) {
	s.audit = append(s.audit, entry)
	kept, purged := trimAudit(s.audit)
	if purged == nil {
		return
	}
	if s.archive != nil {
		if err := s.archive.Archive(purged); err != nil {
			s.logger.Error("audit archive failed, trimming anyway",
				zap.Int("entries", len(purged)), zap.Error(err))
		}
	}
	s.audit = kept
	s.logger.Info("audit log trimmed",
		zap.Int("purged", len(purged)), zap.Int("kept", len(kept)))
}

func (s *Store) persistLocked() error {
	if s.gateway == nil {
		s.dirty = false
		return nil
	}
	if !s.dirty {
		return nil
	}
	if err := s.gateway.Save(s.snapshotLocked()); err != nil {
		s.logger.Error("failed to persist ledger state", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	s.dirty = false
	return nil
}

// Flush persists the current state if anything changed since the last save.
// Mutations persist synchronously, so this matters only for shutdown paths
// and after a failed save.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}
