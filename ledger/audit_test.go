package ledger_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-ledger/ledger"
)

// =============================================================================
// AUDIT TRAIL QUERIES
// =============================================================================

func TestAuditTrail_FiltersAndOrdering(t *testing.T) {
	store, _ := newTestStore(t)
	week1 := monday()
	week2 := monday().AddDate(0, 0, 7)

	require.NoError(t, store.SaveAdjustmentsForDriverWeek(7, week1,
		[]ledger.Adjustment{deduction(t, "Fuel", "10.00")}))
	require.NoError(t, store.SaveAdjustmentsForDriverWeek(8, week2, []ledger.Adjustment{
		func() ledger.Adjustment {
			a := deduction(t, "Tolls", "20.00")
			a.DriverID = 8
			return a
		}(),
	}))

	// No filter: everything, newest first.
	all := store.AuditTrail(ledger.AuditFilter{})
	require.Len(t, all, 2)
	assert.False(t, all[0].Timestamp.Before(all[1].Timestamp), "sorted most recent first")

	// Employee filter.
	employee := int64(7)
	forDriver := store.AuditTrail(ledger.AuditFilter{EmployeeID: &employee})
	require.Len(t, forDriver, 1)
	assert.Equal(t, int64(7), forDriver[0].EmployeeID)

	// A date window in the far past matches nothing.
	past := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	pastEnd := past.AddDate(0, 0, 1)
	assert.Empty(t, store.AuditTrail(ledger.AuditFilter{Start: &past, End: &pastEnd}))

	// Today (inclusive, date component) matches everything written above.
	today := time.Now().UTC()
	assert.Len(t, store.AuditTrail(ledger.AuditFilter{Start: &today, End: &today}), 2)
}

// =============================================================================
// RETENTION
// =============================================================================

// countingArchiver records entries handed over by the retention trim.
type countingArchiver struct {
	mu      sync.Mutex
	batches int
	entries []ledger.AuditEntry
}

func (c *countingArchiver) Archive(entries []ledger.AuditEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches++
	c.entries = append(c.entries, entries...)
	return nil
}

func TestAuditRetention_TrimsOldestBatchIntoArchive(t *testing.T) {
	// GIVEN: a store pushed past the 10,000-entry threshold
	// THEN: one batch of the 1,000 oldest entries is purged into the
	//       archive and the in-memory log drops back accordingly

	archive := &countingArchiver{}
	store := ledger.NewStore(nil, nil, ledger.WithAuditArchiver(archive))

	// Each new record emits one ADJUSTMENT_CREATED entry. Drive the log one
	// entry past the threshold.
	week := monday()
	for i := 0; i < 10001; i++ {
		rec := deduction(t, fmt.Sprintf("Misc %d", i), "1.00")
		require.NoError(t, store.SaveAdjustmentsForDriverWeek(7, week.AddDate(0, 0, 7*i),
			[]ledger.Adjustment{rec}))
	}

	trail := store.AuditTrail(ledger.AuditFilter{})
	assert.Len(t, trail, 9001, "10001 entries minus one 1000-entry trim")
	assert.Equal(t, 1, archive.batches)
	assert.Len(t, archive.entries, 1000)

	// The purged entries are the oldest ones.
	oldestKept := trail[len(trail)-1].Timestamp
	for _, e := range archive.entries {
		assert.False(t, e.Timestamp.After(oldestKept))
	}
}
