package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-ledger/ledger"
)

// =============================================================================
// PER-WEEK TOTALS
// =============================================================================

func TestAggregation_FuelAndBonusFiltering(t *testing.T) {
	// GIVEN: a Fuel deduction of 120.50 and a Load Bonus of 50.00 for L123
	// THEN: fuel == total deductions == 120.50, bonus(L123) == 50.00, and
	//       plain reimbursements == 0.00 (bonus excluded)

	store, _ := newTestStore(t)
	bonus, err := ledger.NewLoadBonus(7, "L123", decimal.NewFromInt(50), monday(), "dispatch")
	require.NoError(t, err)

	require.NoError(t, store.SaveAdjustmentsForDriverWeek(7, monday(), []ledger.Adjustment{
		deduction(t, "Fuel", "120.50"),
		bonus,
	}))

	assert.Equal(t, "120.50", store.FuelDeductionsForDriverWeek(7, monday()).String())
	assert.Equal(t, "120.50", store.TotalDeductionsForDriverWeek(7, monday()).String())
	assert.Equal(t, "50.00", store.BonusForLoad(7, monday(), "L123").String())
	assert.Equal(t, "0.00", store.TotalReimbursementsForDriverWeek(7, monday()).String())
}

func TestAggregation_BonusRequiresExactLoadNumber(t *testing.T) {
	store, _ := newTestStore(t)
	bonus, err := ledger.NewLoadBonus(7, "L123", decimal.NewFromInt(50), monday(), "dispatch")
	require.NoError(t, err)
	require.NoError(t, store.SaveAdjustmentsForDriverWeek(7, monday(), []ledger.Adjustment{bonus}))

	assert.Equal(t, "50.00", store.BonusForLoad(7, monday(), "L123").String())
	assert.Equal(t, "0.00", store.BonusForLoad(7, monday(), "L12").String())
	assert.Equal(t, "0.00", store.BonusForLoad(7, monday(), "l123").String())
}

func TestAggregation_OnlyEffectiveStatusesCount(t *testing.T) {
	store, _ := newTestStore(t)

	active := deduction(t, "Fuel", "10.00")
	approved := deduction(t, "Fuel", "20.00")
	approved.Status = ledger.StatusApproved
	pending := deduction(t, "Fuel", "40.00")
	pending.Status = ledger.StatusPending
	rejected := deduction(t, "Fuel", "80.00")
	rejected.Status = ledger.StatusRejected

	require.NoError(t, store.SaveAdjustmentsForDriverWeek(7, monday(),
		[]ledger.Adjustment{active, approved, pending, rejected}))

	assert.Equal(t, "30.00", store.TotalDeductionsForDriverWeek(7, monday()).String(),
		"only Active and Approved are effective")
}

func TestAggregation_ReversedRecordsDropOutOfTotals(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveAdjustmentsForDriverWeek(7, monday(),
		[]ledger.Adjustment{deduction(t, "Fuel", "120.50")}))
	id := store.AdjustmentsForDriverWeek(7, monday())[0].ID

	require.NoError(t, store.RemoveAdjustmentByID(id, "manager", "wrong week"))

	// Two Reversed rows exist for the key, neither counts.
	assert.Len(t, store.AdjustmentHistoryForDriverWeek(7, monday()), 2)
	assert.Equal(t, "0.00", store.TotalDeductionsForDriverWeek(7, monday()).String())
	assert.Equal(t, "0.00", store.FuelDeductionsForDriverWeek(7, monday()).String())
}

// =============================================================================
// EMPLOYEE SUMMARY
// =============================================================================

func TestEmployeeSummary_AccumulatesAcrossWeeks(t *testing.T) {
	store, _ := newTestStore(t)
	week1 := monday()
	week2 := monday().AddDate(0, 0, 7)
	week3 := monday().AddDate(0, 0, 14) // outside the queried range

	bonus, err := ledger.NewLoadBonus(7, "L777", decimal.NewFromInt(75), week2, "dispatch")
	require.NoError(t, err)

	require.NoError(t, store.SaveAdjustmentsForDriverWeek(7, week1, []ledger.Adjustment{
		deduction(t, "Fuel", "100.00"),
		deduction(t, "Insurance", "50.00"),
		reimbursement(t, "Tolls", "25.00"),
	}))
	require.NoError(t, store.SaveAdjustmentsForDriverWeek(7, week2, []ledger.Adjustment{bonus}))
	require.NoError(t, store.SaveAdjustmentsForDriverWeek(7, week3,
		[]ledger.Adjustment{deduction(t, "Fuel", "999.00")}))

	// Another driver's records never leak into the summary.
	require.NoError(t, store.SaveAdjustmentsForDriverWeek(8, week1,
		[]ledger.Adjustment{deduction(t, "Fuel", "500.00")}))

	sum := store.EmployeeSummary(7, week1, week2)
	assert.Equal(t, int64(7), sum.DriverID)
	assert.Equal(t, "150.00", sum.TotalDeductions.String())
	assert.Equal(t, "100.00", sum.FuelDeductions.String())
	assert.Equal(t, "25.00", sum.TotalReimbursements.String())
	assert.Equal(t, "75.00", sum.TotalBonuses.String())
	assert.Equal(t, 4, sum.AdjustmentCount)
	// net = reimbursements + bonuses - deductions = 25 + 75 - 150
	assert.Equal(t, "-50.00", sum.NetAdjustment().String())
}

func TestEmployeeSummary_RangeIsInclusive(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveAdjustmentsForDriverWeek(7, monday(),
		[]ledger.Adjustment{deduction(t, "Fuel", "10.00")}))

	sum := store.EmployeeSummary(7, monday(), monday())
	assert.Equal(t, 1, sum.AdjustmentCount, "a range of exactly one week start matches it")

	sum = store.EmployeeSummary(7, monday().AddDate(0, 0, 1), monday().AddDate(0, 0, 7))
	assert.Equal(t, 0, sum.AdjustmentCount)
}
