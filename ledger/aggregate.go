/*
aggregate.go - Read-side totals, bonus lookups, and employee summaries

PURPOSE:
  Pure derivations over the store's records. Nothing here mutates state;
  every query takes the read lock and sums over Active/Approved records
  only. Amounts are stored as positive magnitudes, so each total is a sum
  of absolute values and the Category decides which bucket it lands in.

FILTERING RULES:
  - Fuel deductions: Category Deduction with Type exactly "Fuel".
  - Load bonus: Category Reimbursement with Type exactly
    "Load Bonus: {loadNumber}" for the requested load.
  - Plain reimbursements: Category Reimbursement whose Type does NOT carry
    the load-bonus prefix. Bonuses are reported separately, never mixed in.

SEE ALSO:
  - types.go: the load-bonus type convention
  - store.go: locking discipline
*/
package ledger

import "time"

// =============================================================================
// PER-WEEK TOTALS
// =============================================================================

// TotalDeductionsForDriverWeek sums every effective deduction for the key.
func (s *Store) TotalDeductionsForDriverWeek(driverID int64, weekStart time.Time) Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sumWeekLocked(driverID, weekStart, func(a Adjustment) bool {
		return a.Category == CategoryDeduction
	})
}

// FuelDeductionsForDriverWeek sums effective deductions typed exactly "Fuel".
func (s *Store) FuelDeductionsForDriverWeek(driverID int64, weekStart time.Time) Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sumWeekLocked(driverID, weekStart, func(a Adjustment) bool {
		return a.Category == CategoryDeduction && a.Type == FuelType
	})
}

// TotalReimbursementsForDriverWeek sums effective plain reimbursements.
// Load bonuses are excluded; they are reported by BonusForLoad.
func (s *Store) TotalReimbursementsForDriverWeek(driverID int64, weekStart time.Time) Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sumWeekLocked(driverID, weekStart, func(a Adjustment) bool {
		return a.Category == CategoryReimbursement && !IsLoadBonusType(a.Type)
	})
}

// BonusForLoad sums effective reimbursements typed "Load Bonus: {loadNumber}"
// with exact load-number equality.
func (s *Store) BonusForLoad(driverID int64, weekStart time.Time, loadNumber string) Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bonusType := LoadBonusType(loadNumber)
	return s.sumWeekLocked(driverID, weekStart, func(a Adjustment) bool {
		return a.Category == CategoryReimbursement && a.Type == bonusType
	})
}

func (s *Store) sumWeekLocked(driverID int64, weekStart time.Time, match func(Adjustment) bool) Money {
	total := ZeroMoney()
	for _, a := range s.weeks[newWeekKey(driverID, weekStart)] {
		if a.Status.Effective() && match(a) {
			total = total.Add(a.Amount.Abs())
		}
	}
	return total
}

// =============================================================================
// EMPLOYEE SUMMARY
// =============================================================================

// Summary accumulates one driver's effective adjustments over a range of
// pay weeks.
type Summary struct {
	DriverID            int64
	PeriodStart         time.Time
	PeriodEnd           time.Time
	TotalDeductions     Money
	TotalReimbursements Money // plain reimbursements, bonuses excluded
	TotalBonuses        Money
	FuelDeductions      Money
	AdjustmentCount     int
}

// NetAdjustment is reimbursements + bonuses - deductions.
func (sum Summary) NetAdjustment() Money {
	return sum.TotalReimbursements.Add(sum.TotalBonuses).Sub(sum.TotalDeductions)
}

// EmployeeSummary scans every week key belonging to the driver whose week
// start falls within [startDate, endDate] (inclusive, date component).
func (s *Store) EmployeeSummary(driverID int64, startDate, endDate time.Time) Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := Summary{
		DriverID:            driverID,
		PeriodStart:         DateOf(startDate),
		PeriodEnd:           DateOf(endDate),
		TotalDeductions:     ZeroMoney(),
		TotalReimbursements: ZeroMoney(),
		TotalBonuses:        ZeroMoney(),
		FuelDeductions:      ZeroMoney(),
	}

	for k, records := range s.weeks {
		if k.driverID != driverID {
			continue
		}
		week, err := time.Parse(dateLayout, k.weekStart)
		if err != nil || !withinDates(week, startDate, endDate) {
			continue
		}
		for _, a := range records {
			if !a.Status.Effective() {
				continue
			}
			amount := a.Amount.Abs()
			switch {
			case a.Category == CategoryDeduction:
				sum.TotalDeductions = sum.TotalDeductions.Add(amount)
				if a.Type == FuelType {
					sum.FuelDeductions = sum.FuelDeductions.Add(amount)
				}
			case IsLoadBonusType(a.Type):
				sum.TotalBonuses = sum.TotalBonuses.Add(amount)
			default:
				sum.TotalReimbursements = sum.TotalReimbursements.Add(amount)
			}
			sum.AdjustmentCount++
		}
	}
	return sum
}
