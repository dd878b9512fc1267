/*
money.go - Fixed-point monetary values

PURPOSE:
  Money is the single currency type used across the ledger. It wraps
  decimal.Decimal normalized to exactly 2 fractional digits so that
  totals never accumulate float error and never carry stray precision.

ROUNDING:
  Round half up (0.005 -> 0.01). Applied once, at construction. Every
  arithmetic result is re-normalized, so Money is closed under Add/Sub.

RANGE:
  Adjustment amounts must fall in [0.01, 50000.00]. Out-of-range values
  are rejected at construction - never clamped. The bound applies to a
  single adjustment's magnitude, not to computed totals (a week's total
  deductions may legitimately exceed the per-record maximum).

SEE ALSO:
  - types.go: Adjustment construction enforces the amount range
  - aggregate.go: Totals computed in Money
*/
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - 2-digit fixed-point decimal
// =============================================================================

// Money is a monetary value normalized to 2 fractional digits.
type Money struct {
	Value decimal.Decimal
}

// Adjustment amount bounds, inclusive.
var (
	minAdjustmentAmount = decimal.New(1, -2)       // 0.01
	maxAdjustmentAmount = decimal.New(5000000, -2) // 50000.00
)

// NewMoney normalizes a decimal to 2 fractional digits, rounding half up.
func NewMoney(value decimal.Decimal) Money {
	return Money{Value: value.Round(2)}
}

// NewMoneyFromFloat builds a Money from a float64 (convenience for literals).
func NewMoneyFromFloat(value float64) Money {
	return NewMoney(decimal.NewFromFloat(value))
}

// MustParseMoney parses a decimal string, panicking on malformed input.
// Intended for constants and tests, not for user input.
func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("money: cannot parse %q: %v", s, err))
	}
	return NewMoney(d)
}

// ZeroMoney returns 0.00.
func ZeroMoney() Money {
	return Money{Value: decimal.Zero}
}

// NewAdjustmentAmount rounds the value to 2 digits and validates it against
// the allowed range for a single adjustment. Values outside [0.01, 50000.00]
// are rejected, never clamped.
func NewAdjustmentAmount(value decimal.Decimal) (Money, error) {
	rounded := value.Round(2)
	if rounded.LessThan(minAdjustmentAmount) || rounded.GreaterThan(maxAdjustmentAmount) {
		return Money{}, fmt.Errorf("%w: %s not in [%s, %s]",
			ErrAmountOutOfRange, rounded.StringFixed(2),
			minAdjustmentAmount.StringFixed(2), maxAdjustmentAmount.StringFixed(2))
	}
	return Money{Value: rounded}, nil
}

// =============================================================================
// ARITHMETIC & COMPARISON
// =============================================================================

func (m Money) Add(other Money) Money { return NewMoney(m.Value.Add(other.Value)) }
func (m Money) Sub(other Money) Money { return NewMoney(m.Value.Sub(other.Value)) }
func (m Money) Abs() Money            { return Money{Value: m.Value.Abs()} }
func (m Money) Neg() Money            { return Money{Value: m.Value.Neg()} }

func (m Money) Equal(other Money) bool       { return m.Value.Equal(other.Value) }
func (m Money) GreaterThan(other Money) bool { return m.Value.GreaterThan(other.Value) }
func (m Money) LessThan(other Money) bool    { return m.Value.LessThan(other.Value) }
func (m Money) IsZero() bool                 { return m.Value.IsZero() }
func (m Money) IsNegative() bool             { return m.Value.IsNegative() }

// String renders with exactly 2 fractional digits ("120.50").
func (m Money) String() string {
	return m.Value.StringFixed(2)
}

// =============================================================================
// JSON - serialized as a plain decimal string
// =============================================================================

// MarshalJSON encodes the value as a quoted fixed-point string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.Value.StringFixed(2) + `"`), nil
}

// UnmarshalJSON accepts either a quoted or bare decimal and re-normalizes.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	m.Value = d.Round(2)
	return nil
}
