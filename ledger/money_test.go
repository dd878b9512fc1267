package ledger_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-ledger/ledger"
)

// =============================================================================
// ROUNDING
// =============================================================================

func TestMoney_RoundsHalfUpToTwoDigits(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"10", "10.00"},
		{"10.1", "10.10"},
		{"10.105", "10.11"}, // half rounds up
		{"10.104", "10.10"},
		{"120.505", "120.51"},
		{"0.005", "0.01"},
	}

	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ledger.NewMoney(d).String(), "input %s", tc.in)
	}
}

// =============================================================================
// ADJUSTMENT AMOUNT RANGE
// =============================================================================

func TestNewAdjustmentAmount_AcceptsInclusiveBounds(t *testing.T) {
	for _, in := range []string{"0.01", "1.00", "120.50", "49999.99", "50000.00"} {
		d, err := decimal.NewFromString(in)
		require.NoError(t, err)

		m, err := ledger.NewAdjustmentAmount(d)
		require.NoError(t, err, "amount %s should be valid", in)
		assert.Equal(t, in, m.String())
	}
}

func TestNewAdjustmentAmount_RejectsOutOfRange(t *testing.T) {
	for _, in := range []string{"0", "0.004", "-5.00", "50000.01", "999999"} {
		d, err := decimal.NewFromString(in)
		require.NoError(t, err)

		_, err = ledger.NewAdjustmentAmount(d)
		assert.ErrorIs(t, err, ledger.ErrAmountOutOfRange, "amount %s should be rejected", in)
	}
}

func TestNewAdjustmentAmount_RoundsBeforeValidating(t *testing.T) {
	// 0.005 rounds up to 0.01 and becomes valid; 0.004 rounds down to 0.00
	// and stays invalid. Rejection happens on the rounded value.
	_, err := ledger.NewAdjustmentAmount(decimal.NewFromFloat(0.005))
	assert.NoError(t, err)

	_, err = ledger.NewAdjustmentAmount(decimal.NewFromFloat(0.004))
	assert.ErrorIs(t, err, ledger.ErrAmountOutOfRange)
}

// =============================================================================
// ARITHMETIC & JSON
// =============================================================================

func TestMoney_Arithmetic(t *testing.T) {
	a := ledger.MustParseMoney("120.50")
	b := ledger.MustParseMoney("50.00")

	assert.Equal(t, "170.50", a.Add(b).String())
	assert.Equal(t, "70.50", a.Sub(b).String())
	assert.Equal(t, "-70.50", b.Sub(a).String())
	assert.Equal(t, "70.50", b.Sub(a).Abs().String())
	assert.True(t, a.GreaterThan(b))
	assert.True(t, ledger.ZeroMoney().IsZero())
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	original := ledger.MustParseMoney("120.50")

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"120.50"`, string(data))

	var decoded ledger.Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Equal(decoded))

	// Bare numbers are accepted too (older snapshots).
	require.NoError(t, json.Unmarshal([]byte(`120.5`), &decoded))
	assert.Equal(t, "120.50", decoded.String())
}
