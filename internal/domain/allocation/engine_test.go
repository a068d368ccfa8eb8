package allocation

import (
	"errors"
	"testing"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pcts(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = d(v)
	}
	return out
}

// ============================================
// ComputeAmount / ComputePercentage
// ============================================

func TestComputeAmount(t *testing.T) {
	tests := []struct {
		name       string
		total      string
		percentage string
		want       string
	}{
		{"whole percentage", "1000", "30", "300"},
		{"zero percentage", "1000", "0", "0"},
		{"full amount", "1234.56", "100", "1234.56"},
		{"rounds half up", "0.10", "25", "0.03"},
		{"rounds down below half", "10", "33.33", "3.33"},
		{"fractional percentage", "100", "33.333333", "33.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAmount(d(tt.total), d(tt.percentage))
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestComputePercentage(t *testing.T) {
	t.Run("back-derives percentage", func(t *testing.T) {
		got := ComputePercentage(d("1000"), d("250"))
		assert.True(t, d("25").Equal(got))
	})

	t.Run("zero total yields zero", func(t *testing.T) {
		assert.True(t, ComputePercentage(decimal.Zero, d("50")).IsZero())
	})

	t.Run("negative total yields zero", func(t *testing.T) {
		assert.True(t, ComputePercentage(d("-10"), d("5")).IsZero())
	})
}

func TestComputeAmount_RoundTrip(t *testing.T) {
	totals := []string{"1000", "999.99", "0.07", "12345.67", "3"}
	percentages := []string{"0", "0.5", "5", "12.5", "33.3333", "66.67", "99.99", "100"}

	for _, total := range totals {
		for _, pct := range percentages {
			first := ComputeAmount(d(total), d(pct))
			again := ComputeAmount(d(total), ComputePercentage(d(total), first))
			assert.True(t, first.Sub(again).Abs().LessThanOrEqual(Tolerance),
				"total=%s pct=%s first=%s again=%s", total, pct, first, again)
		}
	}
}

// ============================================
// DistributeEvenly
// ============================================

func TestDistributeEvenly(t *testing.T) {
	t.Run("splits into equal shares", func(t *testing.T) {
		shares, err := DistributeEvenly(d("1000"), 4)
		require.NoError(t, err)
		require.Len(t, shares, 4)
		for _, s := range shares {
			assert.True(t, d("25").Equal(s.Percentage))
			assert.True(t, d("250").Equal(s.Amount))
		}
	})

	t.Run("percentages add up to exactly 100", func(t *testing.T) {
		for n := 1; n <= 13; n++ {
			shares, err := DistributeEvenly(d("100"), n)
			require.NoError(t, err)

			sum := decimal.Zero
			for _, s := range shares {
				sum = sum.Add(s.Percentage)
			}
			assert.True(t, Hundred.Equal(sum), "n=%d sum=%s", n, sum)
		}
	})

	t.Run("amounts add up within one cent per share", func(t *testing.T) {
		total := d("1000")
		for n := 1; n <= 13; n++ {
			shares, err := DistributeEvenly(total, n)
			require.NoError(t, err)

			sum := decimal.Zero
			for _, s := range shares {
				sum = sum.Add(s.Amount)
			}
			limit := Tolerance.Mul(decimal.NewFromInt(int64(n)))
			assert.True(t, total.Sub(sum).Abs().LessThanOrEqual(limit), "n=%d sum=%s", n, sum)
		}
	})

	t.Run("three way split of a non divisible amount", func(t *testing.T) {
		shares, err := DistributeEvenly(d("100"), 3)
		require.NoError(t, err)
		for _, s := range shares {
			assert.True(t, d("33.33").Equal(s.Amount))
		}
		assert.NoError(t, ValidateTotal([]decimal.Decimal{shares[0].Percentage, shares[1].Percentage, shares[2].Percentage}))
	})

	t.Run("fails for zero shares", func(t *testing.T) {
		_, err := DistributeEvenly(d("100"), 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("fails for negative shares", func(t *testing.T) {
		_, err := DistributeEvenly(d("100"), -2)
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, "INVALID_INPUT"))
	})
}

// ============================================
// ValidateTotal
// ============================================

func TestValidateTotal(t *testing.T) {
	t.Run("accepts exact 100", func(t *testing.T) {
		assert.NoError(t, ValidateTotal(pcts("30", "25", "15", "15", "10", "5")))
	})

	t.Run("accepts drift within tolerance", func(t *testing.T) {
		assert.NoError(t, ValidateTotal(pcts("33.33", "33.33", "33.33")))
		assert.NoError(t, ValidateTotal(pcts("50.005", "50")))
	})

	t.Run("reports deficit", func(t *testing.T) {
		err := ValidateTotal(pcts("50", "49"))
		require.Error(t, err)

		var mismatch *PercentageMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.True(t, d("99").Equal(mismatch.Sum))
		assert.True(t, d("1").Equal(mismatch.Difference))
		assert.True(t, mismatch.Missing())
		assert.False(t, mismatch.Excess())
		assert.Contains(t, err.Error(), "missing 1.00%")
	})

	t.Run("reports excess", func(t *testing.T) {
		err := ValidateTotal(pcts("60", "45"))

		var mismatch *PercentageMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.True(t, d("-5").Equal(mismatch.Difference))
		assert.True(t, mismatch.Excess())
		assert.Contains(t, err.Error(), "excess 5.00%")
	})

	t.Run("rejects drift of 0.02", func(t *testing.T) {
		err := ValidateTotal(pcts("50", "49.98"))
		var mismatch *PercentageMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.True(t, d("0.02").Equal(mismatch.Difference))
	})

	t.Run("rejects empty set", func(t *testing.T) {
		err := ValidateTotal(nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrPercentageMismatch))
	})

	t.Run("mismatch carries domain code", func(t *testing.T) {
		err := ValidateTotal(pcts("10"))
		assert.True(t, shared.HasCode(err, "PERCENTAGE_MISMATCH"))
	})
}

// ============================================
// Share helpers
// ============================================

func TestValidatePercentage(t *testing.T) {
	assert.NoError(t, ValidatePercentage(d("0")))
	assert.NoError(t, ValidatePercentage(d("100")))
	assert.Error(t, ValidatePercentage(d("-0.01")))
	assert.Error(t, ValidatePercentage(d("100.01")))
}

func TestValidateAmounts(t *testing.T) {
	total := d("1000")

	t.Run("accepts consistent shares", func(t *testing.T) {
		shares := []Share{WithPercentage(total, d("40")), WithPercentage(total, d("60"))}
		assert.NoError(t, ValidateAmounts(total, shares))
	})

	t.Run("accepts one cent drift", func(t *testing.T) {
		shares := []Share{{Percentage: d("40"), Amount: d("400.01")}}
		assert.NoError(t, ValidateAmounts(total, shares))
	})

	t.Run("rejects inconsistent share", func(t *testing.T) {
		shares := []Share{{Percentage: d("40"), Amount: d("390")}}
		err := ValidateAmounts(total, shares)
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, "AMOUNT_MISMATCH"))
	})
}

func TestWithAmount(t *testing.T) {
	s := WithAmount(d("800"), d("200"))
	assert.True(t, d("25").Equal(s.Percentage))
	assert.True(t, d("200").Equal(s.Amount))

	zero := WithAmount(decimal.Zero, d("10"))
	assert.True(t, zero.Percentage.IsZero())
}

func TestPreviewSplit(t *testing.T) {
	t.Run("valid split", func(t *testing.T) {
		p := PreviewSplit(d("1000"), pcts("40", "35", "25"))
		assert.True(t, p.Valid)
		require.Len(t, p.Shares, 3)
		assert.True(t, d("400").Equal(p.Shares[0].Amount))
		assert.True(t, d("350").Equal(p.Shares[1].Amount))
		assert.True(t, d("250").Equal(p.Shares[2].Amount))
		assert.True(t, p.Difference.IsZero())
	})

	t.Run("incomplete split", func(t *testing.T) {
		p := PreviewSplit(d("1000"), pcts("40", "35"))
		assert.False(t, p.Valid)
		assert.True(t, d("75").Equal(p.Sum))
		assert.True(t, d("25").Equal(p.Difference))
	})
}
