// Package allocation holds the pure percentage/amount arithmetic used to
// split an amount across several recipients.
package allocation

import (
	"github.com/finops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of decimal places money amounts are rounded to
const AmountPlaces int32 = 2

var (
	// Hundred is the percentage every complete split must add up to
	Hundred = decimal.NewFromInt(100)
	// Tolerance absorbs currency rounding drift when comparing sums and amounts
	Tolerance = decimal.New(1, -2)
)

// Share is one slice of a split: a percentage of the total and its amount
type Share struct {
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

// ComputeAmount returns total * percentage / 100 rounded half-up to 2 places.
func ComputeAmount(total, percentage decimal.Decimal) decimal.Decimal {
	return total.Mul(percentage).Div(Hundred).Round(AmountPlaces)
}

// ComputePercentage back-derives the percentage of total that amount
// represents. A non-positive total yields zero.
func ComputePercentage(total, amount decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return amount.Div(total).Mul(Hundred)
}

// DistributeEvenly splits total into n equal shares. Percentages keep full
// precision and the last share takes the residual so they add up to exactly
// 100; amounts are rounded independently.
func DistributeEvenly(total decimal.Decimal, n int) ([]Share, error) {
	if n <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Number of shares must be positive")
	}

	count := decimal.NewFromInt(int64(n))
	pct := Hundred.Div(count)
	amount := total.Div(count).Round(AmountPlaces)

	shares := make([]Share, n)
	assigned := decimal.Zero
	for i := 0; i < n-1; i++ {
		shares[i] = Share{Percentage: pct, Amount: amount}
		assigned = assigned.Add(pct)
	}
	shares[n-1] = Share{Percentage: Hundred.Sub(assigned), Amount: amount}

	return shares, nil
}

// SumPercentages adds up the given percentages
func SumPercentages(percentages []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range percentages {
		sum = sum.Add(p)
	}
	return sum
}

// ValidateTotal succeeds iff the percentages add up to 100 within Tolerance.
// Otherwise it returns a *PercentageMismatchError with the actual sum and the
// signed gap to 100.
func ValidateTotal(percentages []decimal.Decimal) error {
	sum := SumPercentages(percentages)
	diff := Hundred.Sub(sum)
	if diff.Abs().LessThanOrEqual(Tolerance) {
		return nil
	}
	return &PercentageMismatchError{Sum: sum, Difference: diff}
}

// ValidatePercentage checks that p lies in [0, 100]
func ValidatePercentage(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(Hundred) {
		return shared.NewDomainError("INVALID_PERCENTAGE", "Percentage must be between 0 and 100")
	}
	return nil
}

// ValidateAmounts checks every share's amount against the amount its
// percentage implies for total, within Tolerance.
func ValidateAmounts(total decimal.Decimal, shares []Share) error {
	for _, s := range shares {
		expected := ComputeAmount(total, s.Percentage)
		if expected.Sub(s.Amount).Abs().GreaterThan(Tolerance) {
			return shared.NewDomainError("AMOUNT_MISMATCH",
				"Amount "+s.Amount.StringFixed(AmountPlaces)+" does not match "+
					s.Percentage.String()+"% of "+total.StringFixed(AmountPlaces))
		}
	}
	return nil
}

// WithPercentage returns the share for percentage of total, deriving the amount
func WithPercentage(total, percentage decimal.Decimal) Share {
	return Share{Percentage: percentage, Amount: ComputeAmount(total, percentage)}
}

// WithAmount returns the share for an absolute amount of total, deriving the percentage
func WithAmount(total, amount decimal.Decimal) Share {
	return Share{Percentage: ComputePercentage(total, amount), Amount: amount}
}

// Preview is the outcome of splitting an amount by a set of percentages
type Preview struct {
	Shares     []Share
	Sum        decimal.Decimal
	Difference decimal.Decimal
	Valid      bool
}

// PreviewSplit computes every share for the given percentages and reports
// whether the split is complete. It never fails; invalid splits come back
// with Valid set to false.
func PreviewSplit(total decimal.Decimal, percentages []decimal.Decimal) Preview {
	shares := make([]Share, len(percentages))
	for i, p := range percentages {
		shares[i] = WithPercentage(total, p)
	}
	sum := SumPercentages(percentages)
	return Preview{
		Shares:     shares,
		Sum:        sum,
		Difference: Hundred.Sub(sum),
		Valid:      ValidateTotal(percentages) == nil,
	}
}
