package allocation

import (
	"fmt"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrPercentageMismatch is the domain error behind every PercentageMismatchError
var ErrPercentageMismatch = shared.NewDomainError("PERCENTAGE_MISMATCH", "Distribution percentages must add up to 100%")

// PercentageMismatchError reports a split that does not add up to 100%.
// Difference is 100 - Sum: positive when percentage is missing, negative
// when there is an excess.
type PercentageMismatchError struct {
	Sum        decimal.Decimal
	Difference decimal.Decimal
}

func (e *PercentageMismatchError) Error() string {
	if e.Missing() {
		return fmt.Sprintf("percentages add up to %s%%, missing %s%%", e.Sum.StringFixed(2), e.Difference.StringFixed(2))
	}
	return fmt.Sprintf("percentages add up to %s%%, excess %s%%", e.Sum.StringFixed(2), e.Difference.Abs().StringFixed(2))
}

// Unwrap exposes the PERCENTAGE_MISMATCH domain error
func (e *PercentageMismatchError) Unwrap() error {
	return ErrPercentageMismatch
}

// Missing reports whether the split falls short of 100%
func (e *PercentageMismatchError) Missing() bool {
	return e.Difference.IsPositive()
}

// Excess reports whether the split goes over 100%
func (e *PercentageMismatchError) Excess() bool {
	return e.Difference.IsNegative()
}
