package expense

import (
	"github.com/finops/backend/internal/domain/allocation"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PreviewAllocation splits req.Amount by req.Percentages without persisting
// anything. Incomplete splits are reported through Valid, not as an error.
func PreviewAllocation(req PreviewRequest) (*PreviewResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	for _, p := range req.Percentages {
		if err := allocation.ValidatePercentage(p); err != nil {
			return nil, err
		}
	}

	p := allocation.PreviewSplit(req.Amount, req.Percentages)
	return &PreviewResponse{
		Shares:     toShareResponses(p.Shares),
		Sum:        p.Sum,
		Difference: p.Difference,
		Valid:      p.Valid,
	}, nil
}

// EvenSplit divides amount into n equal shares
func EvenSplit(amount decimal.Decimal, n int) ([]ShareResponse, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	shares, err := allocation.DistributeEvenly(amount, n)
	if err != nil {
		return nil, err
	}
	return toShareResponses(shares), nil
}
