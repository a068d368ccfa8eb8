// Package expense models shared administrative expenses and their per-client
// distributions.
package expense

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/finops/backend/internal/domain/allocation"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxConceptLength bounds the free-text concept label
const MaxConceptLength = 200

// PaidBy records who fronted the expense; informational only
type PaidBy string

const (
	PaidByShared  PaidBy = "shared"
	PaidByCompany PaidBy = "company"
	PaidByOwner   PaidBy = "owner"
)

// IsValid checks if the payer is valid
func (p PaidBy) IsValid() bool {
	switch p {
	case PaidByShared, PaidByCompany, PaidByOwner:
		return true
	}
	return false
}

// String returns the string representation
func (p PaidBy) String() string {
	return string(p)
}

// Status is the payment status of an expense or of one of its distributions
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusPaid
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// DistributionInput is the caller-supplied part of a distribution
type DistributionInput struct {
	ClientID   uuid.UUID
	Percentage decimal.Decimal
}

// AdminExpense is a shared administrative expense split across clients.
// Status is derived from the distributions and only changes through Settle.
type AdminExpense struct {
	shared.BaseAggregateRoot
	Concept       string
	Amount        decimal.Decimal
	Date          time.Time
	PaidBy        PaidBy
	Status        Status
	PaidAt        *time.Time
	Distributions []ExpenseDistribution
}

// NewAdminExpense validates the input and builds a pending expense with one
// pending distribution per input, amounts derived from the percentages.
func NewAdminExpense(
	concept string,
	amount decimal.Decimal,
	date time.Time,
	paidBy PaidBy,
	inputs []DistributionInput,
) (*AdminExpense, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return nil, shared.NewDomainError("INVALID_CONCEPT", "Concept cannot be empty")
	}
	if utf8.RuneCountInString(concept) > MaxConceptLength {
		return nil, shared.NewDomainError("INVALID_CONCEPT", fmt.Sprintf("Concept cannot exceed %d characters", MaxConceptLength))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if !amount.Equal(amount.Round(allocation.AmountPlaces)) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot have more than 2 decimal places")
	}
	if !paidBy.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAID_BY", "Paid by must be one of shared, company, owner")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Expense date is required")
	}
	if len(inputs) == 0 {
		return nil, shared.NewDomainError("NO_DISTRIBUTIONS", "At least one distribution is required")
	}

	seen := make(map[uuid.UUID]struct{}, len(inputs))
	percentages := make([]decimal.Decimal, 0, len(inputs))
	for _, in := range inputs {
		if in.ClientID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_CLIENT", "Distribution client ID cannot be empty")
		}
		if _, dup := seen[in.ClientID]; dup {
			return nil, shared.NewDomainError("DUPLICATE_CLIENT", fmt.Sprintf("Client %s appears more than once", in.ClientID))
		}
		seen[in.ClientID] = struct{}{}
		if err := allocation.ValidatePercentage(in.Percentage); err != nil {
			return nil, err
		}
		percentages = append(percentages, in.Percentage)
	}
	if err := allocation.ValidateTotal(percentages); err != nil {
		return nil, err
	}

	e := &AdminExpense{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Concept:           concept,
		Amount:            amount,
		Date:              normalizeDate(date),
		PaidBy:            paidBy,
		Status:            StatusPending,
	}
	e.Distributions = make([]ExpenseDistribution, 0, len(inputs))
	for _, in := range inputs {
		e.Distributions = append(e.Distributions, newDistribution(e.ID, in.ClientID, in.Percentage, amount))
	}

	e.AddDomainEvent(NewAdminExpenseCreatedEvent(e))

	return e, nil
}

// IsPaid reports whether every distribution is paid
func (e *AdminExpense) IsPaid() bool {
	return e.Status == StatusPaid
}

// Distribution returns the distribution with the given ID
func (e *AdminExpense) Distribution(id uuid.UUID) (*ExpenseDistribution, bool) {
	for i := range e.Distributions {
		if e.Distributions[i].ID == id {
			return &e.Distributions[i], true
		}
	}
	return nil, false
}

// PendingDistributionIDs returns the IDs of all unpaid distributions
func (e *AdminExpense) PendingDistributionIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(e.Distributions))
	for _, d := range e.Distributions {
		if !d.IsPaid() {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// PaidAmount is the sum of settled distribution amounts
func (e *AdminExpense) PaidAmount() decimal.Decimal {
	total := decimal.Zero
	for _, d := range e.Distributions {
		if d.IsPaid() {
			total = total.Add(d.Amount)
		}
	}
	return total
}

// PendingAmount is the sum of unsettled distribution amounts
func (e *AdminExpense) PendingAmount() decimal.Decimal {
	total := decimal.Zero
	for _, d := range e.Distributions {
		if !d.IsPaid() {
			total = total.Add(d.Amount)
		}
	}
	return total
}

// Settle marks the requested distributions paid. IDs of distributions that
// are already paid are skipped; an ID that does not belong to this expense
// is a NOT_FOUND error and nothing is changed. After the transitions the
// expense status is recomputed.
//
// The returned slice holds copies of the distributions that actually moved
// from pending to paid. An empty slice means nothing changed.
func (e *AdminExpense) Settle(ids []uuid.UUID, at time.Time) ([]ExpenseDistribution, error) {
	if len(ids) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one distribution ID is required")
	}

	targets := make([]*ExpenseDistribution, 0, len(ids))
	picked := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		d, ok := e.Distribution(id)
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Distribution %s not found in expense %s", id, e.ID))
		}
		if _, dup := picked[id]; dup || d.IsPaid() {
			continue
		}
		picked[id] = struct{}{}
		targets = append(targets, d)
	}

	if len(targets) == 0 {
		return []ExpenseDistribution{}, nil
	}

	settled := make([]ExpenseDistribution, 0, len(targets))
	for _, d := range targets {
		d.markPaid(at)
		settled = append(settled, *d)
		e.AddDomainEvent(NewDistributionSettledEvent(e, d))
	}

	e.rollup(at)
	e.UpdatedAt = at
	e.IncrementVersion()

	return settled, nil
}

// rollup derives the expense status from its distributions
func (e *AdminExpense) rollup(at time.Time) {
	for _, d := range e.Distributions {
		if !d.IsPaid() {
			e.Status = StatusPending
			return
		}
	}
	if e.Status != StatusPaid {
		e.Status = StatusPaid
		e.PaidAt = &at
		e.AddDomainEvent(NewAdminExpenseSettledEvent(e))
	}
}

// DeriveStatus returns the status implied by the distributions without
// changing the expense
func (e *AdminExpense) DeriveStatus() Status {
	if len(e.Distributions) == 0 {
		return StatusPending
	}
	for _, d := range e.Distributions {
		if !d.IsPaid() {
			return StatusPending
		}
	}
	return StatusPaid
}

func normalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
