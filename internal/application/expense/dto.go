package expense

import (
	"time"

	"github.com/finops/backend/internal/domain/allocation"
	"github.com/finops/backend/internal/domain/expense"
	"github.com/finops/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DistributionRequest is one client share in a CreateExpenseRequest
type DistributionRequest struct {
	ClientID   uuid.UUID
	Percentage decimal.Decimal
}

// CreateExpenseRequest represents a request to create an admin expense
type CreateExpenseRequest struct {
	Concept       string
	Amount        decimal.Decimal
	Date          time.Time
	PaidBy        string
	Distributions []DistributionRequest
}

// ExpenseListFilter defines filtering options for expense list queries
type ExpenseListFilter struct {
	Search   string
	Status   string
	PaidBy   string
	ClientID *uuid.UUID
	FromDate *time.Time
	ToDate   *time.Time
	OrderBy  string
	OrderDir string
	Page     int
	PageSize int
}

// DistributionResponse represents a distribution in API responses
type DistributionResponse struct {
	ID         uuid.UUID       `json:"id"`
	ExpenseID  uuid.UUID       `json:"expense_id"`
	ClientID   uuid.UUID       `json:"client_id"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
}

// ExpenseResponse represents an admin expense in API responses
type ExpenseResponse struct {
	ID            uuid.UUID              `json:"id"`
	Concept       string                 `json:"concept"`
	Amount        decimal.Decimal        `json:"amount"`
	Date          time.Time              `json:"date"`
	PaidBy        string                 `json:"paid_by"`
	Status        string                 `json:"status"`
	PaidAt        *time.Time             `json:"paid_at,omitempty"`
	PaidAmount    decimal.Decimal        `json:"paid_amount"`
	PendingAmount decimal.Decimal        `json:"pending_amount"`
	Distributions []DistributionResponse `json:"distributions"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	Version       int                    `json:"version"`
}

// SettlementOutcome distinguishes a settlement that changed something from a no-op
type SettlementOutcome string

const (
	OutcomeSettled SettlementOutcome = "settled"
	OutcomeNoOp    SettlementOutcome = "noop"
)

// SettlementResult is the success payload of a payment confirmation.
// A NoOp outcome carries the unchanged expense and a Warning.
type SettlementResult struct {
	Outcome      SettlementOutcome      `json:"outcome"`
	Warning      string                 `json:"warning,omitempty"`
	Expense      ExpenseResponse        `json:"expense"`
	Settled      []DistributionResponse `json:"settled"`
	Transactions []uuid.UUID            `json:"transaction_ids"`
}

// IsNoOp reports whether nothing needed to change
func (r *SettlementResult) IsNoOp() bool {
	return r.Outcome == OutcomeNoOp
}

// PreviewRequest asks how an amount would be split by the given percentages
type PreviewRequest struct {
	Amount      decimal.Decimal
	Percentages []decimal.Decimal
}

// ShareResponse represents one computed share
type ShareResponse struct {
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

// PreviewResponse is the outcome of an allocation preview
type PreviewResponse struct {
	Shares     []ShareResponse `json:"shares"`
	Sum        decimal.Decimal `json:"sum"`
	Difference decimal.Decimal `json:"difference"`
	Valid      bool            `json:"valid"`
}

func toExpenseResponse(e *expense.AdminExpense) ExpenseResponse {
	dists := make([]DistributionResponse, len(e.Distributions))
	for i := range e.Distributions {
		dists[i] = toDistributionResponse(&e.Distributions[i])
	}
	return ExpenseResponse{
		ID:            e.ID,
		Concept:       e.Concept,
		Amount:        e.Amount,
		Date:          e.Date,
		PaidBy:        e.PaidBy.String(),
		Status:        e.Status.String(),
		PaidAt:        e.PaidAt,
		PaidAmount:    e.PaidAmount(),
		PendingAmount: e.PendingAmount(),
		Distributions: dists,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
		Version:       e.Version,
	}
}

func toDistributionResponse(d *expense.ExpenseDistribution) DistributionResponse {
	return DistributionResponse{
		ID:         d.ID,
		ExpenseID:  d.ExpenseID,
		ClientID:   d.ClientID,
		Percentage: d.Percentage,
		Amount:     d.Amount,
		Status:     d.Status.String(),
		PaidAt:     d.PaidAt,
	}
}

func toShareResponses(shares []allocation.Share) []ShareResponse {
	out := make([]ShareResponse, len(shares))
	for i, s := range shares {
		out[i] = ShareResponse{Percentage: s.Percentage, Amount: s.Amount}
	}
	return out
}

func transactionIDs(txs []*ledger.Transaction) []uuid.UUID {
	ids := make([]uuid.UUID, len(txs))
	for i, t := range txs {
		ids[i] = t.ID
	}
	return ids
}
