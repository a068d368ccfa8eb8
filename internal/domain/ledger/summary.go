package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Totals are per-type sums for one client
type Totals struct {
	Funding decimal.Decimal
	Expense decimal.Decimal
	Lead    decimal.Decimal
	Count   int64
}

// ClientSummary is a client's funding position
type ClientSummary struct {
	ClientID         uuid.UUID       `json:"client_id"`
	Funded           decimal.Decimal `json:"funded"`
	Expenses         decimal.Decimal `json:"expenses"`
	Leads            decimal.Decimal `json:"leads"`
	Spent            decimal.Decimal `json:"spent"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int64           `json:"transaction_count"`
}

// NewClientSummary derives spent and balance from the per-type totals
func NewClientSummary(clientID uuid.UUID, totals Totals) ClientSummary {
	spent := totals.Expense.Add(totals.Lead)
	return ClientSummary{
		ClientID:         clientID,
		Funded:           totals.Funding,
		Expenses:         totals.Expense,
		Leads:            totals.Lead,
		Spent:            spent,
		Balance:          totals.Funding.Sub(spent),
		TransactionCount: totals.Count,
	}
}
