// Package ledger models the per-client transaction log: funding received,
// expenses charged and lead-generation spend.
package ledger

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxNotesLength bounds transaction notes
const MaxNotesLength = 500

// TransactionType classifies a ledger row
type TransactionType string

const (
	TypeFunding TransactionType = "funding"
	TypeExpense TransactionType = "expense"
	TypeLead    TransactionType = "lead"
)

// IsValid checks if the type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TypeFunding, TypeExpense, TypeLead:
		return true
	}
	return false
}

// IsDebit reports whether the type reduces a client's balance
func (t TransactionType) IsDebit() bool {
	return t == TypeExpense || t == TypeLead
}

// String returns the string representation
func (t TransactionType) String() string {
	return string(t)
}

// Category groups transactions for reporting
type Category string

const (
	CategoryAdmin       Category = "admin"
	CategoryAdvertising Category = "advertising"
	CategoryLeads       Category = "leads"
	CategoryDeposit     Category = "deposit"
	CategoryOther       Category = "other"
)

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryAdmin, CategoryAdvertising, CategoryLeads, CategoryDeposit, CategoryOther:
		return true
	}
	return false
}

// String returns the string representation
func (c Category) String() string {
	return string(c)
}

// Transaction is one entry in a client's ledger
type Transaction struct {
	shared.BaseAggregateRoot
	ClientID             uuid.UUID
	Type                 TransactionType
	Amount               decimal.Decimal
	Date                 time.Time
	Notes                string
	Category             Category
	SourceExpenseID      *uuid.UUID
	SourceDistributionID *uuid.UUID
}

// NewTransaction creates a manually recorded transaction
func NewTransaction(
	clientID uuid.UUID,
	txType TransactionType,
	amount decimal.Decimal,
	date time.Time,
	category Category,
	notes string,
) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	return newTransaction(clientID, txType, amount, date, category, notes)
}

// NewSettlementTransaction creates the expense transaction charged to a
// client when one of its admin-expense distributions is paid. A share that
// rounded to 0.00 still gets its row, so the amount may be zero.
func NewSettlementTransaction(
	clientID uuid.UUID,
	amount decimal.Decimal,
	date time.Time,
	concept string,
	expenseID, distributionID uuid.UUID,
) (*Transaction, error) {
	if expenseID == uuid.Nil || distributionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Settlement transaction requires expense and distribution IDs")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	tx, err := newTransaction(clientID, TypeExpense, amount, date, CategoryAdmin, SettlementNotes(concept))
	if err != nil {
		return nil, err
	}
	tx.SourceExpenseID = &expenseID
	tx.SourceDistributionID = &distributionID
	return tx, nil
}

func newTransaction(
	clientID uuid.UUID,
	txType TransactionType,
	amount decimal.Decimal,
	date time.Time,
	category Category,
	notes string,
) (*Transaction, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Transaction type must be one of funding, expense, lead")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Transaction category is not valid")
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot have more than 2 decimal places")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Transaction date is required")
	}
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return nil, shared.NewDomainError("INVALID_NOTES", fmt.Sprintf("Notes cannot exceed %d characters", MaxNotesLength))
	}

	tx := &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		Type:              txType,
		Amount:            amount,
		Date:              date,
		Notes:             notes,
		Category:          category,
	}
	tx.AddDomainEvent(NewTransactionRecordedEvent(tx))

	return tx, nil
}

// SettlementNotes is the note written on settlement transactions
func SettlementNotes(concept string) string {
	notes := []rune("Admin expense: " + strings.TrimSpace(concept))
	if len(notes) > MaxNotesLength {
		notes = notes[:MaxNotesLength]
	}
	return string(notes)
}

// IsSettlement reports whether the row was produced by an expense settlement
func (t *Transaction) IsSettlement() bool {
	return t.SourceDistributionID != nil
}
