package models

import (
	"time"

	"github.com/finops/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerTransactionModel is the persistence model for ledger transactions.
// SourceDistributionID is unique so a distribution can be charged at most once.
type LedgerTransactionModel struct {
	AggregateModel
	ClientID             uuid.UUID              `gorm:"type:uuid;not null;index"`
	Type                 ledger.TransactionType `gorm:"type:varchar(20);not null;index"`
	Amount               decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Date                 time.Time              `gorm:"not null;index"`
	Notes                string                 `gorm:"type:varchar(500)"`
	Category             ledger.Category        `gorm:"type:varchar(20);not null;index"`
	SourceExpenseID      *uuid.UUID             `gorm:"type:uuid;index"`
	SourceDistributionID *uuid.UUID             `gorm:"type:uuid;uniqueIndex"`
}

// TableName returns the table name for GORM
func (LedgerTransactionModel) TableName() string {
	return "ledger_transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *LedgerTransactionModel) ToDomain() *ledger.Transaction {
	return &ledger.Transaction{
		BaseAggregateRoot:    m.ToDomainAggregateRoot(),
		ClientID:             m.ClientID,
		Type:                 m.Type,
		Amount:               m.Amount,
		Date:                 m.Date,
		Notes:                m.Notes,
		Category:             m.Category,
		SourceExpenseID:      m.SourceExpenseID,
		SourceDistributionID: m.SourceDistributionID,
	}
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *LedgerTransactionModel) FromDomain(tx *ledger.Transaction) {
	m.FromDomainAggregateRoot(tx.BaseAggregateRoot)
	m.ClientID = tx.ClientID
	m.Type = tx.Type
	m.Amount = tx.Amount
	m.Date = tx.Date
	m.Notes = tx.Notes
	m.Category = tx.Category
	m.SourceExpenseID = tx.SourceExpenseID
	m.SourceDistributionID = tx.SourceDistributionID
}

// LedgerTransactionModelFromDomain creates a new persistence model from a domain Transaction.
func LedgerTransactionModelFromDomain(tx *ledger.Transaction) *LedgerTransactionModel {
	m := &LedgerTransactionModel{}
	m.FromDomain(tx)
	return m
}
