package models

import (
	"time"

	"github.com/finops/backend/internal/domain/expense"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdminExpenseModel is the persistence model for the AdminExpense aggregate root.
type AdminExpenseModel struct {
	AggregateModel
	Concept       string                     `gorm:"type:varchar(200);not null"`
	Amount        decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	Date          time.Time                  `gorm:"not null;index"`
	PaidBy        expense.PaidBy             `gorm:"type:varchar(20);not null;index"`
	Status        expense.Status             `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaidAt        *time.Time
	Distributions []ExpenseDistributionModel `gorm:"foreignKey:ExpenseID;references:ID"`
}

// TableName returns the table name for GORM
func (AdminExpenseModel) TableName() string {
	return "admin_expenses"
}

// ToDomain converts the persistence model to a domain AdminExpense.
// Distributions are only mapped when they were preloaded.
func (m *AdminExpenseModel) ToDomain() *expense.AdminExpense {
	e := &expense.AdminExpense{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Concept:           m.Concept,
		Amount:            m.Amount,
		Date:              m.Date,
		PaidBy:            m.PaidBy,
		Status:            m.Status,
		PaidAt:            m.PaidAt,
		Distributions:     make([]expense.ExpenseDistribution, len(m.Distributions)),
	}
	for i := range m.Distributions {
		e.Distributions[i] = *m.Distributions[i].ToDomain()
	}
	return e
}

// FromDomain populates the persistence model from a domain AdminExpense.
// Distributions are persisted separately and are left empty here.
func (m *AdminExpenseModel) FromDomain(e *expense.AdminExpense) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.Concept = e.Concept
	m.Amount = e.Amount
	m.Date = e.Date
	m.PaidBy = e.PaidBy
	m.Status = e.Status
	m.PaidAt = e.PaidAt
}

// AdminExpenseModelFromDomain creates a new persistence model from a domain AdminExpense.
func AdminExpenseModelFromDomain(e *expense.AdminExpense) *AdminExpenseModel {
	m := &AdminExpenseModel{}
	m.FromDomain(e)
	return m
}

// ExpenseDistributionModel is the persistence model for ExpenseDistribution.
type ExpenseDistributionModel struct {
	BaseModel
	ExpenseID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_distribution_expense_client,priority:1"`
	ClientID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_distribution_expense_client,priority:2;index"`
	Percentage decimal.Decimal `gorm:"type:decimal(9,6);not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status     expense.Status  `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaidAt     *time.Time
}

// TableName returns the table name for GORM
func (ExpenseDistributionModel) TableName() string {
	return "expense_distributions"
}

// ToDomain converts the persistence model to a domain ExpenseDistribution.
func (m *ExpenseDistributionModel) ToDomain() *expense.ExpenseDistribution {
	return &expense.ExpenseDistribution{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ExpenseID:  m.ExpenseID,
		ClientID:   m.ClientID,
		Percentage: m.Percentage,
		Amount:     m.Amount,
		Status:     m.Status,
		PaidAt:     m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain ExpenseDistribution.
func (m *ExpenseDistributionModel) FromDomain(d *expense.ExpenseDistribution) {
	m.FromDomainBaseEntity(d.BaseEntity)
	m.ExpenseID = d.ExpenseID
	m.ClientID = d.ClientID
	m.Percentage = d.Percentage
	m.Amount = d.Amount
	m.Status = d.Status
	m.PaidAt = d.PaidAt
}

// ExpenseDistributionModelFromDomain creates a new persistence model from a domain ExpenseDistribution.
func ExpenseDistributionModelFromDomain(d *expense.ExpenseDistribution) *ExpenseDistributionModel {
	m := &ExpenseDistributionModel{}
	m.FromDomain(d)
	return m
}
