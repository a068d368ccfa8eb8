package models

import (
	"github.com/finops/backend/internal/domain/client"
)

// ClientModel is the persistence model for the Client aggregate root.
type ClientModel struct {
	AggregateModel
	Name   string        `gorm:"type:varchar(120);not null;uniqueIndex"`
	Email  string        `gorm:"type:varchar(200)"`
	Notes  string        `gorm:"type:text"`
	Status client.Status `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client.
func (m *ClientModel) ToDomain() *client.Client {
	return &client.Client{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Notes:             m.Notes,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Client.
func (m *ClientModel) FromDomain(c *client.Client) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Email = c.Email
	m.Notes = c.Notes
	m.Status = c.Status
}

// ClientModelFromDomain creates a new persistence model from a domain Client.
func ClientModelFromDomain(c *client.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}

// AllModels lists every model managed by this package, in dependency order.
func AllModels() []any {
	return []any{
		&ClientModel{},
		&AdminExpenseModel{},
		&ExpenseDistributionModel{},
		&LedgerTransactionModel{},
	}
}
