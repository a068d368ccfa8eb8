// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel)
// - expense.go: Admin expenses and their per-client distributions
// - ledger.go: Client ledger transactions
// - client.go: Clients
package models
