package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/finops/backend/internal/domain/expense"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAdminExpenseRepository implements expense.Repository using GORM
type GormAdminExpenseRepository struct {
	db *gorm.DB
}

// NewGormAdminExpenseRepository creates a new GormAdminExpenseRepository
func NewGormAdminExpenseRepository(db *gorm.DB) *GormAdminExpenseRepository {
	return &GormAdminExpenseRepository{db: db}
}

func preloadDistributions(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// FindByID finds an expense by its ID together with its distributions
func (r *GormAdminExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.AdminExpense, error) {
	var model models.AdminExpenseModel
	if err := r.db.WithContext(ctx).
		Preload("Distributions", preloadDistributions).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Admin expense %s not found", id))
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds expenses with filtering, sorting and pagination
func (r *GormAdminExpenseRepository) FindAll(ctx context.Context, filter expense.Filter) ([]expense.AdminExpense, error) {
	var expenseModels []models.AdminExpenseModel
	query := r.db.WithContext(ctx).Model(&models.AdminExpenseModel{}).
		Preload("Distributions", preloadDistributions)
	query = r.applyFilter(query, filter)

	if err := query.Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	expenses := make([]expense.AdminExpense, len(expenseModels))
	for i := range expenseModels {
		expenses[i] = *expenseModels[i].ToDomain()
	}
	return expenses, nil
}

// Count counts expenses matching the filter
func (r *GormAdminExpenseRepository) Count(ctx context.Context, filter expense.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.AdminExpenseModel{})
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindDistributions loads the distributions of one expense
func (r *GormAdminExpenseRepository) FindDistributions(ctx context.Context, expenseID uuid.UUID) ([]expense.ExpenseDistribution, error) {
	var distModels []models.ExpenseDistributionModel
	if err := preloadDistributions(r.db.WithContext(ctx)).
		Where("expense_id = ?", expenseID).
		Find(&distModels).Error; err != nil {
		return nil, err
	}
	distributions := make([]expense.ExpenseDistribution, len(distModels))
	for i := range distModels {
		distributions[i] = *distModels[i].ToDomain()
	}
	return distributions, nil
}

// Save creates or updates the expense row
func (r *GormAdminExpenseRepository) Save(ctx context.Context, e *expense.AdminExpense) error {
	model := models.AdminExpenseModelFromDomain(e)
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(model).Error
}

// SaveWithLock updates the expense row with optimistic locking.
// The aggregate has already incremented its version, so the stored row must
// still carry the previous one.
func (r *GormAdminExpenseRepository) SaveWithLock(ctx context.Context, e *expense.AdminExpense) error {
	expectedVersion := e.GetVersion() - 1
	result := r.db.WithContext(ctx).
		Model(&models.AdminExpenseModel{}).
		Where("id = ? AND version = ?", e.ID, expectedVersion).
		Updates(map[string]any{
			"concept":    e.Concept,
			"amount":     e.Amount,
			"date":       e.Date,
			"paid_by":    e.PaidBy,
			"status":     e.Status,
			"paid_at":    e.PaidAt,
			"version":    e.Version,
			"updated_at": e.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "Admin expense has been modified by another process")
	}
	return nil
}

// SaveDistributions inserts new distributions and updates the settlement
// state of existing ones. Percentage, amount and client never change after
// creation.
func (r *GormAdminExpenseRepository) SaveDistributions(ctx context.Context, distributions []expense.ExpenseDistribution) error {
	if len(distributions) == 0 {
		return nil
	}
	distModels := make([]*models.ExpenseDistributionModel, len(distributions))
	for i := range distributions {
		distModels[i] = models.ExpenseDistributionModelFromDomain(&distributions[i])
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "paid_at", "updated_at"}),
		}).
		Create(&distModels).Error
}

// applyFilter applies filter conditions, sorting and pagination to query
func (r *GormAdminExpenseRepository) applyFilter(query *gorm.DB, filter expense.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, AdminExpenseSortFields, "date")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder)).Order("id ASC")

	return applyPagination(query, filter.Filter)
}

// applyFilterWithoutPagination applies filter conditions without pagination
func (r *GormAdminExpenseRepository) applyFilterWithoutPagination(query *gorm.DB, filter expense.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(concept) LIKE ?", likePattern(filter.Search))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaidBy != nil {
		query = query.Where("paid_by = ?", *filter.PaidBy)
	}
	if filter.ClientID != nil {
		sub := r.db.Model(&models.ExpenseDistributionModel{}).
			Select("expense_id").
			Where("client_id = ?", *filter.ClientID)
		query = query.Where("id IN (?)", sub)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	return query
}

// Ensure GormAdminExpenseRepository implements expense.Repository
var _ expense.Repository = (*GormAdminExpenseRepository)(nil)
