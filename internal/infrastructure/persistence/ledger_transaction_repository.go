package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/finops/backend/internal/domain/ledger"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerRepository implements ledger.Repository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.LedgerTransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Ledger transaction %s not found", id))
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds transactions with filtering, sorting and pagination
func (r *GormLedgerRepository) FindAll(ctx context.Context, filter ledger.Filter) ([]ledger.Transaction, error) {
	var txModels []models.LedgerTransactionModel
	query := r.db.WithContext(ctx).Model(&models.LedgerTransactionModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	sortField := ValidateSortField(filter.OrderBy, LedgerTransactionSortFields, "date")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder)).Order("id ASC")
	query = applyPagination(query, filter.Filter)

	if err := query.Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toLedgerTransactions(txModels), nil
}

// Count counts transactions matching the filter
func (r *GormLedgerRepository) Count(ctx context.Context, filter ledger.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.LedgerTransactionModel{})
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByExpense returns the settlement rows produced by one expense
func (r *GormLedgerRepository) FindByExpense(ctx context.Context, expenseID uuid.UUID) ([]ledger.Transaction, error) {
	var txModels []models.LedgerTransactionModel
	if err := r.db.WithContext(ctx).
		Where("source_expense_id = ?", expenseID).
		Order("created_at ASC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toLedgerTransactions(txModels), nil
}

// ExistsForDistribution reports whether a settlement row already exists
func (r *GormLedgerRepository) ExistsForDistribution(ctx context.Context, distributionID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.LedgerTransactionModel{}).
		Where("source_distribution_id = ?", distributionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// typeTotal is one row of the per-type aggregation
type typeTotal struct {
	Type  ledger.TransactionType
	Total decimal.Decimal
	Count int64
}

// TotalsForClient sums a client's transactions by type
func (r *GormLedgerRepository) TotalsForClient(ctx context.Context, clientID uuid.UUID) (ledger.Totals, error) {
	var rows []typeTotal
	if err := r.db.WithContext(ctx).Model(&models.LedgerTransactionModel{}).
		Select("type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("client_id = ?", clientID).
		Group("type").
		Scan(&rows).Error; err != nil {
		return ledger.Totals{}, err
	}

	totals := ledger.Totals{
		Funding: decimal.Zero,
		Expense: decimal.Zero,
		Lead:    decimal.Zero,
	}
	for _, row := range rows {
		switch row.Type {
		case ledger.TypeFunding:
			totals.Funding = row.Total
		case ledger.TypeExpense:
			totals.Expense = row.Total
		case ledger.TypeLead:
			totals.Lead = row.Total
		}
		totals.Count += row.Count
	}
	return totals, nil
}

// Save appends a transaction
func (r *GormLedgerRepository) Save(ctx context.Context, tx *ledger.Transaction) error {
	model := models.LedgerTransactionModelFromDomain(tx)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveBatch appends several transactions in one statement
func (r *GormLedgerRepository) SaveBatch(ctx context.Context, txs []*ledger.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	txModels := make([]*models.LedgerTransactionModel, len(txs))
	for i, tx := range txs {
		txModels[i] = models.LedgerTransactionModelFromDomain(tx)
	}
	return r.db.WithContext(ctx).Create(&txModels).Error
}

func (r *GormLedgerRepository) applyFilterWithoutPagination(query *gorm.DB, filter ledger.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(notes) LIKE ?", likePattern(filter.Search))
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	return query
}

func toLedgerTransactions(txModels []models.LedgerTransactionModel) []ledger.Transaction {
	txs := make([]ledger.Transaction, len(txModels))
	for i := range txModels {
		txs[i] = *txModels[i].ToDomain()
	}
	return txs
}

// Ensure GormLedgerRepository implements ledger.Repository
var _ ledger.Repository = (*GormLedgerRepository)(nil)
