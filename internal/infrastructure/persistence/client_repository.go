package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finops/backend/internal/domain/client"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements client.Repository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Client %s not found", id))
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds the clients with the given IDs; unknown IDs are skipped
func (r *GormClientRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]client.Client, error) {
	if len(ids) == 0 {
		return []client.Client{}, nil
	}
	var clientModels []models.ClientModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&clientModels).Error; err != nil {
		return nil, err
	}
	return toClients(clientModels), nil
}

// FindAll finds clients with filtering, sorting and pagination
func (r *GormClientRepository) FindAll(ctx context.Context, filter client.Filter) ([]client.Client, error) {
	var clientModels []models.ClientModel
	query := r.db.WithContext(ctx).Model(&models.ClientModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	sortField := ValidateSortField(filter.OrderBy, ClientSortFields, "name")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	if filter.OrderBy == "" && filter.OrderDir == "" {
		sortOrder = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))
	query = applyPagination(query, filter.Filter)

	if err := query.Find(&clientModels).Error; err != nil {
		return nil, err
	}
	return toClients(clientModels), nil
}

// Count counts clients matching the filter
func (r *GormClientRepository) Count(ctx context.Context, filter client.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ClientModel{})
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByName checks for a client with the same name, ignoring case
func (r *GormClientRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, c *client.Client) error {
	model := models.ClientModelFromDomain(c)
	return r.db.WithContext(ctx).Save(model).Error
}

func (r *GormClientRepository) applyFilterWithoutPagination(query *gorm.DB, filter client.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", pattern, pattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

func toClients(clientModels []models.ClientModel) []client.Client {
	clients := make([]client.Client, len(clientModels))
	for i := range clientModels {
		clients[i] = *clientModels[i].ToDomain()
	}
	return clients
}

// Ensure GormClientRepository implements client.Repository
var _ client.Repository = (*GormClientRepository)(nil)
