package client

import (
	"context"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter defines filtering options for client queries
type Filter struct {
	shared.Filter
	Status *Status
}

// Repository persists clients
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Client, error)
	FindAll(ctx context.Context, filter Filter) ([]Client, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Save(ctx context.Context, client *Client) error
}
