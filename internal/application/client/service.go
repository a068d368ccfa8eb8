// Package client provides client management use cases.
package client

import (
	"context"
	"time"

	"github.com/finops/backend/internal/domain/client"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateClientRequest represents a request to create a client
type CreateClientRequest struct {
	Name  string
	Email string
	Notes string
}

// ClientListFilter defines filtering options for client list queries
type ClientListFilter struct {
	Search   string
	Status   string
	Page     int
	PageSize int
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// ClientService handles client operations
type ClientService struct {
	clientRepo client.Repository
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo client.Repository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// CreateClient creates a client with a unique name
func (s *ClientService) CreateClient(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	c, err := client.NewClient(req.Name, req.Email, req.Notes)
	if err != nil {
		return nil, err
	}
	exists, err := s.clientRepo.ExistsByName(ctx, c.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A client named "+c.Name+" already exists")
	}
	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := toClientResponse(c)
	return &resp, nil
}

// GetClient returns a client
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toClientResponse(c)
	return &resp, nil
}

// ListClients lists clients
func (s *ClientService) ListClients(ctx context.Context, filter ClientListFilter) ([]ClientResponse, int64, error) {
	domainFilter := client.Filter{}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		status := client.Status(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Status must be active or inactive")
		}
		domainFilter.Status = &status
	}

	clients, err := s.clientRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.clientRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = toClientResponse(&clients[i])
	}
	return out, total, nil
}

// DeactivateClient stops a client from receiving new distributions
func (s *ClientService) DeactivateClient(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := toClientResponse(c)
	return &resp, nil
}

func toClientResponse(c *client.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Notes:     c.Notes,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}
