package handler

import (
	clientapp "github.com/finops/backend/internal/application/client"
	ledgerapp "github.com/finops/backend/internal/application/ledger"
	"github.com/finops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ClientHandler handles client API endpoints
type ClientHandler struct {
	BaseHandler
	clientService *clientapp.ClientService
	ledgerService *ledgerapp.LedgerService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *clientapp.ClientService, ledgerService *ledgerapp.LedgerService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		ledgerService: ledgerService,
	}
}

// CreateClientRequest represents a request to create a client
// @Description Request body for creating a client
type CreateClientRequest struct {
	Name  string `json:"name" binding:"required,max=120" example:"Acme Dental"`
	Email string `json:"email" binding:"omitempty,email,max=200" example:"billing@acme-dental.com"`
	Notes string `json:"notes" binding:"max=500" example:"Retainer since 2024"`
}

// ListClientsQuery holds the list filters for clients
type ListClientsQuery struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
}

// Create godoc
// @ID           createClient
// @Summary      Create a client
// @Description  Creates a client. Names are unique regardless of case.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body CreateClientRequest true "Client creation request"
// @Success      201 {object} APIResponse[clientapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), clientapp.CreateClientRequest{
		Name:  req.Name,
		Email: req.Email,
		Notes: req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, client)
}

// GetByID godoc
// @ID           getClientById
// @Summary      Get client by ID
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[clientapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id", "client")
	if !ok {
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// List godoc
// @ID           listClients
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Param        search    query string false "Search in name or email"
// @Param        status    query string false "Client status" Enums(active, inactive)
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]clientapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	var query ListClientsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	query.Normalize()

	clients, total, err := h.clientService.ListClients(c.Request.Context(), clientapp.ClientListFilter{
		Search:   query.Search,
		Status:   query.Status,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, clients, total, query.Page, query.PageSize)
}

// Deactivate godoc
// @ID           deactivateClient
// @Summary      Deactivate a client
// @Description  Inactive clients keep their history but receive no new distributions or transactions
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[clientapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id}/deactivate [post]
func (h *ClientHandler) Deactivate(c *gin.Context) {
	id, ok := h.parseID(c, "id", "client")
	if !ok {
		return
	}

	client, err := h.clientService.DeactivateClient(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// Summary godoc
// @ID           getClientSummary
// @Summary      Get a client's funding summary
// @Description  Returns funded, spent and balance totals from the client's ledger
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[ledger.ClientSummary]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id}/summary [get]
func (h *ClientHandler) Summary(c *gin.Context) {
	id, ok := h.parseID(c, "id", "client")
	if !ok {
		return
	}

	summary, err := h.ledgerService.GetClientSummary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}
