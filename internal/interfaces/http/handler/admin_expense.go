package handler

import (
	"time"

	expenseapp "github.com/finops/backend/internal/application/expense"
	"github.com/finops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// dateLayout is the calendar date format accepted by the API
const dateLayout = "2006-01-02"

// AdminExpenseHandler handles admin expense API endpoints
type AdminExpenseHandler struct {
	BaseHandler
	reconciler *expenseapp.ExpenseReconciler
	receipts   *expenseapp.ReceiptService
}

// NewAdminExpenseHandler creates a new AdminExpenseHandler
func NewAdminExpenseHandler(reconciler *expenseapp.ExpenseReconciler, receipts *expenseapp.ReceiptService) *AdminExpenseHandler {
	return &AdminExpenseHandler{
		reconciler: reconciler,
		receipts:   receipts,
	}
}

// DistributionInput is one client share of a new expense
// @Description Client share of an admin expense
type DistributionInput struct {
	ClientID   string          `json:"client_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Percentage decimal.Decimal `json:"percentage" swaggertype:"string" example:"33.33"`
}

// CreateAdminExpenseRequest represents a request to register an admin expense
// @Description Request body for creating an admin expense split across clients
type CreateAdminExpenseRequest struct {
	Concept       string              `json:"concept" binding:"required,max=200" example:"Office rent April"`
	Amount        decimal.Decimal     `json:"amount" swaggertype:"string" example:"1500.00"`
	Date          string              `json:"date" binding:"required,datetime=2006-01-02" example:"2025-04-01"`
	PaidBy        string              `json:"paid_by" binding:"required,oneof=shared company owner" example:"company"`
	Distributions []DistributionInput `json:"distributions" binding:"dive"`
}

// SettleDistributionsRequest selects the distributions to confirm as paid
// @Description Request body for confirming distribution payments
type SettleDistributionsRequest struct {
	DistributionIDs []string `json:"distribution_ids" binding:"required,min=1,dive,uuid"`
}

// ListAdminExpensesQuery holds the list filters for admin expenses
type ListAdminExpensesQuery struct {
	dto.ListRequest
	Status   string `form:"status" binding:"omitempty,oneof=pending paid"`
	PaidBy   string `form:"paid_by" binding:"omitempty,oneof=shared company owner"`
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
	FromDate string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate   string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
}

// ReceiptUploadRequest names the receipt file about to be uploaded
// @Description Request body for a receipt upload URL
type ReceiptUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255" example:"invoice-0425.pdf"`
	ContentType string `json:"content_type" binding:"max=100" example:"application/pdf"`
}

// Create godoc
// @ID           createAdminExpense
// @Summary      Create an admin expense
// @Description  Registers an expense and splits it across clients by percentage. Percentages must add up to 100.
// @Tags         admin-expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateAdminExpenseRequest true "Expense creation request"
// @Success      201 {object} APIResponse[expenseapp.ExpenseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin-expenses [post]
func (h *AdminExpenseHandler) Create(c *gin.Context) {
	var req CreateAdminExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	appReq := expenseapp.CreateExpenseRequest{
		Concept:       req.Concept,
		Amount:        req.Amount,
		Date:          date,
		PaidBy:        req.PaidBy,
		Distributions: make([]expenseapp.DistributionRequest, len(req.Distributions)),
	}
	for i, d := range req.Distributions {
		clientID, err := uuid.Parse(d.ClientID)
		if err != nil {
			h.BadRequest(c, "Invalid client ID format")
			return
		}
		appReq.Distributions[i] = expenseapp.DistributionRequest{ClientID: clientID, Percentage: d.Percentage}
	}

	expense, err := h.reconciler.CreateExpense(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, expense)
}

// GetByID godoc
// @ID           getAdminExpenseById
// @Summary      Get admin expense by ID
// @Description  Returns an admin expense with its distributions and paid/pending totals
// @Tags         admin-expenses
// @Produce      json
// @Param        id path string true "Expense ID" format(uuid)
// @Success      200 {object} APIResponse[expenseapp.ExpenseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin-expenses/{id} [get]
func (h *AdminExpenseHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id", "expense")
	if !ok {
		return
	}

	expense, err := h.reconciler.GetExpense(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, expense)
}

// List godoc
// @ID           listAdminExpenses
// @Summary      List admin expenses
// @Description  Lists admin expenses with filtering and pagination
// @Tags         admin-expenses
// @Produce      json
// @Param        search    query string false "Search in concept"
// @Param        status    query string false "Expense status" Enums(pending, paid)
// @Param        paid_by   query string false "Payer" Enums(shared, company, owner)
// @Param        client_id query string false "Only expenses split with this client" format(uuid)
// @Param        from_date query string false "Earliest expense date (YYYY-MM-DD)"
// @Param        to_date   query string false "Latest expense date (YYYY-MM-DD)"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20) maximum(100)
// @Param        order_by  query string false "Sort field" default(date)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]expenseapp.ExpenseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin-expenses [get]
func (h *AdminExpenseHandler) List(c *gin.Context) {
	var query ListAdminExpensesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	query.Normalize()

	filter := expenseapp.ExpenseListFilter{
		Search:   query.Search,
		Status:   query.Status,
		PaidBy:   query.PaidBy,
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.ClientID != "" {
		clientID := uuid.MustParse(query.ClientID)
		filter.ClientID = &clientID
	}
	filter.FromDate = parseDateParam(query.FromDate)
	filter.ToDate = parseDateParam(query.ToDate)

	expenses, total, err := h.reconciler.ListExpenses(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, expenses, total, filter.Page, filter.PageSize)
}

// Settle godoc
// @ID           settleAdminExpenseDistributions
// @Summary      Confirm distribution payments
// @Description  Marks the selected distributions as paid and records one ledger expense per settled share.
// @Description  Already-paid distributions are skipped. When nothing changes the outcome is "noop" with a warning.
// @Tags         admin-expenses
// @Accept       json
// @Produce      json
// @Param        id      path string                     true "Expense ID" format(uuid)
// @Param        request body SettleDistributionsRequest true "Distributions to settle"
// @Success      200 {object} APIResponse[expenseapp.SettlementResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin-expenses/{id}/settle [post]
func (h *AdminExpenseHandler) Settle(c *gin.Context) {
	id, ok := h.parseID(c, "id", "expense")
	if !ok {
		return
	}

	var req SettleDistributionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	ids := make([]uuid.UUID, len(req.DistributionIDs))
	for i, raw := range req.DistributionIDs {
		ids[i] = uuid.MustParse(raw)
	}

	result, err := h.reconciler.ConfirmDistributionsPaid(c.Request.Context(), id, ids)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// SettleAll godoc
// @ID           settleAdminExpense
// @Summary      Confirm every pending payment of an expense
// @Description  Settles all pending distributions of the expense. A fully paid expense yields a "noop" outcome.
// @Tags         admin-expenses
// @Produce      json
// @Param        id path string true "Expense ID" format(uuid)
// @Success      200 {object} APIResponse[expenseapp.SettlementResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin-expenses/{id}/settle-all [post]
func (h *AdminExpenseHandler) SettleAll(c *gin.Context) {
	id, ok := h.parseID(c, "id", "expense")
	if !ok {
		return
	}

	result, err := h.reconciler.ConfirmAllPaid(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ReceiptUploadURL godoc
// @ID           createAdminExpenseReceiptUploadUrl
// @Summary      Get a receipt upload URL
// @Description  Returns a presigned URL the client PUTs the receipt file to
// @Tags         admin-expenses
// @Accept       json
// @Produce      json
// @Param        id      path string               true "Expense ID" format(uuid)
// @Param        request body ReceiptUploadRequest true "Receipt file"
// @Success      200 {object} APIResponse[expenseapp.ReceiptURLResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin-expenses/{id}/receipts/upload-url [post]
func (h *AdminExpenseHandler) ReceiptUploadURL(c *gin.Context) {
	id, ok := h.parseID(c, "id", "expense")
	if !ok {
		return
	}

	var req ReceiptUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	url, err := h.receipts.UploadURL(c.Request.Context(), id, req.FileName, req.ContentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, url)
}

// ReceiptDownloadURL godoc
// @ID           getAdminExpenseReceiptDownloadUrl
// @Summary      Get a receipt download URL
// @Description  Returns a presigned URL for a receipt previously uploaded for the expense
// @Tags         admin-expenses
// @Produce      json
// @Param        id  path  string true "Expense ID" format(uuid)
// @Param        key query string true "Receipt object key"
// @Success      200 {object} APIResponse[expenseapp.ReceiptURLResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin-expenses/{id}/receipts/download-url [get]
func (h *AdminExpenseHandler) ReceiptDownloadURL(c *gin.Context) {
	id, ok := h.parseID(c, "id", "expense")
	if !ok {
		return
	}

	key := c.Query("key")
	if key == "" {
		h.BadRequest(c, "Receipt key is required")
		return
	}

	url, err := h.receipts.DownloadURL(c.Request.Context(), id, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, url)
}

// parseDateParam parses a date already checked by the binding's datetime rule
func parseDateParam(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil
	}
	return &t
}
