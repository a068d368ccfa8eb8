package handler

import (
	"time"

	ledgerapp "github.com/finops/backend/internal/application/ledger"
	"github.com/finops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerHandler handles ledger transaction API endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService *ledgerapp.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *ledgerapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// RecordTransactionRequest represents a funding or lead transaction to record
// @Description Request body for recording a ledger transaction. Expense rows come from settlements only.
type RecordTransactionRequest struct {
	ClientID string          `json:"client_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Type     string          `json:"type" binding:"required,oneof=funding lead" example:"funding"`
	Amount   decimal.Decimal `json:"amount" swaggertype:"string" example:"2500.00"`
	Date     string          `json:"date" binding:"required,datetime=2006-01-02" example:"2025-04-03"`
	Category string          `json:"category" binding:"omitempty,oneof=admin advertising leads deposit other" example:"deposit"`
	Notes    string          `json:"notes" binding:"max=500" example:"Q2 retainer"`
}

// ListTransactionsQuery holds the list filters for ledger transactions
type ListTransactionsQuery struct {
	dto.ListRequest
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
	Type     string `form:"type" binding:"omitempty,oneof=funding expense lead"`
	Category string `form:"category" binding:"omitempty,oneof=admin advertising leads deposit other"`
	FromDate string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate   string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
}

// Record godoc
// @ID           recordLedgerTransaction
// @Summary      Record a ledger transaction
// @Description  Appends a funding or lead transaction for an active client
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        request body RecordTransactionRequest true "Transaction"
// @Success      201 {object} APIResponse[ledgerapp.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/transactions [post]
func (h *LedgerHandler) Record(c *gin.Context) {
	var req RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	tx, err := h.ledgerService.RecordTransaction(c.Request.Context(), ledgerapp.RecordTransactionRequest{
		ClientID: uuid.MustParse(req.ClientID),
		Type:     req.Type,
		Amount:   req.Amount,
		Date:     date,
		Category: req.Category,
		Notes:    req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, tx)
}

// GetByID godoc
// @ID           getLedgerTransactionById
// @Summary      Get ledger transaction by ID
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} APIResponse[ledgerapp.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/transactions/{id} [get]
func (h *LedgerHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id", "transaction")
	if !ok {
		return
	}

	tx, err := h.ledgerService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tx)
}

// List godoc
// @ID           listLedgerTransactions
// @Summary      List ledger transactions
// @Tags         ledger
// @Produce      json
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        type      query string false "Transaction type" Enums(funding, expense, lead)
// @Param        category  query string false "Category" Enums(admin, advertising, leads, deposit, other)
// @Param        from_date query string false "Earliest date (YYYY-MM-DD)"
// @Param        to_date   query string false "Latest date (YYYY-MM-DD)"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20) maximum(100)
// @Param        order_by  query string false "Sort field" default(date)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]ledgerapp.TransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/transactions [get]
func (h *LedgerHandler) List(c *gin.Context) {
	var query ListTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}
	query.Normalize()

	filter := ledgerapp.TransactionListFilter{
		Type:     query.Type,
		Category: query.Category,
		FromDate: parseDateParam(query.FromDate),
		ToDate:   parseDateParam(query.ToDate),
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.ClientID != "" {
		clientID := uuid.MustParse(query.ClientID)
		filter.ClientID = &clientID
	}

	txs, total, err := h.ledgerService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, txs, total, filter.Page, filter.PageSize)
}
