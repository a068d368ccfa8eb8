package handler

import (
	expenseapp "github.com/finops/backend/internal/application/expense"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AllocationHandler exposes the allocation engine for previewing splits
type AllocationHandler struct {
	BaseHandler
}

// NewAllocationHandler creates a new AllocationHandler
func NewAllocationHandler() *AllocationHandler {
	return &AllocationHandler{}
}

// PreviewAllocationRequest asks how an amount splits by percentage
// @Description Request body for an allocation preview
type PreviewAllocationRequest struct {
	Amount      decimal.Decimal   `json:"amount" swaggertype:"string" example:"1000.00"`
	Percentages []decimal.Decimal `json:"percentages" binding:"required,min=1" swaggertype:"array,string"`
}

// EvenSplitRequest asks for an amount split into equal shares
// @Description Request body for an even split
type EvenSplitRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"100.00"`
	Shares int             `json:"shares" binding:"required,min=1,max=1000" example:"3"`
}

// Preview godoc
// @ID           previewAllocation
// @Summary      Preview an allocation
// @Description  Computes each share of amount for the given percentages. Incomplete splits return valid=false with the missing or excess difference.
// @Tags         allocation
// @Accept       json
// @Produce      json
// @Param        request body PreviewAllocationRequest true "Preview request"
// @Success      200 {object} APIResponse[expenseapp.PreviewResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /allocations/preview [post]
func (h *AllocationHandler) Preview(c *gin.Context) {
	var req PreviewAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	preview, err := expenseapp.PreviewAllocation(expenseapp.PreviewRequest{
		Amount:      req.Amount,
		Percentages: req.Percentages,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, preview)
}

// Even godoc
// @ID           evenAllocation
// @Summary      Split an amount evenly
// @Description  Splits amount into equal shares, each amount rounded to cents independently. Percentages add up to exactly 100.
// @Tags         allocation
// @Accept       json
// @Produce      json
// @Param        request body EvenSplitRequest true "Even split request"
// @Success      200 {object} APIResponse[[]expenseapp.ShareResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /allocations/even [post]
func (h *AllocationHandler) Even(c *gin.Context) {
	var req EvenSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	shares, err := expenseapp.EvenSplit(req.Amount, req.Shares)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shares)
}
