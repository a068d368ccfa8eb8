package handler

import (
	"context"
	"errors"
	"net/http"

	expenseapp "github.com/finops/backend/internal/application/expense"
	"github.com/finops/backend/internal/domain/allocation"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/interfaces/http/dto"
	"github.com/finops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID returns the ID assigned by the RequestID middleware, falling
// back to the incoming header when the middleware is not installed.
func getRequestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// parseID parses the named path parameter as a UUID, writing a 400 when it is not one
func (h *BaseHandler) parseID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.BadRequest(c, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError answers a failed ShouldBind with a 400 listing the offending fields
func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleDomainError converts domain errors to HTTP responses
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	domainErr, ok := shared.AsDomainError(err)
	if !ok {
		h.InternalError(c, "An unexpected error occurred")
		return
	}
	h.ErrorWithCode(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
}

// HandleError maps service errors to HTTP responses. Settlement and
// persistence failures get their own codes; everything else goes through
// HandleDomainError.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var mismatch *allocation.PercentageMismatchError
	if errors.As(err, &mismatch) {
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponseWithContext(
			dto.ErrCodePercentageMismatch,
			mismatch.Error(),
			getRequestID(c),
			map[string]string{
				"sum":        mismatch.Sum.StringFixed(2),
				"difference": mismatch.Difference.StringFixed(2),
			},
		))
		return
	}

	var reconcileErr *expenseapp.ReconcileError
	if errors.As(err, &reconcileErr) {
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			h.ErrorWithCode(c, dto.ErrCodeSettlementBusy,
				"Expense is being settled by another request, try again later")
		case shared.HasCode(err, shared.ErrConcurrencyConflict.Code):
			h.ErrorWithCode(c, dto.ErrCodeConcurrencyConflict,
				"Expense was modified concurrently, nothing was settled")
		default:
			h.ErrorWithCode(c, dto.ErrCodeReconcileFailed,
				"Settlement failed, nothing was settled")
		}
		return
	}

	var persistErr *expenseapp.PersistenceError
	if errors.As(err, &persistErr) {
		h.ErrorWithCode(c, dto.ErrCodePersistence, "Failed to save "+persistErr.Op+", nothing was stored")
		return
	}

	h.HandleDomainError(c, err)
}
