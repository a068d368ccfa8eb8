package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	expenseapp "github.com/finops/backend/internal/application/expense"
	"github.com/finops/backend/internal/domain/allocation"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/interfaces/http/dto"
	"github.com/finops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name: "from middleware",
			setup: func(c *gin.Context) {
				c.Set(middleware.RequestIDKey, "ctx-request-id")
			},
			expectedID: "ctx-request-id",
		},
		{
			name: "from header when middleware absent",
			setup: func(c *gin.Context) {
				c.Request.Header.Set(middleware.RequestIDHeader, "header-request-id")
			},
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "middleware takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(middleware.RequestIDKey, "ctx-id")
				c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(c)

			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandlerHandleError(t *testing.T) {
	expenseID := uuid.New()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "domain not found",
			err:            shared.NewDomainError("NOT_FOUND", "Admin expense not found"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
		},
		{
			name:           "wrapped domain error",
			err:            fmt.Errorf("create: %w", shared.NewDomainError("NO_DISTRIBUTIONS", "none")),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   dto.ErrCodeNoDistributions,
		},
		{
			name:           "percentage mismatch",
			err:            &allocation.PercentageMismatchError{Sum: decimal.NewFromInt(90), Difference: decimal.NewFromInt(10)},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   dto.ErrCodePercentageMismatch,
		},
		{
			name:           "lock timeout",
			err:            &expenseapp.ReconcileError{ExpenseID: expenseID, Err: context.DeadlineExceeded},
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   dto.ErrCodeSettlementBusy,
		},
		{
			name:           "version conflict",
			err:            &expenseapp.ReconcileError{ExpenseID: expenseID, Err: shared.ErrConcurrencyConflict},
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeConcurrencyConflict,
		},
		{
			name:           "aborted settlement",
			err:            &expenseapp.ReconcileError{ExpenseID: expenseID, Err: errors.New("disk I/O error")},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrCodeReconcileFailed,
		},
		{
			name:           "persistence failure",
			err:            &expenseapp.PersistenceError{Op: "create expense", Err: errors.New("connection reset")},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrCodePersistence,
		},
		{
			name:           "storage disabled",
			err:            shared.NewDomainError("STORAGE_DISABLED", "Receipt storage is not configured"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   dto.ErrCodeStorageDisabled,
		},
		{
			name:           "unknown error",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
			c.Set(middleware.RequestIDKey, "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			info := decodeError(t, w)
			assert.Equal(t, tt.expectedCode, info.Code)
			assert.Equal(t, "req-1", info.RequestID)
			assert.Len(t, c.Errors, 1)
		})
	}
}

func TestBaseHandlerHandleError_Nil(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.HandleError(c, nil)

	assert.False(t, c.Writer.Written())
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.SuccessWithMeta(c, []string{"a", "b"}, 45, 2, 20)

	assert.Equal(t, http.StatusOK, w.Code)
	meta := decodeMeta(t, w)
	assert.Equal(t, int64(45), meta.Total)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 3, meta.TotalPages)
}
