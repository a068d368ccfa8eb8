package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	clientapp "github.com/finops/backend/internal/application/client"
	expenseapp "github.com/finops/backend/internal/application/expense"
	ledgerapp "github.com/finops/backend/internal/application/ledger"
	"github.com/finops/backend/internal/infrastructure/persistence"
	"github.com/finops/backend/internal/infrastructure/persistence/models"
	"github.com/finops/backend/internal/interfaces/http/dto"
	"github.com/finops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// fakeReceiptStorage presigns URLs without talking to S3
type fakeReceiptStorage struct {
	mu      sync.Mutex
	objects map[string]bool
}

func newFakeReceiptStorage() *fakeReceiptStorage {
	return &fakeReceiptStorage{objects: make(map[string]bool)}
}

func (s *fakeReceiptStorage) GenerateUploadURL(_ context.Context, key, _ string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://receipts.test/put/" + key, time.Now().Add(expiresIn), nil
}

func (s *fakeReceiptStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://receipts.test/get/" + key, time.Now().Add(expiresIn), nil
}

func (s *fakeReceiptStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[key], nil
}

func (s *fakeReceiptStorage) put(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = true
}

type testEnv struct {
	engine  *gin.Engine
	storage *fakeReceiptStorage
}

// newTestEnv serves the finops API over an in-memory SQLite database
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	clientRepo := persistence.NewGormClientRepository(db)
	expenseRepo := persistence.NewGormAdminExpenseRepository(db)
	ledgerRepo := persistence.NewGormLedgerRepository(db)

	storage := newFakeReceiptStorage()
	reconciler := expenseapp.NewExpenseReconciler(expenseRepo, clientRepo, persistence.NewGormTransactionScope(db))
	ledgerService := ledgerapp.NewLedgerService(ledgerRepo, clientRepo)

	expenses := NewAdminExpenseHandler(reconciler, expenseapp.NewReceiptService(expenseRepo, storage, time.Minute))
	allocation := NewAllocationHandler()
	clients := NewClientHandler(clientapp.NewClientService(clientRepo), ledgerService)
	ledgerHandler := NewLedgerHandler(ledgerService)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	api.POST("/admin-expenses", expenses.Create)
	api.GET("/admin-expenses", expenses.List)
	api.GET("/admin-expenses/:id", expenses.GetByID)
	api.POST("/admin-expenses/:id/settle", expenses.Settle)
	api.POST("/admin-expenses/:id/settle-all", expenses.SettleAll)
	api.POST("/admin-expenses/:id/receipts/upload-url", expenses.ReceiptUploadURL)
	api.GET("/admin-expenses/:id/receipts/download-url", expenses.ReceiptDownloadURL)
	api.POST("/allocations/preview", allocation.Preview)
	api.POST("/allocations/even", allocation.Even)
	api.POST("/clients", clients.Create)
	api.GET("/clients", clients.List)
	api.GET("/clients/:id", clients.GetByID)
	api.GET("/clients/:id/summary", clients.Summary)
	api.POST("/clients/:id/deactivate", clients.Deactivate)
	api.POST("/ledger/transactions", ledgerHandler.Record)
	api.GET("/ledger/transactions", ledgerHandler.List)
	api.GET("/ledger/transactions/:id", ledgerHandler.GetByID)

	return &testEnv{engine: engine, storage: storage}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data of a success envelope
func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp APIResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.True(t, resp.Success, w.Body.String())
	return resp.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func decodeMeta(t *testing.T, w *httptest.ResponseRecorder) *dto.Meta {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	return resp.Meta
}

func (e *testEnv) createClient(t *testing.T, name string) clientapp.ClientResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/clients", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[clientapp.ClientResponse](t, w)
}

type split struct {
	client     clientapp.ClientResponse
	percentage string
}

func (e *testEnv) createExpense(t *testing.T, amount string, splits ...split) *httptest.ResponseRecorder {
	t.Helper()
	dists := make([]map[string]any, len(splits))
	for i, s := range splits {
		dists[i] = map[string]any{"client_id": s.client.ID.String(), "percentage": s.percentage}
	}
	return e.do(t, http.MethodPost, "/api/v1/admin-expenses", map[string]any{
		"concept":       "Office rent April",
		"amount":        amount,
		"date":          "2025-04-01",
		"paid_by":       "company",
		"distributions": dists,
	})
}
