package router

import (
	"github.com/finops/backend/internal/interfaces/http/handler"
)

// Handlers are the API handlers mounted under the versioned prefix
type Handlers struct {
	Expenses   *handler.AdminExpenseHandler
	Allocation *handler.AllocationHandler
	Clients    *handler.ClientHandler
	Ledger     *handler.LedgerHandler
	System     *handler.SystemHandler
}

// RegisterAPI registers every finops domain group on r
func RegisterAPI(r *Router, h Handlers) {
	expenses := NewDomainGroup("admin-expenses", "/admin-expenses")
	expenses.POST("", h.Expenses.Create)
	expenses.GET("", h.Expenses.List)
	expenses.GET("/:id", h.Expenses.GetByID)
	expenses.POST("/:id/settle", h.Expenses.Settle)
	expenses.POST("/:id/settle-all", h.Expenses.SettleAll)
	receipts := expenses.Group("receipts", "/:id/receipts")
	receipts.POST("/upload-url", h.Expenses.ReceiptUploadURL)
	receipts.GET("/download-url", h.Expenses.ReceiptDownloadURL)
	r.Register(expenses)

	allocation := NewDomainGroup("allocation", "/allocations")
	allocation.POST("/preview", h.Allocation.Preview)
	allocation.POST("/even", h.Allocation.Even)
	r.Register(allocation)

	clients := NewDomainGroup("clients", "/clients")
	clients.POST("", h.Clients.Create)
	clients.GET("", h.Clients.List)
	clients.GET("/:id", h.Clients.GetByID)
	clients.GET("/:id/summary", h.Clients.Summary)
	clients.POST("/:id/deactivate", h.Clients.Deactivate)
	r.Register(clients)

	ledger := NewDomainGroup("ledger", "/ledger")
	ledger.POST("/transactions", h.Ledger.Record)
	ledger.GET("/transactions", h.Ledger.List)
	ledger.GET("/transactions/:id", h.Ledger.GetByID)
	r.Register(ledger)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)
	r.Register(system)
}
