// Package ledger provides ledger recording, listing and client summaries.
package ledger

import (
	"context"
	"time"

	"github.com/finops/backend/internal/domain/client"
	"github.com/finops/backend/internal/domain/ledger"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SummaryCache stores computed client summaries keyed by client ID
type SummaryCache interface {
	Get(ctx context.Context, clientID uuid.UUID) (*ledger.ClientSummary, bool, error)
	Set(ctx context.Context, summary ledger.ClientSummary) error
	Invalidate(ctx context.Context, clientIDs ...uuid.UUID) error
}

// RecordTransactionRequest represents a request to record a funding or lead transaction
type RecordTransactionRequest struct {
	ClientID uuid.UUID
	Type     string
	Amount   decimal.Decimal
	Date     time.Time
	Category string
	Notes    string
}

// TransactionListFilter defines filtering options for ledger list queries
type TransactionListFilter struct {
	ClientID *uuid.UUID
	Type     string
	Category string
	FromDate *time.Time
	ToDate   *time.Time
	OrderBy  string
	OrderDir string
	Page     int
	PageSize int
}

// TransactionResponse represents a ledger transaction in API responses
type TransactionResponse struct {
	ID                   uuid.UUID       `json:"id"`
	ClientID             uuid.UUID       `json:"client_id"`
	Type                 string          `json:"type"`
	Amount               decimal.Decimal `json:"amount"`
	Date                 time.Time       `json:"date"`
	Notes                string          `json:"notes,omitempty"`
	Category             string          `json:"category"`
	SourceExpenseID      *uuid.UUID      `json:"source_expense_id,omitempty"`
	SourceDistributionID *uuid.UUID      `json:"source_distribution_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// LedgerService handles ledger operations
type LedgerService struct {
	ledgerRepo     ledger.Repository
	clientRepo     client.Repository
	cache          SummaryCache
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	group          singleflight.Group
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(ledgerRepo ledger.Repository, clientRepo client.Repository) *LedgerService {
	return &LedgerService{
		ledgerRepo: ledgerRepo,
		clientRepo: clientRepo,
		logger:     zap.NewNop(),
	}
}

// SetSummaryCache enables summary caching
func (s *LedgerService) SetSummaryCache(cache SummaryCache) {
	s.cache = cache
}

// SetEventPublisher sets the event publisher
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLogger sets the logger
func (s *LedgerService) SetLogger(logger *zap.Logger) {
	s.logger = logger.Named("ledger")
}

// RecordTransaction appends a funding or lead transaction. Expense rows are
// only produced by settling admin-expense distributions.
func (s *LedgerService) RecordTransaction(ctx context.Context, req RecordTransactionRequest) (*TransactionResponse, error) {
	txType := ledger.TransactionType(req.Type)
	if txType == ledger.TypeExpense {
		return nil, shared.NewDomainError("INVALID_TYPE", "Expense transactions are created by settling admin expenses")
	}
	category := ledger.Category(req.Category)
	if req.Category == "" {
		category = defaultCategory(txType)
	}

	c, err := s.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !c.IsActive() {
		return nil, shared.NewDomainError("CLIENT_INACTIVE", "Client "+c.Name+" is inactive")
	}

	tx, err := ledger.NewTransaction(req.ClientID, txType, req.Amount, req.Date, category, req.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.ledgerRepo.Save(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("Ledger transaction recorded",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("client_id", tx.ClientID.String()),
		zap.String("type", tx.Type.String()),
		zap.String("amount", tx.Amount.String()),
	)

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, tx.GetDomainEvents()...); err != nil {
			s.logger.Warn("Failed to publish ledger events", zap.Error(err))
		}
	} else if s.cache != nil {
		_ = s.cache.Invalidate(ctx, tx.ClientID)
	}
	tx.ClearDomainEvents()

	resp := toTransactionResponse(tx)
	return &resp, nil
}

func defaultCategory(t ledger.TransactionType) ledger.Category {
	switch t {
	case ledger.TypeFunding:
		return ledger.CategoryDeposit
	case ledger.TypeLead:
		return ledger.CategoryLeads
	default:
		return ledger.CategoryOther
	}
}

// GetTransaction returns a single transaction
func (s *LedgerService) GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.ledgerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toTransactionResponse(tx)
	return &resp, nil
}

// ListTransactions lists ledger transactions
func (s *LedgerService) ListTransactions(ctx context.Context, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	domainFilter := ledger.Filter{
		ClientID: filter.ClientID,
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.OrderBy = filter.OrderBy
	domainFilter.OrderDir = filter.OrderDir

	if filter.Type != "" {
		t := ledger.TransactionType(filter.Type)
		if !t.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_TYPE", "Transaction type must be one of funding, expense, lead")
		}
		domainFilter.Type = &t
	}
	if filter.Category != "" {
		c := ledger.Category(filter.Category)
		if !c.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_CATEGORY", "Transaction category is not valid")
		}
		domainFilter.Category = &c
	}

	txs, err := s.ledgerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.ledgerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TransactionResponse, len(txs))
	for i := range txs {
		responses[i] = toTransactionResponse(&txs[i])
	}
	return responses, total, nil
}

// GetClientSummary returns the client's funded, spent and balance figures.
// Concurrent misses for the same client share one database read.
func (s *LedgerService) GetClientSummary(ctx context.Context, clientID uuid.UUID) (*ledger.ClientSummary, error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, clientID); err == nil && ok {
			return cached, nil
		} else if err != nil {
			s.logger.Warn("Summary cache read failed", zap.String("client_id", clientID.String()), zap.Error(err))
		}
	}

	v, err, _ := s.group.Do(clientID.String(), func() (any, error) {
		if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
			return nil, err
		}
		totals, err := s.ledgerRepo.TotalsForClient(ctx, clientID)
		if err != nil {
			return nil, err
		}
		summary := ledger.NewClientSummary(clientID, totals)
		if s.cache != nil {
			if err := s.cache.Set(ctx, summary); err != nil {
				s.logger.Warn("Summary cache write failed", zap.String("client_id", clientID.String()), zap.Error(err))
			}
		}
		return &summary, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ledger.ClientSummary), nil
}

func toTransactionResponse(t *ledger.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                   t.ID,
		ClientID:             t.ClientID,
		Type:                 t.Type.String(),
		Amount:               t.Amount,
		Date:                 t.Date,
		Notes:                t.Notes,
		Category:             t.Category.String(),
		SourceExpenseID:      t.SourceExpenseID,
		SourceDistributionID: t.SourceDistributionID,
		CreatedAt:            t.CreatedAt,
	}
}
