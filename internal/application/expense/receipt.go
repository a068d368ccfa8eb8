package expense

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/finops/backend/internal/domain/expense"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultReceiptURLExpiry is how long presigned receipt URLs stay valid
const DefaultReceiptURLExpiry = 15 * time.Minute

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ReceiptStorage generates presigned URLs for receipt objects
type ReceiptStorage interface {
	GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	ObjectExists(ctx context.Context, key string) (bool, error)
}

// ReceiptURLResponse is a presigned receipt URL
type ReceiptURLResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ReceiptService hands out presigned URLs for expense receipts
type ReceiptService struct {
	expenseRepo expense.Repository
	storage     ReceiptStorage
	expiry      time.Duration
}

// NewReceiptService creates a new ReceiptService. A nil storage disables receipts.
func NewReceiptService(expenseRepo expense.Repository, storage ReceiptStorage, expiry time.Duration) *ReceiptService {
	if expiry <= 0 {
		expiry = DefaultReceiptURLExpiry
	}
	return &ReceiptService{expenseRepo: expenseRepo, storage: storage, expiry: expiry}
}

// ReceiptPrefix returns the key prefix under which an expense's receipts live
func ReceiptPrefix(expenseID uuid.UUID) string {
	return "receipts/" + expenseID.String() + "/"
}

// UploadURL returns a presigned PUT URL for a new receipt of the expense
func (s *ReceiptService) UploadURL(ctx context.Context, expenseID uuid.UUID, fileName, contentType string) (*ReceiptURLResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Receipt storage is not configured")
	}
	name := sanitizeFileName(fileName)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "File name is required")
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}
	if _, err := s.expenseRepo.FindByID(ctx, expenseID); err != nil {
		return nil, err
	}

	key := ReceiptPrefix(expenseID) + uuid.NewString() + "-" + name
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("generate receipt upload url: %w", err)
	}
	return &ReceiptURLResponse{Key: key, URL: url, ExpiresAt: expiresAt}, nil
}

// DownloadURL returns a presigned GET URL for an existing receipt of the expense
func (s *ReceiptService) DownloadURL(ctx context.Context, expenseID uuid.UUID, key string) (*ReceiptURLResponse, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Receipt storage is not configured")
	}
	if !strings.HasPrefix(key, ReceiptPrefix(expenseID)) || strings.Contains(key, "..") {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receipt key does not belong to this expense")
	}
	exists, err := s.storage.ObjectExists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check receipt: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError("NOT_FOUND", "Receipt not found")
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("generate receipt download url: %w", err)
	}
	return &ReceiptURLResponse{Key: key, URL: url, ExpiresAt: expiresAt}, nil
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	name = unsafeFileChars.ReplaceAllString(name, "_")
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return name
}
