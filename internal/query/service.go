// Package query serves the read-only views: stock records by id/variant/sku,
// paginated listings, ledger searches, and the ledger replay audit. Reads
// never mutate state; for a given stock record entries come back in
// insertion order.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inventory-ledger-service/internal/cache"
	"inventory-ledger-service/internal/domain"
	"inventory-ledger-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditReport compares a record's stored counters with the fold of its
// ledger entries.
type AuditReport struct {
	StockRecordID    uuid.UUID `json:"stock_record_id"`
	StoredStock      int       `json:"stored_stock"`
	StoredReserved   int       `json:"stored_reserved"`
	ReplayedStock    int       `json:"replayed_stock"`
	ReplayedReserved int       `json:"replayed_reserved"`
	EntryCount       int       `json:"entry_count"`
	Consistent       bool      `json:"consistent"`
}

// Service is the read side of the inventory ledger.
type Service struct {
	stocks   repository.StockRepository
	ledger   repository.LedgerRepository
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewService creates a query service. The cache may be nil to disable
// read caching.
func NewService(stocks repository.StockRepository, ledger repository.LedgerRepository, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		stocks:   stocks,
		ledger:   ledger,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// GetByID returns a stock record by its id.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.StockRecord, error) {
	return s.cached(ctx, recordKey("id", id.String()), func() (*domain.StockRecord, error) {
		return s.stocks.FindByID(ctx, id)
	})
}

// GetByVariantID returns the stock record of a variant.
func (s *Service) GetByVariantID(ctx context.Context, variantID uuid.UUID) (*domain.StockRecord, error) {
	return s.cached(ctx, recordKey("variant", variantID.String()), func() (*domain.StockRecord, error) {
		return s.stocks.FindByVariantID(ctx, variantID)
	})
}

// GetBySKU returns a stock record by SKU.
func (s *Service) GetBySKU(ctx context.Context, sku string) (*domain.StockRecord, error) {
	return s.cached(ctx, recordKey("sku", sku), func() (*domain.StockRecord, error) {
		return s.stocks.FindBySKU(ctx, sku)
	})
}

// List returns a page of stock records with the total count.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]domain.StockRecord, int, error) {
	return s.stocks.List(ctx, page, pageSize)
}

// ListTransactions searches the ledger. Entries for a single record are
// returned in insertion order.
func (s *Service) ListTransactions(ctx context.Context, filter repository.LedgerFilter) ([]domain.LedgerEntry, int, error) {
	return s.ledger.Search(ctx, filter)
}

// TransactionsByReference returns every entry correlated with an external
// reference, e.g. an order id.
func (s *Service) TransactionsByReference(ctx context.Context, reference string) ([]domain.LedgerEntry, error) {
	return s.ledger.FindByReference(ctx, reference)
}

// Audit replays the full ledger of a record and reports whether the fold
// reproduces the stored counters.
func (s *Service) Audit(ctx context.Context, id uuid.UUID) (*AuditReport, error) {
	record, err := s.stocks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, _, err := s.ledger.FindByStockRecordID(ctx, id, 0, 0)
	if err != nil {
		return nil, err
	}

	stock, reserved := domain.Replay(entries)
	return &AuditReport{
		StockRecordID:    record.ID,
		StoredStock:      record.StockQuantity,
		StoredReserved:   record.ReservedQuantity,
		ReplayedStock:    stock,
		ReplayedReserved: reserved,
		EntryCount:       len(entries),
		Consistent:       stock == record.StockQuantity && reserved == record.ReservedQuantity,
	}, nil
}

// InvalidateRecord drops every cached view of a record. Satisfies
// engine.Invalidator.
func (s *Service) InvalidateRecord(ctx context.Context, record *domain.StockRecord) {
	if s.cache == nil {
		return
	}
	keys := []string{
		recordKey("id", record.ID.String()),
		recordKey("variant", record.VariantID.String()),
	}
	if record.SKU != "" {
		keys = append(keys, recordKey("sku", record.SKU))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("Failed to invalidate cached record",
			zap.String("stock_record_id", record.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) cached(ctx context.Context, key string, load func() (*domain.StockRecord, error)) (*domain.StockRecord, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var record domain.StockRecord
			if err := json.Unmarshal(data, &record); err == nil {
				return &record, nil
			}
			// Corrupt cache entry; fall through to the repository.
		}
	}

	record, err := load()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(record); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
				s.logger.Warn("Failed to cache record", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return record, nil
}

func recordKey(kind, value string) string {
	return fmt.Sprintf("stock:%s:%s", kind, value)
}
