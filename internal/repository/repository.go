package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"inventory-ledger-service/internal/domain"

	"github.com/google/uuid"
)

// LedgerFilter narrows a ledger search. Zero values mean "no constraint".
type LedgerFilter struct {
	StockRecordID uuid.UUID
	Type          domain.TransactionType
	Reference     string
	From          time.Time
	To            time.Time
	Page          int
	PageSize      int
}

// StockRepository persists stock records. UpdateWithEntries is the atomic
// unit the accounting engine relies on: the counter update and the ledger
// append both land, or neither does.
type StockRepository interface {
	Create(ctx context.Context, record *domain.StockRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.StockRecord, error)
	FindByVariantID(ctx context.Context, variantID uuid.UUID) (*domain.StockRecord, error)
	FindBySKU(ctx context.Context, sku string) (*domain.StockRecord, error)
	List(ctx context.Context, page, pageSize int) ([]domain.StockRecord, int, error)
	// UpdateWithEntries persists record and appends entries atomically.
	// It fails with domain.ErrConcurrencyConflict when the stored version no
	// longer matches expectedVersion.
	UpdateWithEntries(ctx context.Context, record *domain.StockRecord, expectedVersion int, entries ...*domain.LedgerEntry) error
}

// LedgerRepository reads the append-only transaction history.
type LedgerRepository interface {
	FindByStockRecordID(ctx context.Context, stockRecordID uuid.UUID, page, pageSize int) ([]domain.LedgerEntry, int, error)
	FindByReference(ctx context.Context, reference string) ([]domain.LedgerEntry, error)
	Search(ctx context.Context, filter LedgerFilter) ([]domain.LedgerEntry, int, error)
}

// InMemoryRepository keeps records and ledger entries in process memory.
// Used by tests and as a fallback when no SQLite path is configured.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*domain.StockRecord
	entries []domain.LedgerEntry
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[uuid.UUID]*domain.StockRecord),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, record *domain.StockRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.VariantID == record.VariantID {
			return domain.ErrVariantExists
		}
	}
	r.records[record.ID] = record.Clone()
	return nil
}

func (r *InMemoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return record.Clone(), nil
}

func (r *InMemoryRepository) FindByVariantID(ctx context.Context, variantID uuid.UUID) (*domain.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.records {
		if record.VariantID == variantID {
			return record.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *InMemoryRepository) FindBySKU(ctx context.Context, sku string) (*domain.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.records {
		if record.SKU == sku {
			return record.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *InMemoryRepository) List(ctx context.Context, page, pageSize int) ([]domain.StockRecord, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]domain.StockRecord, 0, len(r.records))
	for _, record := range r.records {
		all = append(all, *record.Clone())
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := len(all)
	start, end := pageBounds(page, pageSize, total)
	return all[start:end], total, nil
}

func (r *InMemoryRepository) UpdateWithEntries(ctx context.Context, record *domain.StockRecord, expectedVersion int, entries ...*domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.records[record.ID]
	if !exists {
		return domain.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrConcurrencyConflict
	}

	r.records[record.ID] = record.Clone()
	for _, entry := range entries {
		r.entries = append(r.entries, *entry)
	}
	return nil
}

func (r *InMemoryRepository) FindByStockRecordID(ctx context.Context, stockRecordID uuid.UUID, page, pageSize int) ([]domain.LedgerEntry, int, error) {
	return r.Search(ctx, LedgerFilter{StockRecordID: stockRecordID, Page: page, PageSize: pageSize})
}

func (r *InMemoryRepository) FindByReference(ctx context.Context, reference string) ([]domain.LedgerEntry, error) {
	entries, _, err := r.Search(ctx, LedgerFilter{Reference: reference})
	return entries, err
}

func (r *InMemoryRepository) Search(ctx context.Context, filter LedgerFilter) ([]domain.LedgerEntry, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.LedgerEntry, 0)
	for _, entry := range r.entries {
		if filter.StockRecordID != uuid.Nil && entry.StockRecordID != filter.StockRecordID {
			continue
		}
		if filter.Type != "" && entry.Type != filter.Type {
			continue
		}
		if filter.Reference != "" && entry.Reference != filter.Reference {
			continue
		}
		if !filter.From.IsZero() && entry.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && entry.CreatedAt.After(filter.To) {
			continue
		}
		matched = append(matched, entry)
	}

	total := len(matched)
	start, end := pageBounds(filter.Page, filter.PageSize, total)
	return matched[start:end], total, nil
}

// pageBounds converts 1-based page/pageSize into slice bounds. Page size 0
// means no pagination.
func pageBounds(page, pageSize, total int) (int, int) {
	if pageSize <= 0 {
		return 0, total
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > total {
		return total, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}
