package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"inventory-ledger-service/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ledgeredRepo is the full surface the engine and query service need.
type ledgeredRepo interface {
	StockRepository
	LedgerRepository
}

// repoUnderTest runs the contract tests against every implementation.
func repoUnderTest(t *testing.T, name string) ledgeredRepo {
	t.Helper()
	switch name {
	case "in-memory":
		return NewInMemoryRepository()
	case "sqlite":
		repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "stock.db"), zap.NewNop())
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })
		return repo
	default:
		t.Fatalf("unknown repository %q", name)
		return nil
	}
}

var implementations = []string{"in-memory", "sqlite"}

func seedRecord(t *testing.T, repo StockRepository, stock, reserved int) *domain.StockRecord {
	t.Helper()
	record := domain.NewStockRecord(uuid.New(), "SKU-"+uuid.NewString()[:8], "warehouse-a", 0)
	record.StockQuantity = stock
	record.ReservedQuantity = reserved
	require.NoError(t, repo.Create(context.Background(), record))
	return record
}

func TestRepository_CreateAndFind(t *testing.T) {
	for _, impl := range implementations {
		t.Run(impl, func(t *testing.T) {
			repo := repoUnderTest(t, impl)
			ctx := context.Background()
			record := seedRecord(t, repo, 10, 0)

			byID, err := repo.FindByID(ctx, record.ID)
			require.NoError(t, err)
			assert.Equal(t, record.VariantID, byID.VariantID)
			assert.Equal(t, 10, byID.StockQuantity)
			assert.Equal(t, 1, byID.Version)

			byVariant, err := repo.FindByVariantID(ctx, record.VariantID)
			require.NoError(t, err)
			assert.Equal(t, record.ID, byVariant.ID)

			bySKU, err := repo.FindBySKU(ctx, record.SKU)
			require.NoError(t, err)
			assert.Equal(t, record.ID, bySKU.ID)
		})
	}
}

func TestRepository_FindMissing(t *testing.T) {
	for _, impl := range implementations {
		t.Run(impl, func(t *testing.T) {
			repo := repoUnderTest(t, impl)
			ctx := context.Background()

			_, err := repo.FindByID(ctx, uuid.New())
			assert.Equal(t, domain.ErrNotFound, err)

			_, err = repo.FindByVariantID(ctx, uuid.New())
			assert.Equal(t, domain.ErrNotFound, err)

			_, err = repo.FindBySKU(ctx, "no-such-sku")
			assert.Equal(t, domain.ErrNotFound, err)
		})
	}
}

func TestRepository_DuplicateVariant(t *testing.T) {
	for _, impl := range implementations {
		t.Run(impl, func(t *testing.T) {
			repo := repoUnderTest(t, impl)
			record := seedRecord(t, repo, 5, 0)

			dup := domain.NewStockRecord(record.VariantID, "SKU-DUP", "warehouse-b", 0)
			err := repo.Create(context.Background(), dup)
			assert.Equal(t, domain.ErrVariantExists, err)
		})
	}
}

func TestRepository_UpdateWithEntries(t *testing.T) {
	for _, impl := range implementations {
		t.Run(impl, func(t *testing.T) {
			repo := repoUnderTest(t, impl)
			ctx := context.Background()
			record := seedRecord(t, repo, 10, 0)

			updated := record.Clone()
			require.NoError(t, updated.Reserve(4))
			entry := domain.NewLedgerEntry(record.ID, domain.TransactionReservation, 4, "order-1", "", "tester")

			require.NoError(t, repo.UpdateWithEntries(ctx, updated, record.Version, entry))

			stored, err := repo.FindByID(ctx, record.ID)
			require.NoError(t, err)
			assert.Equal(t, 4, stored.ReservedQuantity)
			assert.Equal(t, record.Version+1, stored.Version)

			entries, total, err := repo.FindByStockRecordID(ctx, record.ID, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, 1, total)
			require.Len(t, entries, 1)
			assert.Equal(t, domain.TransactionReservation, entries[0].Type)
			assert.Equal(t, "order-1", entries[0].Reference)
		})
	}
}

func TestRepository_UpdateVersionConflict(t *testing.T) {
	for _, impl := range implementations {
		t.Run(impl, func(t *testing.T) {
			repo := repoUnderTest(t, impl)
			ctx := context.Background()
			record := seedRecord(t, repo, 10, 0)

			stale := record.Clone()
			require.NoError(t, stale.Reserve(2))

			err := repo.UpdateWithEntries(ctx, stale, record.Version+5,
				domain.NewLedgerEntry(record.ID, domain.TransactionReservation, 2, "", "", ""))
			assert.Equal(t, domain.ErrConcurrencyConflict, err)

			// Nothing landed: counters and ledger are untouched.
			stored, err := repo.FindByID(ctx, record.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, stored.ReservedQuantity)

			_, total, err := repo.FindByStockRecordID(ctx, record.ID, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, 0, total)
		})
	}
}

func TestRepository_UpdateMissingRecord(t *testing.T) {
	for _, impl := range implementations {
		t.Run(impl, func(t *testing.T) {
			repo := repoUnderTest(t, impl)
			ghost := domain.NewStockRecord(uuid.New(), "SKU-GHOST", "", 0)

			err := repo.UpdateWithEntries(context.Background(), ghost, 1)
			assert.Equal(t, domain.ErrNotFound, err)
		})
	}
}

func TestRepository_LedgerOrderingAndSearch(t *testing.T) {
	for _, impl := range implementations {
		t.Run(impl, func(t *testing.T) {
			repo := repoUnderTest(t, impl)
			ctx := context.Background()
			record := seedRecord(t, repo, 0, 0)

			steps := []struct {
				apply func(r *domain.StockRecord) error
				typ   domain.TransactionType
				qty   int
				ref   string
			}{
				{func(r *domain.StockRecord) error { return r.StockIn(10) }, domain.TransactionStockIn, 10, "po-1"},
				{func(r *domain.StockRecord) error { return r.Reserve(4) }, domain.TransactionReservation, 4, "order-1"},
				{func(r *domain.StockRecord) error { return r.Release(1) }, domain.TransactionReleaseReservation, 1, "order-1"},
				{func(r *domain.StockRecord) error { return r.Adjust(-2) }, domain.TransactionAdjustment, -2, "cycle-count"},
			}

			current := record.Clone()
			for _, step := range steps {
				expected := current.Version
				require.NoError(t, step.apply(current))
				entry := domain.NewLedgerEntry(record.ID, step.typ, step.qty, step.ref, "", "")
				require.NoError(t, repo.UpdateWithEntries(ctx, current, expected, entry))
			}

			entries, total, err := repo.FindByStockRecordID(ctx, record.ID, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, 4, total)
			for i, step := range steps {
				assert.Equal(t, step.typ, entries[i].Type, "entry %d out of order", i)
			}

			// Filter by type.
			filtered, _, err := repo.Search(ctx, LedgerFilter{StockRecordID: record.ID, Type: domain.TransactionReservation})
			require.NoError(t, err)
			require.Len(t, filtered, 1)
			assert.Equal(t, 4, filtered[0].Quantity)

			// Filter by reference spans entry types.
			byRef, err := repo.FindByReference(ctx, "order-1")
			require.NoError(t, err)
			assert.Len(t, byRef, 2)

			// Pagination.
			pageTwo, total, err := repo.FindByStockRecordID(ctx, record.ID, 2, 3)
			require.NoError(t, err)
			assert.Equal(t, 4, total)
			require.Len(t, pageTwo, 1)
			assert.Equal(t, domain.TransactionAdjustment, pageTwo[0].Type)
		})
	}
}

func TestRepository_SearchTimeWindow(t *testing.T) {
	for _, impl := range implementations {
		t.Run(impl, func(t *testing.T) {
			repo := repoUnderTest(t, impl)
			ctx := context.Background()
			record := seedRecord(t, repo, 0, 0)

			current := record.Clone()
			require.NoError(t, current.StockIn(5))
			entry := domain.NewLedgerEntry(record.ID, domain.TransactionStockIn, 5, "", "", "")
			require.NoError(t, repo.UpdateWithEntries(ctx, current, record.Version, entry))

			recent, _, err := repo.Search(ctx, LedgerFilter{
				StockRecordID: record.ID,
				From:          time.Now().UTC().Add(-time.Minute),
			})
			require.NoError(t, err)
			assert.Len(t, recent, 1)

			ancient, _, err := repo.Search(ctx, LedgerFilter{
				StockRecordID: record.ID,
				To:            time.Now().UTC().Add(-time.Hour),
			})
			require.NoError(t, err)
			assert.Empty(t, ancient)
		})
	}
}

func TestRepository_List(t *testing.T) {
	for _, impl := range implementations {
		t.Run(impl, func(t *testing.T) {
			repo := repoUnderTest(t, impl)
			ctx := context.Background()
			for i := 0; i < 5; i++ {
				seedRecord(t, repo, i, 0)
			}

			all, total, err := repo.List(ctx, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, 5, total)
			assert.Len(t, all, 5)

			page, total, err := repo.List(ctx, 2, 2)
			require.NoError(t, err)
			assert.Equal(t, 5, total)
			assert.Len(t, page, 2)
		})
	}
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name           string
		page, pageSize int
		total          int
		start, end     int
	}{
		{"no pagination", 0, 0, 7, 0, 7},
		{"first page", 1, 3, 7, 0, 3},
		{"last partial page", 3, 3, 7, 6, 7},
		{"past the end", 5, 3, 7, 7, 7},
		{"page defaults to one", 0, 3, 7, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := pageBounds(tt.page, tt.pageSize, tt.total)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}
