package repository

import (
	"context"
	"path/filepath"
	"testing"

	"inventory-ledger-service/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSQLiteRepository_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.db")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(path, zap.NewNop())
	require.NoError(t, err)

	record := domain.NewStockRecord(uuid.New(), "SKU-persist", "warehouse-a", 3)
	require.NoError(t, repo.Create(ctx, record))

	updated := record.Clone()
	require.NoError(t, updated.StockIn(10))
	require.NoError(t, repo.UpdateWithEntries(ctx, updated, record.Version,
		domain.NewLedgerEntry(record.ID, domain.TransactionStockIn, 10, "po-9", "", "tester")))
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteRepository(path, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	stored, err := reopened.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.StockQuantity)
	assert.Equal(t, 3, stored.ReorderLevel)
	assert.Equal(t, record.VariantID, stored.VariantID)

	entries, total, err := reopened.FindByStockRecordID(ctx, record.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, "po-9", entries[0].Reference)
	assert.Equal(t, "tester", entries[0].ActorID)
}

func TestSQLiteRepository_SequencePreservedAcrossRecords(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "stock.db"), zap.NewNop())
	require.NoError(t, err)
	defer repo.Close()
	ctx := context.Background()

	first := domain.NewStockRecord(uuid.New(), "SKU-A", "", 0)
	second := domain.NewStockRecord(uuid.New(), "SKU-B", "", 0)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	// Interleave writes across the two records.
	for i, record := range []*domain.StockRecord{first, second, first, second} {
		current, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		expected := current.Version
		require.NoError(t, current.StockIn(i+1))
		require.NoError(t, repo.UpdateWithEntries(ctx, current, expected,
			domain.NewLedgerEntry(record.ID, domain.TransactionStockIn, i+1, "", "", "")))
	}

	entries, _, err := repo.FindByStockRecordID(ctx, first.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Quantity)
	assert.Equal(t, 3, entries[1].Quantity)
}

func TestSQLiteRepository_CommitPairIsAtomic(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "stock.db"), zap.NewNop())
	require.NoError(t, err)
	defer repo.Close()
	ctx := context.Background()

	record := domain.NewStockRecord(uuid.New(), "SKU-C", "", 0)
	record.StockQuantity = 10
	record.ReservedQuantity = 5
	require.NoError(t, repo.Create(ctx, record))

	updated := record.Clone()
	require.NoError(t, updated.Commit(3))

	commitID := uuid.New().String()
	release := domain.NewLedgerEntry(record.ID, domain.TransactionReleaseReservation, 3, "order-4", "", "")
	release.CommitID = commitID
	stockOut := domain.NewLedgerEntry(record.ID, domain.TransactionStockOut, 3, "order-4", "", "")
	stockOut.CommitID = commitID

	require.NoError(t, repo.UpdateWithEntries(ctx, updated, record.Version, release, stockOut))

	stored, err := repo.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.StockQuantity)
	assert.Equal(t, 2, stored.ReservedQuantity)

	entries, _, err := repo.FindByStockRecordID(ctx, record.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, commitID, entries[0].CommitID)
	assert.Equal(t, commitID, entries[1].CommitID)
}
