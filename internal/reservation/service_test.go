package reservation

import (
	"context"
	"testing"

	"inventory-ledger-service/internal/domain"
	"inventory-ledger-service/internal/engine"
	"inventory-ledger-service/internal/events"
	"inventory-ledger-service/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, initialStock int) (*Service, uuid.UUID) {
	t.Helper()
	repo := repository.NewInMemoryRepository()
	eng := engine.New(repo, events.NewEventPublisher(), zap.NewNop())

	variantID := uuid.New()
	_, err := eng.CreateStockRecord(context.Background(), engine.CreateRequest{
		VariantID:    variantID,
		InitialStock: initialStock,
		SKU:          "SKU-100",
	})
	require.NoError(t, err)

	return NewService(eng, repo, zap.NewNop()), variantID
}

func TestReserve(t *testing.T) {
	svc, variantID := newTestService(t, 10)

	snap, err := svc.Reserve(context.Background(), variantID, 4, "order-1", "svc-checkout")
	require.NoError(t, err)

	assert.Equal(t, variantID, snap.VariantID)
	assert.Equal(t, 10, snap.Stock)
	assert.Equal(t, 4, snap.Reserved)
	assert.Equal(t, 6, snap.Available)
}

func TestReserve_UnknownVariant(t *testing.T) {
	svc, _ := newTestService(t, 10)

	_, err := svc.Reserve(context.Background(), uuid.New(), 1, "order-1", "")
	assert.Equal(t, domain.ErrNotFound, err)
}

func TestReserve_MoreThanAvailable(t *testing.T) {
	svc, variantID := newTestService(t, 5)

	_, err := svc.Reserve(context.Background(), variantID, 6, "order-1", "")
	assert.Equal(t, domain.ErrInsufficientAvailable, err)
}

func TestRelease(t *testing.T) {
	svc, variantID := newTestService(t, 10)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, variantID, 4, "order-1", "")
	require.NoError(t, err)

	snap, err := svc.Release(ctx, variantID, 4, "order-1", "")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Reserved)
	assert.Equal(t, 10, snap.Available)
}

func TestRelease_MoreThanReserved(t *testing.T) {
	svc, variantID := newTestService(t, 10)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, variantID, 3, "order-1", "")
	require.NoError(t, err)

	_, err = svc.Release(ctx, variantID, 4, "order-1", "")
	assert.Equal(t, domain.ErrOverRelease, err)
}

func TestCommit(t *testing.T) {
	svc, variantID := newTestService(t, 10)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, variantID, 5, "order-2", "")
	require.NoError(t, err)

	snap, err := svc.Commit(ctx, variantID, 3, "order-2", "svc-fulfillment")
	require.NoError(t, err)

	// Partial commit keeps the remainder reserved.
	assert.Equal(t, 7, snap.Stock)
	assert.Equal(t, 2, snap.Reserved)
	assert.Equal(t, 5, snap.Available)
}

func TestCommit_WithoutReservation(t *testing.T) {
	svc, variantID := newTestService(t, 10)

	_, err := svc.Commit(context.Background(), variantID, 1, "order-3", "")
	assert.Equal(t, domain.ErrOverRelease, err)
}

func TestLifecycle_InvalidQuantities(t *testing.T) {
	svc, variantID := newTestService(t, 10)
	ctx := context.Background()

	for _, qty := range []int{0, -2} {
		_, err := svc.Reserve(ctx, variantID, qty, "order-1", "")
		assert.Equal(t, domain.ErrInvalidQuantity, err)

		_, err = svc.Release(ctx, variantID, qty, "order-1", "")
		assert.Equal(t, domain.ErrInvalidQuantity, err)

		_, err = svc.Commit(ctx, variantID, qty, "order-1", "")
		assert.Equal(t, domain.ErrInvalidQuantity, err)
	}
}
