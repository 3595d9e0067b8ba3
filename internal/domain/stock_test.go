package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestRecord(stock, reserved int) *StockRecord {
	record := NewStockRecord(uuid.New(), "SKU-001", "warehouse-a", 0)
	record.StockQuantity = stock
	record.ReservedQuantity = reserved
	return record
}

func TestNewStockRecord(t *testing.T) {
	variantID := uuid.New()
	record := NewStockRecord(variantID, "SKU-001", "warehouse-a", 5)

	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.Equal(t, variantID, record.VariantID)
	assert.Equal(t, "SKU-001", record.SKU)
	assert.Equal(t, "warehouse-a", record.Location)
	assert.Equal(t, 0, record.StockQuantity)
	assert.Equal(t, 0, record.ReservedQuantity)
	assert.Equal(t, 5, record.ReorderLevel)
	assert.Equal(t, 1, record.Version)
	assert.False(t, record.CreatedAt.IsZero())
}

func TestAvailableQuantity(t *testing.T) {
	record := newTestRecord(100, 30)

	assert.Equal(t, 70, record.AvailableQuantity())
}

func TestBelowReorderLevel(t *testing.T) {
	record := newTestRecord(10, 8)
	record.ReorderLevel = 5

	assert.True(t, record.BelowReorderLevel())

	record.ReorderLevel = 0
	assert.False(t, record.BelowReorderLevel())
}

func TestStockIn_Success(t *testing.T) {
	record := newTestRecord(100, 0)
	originalVersion := record.Version

	err := record.StockIn(50)

	assert.NoError(t, err)
	assert.Equal(t, 150, record.StockQuantity)
	assert.Equal(t, originalVersion+1, record.Version)
}

func TestStockIn_Error_NonPositive(t *testing.T) {
	record := newTestRecord(100, 0)

	assert.Equal(t, ErrInvalidQuantity, record.StockIn(0))
	assert.Equal(t, ErrInvalidQuantity, record.StockIn(-5))
	assert.Equal(t, 100, record.StockQuantity)
}

func TestStockOut_Success(t *testing.T) {
	record := newTestRecord(100, 0)

	err := record.StockOut(40)

	assert.NoError(t, err)
	assert.Equal(t, 60, record.StockQuantity)
}

func TestStockOut_Error_InsufficientStock(t *testing.T) {
	record := newTestRecord(10, 0)
	originalVersion := record.Version

	err := record.StockOut(20)

	assert.Equal(t, ErrInsufficientStock, err)
	assert.Equal(t, 10, record.StockQuantity)
	assert.Equal(t, originalVersion, record.Version)
}

func TestStockOut_Error_WouldUndercutReserved(t *testing.T) {
	record := newTestRecord(10, 6)

	// 8 units exist beyond the physical floor, but removing them would leave
	// 2 on hand against 6 reserved.
	err := record.StockOut(8)

	assert.Equal(t, ErrInsufficientStock, err)
	assert.Equal(t, 10, record.StockQuantity)
	assert.Equal(t, 6, record.ReservedQuantity)
}

func TestAdjust_Success_Increase(t *testing.T) {
	record := newTestRecord(100, 0)

	err := record.Adjust(50)

	assert.NoError(t, err)
	assert.Equal(t, 150, record.StockQuantity)
}

func TestAdjust_Success_Decrease(t *testing.T) {
	record := newTestRecord(100, 0)

	err := record.Adjust(-30)

	assert.NoError(t, err)
	assert.Equal(t, 70, record.StockQuantity)
}

func TestAdjust_Error_NegativeResult(t *testing.T) {
	record := newTestRecord(10, 0)
	originalVersion := record.Version

	err := record.Adjust(-20)

	assert.Equal(t, ErrInvalidAdjustment, err)
	assert.Equal(t, 10, record.StockQuantity)
	assert.Equal(t, originalVersion, record.Version)
}

func TestAdjust_Error_Zero(t *testing.T) {
	record := newTestRecord(10, 0)

	assert.Equal(t, ErrInvalidQuantity, record.Adjust(0))
}

func TestAdjust_Error_BelowReserved(t *testing.T) {
	record := newTestRecord(10, 6)

	err := record.Adjust(-5)

	assert.Equal(t, ErrInvalidAdjustment, err)
	assert.Equal(t, 10, record.StockQuantity)
}

func TestReserve_Success(t *testing.T) {
	record := newTestRecord(100, 20)
	originalVersion := record.Version

	err := record.Reserve(30)

	assert.NoError(t, err)
	assert.Equal(t, 50, record.ReservedQuantity)
	assert.Equal(t, 50, record.AvailableQuantity())
	assert.Equal(t, originalVersion+1, record.Version)
}

func TestReserve_Error_InsufficientAvailable(t *testing.T) {
	record := newTestRecord(100, 80)

	err := record.Reserve(30) // Only 20 available

	assert.Equal(t, ErrInsufficientAvailable, err)
	assert.Equal(t, 80, record.ReservedQuantity)
}

func TestRelease_Success(t *testing.T) {
	record := newTestRecord(100, 50)

	err := record.Release(20)

	assert.NoError(t, err)
	assert.Equal(t, 30, record.ReservedQuantity)
	assert.Equal(t, 70, record.AvailableQuantity())
}

func TestRelease_Error_OverRelease(t *testing.T) {
	record := newTestRecord(100, 30)
	originalVersion := record.Version

	err := record.Release(50)

	assert.Equal(t, ErrOverRelease, err)
	assert.Equal(t, 30, record.ReservedQuantity)
	assert.Equal(t, originalVersion, record.Version)
}

func TestCommit_Success(t *testing.T) {
	record := newTestRecord(10, 5)

	err := record.Commit(3)

	assert.NoError(t, err)
	assert.Equal(t, 7, record.StockQuantity)
	assert.Equal(t, 2, record.ReservedQuantity)
	assert.Equal(t, 5, record.AvailableQuantity())
}

func TestCommit_Error_OverRelease(t *testing.T) {
	record := newTestRecord(10, 5)

	err := record.Commit(6)

	assert.Equal(t, ErrOverRelease, err)
	assert.Equal(t, 10, record.StockQuantity)
	assert.Equal(t, 5, record.ReservedQuantity)
}

func TestInvariants_AfterEveryMutation(t *testing.T) {
	record := newTestRecord(10, 0)

	steps := []func() error{
		func() error { return record.Reserve(4) },
		func() error { return record.Release(2) },
		func() error { return record.Commit(2) },
		func() error { return record.StockIn(5) },
		func() error { return record.Adjust(-3) },
		func() error { return record.StockOut(1) },
	}

	for i, step := range steps {
		assert.NoError(t, step(), "step %d", i)
		assert.GreaterOrEqual(t, record.StockQuantity, 0)
		assert.GreaterOrEqual(t, record.ReservedQuantity, 0)
		assert.LessOrEqual(t, record.ReservedQuantity, record.StockQuantity)
		assert.GreaterOrEqual(t, record.AvailableQuantity(), 0)
	}
}

func TestTransactionType_Valid(t *testing.T) {
	assert.True(t, TransactionStockIn.Valid())
	assert.True(t, TransactionReleaseReservation.Valid())
	assert.False(t, TransactionType("REFUND").Valid())
	assert.False(t, TransactionType("").Valid())
}
