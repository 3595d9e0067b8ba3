package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReplay_FoldsAllTypes(t *testing.T) {
	recordID := uuid.New()
	entries := []LedgerEntry{
		*NewLedgerEntry(recordID, TransactionStockIn, 10, "po-1", "", ""),
		*NewLedgerEntry(recordID, TransactionReservation, 4, "order-1", "", ""),
		*NewLedgerEntry(recordID, TransactionReleaseReservation, 1, "order-1", "", ""),
		*NewLedgerEntry(recordID, TransactionAdjustment, -2, "count-1", "", ""),
		*NewLedgerEntry(recordID, TransactionStockOut, 3, "ship-1", "", ""),
	}

	stock, reserved := Replay(entries)

	assert.Equal(t, 5, stock)
	assert.Equal(t, 3, reserved)
}

func TestReplay_CommitPair(t *testing.T) {
	recordID := uuid.New()
	commitID := uuid.New().String()

	release := NewLedgerEntry(recordID, TransactionReleaseReservation, 3, "order-9", "reservation commit", "")
	release.CommitID = commitID
	stockOut := NewLedgerEntry(recordID, TransactionStockOut, 3, "order-9", "reservation commit", "")
	stockOut.CommitID = commitID

	entries := []LedgerEntry{
		*NewLedgerEntry(recordID, TransactionStockIn, 10, "po-1", "", ""),
		*NewLedgerEntry(recordID, TransactionReservation, 5, "order-9", "", ""),
		*release,
		*stockOut,
	}

	stock, reserved := Replay(entries)

	assert.Equal(t, 7, stock)
	assert.Equal(t, 2, reserved)
}

func TestReplay_Empty(t *testing.T) {
	stock, reserved := Replay(nil)

	assert.Equal(t, 0, stock)
	assert.Equal(t, 0, reserved)
}
