package domain

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEntry is one immutable row of a stock record's transaction history.
// Entries are appended in the same atomic unit as the counter mutation they
// describe and are never updated or deleted; corrections are made by new
// forward-dated entries.
type LedgerEntry struct {
	ID            uuid.UUID
	StockRecordID uuid.UUID
	Type          TransactionType
	// Quantity is positive for every type except ADJUSTMENT, which carries
	// the signed delta as received at the API boundary.
	Quantity  int
	Reference string
	Notes     string
	ActorID   string
	// CommitID ties together the RELEASE_RESERVATION/STOCK_OUT pair written
	// by a reservation commit, so commits remain distinguishable from a bare
	// release or stock-out in the audit trail. Empty for standalone entries.
	CommitID  string
	CreatedAt time.Time
}

// NewLedgerEntry builds an entry for a standalone transaction.
func NewLedgerEntry(stockRecordID uuid.UUID, txType TransactionType, quantity int, reference, notes, actorID string) *LedgerEntry {
	return &LedgerEntry{
		ID:            uuid.New(),
		StockRecordID: stockRecordID,
		Type:          txType,
		Quantity:      quantity,
		Reference:     reference,
		Notes:         notes,
		ActorID:       actorID,
		CreatedAt:     time.Now().UTC(),
	}
}

// Replay folds entries in creation order from zero counters and returns the
// resulting (stock, reserved) pair. For a consistent ledger the result equals
// the owning record's current counters.
func Replay(entries []LedgerEntry) (stock, reserved int) {
	for _, e := range entries {
		switch e.Type {
		case TransactionStockIn:
			stock += e.Quantity
		case TransactionStockOut:
			stock -= e.Quantity
		case TransactionAdjustment:
			stock += e.Quantity
		case TransactionReservation:
			reserved += e.Quantity
		case TransactionReleaseReservation:
			reserved -= e.Quantity
		}
	}
	return stock, reserved
}
