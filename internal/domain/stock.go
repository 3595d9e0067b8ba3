package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType identifies the effect a ledger entry has on a stock record.
type TransactionType string

const (
	TransactionStockIn            TransactionType = "STOCK_IN"
	TransactionStockOut           TransactionType = "STOCK_OUT"
	TransactionAdjustment         TransactionType = "ADJUSTMENT"
	TransactionReservation        TransactionType = "RESERVATION"
	TransactionReleaseReservation TransactionType = "RELEASE_RESERVATION"
)

// Valid reports whether t is one of the five known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionStockIn, TransactionStockOut, TransactionAdjustment,
		TransactionReservation, TransactionReleaseReservation:
		return true
	}
	return false
}

// StockRecord is the aggregate root for the stock of one sellable variant.
// A variant has at most one StockRecord. All counter mutations go through
// the guarded methods below so the invariants hold after every operation:
//
//	StockQuantity >= 0
//	ReservedQuantity >= 0
//	ReservedQuantity <= StockQuantity
type StockRecord struct {
	ID               uuid.UUID
	VariantID        uuid.UUID
	SKU              string
	Location         string
	StockQuantity    int
	ReservedQuantity int
	ReorderLevel     int // informational threshold, 0 means unset
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int // For optimistic locking
}

// NewStockRecord creates an empty stock record for a variant. Initial stock
// is applied as a STOCK_IN transaction by the engine so the ledger fold
// starts from zero.
func NewStockRecord(variantID uuid.UUID, sku, location string, reorderLevel int) *StockRecord {
	now := time.Now().UTC()
	return &StockRecord{
		ID:               uuid.New(),
		VariantID:        variantID,
		SKU:              sku,
		Location:         location,
		StockQuantity:    0,
		ReservedQuantity: 0,
		ReorderLevel:     reorderLevel,
		CreatedAt:        now,
		UpdatedAt:        now,
		Version:          1,
	}
}

// AvailableQuantity returns the quantity available for new reservations.
func (r *StockRecord) AvailableQuantity() int {
	return r.StockQuantity - r.ReservedQuantity
}

// BelowReorderLevel reports whether available stock has dropped below the
// configured reorder threshold.
func (r *StockRecord) BelowReorderLevel() bool {
	return r.ReorderLevel > 0 && r.AvailableQuantity() < r.ReorderLevel
}

// StockIn adds received units to on-hand stock.
func (r *StockRecord) StockIn(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	r.StockQuantity += quantity
	r.touch()
	return nil
}

// StockOut removes shipped units from on-hand stock.
func (r *StockRecord) StockOut(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.StockQuantity < quantity {
		return ErrInsufficientStock
	}
	if r.StockQuantity-quantity < r.ReservedQuantity {
		// Removing these units would leave less on hand than is reserved.
		return ErrInsufficientStock
	}
	r.StockQuantity -= quantity
	r.touch()
	return nil
}

// Adjust applies a signed stock correction. Zero is rejected; a negative
// delta may not drive on-hand stock below zero or below the reserved count.
func (r *StockRecord) Adjust(delta int) error {
	if delta == 0 {
		return ErrInvalidQuantity
	}
	newQuantity := r.StockQuantity + delta
	if newQuantity < 0 || newQuantity < r.ReservedQuantity {
		return ErrInvalidAdjustment
	}
	r.StockQuantity = newQuantity
	r.touch()
	return nil
}

// Reserve holds units against a pending order.
func (r *StockRecord) Reserve(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.AvailableQuantity() < quantity {
		return ErrInsufficientAvailable
	}
	r.ReservedQuantity += quantity
	r.touch()
	return nil
}

// Release returns reserved units to the available pool.
func (r *StockRecord) Release(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.ReservedQuantity < quantity {
		return ErrOverRelease
	}
	r.ReservedQuantity -= quantity
	r.touch()
	return nil
}

// Commit fulfills a reservation: the units leave both the reserved count and
// on-hand stock in one transition. A partial commit keeps the remainder
// reserved.
func (r *StockRecord) Commit(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.ReservedQuantity < quantity {
		return ErrOverRelease
	}
	r.ReservedQuantity -= quantity
	r.StockQuantity -= quantity
	r.touch()
	return nil
}

// Clone returns a deep copy, used by the engine to mutate outside the
// repository's view until the atomic update succeeds.
func (r *StockRecord) Clone() *StockRecord {
	c := *r
	return &c
}

func (r *StockRecord) touch() {
	r.UpdatedAt = time.Now().UTC()
	r.Version++
}
