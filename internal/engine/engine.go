// Package engine implements the inventory accounting engine: the sole
// writer of stock records and ledger entries. Every mutation is validated
// against the record invariants and persisted together with its ledger
// entry as one atomic unit per stock record.
package engine

import (
	"context"
	"sync"

	"inventory-ledger-service/internal/domain"
	"inventory-ledger-service/internal/events"
	"inventory-ledger-service/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Invalidator drops cached read views of a record after a successful write.
type Invalidator interface {
	InvalidateRecord(ctx context.Context, record *domain.StockRecord)
}

// ApplyRequest is one transaction to run against a stock record.
type ApplyRequest struct {
	StockRecordID uuid.UUID
	Type          domain.TransactionType
	// Quantity is positive for every type; ADJUSTMENT additionally accepts a
	// negative signed delta. Zero is always rejected.
	Quantity  int
	Reference string
	Notes     string
	ActorID   string
}

// CreateRequest provisions inventory for a variant.
type CreateRequest struct {
	VariantID    uuid.UUID
	InitialStock int
	ReorderLevel int
	SKU          string
	Location     string
	ActorID      string
}

// Engine applies stock transactions. A per-record mutex serializes the
// read-check-write-append sequence; the repository's version check is a
// second line of defense against out-of-band writers, retried a bounded
// number of times before ErrConcurrencyConflict surfaces.
type Engine struct {
	repo        repository.StockRepository
	publisher   events.EventPublisher
	invalidator Invalidator
	logger      *zap.Logger
	tracer      trace.Tracer
	maxRetries  int

	locks sync.Map // record ID -> *sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithInvalidator wires a read-cache invalidator.
func WithInvalidator(inv Invalidator) Option {
	return func(e *Engine) { e.invalidator = inv }
}

// WithMaxRetries bounds version-conflict retries.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

// New creates an accounting engine.
func New(repo repository.StockRepository, publisher events.EventPublisher, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		repo:       repo,
		publisher:  publisher,
		logger:     logger,
		tracer:     otel.Tracer("inventory-ledger-service/engine"),
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateStockRecord provisions inventory for a variant. The record starts
// with zero counters; initial stock is applied as a STOCK_IN transaction so
// the ledger replays from zero to the current counters.
func (e *Engine) CreateStockRecord(ctx context.Context, req CreateRequest) (*domain.StockRecord, error) {
	ctx, span := e.tracer.Start(ctx, "engine.CreateStockRecord",
		trace.WithAttributes(attribute.String("variant_id", req.VariantID.String())))
	defer span.End()

	if req.VariantID == uuid.Nil {
		return nil, domain.ErrNotFound
	}
	if req.InitialStock < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	record := domain.NewStockRecord(req.VariantID, req.SKU, req.Location, req.ReorderLevel)
	if err := e.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	e.publish(ctx, events.StockRecordCreatedEvent{
		StockRecordID: record.ID,
		VariantID:     record.VariantID,
		SKU:           record.SKU,
		InitialStock:  req.InitialStock,
		OccurredAt:    record.CreatedAt,
	})

	if req.InitialStock == 0 {
		return record, nil
	}

	record, _, err := e.ApplyTransaction(ctx, ApplyRequest{
		StockRecordID: record.ID,
		Type:          domain.TransactionStockIn,
		Quantity:      req.InitialStock,
		Reference:     "initial-provisioning",
		Notes:         "initial stock provisioning",
		ActorID:       req.ActorID,
	})
	return record, err
}

// ApplyTransaction validates and applies one transaction, returning the
// updated record and the appended ledger entry. On any guard violation
// neither the record nor the ledger changes.
func (e *Engine) ApplyTransaction(ctx context.Context, req ApplyRequest) (*domain.StockRecord, *domain.LedgerEntry, error) {
	ctx, span := e.tracer.Start(ctx, "engine.ApplyTransaction",
		trace.WithAttributes(
			attribute.String("stock_record_id", req.StockRecordID.String()),
			attribute.String("transaction_type", string(req.Type)),
			attribute.Int("quantity", req.Quantity),
		))
	defer span.End()

	if !req.Type.Valid() {
		return nil, nil, domain.ErrInvalidTransaction
	}
	if req.Quantity == 0 || (req.Quantity < 0 && req.Type != domain.TransactionAdjustment) {
		return nil, nil, domain.ErrInvalidQuantity
	}

	var (
		record *domain.StockRecord
		entry  *domain.LedgerEntry
	)
	err := e.withRecordLock(ctx, req.StockRecordID, func(ctx context.Context) error {
		var err error
		record, entry, err = e.applyLocked(ctx, req)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	e.afterWrite(ctx, record, events.TransactionAppliedEvent{
		StockRecordID: record.ID,
		VariantID:     record.VariantID,
		SKU:           record.SKU,
		Type:          string(req.Type),
		Quantity:      req.Quantity,
		Reference:     req.Reference,
		Stock:         record.StockQuantity,
		Reserved:      record.ReservedQuantity,
		Available:     record.AvailableQuantity(),
		OccurredAt:    entry.CreatedAt,
	})

	return record, entry, nil
}

func (e *Engine) applyLocked(ctx context.Context, req ApplyRequest) (*domain.StockRecord, *domain.LedgerEntry, error) {
	for attempt := 0; attempt < e.maxRetries; attempt++ {
		record, err := e.repo.FindByID(ctx, req.StockRecordID)
		if err != nil {
			return nil, nil, err
		}
		expectedVersion := record.Version

		if err := applyEffect(record, req.Type, req.Quantity); err != nil {
			return nil, nil, err
		}

		entry := domain.NewLedgerEntry(record.ID, req.Type, req.Quantity, req.Reference, req.Notes, req.ActorID)
		err = e.repo.UpdateWithEntries(ctx, record, expectedVersion, entry)
		if err == nil {
			return record, entry, nil
		}
		if err != domain.ErrConcurrencyConflict {
			return nil, nil, err
		}

		e.logger.Warn("Version conflict applying transaction, retrying",
			zap.String("stock_record_id", req.StockRecordID.String()),
			zap.String("type", string(req.Type)),
			zap.Int("attempt", attempt+1),
		)
	}
	return nil, nil, domain.ErrConcurrencyConflict
}

// CommitReservation removes quantity from both the reserved count and
// on-hand stock in one atomic unit and records the transition as a
// RELEASE_RESERVATION/STOCK_OUT pair sharing a commit ID, keeping commits
// distinguishable from bare releases or stock-outs in the audit trail.
// A partial commit leaves the remainder reserved.
func (e *Engine) CommitReservation(ctx context.Context, stockRecordID uuid.UUID, quantity int, reference, actorID string) (*domain.StockRecord, []*domain.LedgerEntry, error) {
	ctx, span := e.tracer.Start(ctx, "engine.CommitReservation",
		trace.WithAttributes(
			attribute.String("stock_record_id", stockRecordID.String()),
			attribute.Int("quantity", quantity),
		))
	defer span.End()

	if quantity <= 0 {
		return nil, nil, domain.ErrInvalidQuantity
	}

	var (
		record  *domain.StockRecord
		entries []*domain.LedgerEntry
	)
	err := e.withRecordLock(ctx, stockRecordID, func(ctx context.Context) error {
		for attempt := 0; attempt < e.maxRetries; attempt++ {
			current, err := e.repo.FindByID(ctx, stockRecordID)
			if err != nil {
				return err
			}
			expectedVersion := current.Version

			if err := current.Commit(quantity); err != nil {
				return err
			}

			commitID := uuid.New().String()
			release := domain.NewLedgerEntry(current.ID, domain.TransactionReleaseReservation, quantity, reference, "reservation commit", actorID)
			release.CommitID = commitID
			stockOut := domain.NewLedgerEntry(current.ID, domain.TransactionStockOut, quantity, reference, "reservation commit", actorID)
			stockOut.CommitID = commitID

			err = e.repo.UpdateWithEntries(ctx, current, expectedVersion, release, stockOut)
			if err == nil {
				record = current
				entries = []*domain.LedgerEntry{release, stockOut}
				return nil
			}
			if err != domain.ErrConcurrencyConflict {
				return err
			}

			e.logger.Warn("Version conflict committing reservation, retrying",
				zap.String("stock_record_id", stockRecordID.String()),
				zap.Int("attempt", attempt+1),
			)
		}
		return domain.ErrConcurrencyConflict
	})
	if err != nil {
		return nil, nil, err
	}

	e.afterWrite(ctx, record, events.ReservationCommittedEvent{
		StockRecordID: record.ID,
		VariantID:     record.VariantID,
		SKU:           record.SKU,
		Quantity:      quantity,
		Reference:     reference,
		CommitID:      entries[0].CommitID,
		Stock:         record.StockQuantity,
		Reserved:      record.ReservedQuantity,
		Available:     record.AvailableQuantity(),
		OccurredAt:    entries[0].CreatedAt,
	})

	return record, entries, nil
}

// withRecordLock serializes mutations per stock record for the duration of
// the read-check-write-append sequence.
func (e *Engine) withRecordLock(ctx context.Context, id uuid.UUID, fn func(context.Context) error) error {
	muIface, _ := e.locks.LoadOrStore(id, &sync.Mutex{})
	mu := muIface.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	return fn(ctx)
}

// afterWrite publishes the event and invalidates cached reads. Both are best
// effort: the transaction has already committed.
func (e *Engine) afterWrite(ctx context.Context, record *domain.StockRecord, event interface{}) {
	e.publish(ctx, event)
	if record.BelowReorderLevel() {
		e.publish(ctx, events.ReorderLevelReachedEvent{
			StockRecordID: record.ID,
			VariantID:     record.VariantID,
			SKU:           record.SKU,
			Available:     record.AvailableQuantity(),
			ReorderLevel:  record.ReorderLevel,
			OccurredAt:    record.UpdatedAt,
		})
	}
	if e.invalidator != nil {
		e.invalidator.InvalidateRecord(ctx, record)
	}
}

func (e *Engine) publish(ctx context.Context, event interface{}) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Warn("Failed to publish event", zap.Error(err))
	}
}

func applyEffect(record *domain.StockRecord, txType domain.TransactionType, quantity int) error {
	switch txType {
	case domain.TransactionStockIn:
		return record.StockIn(quantity)
	case domain.TransactionStockOut:
		return record.StockOut(quantity)
	case domain.TransactionAdjustment:
		return record.Adjust(quantity)
	case domain.TransactionReservation:
		return record.Reserve(quantity)
	case domain.TransactionReleaseReservation:
		return record.Release(quantity)
	default:
		return domain.ErrInvalidTransaction
	}
}
