// Package reservation expresses the order-fulfillment vocabulary (reserve
// at checkout, release on cancellation, commit on fulfillment) on top of the
// accounting engine. It re-implements no invariant logic.
package reservation

import (
	"context"

	"inventory-ledger-service/internal/domain"
	"inventory-ledger-service/internal/engine"
	"inventory-ledger-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Snapshot is the post-operation view returned to order flows.
type Snapshot struct {
	StockRecordID uuid.UUID `json:"stock_record_id"`
	VariantID     uuid.UUID `json:"variant_id"`
	SKU           string    `json:"sku"`
	Stock         int       `json:"stock"`
	Reserved      int       `json:"reserved"`
	Available     int       `json:"available"`
}

// Service resolves variants to stock records and drives the reservation
// lifecycle through the engine.
type Service struct {
	engine *engine.Engine
	repo   repository.StockRepository
	logger *zap.Logger
}

// NewService creates a reservation lifecycle service.
func NewService(eng *engine.Engine, repo repository.StockRepository, logger *zap.Logger) *Service {
	return &Service{engine: eng, repo: repo, logger: logger}
}

// Reserve holds quantity units of a variant against reference.
func (s *Service) Reserve(ctx context.Context, variantID uuid.UUID, quantity int, reference, actorID string) (*Snapshot, error) {
	return s.apply(ctx, variantID, domain.TransactionReservation, quantity, reference, actorID)
}

// Release returns quantity reserved units of a variant to the available pool.
func (s *Service) Release(ctx context.Context, variantID uuid.UUID, quantity int, reference, actorID string) (*Snapshot, error) {
	return s.apply(ctx, variantID, domain.TransactionReleaseReservation, quantity, reference, actorID)
}

// Commit fulfills quantity reserved units: they leave both the reserved
// count and on-hand stock. Reversing a commit requires a new STOCK_IN
// correction; there is no path back to reserved.
func (s *Service) Commit(ctx context.Context, variantID uuid.UUID, quantity int, reference, actorID string) (*Snapshot, error) {
	record, err := s.repo.FindByVariantID(ctx, variantID)
	if err != nil {
		return nil, err
	}

	record, _, err = s.engine.CommitReservation(ctx, record.ID, quantity, reference, actorID)
	if err != nil {
		return nil, err
	}
	return snapshot(record), nil
}

func (s *Service) apply(ctx context.Context, variantID uuid.UUID, txType domain.TransactionType, quantity int, reference, actorID string) (*Snapshot, error) {
	record, err := s.repo.FindByVariantID(ctx, variantID)
	if err != nil {
		return nil, err
	}

	record, _, err = s.engine.ApplyTransaction(ctx, engine.ApplyRequest{
		StockRecordID: record.ID,
		Type:          txType,
		Quantity:      quantity,
		Reference:     reference,
		ActorID:       actorID,
	})
	if err != nil {
		return nil, err
	}
	return snapshot(record), nil
}

func snapshot(record *domain.StockRecord) *Snapshot {
	return &Snapshot{
		StockRecordID: record.ID,
		VariantID:     record.VariantID,
		SKU:           record.SKU,
		Stock:         record.StockQuantity,
		Reserved:      record.ReservedQuantity,
		Available:     record.AvailableQuantity(),
	}
}
