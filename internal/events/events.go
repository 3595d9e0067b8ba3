package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(ctx context.Context, event interface{}) error
}

// Stock domain events. Published after the accounting engine commits its
// atomic unit; consumers get the post-transition counters.

type StockRecordCreatedEvent struct {
	StockRecordID uuid.UUID `json:"stockRecordId"`
	VariantID     uuid.UUID `json:"variantId"`
	SKU           string    `json:"sku"`
	InitialStock  int       `json:"initialStock"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type TransactionAppliedEvent struct {
	StockRecordID uuid.UUID `json:"stockRecordId"`
	VariantID     uuid.UUID `json:"variantId"`
	SKU           string    `json:"sku"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	Reference     string    `json:"reference"`
	Stock         int       `json:"stock"`
	Reserved      int       `json:"reserved"`
	Available     int       `json:"available"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type ReservationCommittedEvent struct {
	StockRecordID uuid.UUID `json:"stockRecordId"`
	VariantID     uuid.UUID `json:"variantId"`
	SKU           string    `json:"sku"`
	Quantity      int       `json:"quantity"`
	Reference     string    `json:"reference"`
	CommitID      string    `json:"commitId"`
	Stock         int       `json:"stock"`
	Reserved      int       `json:"reserved"`
	Available     int       `json:"available"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type ReorderLevelReachedEvent struct {
	StockRecordID uuid.UUID `json:"stockRecordId"`
	VariantID     uuid.UUID `json:"variantId"`
	SKU           string    `json:"sku"`
	Available     int       `json:"available"`
	ReorderLevel  int       `json:"reorderLevel"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// InMemoryEventPublisher collects events in memory. Used in tests and as a
// fallback when the broker is unreachable.
type InMemoryEventPublisher struct {
	mu     sync.Mutex
	logger *zap.Logger
	events []interface{}
}

func NewEventPublisher() *InMemoryEventPublisher {
	return &InMemoryEventPublisher{
		logger: zap.NewNop(),
		events: make([]interface{}, 0),
	}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a snapshot of everything published so far.
func (p *InMemoryEventPublisher) Events() []interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]interface{}, len(p.events))
	copy(out, p.events)
	return out
}
