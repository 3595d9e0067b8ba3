// Package kafka consumes order lifecycle events and drives the reservation
// lifecycle: a placed order reserves stock, a cancelled order releases it,
// a fulfilled order commits it.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inventory-ledger-service/internal/config"
	"inventory-ledger-service/internal/domain"
	"inventory-ledger-service/internal/reservation"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderEvent is the order-service message shape on the orders topic.
type OrderEvent struct {
	Type      string `json:"type"` // OrderPlaced, OrderCancelled, OrderFulfilled
	OrderID   string `json:"orderId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
	ActorID   string `json:"actorId"`
}

// Consumer consumes order events from Kafka.
type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	reservations  *reservation.Service
	logger        *zap.Logger
	topics        []string
}

// NewConsumer creates a consumer group on the orders topic.
func NewConsumer(cfg *config.Config, reservations *reservation.Service, logger *zap.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.KafkaClientID
	saramaConfig.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Version = sarama.V2_8_0_0
	saramaConfig.Net.DialTimeout = 10 * time.Second
	saramaConfig.Net.ReadTimeout = 10 * time.Second
	saramaConfig.Net.WriteTimeout = 10 * time.Second

	consumerGroup, err := sarama.NewConsumerGroup(cfg.KafkaBrokers, cfg.KafkaGroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	logger.Info("Kafka consumer group created",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("group_id", cfg.KafkaGroupID),
		zap.String("topic", cfg.KafkaTopicOrders),
	)

	return &Consumer{
		consumerGroup: consumerGroup,
		reservations:  reservations,
		logger:        logger,
		topics:        []string{cfg.KafkaTopicOrders},
	}, nil
}

// Start consumes until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &consumerGroupHandler{
		reservations: c.reservations,
		logger:       c.logger,
	}

	go func() {
		for err := range c.consumerGroup.Errors() {
			c.logger.Error("Consumer error", zap.Error(err))
		}
	}()

	for {
		if err := c.consumerGroup.Consume(ctx, c.topics, handler); err != nil {
			c.logger.Error("Error from consumer", zap.Error(err))
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close shuts the consumer group down.
func (c *Consumer) Close() error {
	return c.consumerGroup.Close()
}

type consumerGroupHandler struct {
	reservations *reservation.Service
	logger       *zap.Logger
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		h.handleMessage(session.Context(), message)
		session.MarkMessage(message, "")
	}
	return nil
}

func (h *consumerGroupHandler) handleMessage(ctx context.Context, message *sarama.ConsumerMessage) {
	var event OrderEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		h.logger.Error("Failed to unmarshal order event",
			zap.Int64("offset", message.Offset),
			zap.Error(err),
		)
		return
	}

	variantID, err := uuid.Parse(event.VariantID)
	if err != nil {
		h.logger.Error("Order event carries invalid variant id",
			zap.String("order_id", event.OrderID),
			zap.String("variant_id", event.VariantID),
		)
		return
	}

	var snap *reservation.Snapshot
	switch event.Type {
	case "OrderPlaced":
		snap, err = h.reservations.Reserve(ctx, variantID, event.Quantity, event.OrderID, event.ActorID)
	case "OrderCancelled":
		snap, err = h.reservations.Release(ctx, variantID, event.Quantity, event.OrderID, event.ActorID)
	case "OrderFulfilled":
		snap, err = h.reservations.Commit(ctx, variantID, event.Quantity, event.OrderID, event.ActorID)
	default:
		h.logger.Warn("Unknown order event type", zap.String("type", event.Type))
		return
	}

	if err != nil {
		// Guard violations are terminal for this message: the order flow
		// owns surfacing "not enough stock" to the user. The message is
		// still acknowledged.
		if domainErr, ok := err.(*domain.Error); ok {
			h.logger.Warn("Order event rejected",
				zap.String("type", event.Type),
				zap.String("order_id", event.OrderID),
				zap.String("variant_id", event.VariantID),
				zap.Int("quantity", event.Quantity),
				zap.String("code", domainErr.Code),
			)
			return
		}
		h.logger.Error("Failed to process order event",
			zap.String("type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
		return
	}

	h.logger.Info("Order event processed",
		zap.String("type", event.Type),
		zap.String("order_id", event.OrderID),
		zap.String("variant_id", event.VariantID),
		zap.Int("quantity", event.Quantity),
		zap.Int("available", snap.Available),
	)
}
