package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/craftkart/order-service/internal/config"
	"github.com/craftkart/order-service/internal/entities"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderCancelled     = "order.cancelled"
	TypeOrderStatusUpdated = "order.status_updated"
)

// Event is the envelope published to the order-events topic for
// downstream consumers (analytics, notifications, fulfilment).
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	ExternalID  string    `json:"external_id"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	Total       float64   `json:"total,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Publisher struct {
	logger *slog.Logger
	writer *kafka.Writer
}

func NewPublisher(logger *slog.Logger, cfg config.Kafka) *Publisher {
	return &Publisher{
		logger: logger.With(slog.String("service", "events")),
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
	}
}

func (p *Publisher) OrderCreated(ctx context.Context, order entities.Order) error {
	return p.publish(ctx, TypeOrderCreated, order)
}

func (p *Publisher) OrderCancelled(ctx context.Context, order entities.Order) error {
	return p.publish(ctx, TypeOrderCancelled, order)
}

func (p *Publisher) OrderStatusUpdated(ctx context.Context, order entities.Order) error {
	return p.publish(ctx, TypeOrderStatusUpdated, order)
}

func (p *Publisher) publish(ctx context.Context, eventType string, order entities.Order) error {
	event := Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		ExternalID:  order.ExternalID,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Total:       order.Total,
		OccurredAt:  time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Key by external id so all events of one order land in the same
	// partition, preserving their order for consumers.
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.ExternalID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	p.logger.DebugContext(ctx, "event published",
		slog.String("type", eventType),
		slog.String("order_number", order.OrderNumber),
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
