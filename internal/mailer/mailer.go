package mailer

import (
	"context"
	"log/slog"

	"github.com/craftkart/order-service/internal/config"
	"github.com/craftkart/order-service/internal/entities"
)

// LogMailer records confirmation sends instead of delivering them.
// Actual template rendering and delivery live in the mail service;
// this keeps the order pipeline decoupled from it.
type LogMailer struct {
	logger *slog.Logger
	from   string
}

func NewLogMailer(logger *slog.Logger, cfg config.Mail) *LogMailer {
	return &LogMailer{
		logger: logger.With(slog.String("service", "mailer")),
		from:   cfg.From,
	}
}

func (m *LogMailer) SendOrderConfirmation(ctx context.Context, order entities.Order) error {
	m.logger.InfoContext(ctx, "order confirmation dispatched",
		slog.String("from", m.from),
		slog.String("to", order.Email),
		slog.String("order_number", order.OrderNumber),
	)
	return nil
}
