package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/craftkart/order-service/internal/entities"
)

type StockRepo interface {
	DecrementStock(ctx context.Context, variantID int64, quantity int) (bool, error)
	IncrementStock(ctx context.Context, variantID int64, quantity int) error
}

// StockLedger owns all stock mutations. Decrements run inside the
// caller's transaction (carried in ctx) so a multi-item order is
// all-or-nothing; restores are best-effort increments.
type StockLedger struct {
	logger *slog.Logger
	repo   StockRepo
}

func NewStockLedger(logger *slog.Logger, repo StockRepo) *StockLedger {
	return &StockLedger{
		logger: logger.With(slog.String("service", "stock")),
		repo:   repo,
	}
}

// Decrement subtracts each item's quantity from its variant. Any
// guard rejection aborts with InsufficientStockError; the caller's
// transaction rollback undoes the decrements already applied.
func (l *StockLedger) Decrement(ctx context.Context, items []entities.OrderItem) error {
	for _, it := range items {
		ok, err := l.repo.DecrementStock(ctx, it.VariantID, it.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		if !ok {
			return &entities.InsufficientStockError{
				ProviderVariantID: it.ProviderVariantID,
				Requested:         it.Quantity,
			}
		}
	}
	return nil
}

// Restore adds each item's quantity back. Per-item failures are
// logged, never propagated: an increment cannot break the
// non-negativity invariant and a partial restore is reconcilable by
// audit, while failing the surrounding cancellation would not be.
func (l *StockLedger) Restore(ctx context.Context, items []entities.OrderItem) {
	for _, it := range items {
		if err := l.repo.IncrementStock(ctx, it.VariantID, it.Quantity); err != nil {
			l.logger.ErrorContext(ctx, "failed to restore stock",
				slog.Int64("variant_id", it.VariantID),
				slog.Int("quantity", it.Quantity),
				slog.Any("error", err),
			)
		}
	}
}
