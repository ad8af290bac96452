package service

import (
	"context"
	"log/slog"

	"github.com/craftkart/order-service/internal/entities"
)

type VariantResolver interface {
	VariantByProviderID(ctx context.Context, providerID string) (entities.Variant, error)
	Invalidate(providerID string)
}

type ProductEnqueuer interface {
	EnqueueProduct(id int64)
}

// CatalogSyncService propagates stock changes made by the order path:
// it drops the stale cached variants and enqueues one product push per
// affected product so the provider sees the new stock levels.
type CatalogSyncService struct {
	logger  *slog.Logger
	catalog VariantResolver
	queue   ProductEnqueuer
}

func NewCatalogSync(logger *slog.Logger, catalog VariantResolver, queue ProductEnqueuer) *CatalogSyncService {
	return &CatalogSyncService{
		logger:  logger.With(slog.String("service", "catalog_sync")),
		catalog: catalog,
		queue:   queue,
	}
}

// StockChanged runs after the stock mutation is committed. Lookup
// failures are logged, not propagated: the order itself already
// succeeded, and the provider's periodic pull reconciles a missed push.
func (s *CatalogSyncService) StockChanged(ctx context.Context, items []entities.OrderItem) {
	products := make(map[int64]struct{}, len(items))
	for _, it := range items {
		s.catalog.Invalidate(it.ProviderVariantID)

		variant, err := s.catalog.VariantByProviderID(ctx, it.ProviderVariantID)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to resolve variant for catalog push",
				slog.String("provider_variant_id", it.ProviderVariantID),
				slog.Any("error", err),
			)
			continue
		}
		products[variant.ProductID] = struct{}{}
	}

	for id := range products {
		s.queue.EnqueueProduct(id)
	}
}
