package shiprocket

import (
	"context"
	"fmt"

	"github.com/craftkart/order-service/internal/entities"
)

type CatalogSource interface {
	GetProductByID(ctx context.Context, id int64) (entities.Product, error)
	ListVariantsByProduct(ctx context.Context, productID int64) ([]entities.Variant, error)
}

type ProductSender interface {
	PushProduct(ctx context.Context, p ProductPush) error
	PushCollection(ctx context.Context, col CollectionPush) error
}

// CatalogPusher resolves a retry job's target into a push payload at
// send time, so a job retried minutes later carries current catalog
// state rather than the state at enqueue time.
type CatalogPusher struct {
	catalog CatalogSource
	sender  ProductSender
}

func NewCatalogPusher(catalog CatalogSource, sender ProductSender) *CatalogPusher {
	return &CatalogPusher{catalog: catalog, sender: sender}
}

func (p *CatalogPusher) Push(ctx context.Context, job Job) error {
	switch job.Kind {
	case JobProduct:
		product, err := p.catalog.GetProductByID(ctx, job.TargetID)
		if err != nil {
			return fmt.Errorf("failed to load product %d: %w", job.TargetID, err)
		}
		variants, err := p.catalog.ListVariantsByProduct(ctx, job.TargetID)
		if err != nil {
			return fmt.Errorf("failed to load variants for product %d: %w", job.TargetID, err)
		}

		push := ProductPush{
			ID:       product.ID,
			Title:    product.Title,
			Variants: make([]VariantPush, 0, len(variants)),
		}
		for _, v := range variants {
			push.Variants = append(push.Variants, VariantPush{
				VariantID: v.ProviderID,
				SKU:       v.SKU,
				Title:     v.Title,
				Price:     v.Price,
				Stock:     v.Stock,
			})
		}
		return p.sender.PushProduct(ctx, push)

	case JobCollection:
		return p.sender.PushCollection(ctx, CollectionPush{ID: job.TargetID})

	default:
		return fmt.Errorf("unknown job kind %q", job.Kind)
	}
}
