package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/craftkart/order-service/internal/entities"
	"github.com/craftkart/order-service/internal/service"
	"github.com/craftkart/order-service/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCatalogRepo struct {
	variant      entities.Variant
	product      entities.Product
	variantCalls int
	productCalls int
}

func (f *countingCatalogRepo) GetVariantByProviderID(_ context.Context, providerID string) (entities.Variant, error) {
	f.variantCalls++
	if providerID != f.variant.ProviderID {
		return entities.Variant{}, entities.ErrVariantNotFound
	}
	return f.variant, nil
}

func (f *countingCatalogRepo) GetProductByID(_ context.Context, id int64) (entities.Product, error) {
	f.productCalls++
	if id != f.product.ID {
		return entities.Product{}, entities.ErrProductNotFound
	}
	return f.product, nil
}

func newCatalogService(repo *countingCatalogRepo) *service.CatalogService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewCatalogService(logger, repo, cache.NewLRUCache(16, time.Minute))
}

func TestCatalogService_VariantReadThrough(t *testing.T) {
	repo := &countingCatalogRepo{
		variant: entities.Variant{ID: 1, ProductID: 10, ProviderID: "1001", SKU: "TS-RED-M", Price: 499},
	}
	svc := newCatalogService(repo)

	first, err := svc.VariantByProviderID(context.Background(), "1001")
	require.NoError(t, err)

	second, err := svc.VariantByProviderID(context.Background(), "1001")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.variantCalls)
}

func TestCatalogService_VariantMissesAreNotCached(t *testing.T) {
	repo := &countingCatalogRepo{
		variant: entities.Variant{ProviderID: "1001"},
	}
	svc := newCatalogService(repo)

	_, err := svc.VariantByProviderID(context.Background(), "9999")
	assert.ErrorIs(t, err, entities.ErrVariantNotFound)

	_, err = svc.VariantByProviderID(context.Background(), "9999")
	assert.ErrorIs(t, err, entities.ErrVariantNotFound)
	assert.Equal(t, 2, repo.variantCalls)
}

func TestCatalogService_ProductReadThrough(t *testing.T) {
	repo := &countingCatalogRepo{
		product: entities.Product{ID: 10, Title: "Red T-Shirt"},
	}
	svc := newCatalogService(repo)

	for range 3 {
		p, err := svc.ProductByID(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, "Red T-Shirt", p.Title)
	}
	assert.Equal(t, 1, repo.productCalls)
}

func TestCatalogService_InvalidateDropsVariant(t *testing.T) {
	repo := &countingCatalogRepo{
		variant: entities.Variant{ProviderID: "1001", Stock: 5},
	}
	svc := newCatalogService(repo)

	_, err := svc.VariantByProviderID(context.Background(), "1001")
	require.NoError(t, err)

	svc.Invalidate("1001")

	repo.variant.Stock = 4
	v, err := svc.VariantByProviderID(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, 4, v.Stock)
	assert.Equal(t, 2, repo.variantCalls)
}
