package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/craftkart/order-service/internal/entities"
)

type CatalogRepo interface {
	GetVariantByProviderID(ctx context.Context, providerID string) (entities.Variant, error)
	GetProductByID(ctx context.Context, id int64) (entities.Product, error)
}

type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
}

// CatalogService resolves catalog records with a read-through cache.
// Webhook reconciliation hits the same handful of variants repeatedly,
// so lookups are cached by provider variant id.
type CatalogService struct {
	logger *slog.Logger
	repo   CatalogRepo
	cache  Cache
}

func NewCatalogService(logger *slog.Logger, repo CatalogRepo, cache Cache) *CatalogService {
	return &CatalogService{
		logger: logger.With(slog.String("service", "catalog")),
		repo:   repo,
		cache:  cache,
	}
}

func variantKey(providerID string) string { return "variant:" + providerID }

func productKey(id int64) string { return fmt.Sprintf("product:%d", id) }

func (s *CatalogService) VariantByProviderID(ctx context.Context, providerID string) (entities.Variant, error) {
	if v, ok := s.cache.Get(variantKey(providerID)); ok {
		if variant, ok := v.(entities.Variant); ok {
			return variant, nil
		}
	}

	variant, err := s.repo.GetVariantByProviderID(ctx, providerID)
	if err != nil {
		return entities.Variant{}, err
	}

	s.cache.Set(variantKey(providerID), variant)
	return variant, nil
}

func (s *CatalogService) ProductByID(ctx context.Context, id int64) (entities.Product, error) {
	if v, ok := s.cache.Get(productKey(id)); ok {
		if product, ok := v.(entities.Product); ok {
			return product, nil
		}
	}

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return entities.Product{}, err
	}

	s.cache.Set(productKey(id), product)
	return product, nil
}

// Invalidate drops the cached variant after a stock or price change.
func (s *CatalogService) Invalidate(providerID string) {
	s.cache.Delete(variantKey(providerID))
}
