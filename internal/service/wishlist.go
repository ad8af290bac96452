package service

import (
	"context"
	"log/slog"

	"github.com/craftkart/order-service/internal/entities"
)

type WishlistRepo interface {
	ListWishlist(ctx context.Context, customerID string) ([]entities.WishlistEntry, error)
	AddToWishlist(ctx context.Context, customerID string, variantID int64) error
	RemoveFromWishlist(ctx context.Context, customerID string, variantID int64) error
}

type WishlistService struct {
	logger *slog.Logger
	repo   WishlistRepo
}

func NewWishlistService(logger *slog.Logger, repo WishlistRepo) *WishlistService {
	return &WishlistService{
		logger: logger.With(slog.String("service", "wishlist")),
		repo:   repo,
	}
}

func (s *WishlistService) List(ctx context.Context, customerID string) ([]entities.WishlistEntry, error) {
	return s.repo.ListWishlist(ctx, customerID)
}

func (s *WishlistService) Add(ctx context.Context, customerID string, variantID int64) error {
	if err := s.repo.AddToWishlist(ctx, customerID, variantID); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "wishlist entry added",
		slog.String("customer_id", customerID),
		slog.Int64("variant_id", variantID),
	)
	return nil
}

func (s *WishlistService) Remove(ctx context.Context, customerID string, variantID int64) error {
	return s.repo.RemoveFromWishlist(ctx, customerID, variantID)
}
