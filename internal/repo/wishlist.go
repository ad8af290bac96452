package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/craftkart/order-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
)

func (r *PostgresRepo) ListWishlist(ctx context.Context, customerID string) ([]entities.WishlistEntry, error) {
	query, args := r.qb.Select("customer_id", "variant_id", "added_at").
		From("wishlists").
		Where(sq.Eq{"customer_id": customerID}).
		OrderBy("added_at DESC").
		MustSql()

	var rows []WishlistEntry
	if err := r.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select wishlist: %w", err)
	}

	entries := make([]entities.WishlistEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entities.WishlistEntry{
			CustomerID: row.CustomerID,
			VariantID:  row.VariantID,
			AddedAt:    row.AddedAt,
		})
	}
	return entries, nil
}

// AddToWishlist is idempotent: re-adding an already wished variant is
// a no-op.
func (r *PostgresRepo) AddToWishlist(ctx context.Context, customerID string, variantID int64) error {
	query, args := r.qb.Insert("wishlists").
		Columns("customer_id", "variant_id", "added_at").
		Values(customerID, variantID, time.Now()).
		Suffix("ON CONFLICT (customer_id, variant_id) DO NOTHING").
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to add wishlist entry: %w", err)
	}
	return nil
}

func (r *PostgresRepo) RemoveFromWishlist(ctx context.Context, customerID string, variantID int64) error {
	query, args := r.qb.Delete("wishlists").
		Where(sq.Eq{"customer_id": customerID, "variant_id": variantID}).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to remove wishlist entry: %w", err)
	}
	return nil
}
