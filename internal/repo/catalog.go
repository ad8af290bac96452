package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/craftkart/order-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
)

var variantColumns = []string{"id", "product_id", "provider_id", "sku", "title", "price", "stock"}

func (r *PostgresRepo) GetVariantByProviderID(ctx context.Context, providerID string) (entities.Variant, error) {
	query, args := r.qb.Select(variantColumns...).
		From("product_variants").
		Where(sq.Eq{"provider_id": providerID}).
		MustSql()

	var v Variant
	err := r.getContext(ctx, &v, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Variant{}, entities.ErrVariantNotFound
	}
	if err != nil {
		return entities.Variant{}, fmt.Errorf("failed to get variant: %w", err)
	}
	return VariantToEntity(v), nil
}

func (r *PostgresRepo) GetProductByID(ctx context.Context, id int64) (entities.Product, error) {
	query, args := r.qb.Select("id", "title", "description", "created_at").
		From("products").
		Where(sq.Eq{"id": id}).
		MustSql()

	var p Product
	err := r.getContext(ctx, &p, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Product{}, entities.ErrProductNotFound
	}
	if err != nil {
		return entities.Product{}, fmt.Errorf("failed to get product: %w", err)
	}
	return ProductToEntity(p), nil
}

func (r *PostgresRepo) ListVariantsByProduct(ctx context.Context, productID int64) ([]entities.Variant, error) {
	query, args := r.qb.Select(variantColumns...).
		From("product_variants").
		Where(sq.Eq{"product_id": productID}).
		OrderBy("id").
		MustSql()

	var rows []Variant
	if err := r.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select variants: %w", err)
	}

	variants := make([]entities.Variant, 0, len(rows))
	for _, v := range rows {
		variants = append(variants, VariantToEntity(v))
	}
	return variants, nil
}

// DecrementStock subtracts quantity from the variant's stock only when
// enough units remain. It reports false without error when the guard
// rejects the decrement, so the caller can abort its transaction.
func (r *PostgresRepo) DecrementStock(ctx context.Context, variantID int64, quantity int) (bool, error) {
	query, args := r.qb.Update("product_variants").
		Set("stock", sq.Expr("stock - ?", quantity)).
		Where(sq.Eq{"id": variantID}).
		Where(sq.Expr("stock >= ?", quantity)).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows == 1, nil
}

// IncrementStock adds quantity back to the variant's stock. Increments
// cannot violate the non-negativity invariant, so no guard is needed.
func (r *PostgresRepo) IncrementStock(ctx context.Context, variantID int64, quantity int) error {
	query, args := r.qb.Update("product_variants").
		Set("stock", sq.Expr("stock + ?", quantity)).
		Where(sq.Eq{"id": variantID}).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	return nil
}
