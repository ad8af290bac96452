package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/craftkart/order-service/internal/entities"

	sq "github.com/Masterminds/squirrel"
)

var orderColumns = []string{
	"external_id", "order_number", "cart_id", "phone", "email",
	"payment_type", "payment_status", "status",
	"subtotal", "coupon_discount", "prepaid_discount", "shipping_charges", "tax", "total",
	"coupon_code", "shipping_plan", "rto_prediction",
	"tracking_number", "shipment_id", "edd",
	"cancel_reason", "cancelled_at", "created_at", "updated_at",
}

// SaveOrder inserts the order with its address snapshots and items.
// A duplicate external id fails with entities.ErrOrderExists so the
// caller can re-fetch instead of double-creating.
func (r *PostgresRepo) SaveOrder(ctx context.Context, o entities.Order) error {
	query, args := r.qb.Insert("orders").
		Columns(orderColumns...).
		Values(
			o.ExternalID, o.OrderNumber, nullString(o.CartID), nullString(o.Phone), nullString(o.Email),
			o.PaymentType, string(o.PaymentStatus), string(o.Status),
			o.Subtotal, o.CouponDiscount, o.PrepaidDiscount, o.ShippingCharges, o.Tax, o.Total,
			nullString(o.CouponCode), nullString(o.ShippingPlan), nullString(o.RTOPrediction),
			nullString(o.TrackingNumber), nullString(o.ShipmentID), nullTime(o.EDD),
			nullString(o.CancelReason), nullTime(o.CancelledAt), o.CreatedAt, o.UpdatedAt,
		).
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return entities.ErrOrderExists
		}
		return fmt.Errorf("failed to save order: %w", err)
	}

	if err := r.saveAddresses(ctx, o); err != nil {
		return err
	}
	return r.saveItems(ctx, o.ExternalID, o.Items)
}

func (r *PostgresRepo) saveAddresses(ctx context.Context, o entities.Order) error {
	q := r.qb.Insert("order_addresses").
		Columns("external_id", "kind", "name", "phone", "line1", "line2", "city", "state", "country", "pincode")

	for kind, a := range map[string]entities.Address{
		addressKindShipping: o.ShippingAddress,
		addressKindBilling:  o.BillingAddress,
	} {
		q = q.Values(o.ExternalID, kind,
			nullString(a.Name), nullString(a.Phone),
			nullString(a.Line1), nullString(a.Line2),
			nullString(a.City), nullString(a.State),
			nullString(a.Country), nullString(a.Pincode),
		)
	}

	query, args := q.MustSql()
	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save order addresses: %w", err)
	}
	return nil
}

func (r *PostgresRepo) saveItems(ctx context.Context, externalID string, items []entities.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	q := r.qb.Insert("order_items").
		Columns("external_id", "variant_id", "provider_variant_id", "product_name", "sku", "quantity", "price", "subtotal")

	for _, it := range items {
		q = q.Values(externalID, it.VariantID, it.ProviderVariantID, it.ProductName, it.SKU, it.Quantity, it.Price, it.Subtotal)
	}

	query, args := q.MustSql()
	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save order items: %w", err)
	}
	return nil
}

func (r *PostgresRepo) GetOrderByExternalID(ctx context.Context, externalID string) (entities.Order, error) {
	return r.getOrder(ctx, sq.Eq{"external_id": externalID})
}

func (r *PostgresRepo) GetOrderByNumber(ctx context.Context, orderNumber string) (entities.Order, error) {
	return r.getOrder(ctx, sq.Eq{"order_number": orderNumber})
}

func (r *PostgresRepo) getOrder(ctx context.Context, where sq.Eq) (entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(where).
		MustSql()

	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	query, args = r.qb.Select("external_id", "kind", "name", "phone", "line1", "line2", "city", "state", "country", "pincode").
		From("order_addresses").
		Where(sq.Eq{"external_id": order.ExternalID}).
		MustSql()

	var addrs []OrderAddress
	if err := r.selectContext(ctx, &addrs, query, args...); err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order addresses: %w", err)
	}

	query, args = r.qb.Select("external_id", "variant_id", "provider_variant_id", "product_name", "sku", "quantity", "price", "subtotal").
		From("order_items").
		Where(sq.Eq{"external_id": order.ExternalID}).
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order items: %w", err)
	}

	return OrderToEntity(order, addrs, items), nil
}

type OrderFilter struct {
	Phone  string
	Email  string
	Status entities.OrderStatus
	Limit  int
}

// ListOrders returns recent orders matching the filter, items and
// addresses batched in two follow-up selects.
func (r *PostgresRepo) ListOrders(ctx context.Context, f OrderFilter) ([]entities.Order, error) {
	q := r.qb.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC")

	if f.Phone != "" {
		q = q.Where(sq.Eq{"phone": f.Phone})
	}
	if f.Email != "" {
		q = q.Where(sq.Eq{"email": f.Email})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": string(f.Status)})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	query, args := q.MustSql()

	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select orders: %w", err)
	}
	if len(orders) == 0 {
		return []entities.Order{}, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ExternalID
	}

	query, args = r.qb.Select("external_id", "kind", "name", "phone", "line1", "line2", "city", "state", "country", "pincode").
		From("order_addresses").
		Where(sq.Eq{"external_id": ids}).
		MustSql()

	var addrs []OrderAddress
	if err := r.selectContext(ctx, &addrs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select order addresses: %w", err)
	}
	addrMap := make(map[string][]OrderAddress, len(ids))
	for _, a := range addrs {
		addrMap[a.ExternalID] = append(addrMap[a.ExternalID], a)
	}

	query, args = r.qb.Select("external_id", "variant_id", "provider_variant_id", "product_name", "sku", "quantity", "price", "subtotal").
		From("order_items").
		Where(sq.Eq{"external_id": ids}).
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select order items: %w", err)
	}
	itemsMap := make(map[string][]OrderItem, len(ids))
	for _, it := range items {
		itemsMap[it.ExternalID] = append(itemsMap[it.ExternalID], it)
	}

	result := make([]entities.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderToEntity(o, addrMap[o.ExternalID], itemsMap[o.ExternalID]))
	}
	return result, nil
}

func (r *PostgresRepo) UpdateOrderStatus(ctx context.Context, externalID string, status entities.OrderStatus) error {
	return r.updateOrder(ctx, externalID, sq.Eq{"status": string(status)})
}

func (r *PostgresRepo) UpdatePaymentStatus(ctx context.Context, externalID string, status entities.PaymentStatus) error {
	return r.updateOrder(ctx, externalID, sq.Eq{"payment_status": string(status)})
}

type TrackingUpdate struct {
	Status         entities.OrderStatus
	TrackingNumber string
	ShipmentID     string
	EDD            *time.Time
}

func (r *PostgresRepo) UpdateTracking(ctx context.Context, externalID string, upd TrackingUpdate) error {
	set := sq.Eq{"status": string(upd.Status)}
	if upd.TrackingNumber != "" {
		set["tracking_number"] = upd.TrackingNumber
	}
	if upd.ShipmentID != "" {
		set["shipment_id"] = upd.ShipmentID
	}
	if upd.EDD != nil {
		set["edd"] = *upd.EDD
	}
	return r.updateOrder(ctx, externalID, set)
}

func (r *PostgresRepo) MarkCancelled(ctx context.Context, externalID, reason string, at time.Time) error {
	return r.updateOrder(ctx, externalID, sq.Eq{
		"status":        string(entities.StatusCancelled),
		"cancel_reason": reason,
		"cancelled_at":  at,
	})
}

func (r *PostgresRepo) updateOrder(ctx context.Context, externalID string, set sq.Eq) error {
	q := r.qb.Update("orders").Where(sq.Eq{"external_id": externalID})
	for col, val := range set {
		q = q.Set(col, val)
	}
	q = q.Set("updated_at", time.Now())

	query, args := q.MustSql()
	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return entities.ErrOrderNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
