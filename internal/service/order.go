package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/craftkart/order-service/internal/entities"
	"github.com/craftkart/order-service/internal/repo"
	"github.com/craftkart/order-service/internal/webhook"
	"github.com/craftkart/order-service/pkg/trm"
	"github.com/craftkart/order-service/pkg/utils"
)

// successStatus is the top-level payload status that triggers order
// creation. Anything else on the create path is acknowledged without
// side effects.
const successStatus = "SUCCESS"

// priceTolerance is the allowed gap, in currency units, between the
// computed total and the provider-supplied one before the mismatch is
// logged. The provider total is authoritative either way.
const priceTolerance = 1.0

type OrderRepo interface {
	SaveOrder(ctx context.Context, o entities.Order) error
	GetOrderByExternalID(ctx context.Context, externalID string) (entities.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (entities.Order, error)
	ListOrders(ctx context.Context, f repo.OrderFilter) ([]entities.Order, error)
	UpdateOrderStatus(ctx context.Context, externalID string, status entities.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, externalID string, status entities.PaymentStatus) error
	UpdateTracking(ctx context.Context, externalID string, upd repo.TrackingUpdate) error
	MarkCancelled(ctx context.Context, externalID, reason string, at time.Time) error
}

type Catalog interface {
	VariantByProviderID(ctx context.Context, providerID string) (entities.Variant, error)
	ProductByID(ctx context.Context, id int64) (entities.Product, error)
}

type Stock interface {
	Decrement(ctx context.Context, items []entities.OrderItem) error
	Restore(ctx context.Context, items []entities.OrderItem)
}

type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order entities.Order) error
}

type CatalogSync interface {
	StockChanged(ctx context.Context, items []entities.OrderItem)
}

type EventPublisher interface {
	OrderCreated(ctx context.Context, order entities.Order) error
	OrderCancelled(ctx context.Context, order entities.Order) error
	OrderStatusUpdated(ctx context.Context, order entities.Order) error
}

type OrderService struct {
	logger    *slog.Logger
	txManager trm.Manager
	orders    OrderRepo
	catalog   Catalog
	stock     Stock
	sync      CatalogSync
	mailer    Mailer
	events    EventPublisher
}

func NewOrderService(
	logger *slog.Logger,
	txManager trm.Manager,
	orders OrderRepo,
	catalog Catalog,
	stock Stock,
	sync CatalogSync,
	mailer Mailer,
	events EventPublisher,
) *OrderService {
	return &OrderService{
		logger:    logger.With(slog.String("service", "order")),
		txManager: txManager,
		orders:    orders,
		catalog:   catalog,
		stock:     stock,
		sync:      sync,
		mailer:    mailer,
		events:    events,
	}
}

// CreateFromWebhook reconciles a success delivery into an order.
// created is false both for acknowledged no-ops (non-success top-level
// status, zero order returned) and for replays of an already
// reconciled external id, which return the stored order unchanged with
// no second stock decrement.
func (s *OrderService) CreateFromWebhook(ctx context.Context, p webhook.Payload) (order entities.Order, created bool, err error) {
	if !strings.EqualFold(strings.TrimSpace(p.Status), successStatus) {
		s.logger.InfoContext(ctx, "ignoring non-success order payload",
			slog.String("external_id", p.ExternalID()),
			slog.String("status", p.Status),
		)
		return entities.Order{}, false, nil
	}

	externalID := p.ExternalID()
	if externalID == "" {
		return entities.Order{}, false, entities.ErrMissingOrderID
	}

	existing, err := s.orders.GetOrderByExternalID(ctx, externalID)
	if err == nil {
		s.logger.InfoContext(ctx, "duplicate delivery, returning existing order",
			slog.String("external_id", externalID),
			slog.String("order_number", existing.OrderNumber),
		)
		return existing, false, nil
	}
	if !errors.Is(err, entities.ErrOrderNotFound) {
		return entities.Order{}, false, fmt.Errorf("failed to check for existing order: %w", err)
	}

	if len(p.CartData.Items) == 0 {
		return entities.Order{}, false, entities.ErrEmptyCart
	}

	items, err := s.resolveItems(ctx, p.CartData.Items)
	if err != nil {
		return entities.Order{}, false, err
	}

	order = s.buildOrder(ctx, p, externalID, items)

	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := s.orders.SaveOrder(ctx, order); err != nil {
			return err
		}
		return s.stock.Decrement(ctx, order.Items)
	})
	if errors.Is(err, entities.ErrOrderExists) {
		// Lost the race against a concurrent delivery of the same
		// external id; the winner's row is the order.
		existing, ferr := s.orders.GetOrderByExternalID(ctx, externalID)
		if ferr != nil {
			return entities.Order{}, false, fmt.Errorf("failed to fetch order after duplicate insert: %w", ferr)
		}
		return existing, false, nil
	}
	if err != nil {
		return entities.Order{}, false, err
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("external_id", externalID),
		slog.String("order_number", order.OrderNumber),
		slog.Float64("total", order.Total),
	)

	s.sync.StockChanged(ctx, order.Items)
	s.dispatchConfirmation(order)

	if err := s.events.OrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order created event", slog.Any("error", err))
	}

	return order, true, nil
}

func (s *OrderService) resolveItems(ctx context.Context, cartItems []webhook.CartItem) ([]entities.OrderItem, error) {
	items := make([]entities.OrderItem, 0, len(cartItems))
	for _, ci := range cartItems {
		variant, err := s.catalog.VariantByProviderID(ctx, ci.VariantID)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", ci.VariantID, err)
		}
		product, err := s.catalog.ProductByID(ctx, variant.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", variant.ProductID, err)
		}

		items = append(items, entities.OrderItem{
			VariantID:         variant.ID,
			ProviderVariantID: variant.ProviderID,
			ProductName:       product.Title,
			SKU:               variant.SKU,
			Quantity:          ci.Quantity,
			Price:             variant.Price,
			Subtotal:          variant.Price * float64(ci.Quantity),
		})
	}
	return items, nil
}

func (s *OrderService) buildOrder(ctx context.Context, p webhook.Payload, externalID string, items []entities.OrderItem) entities.Order {
	subtotal := p.SubtotalPrice
	if subtotal == 0 {
		for _, it := range items {
			subtotal += it.Subtotal
		}
	}

	computed := subtotal - p.CouponDiscount - p.PrepaidDiscount + p.ShippingCharges + p.Tax
	total := computed
	if p.TotalAmountPayable > 0 && math.Abs(p.TotalAmountPayable-computed) > priceTolerance {
		s.logger.WarnContext(ctx, "provider total differs from computed total",
			slog.String("external_id", externalID),
			slog.Float64("computed", computed),
			slog.Float64("provider", p.TotalAmountPayable),
		)
		total = p.TotalAmountPayable
	}

	now := time.Now()
	order := entities.Order{
		ExternalID:      externalID,
		OrderNumber:     newOrderNumber(),
		CartID:          p.CartID,
		Phone:           p.Phone,
		Email:           p.Email,
		Items:           items,
		ShippingAddress: toAddress(p.ShippingAddress, p.Phone),
		BillingAddress:  toAddress(p.BillingAddress, p.Phone),
		PaymentType:     p.PaymentType,
		PaymentStatus:   normalizePaymentStatus(p.PaymentStatus),
		Status:          entities.StatusConfirmed,
		Subtotal:        subtotal,
		CouponDiscount:  p.CouponDiscount,
		PrepaidDiscount: p.PrepaidDiscount,
		ShippingCharges: p.ShippingCharges,
		Tax:             p.Tax,
		Total:           total,
		ShippingPlan:    p.ShippingPlan,
		RTOPrediction:   p.RTOPrediction,
		TrackingNumber:  p.TrackingNumber,
		ShipmentID:      p.ShipmentID,
		EDD:             parseEDD(p.EDD),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if len(p.CouponCodes) > 0 {
		order.CouponCode = p.CouponCodes[0]
	}
	return order
}

// dispatchConfirmation sends the confirmation mail off the request
// path. Send failures are logged and never fail order creation.
func (s *OrderService) dispatchConfirmation(order entities.Order) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.mailer.SendOrderConfirmation(ctx, order); err != nil {
			s.logger.Error("failed to send confirmation email",
				slog.String("order_number", order.OrderNumber),
				slog.Any("error", err),
			)
		}
	}()
}

// Cancel transitions the order to CANCELLED and restores stock for
// every item. The restore is best-effort: adding units back cannot
// fail the cancellation.
func (s *OrderService) Cancel(ctx context.Context, orderNumber, reason string) (entities.Order, error) {
	order, err := s.orders.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return entities.Order{}, err
	}
	return s.cancel(ctx, order, reason)
}

// CancelByExternalID is the webhook-side cancellation entry point.
func (s *OrderService) CancelByExternalID(ctx context.Context, externalID, reason string) (entities.Order, error) {
	order, err := s.orders.GetOrderByExternalID(ctx, externalID)
	if err != nil {
		return entities.Order{}, err
	}
	return s.cancel(ctx, order, reason)
}

func (s *OrderService) cancel(ctx context.Context, order entities.Order, reason string) (entities.Order, error) {
	// Replayed cancellations are acknowledged as-is so the provider
	// stops redelivering; stock was already restored the first time.
	if order.Status == entities.StatusCancelled {
		s.logger.InfoContext(ctx, "order already cancelled",
			slog.String("order_number", order.OrderNumber),
		)
		return order, nil
	}
	if !order.Status.CanTransition(entities.StatusCancelled) {
		return entities.Order{}, fmt.Errorf("cannot cancel order in status %s: %w", order.Status, entities.ErrInvalidTransition)
	}

	now := time.Now()
	if err := s.orders.MarkCancelled(ctx, order.ExternalID, reason, now); err != nil {
		return entities.Order{}, err
	}

	s.stock.Restore(ctx, order.Items)
	s.sync.StockChanged(ctx, order.Items)

	order.Status = entities.StatusCancelled
	order.CancelReason = reason
	order.CancelledAt = &now

	s.logger.InfoContext(ctx, "order cancelled",
		slog.String("order_number", order.OrderNumber),
		slog.String("reason", reason),
	)

	if err := s.events.OrderCancelled(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order cancelled event", slog.Any("error", err))
	}

	return order, nil
}

// ApplyShipmentUpdate maps the provider shipment status onto the order
// and records tracking details. Updates for terminal orders are
// acknowledged without effect.
func (s *OrderService) ApplyShipmentUpdate(ctx context.Context, p webhook.Payload) error {
	externalID := p.ExternalID()
	if externalID == "" {
		return entities.ErrMissingOrderID
	}

	order, err := s.orders.GetOrderByExternalID(ctx, externalID)
	if err != nil {
		return err
	}

	status, known := MapShipmentStatus(p.ShipmentStatus)
	if !known {
		s.logger.WarnContext(ctx, "unknown shipment status, defaulting to processing",
			slog.String("external_id", externalID),
			slog.String("shipment_status", p.ShipmentStatus),
		)
	}

	if order.Status.IsTerminal() {
		s.logger.InfoContext(ctx, "ignoring shipment update for terminal order",
			slog.String("order_number", order.OrderNumber),
			slog.String("status", string(order.Status)),
		)
		return nil
	}

	upd := repo.TrackingUpdate{
		Status:         status,
		TrackingNumber: p.TrackingNumber,
		ShipmentID:     p.ShipmentID,
		EDD:            parseEDD(p.EDD),
	}
	if err := s.orders.UpdateTracking(ctx, externalID, upd); err != nil {
		return err
	}

	order.Status = status
	if err := s.events.OrderStatusUpdated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish status updated event", slog.Any("error", err))
	}
	return nil
}

// HandleFailed marks the payment failed on an existing order. A
// failure for an order that was never created needs no action.
func (s *OrderService) HandleFailed(ctx context.Context, p webhook.Payload) error {
	externalID := p.ExternalID()
	if externalID == "" {
		return entities.ErrMissingOrderID
	}

	err := s.orders.UpdatePaymentStatus(ctx, externalID, entities.PaymentFailed)
	if errors.Is(err, entities.ErrOrderNotFound) {
		s.logger.InfoContext(ctx, "payment failure for unknown order, acknowledging",
			slog.String("external_id", externalID),
		)
		return nil
	}
	return err
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderNumber string, next entities.OrderStatus) (entities.Order, error) {
	order, err := s.orders.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return entities.Order{}, err
	}
	if !order.Status.CanTransition(next) {
		return entities.Order{}, fmt.Errorf("%s -> %s: %w", order.Status, next, entities.ErrInvalidTransition)
	}
	if err := s.orders.UpdateOrderStatus(ctx, order.ExternalID, next); err != nil {
		return entities.Order{}, err
	}

	order.Status = next
	if err := s.events.OrderStatusUpdated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish status updated event", slog.Any("error", err))
	}
	return order, nil
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderNumber string, status entities.PaymentStatus) error {
	order, err := s.orders.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return err
	}
	return s.orders.UpdatePaymentStatus(ctx, order.ExternalID, status)
}

func (s *OrderService) GetByNumber(ctx context.Context, orderNumber string) (entities.Order, error) {
	var order entities.Order
	cfg := utils.RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxAttempts:  3,
		Multiplier:   2,
	}
	err := utils.Retry(cfg, func() error {
		var err error
		order, err = s.orders.GetOrderByNumber(ctx, orderNumber)
		return err
	}, entities.ErrOrderNotFound)
	if err != nil {
		return entities.Order{}, err
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, f repo.OrderFilter) ([]entities.Order, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	return s.orders.ListOrders(ctx, f)
}

// newOrderNumber builds a human-referenceable order number from the
// creation timestamp and a randomized 3-digit suffix.
func newOrderNumber() string {
	return fmt.Sprintf("ORD%d%03d", time.Now().UnixMilli(), rand.IntN(1000))
}

func toAddress(a webhook.Address, fallbackName string) entities.Address {
	return entities.Address{
		Name:    a.DisplayName(fallbackName),
		Phone:   a.Phone,
		Line1:   a.Address1,
		Line2:   a.Address2,
		City:    a.City,
		State:   a.State,
		Country: a.Country,
		Pincode: a.Pincode,
	}
}

func normalizePaymentStatus(s string) entities.PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PAID", "SUCCESS", "CAPTURED":
		return entities.PaymentPaid
	case "FAILED", "FAILURE":
		return entities.PaymentFailed
	case "REFUNDED":
		return entities.PaymentRefunded
	default:
		return entities.PaymentPending
	}
}

func parseEDD(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
