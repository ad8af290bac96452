package service_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/craftkart/order-service/internal/entities"
	"github.com/craftkart/order-service/internal/repo"
	"github.com/craftkart/order-service/internal/service"
	"github.com/craftkart/order-service/internal/webhook"
	"github.com/craftkart/order-service/pkg/trm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) BeginTx(ctx context.Context, _ *sql.TxOptions) (context.Context, trm.Transaction, error) {
	return ctx, nil, nil
}

func (f *fakeTxManager) Do(ctx context.Context, cb func(ctx context.Context) error) error {
	f.calls++
	return cb(ctx)
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, cb func(ctx context.Context) error) error {
	f.calls++
	return cb(ctx)
}

type fakeOrderRepo struct {
	orders    map[string]entities.Order
	saveErr   error
	saveCalls int
	// raceOrder becomes visible to GetOrderByExternalID after the
	// first SaveOrder call, simulating a concurrent insert winner.
	raceOrder *entities.Order

	getByNumberErrs []error
	getByNumber     int

	statusUpdates   map[string]entities.OrderStatus
	paymentUpdates  map[string]entities.PaymentStatus
	trackingUpdates map[string]repo.TrackingUpdate
	cancelled       []string
	updateErr       error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:          make(map[string]entities.Order),
		statusUpdates:   make(map[string]entities.OrderStatus),
		paymentUpdates:  make(map[string]entities.PaymentStatus),
		trackingUpdates: make(map[string]repo.TrackingUpdate),
	}
}

func (f *fakeOrderRepo) SaveOrder(_ context.Context, o entities.Order) error {
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.orders[o.ExternalID] = o
	return nil
}

func (f *fakeOrderRepo) GetOrderByExternalID(_ context.Context, externalID string) (entities.Order, error) {
	if o, ok := f.orders[externalID]; ok {
		return o, nil
	}
	if f.raceOrder != nil && f.saveCalls > 0 {
		return *f.raceOrder, nil
	}
	return entities.Order{}, entities.ErrOrderNotFound
}

func (f *fakeOrderRepo) GetOrderByNumber(_ context.Context, orderNumber string) (entities.Order, error) {
	f.getByNumber++
	if len(f.getByNumberErrs) > 0 {
		err := f.getByNumberErrs[0]
		f.getByNumberErrs = f.getByNumberErrs[1:]
		if err != nil {
			return entities.Order{}, err
		}
	}
	for _, o := range f.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return entities.Order{}, entities.ErrOrderNotFound
}

func (f *fakeOrderRepo) ListOrders(_ context.Context, _ repo.OrderFilter) ([]entities.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(_ context.Context, externalID string, status entities.OrderStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.statusUpdates[externalID] = status
	return nil
}

func (f *fakeOrderRepo) UpdatePaymentStatus(_ context.Context, externalID string, status entities.PaymentStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.paymentUpdates[externalID] = status
	return nil
}

func (f *fakeOrderRepo) UpdateTracking(_ context.Context, externalID string, upd repo.TrackingUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.trackingUpdates[externalID] = upd
	return nil
}

func (f *fakeOrderRepo) MarkCancelled(_ context.Context, externalID, _ string, _ time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.cancelled = append(f.cancelled, externalID)
	return nil
}

type fakeCatalog struct {
	variants map[string]entities.Variant
	products map[int64]entities.Product
}

func (f *fakeCatalog) VariantByProviderID(_ context.Context, providerID string) (entities.Variant, error) {
	if v, ok := f.variants[providerID]; ok {
		return v, nil
	}
	return entities.Variant{}, entities.ErrVariantNotFound
}

func (f *fakeCatalog) ProductByID(_ context.Context, id int64) (entities.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return entities.Product{}, entities.ErrProductNotFound
}

type fakeStock struct {
	decremented      []entities.OrderItem
	restored         []entities.OrderItem
	insufficientProv string
}

func (f *fakeStock) Decrement(_ context.Context, items []entities.OrderItem) error {
	for _, it := range items {
		if it.ProviderVariantID == f.insufficientProv {
			return &entities.InsufficientStockError{
				ProviderVariantID: it.ProviderVariantID,
				Requested:         it.Quantity,
			}
		}
	}
	f.decremented = append(f.decremented, items...)
	return nil
}

func (f *fakeStock) Restore(_ context.Context, items []entities.OrderItem) {
	f.restored = append(f.restored, items...)
}

type fakeSync struct {
	changed [][]entities.OrderItem
}

func (f *fakeSync) StockChanged(_ context.Context, items []entities.OrderItem) {
	f.changed = append(f.changed, items)
}

type fakeMailer struct {
	err error
}

func (f *fakeMailer) SendOrderConfirmation(context.Context, entities.Order) error { return f.err }

type fakeEvents struct {
	created   int
	cancelled int
	updated   int
}

func (f *fakeEvents) OrderCreated(context.Context, entities.Order) error {
	f.created++
	return nil
}

func (f *fakeEvents) OrderCancelled(context.Context, entities.Order) error {
	f.cancelled++
	return nil
}

func (f *fakeEvents) OrderStatusUpdated(context.Context, entities.Order) error {
	f.updated++
	return nil
}

type orderFixture struct {
	repo    *fakeOrderRepo
	catalog *fakeCatalog
	stock   *fakeStock
	sync    *fakeSync
	mailer  *fakeMailer
	events  *fakeEvents
	tx      *fakeTxManager
	svc     *service.OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		repo: newFakeOrderRepo(),
		catalog: &fakeCatalog{
			variants: map[string]entities.Variant{
				"1001": {ID: 1, ProductID: 10, ProviderID: "1001", SKU: "TS-RED-M", Price: 499, Stock: 5},
				"1002": {ID: 2, ProductID: 10, ProviderID: "1002", SKU: "TS-RED-L", Price: 549, Stock: 2},
			},
			products: map[int64]entities.Product{
				10: {ID: 10, Title: "Red T-Shirt"},
			},
		},
		stock:  &fakeStock{},
		sync:   &fakeSync{},
		mailer: &fakeMailer{},
		events: &fakeEvents{},
		tx:     &fakeTxManager{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = service.NewOrderService(logger, f.tx, f.repo, f.catalog, f.stock, f.sync, f.mailer, f.events)
	return f
}

func successPayload() webhook.Payload {
	return webhook.Payload{
		OrderID:       "SR100",
		CartID:        "cart-1",
		Status:        "SUCCESS",
		Phone:         "+911234567890",
		Email:         "asha@example.com",
		PaymentType:   "PREPAID",
		PaymentStatus: "PAID",
		CartData: webhook.CartData{
			Items: []webhook.CartItem{
				{VariantID: "1001", Quantity: 2},
				{VariantID: "1002", Quantity: 1},
			},
		},
		SubtotalPrice:   1547,
		ShippingCharges: 49,
		Tax:             50,
	}
}

func TestOrderService_CreateFromWebhook(t *testing.T) {
	t.Run("creates order and decrements stock", func(t *testing.T) {
		f := newOrderFixture()

		order, created, err := f.svc.CreateFromWebhook(context.Background(), successPayload())
		require.NoError(t, err)
		assert.True(t, created)

		assert.Equal(t, "SR100", order.ExternalID)
		assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD"))
		assert.Equal(t, entities.StatusConfirmed, order.Status)
		assert.Equal(t, entities.PaymentPaid, order.PaymentStatus)
		assert.InDelta(t, 1547+49+50, order.Total, 0.001)

		require.Len(t, order.Items, 2)
		assert.Equal(t, "Red T-Shirt", order.Items[0].ProductName)
		assert.InDelta(t, 998, order.Items[0].Subtotal, 0.001)

		assert.Equal(t, 1, f.tx.calls)
		assert.Len(t, f.stock.decremented, 2)
		assert.Equal(t, 1, f.events.created)

		require.Len(t, f.sync.changed, 1)
		assert.Equal(t, order.Items, f.sync.changed[0])
	})

	t.Run("non-success status is a no-op ack", func(t *testing.T) {
		f := newOrderFixture()
		p := successPayload()
		p.Status = "INITIATED"

		order, created, err := f.svc.CreateFromWebhook(context.Background(), p)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Empty(t, order.ExternalID)
		assert.Zero(t, f.repo.saveCalls)
	})

	t.Run("missing order id", func(t *testing.T) {
		f := newOrderFixture()
		p := successPayload()
		p.OrderID = ""
		p.FastrrOrderID = ""

		_, _, err := f.svc.CreateFromWebhook(context.Background(), p)
		assert.ErrorIs(t, err, entities.ErrMissingOrderID)
	})

	t.Run("duplicate delivery returns existing order without new decrement", func(t *testing.T) {
		f := newOrderFixture()
		existing := entities.Order{ExternalID: "SR100", OrderNumber: "ORD1", Status: entities.StatusShipped}
		f.repo.orders["SR100"] = existing

		order, created, err := f.svc.CreateFromWebhook(context.Background(), successPayload())
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existing, order)
		assert.Zero(t, f.repo.saveCalls)
		assert.Empty(t, f.stock.decremented)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newOrderFixture()
		p := successPayload()
		p.CartData.Items = nil

		_, _, err := f.svc.CreateFromWebhook(context.Background(), p)
		assert.ErrorIs(t, err, entities.ErrEmptyCart)
	})

	t.Run("unknown variant", func(t *testing.T) {
		f := newOrderFixture()
		p := successPayload()
		p.CartData.Items = []webhook.CartItem{{VariantID: "9999", Quantity: 1}}

		_, _, err := f.svc.CreateFromWebhook(context.Background(), p)
		assert.ErrorIs(t, err, entities.ErrVariantNotFound)
		assert.Zero(t, f.repo.saveCalls)
	})

	t.Run("insufficient stock aborts creation", func(t *testing.T) {
		f := newOrderFixture()
		f.stock.insufficientProv = "1002"

		_, _, err := f.svc.CreateFromWebhook(context.Background(), successPayload())

		var insufficientErr *entities.InsufficientStockError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, "1002", insufficientErr.ProviderVariantID)
		assert.Zero(t, f.events.created)
	})

	t.Run("concurrent insert loser re-fetches the winner", func(t *testing.T) {
		f := newOrderFixture()
		winner := entities.Order{ExternalID: "SR100", OrderNumber: "ORD-WINNER"}
		f.repo.saveErr = entities.ErrOrderExists
		f.repo.raceOrder = &winner

		order, created, err := f.svc.CreateFromWebhook(context.Background(), successPayload())
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, winner, order)
	})

	t.Run("provider total wins beyond tolerance", func(t *testing.T) {
		f := newOrderFixture()
		p := successPayload()
		p.TotalAmountPayable = 1500 // computed is 1646

		order, created, err := f.svc.CreateFromWebhook(context.Background(), p)
		require.NoError(t, err)
		assert.True(t, created)
		assert.InDelta(t, 1500, order.Total, 0.001)
	})

	t.Run("computed total stands within tolerance", func(t *testing.T) {
		f := newOrderFixture()
		p := successPayload()
		p.TotalAmountPayable = 1646.5

		order, _, err := f.svc.CreateFromWebhook(context.Background(), p)
		require.NoError(t, err)
		assert.InDelta(t, 1646, order.Total, 0.001)
	})

	t.Run("confirmation mail failure does not fail creation", func(t *testing.T) {
		f := newOrderFixture()
		f.mailer.err = errors.New("smtp unavailable")

		_, created, err := f.svc.CreateFromWebhook(context.Background(), successPayload())
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("discounts reduce the computed total", func(t *testing.T) {
		f := newOrderFixture()
		p := successPayload()
		p.CouponDiscount = 100
		p.PrepaidDiscount = 47
		p.CouponCodes = []string{"WELCOME100", "EXTRA"}

		order, _, err := f.svc.CreateFromWebhook(context.Background(), p)
		require.NoError(t, err)
		assert.InDelta(t, 1547-100-47+49+50, order.Total, 0.001)
		assert.Equal(t, "WELCOME100", order.CouponCode)
	})
}

func TestOrderService_Cancel(t *testing.T) {
	t.Run("cancels and restores stock", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.orders["SR100"] = entities.Order{
			ExternalID:  "SR100",
			OrderNumber: "ORD1",
			Status:      entities.StatusConfirmed,
			Items:       []entities.OrderItem{{VariantID: 1, Quantity: 2}},
		}

		order, err := f.svc.Cancel(context.Background(), "ORD1", "customer request")
		require.NoError(t, err)

		assert.Equal(t, entities.StatusCancelled, order.Status)
		assert.Equal(t, "customer request", order.CancelReason)
		require.NotNil(t, order.CancelledAt)
		assert.Equal(t, []string{"SR100"}, f.repo.cancelled)
		assert.Len(t, f.stock.restored, 1)
		assert.Len(t, f.sync.changed, 1)
		assert.Equal(t, 1, f.events.cancelled)
	})

	t.Run("replayed cancellation is acknowledged without a second restore", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.orders["SR100"] = entities.Order{
			ExternalID:  "SR100",
			OrderNumber: "ORD1",
			Status:      entities.StatusConfirmed,
			Items:       []entities.OrderItem{{VariantID: 1, Quantity: 2}},
		}

		first, err := f.svc.CancelByExternalID(context.Background(), "SR100", "cancelled by provider")
		require.NoError(t, err)
		f.repo.orders["SR100"] = first

		second, err := f.svc.CancelByExternalID(context.Background(), "SR100", "cancelled by provider")
		require.NoError(t, err)
		assert.Equal(t, entities.StatusCancelled, second.Status)

		assert.Equal(t, []string{"SR100"}, f.repo.cancelled)
		assert.Len(t, f.stock.restored, 1)
		assert.Equal(t, 1, f.events.cancelled)
	})

	t.Run("terminal order cannot be cancelled", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.orders["SR100"] = entities.Order{
			ExternalID:  "SR100",
			OrderNumber: "ORD1",
			Status:      entities.StatusDelivered,
		}

		_, err := f.svc.Cancel(context.Background(), "ORD1", "too late")
		assert.ErrorIs(t, err, entities.ErrInvalidTransition)
		assert.Empty(t, f.repo.cancelled)
		assert.Empty(t, f.stock.restored)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newOrderFixture()

		_, err := f.svc.Cancel(context.Background(), "ORD-NOPE", "whatever")
		assert.ErrorIs(t, err, entities.ErrOrderNotFound)
	})

	t.Run("cancel by external id", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.orders["SR100"] = entities.Order{
			ExternalID:  "SR100",
			OrderNumber: "ORD1",
			Status:      entities.StatusProcessing,
		}

		order, err := f.svc.CancelByExternalID(context.Background(), "SR100", "provider cancelled")
		require.NoError(t, err)
		assert.Equal(t, entities.StatusCancelled, order.Status)
	})
}

func TestOrderService_ApplyShipmentUpdate(t *testing.T) {
	payload := func(status string) webhook.Payload {
		return webhook.Payload{
			OrderID:        "SR100",
			ShipmentStatus: status,
			TrackingNumber: "AWB123",
			ShipmentID:     "SHIP1",
		}
	}

	t.Run("maps status and records tracking", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.orders["SR100"] = entities.Order{ExternalID: "SR100", Status: entities.StatusConfirmed}

		err := f.svc.ApplyShipmentUpdate(context.Background(), payload("IN_TRANSIT"))
		require.NoError(t, err)

		upd, ok := f.repo.trackingUpdates["SR100"]
		require.True(t, ok)
		assert.Equal(t, entities.StatusShipped, upd.Status)
		assert.Equal(t, "AWB123", upd.TrackingNumber)
		assert.Equal(t, "SHIP1", upd.ShipmentID)
		assert.Equal(t, 1, f.events.updated)
	})

	t.Run("unknown status falls back to processing", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.orders["SR100"] = entities.Order{ExternalID: "SR100", Status: entities.StatusConfirmed}

		err := f.svc.ApplyShipmentUpdate(context.Background(), payload("TELEPORTED"))
		require.NoError(t, err)
		assert.Equal(t, entities.StatusProcessing, f.repo.trackingUpdates["SR100"].Status)
	})

	t.Run("terminal order is acknowledged untouched", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.orders["SR100"] = entities.Order{ExternalID: "SR100", Status: entities.StatusDelivered}

		err := f.svc.ApplyShipmentUpdate(context.Background(), payload("IN_TRANSIT"))
		require.NoError(t, err)
		assert.Empty(t, f.repo.trackingUpdates)
		assert.Zero(t, f.events.updated)
	})

	t.Run("unknown order propagates", func(t *testing.T) {
		f := newOrderFixture()

		err := f.svc.ApplyShipmentUpdate(context.Background(), payload("IN_TRANSIT"))
		assert.ErrorIs(t, err, entities.ErrOrderNotFound)
	})
}

func TestOrderService_HandleFailed(t *testing.T) {
	t.Run("marks payment failed", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.orders["SR100"] = entities.Order{ExternalID: "SR100"}

		err := f.svc.HandleFailed(context.Background(), webhook.Payload{OrderID: "SR100"})
		require.NoError(t, err)
		assert.Equal(t, entities.PaymentFailed, f.repo.paymentUpdates["SR100"])
	})

	t.Run("failure for unknown order is acknowledged", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.updateErr = entities.ErrOrderNotFound

		err := f.svc.HandleFailed(context.Background(), webhook.Payload{OrderID: "SR999"})
		assert.NoError(t, err)
	})

	t.Run("missing order id", func(t *testing.T) {
		f := newOrderFixture()

		err := f.svc.HandleFailed(context.Background(), webhook.Payload{})
		assert.ErrorIs(t, err, entities.ErrMissingOrderID)
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	t.Run("allowed transition", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.orders["SR100"] = entities.Order{
			ExternalID:  "SR100",
			OrderNumber: "ORD1",
			Status:      entities.StatusShipped,
		}

		order, err := f.svc.UpdateStatus(context.Background(), "ORD1", entities.StatusDelivered)
		require.NoError(t, err)
		assert.Equal(t, entities.StatusDelivered, order.Status)
		assert.Equal(t, entities.StatusDelivered, f.repo.statusUpdates["SR100"])
	})

	t.Run("disallowed transition", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.orders["SR100"] = entities.Order{
			ExternalID:  "SR100",
			OrderNumber: "ORD1",
			Status:      entities.StatusCreated,
		}

		_, err := f.svc.UpdateStatus(context.Background(), "ORD1", entities.StatusDelivered)
		assert.ErrorIs(t, err, entities.ErrInvalidTransition)
		assert.Empty(t, f.repo.statusUpdates)
	})
}

func TestOrderService_GetByNumber(t *testing.T) {
	t.Run("retries transient errors", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.orders["SR100"] = entities.Order{ExternalID: "SR100", OrderNumber: "ORD1"}
		f.repo.getByNumberErrs = []error{errors.New("connection reset")}

		order, err := f.svc.GetByNumber(context.Background(), "ORD1")
		require.NoError(t, err)
		assert.Equal(t, "ORD1", order.OrderNumber)
		assert.Equal(t, 2, f.repo.getByNumber)
	})

	t.Run("not found is not retried", func(t *testing.T) {
		f := newOrderFixture()

		_, err := f.svc.GetByNumber(context.Background(), "ORD-NOPE")
		assert.ErrorIs(t, err, entities.ErrOrderNotFound)
		assert.Equal(t, 1, f.repo.getByNumber)
	})
}
