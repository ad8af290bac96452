package repo

import (
	"database/sql"
	"time"

	"github.com/craftkart/order-service/internal/entities"
)

type Order struct {
	ExternalID      string         `db:"external_id"`
	OrderNumber     string         `db:"order_number"`
	CartID          sql.NullString `db:"cart_id"`
	Phone           sql.NullString `db:"phone"`
	Email           sql.NullString `db:"email"`
	PaymentType     string         `db:"payment_type"`
	PaymentStatus   string         `db:"payment_status"`
	Status          string         `db:"status"`
	Subtotal        float64        `db:"subtotal"`
	CouponDiscount  float64        `db:"coupon_discount"`
	PrepaidDiscount float64        `db:"prepaid_discount"`
	ShippingCharges float64        `db:"shipping_charges"`
	Tax             float64        `db:"tax"`
	Total           float64        `db:"total"`
	CouponCode      sql.NullString `db:"coupon_code"`
	ShippingPlan    sql.NullString `db:"shipping_plan"`
	RTOPrediction   sql.NullString `db:"rto_prediction"`
	TrackingNumber  sql.NullString `db:"tracking_number"`
	ShipmentID      sql.NullString `db:"shipment_id"`
	EDD             sql.NullTime   `db:"edd"`
	CancelReason    sql.NullString `db:"cancel_reason"`
	CancelledAt     sql.NullTime   `db:"cancelled_at"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type OrderItem struct {
	ExternalID        string  `db:"external_id"`
	VariantID         int64   `db:"variant_id"`
	ProviderVariantID string  `db:"provider_variant_id"`
	ProductName       string  `db:"product_name"`
	SKU               string  `db:"sku"`
	Quantity          int     `db:"quantity"`
	Price             float64 `db:"price"`
	Subtotal          float64 `db:"subtotal"`
}

type OrderAddress struct {
	ExternalID string         `db:"external_id"`
	Kind       string         `db:"kind"`
	Name       sql.NullString `db:"name"`
	Phone      sql.NullString `db:"phone"`
	Line1      sql.NullString `db:"line1"`
	Line2      sql.NullString `db:"line2"`
	City       sql.NullString `db:"city"`
	State      sql.NullString `db:"state"`
	Country    sql.NullString `db:"country"`
	Pincode    sql.NullString `db:"pincode"`
}

const (
	addressKindShipping = "shipping"
	addressKindBilling  = "billing"
)

type Product struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
}

type Variant struct {
	ID         int64   `db:"id"`
	ProductID  int64   `db:"product_id"`
	ProviderID string  `db:"provider_id"`
	SKU        string  `db:"sku"`
	Title      string  `db:"title"`
	Price      float64 `db:"price"`
	Stock      int     `db:"stock"`
}

type WishlistEntry struct {
	CustomerID string    `db:"customer_id"`
	VariantID  int64     `db:"variant_id"`
	AddedAt    time.Time `db:"added_at"`
}

func AddressToEntity(a OrderAddress) entities.Address {
	return entities.Address{
		Name:    nullStringToString(a.Name),
		Phone:   nullStringToString(a.Phone),
		Line1:   nullStringToString(a.Line1),
		Line2:   nullStringToString(a.Line2),
		City:    nullStringToString(a.City),
		State:   nullStringToString(a.State),
		Country: nullStringToString(a.Country),
		Pincode: nullStringToString(a.Pincode),
	}
}

func ItemToEntity(i OrderItem) entities.OrderItem {
	return entities.OrderItem{
		VariantID:         i.VariantID,
		ProviderVariantID: i.ProviderVariantID,
		ProductName:       i.ProductName,
		SKU:               i.SKU,
		Quantity:          i.Quantity,
		Price:             i.Price,
		Subtotal:          i.Subtotal,
	}
}

func OrderToEntity(o Order, addrs []OrderAddress, items []OrderItem) entities.Order {
	order := entities.Order{
		ExternalID:      o.ExternalID,
		OrderNumber:     o.OrderNumber,
		CartID:          nullStringToString(o.CartID),
		Phone:           nullStringToString(o.Phone),
		Email:           nullStringToString(o.Email),
		PaymentType:     o.PaymentType,
		PaymentStatus:   entities.PaymentStatus(o.PaymentStatus),
		Status:          entities.OrderStatus(o.Status),
		Subtotal:        o.Subtotal,
		CouponDiscount:  o.CouponDiscount,
		PrepaidDiscount: o.PrepaidDiscount,
		ShippingCharges: o.ShippingCharges,
		Tax:             o.Tax,
		Total:           o.Total,
		CouponCode:      nullStringToString(o.CouponCode),
		ShippingPlan:    nullStringToString(o.ShippingPlan),
		RTOPrediction:   nullStringToString(o.RTOPrediction),
		TrackingNumber:  nullStringToString(o.TrackingNumber),
		ShipmentID:      nullStringToString(o.ShipmentID),
		CancelReason:    nullStringToString(o.CancelReason),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}

	if o.EDD.Valid {
		edd := o.EDD.Time
		order.EDD = &edd
	}
	if o.CancelledAt.Valid {
		at := o.CancelledAt.Time
		order.CancelledAt = &at
	}

	for _, a := range addrs {
		switch a.Kind {
		case addressKindShipping:
			order.ShippingAddress = AddressToEntity(a)
		case addressKindBilling:
			order.BillingAddress = AddressToEntity(a)
		}
	}

	if len(items) > 0 {
		order.Items = make([]entities.OrderItem, 0, len(items))
		for _, it := range items {
			order.Items = append(order.Items, ItemToEntity(it))
		}
	}

	return order
}

func VariantToEntity(v Variant) entities.Variant {
	return entities.Variant{
		ID:         v.ID,
		ProductID:  v.ProductID,
		ProviderID: v.ProviderID,
		SKU:        v.SKU,
		Title:      v.Title,
		Price:      v.Price,
		Stock:      v.Stock,
	}
}

func ProductToEntity(p Product) entities.Product {
	return entities.Product{
		ID:          p.ID,
		Title:       p.Title,
		Description: nullStringToString(p.Description),
		CreatedAt:   p.CreatedAt,
	}
}
