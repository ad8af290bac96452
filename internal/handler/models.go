package handler

import (
	"time"

	"github.com/craftkart/order-service/internal/entities"
)

type Address struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Line1   string `json:"line1,omitempty"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

type OrderItem struct {
	ProviderVariantID string  `json:"variant_id"`
	ProductName       string  `json:"product_name"`
	SKU               string  `json:"sku"`
	Quantity          int     `json:"quantity"`
	Price             float64 `json:"price"`
	Subtotal          float64 `json:"subtotal"`
}

type Order struct {
	OrderNumber     string      `json:"order_number"`
	ExternalID      string      `json:"external_id"`
	Status          string      `json:"status"`
	PaymentType     string      `json:"payment_type,omitempty"`
	PaymentStatus   string      `json:"payment_status"`
	Phone           string      `json:"phone,omitempty"`
	Email           string      `json:"email,omitempty"`
	Items           []OrderItem `json:"items"`
	ShippingAddress Address     `json:"shipping_address"`
	BillingAddress  Address     `json:"billing_address"`
	Subtotal        float64     `json:"subtotal"`
	CouponDiscount  float64     `json:"coupon_discount,omitempty"`
	PrepaidDiscount float64     `json:"prepaid_discount,omitempty"`
	ShippingCharges float64     `json:"shipping_charges,omitempty"`
	Tax             float64     `json:"tax,omitempty"`
	Total           float64     `json:"total"`
	CouponCode      string      `json:"coupon_code,omitempty"`
	TrackingNumber  string      `json:"tracking_number,omitempty"`
	ShipmentID      string      `json:"shipment_id,omitempty"`
	EDD             *time.Time  `json:"edd,omitempty"`
	CancelReason    string      `json:"cancel_reason,omitempty"`
	CancelledAt     *time.Time  `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

func AddressEntityToJSON(a entities.Address) Address {
	return Address{
		Name:    a.Name,
		Phone:   a.Phone,
		Line1:   a.Line1,
		Line2:   a.Line2,
		City:    a.City,
		State:   a.State,
		Country: a.Country,
		Pincode: a.Pincode,
	}
}

func OrderEntityToJSON(o entities.Order) Order {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItem{
			ProviderVariantID: it.ProviderVariantID,
			ProductName:       it.ProductName,
			SKU:               it.SKU,
			Quantity:          it.Quantity,
			Price:             it.Price,
			Subtotal:          it.Subtotal,
		})
	}

	return Order{
		OrderNumber:     o.OrderNumber,
		ExternalID:      o.ExternalID,
		Status:          string(o.Status),
		PaymentType:     o.PaymentType,
		PaymentStatus:   string(o.PaymentStatus),
		Phone:           o.Phone,
		Email:           o.Email,
		Items:           items,
		ShippingAddress: AddressEntityToJSON(o.ShippingAddress),
		BillingAddress:  AddressEntityToJSON(o.BillingAddress),
		Subtotal:        o.Subtotal,
		CouponDiscount:  o.CouponDiscount,
		PrepaidDiscount: o.PrepaidDiscount,
		ShippingCharges: o.ShippingCharges,
		Tax:             o.Tax,
		Total:           o.Total,
		CouponCode:      o.CouponCode,
		TrackingNumber:  o.TrackingNumber,
		ShipmentID:      o.ShipmentID,
		EDD:             o.EDD,
		CancelReason:    o.CancelReason,
		CancelledAt:     o.CancelledAt,
		CreatedAt:       o.CreatedAt,
	}
}

type WishlistEntry struct {
	VariantID int64     `json:"variant_id"`
	AddedAt   time.Time `json:"added_at"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type WishlistRequest struct {
	VariantID int64 `json:"variant_id" validate:"required,gt=0"`
}

type AckResponse struct {
	Status      string `json:"status"`
	OrderNumber string `json:"order_number,omitempty"`
}
