package webhook

import "strings"

// Payload is the explicit schema for inbound deliveries from the
// shipping provider. Fields the provider omits keep their zero value;
// unrecognized fields are dropped by the decoder.
type Payload struct {
	OrderID       string `json:"order_id"`
	FastrrOrderID string `json:"fastrr_order_id"`
	CartID        string `json:"cart_id"`

	Event          string `json:"event"`
	Status         string `json:"status"`
	ShipmentStatus string `json:"shipment_status"`

	CartData CartData `json:"cart_data"`

	Phone string `json:"phone"`
	Email string `json:"email" validate:"omitempty,email"`

	PaymentType   string `json:"payment_type"`
	PaymentStatus string `json:"payment_status"`

	TotalAmountPayable float64 `json:"total_amount_payable" validate:"gte=0"`
	SubtotalPrice      float64 `json:"subtotal_price" validate:"gte=0"`
	CouponDiscount     float64 `json:"coupon_discount" validate:"gte=0"`
	PrepaidDiscount    float64 `json:"prepaid_discount" validate:"gte=0"`
	ShippingCharges    float64 `json:"shipping_charges" validate:"gte=0"`
	Tax                float64 `json:"tax" validate:"gte=0"`

	CouponCodes []string `json:"coupon_codes"`

	ShippingAddress Address `json:"shipping_address"`
	BillingAddress  Address `json:"billing_address"`

	ShippingPlan  string `json:"shipping_plan"`
	RTOPrediction string `json:"rto_prediction"`
	EDD           string `json:"edd"`

	TrackingNumber string `json:"tracking_number"`
	ShipmentID     string `json:"shipment_id"`
}

type CartData struct {
	Items []CartItem `json:"items" validate:"dive"`
}

type CartItem struct {
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	Pincode   string `json:"pincode"`
}

// ExternalID is the idempotency key for the delivery: the provider's
// order id when present, otherwise the checkout-session id.
func (p Payload) ExternalID() string {
	if id := strings.TrimSpace(p.OrderID); id != "" {
		return id
	}
	return strings.TrimSpace(p.FastrrOrderID)
}

// DisplayName builds a single display name from the split name fields,
// falling back to the explicit name field, then to fallback, then "".
func (a Address) DisplayName(fallback string) string {
	full := strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
	if full != "" {
		return full
	}
	if name := strings.TrimSpace(a.Name); name != "" {
		return name
	}
	return fallback
}
