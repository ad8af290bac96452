package entities

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type Address struct {
	Name    string
	Phone   string
	Line1   string
	Line2   string
	City    string
	State   string
	Country string
	Pincode string
}

// OrderItem is immutable once the order is created: quantity and price
// are snapshotted at creation time and never adjusted afterwards.
type OrderItem struct {
	VariantID         int64
	ProviderVariantID string
	ProductName       string
	SKU               string
	Quantity          int
	Price             float64
	Subtotal          float64
}

type Order struct {
	// ExternalID is the checkout-session id assigned by the shipping
	// provider. At most one order exists per external id.
	ExternalID  string
	OrderNumber string
	CartID      string

	Phone string
	Email string

	Items []OrderItem

	ShippingAddress Address
	BillingAddress  Address

	PaymentType   string
	PaymentStatus PaymentStatus
	Status        OrderStatus

	Subtotal        float64
	CouponDiscount  float64
	PrepaidDiscount float64
	ShippingCharges float64
	Tax             float64
	Total           float64

	CouponCode    string
	ShippingPlan  string
	RTOPrediction string

	TrackingNumber string
	ShipmentID     string
	EDD            *time.Time

	CancelReason string
	CancelledAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
