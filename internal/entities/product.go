package entities

import "time"

type Product struct {
	ID          int64
	Title       string
	Description string
	CreatedAt   time.Time
}

// Variant is a purchasable SKU of a product with its own stock count.
// ProviderID is the identifier the shipping provider sends in cart
// payloads; it is the lookup key during webhook reconciliation.
type Variant struct {
	ID         int64
	ProductID  int64
	ProviderID string
	SKU        string
	Title      string
	Price      float64
	Stock      int
}

type WishlistEntry struct {
	CustomerID string
	VariantID  int64
	AddedAt    time.Time
}
