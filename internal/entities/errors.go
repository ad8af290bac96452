package entities

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderExists       = errors.New("order already exists")
	ErrProductNotFound   = errors.New("product not found")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrEmptyCart         = errors.New("cart has no items")
	ErrMissingOrderID    = errors.New("payload has no external order id")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// InsufficientStockError names the variant that could not cover the
// requested quantity. It aborts order creation entirely.
type InsufficientStockError struct {
	ProviderVariantID string
	Requested         int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %s: requested %d", e.ProviderVariantID, e.Requested)
}
