package entities_test

import (
	"testing"

	"github.com/craftkart/order-service/internal/entities"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransition(t *testing.T) {
	testCases := []struct {
		name string
		from entities.OrderStatus
		to   entities.OrderStatus
		want bool
	}{
		{"created to confirmed", entities.StatusCreated, entities.StatusConfirmed, true},
		{"confirmed to shipped", entities.StatusConfirmed, entities.StatusShipped, true},
		{"processing to out for delivery", entities.StatusProcessing, entities.StatusOutForDelivery, true},
		{"shipped to delivered", entities.StatusShipped, entities.StatusDelivered, true},
		{"shipped to returned", entities.StatusShipped, entities.StatusReturned, true},
		{"out for delivery to delivered", entities.StatusOutForDelivery, entities.StatusDelivered, true},
		{"created straight to delivered", entities.StatusCreated, entities.StatusDelivered, false},
		{"delivered back to shipped", entities.StatusDelivered, entities.StatusShipped, false},
		{"same status", entities.StatusShipped, entities.StatusShipped, false},
		{"cancel from created", entities.StatusCreated, entities.StatusCancelled, true},
		{"cancel from out for delivery", entities.StatusOutForDelivery, entities.StatusCancelled, true},
		{"cancel after delivery", entities.StatusDelivered, entities.StatusCancelled, false},
		{"cancel after return", entities.StatusReturned, entities.StatusCancelled, false},
		{"cancel a cancelled order", entities.StatusCancelled, entities.StatusCancelled, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransition(tc.to))
		})
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	terminal := []entities.OrderStatus{
		entities.StatusDelivered,
		entities.StatusReturned,
		entities.StatusCancelled,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), string(s))
	}

	open := []entities.OrderStatus{
		entities.StatusCreated,
		entities.StatusConfirmed,
		entities.StatusProcessing,
		entities.StatusShipped,
		entities.StatusOutForDelivery,
	}
	for _, s := range open {
		assert.False(t, s.IsTerminal(), string(s))
	}
}
