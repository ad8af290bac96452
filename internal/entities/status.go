package entities

type OrderStatus string

const (
	StatusCreated        OrderStatus = "CREATED"
	StatusConfirmed      OrderStatus = "CONFIRMED"
	StatusProcessing     OrderStatus = "PROCESSING"
	StatusShipped        OrderStatus = "SHIPPED"
	StatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusReturned       OrderStatus = "RETURNED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

var validNext = map[OrderStatus][]OrderStatus{
	StatusCreated:        {StatusConfirmed, StatusProcessing},
	StatusConfirmed:      {StatusProcessing, StatusShipped},
	StatusProcessing:     {StatusShipped, StatusOutForDelivery},
	StatusShipped:        {StatusOutForDelivery, StatusDelivered, StatusReturned},
	StatusOutForDelivery: {StatusDelivered, StatusReturned},
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusReturned, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether the order status may move to next.
// CANCELLED is reachable from any non-terminal state.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s == next {
		return false
	}
	if next == StatusCancelled {
		return !s.IsTerminal()
	}
	for _, allowed := range validNext[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
