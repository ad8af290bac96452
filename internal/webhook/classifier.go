package webhook

import "strings"

type EventKind string

const (
	EventOrderSuccess      EventKind = "ORDER_SUCCESS"
	EventOrderFailed       EventKind = "ORDER_FAILED"
	EventOrderCancelled    EventKind = "ORDER_CANCELLED"
	EventOrderStatusUpdate EventKind = "ORDER_STATUS_UPDATE"
	EventOrderInitiated    EventKind = "ORDER_INITIATED"
	EventUnknown           EventKind = "UNKNOWN"
)

var eventKinds = map[string]EventKind{
	"ORDER_SUCCESS":       EventOrderSuccess,
	"ORDER_FAILED":        EventOrderFailed,
	"ORDER_CANCELLED":     EventOrderCancelled,
	"ORDER_STATUS_UPDATE": EventOrderStatusUpdate,
	"ORDER_INITIATED":     EventOrderInitiated,
}

var statusKinds = map[string]EventKind{
	"SUCCESS":   EventOrderSuccess,
	"FAILED":    EventOrderFailed,
	"FAILURE":   EventOrderFailed,
	"CANCELLED": EventOrderCancelled,
	"CANCELED":  EventOrderCancelled,
	"INITIATED": EventOrderInitiated,
	"PENDING":   EventOrderInitiated,
}

// Classify maps a parsed delivery to a domain event kind. An explicit
// event field wins outright; otherwise the order status vocabulary is
// consulted; otherwise a present shipment status means a tracking
// update. Anything else is UNKNOWN and acknowledged without effect.
func Classify(p Payload) EventKind {
	if ev := strings.ToUpper(strings.TrimSpace(p.Event)); ev != "" {
		if kind, ok := eventKinds[ev]; ok {
			return kind
		}
		return EventUnknown
	}

	if kind, ok := statusKinds[strings.ToUpper(strings.TrimSpace(p.Status))]; ok {
		return kind
	}

	if strings.TrimSpace(p.ShipmentStatus) != "" {
		return EventOrderStatusUpdate
	}

	return EventUnknown
}
