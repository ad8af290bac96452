package service

import (
	"strings"

	"github.com/craftkart/order-service/internal/entities"
)

// shipmentStatusMap translates the provider's shipment vocabulary,
// including courier-specific synonyms, into internal order statuses.
var shipmentStatusMap = map[string]entities.OrderStatus{
	"PENDING":          entities.StatusProcessing,
	"ORDER_PLACED":     entities.StatusProcessing,
	"MANIFESTED":       entities.StatusProcessing,
	"PICKUP_SCHEDULED": entities.StatusProcessing,
	"PICKUP SCHEDULED": entities.StatusProcessing,

	"PICKED_UP":  entities.StatusShipped,
	"PICKED UP":  entities.StatusShipped,
	"IN_TRANSIT": entities.StatusShipped,
	"IN TRANSIT": entities.StatusShipped,
	"SHIPPED":    entities.StatusShipped,
	"DISPATCHED": entities.StatusShipped,

	"OUT_FOR_DELIVERY": entities.StatusOutForDelivery,
	"OUT FOR DELIVERY": entities.StatusOutForDelivery,

	"DELIVERED": entities.StatusDelivered,

	"RTO":            entities.StatusReturned,
	"RTO_INITIATED":  entities.StatusReturned,
	"RTO_IN_TRANSIT": entities.StatusReturned,
	"RTO_DELIVERED":  entities.StatusReturned,
	"RETURNED":       entities.StatusReturned,

	"CANCELLED": entities.StatusCancelled,
	"CANCELED":  entities.StatusCancelled,
}

// MapShipmentStatus translates a provider shipment status. Unknown
// statuses map to PROCESSING as the safe default; the second return
// lets callers log the miss, it never fails the webhook.
func MapShipmentStatus(status string) (entities.OrderStatus, bool) {
	if mapped, ok := shipmentStatusMap[strings.ToUpper(strings.TrimSpace(status))]; ok {
		return mapped, true
	}
	return entities.StatusProcessing, false
}
