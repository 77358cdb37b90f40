package bookings

import (
	"github.com/trailhop/partner-payments/pkg/db/models"
)

// OrderDetail bundles an order with its booking and reserved items, the
// shape the payment orchestrator works against.
type OrderDetail struct {
	Order   models.BookingOrder
	Booking models.Booking
	Items   []models.OrderItem
}
