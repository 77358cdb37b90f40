package enums

import "fmt"

// OrderStatus maps to the booking_order_status enum in Postgres.
//
// pending     provisional order awaiting its first payment attempt
// incomplete  a payment intent exists and requires buyer authentication
// complete    payment settled and side effects applied
// failed      last payment attempt failed definitively
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderIncomplete OrderStatus = "incomplete"
	OrderComplete   OrderStatus = "complete"
	OrderFailed     OrderStatus = "failed"
)

var validOrderStatuses = []OrderStatus{
	OrderPending,
	OrderIncomplete,
	OrderComplete,
	OrderFailed,
}

// IsValid reports whether the value matches the canonical booking_order_status enum.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// OrderItemStatus maps to the order_item_status enum in Postgres.
type OrderItemStatus string

const (
	ItemPending   OrderItemStatus = "pending"
	ItemConfirmed OrderItemStatus = "confirmed"
	ItemCanceled  OrderItemStatus = "canceled"
)

var validOrderItemStatuses = []OrderItemStatus{
	ItemPending,
	ItemConfirmed,
	ItemCanceled,
}

// IsValid reports whether the value matches the canonical order_item_status enum.
func (s OrderItemStatus) IsValid() bool {
	for _, candidate := range validOrderItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}
