package payloads

import (
	"time"

	"github.com/google/uuid"
)

// BookingConfirmedEvent is emitted once per order when payment settles and
// the booking side effects have been applied.
type BookingConfirmedEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	BookingID     uuid.UUID `json:"booking_id"`
	SellerID      uuid.UUID `json:"seller_id"`
	TransactionID string    `json:"transaction_id"`
	Currency      string    `json:"currency"`
	AmountMinor   int64     `json:"amount_minor"`
	FeeMinor      int64     `json:"fee_minor"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// PaymentFailedEvent records a definitive payment failure for an order.
type PaymentFailedEvent struct {
	OrderID   uuid.UUID `json:"order_id"`
	BookingID uuid.UUID `json:"booking_id"`
	Reason    string    `json:"reason"`
	FailedAt  time.Time `json:"failed_at"`
}

// PartnerOnboardedEvent is emitted when a seller's account becomes active.
type PartnerOnboardedEvent struct {
	SellerID  uuid.UUID `json:"seller_id"`
	AccountID string    `json:"account_id"`
}

// PartnerDisconnectedEvent is emitted when a seller detaches their account.
type PartnerDisconnectedEvent struct {
	SellerID uuid.UUID `json:"seller_id"`
}
