package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trailhop/partner-payments/pkg/enums"
)

// BookingOrder is a buyer's checkout order for a single booking.
// PaymentIntentID and TransactionID record processor state across the
// authentication round trip; NotifiedAt marks confirmation-notice delivery.
type BookingOrder struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID       uuid.UUID         `gorm:"column:booking_id;type:uuid;not null;index"`
	Status          enums.OrderStatus `gorm:"column:status;type:booking_order_status;not null;default:'pending'"`
	Currency        string            `gorm:"column:currency;type:varchar(3);not null"`
	Amount          decimal.Decimal   `gorm:"column:amount;type:numeric(12,2);not null"`
	ExchangeRate    decimal.Decimal   `gorm:"column:exchange_rate;type:numeric(12,6);not null;default:1"`
	BuyerName       string            `gorm:"column:buyer_name"`
	BuyerEmail      string            `gorm:"column:buyer_email;not null"`
	PaymentIntentID *string           `gorm:"column:payment_intent_id"`
	TransactionID   *string           `gorm:"column:transaction_id"`
	NotifiedAt      *time.Time        `gorm:"column:notified_at"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
