package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/trailhop/partner-payments/pkg/enums"
)

// Booking is a sellable listing owned by a partner seller.
type Booking struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID  uuid.UUID         `gorm:"column:seller_id;type:uuid;not null;index"`
	Type      enums.BookingType `gorm:"column:booking_type;type:booking_type;not null"`
	Title     string            `gorm:"column:title;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
