package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/trailhop/partner-payments/pkg/enums"
)

// OrderItem is one reserved stay or seat block inside a booking order.
// Slot is set for tour/activity items; CheckOut for rental/hotel items.
type OrderItem struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	BookingID uuid.UUID             `gorm:"column:booking_id;type:uuid;not null;index"`
	Status    enums.OrderItemStatus `gorm:"column:status;type:order_item_status;not null;default:'pending'"`
	CheckIn   time.Time             `gorm:"column:check_in;type:date;not null"`
	CheckOut  *time.Time            `gorm:"column:check_out;type:date"`
	Slot      *string               `gorm:"column:slot"`
	Adults    int                   `gorm:"column:adults;not null;default:0"`
	Children  int                   `gorm:"column:children;not null;default:0"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
