package models

import (
	"time"

	"github.com/google/uuid"
)

// TourAvailability tracks booked participants per date and time slot for
// tour and activity listings.
type TourAvailability struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID      uuid.UUID `gorm:"column:booking_id;type:uuid;not null;uniqueIndex:ux_tour_availability_slot"`
	Date           time.Time `gorm:"column:date;type:date;not null;uniqueIndex:ux_tour_availability_slot"`
	Slot           string    `gorm:"column:slot;not null;uniqueIndex:ux_tour_availability_slot"`
	BookedAdults   int       `gorm:"column:booked_adults;not null;default:0"`
	BookedChildren int       `gorm:"column:booked_children;not null;default:0"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides gorm's pluralized default.
func (TourAvailability) TableName() string { return "tour_availability" }

// RentalAvailability tracks booked units per night for rental and hotel
// listings.
type RentalAvailability struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID   uuid.UUID `gorm:"column:booking_id;type:uuid;not null;uniqueIndex:ux_rental_availability_night"`
	Date        time.Time `gorm:"column:date;type:date;not null;uniqueIndex:ux_rental_availability_night"`
	BookedUnits int       `gorm:"column:booked_units;not null;default:0"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides gorm's pluralized default.
func (RentalAvailability) TableName() string { return "rental_availability" }
