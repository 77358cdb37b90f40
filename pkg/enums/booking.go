package enums

import "fmt"

// BookingType maps to the booking_type enum in Postgres.
type BookingType string

const (
	BookingTour     BookingType = "tour"
	BookingActivity BookingType = "activity"
	BookingRental   BookingType = "rental"
	BookingHotel    BookingType = "hotel"
)

var validBookingTypes = []BookingType{
	BookingTour,
	BookingActivity,
	BookingRental,
	BookingHotel,
}

// IsValid reports whether the value matches the canonical booking_type enum.
func (b BookingType) IsValid() bool {
	for _, candidate := range validBookingTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBookingType converts raw input into BookingType.
func ParseBookingType(value string) (BookingType, error) {
	for _, candidate := range validBookingTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking type %q", value)
}

// SlotBased reports whether availability for the type is tracked per
// check-in slot with participant counts rather than per-night units.
func (b BookingType) SlotBased() bool {
	return b == BookingTour || b == BookingActivity
}
