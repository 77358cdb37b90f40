package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trailhop/partner-payments/pkg/db/models"
)

// Repository defines persistence operations for bookings, orders, and
// availability tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindOrder(ctx context.Context, id uuid.UUID) (*models.BookingOrder, error)
	FindOrderDetail(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error)
	FindOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	CreateOrder(ctx context.Context, order *models.BookingOrder) (*models.BookingOrder, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	MarkIncomplete(ctx context.Context, orderID uuid.UUID, intentID string) error
	MarkFailed(ctx context.Context, orderID uuid.UUID) error
	CompleteOrder(ctx context.Context, orderID uuid.UUID, transactionID string) (bool, error)
	DeleteProvisional(ctx context.Context, orderID uuid.UUID) error
	MarkNotified(ctx context.Context, orderID uuid.UUID) (bool, error)
	IncrementTourAvailability(ctx context.Context, bookingID uuid.UUID, date time.Time, slot string, adults, children int) error
	IncrementRentalAvailability(ctx context.Context, bookingID uuid.UUID, checkIn, checkOut time.Time) error
	FindTourAvailability(ctx context.Context, bookingID uuid.UUID, date time.Time, slot string) (*models.TourAvailability, error)
	FindRentalAvailability(ctx context.Context, bookingID uuid.UUID, date time.Time) (*models.RentalAvailability, error)
}
