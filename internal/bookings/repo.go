package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trailhop/partner-payments/pkg/db"
	"github.com/trailhop/partner-payments/pkg/db/models"
	"github.com/trailhop/partner-payments/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bookings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.BookingOrder, error) {
	var order models.BookingOrder
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrderDetail(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := r.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	booking, err := r.FindBooking(ctx, order.BookingID)
	if err != nil {
		return nil, err
	}
	items, err := r.FindOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: *order, Booking: *booking, Items: items}, nil
}

func (r *repository) FindOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.BookingOrder) (*models.BookingOrder, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// MarkIncomplete parks an order awaiting buyer authentication. The intent id
// is stored so a later confirmation can resume the same payment.
func (r *repository) MarkIncomplete(ctx context.Context, orderID uuid.UUID, intentID string) error {
	return r.db.WithContext(ctx).
		Model(&models.BookingOrder{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"status":            enums.OrderIncomplete,
			"payment_intent_id": intentID,
		}).Error
}

func (r *repository) MarkFailed(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.BookingOrder{}).
		Where("id = ?", orderID).
		Update("status", enums.OrderFailed).Error
}

// CompleteOrder promotes an order to complete exactly once. The guard on the
// current status makes replays of the same payment outcome no-ops; the bool
// reports whether this call won the transition.
func (r *repository) CompleteOrder(ctx context.Context, orderID uuid.UUID, transactionID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BookingOrder{}).
		Where("id = ? AND status IN ?", orderID, []enums.OrderStatus{enums.OrderPending, enums.OrderIncomplete}).
		Updates(map[string]any{
			"status":         enums.OrderComplete,
			"transaction_id": transactionID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("order_id = ? AND status = ?", orderID, enums.ItemPending).
		Update("status", enums.ItemConfirmed).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteProvisional removes a never-charged order and its items so the
// reserved dates free up again.
func (r *repository) DeleteProvisional(ctx context.Context, orderID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.OrderItem{}).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ?", orderID).
		Delete(&models.BookingOrder{}).Error
}

func (r *repository) MarkNotified(ctx context.Context, orderID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BookingOrder{}).
		Where("id = ? AND notified_at IS NULL", orderID).
		UpdateColumn("notified_at", time.Now().UTC())
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementTourAvailability adds booked participants to the slot counter,
// creating the row on first booking for that date and slot.
func (r *repository) IncrementTourAvailability(ctx context.Context, bookingID uuid.UUID, date time.Time, slot string, adults, children int) error {
	day := dateOnly(date)
	result := r.db.WithContext(ctx).
		Model(&models.TourAvailability{}).
		Where("booking_id = ? AND date = ? AND slot = ?", bookingID, day, slot).
		Updates(map[string]any{
			"booked_adults":   gorm.Expr("booked_adults + ?", adults),
			"booked_children": gorm.Expr("booked_children + ?", children),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	row := models.TourAvailability{
		ID:             uuid.New(),
		BookingID:      bookingID,
		Date:           day,
		Slot:           slot,
		BookedAdults:   adults,
		BookedChildren: children,
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil && db.IsUniqueViolation(err, "ux_tour_availability_slot") {
		// Lost the insert race; the row exists now.
		return r.db.WithContext(ctx).
			Model(&models.TourAvailability{}).
			Where("booking_id = ? AND date = ? AND slot = ?", bookingID, day, slot).
			Updates(map[string]any{
				"booked_adults":   gorm.Expr("booked_adults + ?", adults),
				"booked_children": gorm.Expr("booked_children + ?", children),
			}).Error
	}
	return err
}

// IncrementRentalAvailability adds one booked unit for each night in
// [checkIn, checkOut).
func (r *repository) IncrementRentalAvailability(ctx context.Context, bookingID uuid.UUID, checkIn, checkOut time.Time) error {
	for day := dateOnly(checkIn); day.Before(dateOnly(checkOut)); day = day.AddDate(0, 0, 1) {
		if err := r.incrementRentalNight(ctx, bookingID, day); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) incrementRentalNight(ctx context.Context, bookingID uuid.UUID, day time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.RentalAvailability{}).
		Where("booking_id = ? AND date = ?", bookingID, day).
		Update("booked_units", gorm.Expr("booked_units + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	row := models.RentalAvailability{
		ID:          uuid.New(),
		BookingID:   bookingID,
		Date:        day,
		BookedUnits: 1,
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil && db.IsUniqueViolation(err, "ux_rental_availability_night") {
		return r.db.WithContext(ctx).
			Model(&models.RentalAvailability{}).
			Where("booking_id = ? AND date = ?", bookingID, day).
			Update("booked_units", gorm.Expr("booked_units + 1")).Error
	}
	return err
}

func (r *repository) FindTourAvailability(ctx context.Context, bookingID uuid.UUID, date time.Time, slot string) (*models.TourAvailability, error) {
	var row models.TourAvailability
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND date = ? AND slot = ?", bookingID, dateOnly(date), slot).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindRentalAvailability(ctx context.Context, bookingID uuid.UUID, date time.Time) (*models.RentalAvailability, error) {
	var row models.RentalAvailability
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND date = ?", bookingID, dateOnly(date)).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
