package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/trailhop/partner-payments/pkg/db/models"
	"github.com/trailhop/partner-payments/pkg/enums"
)

func setupBookingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	bookings := `
CREATE TABLE IF NOT EXISTS bookings (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  booking_type TEXT NOT NULL,
  title TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS booking_orders (
  id TEXT PRIMARY KEY,
  booking_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  currency TEXT NOT NULL,
  amount TEXT NOT NULL,
  exchange_rate TEXT NOT NULL DEFAULT '1',
  buyer_name TEXT,
  buyer_email TEXT NOT NULL,
  payment_intent_id TEXT,
  transaction_id TEXT,
  notified_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  booking_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  check_in DATETIME NOT NULL,
  check_out DATETIME,
  slot TEXT,
  adults INTEGER NOT NULL DEFAULT 0,
  children INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	tourAvailability := `
CREATE TABLE IF NOT EXISTS tour_availability (
  id TEXT PRIMARY KEY,
  booking_id TEXT NOT NULL,
  date DATETIME NOT NULL,
  slot TEXT NOT NULL,
  booked_adults INTEGER NOT NULL DEFAULT 0,
  booked_children INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME,
  UNIQUE (booking_id, date, slot)
);`
	rentalAvailability := `
CREATE TABLE IF NOT EXISTS rental_availability (
  id TEXT PRIMARY KEY,
  booking_id TEXT NOT NULL,
  date DATETIME NOT NULL,
  booked_units INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME,
  UNIQUE (booking_id, date)
);`
	require.NoError(t, db.Exec(bookings).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(items).Error)
	require.NoError(t, db.Exec(tourAvailability).Error)
	require.NoError(t, db.Exec(rentalAvailability).Error)
	return db
}

func newBooking(t *testing.T, db *gorm.DB, bt enums.BookingType) *models.Booking {
	t.Helper()

	booking := &models.Booking{
		ID:       uuid.New(),
		SellerID: uuid.New(),
		Type:     bt,
		Title:    "Canyon Sunrise Tour",
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

func createOrder(t *testing.T, db *gorm.DB, booking *models.Booking, status enums.OrderStatus) *models.BookingOrder {
	t.Helper()

	order := &models.BookingOrder{
		ID:           uuid.New(),
		BookingID:    booking.ID,
		Status:       status,
		Currency:     "EUR",
		Amount:       decimal.NewFromFloat(149.50),
		ExchangeRate: decimal.NewFromInt(1),
		BuyerName:    "Ada Traveler",
		BuyerEmail:   "ada@example.com",
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func createItem(t *testing.T, db *gorm.DB, order *models.BookingOrder, checkIn time.Time, checkOut *time.Time, slot *string) *models.OrderItem {
	t.Helper()

	item := &models.OrderItem{
		ID:        uuid.New(),
		OrderID:   order.ID,
		BookingID: order.BookingID,
		Status:    enums.ItemPending,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Slot:      slot,
		Adults:    2,
		Children:  1,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestRepositoryCompleteOrder_exactlyOnce(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	booking := newBooking(t, db, enums.BookingTour)
	order := createOrder(t, db, booking, enums.OrderPending)
	createItem(t, db, order, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), nil, ptr("morning"))

	won, err := repo.CompleteOrder(ctx, order.ID, "txn_123")
	require.NoError(t, err)
	assert.True(t, won)

	updated, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderComplete, updated.Status)
	require.NotNil(t, updated.TransactionID)
	assert.Equal(t, "txn_123", *updated.TransactionID)

	items, err := repo.FindOrderItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, enums.ItemConfirmed, items[0].Status)

	// A replay of the same outcome must not win the transition again.
	won, err = repo.CompleteOrder(ctx, order.ID, "txn_123")
	require.NoError(t, err)
	assert.False(t, won)
}

func TestRepositoryCompleteOrder_fromIncomplete(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	booking := newBooking(t, db, enums.BookingHotel)
	order := createOrder(t, db, booking, enums.OrderPending)

	require.NoError(t, repo.MarkIncomplete(ctx, order.ID, "pi_abc"))

	parked, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderIncomplete, parked.Status)
	require.NotNil(t, parked.PaymentIntentID)
	assert.Equal(t, "pi_abc", *parked.PaymentIntentID)

	won, err := repo.CompleteOrder(ctx, order.ID, "txn_456")
	require.NoError(t, err)
	assert.True(t, won)
}

func TestRepositoryCompleteOrder_failedStaysFailed(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	booking := newBooking(t, db, enums.BookingActivity)
	order := createOrder(t, db, booking, enums.OrderPending)
	require.NoError(t, repo.MarkFailed(ctx, order.ID))

	won, err := repo.CompleteOrder(ctx, order.ID, "txn_789")
	require.NoError(t, err)
	assert.False(t, won)

	updated, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderFailed, updated.Status)
}

func TestRepositoryDeleteProvisional(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	booking := newBooking(t, db, enums.BookingRental)
	order := createOrder(t, db, booking, enums.OrderPending)
	checkOut := time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)
	createItem(t, db, order, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), &checkOut, nil)

	require.NoError(t, repo.DeleteProvisional(ctx, order.ID))

	_, err := repo.FindOrder(ctx, order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	items, err := repo.FindOrderItems(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRepositoryFindOrderDetail(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	booking := newBooking(t, db, enums.BookingTour)
	order := createOrder(t, db, booking, enums.OrderPending)
	createItem(t, db, order, time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC), nil, ptr("afternoon"))

	detail, err := repo.FindOrderDetail(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, detail.Order.ID)
	assert.Equal(t, booking.SellerID, detail.Booking.SellerID)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, enums.BookingTour, detail.Booking.Type)
}

func TestRepositoryIncrementTourAvailability(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	booking := newBooking(t, db, enums.BookingTour)
	day := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.IncrementTourAvailability(ctx, booking.ID, day, "morning", 2, 1))
	require.NoError(t, repo.IncrementTourAvailability(ctx, booking.ID, day, "morning", 3, 0))
	require.NoError(t, repo.IncrementTourAvailability(ctx, booking.ID, day, "afternoon", 1, 0))

	morning, err := repo.FindTourAvailability(ctx, booking.ID, day, "morning")
	require.NoError(t, err)
	assert.Equal(t, 5, morning.BookedAdults)
	assert.Equal(t, 1, morning.BookedChildren)

	afternoon, err := repo.FindTourAvailability(ctx, booking.ID, day, "afternoon")
	require.NoError(t, err)
	assert.Equal(t, 1, afternoon.BookedAdults)
	assert.Equal(t, 0, afternoon.BookedChildren)
}

func TestRepositoryIncrementRentalAvailability(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	booking := newBooking(t, db, enums.BookingHotel)
	checkIn := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.IncrementRentalAvailability(ctx, booking.ID, checkIn, checkOut))
	require.NoError(t, repo.IncrementRentalAvailability(ctx, booking.ID, checkIn, checkIn.AddDate(0, 0, 1)))

	first, err := repo.FindRentalAvailability(ctx, booking.ID, checkIn)
	require.NoError(t, err)
	assert.Equal(t, 2, first.BookedUnits)

	second, err := repo.FindRentalAvailability(ctx, booking.ID, checkIn.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, second.BookedUnits)

	// The checkout night is not occupied.
	_, err = repo.FindRentalAvailability(ctx, booking.ID, checkOut)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryMarkNotified_onlyOnce(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	booking := newBooking(t, db, enums.BookingTour)
	order := createOrder(t, db, booking, enums.OrderComplete)

	updated, err := repo.MarkNotified(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = repo.MarkNotified(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, updated)
}

func ptr[T any](v T) *T {
	return &v
}
