package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/trailhop/partner-payments/pkg/outbox"
	"github.com/trailhop/partner-payments/pkg/stripeconnect"
)

type processorClient interface {
	CreateCustomer(ctx context.Context, name, email string) (*stripe.Customer, error)
	CreatePaymentIntent(ctx context.Context, in stripeconnect.IntentCreateParams) (*stripe.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, intentID string) (*stripe.PaymentIntent, error)
}

type destinationResolver interface {
	AccountForBooking(ctx context.Context, bookingID uuid.UUID) (string, error)
}

type submissionLocker interface {
	AcquireSubmissionLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error)
	ReleaseSubmissionLock(ctx context.Context, orderID string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}
