package payments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/trailhop/partner-payments/internal/bookings"
	"github.com/trailhop/partner-payments/pkg/config"
	"github.com/trailhop/partner-payments/pkg/enums"
	pkgerrors "github.com/trailhop/partner-payments/pkg/errors"
	"github.com/trailhop/partner-payments/pkg/metrics"
	"github.com/trailhop/partner-payments/pkg/money"
	"github.com/trailhop/partner-payments/pkg/outbox"
	"github.com/trailhop/partner-payments/pkg/outbox/payloads"
	"github.com/trailhop/partner-payments/pkg/stripeconnect"
)

// Legacy API versions report 3DS challenges under a different status name.
const statusRequiresSourceAction = stripe.PaymentIntentStatus("requires_source_action")

const defaultLockTTL = 2 * time.Minute

// Service orchestrates split payments for booking orders.
type Service interface {
	SubmitPayment(ctx context.Context, orderID uuid.UUID, paymentMethodID string) (*SubmitResult, error)
	ConfirmAfterAuthentication(ctx context.Context, intentID string, orderID uuid.UUID) (*SubmitResult, error)
}

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	Bookings          bookings.Repository
	Accounts          destinationResolver
	Processor         processorClient
	Locks             submissionLocker
	Outbox            outboxEmitter
	TransactionRunner txRunner
	Checkout          config.CheckoutConfig
	Stripe            config.StripeConfig
	Metrics           *metrics.PaymentMetrics
	LockTTL           time.Duration
}

type service struct {
	bookings bookings.Repository
	accounts destinationResolver
	stripe   processorClient
	locks    submissionLocker
	outbox   outboxEmitter
	tx       txRunner
	checkout config.CheckoutConfig
	cfg      config.StripeConfig
	metrics  *metrics.PaymentMetrics
	lockTTL  time.Duration
}

// NewService builds the payment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Bookings == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("destination resolver required")
	}
	if params.Processor == nil {
		return nil, fmt.Errorf("processor client required")
	}
	if params.Locks == nil {
		return nil, fmt.Errorf("submission locker required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	ttl := params.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &service{
		bookings: params.Bookings,
		accounts: params.Accounts,
		stripe:   params.Processor,
		locks:    params.Locks,
		outbox:   params.Outbox,
		tx:       params.TransactionRunner,
		checkout: params.Checkout,
		cfg:      params.Stripe,
		metrics:  params.Metrics,
		lockTTL:  ttl,
	}, nil
}

// SubmitPayment charges the buyer for an order and routes 80% of the amount
// to the partner account via a destination transfer. The partner linkage is
// checked before anything is sent to the processor, so unconnected partners
// cost zero remote calls.
func (s *service) SubmitPayment(ctx context.Context, orderID uuid.UUID, paymentMethodID string) (*SubmitResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if paymentMethodID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method required")
	}
	if !s.cfg.Configured() {
		return nil, pkgerrors.New(pkgerrors.CodeConfig, "payment processor is not configured")
	}

	acquired, err := s.locks.AcquireSubmissionLock(ctx, orderID.String(), s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquiring submission lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a payment for this order is already in progress")
	}
	defer func() {
		_ = s.locks.ReleaseSubmissionLock(context.WithoutCancel(ctx), orderID.String())
	}()

	detail, err := s.bookings.FindOrderDetail(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, err
	}
	switch detail.Order.Status {
	case enums.OrderComplete:
		return s.completedResult(detail), nil
	case enums.OrderFailed:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order payment already failed")
	}

	destination, err := s.accounts.AccountForBooking(ctx, detail.Booking.ID)
	if err != nil {
		s.metrics.IncAttempt("rejected")
		return nil, err
	}

	customer, err := s.stripe.CreateCustomer(ctx, detail.Order.BuyerName, detail.Order.BuyerEmail)
	if err != nil {
		return nil, s.handleProcessorFailure(ctx, detail, err)
	}

	amountMinor := money.ToMinorUnits(detail.Order.Amount, detail.Order.ExchangeRate, detail.Order.Currency)
	feeMinor := money.PlatformFee(amountMinor)

	started := time.Now()
	intent, err := s.stripe.CreatePaymentIntent(ctx, stripeconnect.IntentCreateParams{
		AmountMinor:          amountMinor,
		Currency:             detail.Order.Currency,
		CustomerID:           customer.ID,
		PaymentMethodID:      paymentMethodID,
		DestinationAccountID: destination,
		ApplicationFeeMinor:  feeMinor,
		ReturnURL:            s.returnURL(orderID),
		Metadata: map[string]string{
			"order_id":        orderID.String(),
			"booking_id":      detail.Booking.ID.String(),
			"partner_account": destination,
		},
	})
	s.metrics.ObserveIntentDuration("create", time.Since(started))
	if err != nil {
		return nil, s.handleProcessorFailure(ctx, detail, err)
	}

	return s.interpretIntent(ctx, detail, intent, amountMinor, feeMinor)
}

// ConfirmAfterAuthentication resolves an order parked on 3DS. It re-reads the
// intent from the processor; only a settled intent mutates the order, so
// replays and still-pending challenges are safe.
func (s *service) ConfirmAfterAuthentication(ctx context.Context, intentID string, orderID uuid.UUID) (*SubmitResult, error) {
	if intentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !s.cfg.Configured() {
		return nil, pkgerrors.New(pkgerrors.CodeConfig, "payment processor is not configured")
	}

	detail, err := s.bookings.FindOrderDetail(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, err
	}
	if detail.Order.Status == enums.OrderComplete {
		return s.completedResult(detail), nil
	}
	if detail.Order.PaymentIntentID == nil || *detail.Order.PaymentIntentID != intentID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "intent does not belong to order")
	}

	started := time.Now()
	intent, err := s.stripe.GetPaymentIntent(ctx, intentID)
	s.metrics.ObserveIntentDuration("get", time.Since(started))
	if err != nil {
		return nil, err
	}

	switch {
	case intent.Status == stripe.PaymentIntentStatusSucceeded:
		amountMinor := intent.Amount
		feeMinor := intent.ApplicationFeeAmount
		if amountMinor == 0 {
			amountMinor = money.ToMinorUnits(detail.Order.Amount, detail.Order.ExchangeRate, detail.Order.Currency)
			feeMinor = money.PlatformFee(amountMinor)
		}
		return s.settle(ctx, detail, intent, amountMinor, feeMinor)
	case requiresAction(intent.Status):
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment authentication is not completed")
	default:
		s.metrics.IncAttempt("confirmation_failed")
		return nil, pkgerrors.New(pkgerrors.CodeDeclined, "payment was not accepted")
	}
}

func (s *service) interpretIntent(ctx context.Context, detail *bookings.OrderDetail, intent *stripe.PaymentIntent, amountMinor, feeMinor int64) (*SubmitResult, error) {
	switch {
	case intent.Status == stripe.PaymentIntentStatusSucceeded:
		return s.settle(ctx, detail, intent, amountMinor, feeMinor)

	case requiresAction(intent.Status):
		if err := s.bookings.MarkIncomplete(ctx, detail.Order.ID, intent.ID); err != nil {
			return nil, err
		}
		s.metrics.IncAttempt("requires_action")
		return &SubmitResult{
			OrderID:        detail.Order.ID,
			Status:         enums.OrderIncomplete,
			RequiresAction: true,
			ClientSecret:   intent.ClientSecret,
		}, nil

	default:
		err := pkgerrors.New(pkgerrors.CodeDeclined, "payment was not accepted")
		return nil, s.handleProcessorFailure(ctx, detail, err)
	}
}

// settle applies the completion side effects exactly once. The conditional
// status update decides the winner; availability increments and the outbox
// emission ride the same transaction, so a replayed success is a no-op.
func (s *service) settle(ctx context.Context, detail *bookings.OrderDetail, intent *stripe.PaymentIntent, amountMinor, feeMinor int64) (*SubmitResult, error) {
	transactionID := transactionIDFromIntent(intent)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.bookings.WithTx(tx)

		won, err := repo.CompleteOrder(ctx, detail.Order.ID, transactionID)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}

		for _, item := range detail.Items {
			if err := s.applyAvailability(ctx, repo, detail, item.CheckIn, item.CheckOut, item.Slot, item.Adults, item.Children); err != nil {
				return err
			}
		}

		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingConfirmed,
			AggregateType: enums.AggregateBookingOrder,
			AggregateID:   detail.Order.ID,
			Actor:         &outbox.ActorRef{Source: "payment_orchestrator"},
			Data: payloads.BookingConfirmedEvent{
				OrderID:       detail.Order.ID,
				BookingID:     detail.Booking.ID,
				SellerID:      detail.Booking.SellerID,
				TransactionID: transactionID,
				Currency:      detail.Order.Currency,
				AmountMinor:   amountMinor,
				FeeMinor:      feeMinor,
				ConfirmedAt:   time.Now().UTC(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncAttempt("succeeded")
	return &SubmitResult{
		OrderID:       detail.Order.ID,
		Status:        enums.OrderComplete,
		RedirectURL:   s.successURL(detail.Order.ID),
		TransactionID: transactionID,
	}, nil
}

func (s *service) applyAvailability(ctx context.Context, repo bookings.Repository, detail *bookings.OrderDetail, checkIn time.Time, checkOut *time.Time, slot *string, adults, children int) error {
	if detail.Booking.Type.SlotBased() {
		slotName := ""
		if slot != nil {
			slotName = *slot
		}
		return repo.IncrementTourAvailability(ctx, detail.Booking.ID, checkIn, slotName, adults, children)
	}

	until := checkIn.AddDate(0, 0, 1)
	if checkOut != nil {
		until = *checkOut
	}
	return repo.IncrementRentalAvailability(ctx, detail.Booking.ID, checkIn, until)
}

// handleProcessorFailure records the failure and removes the provisional
// order only when the outcome is definitive. Transient upstream failures
// leave the order in place so the buyer can retry.
func (s *service) handleProcessorFailure(ctx context.Context, detail *bookings.OrderDetail, cause error) error {
	s.metrics.IncAttempt("failed")

	if !definitiveFailure(cause) {
		return cause
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.bookings.WithTx(tx)
		if err := repo.DeleteProvisional(ctx, detail.Order.ID); err != nil {
			return err
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentFailed,
			AggregateType: enums.AggregateBookingOrder,
			AggregateID:   detail.Order.ID,
			Actor:         &outbox.ActorRef{Source: "payment_orchestrator"},
			Data: payloads.PaymentFailedEvent{
				OrderID:   detail.Order.ID,
				BookingID: detail.Booking.ID,
				Reason:    failureReason(cause),
				FailedAt:  time.Now().UTC(),
			},
		})
	})
	if err != nil {
		return err
	}
	return cause
}

func (s *service) returnURL(orderID uuid.UUID) string {
	q := url.Values{}
	q.Set("order_id", orderID.String())
	return s.checkout.ReturnURL + "?" + q.Encode()
}

func (s *service) successURL(orderID uuid.UUID) string {
	q := url.Values{}
	q.Set("order_id", orderID.String())
	return s.checkout.SuccessURL + "?" + q.Encode()
}

func (s *service) completedResult(detail *bookings.OrderDetail) *SubmitResult {
	result := &SubmitResult{
		OrderID:     detail.Order.ID,
		Status:      enums.OrderComplete,
		RedirectURL: s.successURL(detail.Order.ID),
	}
	if detail.Order.TransactionID != nil {
		result.TransactionID = *detail.Order.TransactionID
	}
	return result
}

func requiresAction(status stripe.PaymentIntentStatus) bool {
	return status == stripe.PaymentIntentStatusRequiresAction || status == statusRequiresSourceAction
}

// definitiveFailure reports whether the failure can never be fixed by
// retrying with the same inputs.
func definitiveFailure(err error) bool {
	return pkgerrors.HasCode(err, pkgerrors.CodeDeclined) ||
		pkgerrors.HasCode(err, pkgerrors.CodeValidation) ||
		pkgerrors.HasCode(err, pkgerrors.CodeNotFound)
}

func failureReason(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}

func transactionIDFromIntent(intent *stripe.PaymentIntent) string {
	if intent.LatestCharge != nil && intent.LatestCharge.ID != "" {
		return intent.LatestCharge.ID
	}
	return intent.ID
}
