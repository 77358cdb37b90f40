package partneraccounts

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/trailhop/partner-payments/pkg/config"
	"github.com/trailhop/partner-payments/pkg/db/models"
	"github.com/trailhop/partner-payments/pkg/enums"
	pkgerrors "github.com/trailhop/partner-payments/pkg/errors"
	"github.com/trailhop/partner-payments/pkg/metrics"
	"github.com/trailhop/partner-payments/pkg/outbox"
	"github.com/trailhop/partner-payments/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type bookingFinder interface {
	FindBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service manages the lifecycle of partner processor accounts.
type Service interface {
	ResolveOrCreate(ctx context.Context, sellerID uuid.UUID, email string) (*models.PartnerAccount, error)
	CreateOnboardingLink(ctx context.Context, sellerID uuid.UUID, email string) (*OnboardingLink, error)
	VerifyAfterCallback(ctx context.Context, sellerID uuid.UUID, accountID string) (bool, error)
	GetStatus(ctx context.Context, sellerID uuid.UUID) (*AccountView, error)
	IsPaymentEligible(ctx context.Context, sellerID uuid.UUID) (bool, error)
	AccountForBooking(ctx context.Context, bookingID uuid.UUID) (string, error)
	CreateDashboardLink(ctx context.Context, sellerID uuid.UUID) (*DashboardLink, error)
	Disconnect(ctx context.Context, sellerID uuid.UUID) error
}

// ServiceParams groups dependencies for the partner account service.
type ServiceParams struct {
	Repo              Repository
	Bookings          bookingFinder
	Processor         ProcessorClient
	Outbox            outboxEmitter
	TransactionRunner txRunner
	Checkout          config.CheckoutConfig
	Metrics           *metrics.PaymentMetrics
}

type service struct {
	repo     Repository
	bookings bookingFinder
	stripe   ProcessorClient
	outbox   outboxEmitter
	tx       txRunner
	checkout config.CheckoutConfig
	metrics  *metrics.PaymentMetrics
}

// NewService builds the partner account service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("partner accounts repository required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if params.Processor == nil {
		return nil, fmt.Errorf("processor client required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		repo:     params.Repo,
		bookings: params.Bookings,
		stripe:   params.Processor,
		outbox:   params.Outbox,
		tx:       params.TransactionRunner,
		checkout: params.Checkout,
		metrics:  params.Metrics,
	}, nil
}

// ResolveOrCreate returns the seller's processor account, provisioning an
// express account only when no usable id exists. A stored id is always
// reused, even after a disconnect; it is dropped only when the processor
// definitively reports it gone.
func (s *service) ResolveOrCreate(ctx context.Context, sellerID uuid.UUID, email string) (*models.PartnerAccount, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}

	record, err := s.repo.FindBySeller(ctx, sellerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record, err = s.repo.Create(ctx, &models.PartnerAccount{
			ID:       uuid.New(),
			SellerID: sellerID,
			Status:   enums.AccountNotConnected,
		})
	}
	if err != nil {
		return nil, err
	}

	if record.StripeAccountID != nil {
		remote, err := s.stripe.GetAccount(ctx, *record.StripeAccountID)
		if err == nil {
			if err := s.snapshotCapabilities(ctx, sellerID, remote); err != nil {
				return nil, err
			}
			return s.repo.FindBySeller(ctx, sellerID)
		}
		if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return nil, err
		}
		// The account no longer exists upstream; forget it and start over.
		if err := s.repo.ClearAccount(ctx, sellerID); err != nil {
			return nil, err
		}
	}

	created, err := s.stripe.CreateExpressAccount(ctx, email)
	if err != nil {
		s.metrics.IncOnboarding("create_failed")
		return nil, err
	}
	err = s.repo.UpdateBySeller(ctx, sellerID, map[string]any{
		"stripe_account_id": created.ID,
		"status":            enums.AccountPending,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncOnboarding("account_created")
	return s.repo.FindBySeller(ctx, sellerID)
}

// CreateOnboardingLink ensures an account exists and mints a hosted
// onboarding link for it.
func (s *service) CreateOnboardingLink(ctx context.Context, sellerID uuid.UUID, email string) (*OnboardingLink, error) {
	record, err := s.ResolveOrCreate(ctx, sellerID, email)
	if err != nil {
		return nil, err
	}
	if record.StripeAccountID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "partner account has no processor id")
	}

	link, err := s.stripe.CreateAccountLink(ctx, *record.StripeAccountID, s.checkout.SettingsURL, s.callbackURL(sellerID, *record.StripeAccountID))
	if err != nil {
		return nil, err
	}
	s.metrics.IncOnboarding("link_created")
	return &OnboardingLink{URL: link.URL, AccountID: *record.StripeAccountID}, nil
}

// VerifyAfterCallback checks live capabilities once the seller returns from
// hosted onboarding. It commits the active status only when charges are
// enabled; processor errors leave the record untouched.
func (s *service) VerifyAfterCallback(ctx context.Context, sellerID uuid.UUID, accountID string) (bool, error) {
	record, err := s.repo.FindBySeller(ctx, sellerID)
	if err != nil {
		return false, err
	}
	if record.StripeAccountID == nil || *record.StripeAccountID != accountID {
		return false, pkgerrors.New(pkgerrors.CodeConflict, "account does not belong to seller")
	}

	remote, err := s.stripe.GetAccount(ctx, accountID)
	if err != nil {
		return false, err
	}

	if !remote.ChargesEnabled {
		if err := s.snapshotCapabilities(ctx, sellerID, remote); err != nil {
			return false, err
		}
		s.metrics.IncOnboarding("verify_pending")
		return false, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		err := repo.UpdateBySeller(ctx, sellerID, map[string]any{
			"status":              enums.AccountActive,
			"onboarding_complete": true,
			"charges_enabled":     remote.ChargesEnabled,
			"payouts_enabled":     remote.PayoutsEnabled,
			"details_submitted":   remote.DetailsSubmitted,
		})
		if err != nil {
			return err
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPartnerOnboarded,
			AggregateType: enums.AggregatePartnerAccount,
			AggregateID:   record.ID,
			Actor:         &outbox.ActorRef{SellerID: &sellerID, Source: "onboarding_callback"},
			Data: payloads.PartnerOnboardedEvent{
				SellerID:  sellerID,
				AccountID: accountID,
			},
		})
	})
	if err != nil {
		return false, err
	}
	s.metrics.IncOnboarding("verified")
	return true, nil
}

// GetStatus returns the seller-facing account view. Disconnected sellers get
// a synthetic view without a remote call. On transient processor errors the
// last committed snapshot is served; the staleness is bounded by the next
// successful refresh.
func (s *service) GetStatus(ctx context.Context, sellerID uuid.UUID) (*AccountView, error) {
	record, err := s.repo.FindBySeller(ctx, sellerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &AccountView{SellerID: sellerID, Status: enums.AccountNotConnected}, nil
	}
	if err != nil {
		return nil, err
	}
	if record.StripeAccountID == nil {
		return &AccountView{SellerID: sellerID, Status: enums.AccountNotConnected}, nil
	}
	if record.Status == enums.AccountDisconnected {
		return &AccountView{
			SellerID:  sellerID,
			Status:    enums.AccountDisconnected,
			AccountID: *record.StripeAccountID,
		}, nil
	}

	remote, err := s.stripe.GetAccount(ctx, *record.StripeAccountID)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			if clearErr := s.repo.ClearAccount(ctx, sellerID); clearErr != nil {
				return nil, clearErr
			}
			return &AccountView{SellerID: sellerID, Status: enums.AccountNotConnected}, nil
		}
		// Transient upstream failure: serve the last committed snapshot.
		return viewFromRecord(record), nil
	}

	if err := s.snapshotCapabilities(ctx, sellerID, remote); err != nil {
		return nil, err
	}
	refreshed, err := s.repo.FindBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return viewFromRecord(refreshed), nil
}

// IsPaymentEligible reports whether the seller can receive destination
// transfers, judged from the committed snapshot.
func (s *service) IsPaymentEligible(ctx context.Context, sellerID uuid.UUID) (bool, error) {
	record, err := s.repo.FindBySeller(ctx, sellerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return eligible(record), nil
}

// AccountForBooking resolves the booking owner's processor account id,
// failing with a state conflict when the partner cannot accept payments.
func (s *service) AccountForBooking(ctx context.Context, bookingID uuid.UUID) (string, error) {
	booking, err := s.bookings.FindBooking(ctx, bookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	if err != nil {
		return "", err
	}

	record, err := s.repo.FindBySeller(ctx, booking.SellerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", errPartnerNotConnected()
	}
	if err != nil {
		return "", err
	}
	if !eligible(record) {
		return "", errPartnerNotConnected()
	}
	return *record.StripeAccountID, nil
}

// CreateDashboardLink mints a one-time login link into the hosted dashboard.
func (s *service) CreateDashboardLink(ctx context.Context, sellerID uuid.UUID) (*DashboardLink, error) {
	record, err := s.repo.FindBySeller(ctx, sellerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "partner account not found")
	}
	if err != nil {
		return nil, err
	}
	if record.StripeAccountID == nil || record.Status == enums.AccountDisconnected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "partner account is not connected")
	}

	link, err := s.stripe.CreateLoginLink(ctx, *record.StripeAccountID)
	if err != nil {
		return nil, err
	}
	return &DashboardLink{URL: link.URL}, nil
}

// Disconnect detaches the seller locally. The processor account id is
// retained so a later reconnect resumes the same account.
func (s *service) Disconnect(ctx context.Context, sellerID uuid.UUID) error {
	record, err := s.repo.FindBySeller(ctx, sellerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "partner account not found")
	}
	if err != nil {
		return err
	}
	if record.StripeAccountID == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "partner account is not connected")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		err := repo.UpdateBySeller(ctx, sellerID, map[string]any{
			"status":              enums.AccountDisconnected,
			"onboarding_complete": false,
			"charges_enabled":     false,
			"payouts_enabled":     false,
			"details_submitted":   false,
		})
		if err != nil {
			return err
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPartnerDisconnected,
			AggregateType: enums.AggregatePartnerAccount,
			AggregateID:   record.ID,
			Actor:         &outbox.ActorRef{SellerID: &sellerID, Source: "partner_settings"},
			Data:          payloads.PartnerDisconnectedEvent{SellerID: sellerID},
		})
	})
}

func (s *service) snapshotCapabilities(ctx context.Context, sellerID uuid.UUID, remote *stripe.Account) error {
	status := enums.AccountPending
	if remote.ChargesEnabled {
		status = enums.AccountActive
	}
	return s.repo.UpdateBySeller(ctx, sellerID, map[string]any{
		"status":              status,
		"onboarding_complete": remote.DetailsSubmitted,
		"charges_enabled":     remote.ChargesEnabled,
		"payouts_enabled":     remote.PayoutsEnabled,
		"details_submitted":   remote.DetailsSubmitted,
	})
}

func (s *service) callbackURL(sellerID uuid.UUID, accountID string) string {
	q := url.Values{}
	q.Set("seller_id", sellerID.String())
	q.Set("account", accountID)
	return s.checkout.CallbackURL + "?" + q.Encode()
}

func eligible(record *models.PartnerAccount) bool {
	return record.StripeAccountID != nil &&
		record.Status == enums.AccountActive &&
		record.ChargesEnabled &&
		record.DetailsSubmitted
}

func errPartnerNotConnected() error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "partner is not connected for payments")
}

func viewFromRecord(record *models.PartnerAccount) *AccountView {
	view := &AccountView{
		SellerID:           record.SellerID,
		Status:             record.Status,
		OnboardingComplete: record.OnboardingComplete,
		ChargesEnabled:     record.ChargesEnabled,
		PayoutsEnabled:     record.PayoutsEnabled,
		DetailsSubmitted:   record.DetailsSubmitted,
	}
	if record.StripeAccountID != nil {
		view.AccountID = *record.StripeAccountID
	}
	return view
}
