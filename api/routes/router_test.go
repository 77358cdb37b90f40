package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/trailhop/partner-payments/internal/partneraccounts"
	"github.com/trailhop/partner-payments/internal/payments"
	"github.com/trailhop/partner-payments/pkg/config"
	"github.com/trailhop/partner-payments/pkg/db/models"
	"github.com/trailhop/partner-payments/pkg/enums"
	"github.com/trailhop/partner-payments/pkg/logger"
	"github.com/trailhop/partner-payments/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAccountsService struct {
	statusFn func(ctx context.Context, sellerID uuid.UUID) (*partneraccounts.AccountView, error)
	verifyFn func(ctx context.Context, sellerID uuid.UUID, accountID string) (bool, error)
}

func (s stubAccountsService) ResolveOrCreate(context.Context, uuid.UUID, string) (*models.PartnerAccount, error) {
	panic("unimplemented")
}

func (s stubAccountsService) CreateOnboardingLink(context.Context, uuid.UUID, string) (*partneraccounts.OnboardingLink, error) {
	return &partneraccounts.OnboardingLink{URL: "https://connect.example/onboard", AccountID: "acct_1"}, nil
}

func (s stubAccountsService) VerifyAfterCallback(ctx context.Context, sellerID uuid.UUID, accountID string) (bool, error) {
	if s.verifyFn != nil {
		return s.verifyFn(ctx, sellerID, accountID)
	}
	return true, nil
}

func (s stubAccountsService) GetStatus(ctx context.Context, sellerID uuid.UUID) (*partneraccounts.AccountView, error) {
	if s.statusFn != nil {
		return s.statusFn(ctx, sellerID)
	}
	return &partneraccounts.AccountView{SellerID: sellerID, Status: enums.AccountNotConnected}, nil
}

func (s stubAccountsService) IsPaymentEligible(context.Context, uuid.UUID) (bool, error) {
	return false, nil
}

func (s stubAccountsService) AccountForBooking(context.Context, uuid.UUID) (string, error) {
	panic("unimplemented")
}

func (s stubAccountsService) CreateDashboardLink(context.Context, uuid.UUID) (*partneraccounts.DashboardLink, error) {
	return &partneraccounts.DashboardLink{URL: "https://connect.example/dashboard"}, nil
}

func (s stubAccountsService) Disconnect(context.Context, uuid.UUID) error {
	return nil
}

type stubPaymentsService struct {
	submitFn  func(ctx context.Context, orderID uuid.UUID, paymentMethodID string) (*payments.SubmitResult, error)
	confirmFn func(ctx context.Context, intentID string, orderID uuid.UUID) (*payments.SubmitResult, error)
}

func (s stubPaymentsService) SubmitPayment(ctx context.Context, orderID uuid.UUID, paymentMethodID string) (*payments.SubmitResult, error) {
	if s.submitFn != nil {
		return s.submitFn(ctx, orderID, paymentMethodID)
	}
	return &payments.SubmitResult{OrderID: orderID, Status: enums.OrderComplete}, nil
}

func (s stubPaymentsService) ConfirmAfterAuthentication(ctx context.Context, intentID string, orderID uuid.UUID) (*payments.SubmitResult, error) {
	if s.confirmFn != nil {
		return s.confirmFn(ctx, intentID, orderID)
	}
	return &payments.SubmitResult{OrderID: orderID, Status: enums.OrderComplete}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		Checkout: config.CheckoutConfig{
			SettingsURL: "https://partners.example/settings",
			CallbackURL: "https://api.example/api/v1/partners/callback",
			ReturnURL:   "https://app.example/checkout/return",
			SuccessURL:  "https://app.example/checkout/success",
		},
	}
}

func newTestRouter(cfg *config.Config, accounts partneraccounts.Service, pay payments.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(cfg, logg, stubPinger{}, (*redis.Client)(nil), nil, accounts, pay)
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig(), stubAccountsService{}, stubPaymentsService{})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Trailhop-Env") != "test" {
		t.Fatalf("expected env header on health response")
	}
}

func TestPartnerAccountRoute(t *testing.T) {
	sellerID := uuid.New()
	router := newTestRouter(testConfig(), stubAccountsService{}, stubPaymentsService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/partners/"+sellerID.String()+"/account", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var payload struct {
		Data partneraccounts.AccountView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.SellerID != sellerID {
		t.Fatalf("expected seller %s got %s", sellerID, payload.Data.SellerID)
	}
}

func TestPartnerAccountRejectsBadSellerID(t *testing.T) {
	router := newTestRouter(testConfig(), stubAccountsService{}, stubPaymentsService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/partners/not-a-uuid/account", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPartnerOnboardingLinkRoute(t *testing.T) {
	sellerID := uuid.New()
	router := newTestRouter(testConfig(), stubAccountsService{}, stubPaymentsService{})
	body := `{"email":"host@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/partners/"+sellerID.String()+"/onboarding-link", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestPartnerCallbackRedirects(t *testing.T) {
	sellerID := uuid.New()
	router := newTestRouter(testConfig(), stubAccountsService{}, stubPaymentsService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/partners/callback?seller_id="+sellerID.String()+"&account=acct_1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302 got %d", resp.Code)
	}
	location := resp.Header().Get("Location")
	if !strings.HasPrefix(location, "https://partners.example/settings") {
		t.Fatalf("expected redirect to settings got %s", location)
	}
	if !strings.Contains(location, "connect=success") {
		t.Fatalf("expected success indicator got %s", location)
	}
}

func TestPartnerCallbackRedirectsPendingOnboarding(t *testing.T) {
	sellerID := uuid.New()
	accounts := stubAccountsService{
		verifyFn: func(context.Context, uuid.UUID, string) (bool, error) {
			return false, nil
		},
	}
	router := newTestRouter(testConfig(), accounts, stubPaymentsService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/partners/callback?seller_id="+sellerID.String()+"&account=acct_1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302 got %d", resp.Code)
	}
	if !strings.Contains(resp.Header().Get("Location"), "connect=refresh") {
		t.Fatalf("expected refresh indicator got %s", resp.Header().Get("Location"))
	}
}

func TestCheckoutPaymentRequiresIdempotencyKey(t *testing.T) {
	orderID := uuid.New()
	router := newTestRouter(testConfig(), stubAccountsService{}, stubPaymentsService{})
	body := `{"payment_method_id":"pm_123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+orderID.String()+"/payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key got %d", resp.Code)
	}
}

func TestPartnerDisconnectRoute(t *testing.T) {
	sellerID := uuid.New()
	router := newTestRouter(testConfig(), stubAccountsService{}, stubPaymentsService{})
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/partners/"+sellerID.String()+"/account", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
