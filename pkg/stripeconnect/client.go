package stripeconnect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/account"
	"github.com/stripe/stripe-go/v84/accountlink"
	"github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/loginlink"
	"github.com/stripe/stripe-go/v84/paymentintent"

	"github.com/trailhop/partner-payments/pkg/config"
	pkgerrors "github.com/trailhop/partner-payments/pkg/errors"
	"github.com/trailhop/partner-payments/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errLoggerRequired   = errors.New("stripe logger is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// Client exposes the Stripe Connect primitives the platform needs: express
// accounts, onboarding/dashboard links, customers, and destination-charge
// payment intents. Auth, logging, and error mapping are centralized here.
type Client struct {
	environment string
	country     string
	logger      *logger.Logger
}

// NewClient initializes Stripe once with the configured secrets and env.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}

	stripe.Key = apiKey

	c := &Client{
		environment: env,
		country:     strings.ToUpper(strings.TrimSpace(cfg.Country)),
		logger:      logg,
	}
	logg.Info(ctx, fmt.Sprintf("stripe connect client initialized (%s)", env))
	return c, nil
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// CreateExpressAccount provisions a new express account with the card
// payments and transfers capabilities requested.
func (c *Client) CreateExpressAccount(ctx context.Context, email string) (*stripe.Account, error) {
	params := &stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeExpress)),
		Country: stripe.String(c.country),
		Email:   stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	params.Context = ctx
	c.log(ctx, "request", "create_express_account", map[string]any{"email": email})

	acct, err := account.New(params)
	if err != nil {
		c.log(ctx, "error", "create_express_account", map[string]any{"error": err.Error()})
		return nil, c.mapStripeError(err, "create express account")
	}

	c.log(ctx, "response", "create_express_account", map[string]any{"account_id": acct.ID})
	return acct, nil
}

// GetAccount retrieves the live state of a connected account.
func (c *Client) GetAccount(ctx context.Context, accountID string) (*stripe.Account, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx
	c.log(ctx, "request", "get_account", map[string]any{"account_id": accountID})

	acct, err := account.GetByID(accountID, params)
	if err != nil {
		c.log(ctx, "error", "get_account", map[string]any{"error": err.Error()})
		return nil, c.mapStripeError(err, "get account")
	}

	c.log(ctx, "response", "get_account", map[string]any{
		"account_id":      acct.ID,
		"charges_enabled": acct.ChargesEnabled,
	})
	return acct, nil
}

// CreateAccountLink mints a single-use onboarding link for the account.
func (c *Client) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (*stripe.AccountLink, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	params.Context = ctx
	c.log(ctx, "request", "create_account_link", map[string]any{"account_id": accountID})

	link, err := accountlink.New(params)
	if err != nil {
		c.log(ctx, "error", "create_account_link", map[string]any{"error": err.Error()})
		return nil, c.mapStripeError(err, "create account link")
	}

	c.log(ctx, "response", "create_account_link", map[string]any{"account_id": accountID})
	return link, nil
}

// CreateLoginLink mints an express dashboard login link for the account.
func (c *Client) CreateLoginLink(ctx context.Context, accountID string) (*stripe.LoginLink, error) {
	params := &stripe.LoginLinkParams{Account: stripe.String(accountID)}
	params.Context = ctx
	c.log(ctx, "request", "create_login_link", map[string]any{"account_id": accountID})

	link, err := loginlink.New(params)
	if err != nil {
		c.log(ctx, "error", "create_login_link", map[string]any{"error": err.Error()})
		return nil, c.mapStripeError(err, "create login link")
	}

	c.log(ctx, "response", "create_login_link", map[string]any{"account_id": accountID})
	return link, nil
}

// CreateCustomer registers the buyer on the platform account.
func (c *Client) CreateCustomer(ctx context.Context, name, email string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{
		Name:  stripe.String(name),
		Email: stripe.String(email),
	}
	params.Context = ctx
	c.log(ctx, "request", "create_customer", map[string]any{"email": email})

	cust, err := customer.New(params)
	if err != nil {
		c.log(ctx, "error", "create_customer", map[string]any{"error": err.Error()})
		return nil, c.mapStripeError(err, "create customer")
	}

	c.log(ctx, "response", "create_customer", map[string]any{"customer_id": cust.ID})
	return cust, nil
}

// CreatePaymentIntent opens and immediately confirms a destination-charge
// intent. Manual confirmation keeps the authentication round trip under the
// platform's control.
func (c *Client) CreatePaymentIntent(ctx context.Context, in IntentCreateParams) (*stripe.PaymentIntent, error) {
	params := in.toStripeParams()
	params.Context = ctx
	c.log(ctx, "request", "create_payment_intent", map[string]any{
		"amount":      in.AmountMinor,
		"currency":    in.Currency,
		"fee":         in.ApplicationFeeMinor,
		"destination": in.DestinationAccountID,
	})

	intent, err := paymentintent.New(params)
	if err != nil {
		c.log(ctx, "error", "create_payment_intent", map[string]any{"error": err.Error()})
		return nil, c.mapStripeError(err, "create payment intent")
	}

	c.log(ctx, "response", "create_payment_intent", map[string]any{
		"intent_id": intent.ID,
		"status":    string(intent.Status),
	})
	return intent, nil
}

// GetPaymentIntent re-fetches an intent after the buyer's authentication
// round trip.
func (c *Client) GetPaymentIntent(ctx context.Context, intentID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	c.log(ctx, "request", "get_payment_intent", map[string]any{"intent_id": intentID})

	intent, err := paymentintent.Get(intentID, params)
	if err != nil {
		c.log(ctx, "error", "get_payment_intent", map[string]any{"error": err.Error()})
		return nil, c.mapStripeError(err, "get payment intent")
	}

	c.log(ctx, "response", "get_payment_intent", map[string]any{
		"intent_id": intent.ID,
		"status":    string(intent.Status),
	})
	return intent, nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("stripe %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("stripe %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"card", "secret", "token", "cvc", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func (c *Client) mapStripeError(err error, op string) error {
	if err == nil {
		return nil
	}
	var apiErr *stripe.Error
	if errors.As(err, &apiErr) {
		code := domainCodeForStripeError(apiErr)
		return pkgerrors.Wrap(code, err, fmt.Sprintf("stripe %s failed", op))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("stripe %s failed", op))
}

func domainCodeForStripeError(apiErr *stripe.Error) pkgerrors.Code {
	if apiErr.Type == stripe.ErrorTypeCard {
		return pkgerrors.CodeDeclined
	}
	switch apiErr.HTTPStatusCode {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	default:
		if apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	switch env {
	case testEnv:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a test secret key (sk_test/rk_test)", testEnv)
	case liveEnv:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a live secret key (sk_live/rk_live)", liveEnv)
	default:
		return errInvalidStripeEnv
	}
}
