package stripeconnect

import "github.com/stripe/stripe-go/v84"

// IntentCreateParams carries everything needed to open a destination-charge
// payment intent on behalf of a partner account.
type IntentCreateParams struct {
	AmountMinor          int64
	Currency             string
	CustomerID           string
	PaymentMethodID      string
	DestinationAccountID string
	ApplicationFeeMinor  int64
	ReturnURL            string
	Metadata             map[string]string
}

func (p IntentCreateParams) toStripeParams() *stripe.PaymentIntentParams {
	params := &stripe.PaymentIntentParams{
		Amount:               stripe.Int64(p.AmountMinor),
		Currency:             stripe.String(p.Currency),
		Customer:             stripe.String(p.CustomerID),
		PaymentMethod:        stripe.String(p.PaymentMethodID),
		ConfirmationMethod:   stripe.String(string(stripe.PaymentIntentConfirmationMethodManual)),
		Confirm:              stripe.Bool(true),
		ApplicationFeeAmount: stripe.Int64(p.ApplicationFeeMinor),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(p.DestinationAccountID),
		},
	}
	if p.ReturnURL != "" {
		params.ReturnURL = stripe.String(p.ReturnURL)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}
