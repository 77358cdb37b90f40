package payments

import (
	"github.com/google/uuid"

	"github.com/trailhop/partner-payments/pkg/enums"
)

// SubmitResult is the outcome of a payment submission or confirmation.
// Exactly one of RedirectURL (settled) or ClientSecret (extra authentication
// needed) is populated on success.
type SubmitResult struct {
	OrderID        uuid.UUID         `json:"order_id"`
	Status         enums.OrderStatus `json:"status"`
	RequiresAction bool              `json:"requires_action"`
	ClientSecret   string            `json:"client_secret,omitempty"`
	RedirectURL    string            `json:"redirect_url,omitempty"`
	TransactionID  string            `json:"transaction_id,omitempty"`
}
