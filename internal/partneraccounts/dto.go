package partneraccounts

import (
	"github.com/google/uuid"

	"github.com/trailhop/partner-payments/pkg/enums"
)

// AccountView is the seller-facing snapshot of a partner account.
type AccountView struct {
	SellerID           uuid.UUID                  `json:"seller_id"`
	Status             enums.PartnerAccountStatus `json:"status"`
	AccountID          string                     `json:"account_id,omitempty"`
	OnboardingComplete bool                       `json:"onboarding_complete"`
	ChargesEnabled     bool                       `json:"charges_enabled"`
	PayoutsEnabled     bool                       `json:"payouts_enabled"`
	DetailsSubmitted   bool                       `json:"details_submitted"`
}

// OnboardingLink is a one-time hosted onboarding URL for a seller.
type OnboardingLink struct {
	URL       string `json:"url"`
	AccountID string `json:"account_id"`
}

// DashboardLink is a one-time login URL into the hosted dashboard.
type DashboardLink struct {
	URL string `json:"url"`
}
