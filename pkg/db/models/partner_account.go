package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/trailhop/partner-payments/pkg/enums"
)

// PartnerAccount links a marketplace seller to its processor account.
// StripeAccountID survives disconnects so reconnecting sellers resume the
// same express account instead of provisioning a fresh one.
type PartnerAccount struct {
	ID                 uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID           uuid.UUID                  `gorm:"column:seller_id;type:uuid;not null;uniqueIndex:ux_partner_accounts_seller"`
	StripeAccountID    *string                    `gorm:"column:stripe_account_id"`
	Status             enums.PartnerAccountStatus `gorm:"column:status;type:partner_account_status;not null;default:'not_connected'"`
	OnboardingComplete bool                       `gorm:"column:onboarding_complete;not null;default:false"`
	ChargesEnabled     bool                       `gorm:"column:charges_enabled;not null;default:false"`
	PayoutsEnabled     bool                       `gorm:"column:payouts_enabled;not null;default:false"`
	DetailsSubmitted   bool                       `gorm:"column:details_submitted;not null;default:false"`
	CreatedAt          time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
