package partneraccounts

import (
	"context"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/trailhop/partner-payments/pkg/db/models"
)

// Repository defines persistence operations for partner accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBySeller(ctx context.Context, sellerID uuid.UUID) (*models.PartnerAccount, error)
	Create(ctx context.Context, account *models.PartnerAccount) (*models.PartnerAccount, error)
	UpdateBySeller(ctx context.Context, sellerID uuid.UUID, updates map[string]any) error
	ClearAccount(ctx context.Context, sellerID uuid.UUID) error
}

// ProcessorClient is the slice of the payment processor surface the account
// lifecycle needs.
type ProcessorClient interface {
	CreateExpressAccount(ctx context.Context, email string) (*stripe.Account, error)
	GetAccount(ctx context.Context, accountID string) (*stripe.Account, error)
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (*stripe.AccountLink, error)
	CreateLoginLink(ctx context.Context, accountID string) (*stripe.LoginLink, error)
}
