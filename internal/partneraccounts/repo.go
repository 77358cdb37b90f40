package partneraccounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trailhop/partner-payments/pkg/db/models"
	"github.com/trailhop/partner-payments/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a partner accounts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindBySeller(ctx context.Context, sellerID uuid.UUID) (*models.PartnerAccount, error) {
	var account models.PartnerAccount
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) Create(ctx context.Context, account *models.PartnerAccount) (*models.PartnerAccount, error) {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

func (r *repository) UpdateBySeller(ctx context.Context, sellerID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PartnerAccount{}).
		Where("seller_id = ?", sellerID).
		Updates(updates).Error
}

// ClearAccount forgets the processor account id. Only used when the
// processor definitively reports the account gone.
func (r *repository) ClearAccount(ctx context.Context, sellerID uuid.UUID) error {
	return r.UpdateBySeller(ctx, sellerID, map[string]any{
		"stripe_account_id":   nil,
		"status":              enums.AccountNotConnected,
		"onboarding_complete": false,
		"charges_enabled":     false,
		"payouts_enabled":     false,
		"details_submitted":   false,
	})
}
