package repositories

import (
	"context"
	"fmt"

	"gigpay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository defines provider-account persistence operations.
type AccountRepository interface {
	GetByUserAndProvider(ctx context.Context, userID uint, provider models.Provider) (*models.ProviderAccount, error)
	GetDefault(ctx context.Context, userID uint) (*models.ProviderAccount, error)
	Upsert(ctx context.Context, account *models.ProviderAccount) error
	UpdateCapabilities(ctx context.Context, id uint, charges, payouts, details bool) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a gorm-backed provider account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetByUserAndProvider(ctx context.Context, userID uint, provider models.Provider) (*models.ProviderAccount, error) {
	var a models.ProviderAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get provider account: %w", err)
	}
	return &a, nil
}

func (r *accountRepository) GetDefault(ctx context.Context, userID uint) (*models.ProviderAccount, error) {
	var a models.ProviderAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get default account: %w", err)
	}
	return &a, nil
}

func (r *accountRepository) Upsert(ctx context.Context, account *models.ProviderAccount) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"account_id", "charges_enabled", "payouts_enabled",
				"details_submitted", "is_default", "updated_at",
			}),
		}).
		Create(account).Error
	if err != nil {
		return fmt.Errorf("failed to upsert provider account: %w", err)
	}
	return nil
}

func (r *accountRepository) UpdateCapabilities(ctx context.Context, id uint, charges, payouts, details bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.ProviderAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"charges_enabled":   charges,
			"payouts_enabled":   payouts,
			"details_submitted": details,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update account capabilities: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
