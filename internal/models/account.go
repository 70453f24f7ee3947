package models

import "time"

// ProviderAccount records that a user has a connected account at one
// provider and what that account is currently capable of. Onboarding is
// owned by an external collaborator; this model only stores the resulting
// identifier and the capability flags the withdrawal flow checks.
type ProviderAccount struct {
	ID        uint     `gorm:"primarykey" json:"id"`
	UserID    uint     `gorm:"not null;uniqueIndex:idx_account_user_provider" json:"user_id"`
	Provider  Provider `gorm:"size:16;not null;uniqueIndex:idx_account_user_provider" json:"provider"`
	AccountID string   `gorm:"size:128;not null" json:"account_id"`

	ChargesEnabled   bool `gorm:"not null;default:false" json:"charges_enabled"`
	PayoutsEnabled   bool `gorm:"not null;default:false" json:"payouts_enabled"`
	DetailsSubmitted bool `gorm:"not null;default:false" json:"details_submitted"`

	// IsDefault marks the provider a user's withdrawals go to when the
	// request does not name one.
	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Usable reports whether payouts can be issued to this account.
func (a *ProviderAccount) Usable() bool {
	return a.AccountID != "" && a.PayoutsEnabled
}
