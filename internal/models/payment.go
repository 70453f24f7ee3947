// Package models defines the persistent data model shared across the
// application. Payment is the single source of local truth for money
// movement; balances are always derived from it, never stored.
package models

import (
	"time"
)

// Provider identifies which external processor owns a record's ledger.
type Provider string

const (
	ProviderStripe   Provider = "stripe"   // global card processor
	ProviderMidtrans Provider = "midtrans" // regional bank-transfer processor
)

// Valid reports whether p names a known provider.
func (p Provider) Valid() bool {
	return p == ProviderStripe || p == ProviderMidtrans
}

// PaymentType distinguishes inbound contract settlements from payouts.
type PaymentType string

const (
	TypePayment    PaymentType = "payment"
	TypeWithdrawal PaymentType = "withdrawal"
)

// PaymentStatus is the lifecycle state of a Payment.
type PaymentStatus string

const (
	StatusPendingContract       PaymentStatus = "pending_contract"
	StatusRequiresPaymentMethod PaymentStatus = "requires_payment_method"
	StatusRequiresCapture       PaymentStatus = "requires_capture"
	StatusProcessing            PaymentStatus = "processing"
	StatusSucceeded             PaymentStatus = "succeeded"
	StatusFailed                PaymentStatus = "failed"
	StatusCanceled              PaymentStatus = "canceled"
	StatusRefunded              PaymentStatus = "refunded"
)

// Terminal reports whether no further transition is permitted from s.
// Failed payments may still be retried into requires_payment_method, which
// the state machine allows explicitly; every other path out is closed.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusCanceled, StatusRefunded:
		return true
	}
	return false
}

// Payment is one money-movement attempt on one provider. Monetary fields
// are integer minor units; a record is always single-currency.
type Payment struct {
	ID       uint        `gorm:"primarykey" json:"id"`
	Provider Provider    `gorm:"size:16;not null;index" json:"provider"`
	Type     PaymentType `gorm:"size:16;not null;index" json:"type"`

	// PayerID funds the movement, PayeeID receives it. For withdrawals the
	// two are the same user.
	PayerID uint `gorm:"not null;index" json:"payer_id"`
	PayeeID uint `gorm:"not null;index" json:"payee_id"`

	// ContractID links a settlement to the contract it pays for. Required
	// for type=payment, absent for withdrawals. The unique index enforces
	// at most one settlement per contract; retries reuse the same record.
	ContractID *string `gorm:"size:64;uniqueIndex" json:"contract_id,omitempty"`

	Amount                int64  `gorm:"not null" json:"amount"`
	ApplicationFeeAmount  int64  `gorm:"not null;default:0" json:"application_fee_amount"`
	ProviderTaxAmount     int64  `gorm:"not null;default:0" json:"provider_tax_amount"`
	TaskerTaxAmount       int64  `gorm:"not null;default:0" json:"tasker_tax_amount"`
	TaxAmount             int64  `gorm:"not null;default:0" json:"tax_amount"`
	TotalProviderPayment  int64  `gorm:"not null;default:0" json:"total_provider_payment"`
	AmountReceivedByPayee int64  `gorm:"not null;default:0" json:"amount_received_by_payee"`
	AmountAfterTax        int64  `gorm:"not null;default:0" json:"amount_after_tax"`
	Currency              string `gorm:"size:3;not null" json:"currency"`

	Status PaymentStatus `gorm:"size:32;not null;default:'pending_contract';index" json:"status"`

	// Provider correlation identifiers. Empty until the first attempt
	// leaves pending_contract.
	SessionID             string `gorm:"size:128;index" json:"session_id,omitempty"`
	ProviderTransactionID string `gorm:"size:128;index" json:"provider_transaction_id,omitempty"`
	MerchantID            string `gorm:"size:64" json:"merchant_id,omitempty"`
	OrderID               string `gorm:"size:64;index" json:"order_id,omitempty"`
	PayoutID              string `gorm:"size:128" json:"payout_id,omitempty"`

	Description string `json:"description,omitempty"`
	Metadata    JSON   `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	SucceededAt *time.Time `json:"succeeded_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
	RefundedAt  *time.Time `json:"refunded_at,omitempty"`
}

// BreakdownComputed reports whether the fee/tax fields have been stamped.
// Stamping happens exactly once; recomputation on a stamped record is a
// no-op so historical breakdowns stay immutable.
func (p *Payment) BreakdownComputed() bool {
	return p.TotalProviderPayment != 0
}

// UserRole describes which side of a payment a user is on.
type UserRole string

const (
	RolePayer UserRole = "payer"
	RolePayee UserRole = "payee"
)

// RoleFor returns the role of userID relative to this payment. For a
// withdrawal (payer == payee) the user is reported as payer.
func (p *Payment) RoleFor(userID uint) UserRole {
	if p.PayerID == userID {
		return RolePayer
	}
	return RolePayee
}

// Participant reports whether userID is a party to this payment.
func (p *Payment) Participant(userID uint) bool {
	return p.PayerID == userID || p.PayeeID == userID
}
