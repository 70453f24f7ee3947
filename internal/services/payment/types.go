package payment

import (
	"gigpay/internal/gateway"
	"gigpay/internal/models"
)

// SessionRequest asks for a payment attempt against a contract.
type SessionRequest struct {
	ContractID    string          `json:"contract_id" validate:"required"`
	Provider      models.Provider `json:"provider,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
}

// SessionResult hands the client what it needs to complete the payment.
type SessionResult struct {
	PaymentID uint                 `json:"payment_id"`
	Provider  models.Provider      `json:"provider"`
	Session   gateway.IntentResult `json:"session"`
}

// ConfirmRequest is the client-side completion callback.
type ConfirmRequest struct {
	PaymentID             uint   `json:"payment_id" validate:"required"`
	ProviderTransactionID string `json:"provider_transaction_id"`
}

// ProviderSettings carries the per-provider constants the service needs:
// which currency a provider settles in. Fee schedules travel separately in
// the fee engines.
type ProviderSettings struct {
	Currency string
}
