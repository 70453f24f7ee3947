package payment

import (
	"context"

	"gigpay/internal/models"
)

// Service owns the payment lifecycle: session creation, confirmation, and
// refunds. All state mutation goes through here; handlers and webhooks
// never write Payment rows directly.
type Service interface {
	// CreateSession creates (or, after a failure, re-arms) the payment
	// attempt for a contract and opens a provider session for it.
	CreateSession(ctx context.Context, payerID uint, req SessionRequest) (*SessionResult, error)

	// Confirm is the idempotent client-side completion callback. The
	// provider is asked for the authoritative status; the client's word is
	// never trusted on its own.
	Confirm(ctx context.Context, userID uint, req ConfirmRequest) (*models.Payment, error)

	// Refund reverses a succeeded payment and cancels its contract. Only
	// the payee may trigger it.
	Refund(ctx context.Context, userID uint, paymentID uint) (*models.Payment, error)

	// Get returns a payment, restricted to its participants.
	Get(ctx context.Context, userID uint, paymentID uint) (*models.Payment, error)
}
