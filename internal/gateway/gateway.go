// Package gateway defines the capability interface every payment provider
// adapter implements, plus the factory that selects one by provider tag.
// Callers never branch on provider identity themselves; adding a provider
// means adding an adapter, nothing upstream changes.
package gateway

import (
	"context"

	apperr "gigpay/internal/errors"
	"gigpay/internal/models"
)

// AccountProfile is the minimal profile needed to open a provider account.
type AccountProfile struct {
	UserID  uint
	Email   string
	Country string
}

// AccountStatus reports what a connected account can currently do.
type AccountStatus struct {
	ChargesEnabled   bool `json:"charges_enabled"`
	PayoutsEnabled   bool `json:"payouts_enabled"`
	DetailsSubmitted bool `json:"details_submitted"`
}

// IntentRequest describes a payment attempt handed to a provider.
type IntentRequest struct {
	Amount             int64 // total charged to the payer, minor units
	ApplicationFee     int64
	Currency           string
	OrderID            string
	DestinationAccount string
	Description        string
	Metadata           map[string]string
}

// IntentResult is a provider-created payment session. Card providers
// return a client secret, redirect providers a URL; exactly one is set.
type IntentResult struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret,omitempty"`
	RedirectURL  string `json:"redirect_url,omitempty"`
}

// CaptureResult reports a capture of an authorized payment.
type CaptureResult struct {
	TransactionID string
	Status        models.PaymentStatus
}

// RefundResult reports a provider-side refund.
type RefundResult struct {
	RefundID string
	Status   string
}

// Balance is a currency-partitioned provider balance.
type Balance struct {
	Available []models.MoneyAmount `json:"available"`
	Pending   []models.MoneyAmount `json:"pending"`
}

// PayoutRequest describes a payout to a connected account.
type PayoutRequest struct {
	Amount    int64
	Currency  string
	AccountID string
	Reference string
}

// PayoutResult reports an issued payout.
type PayoutResult struct {
	PayoutID string
	Status   string
}

// Gateway is the uniform capability interface over heterogeneous provider
// APIs. Adapters normalize provider-specific failures into the domain
// error taxonomy before returning.
type Gateway interface {
	CreateAccount(ctx context.Context, profile AccountProfile) (string, error)
	GetAccountStatus(ctx context.Context, accountID string) (AccountStatus, error)
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (IntentResult, error)
	CapturePayment(ctx context.Context, intentID string) (CaptureResult, error)
	RefundPayment(ctx context.Context, intentID string, amount int64) (RefundResult, error)
	GetBalance(ctx context.Context, accountID string) (Balance, error)
	CreatePayout(ctx context.Context, req PayoutRequest) (PayoutResult, error)
	GetPaymentStatus(ctx context.Context, intentID string) (models.PaymentStatus, error)
}

// Factory resolves a Gateway by provider tag once at the boundary.
type Factory struct {
	gateways map[models.Provider]Gateway
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{gateways: make(map[models.Provider]Gateway)}
}

// Register binds an adapter to a provider tag.
func (f *Factory) Register(p models.Provider, g Gateway) {
	f.gateways[p] = g
}

// For returns the adapter for a provider tag.
func (f *Factory) For(p models.Provider) (Gateway, error) {
	g, ok := f.gateways[p]
	if !ok {
		return nil, apperr.ErrUnknownProvider.WithMessage("unknown payment provider %q", p)
	}
	return g, nil
}

// Providers lists the registered provider tags.
func (f *Factory) Providers() []models.Provider {
	out := make([]models.Provider, 0, len(f.gateways))
	for p := range f.gateways {
		out = append(out, p)
	}
	return out
}
