// Package stripe adapts the card processor's API to the gateway
// interface. It is the authorize/capture-capable provider: intents are
// created with manual capture and confirmed client-side.
package stripe

import (
	"context"

	"gigpay/internal/config"
	apperr "gigpay/internal/errors"
	"gigpay/internal/gateway"
	"gigpay/internal/models"

	stripeapi "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// Adapter implements gateway.Gateway against the Stripe API.
type Adapter struct {
	api      *client.API
	currency string
}

// NewAdapter creates a Stripe adapter with its own API client; adapters
// are stateless and safe for concurrent use.
func NewAdapter(cfg config.StripeConfig) *Adapter {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &Adapter{api: api, currency: cfg.Currency}
}

func (a *Adapter) CreateAccount(ctx context.Context, profile gateway.AccountProfile) (string, error) {
	var accountID string
	err := gateway.Retry(ctx, 0, func() error {
		params := &stripeapi.AccountParams{
			Type:    stripeapi.String(string(stripeapi.AccountTypeExpress)),
			Email:   stripeapi.String(profile.Email),
			Country: stripeapi.String(profile.Country),
		}
		params.Context = ctx
		acct, err := a.api.Account.New(params)
		if err != nil {
			return normalize(err)
		}
		accountID = acct.ID
		return nil
	})
	return accountID, err
}

func (a *Adapter) GetAccountStatus(ctx context.Context, accountID string) (gateway.AccountStatus, error) {
	var status gateway.AccountStatus
	err := gateway.Retry(ctx, 0, func() error {
		params := &stripeapi.AccountParams{}
		params.Context = ctx
		acct, err := a.api.Account.GetByID(accountID, params)
		if err != nil {
			return normalize(err)
		}
		status = gateway.AccountStatus{
			ChargesEnabled:   acct.ChargesEnabled,
			PayoutsEnabled:   acct.PayoutsEnabled,
			DetailsSubmitted: acct.DetailsSubmitted,
		}
		return nil
	})
	return status, err
}

func (a *Adapter) CreatePaymentIntent(ctx context.Context, req gateway.IntentRequest) (gateway.IntentResult, error) {
	var result gateway.IntentResult
	err := gateway.Retry(ctx, 0, func() error {
		params := &stripeapi.PaymentIntentParams{
			Amount:        stripeapi.Int64(req.Amount),
			Currency:      stripeapi.String(req.Currency),
			CaptureMethod: stripeapi.String(string(stripeapi.PaymentIntentCaptureMethodManual)),
		}
		params.Context = ctx
		if req.Description != "" {
			params.Description = stripeapi.String(req.Description)
		}
		if req.ApplicationFee > 0 {
			params.ApplicationFeeAmount = stripeapi.Int64(req.ApplicationFee)
		}
		if req.DestinationAccount != "" {
			params.TransferData = &stripeapi.PaymentIntentTransferDataParams{
				Destination: stripeapi.String(req.DestinationAccount),
			}
		}
		for k, v := range req.Metadata {
			params.AddMetadata(k, v)
		}
		params.AddMetadata("order_id", req.OrderID)
		// The order id doubles as the idempotency key, so a retried create
		// returns the original intent instead of double-charging.
		params.SetIdempotencyKey(req.OrderID)

		pi, err := a.api.PaymentIntents.New(params)
		if err != nil {
			return normalize(err)
		}
		result = gateway.IntentResult{
			IntentID:     pi.ID,
			ClientSecret: pi.ClientSecret,
		}
		return nil
	})
	return result, err
}

func (a *Adapter) CapturePayment(ctx context.Context, intentID string) (gateway.CaptureResult, error) {
	var result gateway.CaptureResult
	err := gateway.Retry(ctx, 0, func() error {
		params := &stripeapi.PaymentIntentCaptureParams{}
		params.Context = ctx
		pi, err := a.api.PaymentIntents.Capture(intentID, params)
		if err != nil {
			return normalize(err)
		}
		result = gateway.CaptureResult{
			TransactionID: pi.ID,
			Status:        mapIntentStatus(pi.Status),
		}
		return nil
	})
	return result, err
}

func (a *Adapter) RefundPayment(ctx context.Context, intentID string, amount int64) (gateway.RefundResult, error) {
	var result gateway.RefundResult
	err := gateway.Retry(ctx, 0, func() error {
		params := &stripeapi.RefundParams{
			PaymentIntent: stripeapi.String(intentID),
		}
		params.Context = ctx
		if amount > 0 {
			params.Amount = stripeapi.Int64(amount)
		}
		ref, err := a.api.Refunds.New(params)
		if err != nil {
			return normalize(err)
		}
		result = gateway.RefundResult{RefundID: ref.ID, Status: string(ref.Status)}
		return nil
	})
	return result, err
}

func (a *Adapter) GetBalance(ctx context.Context, accountID string) (gateway.Balance, error) {
	var balance gateway.Balance
	err := gateway.Retry(ctx, 0, func() error {
		params := &stripeapi.BalanceParams{}
		params.Context = ctx
		if accountID != "" {
			params.SetStripeAccount(accountID)
		}
		bal, err := a.api.Balance.Get(params)
		if err != nil {
			return normalize(err)
		}
		balance = gateway.Balance{
			Available: mapAmounts(bal.Available),
			Pending:   mapAmounts(bal.Pending),
		}
		return nil
	})
	return balance, err
}

func (a *Adapter) CreatePayout(ctx context.Context, req gateway.PayoutRequest) (gateway.PayoutResult, error) {
	var result gateway.PayoutResult
	err := gateway.Retry(ctx, 0, func() error {
		params := &stripeapi.PayoutParams{
			Amount:   stripeapi.Int64(req.Amount),
			Currency: stripeapi.String(req.Currency),
		}
		params.Context = ctx
		params.SetStripeAccount(req.AccountID)
		params.SetIdempotencyKey(req.Reference)

		po, err := a.api.Payouts.New(params)
		if err != nil {
			return normalize(err)
		}
		result = gateway.PayoutResult{PayoutID: po.ID, Status: string(po.Status)}
		return nil
	})
	return result, err
}

func (a *Adapter) GetPaymentStatus(ctx context.Context, intentID string) (models.PaymentStatus, error) {
	var status models.PaymentStatus
	err := gateway.Retry(ctx, 0, func() error {
		params := &stripeapi.PaymentIntentParams{}
		params.Context = ctx
		pi, err := a.api.PaymentIntents.Get(intentID, params)
		if err != nil {
			return normalize(err)
		}
		status = mapIntentStatus(pi.Status)
		return nil
	})
	return status, err
}

// mapIntentStatus translates a Stripe intent status into the payment
// lifecycle state it corresponds to.
func mapIntentStatus(s stripeapi.PaymentIntentStatus) models.PaymentStatus {
	switch s {
	case stripeapi.PaymentIntentStatusSucceeded:
		return models.StatusSucceeded
	case stripeapi.PaymentIntentStatusRequiresCapture:
		return models.StatusRequiresCapture
	case stripeapi.PaymentIntentStatusProcessing:
		return models.StatusProcessing
	case stripeapi.PaymentIntentStatusCanceled:
		return models.StatusCanceled
	default:
		return models.StatusRequiresPaymentMethod
	}
}

func mapAmounts(amounts []*stripeapi.Amount) []models.MoneyAmount {
	out := make([]models.MoneyAmount, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, models.NewMoneyAmount(a.Value, string(a.Currency)))
	}
	return out
}

// normalize maps a Stripe error into the domain taxonomy.
func normalize(err error) error {
	var se *stripeapi.Error
	if !stripeAs(err, &se) {
		return apperr.ErrProviderUnavailable.WithCause(err)
	}
	switch se.Type {
	case stripeapi.ErrorTypeCard:
		return apperr.ErrProviderDeclined.WithCause(err)
	case stripeapi.ErrorTypeAPIConnection, stripeapi.ErrorTypeAPI:
		return apperr.ErrProviderUnavailable.WithCause(err)
	default:
		if se.HTTPStatusCode >= 500 {
			return apperr.ErrProviderUnavailable.WithCause(err)
		}
		return apperr.ErrProviderDeclined.WithCause(err)
	}
}

func stripeAs(err error, target **stripeapi.Error) bool {
	for err != nil {
		if se, ok := err.(*stripeapi.Error); ok {
			*target = se
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

var _ gateway.Gateway = (*Adapter)(nil)

// Currency returns the settlement currency this adapter operates in.
func (a *Adapter) Currency() string {
	return a.currency
}

func init() {
	// Quiet the SDK's default verbose logger.
	stripeapi.DefaultLeveledLogger = &stripeapi.LeveledLogger{Level: stripeapi.LevelError}
}
