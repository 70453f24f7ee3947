package midtrans

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gigpay/internal/config"
	apperr "gigpay/internal/errors"
	"gigpay/internal/gateway"
	"gigpay/internal/models"

	"github.com/google/uuid"
)

// Adapter implements gateway.Gateway against the bank-transfer provider's
// REST API.
type Adapter struct {
	http      *httpClient
	serverKey string
	currency  string
}

// NewAdapter creates a Midtrans adapter.
func NewAdapter(cfg config.MidtransConfig) *Adapter {
	return &Adapter{
		http:      newHTTPClient(cfg.BaseURL, cfg.ServerKey),
		serverKey: cfg.ServerKey,
		currency:  cfg.Currency,
	}
}

// ServerKey exposes the webhook signing key to the ingestion layer.
func (a *Adapter) ServerKey() string { return a.serverKey }

// Currency returns the settlement currency this adapter operates in.
func (a *Adapter) Currency() string { return a.currency }

func (a *Adapter) CreateAccount(ctx context.Context, profile gateway.AccountProfile) (string, error) {
	// The provider has no connected-account model; a payout destination is
	// a registered beneficiary addressed by alias.
	alias := fmt.Sprintf("u%d-%s", profile.UserID, uuid.NewString()[:8])
	req := beneficiaryRequest{
		Name:      profile.Email,
		Email:     profile.Email,
		AliasName: alias,
	}
	err := gateway.Retry(ctx, 0, func() error {
		return a.http.do(ctx, http.MethodPost, "/api/v1/beneficiaries", req, nil)
	})
	if err != nil {
		return "", err
	}
	return alias, nil
}

func (a *Adapter) GetAccountStatus(ctx context.Context, accountID string) (gateway.AccountStatus, error) {
	if accountID == "" {
		return gateway.AccountStatus{}, apperr.ErrNoPayoutAccount
	}
	// Beneficiaries are usable as soon as they exist; the provider has no
	// staged onboarding to report on.
	return gateway.AccountStatus{
		ChargesEnabled:   true,
		PayoutsEnabled:   true,
		DetailsSubmitted: true,
	}, nil
}

func (a *Adapter) CreatePaymentIntent(ctx context.Context, req gateway.IntentRequest) (gateway.IntentResult, error) {
	charge := chargeRequest{
		PaymentType:        "bank_transfer",
		TransactionDetails: transactionDetails{OrderID: req.OrderID, GrossAmount: req.Amount},
		BankTransfer:       &bankTransfer{Bank: "bca"},
		CustomMetadata:     req.Metadata,
	}

	var resp chargeResponse
	err := gateway.Retry(ctx, 0, func() error {
		return a.http.do(ctx, http.MethodPost, "/v2/charge", charge, &resp)
	})
	if err != nil {
		return gateway.IntentResult{}, err
	}

	result := gateway.IntentResult{
		IntentID:    resp.TransactionID,
		RedirectURL: resp.RedirectURL,
	}
	if result.RedirectURL == "" && len(resp.VANumbers) > 0 {
		// Bank-transfer charges hand back a virtual account number rather
		// than a redirect; surface it through the same field.
		result.RedirectURL = fmt.Sprintf("va:%s:%s", resp.VANumbers[0].Bank, resp.VANumbers[0].VANumber)
	}
	return result, nil
}

func (a *Adapter) CapturePayment(ctx context.Context, intentID string) (gateway.CaptureResult, error) {
	// Direct-capture provider: settlement happens when the payer completes
	// the transfer, so capture is a status read.
	status, err := a.GetPaymentStatus(ctx, intentID)
	if err != nil {
		return gateway.CaptureResult{}, err
	}
	return gateway.CaptureResult{TransactionID: intentID, Status: status}, nil
}

func (a *Adapter) RefundPayment(ctx context.Context, intentID string, amount int64) (gateway.RefundResult, error) {
	payload := map[string]interface{}{
		"refund_key": uuid.NewString(),
		"reason":     "contract canceled",
	}
	if amount > 0 {
		payload["amount"] = amount
	}

	var resp chargeResponse
	err := gateway.Retry(ctx, 0, func() error {
		return a.http.do(ctx, http.MethodPost, "/v2/"+intentID+"/refund", payload, &resp)
	})
	if err != nil {
		return gateway.RefundResult{}, err
	}
	return gateway.RefundResult{
		RefundID: strconv.FormatInt(resp.RefundChargebackID, 10),
		Status:   resp.TransactionStatus,
	}, nil
}

func (a *Adapter) GetBalance(ctx context.Context, accountID string) (gateway.Balance, error) {
	var resp balanceResponse
	err := gateway.Retry(ctx, 0, func() error {
		return a.http.do(ctx, http.MethodGet, "/api/v1/balance", nil, &resp)
	})
	if err != nil {
		return gateway.Balance{}, err
	}

	minor, err := parseGrossAmount(resp.Balance)
	if err != nil {
		return gateway.Balance{}, fmt.Errorf("unparseable balance %q: %w", resp.Balance, err)
	}
	return gateway.Balance{
		Available: []models.MoneyAmount{models.NewMoneyAmount(minor, a.currency)},
	}, nil
}

func (a *Adapter) CreatePayout(ctx context.Context, req gateway.PayoutRequest) (gateway.PayoutResult, error) {
	payload := payoutRequest{
		Payouts: []payoutItem{{
			BeneficiaryAccount: req.AccountID,
			Amount:             strconv.FormatInt(req.Amount, 10),
			Notes:              req.Reference,
		}},
	}

	var resp payoutResponse
	err := gateway.Retry(ctx, 0, func() error {
		return a.http.do(ctx, http.MethodPost, "/api/v1/payouts", payload, &resp)
	})
	if err != nil {
		return gateway.PayoutResult{}, err
	}
	if len(resp.Payouts) == 0 {
		return gateway.PayoutResult{}, apperr.ErrProviderDeclined.WithMessage("payout response carried no payouts")
	}
	return gateway.PayoutResult{
		PayoutID: resp.Payouts[0].ReferenceNo,
		Status:   resp.Payouts[0].Status,
	}, nil
}

func (a *Adapter) GetPaymentStatus(ctx context.Context, intentID string) (models.PaymentStatus, error) {
	var resp chargeResponse
	err := gateway.Retry(ctx, 0, func() error {
		return a.http.do(ctx, http.MethodGet, "/v2/"+intentID+"/status", nil, &resp)
	})
	if err != nil {
		return "", err
	}
	return MapTransactionStatus(resp.TransactionStatus), nil
}

// MapTransactionStatus translates the provider's transaction_status values
// into lifecycle states. Exported because webhook ingestion applies the
// same mapping to notification payloads.
func MapTransactionStatus(s string) models.PaymentStatus {
	switch s {
	case "capture", "settlement":
		return models.StatusSucceeded
	case "pending":
		return models.StatusRequiresPaymentMethod
	case "deny", "failure":
		return models.StatusFailed
	case "cancel", "expire":
		return models.StatusCanceled
	case "refund", "partial_refund":
		return models.StatusRefunded
	default:
		return models.StatusRequiresPaymentMethod
	}
}

// parseGrossAmount reads the provider's decimal-string amounts ("12995.00"
// or "50000") into minor units.
func parseGrossAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	return strconv.ParseInt(s, 10, 64)
}

var _ gateway.Gateway = (*Adapter)(nil)
