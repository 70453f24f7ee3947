// Package webhook ingests asynchronous provider events. Webhooks are the
// authoritative completion signal for every payment: client callbacks may
// be abandoned mid-flow, but a signed provider event always lands. Only
// status and the provider transaction id are trusted from a payload;
// monetary fields always come from the Payment record's own breakdown.
package webhook

import (
	"context"
	"encoding/json"
	"errors"

	apperr "gigpay/internal/errors"
	midtransgw "gigpay/internal/gateway/midtrans"
	"gigpay/internal/models"
	"gigpay/internal/repositories"
	"gigpay/internal/services/contract"
	"gigpay/internal/services/payment"
	"gigpay/internal/utils/logger"

	"github.com/sirupsen/logrus"
	stripeapi "github.com/stripe/stripe-go/v72"
	stripewebhook "github.com/stripe/stripe-go/v72/webhook"
)

// Service applies provider events to payment records.
type Service interface {
	// HandleStripe verifies and applies one Stripe event. A signature
	// failure is the only error surfaced; everything else is swallowed so
	// the provider does not retry-storm.
	HandleStripe(ctx context.Context, payload []byte, signature string) error

	// HandleMidtrans verifies and applies one bank-provider notification.
	HandleMidtrans(ctx context.Context, payload []byte) error
}

type service struct {
	repo                repositories.PaymentRepository
	contracts           contract.Resolver
	stripeWebhookSecret string
	midtransServerKey   string
}

// NewService creates the webhook ingestion service.
func NewService(
	repo repositories.PaymentRepository,
	contracts contract.Resolver,
	stripeWebhookSecret string,
	midtransServerKey string,
) Service {
	if repo == nil {
		panic("payment repository is required")
	}
	return &service{
		repo:                repo,
		contracts:           contracts,
		stripeWebhookSecret: stripeWebhookSecret,
		midtransServerKey:   midtransServerKey,
	}
}

func (s *service) HandleStripe(ctx context.Context, payload []byte, signature string) error {
	event, err := stripewebhook.ConstructEvent(payload, signature, s.stripeWebhookSecret)
	if err != nil {
		return apperr.ErrInvalidSignature.WithCause(err)
	}

	var target models.PaymentStatus
	correlationID := objectID(event)

	switch event.Type {
	case "payment_intent.succeeded":
		target = models.StatusSucceeded
	case "payment_intent.payment_failed":
		target = models.StatusFailed
	case "payment_intent.canceled":
		target = models.StatusCanceled
	case "charge.refunded":
		target = models.StatusRefunded
		if pi, ok := event.Data.Object["payment_intent"].(string); ok && pi != "" {
			correlationID = pi
		}
	case "payout.paid":
		target = models.StatusSucceeded
	case "payout.failed":
		target = models.StatusFailed
	default:
		// Parsed but unhandled: acknowledged so the provider stops
		// retrying.
		return nil
	}

	s.apply(ctx, models.ProviderStripe, correlationID, target, string(event.Type))
	return nil
}

// midtransNotification is the provider's webhook payload. Gross amount is
// only used for signature verification, never to update monetary fields.
type midtransNotification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
}

func (s *service) HandleMidtrans(ctx context.Context, payload []byte) error {
	var n midtransNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return apperr.ErrInvalidSignature.WithCause(err)
	}

	if !midtransgw.ValidSignature(n.OrderID, n.StatusCode, n.GrossAmount, s.midtransServerKey, n.SignatureKey) {
		return apperr.ErrInvalidSignature
	}

	target := midtransgw.MapTransactionStatus(n.TransactionStatus)
	if target == models.StatusRequiresPaymentMethod {
		// Still pending payer action; nothing to apply.
		return nil
	}

	s.apply(ctx, models.ProviderMidtrans, n.OrderID, target, n.TransactionStatus)
	return nil
}

// apply correlates an event to its payment and lands the transition with
// compare-and-set semantics. Re-delivery of an applied event misses the
// precondition and becomes a logged no-op, so succeededAt and its
// siblings are never touched twice.
func (s *service) apply(ctx context.Context, provider models.Provider, correlationID string, target models.PaymentStatus, eventType string) {
	fields := logrus.Fields{
		"provider":    provider,
		"correlation": correlationID,
		"event":       eventType,
		"target":      target,
	}

	p, err := s.repo.GetByCorrelation(ctx, provider, correlationID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			logger.WithFields(fields).Warn("webhook event matched no payment")
			return
		}
		logger.Error.WithFields(fields).Errorf("webhook correlation failed: %v", err)
		return
	}

	if p.Status == target {
		logger.WithFields(fields).Info("duplicate webhook delivery ignored")
		return
	}

	err = s.repo.Transition(ctx, p.ID, payment.SourcesFor(target), target, nil)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRowsTransition) {
			logger.WithFields(fields).Info("webhook transition already applied")
			return
		}
		logger.Error.WithFields(fields).Errorf("webhook transition failed: %v", err)
		return
	}

	if target == models.StatusRefunded && p.ContractID != nil && s.contracts != nil {
		if err := s.contracts.Cancel(ctx, *p.ContractID); err != nil {
			logger.Error.WithFields(fields).Warnf("failed to cancel contract after refund: %v", err)
		}
	}

	logger.WithFields(fields).Info("webhook transition applied")
}

// objectID pulls the primary object id out of a Stripe event payload.
func objectID(event stripeapi.Event) string {
	if id, ok := event.Data.Object["id"].(string); ok {
		return id
	}
	return ""
}
