package payment

import (
	"context"
	"errors"
	"fmt"

	apperr "gigpay/internal/errors"
	"gigpay/internal/gateway"
	"gigpay/internal/models"
	"gigpay/internal/repositories"
	"gigpay/internal/services/contract"
	"gigpay/internal/services/fee"
	"gigpay/internal/utils/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type service struct {
	repo      repositories.PaymentRepository
	accounts  repositories.AccountRepository
	users     repositories.UserRepository
	gateways  *gateway.Factory
	fees      map[models.Provider]*fee.Engine
	settings  map[models.Provider]ProviderSettings
	contracts contract.Resolver
}

// NewService creates the payment lifecycle service.
func NewService(
	repo repositories.PaymentRepository,
	accounts repositories.AccountRepository,
	users repositories.UserRepository,
	gateways *gateway.Factory,
	fees map[models.Provider]*fee.Engine,
	settings map[models.Provider]ProviderSettings,
	contracts contract.Resolver,
) Service {
	if repo == nil {
		panic("payment repository is required")
	}
	if gateways == nil {
		panic("gateway factory is required")
	}
	if contracts == nil {
		panic("contract resolver is required")
	}

	return &service{
		repo:      repo,
		accounts:  accounts,
		users:     users,
		gateways:  gateways,
		fees:      fees,
		settings:  settings,
		contracts: contracts,
	}
}

func (s *service) CreateSession(ctx context.Context, payerID uint, req SessionRequest) (*SessionResult, error) {
	if req.ContractID == "" {
		return nil, apperr.ErrMissingContract
	}

	info, err := s.contracts.Resolve(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}
	if info.PayerID != payerID {
		return nil, apperr.ErrNotParticipant
	}

	provider, err := s.pickProvider(ctx, payerID, req.Provider)
	if err != nil {
		return nil, err
	}

	p, err := s.preparePayment(ctx, provider, info)
	if err != nil {
		return nil, err
	}

	g, err := s.gateways.For(provider)
	if err != nil {
		return nil, err
	}

	// The payee's connected account receives the service amount; the
	// platform keeps fee and tax.
	destination := ""
	if acct, err := s.accounts.GetByUserAndProvider(ctx, info.PayeeID, provider); err == nil {
		destination = acct.AccountID
	}

	orderID := p.OrderID
	if orderID == "" {
		orderID = fmt.Sprintf("gp-%d-%s", p.ID, uuid.NewString()[:8])
	}

	intent, err := g.CreatePaymentIntent(ctx, gateway.IntentRequest{
		Amount:             p.TotalProviderPayment,
		ApplicationFee:     p.ApplicationFeeAmount + p.ProviderTaxAmount,
		Currency:           p.Currency,
		OrderID:            orderID,
		DestinationAccount: destination,
		Description:        info.Description,
		Metadata: map[string]string{
			"contract_id": req.ContractID,
			"payment_id":  fmt.Sprintf("%d", p.ID),
		},
	})
	if err != nil {
		return nil, err
	}

	err = s.repo.Transition(ctx, p.ID,
		[]models.PaymentStatus{models.StatusPendingContract, models.StatusFailed, models.StatusRequiresPaymentMethod},
		models.StatusRequiresPaymentMethod,
		map[string]interface{}{
			"session_id":              intent.IntentID,
			"provider_transaction_id": intent.IntentID,
			"order_id":                orderID,
		})
	if err != nil {
		if errors.Is(err, repositories.ErrNoRowsTransition) {
			return nil, apperr.ErrContractAlreadyPaid
		}
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"payment_id": p.ID,
		"provider":   provider,
		"contract":   req.ContractID,
		"intent":     intent.IntentID,
	}).Info("payment session created")

	return &SessionResult{PaymentID: p.ID, Provider: provider, Session: intent}, nil
}

// preparePayment finds or creates the single Payment record for a
// contract. A failed attempt is reused, not duplicated, so the unique
// contract index always holds.
func (s *service) preparePayment(ctx context.Context, provider models.Provider, info *contract.Info) (*models.Payment, error) {
	existing, err := s.repo.GetByContractID(ctx, info.ContractID)
	if err == nil {
		switch existing.Status {
		case models.StatusPendingContract, models.StatusRequiresPaymentMethod, models.StatusFailed:
			return existing, nil
		default:
			return nil, apperr.ErrContractAlreadyPaid
		}
	}
	if !errors.Is(err, repositories.ErrPaymentNotFound) {
		return nil, err
	}

	engine, ok := s.fees[provider]
	if !ok {
		return nil, apperr.ErrUnknownProvider
	}

	contractID := info.ContractID
	p := &models.Payment{
		Provider:   provider,
		Type:       models.TypePayment,
		PayerID:    info.PayerID,
		PayeeID:    info.PayeeID,
		ContractID: &contractID,
		Amount:     info.Amount,
		Currency:   s.settings[provider].Currency,
		Status:     models.StatusPendingContract,
	}
	if err := engine.Apply(p); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrDuplicateRecord) {
			// Lost a create race; the winner's record is authoritative.
			return nil, apperr.ErrContractAlreadyPaid
		}
		return nil, err
	}
	return p, nil
}

func (s *service) Confirm(ctx context.Context, userID uint, req ConfirmRequest) (*models.Payment, error) {
	p, err := s.repo.GetByID(ctx, req.PaymentID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return nil, apperr.ErrPaymentNotFound
		}
		return nil, err
	}
	if !p.Participant(userID) {
		return nil, apperr.ErrNotParticipant
	}

	// Repeated confirmation of a settled payment is a success no-op.
	if p.Status == models.StatusSucceeded {
		logger.WithFields(logrus.Fields{"payment_id": p.ID}).Info("duplicate confirmation ignored")
		return p, nil
	}
	if p.Status.Terminal() {
		return nil, apperr.ErrInvalidTransition
	}

	g, err := s.gateways.For(p.Provider)
	if err != nil {
		return nil, err
	}

	intentID := p.ProviderTransactionID
	if intentID == "" {
		intentID = req.ProviderTransactionID
	}

	// Ask the provider, not the client, what actually happened.
	status, err := g.GetPaymentStatus(ctx, intentID)
	if err != nil {
		return nil, err
	}

	if status == models.StatusRequiresCapture {
		capture, err := g.CapturePayment(ctx, intentID)
		if err != nil {
			return nil, err
		}
		status = capture.Status
	}

	set := map[string]interface{}{}
	if req.ProviderTransactionID != "" {
		set["provider_transaction_id"] = req.ProviderTransactionID
	}

	switch status {
	case models.StatusSucceeded, models.StatusFailed, models.StatusCanceled, models.StatusProcessing, models.StatusRequiresCapture:
		err = s.repo.Transition(ctx, p.ID, SourcesFor(status), status, set)
		if err != nil && !errors.Is(err, repositories.ErrNoRowsTransition) {
			return nil, err
		}
	default:
		// Still awaiting a payment method; nothing to record.
	}

	return s.repo.GetByID(ctx, p.ID)
}

func (s *service) Refund(ctx context.Context, userID uint, paymentID uint) (*models.Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return nil, apperr.ErrPaymentNotFound
		}
		return nil, err
	}

	// Refunds return the payer's money, so only the payee who was to be
	// paid may trigger one.
	if userID != p.PayeeID {
		return nil, apperr.ErrNotParticipant
	}
	if p.Type != models.TypePayment {
		return nil, apperr.ErrInvalidTransition
	}
	if p.Status == models.StatusRefunded {
		return nil, apperr.ErrDuplicateOperation
	}
	if p.Status != models.StatusSucceeded {
		return nil, apperr.ErrInvalidTransition
	}

	g, err := s.gateways.For(p.Provider)
	if err != nil {
		return nil, err
	}

	// The payer gets back everything they were charged, fee and tax
	// included.
	refund, err := g.RefundPayment(ctx, p.ProviderTransactionID, p.TotalProviderPayment)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transition(ctx, p.ID,
		[]models.PaymentStatus{models.StatusSucceeded},
		models.StatusRefunded,
		map[string]interface{}{"payout_id": refund.RefundID})
	if err != nil {
		if errors.Is(err, repositories.ErrNoRowsTransition) {
			return nil, apperr.ErrDuplicateOperation
		}
		return nil, err
	}

	if p.ContractID != nil {
		if err := s.contracts.Cancel(ctx, *p.ContractID); err != nil {
			// The refund-side transition already landed; the contract owner
			// reconciles on its own schedule.
			logger.Error.WithFields(logrus.Fields{
				"payment_id": p.ID,
				"contract":   *p.ContractID,
			}).Warnf("failed to cancel contract after refund: %v", err)
		}
	}

	logger.WithFields(logrus.Fields{
		"payment_id": p.ID,
		"refund_id":  refund.RefundID,
	}).Info("payment refunded")

	return s.repo.GetByID(ctx, p.ID)
}

func (s *service) Get(ctx context.Context, userID uint, paymentID uint) (*models.Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return nil, apperr.ErrPaymentNotFound
		}
		return nil, err
	}
	if !p.Participant(userID) {
		return nil, apperr.ErrNotParticipant
	}
	return p, nil
}

// pickProvider resolves the provider for a new session: the explicit
// request wins, then the payer's configured default.
func (s *service) pickProvider(ctx context.Context, userID uint, requested models.Provider) (models.Provider, error) {
	if requested != "" {
		if !requested.Valid() {
			return "", apperr.ErrUnknownProvider.WithMessage("unknown payment provider %q", requested)
		}
		return requested, nil
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.DefaultProvider, nil
}
