// Package withdrawal issues payouts against derived balances. The
// balance-check-then-write section runs under a per-(user, provider) lock;
// weakening that serialization trades away the system's core no-overdraw
// guarantee, so it is never optional.
package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperr "gigpay/internal/errors"
	"gigpay/internal/gateway"
	"gigpay/internal/models"
	"gigpay/internal/repositories"
	"gigpay/internal/repositories/cache"
	"gigpay/internal/services/fee"
	"gigpay/internal/services/ledger"
	"gigpay/internal/utils/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	lockAcquireTimeout = 10 * time.Second
	lockRetryDelay     = 50 * time.Millisecond
)

// Request is a withdrawal ask. Provider defaults to the user's configured
// default when empty.
type Request struct {
	Amount   int64           `json:"amount" validate:"required,gt=0"`
	Provider models.Provider `json:"provider,omitempty"`
}

// Service issues payouts.
type Service interface {
	Withdraw(ctx context.Context, userID uint, req Request) (*models.Payment, error)
}

type service struct {
	repo     repositories.PaymentRepository
	accounts repositories.AccountRepository
	users    repositories.UserRepository
	balances ledger.Service
	gateways *gateway.Factory
	fees     map[models.Provider]*fee.Engine
	locker   cache.Locker
}

// NewService creates the withdrawal service.
func NewService(
	repo repositories.PaymentRepository,
	accounts repositories.AccountRepository,
	users repositories.UserRepository,
	balances ledger.Service,
	gateways *gateway.Factory,
	fees map[models.Provider]*fee.Engine,
	locker cache.Locker,
) Service {
	if repo == nil {
		panic("payment repository is required")
	}
	if balances == nil {
		panic("ledger service is required")
	}
	if locker == nil {
		panic("locker is required")
	}

	return &service{
		repo:     repo,
		accounts: accounts,
		users:    users,
		balances: balances,
		gateways: gateways,
		fees:     fees,
		locker:   locker,
	}
}

func (s *service) Withdraw(ctx context.Context, userID uint, req Request) (*models.Payment, error) {
	if req.Amount <= 0 {
		return nil, apperr.ErrInvalidAmount
	}

	provider, err := s.pickProvider(ctx, userID, req.Provider)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByUserAndProvider(ctx, userID, provider)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, apperr.ErrNoPayoutAccount
		}
		return nil, err
	}
	if !account.Usable() {
		return nil, apperr.ErrNoPayoutAccount
	}

	// Serialize the check-then-write section per (user, provider).
	// Concurrent requests queue here; the loser re-derives the balance and
	// sees the winner's withdrawal already counted.
	lockKey := fmt.Sprintf("withdrawal:%d:%s", userID, provider)
	token, err := s.acquireLock(ctx, lockKey)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.locker.Release(context.Background(), lockKey, token); err != nil {
			logger.Error.Warnf("failed to release withdrawal lock %s: %v", lockKey, err)
		}
	}()

	available, err := s.balances.Available(ctx, userID, provider)
	if err != nil {
		return nil, err
	}
	if req.Amount > available.Amount {
		return nil, apperr.ErrInsufficientBalance.WithMessage(
			"requested %s %s but only %s %s available",
			models.FormatMinor(req.Amount, available.Currency), available.Currency,
			available.Formatted, available.Currency,
		)
	}

	p := &models.Payment{
		Provider: provider,
		Type:     models.TypeWithdrawal,
		PayerID:  userID,
		PayeeID:  userID,
		Amount:   req.Amount,
		Currency: available.Currency,
		Status:   models.StatusProcessing,
		OrderID:  fmt.Sprintf("wd-%d-%s", userID, uuid.NewString()[:8]),
	}
	engine, ok := s.fees[provider]
	if !ok {
		return nil, apperr.ErrUnknownProvider.WithMessage("no fee schedule for provider %q", provider)
	}
	if err := engine.Apply(p); err != nil {
		return nil, err
	}

	// The processing record lands before the payout call and counts
	// against the derived balance immediately, so the money is spoken for
	// even while the provider call is in flight.
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	g, err := s.gateways.For(provider)
	if err != nil {
		return nil, err
	}

	payout, err := g.CreatePayout(ctx, gateway.PayoutRequest{
		Amount:    req.Amount,
		Currency:  available.Currency,
		AccountID: account.AccountID,
		Reference: p.OrderID,
	})
	if err != nil {
		// Release the reserved funds; a failed withdrawal does not count
		// toward the withdrawn sum.
		if terr := s.repo.Transition(ctx, p.ID,
			[]models.PaymentStatus{models.StatusProcessing},
			models.StatusFailed, nil); terr != nil {
			logger.Error.Errorf("failed to mark withdrawal %d failed: %v", p.ID, terr)
		}
		return nil, err
	}

	err = s.repo.Transition(ctx, p.ID,
		[]models.PaymentStatus{models.StatusProcessing},
		models.StatusSucceeded,
		map[string]interface{}{
			"payout_id":               payout.PayoutID,
			"provider_transaction_id": payout.PayoutID,
		})
	if err != nil && !errors.Is(err, repositories.ErrNoRowsTransition) {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"provider":  provider,
		"amount":    req.Amount,
		"payout_id": payout.PayoutID,
	}).Info("withdrawal issued")

	return s.repo.GetByID(ctx, p.ID)
}

// acquireLock blocks until the per-user lock is free or the timeout runs
// out.
func (s *service) acquireLock(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, lockAcquireTimeout)
	defer cancel()

	for {
		token, err := s.locker.Acquire(ctx, key)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, cache.ErrLockHeld) {
			return "", err
		}
		select {
		case <-ctx.Done():
			return "", apperr.ErrWithdrawalLocked
		case <-time.After(lockRetryDelay):
		}
	}
}

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
