// Package ledger derives balances from payment history. There is no
// stored balance counter anywhere: every read recomputes from the full
// record set, so a missed update can never cause drift. The scan cost is
// accepted: correctness dominates read latency here.
package ledger

import (
	"context"
	"sync"

	"gigpay/internal/models"
	"gigpay/internal/repositories"
)

// ProviderBalance is one provider's derived available amount.
type ProviderBalance struct {
	Provider  models.Provider    `json:"provider"`
	Available models.MoneyAmount `json:"available"`
}

// Service derives withdrawal-available balances.
type Service interface {
	// Available computes what a user may still withdraw from one provider:
	// everything received through succeeded payments minus everything
	// already taken out through succeeded or in-flight withdrawals.
	Available(ctx context.Context, userID uint, provider models.Provider) (models.MoneyAmount, error)

	// Balances computes each provider's balance independently. The result
	// stays currency-labeled per provider; amounts in different currencies
	// are never collapsed into one number.
	Balances(ctx context.Context, userID uint) ([]ProviderBalance, error)
}

type service struct {
	repo       repositories.PaymentRepository
	currencies map[models.Provider]string
}

// NewService creates the balance derivation service. currencies maps each
// provider to the settlement currency its partition is kept in.
func NewService(repo repositories.PaymentRepository, currencies map[models.Provider]string) Service {
	if repo == nil {
		panic("payment repository is required")
	}
	return &service{repo: repo, currencies: currencies}
}

func (s *service) Available(ctx context.Context, userID uint, provider models.Provider) (models.MoneyAmount, error) {
	currency := s.currencies[provider]

	received, err := s.repo.SumReceivedByPayee(ctx, userID, provider, currency)
	if err != nil {
		return models.MoneyAmount{}, err
	}
	withdrawn, err := s.repo.SumWithdrawnByPayer(ctx, userID, provider, currency)
	if err != nil {
		return models.MoneyAmount{}, err
	}

	return models.NewMoneyAmount(received-withdrawn, currency), nil
}

func (s *service) Balances(ctx context.Context, userID uint) ([]ProviderBalance, error) {
	providers := make([]models.Provider, 0, len(s.currencies))
	for p := range s.currencies {
		providers = append(providers, p)
	}

	results := make([]ProviderBalance, len(providers))
	errs := make([]error, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p models.Provider) {
			defer wg.Done()
			amount, err := s.Available(ctx, userID, p)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = ProviderBalance{Provider: p, Available: amount}
		}(i, p)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// Stable order: stripe first, then midtrans, matching the reporting
	// surface.
	ordered := make([]ProviderBalance, 0, len(results))
	for _, want := range []models.Provider{models.ProviderStripe, models.ProviderMidtrans} {
		for _, r := range results {
			if r.Provider == want {
				ordered = append(ordered, r)
			}
		}
	}
	return ordered, nil
}
