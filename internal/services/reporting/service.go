// Package reporting merges both provider partitions into one read
// surface: unified history, earnings summaries, and per-status
// statistics. Writes never cross providers; only reads are combined
// here, and monetary figures stay labeled with their currency.
package reporting

import (
	"context"
	"sort"
	"sync"

	"gigpay/internal/models"
	"gigpay/internal/repositories"
	"gigpay/internal/services/ledger"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// providerOrder fixes the tie-break and presentation order everywhere the
// two partitions are combined.
var providerOrder = []models.Provider{models.ProviderStripe, models.ProviderMidtrans}

type Service interface {
	// History returns one page of the user's payments merged across
	// providers, newest first.
	History(ctx context.Context, userID uint, q HistoryQuery) (*HistoryPage, error)

	// Earnings summarizes what the user earned, withdrew, and can still
	// withdraw, per provider and consolidated per currency.
	Earnings(ctx context.Context, userID uint) (*EarningsSummary, error)

	// Stats aggregates the user's payments by status for each provider.
	Stats(ctx context.Context, userID uint) (*Statistics, error)
}

type service struct {
	repo       repositories.PaymentRepository
	balances   ledger.Service
	currencies map[models.Provider]string
}

func NewService(repo repositories.PaymentRepository, balances ledger.Service, currencies map[models.Provider]string) Service {
	if repo == nil || balances == nil {
		panic("payment repository and ledger service are required")
	}
	return &service{repo: repo, balances: balances, currencies: currencies}
}

func (s *service) History(ctx context.Context, userID uint, q HistoryQuery) (*HistoryPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	offset := (q.Page - 1) * q.Limit

	providers := providerOrder
	if q.Provider != "" {
		providers = []models.Provider{q.Provider}
	}

	// Each partition is paged independently, so page N of the merged
	// sequence can draw anywhere from the first offset+limit rows of
	// either side. Over-fetch that much from each, merge, then slice.
	// One extra row decides HasMore without a count query.
	filter := repositories.HistoryFilter{
		Type:   q.Type,
		Status: q.Status,
		From:   q.From,
		To:     q.To,
		Limit:  offset + q.Limit + 1,
		Offset: 0,
	}

	partitions := make([][]models.Payment, len(providers))
	errs := make([]error, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p models.Provider) {
			defer wg.Done()
			partitions[i], errs[i] = s.repo.ListByUser(ctx, userID, p, filter)
		}(i, p)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	merged := mergeDesc(partitions)

	hasMore := len(merged) > offset+q.Limit
	if offset >= len(merged) {
		merged = nil
	} else {
		end := offset + q.Limit
		if end > len(merged) {
			end = len(merged)
		}
		merged = merged[offset:end]
	}

	items := make([]HistoryItem, 0, len(merged))
	for i := range merged {
		items = append(items, toItem(&merged[i], userID))
	}

	return &HistoryPage{Items: items, Page: q.Page, Limit: q.Limit, HasMore: hasMore}, nil
}

// mergeDesc merges per-provider slices, each already ordered newest
// first, into one newest-first sequence. Ties on timestamp keep the
// partition order, so a page boundary splits deterministically.
func mergeDesc(partitions [][]models.Payment) []models.Payment {
	total := 0
	for _, p := range partitions {
		total += len(p)
	}
	merged := make([]models.Payment, 0, total)
	heads := make([]int, len(partitions))

	for len(merged) < total {
		best := -1
		for i, p := range partitions {
			if heads[i] >= len(p) {
				continue
			}
			if best == -1 || p[heads[i]].CreatedAt.After(partitions[best][heads[best]].CreatedAt) {
				best = i
			}
		}
		merged = append(merged, partitions[best][heads[best]])
		heads[best]++
	}
	return merged
}

func toItem(p *models.Payment, userID uint) HistoryItem {
	return HistoryItem{
		ID:         p.ID,
		Provider:   p.Provider,
		Type:       p.Type,
		Status:     p.Status,
		UserRole:   p.RoleFor(userID),
		Amount:     models.NewMoneyAmount(p.Amount, p.Currency),
		Fee:        models.NewMoneyAmount(p.ApplicationFeeAmount, p.Currency),
		Tax:        models.NewMoneyAmount(p.ProviderTaxAmount, p.Currency),
		Total:      models.NewMoneyAmount(p.TotalProviderPayment, p.Currency),
		ContractID: p.ContractID,
		CreatedAt:  p.CreatedAt,
	}
}

func (s *service) Earnings(ctx context.Context, userID uint) (*EarningsSummary, error) {
	summary := &EarningsSummary{}
	earnedByCurrency := map[string]int64{}

	for _, p := range providerOrder {
		currency := s.currencies[p]

		earned, err := s.repo.SumReceivedByPayee(ctx, userID, p, currency)
		if err != nil {
			return nil, err
		}
		withdrawn, err := s.repo.SumWithdrawnByPayer(ctx, userID, p, currency)
		if err != nil {
			return nil, err
		}

		summary.Providers = append(summary.Providers, ProviderEarnings{
			Provider:  p,
			Earned:    models.NewMoneyAmount(earned, currency),
			Withdrawn: models.NewMoneyAmount(withdrawn, currency),
			Available: models.NewMoneyAmount(earned-withdrawn, currency),
		})
		earnedByCurrency[currency] += earned
	}

	currencies := make([]string, 0, len(earnedByCurrency))
	for c := range earnedByCurrency {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	for _, c := range currencies {
		summary.TotalEarned = append(summary.TotalEarned, models.NewMoneyAmount(earnedByCurrency[c], c))
	}

	return summary, nil
}

func (s *service) Stats(ctx context.Context, userID uint) (*Statistics, error) {
	stats := &Statistics{CombinedCounts: map[models.PaymentStatus]int64{}}

	for _, p := range providerOrder {
		byStatus, err := s.repo.StatsByUser(ctx, userID, p)
		if err != nil {
			return nil, err
		}
		stats.Providers = append(stats.Providers, ProviderStats{
			Provider: p,
			Currency: s.currencies[p],
			ByStatus: byStatus,
		})
		for _, row := range byStatus {
			stats.CombinedCounts[row.Status] += row.Count
		}
	}

	return stats, nil
}
