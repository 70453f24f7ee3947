package reporting

import (
	"time"

	"gigpay/internal/models"
	"gigpay/internal/repositories"
)

// HistoryQuery narrows and pages the unified history. Page numbering is
// 1-based over the merged cross-provider sequence.
type HistoryQuery struct {
	Page     int
	Limit    int
	Provider models.Provider
	Type     models.PaymentType
	Status   models.PaymentStatus
	From     *time.Time
	To       *time.Time
}

// HistoryItem is one payment normalized for the unified surface: minor
// units plus a formatted decimal, the owning provider, and the requesting
// user's role in it.
type HistoryItem struct {
	ID         uint                 `json:"id"`
	Provider   models.Provider      `json:"payment_provider"`
	Type       models.PaymentType   `json:"type"`
	Status     models.PaymentStatus `json:"status"`
	UserRole   models.UserRole      `json:"user_role"`
	Amount     models.MoneyAmount   `json:"amount"`
	Fee        models.MoneyAmount   `json:"fee"`
	Tax        models.MoneyAmount   `json:"tax"`
	Total      models.MoneyAmount   `json:"total"`
	ContractID *string              `json:"contract_id,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

// HistoryPage is one page of the merged sequence. HasMore stands in for a
// total count: the merged total would demand full scans of both
// partitions on every page.
type HistoryPage struct {
	Items   []HistoryItem `json:"items"`
	Page    int           `json:"page"`
	Limit   int           `json:"limit"`
	HasMore bool          `json:"has_more"`
}

// ProviderEarnings is one provider's summary, in that provider's
// currency.
type ProviderEarnings struct {
	Provider  models.Provider    `json:"provider"`
	Earned    models.MoneyAmount `json:"earned"`
	Withdrawn models.MoneyAmount `json:"withdrawn"`
	Available models.MoneyAmount `json:"available"`
}

// EarningsSummary is the consolidated view. Totals are labeled per
// currency: a cross-provider figure spanning currencies is reported as a
// multi-currency list, never one converted number.
type EarningsSummary struct {
	Providers   []ProviderEarnings   `json:"providers"`
	TotalEarned []models.MoneyAmount `json:"total_earned"`
}

// ProviderStats is one provider's per-status aggregation.
type ProviderStats struct {
	Provider models.Provider            `json:"provider"`
	Currency string                     `json:"currency"`
	ByStatus []repositories.StatusStats `json:"by_status"`
}

// Statistics merges both providers' aggregations. Counts are summed
// across providers; monetary totals stay inside each provider's entry.
type Statistics struct {
	Providers      []ProviderStats                `json:"providers"`
	CombinedCounts map[models.PaymentStatus]int64 `json:"combined_counts"`
}
