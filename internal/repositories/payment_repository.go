// Package repositories provides the data access layer. It owns every
// database read and write; services above it never touch gorm directly.
package repositories

import (
	"context"
	"errors"
	"time"

	"gigpay/internal/models"
)

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrAccountNotFound  = errors.New("provider account not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateRecord  = errors.New("record already exists")
	ErrNoRowsTransition = errors.New("no rows matched the transition precondition")
)

// HistoryFilter narrows a per-provider payment listing. Zero values mean
// no constraint on that dimension.
type HistoryFilter struct {
	Type   models.PaymentType
	Status models.PaymentStatus
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// StatusStats aggregates one provider partition for reporting.
type StatusStats struct {
	Status models.PaymentStatus `json:"status"`
	Count  int64                `json:"count"`
	Total  int64                `json:"total"`
}

// PaymentRepository defines payment persistence operations.
type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetByContractID(ctx context.Context, contractID string) (*models.Payment, error)
	// GetByCorrelation resolves a provider event to a payment via any of
	// the provider correlation identifiers.
	GetByCorrelation(ctx context.Context, provider models.Provider, correlationID string) (*models.Payment, error)
	Update(ctx context.Context, p *models.Payment) error

	// Transition applies a compare-and-set status change: the update only
	// lands if the current status is one of from. Returns
	// ErrNoRowsTransition when the precondition no longer holds, which is
	// how duplicate webhook deliveries are detected.
	Transition(ctx context.Context, id uint, from []models.PaymentStatus, to models.PaymentStatus, set map[string]interface{}) error

	// Ledger derivation sums. Both constrain to succeeded records within
	// one (provider, currency) partition.
	SumReceivedByPayee(ctx context.Context, payeeID uint, provider models.Provider, currency string) (int64, error)
	SumWithdrawnByPayer(ctx context.Context, payerID uint, provider models.Provider, currency string) (int64, error)

	// ListByUser returns one provider partition of a user's history,
	// newest first.
	ListByUser(ctx context.Context, userID uint, provider models.Provider, f HistoryFilter) ([]models.Payment, error)
	StatsByUser(ctx context.Context, userID uint, provider models.Provider) ([]StatusStats, error)

	// ExecuteInTransaction runs fn against a repository bound to one
	// database transaction.
	ExecuteInTransaction(fn func(PaymentRepository) error) error
}
