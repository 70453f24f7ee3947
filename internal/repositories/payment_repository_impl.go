package repositories

import (
	"context"
	"fmt"
	"strings"

	"gigpay/internal/models"

	"gorm.io/gorm"
)

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a gorm-backed payment repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateRecord
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &p, nil
}

func (r *paymentRepository) GetByContractID(ctx context.Context, contractID string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Where("contract_id = ?", contractID).First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by contract: %w", err)
	}
	return &p, nil
}

func (r *paymentRepository) GetByCorrelation(ctx context.Context, provider models.Provider, correlationID string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).
		Where("provider = ?", provider).
		Where("session_id = ? OR provider_transaction_id = ? OR order_id = ? OR payout_id = ?",
			correlationID, correlationID, correlationID, correlationID).
		First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to correlate payment: %w", err)
	}
	return &p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *models.Payment) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) Transition(ctx context.Context, id uint, from []models.PaymentStatus, to models.PaymentStatus, set map[string]interface{}) error {
	updates := map[string]interface{}{"status": to}
	for k, v := range set {
		updates[k] = v
	}

	// Once-only timestamps: COALESCE keeps the first value if a later
	// transition path revisits the same column.
	switch to {
	case models.StatusSucceeded:
		updates["succeeded_at"] = gorm.Expr("COALESCE(succeeded_at, CURRENT_TIMESTAMP)")
	case models.StatusFailed:
		updates["failed_at"] = gorm.Expr("COALESCE(failed_at, CURRENT_TIMESTAMP)")
	case models.StatusRefunded:
		updates["refunded_at"] = gorm.Expr("COALESCE(refunded_at, CURRENT_TIMESTAMP)")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to transition payment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoRowsTransition
	}
	return nil
}

func (r *paymentRepository) SumReceivedByPayee(ctx context.Context, payeeID uint, provider models.Provider, currency string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COALESCE(SUM(amount_received_by_payee), 0)").
		Where("payee_id = ? AND provider = ? AND currency = ?", payeeID, provider, currency).
		Where("type = ? AND status = ?", models.TypePayment, models.StatusSucceeded).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum received amounts: %w", err)
	}
	return total, nil
}

func (r *paymentRepository) SumWithdrawnByPayer(ctx context.Context, payerID uint, provider models.Provider, currency string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("payer_id = ? AND provider = ? AND currency = ?", payerID, provider, currency).
		Where("type = ? AND status IN ?", models.TypeWithdrawal,
			[]models.PaymentStatus{models.StatusProcessing, models.StatusSucceeded}).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum withdrawals: %w", err)
	}
	return total, nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uint, provider models.Provider, f HistoryFilter) ([]models.Payment, error) {
	q := r.db.WithContext(ctx).
		Where("provider = ?", provider).
		Where("payer_id = ? OR payee_id = ?", userID, userID)

	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var payments []models.Payment
	if err := q.Order("created_at DESC, id DESC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) StatsByUser(ctx context.Context, userID uint, provider models.Provider) ([]StatusStats, error) {
	var stats []StatusStats
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("provider = ?", provider).
		Where("payer_id = ? OR payee_id = ?", userID, userID).
		Group("status").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payment stats: %w", err)
	}
	return stats, nil
}

func (r *paymentRepository) ExecuteInTransaction(fn func(PaymentRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&paymentRepository{db: tx})
	})
}

// isUniqueViolation matches unique-constraint errors from both postgres
// and the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
