package withdrawal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"gigpay/internal/config"
	apperr "gigpay/internal/errors"
	"gigpay/internal/gateway"
	"gigpay/internal/models"
	"gigpay/internal/repositories"
	"gigpay/internal/repositories/cache"
	"gigpay/internal/services/fee"
	"gigpay/internal/services/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	return db
}

// fakePayoutGateway scripts payout outcomes.
type fakePayoutGateway struct {
	mu        sync.Mutex
	payoutErr error
	payouts   []gateway.PayoutRequest
}

func (f *fakePayoutGateway) CreateAccount(ctx context.Context, profile gateway.AccountProfile) (string, error) {
	return "", nil
}

func (f *fakePayoutGateway) GetAccountStatus(ctx context.Context, accountID string) (gateway.AccountStatus, error) {
	return gateway.AccountStatus{PayoutsEnabled: true}, nil
}

func (f *fakePayoutGateway) CreatePaymentIntent(ctx context.Context, req gateway.IntentRequest) (gateway.IntentResult, error) {
	return gateway.IntentResult{}, nil
}

func (f *fakePayoutGateway) CapturePayment(ctx context.Context, intentID string) (gateway.CaptureResult, error) {
	return gateway.CaptureResult{}, nil
}

func (f *fakePayoutGateway) RefundPayment(ctx context.Context, intentID string, amount int64) (gateway.RefundResult, error) {
	return gateway.RefundResult{}, nil
}

func (f *fakePayoutGateway) GetBalance(ctx context.Context, accountID string) (gateway.Balance, error) {
	return gateway.Balance{}, nil
}

func (f *fakePayoutGateway) CreatePayout(ctx context.Context, req gateway.PayoutRequest) (gateway.PayoutResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.payoutErr != nil {
		return gateway.PayoutResult{}, f.payoutErr
	}
	f.payouts = append(f.payouts, req)
	return gateway.PayoutResult{PayoutID: fmt.Sprintf("po_%d", len(f.payouts)), Status: "paid"}, nil
}

func (f *fakePayoutGateway) GetPaymentStatus(ctx context.Context, intentID string) (models.PaymentStatus, error) {
	return models.StatusSucceeded, nil
}

type fixture struct {
	svc      Service
	balances ledger.Service
	db       *gorm.DB
	gw       *fakePayoutGateway
	factory  *gateway.Factory
}

// newFixture seeds user 7 with a settled 10000-cent payment and a usable
// payout account on the card provider.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	repo := repositories.NewPaymentRepository(db)
	accounts := repositories.NewAccountRepository(db)
	users := repositories.NewUserRepository(db)

	require.NoError(t, db.Create(&models.User{
		ID: 7, Email: "tasker@example.com", DefaultProvider: models.ProviderStripe,
	}).Error)
	require.NoError(t, db.Create(&models.ProviderAccount{
		UserID: 7, Provider: models.ProviderStripe, AccountID: "acct_7", PayoutsEnabled: true,
	}).Error)
	require.NoError(t, db.Create(&models.Payment{
		Provider: models.ProviderStripe, Type: models.TypePayment,
		PayerID: 1, PayeeID: 7, Amount: 10000, AmountReceivedByPayee: 10000,
		Currency: "usd", Status: models.StatusSucceeded,
	}).Error)

	gw := &fakePayoutGateway{}
	factory := gateway.NewFactory()
	factory.Register(models.ProviderStripe, gw)

	balances := ledger.NewService(repo, map[models.Provider]string{models.ProviderStripe: "usd"})
	fees := map[models.Provider]*fee.Engine{
		models.ProviderStripe: fee.NewEngine(config.FeeConfig{}),
	}

	svc := NewService(repo, accounts, users, balances, factory, fees, cache.NewLocalLocker())
	return &fixture{svc: svc, balances: balances, db: db, gw: gw, factory: factory}
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("issues payout and records withdrawal", func(t *testing.T) {
		fx := newFixture(t)

		p, err := fx.svc.Withdraw(ctx, 7, Request{Amount: 4000, Provider: models.ProviderStripe})
		require.NoError(t, err)
		assert.Equal(t, models.StatusSucceeded, p.Status)
		assert.Equal(t, models.TypeWithdrawal, p.Type)
		assert.Equal(t, int64(4000), p.Amount)
		assert.NotEmpty(t, p.PayoutID)
		assert.NotNil(t, p.SucceededAt)

		require.Len(t, fx.gw.payouts, 1)
		assert.Equal(t, "acct_7", fx.gw.payouts[0].AccountID)

		available, err := fx.balances.Available(ctx, 7, models.ProviderStripe)
		require.NoError(t, err)
		assert.Equal(t, int64(6000), available.Amount)
	})

	t.Run("rejects more than the available balance", func(t *testing.T) {
		fx := newFixture(t)

		_, err := fx.svc.Withdraw(ctx, 7, Request{Amount: 10001, Provider: models.ProviderStripe})
		assert.ErrorIs(t, err, apperr.ErrInsufficientBalance)
		assert.Empty(t, fx.gw.payouts)
	})

	t.Run("withdrawing the exact balance drains it", func(t *testing.T) {
		fx := newFixture(t)

		_, err := fx.svc.Withdraw(ctx, 7, Request{Amount: 10000, Provider: models.ProviderStripe})
		require.NoError(t, err)

		available, err := fx.balances.Available(ctx, 7, models.ProviderStripe)
		require.NoError(t, err)
		assert.Zero(t, available.Amount)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		fx := newFixture(t)

		for _, amount := range []int64{0, -100} {
			_, err := fx.svc.Withdraw(ctx, 7, Request{Amount: amount, Provider: models.ProviderStripe})
			assert.ErrorIs(t, err, apperr.ErrInvalidAmount)
		}
	})

	t.Run("requires a usable payout account", func(t *testing.T) {
		fx := newFixture(t)
		require.NoError(t, fx.db.Model(&models.ProviderAccount{}).
			Where("user_id = ?", 7).Update("payouts_enabled", false).Error)

		_, err := fx.svc.Withdraw(ctx, 7, Request{Amount: 1000, Provider: models.ProviderStripe})
		assert.ErrorIs(t, err, apperr.ErrNoPayoutAccount)
	})

	t.Run("rejects a provider without a fee schedule", func(t *testing.T) {
		fx := newFixture(t)

		svc := NewService(
			repositories.NewPaymentRepository(fx.db),
			repositories.NewAccountRepository(fx.db),
			repositories.NewUserRepository(fx.db),
			fx.balances,
			fx.factory,
			map[models.Provider]*fee.Engine{},
			cache.NewLocalLocker(),
		)

		_, err := svc.Withdraw(ctx, 7, Request{Amount: 1000, Provider: models.ProviderStripe})
		assert.ErrorIs(t, err, apperr.ErrUnknownProvider)
		assert.Empty(t, fx.gw.payouts)

		var count int64
		require.NoError(t, fx.db.Model(&models.Payment{}).
			Where("type = ?", models.TypeWithdrawal).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("failed payout releases the reserved funds", func(t *testing.T) {
		fx := newFixture(t)
		fx.gw.payoutErr = apperr.ErrProviderUnavailable

		_, err := fx.svc.Withdraw(ctx, 7, Request{Amount: 4000, Provider: models.ProviderStripe})
		assert.ErrorIs(t, err, apperr.ErrProviderUnavailable)

		// The failed record stays for audit but no longer reserves funds.
		var failed models.Payment
		require.NoError(t, fx.db.Where("type = ? AND status = ?",
			models.TypeWithdrawal, models.StatusFailed).First(&failed).Error)
		assert.Equal(t, int64(4000), failed.Amount)

		available, err := fx.balances.Available(ctx, 7, models.ProviderStripe)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), available.Amount)
	})
}

// Two simultaneous withdrawals of 6000 against a 10000 balance: the lock
// serializes them, the loser re-derives the balance after the winner's
// record landed and is turned away. Money never goes negative.
func TestWithdrawConcurrent(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.svc.Withdraw(ctx, 7, Request{Amount: 6000, Provider: models.ProviderStripe})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, insufficient int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, apperr.ErrInsufficientBalance):
			insufficient++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, insufficient)

	available, err := fx.balances.Available(ctx, 7, models.ProviderStripe)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), available.Amount)
	require.Len(t, fx.gw.payouts, 1)
}
