package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
	"time"

	apperr "gigpay/internal/errors"
	midtransgw "gigpay/internal/gateway/midtrans"
	"gigpay/internal/models"
	"gigpay/internal/repositories"
	"gigpay/internal/services/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	stripeSecret = "whsec_test"
	serverKey    = "SB-Mid-server-test"
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

type fakeResolver struct {
	canceled []string
}

func (f *fakeResolver) Resolve(ctx context.Context, contractID string) (*contract.Info, error) {
	return nil, apperr.ErrMissingContract
}

func (f *fakeResolver) Cancel(ctx context.Context, contractID string) error {
	f.canceled = append(f.canceled, contractID)
	return nil
}

type fixture struct {
	svc      Service
	db       *gorm.DB
	resolver *fakeResolver
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	resolver := &fakeResolver{}
	svc := NewService(repositories.NewPaymentRepository(db), resolver, stripeSecret, serverKey)
	return &fixture{svc: svc, db: db, resolver: resolver}
}

func (fx *fixture) seed(t *testing.T, p models.Payment) uint {
	t.Helper()
	require.NoError(t, fx.db.Create(&p).Error)
	return p.ID
}

func (fx *fixture) payment(t *testing.T, id uint) *models.Payment {
	t.Helper()
	var p models.Payment
	require.NoError(t, fx.db.First(&p, id).Error)
	return &p
}

// signStripe produces the Stripe-Signature header for a payload, the way
// the provider signs outgoing events.
func signStripe(payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(stripeSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func stripeEvent(eventType, intentID string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_1","type":%q,"data":{"object":{"id":%q}}}`, eventType, intentID))
}

func midtransEvent(orderID, status string) []byte {
	statusCode := "200"
	gross := "129950.00"
	sig := midtransgw.Signature(orderID, statusCode, gross, serverKey)
	return []byte(fmt.Sprintf(
		`{"order_id":%q,"status_code":%q,"gross_amount":%q,"signature_key":%q,"transaction_id":"tx-1","transaction_status":%q}`,
		orderID, statusCode, gross, sig, status))
}

func TestHandleStripe(t *testing.T) {
	ctx := context.Background()

	t.Run("settles on payment_intent.succeeded", func(t *testing.T) {
		fx := newFixture(t)
		id := fx.seed(t, models.Payment{
			Provider: models.ProviderStripe, Type: models.TypePayment,
			PayerID: 1, PayeeID: 2, Amount: 10000, Currency: "usd",
			Status: models.StatusRequiresPaymentMethod, ProviderTransactionID: "pi_123",
		})

		payload := stripeEvent("payment_intent.succeeded", "pi_123")
		require.NoError(t, fx.svc.HandleStripe(ctx, payload, signStripe(payload)))

		p := fx.payment(t, id)
		assert.Equal(t, models.StatusSucceeded, p.Status)
		assert.NotNil(t, p.SucceededAt)
	})

	t.Run("rejects a forged signature", func(t *testing.T) {
		fx := newFixture(t)
		id := fx.seed(t, models.Payment{
			Provider: models.ProviderStripe, Type: models.TypePayment,
			PayerID: 1, PayeeID: 2, Amount: 10000, Currency: "usd",
			Status: models.StatusRequiresPaymentMethod, ProviderTransactionID: "pi_123",
		})

		payload := stripeEvent("payment_intent.succeeded", "pi_123")
		err := fx.svc.HandleStripe(ctx, payload, "t=1,v1=deadbeef")
		assert.ErrorIs(t, err, apperr.ErrInvalidSignature)
		assert.Equal(t, models.StatusRequiresPaymentMethod, fx.payment(t, id).Status)
	})

	t.Run("unhandled event types are acknowledged", func(t *testing.T) {
		fx := newFixture(t)
		payload := stripeEvent("customer.created", "cus_1")
		assert.NoError(t, fx.svc.HandleStripe(ctx, payload, signStripe(payload)))
	})

	t.Run("event matching no payment is swallowed", func(t *testing.T) {
		fx := newFixture(t)
		payload := stripeEvent("payment_intent.succeeded", "pi_unknown")
		assert.NoError(t, fx.svc.HandleStripe(ctx, payload, signStripe(payload)))
	})

	t.Run("payout.paid settles the withdrawal", func(t *testing.T) {
		fx := newFixture(t)
		id := fx.seed(t, models.Payment{
			Provider: models.ProviderStripe, Type: models.TypeWithdrawal,
			PayerID: 7, PayeeID: 7, Amount: 4000, Currency: "usd",
			Status: models.StatusProcessing, PayoutID: "po_9",
		})

		payload := stripeEvent("payout.paid", "po_9")
		require.NoError(t, fx.svc.HandleStripe(ctx, payload, signStripe(payload)))
		assert.Equal(t, models.StatusSucceeded, fx.payment(t, id).Status)
	})
}

func TestHandleMidtrans(t *testing.T) {
	ctx := context.Background()

	seedPending := func(t *testing.T, fx *fixture) uint {
		contractID := "c-7"
		return fx.seed(t, models.Payment{
			Provider: models.ProviderMidtrans, Type: models.TypePayment,
			PayerID: 1, PayeeID: 2, Amount: 100000, Currency: "idr",
			Status: models.StatusRequiresPaymentMethod, OrderID: "gp-1-abc",
			ContractID: &contractID,
		})
	}

	t.Run("settlement settles the payment", func(t *testing.T) {
		fx := newFixture(t)
		id := seedPending(t, fx)

		require.NoError(t, fx.svc.HandleMidtrans(ctx, midtransEvent("gp-1-abc", "settlement")))

		p := fx.payment(t, id)
		assert.Equal(t, models.StatusSucceeded, p.Status)
		assert.NotNil(t, p.SucceededAt)
	})

	t.Run("redelivery never moves the settlement time", func(t *testing.T) {
		fx := newFixture(t)
		id := seedPending(t, fx)
		payload := midtransEvent("gp-1-abc", "settlement")

		require.NoError(t, fx.svc.HandleMidtrans(ctx, payload))
		first := fx.payment(t, id)
		require.NotNil(t, first.SucceededAt)

		time.Sleep(10 * time.Millisecond)
		require.NoError(t, fx.svc.HandleMidtrans(ctx, payload))
		again := fx.payment(t, id)
		assert.Equal(t, models.StatusSucceeded, again.Status)
		assert.Equal(t, *first.SucceededAt, *again.SucceededAt)
	})

	t.Run("rejects a forged signature", func(t *testing.T) {
		fx := newFixture(t)
		id := seedPending(t, fx)

		sig := midtransgw.Signature("gp-1-abc", "200", "999999.00", serverKey)
		payload := []byte(fmt.Sprintf(
			`{"order_id":"gp-1-abc","status_code":"200","gross_amount":"129950.00","signature_key":%q,"transaction_id":"tx-1","transaction_status":"settlement"}`,
			sig))
		err := fx.svc.HandleMidtrans(ctx, payload)
		assert.ErrorIs(t, err, apperr.ErrInvalidSignature)
		assert.Equal(t, models.StatusRequiresPaymentMethod, fx.payment(t, id).Status)
	})

	t.Run("pending notification is a no-op", func(t *testing.T) {
		fx := newFixture(t)
		id := seedPending(t, fx)

		require.NoError(t, fx.svc.HandleMidtrans(ctx, midtransEvent("gp-1-abc", "pending")))
		assert.Equal(t, models.StatusRequiresPaymentMethod, fx.payment(t, id).Status)
	})

	t.Run("expire cancels the payment", func(t *testing.T) {
		fx := newFixture(t)
		id := seedPending(t, fx)

		require.NoError(t, fx.svc.HandleMidtrans(ctx, midtransEvent("gp-1-abc", "expire")))

		p := fx.payment(t, id)
		assert.Equal(t, models.StatusCanceled, p.Status)
	})

	t.Run("refund voids the contract", func(t *testing.T) {
		fx := newFixture(t)
		id := seedPending(t, fx)
		require.NoError(t, fx.svc.HandleMidtrans(ctx, midtransEvent("gp-1-abc", "settlement")))

		require.NoError(t, fx.svc.HandleMidtrans(ctx, midtransEvent("gp-1-abc", "refund")))

		assert.Equal(t, models.StatusRefunded, fx.payment(t, id).Status)
		assert.Equal(t, []string{"c-7"}, fx.resolver.canceled)
	})
}
