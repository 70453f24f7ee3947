package fee

import (
	"testing"

	"gigpay/internal/config"
	apperr "gigpay/internal/errors"
	"gigpay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Compute(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.FeeConfig
		amount  int64
		want    Breakdown
		wantErr error
	}{
		{
			name:   "reference breakdown",
			cfg:    config.FeeConfig{FeePercent: 0.10, FixedFee: 500, TaxPercent: 0.13},
			amount: 10000,
			want: Breakdown{
				Amount:                10000,
				ApplicationFeeAmount:  1500,
				ProviderTaxAmount:     1495, // round(11500 * 0.13)
				TaxAmount:             1495,
				TotalProviderPayment:  12995,
				AmountReceivedByPayee: 10000,
				AmountAfterTax:        10000,
			},
		},
		{
			name:   "step-wise rounding",
			cfg:    config.FeeConfig{FeePercent: 0.105, FixedFee: 0, TaxPercent: 0.07},
			amount: 333,
			want: Breakdown{
				Amount:                333,
				ApplicationFeeAmount:  35, // round(34.965)
				ProviderTaxAmount:     26, // round(368 * 0.07) = round(25.76)
				TaxAmount:             26,
				TotalProviderPayment:  394,
				AmountReceivedByPayee: 333,
				AmountAfterTax:        333,
			},
		},
		{
			name:   "zero schedule",
			cfg:    config.FeeConfig{},
			amount: 100,
			want: Breakdown{
				Amount:                100,
				TotalProviderPayment:  100,
				AmountReceivedByPayee: 100,
				AmountAfterTax:        100,
			},
		},
		{
			name:    "rejects zero amount",
			cfg:     config.FeeConfig{FeePercent: 0.10},
			amount:  0,
			wantErr: apperr.ErrInvalidAmount,
		},
		{
			name:    "rejects negative amount",
			cfg:     config.FeeConfig{FeePercent: 0.10},
			amount:  -50,
			wantErr: apperr.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEngine(tt.cfg).Compute(tt.amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_ComputeDeterministic(t *testing.T) {
	e := NewEngine(config.FeeConfig{FeePercent: 0.10, FixedFee: 500, TaxPercent: 0.13})

	for _, amount := range []int64{1, 99, 10000, 123457, 99999999} {
		first, err := e.Compute(amount)
		require.NoError(t, err)
		second, err := e.Compute(amount)
		require.NoError(t, err)

		assert.Equal(t, first, second, "amount %d must recompute identically", amount)
		assert.Equal(t, first.Amount+first.ApplicationFeeAmount+first.ProviderTaxAmount,
			first.TotalProviderPayment)
		assert.Equal(t, amount, first.AmountReceivedByPayee)
	}
}

func TestEngine_ApplyStampsOnce(t *testing.T) {
	e := NewEngine(config.FeeConfig{FeePercent: 0.10, FixedFee: 500, TaxPercent: 0.13})

	p := &models.Payment{Type: models.TypePayment, Amount: 10000, Currency: "USD"}
	require.NoError(t, e.Apply(p))
	assert.Equal(t, int64(1500), p.ApplicationFeeAmount)
	assert.Equal(t, int64(12995), p.TotalProviderPayment)

	// A second Apply, even with a different schedule, must not touch the
	// stamped fields.
	altered := NewEngine(config.FeeConfig{FeePercent: 0.50, FixedFee: 9999, TaxPercent: 0.25})
	require.NoError(t, altered.Apply(p))
	assert.Equal(t, int64(1500), p.ApplicationFeeAmount)
	assert.Equal(t, int64(12995), p.TotalProviderPayment)
}

func TestEngine_ApplyWithdrawal(t *testing.T) {
	e := NewEngine(config.FeeConfig{FeePercent: 0.10, FixedFee: 500, TaxPercent: 0.13})

	p := &models.Payment{Type: models.TypeWithdrawal, Amount: 4000, Currency: "USD"}
	require.NoError(t, e.Apply(p))

	assert.Zero(t, p.ApplicationFeeAmount)
	assert.Zero(t, p.TaxAmount)
	assert.Equal(t, int64(4000), p.TotalProviderPayment)
	assert.Equal(t, int64(4000), p.AmountReceivedByPayee)
}
