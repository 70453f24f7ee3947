package payment

import (
	"testing"

	"gigpay/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from models.PaymentStatus
		to   models.PaymentStatus
		want bool
	}{
		{"pending to requires method", models.StatusPendingContract, models.StatusRequiresPaymentMethod, true},
		{"requires method to capture", models.StatusRequiresPaymentMethod, models.StatusRequiresCapture, true},
		{"requires method direct settle", models.StatusRequiresPaymentMethod, models.StatusSucceeded, true},
		{"capture to succeeded", models.StatusRequiresCapture, models.StatusSucceeded, true},
		{"processing to succeeded", models.StatusProcessing, models.StatusSucceeded, true},
		{"succeeded to refunded", models.StatusSucceeded, models.StatusRefunded, true},
		{"failed retry", models.StatusFailed, models.StatusRequiresPaymentMethod, true},

		{"pending cannot settle directly", models.StatusPendingContract, models.StatusSucceeded, false},
		{"succeeded cannot fail", models.StatusSucceeded, models.StatusFailed, false},
		{"refunded is terminal", models.StatusRefunded, models.StatusSucceeded, false},
		{"canceled is terminal", models.StatusCanceled, models.StatusRequiresPaymentMethod, false},
		{"failed cannot settle without retry", models.StatusFailed, models.StatusSucceeded, false},
		{"no self loop", models.StatusSucceeded, models.StatusSucceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestSourcesFor(t *testing.T) {
	t.Run("succeeded sources", func(t *testing.T) {
		sources := SourcesFor(models.StatusSucceeded)
		assert.ElementsMatch(t, []models.PaymentStatus{
			models.StatusRequiresPaymentMethod,
			models.StatusRequiresCapture,
			models.StatusProcessing,
		}, sources)
	})

	t.Run("refunded only from succeeded", func(t *testing.T) {
		assert.Equal(t, []models.PaymentStatus{models.StatusSucceeded}, SourcesFor(models.StatusRefunded))
	})

	t.Run("nothing leads to pending", func(t *testing.T) {
		assert.Empty(t, SourcesFor(models.StatusPendingContract))
	})
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, models.StatusSucceeded.Terminal())
	assert.True(t, models.StatusCanceled.Terminal())
	assert.True(t, models.StatusRefunded.Terminal())
	// failed stays retryable by the payer.
	assert.False(t, models.StatusFailed.Terminal())
	assert.False(t, models.StatusProcessing.Terminal())
}
