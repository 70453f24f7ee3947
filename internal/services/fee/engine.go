// Package fee computes the monetary breakdown of a payment. The engine is
// a pure function of its inputs so the same service amount always yields
// the same integers regardless of which provider processes it.
package fee

import (
	"math"

	"gigpay/internal/config"
	apperr "gigpay/internal/errors"
	"gigpay/internal/models"
)

// Breakdown is the full fee/tax decomposition of one service amount, all
// in integer minor units.
type Breakdown struct {
	Amount                int64
	ApplicationFeeAmount  int64
	ProviderTaxAmount     int64
	TaskerTaxAmount       int64
	TaxAmount             int64
	TotalProviderPayment  int64
	AmountReceivedByPayee int64
	AmountAfterTax        int64
}

// Engine computes breakdowns from an explicit fee schedule. Construct one
// per provider; the arithmetic never branches on provider identity.
type Engine struct {
	cfg config.FeeConfig
}

// NewEngine creates an engine with the given schedule.
func NewEngine(cfg config.FeeConfig) *Engine {
	return &Engine{cfg: cfg}
}

// round performs half-up rounding of a non-negative product. Rounding is
// applied at each computation step independently, never deferred to the
// end, so results stay bit-exact with historical records.
func round(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}

// Compute decomposes a service amount:
//
//	applicationFee   = round(amount * feePercent) + fixedFee
//	providerTax      = round((amount + applicationFee) * taxPercent)
//	totalCharged     = amount + applicationFee + providerTax
//	receivedByPayee  = amount (the payee never absorbs fee or tax)
func (e *Engine) Compute(serviceAmount int64) (Breakdown, error) {
	if serviceAmount <= 0 {
		return Breakdown{}, apperr.ErrInvalidAmount
	}

	applicationFee := round(float64(serviceAmount)*e.cfg.FeePercent) + e.cfg.FixedFee
	taxable := serviceAmount + applicationFee
	providerTax := round(float64(taxable) * e.cfg.TaxPercent)

	// The payee-side tax is zero under the current policy but stays in the
	// breakdown for schedule changes.
	var taskerTax int64

	return Breakdown{
		Amount:                serviceAmount,
		ApplicationFeeAmount:  applicationFee,
		ProviderTaxAmount:     providerTax,
		TaskerTaxAmount:       taskerTax,
		TaxAmount:             providerTax,
		TotalProviderPayment:  serviceAmount + applicationFee + providerTax,
		AmountReceivedByPayee: serviceAmount,
		AmountAfterTax:        serviceAmount - taskerTax,
	}, nil
}

// Apply stamps a payment with its breakdown exactly once. Calling Apply on
// a record whose breakdown is already set is a no-op, keeping historical
// fee fields immutable.
func (e *Engine) Apply(p *models.Payment) error {
	if p.BreakdownComputed() {
		return nil
	}

	if p.Type == models.TypeWithdrawal {
		// Withdrawals carry no platform fee or tax; the payout equals the
		// requested amount on both sides.
		if p.Amount <= 0 {
			return apperr.ErrInvalidAmount
		}
		p.ApplicationFeeAmount = 0
		p.ProviderTaxAmount = 0
		p.TaskerTaxAmount = 0
		p.TaxAmount = 0
		p.TotalProviderPayment = p.Amount
		p.AmountReceivedByPayee = p.Amount
		p.AmountAfterTax = p.Amount
		return nil
	}

	b, err := e.Compute(p.Amount)
	if err != nil {
		return err
	}
	p.ApplicationFeeAmount = b.ApplicationFeeAmount
	p.ProviderTaxAmount = b.ProviderTaxAmount
	p.TaskerTaxAmount = b.TaskerTaxAmount
	p.TaxAmount = b.TaxAmount
	p.TotalProviderPayment = b.TotalProviderPayment
	p.AmountReceivedByPayee = b.AmountReceivedByPayee
	p.AmountAfterTax = b.AmountAfterTax
	return nil
}
