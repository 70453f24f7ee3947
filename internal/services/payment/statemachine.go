package payment

import "gigpay/internal/models"

// transitions is the payment lifecycle graph. A status absent from the map
// is terminal: nothing leaves it. failed is special, it is terminal for
// provider events but the payer may retry it back into
// requires_payment_method, reusing the same record so the one-payment-per-
// contract invariant holds.
var transitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.StatusPendingContract: {
		models.StatusRequiresPaymentMethod,
		models.StatusCanceled,
	},
	models.StatusRequiresPaymentMethod: {
		models.StatusRequiresCapture,
		models.StatusProcessing,
		models.StatusSucceeded,
		models.StatusFailed,
		models.StatusCanceled,
	},
	models.StatusRequiresCapture: {
		models.StatusSucceeded,
		models.StatusFailed,
		models.StatusCanceled,
	},
	models.StatusProcessing: {
		models.StatusSucceeded,
		models.StatusFailed,
	},
	models.StatusFailed: {
		models.StatusRequiresPaymentMethod,
	},
	models.StatusSucceeded: {
		models.StatusRefunded,
	},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to models.PaymentStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// SourcesFor returns every status that may legally transition into to.
// The repository uses this set as the compare-and-set precondition, so a
// transition lands exactly once no matter how often it is delivered.
func SourcesFor(to models.PaymentStatus) []models.PaymentStatus {
	var sources []models.PaymentStatus
	for from, tos := range transitions {
		for _, t := range tos {
			if t == to {
				sources = append(sources, from)
				break
			}
		}
	}
	return sources
}
