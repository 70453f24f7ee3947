package errors

var (
	ErrInsufficientBalance = &DomainError{
		Kind:    KindInsufficientBalance,
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient available balance",
	}
	ErrNoPayoutAccount = &DomainError{
		Kind:    KindValidation,
		Code:    "NO_PAYOUT_ACCOUNT",
		Message: "no usable payout account for this provider",
	}
	ErrWithdrawalLocked = &DomainError{
		Kind:    KindValidation,
		Code:    "WITHDRAWAL_IN_PROGRESS",
		Message: "another withdrawal is already in progress",
	}
)
