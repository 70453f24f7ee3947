package errors

var (
	ErrInvalidAmount = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_AMOUNT",
		Message: "amount must be a positive number of minor units",
	}
	ErrMissingContract = &DomainError{
		Kind:    KindValidation,
		Code:    "MISSING_CONTRACT",
		Message: "a payment requires a contract reference",
	}
	ErrContractAlreadyPaid = &DomainError{
		Kind:    KindDuplicateOperation,
		Code:    "CONTRACT_ALREADY_PAID",
		Message: "a payment already exists for this contract",
	}
	ErrPaymentNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "PAYMENT_NOT_FOUND",
		Message: "payment not found",
	}
	ErrNotParticipant = &DomainError{
		Kind:    KindAuthorization,
		Code:    "NOT_PARTICIPANT",
		Message: "user is not a party to this payment",
	}
	ErrInvalidTransition = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_TRANSITION",
		Message: "payment is not in a state that permits this operation",
	}
	ErrDuplicateOperation = &DomainError{
		Kind:    KindDuplicateOperation,
		Code:    "DUPLICATE_OPERATION",
		Message: "operation already applied",
	}
)
