package errors

var (
	ErrProviderUnavailable = &DomainError{
		Kind:    KindProviderTransient,
		Code:    "PROVIDER_UNAVAILABLE",
		Message: "payment provider temporarily unavailable",
	}
	ErrProviderDeclined = &DomainError{
		Kind:    KindProviderDecline,
		Code:    "PROVIDER_DECLINED",
		Message: "payment provider declined the operation",
	}
	ErrUnknownProvider = &DomainError{
		Kind:    KindValidation,
		Code:    "UNKNOWN_PROVIDER",
		Message: "unknown payment provider",
	}
	ErrInvalidSignature = &DomainError{
		Kind:    KindAuthorization,
		Code:    "INVALID_SIGNATURE",
		Message: "webhook signature verification failed",
	}
)
