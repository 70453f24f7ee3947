// Package errors defines the domain error taxonomy shared by all payment
// components. Gateway adapters normalize provider-specific failures into
// these kinds before anything upstream sees them, so the state machine and
// handlers never inspect provider error codes.
package errors

import "fmt"

// Kind classifies a domain error for propagation policy decisions.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindAuthorization       Kind = "authorization"
	KindProviderTransient   Kind = "provider_transient"
	KindProviderDecline     Kind = "provider_decline"
	KindInsufficientBalance Kind = "insufficient_balance"
	KindDuplicateOperation  Kind = "duplicate_operation"
	KindNotFound            Kind = "not_found"
)

// DomainError is a classified application error.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.cause }

// WithCause returns a copy of the error carrying an underlying cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{Kind: e.Kind, Code: e.Code, Message: e.Message, cause: cause}
}

// WithMessage returns a copy of the error with a caller-facing message.
func (e *DomainError) WithMessage(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...), cause: e.cause}
}

// Is lets errors.Is match any instance of the same code, so WithCause and
// WithMessage copies still compare equal to the sentinel values below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// KindOf reports the taxonomy kind of err, or "" for unclassified errors.
func KindOf(err error) Kind {
	for err != nil {
		if de, ok := err.(*DomainError); ok {
			return de.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
