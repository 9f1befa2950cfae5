package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindNotFound              ErrorKind = "NOT_FOUND"
	KindInvalidState          ErrorKind = "INVALID_STATE"
	KindValidation            ErrorKind = "VALIDATION_ERROR"
	KindVerification          ErrorKind = "VERIFICATION_ERROR"
	KindGateway               ErrorKind = "GATEWAY_ERROR"
	KindDuplicateNotification ErrorKind = "DUPLICATE_NOTIFICATION"
	KindInternal              ErrorKind = "INTERNAL"
)

// Error is the single error type the payment core returns. Callers switch on
// Kind; Cause keeps the underlying driver or transport error for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound              = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidState          = &Error{Kind: KindInvalidState, Message: "invalid state"}
	ErrValidation            = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrVerification          = &Error{Kind: KindVerification, Message: "verification failed"}
	ErrGateway               = &Error{Kind: KindGateway, Message: "gateway failure"}
	ErrDuplicateNotification = &Error{Kind: KindDuplicateNotification, Message: "notification already applied"}
	ErrInternal              = &Error{Kind: KindInternal, Message: "internal error"}
)

func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidStatef(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Verificationf(format string, args ...any) *Error {
	return &Error{Kind: KindVerification, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the taxonomy kind of err, treating anything foreign as
// Internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
