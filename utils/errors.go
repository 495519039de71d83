package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared across the scheduling and booking services.
const (
	CodeValidation             = "validationError"
	CodeNotFound               = "notFound"
	CodeSlotUnavailable        = "slotUnavailable"
	CodeInvalidStateTransition = "invalidStateTransition"
	CodePaymentVerification    = "paymentVerificationError"
	CodeForbidden              = "forbidden"
	CodeTooEarly               = "tooEarly"
	CodeTooLate                = "tooLate"
	CodeExternalService        = "externalServiceError"
)

// AppError is a typed application error carrying a stable code and an HTTP status.
type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string) *AppError {
	return &AppError{Code: CodeValidation, Message: msg, Status: http.StatusBadRequest}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{Code: CodeNotFound, Message: msg, Status: http.StatusNotFound}
}

func NewSlotUnavailableError(msg string) *AppError {
	return &AppError{Code: CodeSlotUnavailable, Message: msg, Status: http.StatusConflict}
}

func NewInvalidStateTransitionError(msg string) *AppError {
	return &AppError{Code: CodeInvalidStateTransition, Message: msg, Status: http.StatusConflict}
}

func NewPaymentVerificationError(msg string) *AppError {
	return &AppError{Code: CodePaymentVerification, Message: msg, Status: http.StatusBadRequest}
}

func NewForbiddenError(msg string) *AppError {
	return &AppError{Code: CodeForbidden, Message: msg, Status: http.StatusForbidden}
}

func NewTooEarlyError(msg string) *AppError {
	return &AppError{Code: CodeTooEarly, Message: msg, Status: http.StatusUnprocessableEntity}
}

func NewTooLateError(msg string) *AppError {
	return &AppError{Code: CodeTooLate, Message: msg, Status: http.StatusUnprocessableEntity}
}

func NewExternalServiceError(msg string, err error) *AppError {
	return &AppError{Code: CodeExternalService, Message: msg, Status: http.StatusBadGateway, Err: err}
}

// AsAppError unwraps err into an *AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given application error code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
