package booking

import (
	"errors"
	"fmt"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeSlotUnavailable    = "SLOT_UNAVAILABLE"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodePaymentOutstanding = "PAYMENT_OUTSTANDING"
	CodeVerificationFailed = "VERIFICATION_FAILED"
	CodeGateway            = "GATEWAY_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

// BookingError is the typed error every BookingService operation returns.
type BookingError struct {
	Code      string
	Message   string
	Retryable bool
	Err       error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Unwrap() error { return e.Err }

// CodeOf returns the BookingError code in err's chain, or CodeInternal.
func CodeOf(err error) string {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Code
	}
	return CodeInternal
}

func validationError(msg string, err error) error {
	return &BookingError{Code: CodeValidation, Message: msg, Err: err}
}

func notFoundError(id string) error {
	return &BookingError{Code: CodeNotFound, Message: fmt.Sprintf("booking %s not found", id)}
}

func slotUnavailableError(msg string, retryable bool) error {
	return &BookingError{Code: CodeSlotUnavailable, Message: msg, Retryable: retryable}
}

func gatewayError(msg string, err error) error {
	return &BookingError{Code: CodeGateway, Message: msg, Retryable: true, Err: err}
}

func internalError(msg string, err error) error {
	return &BookingError{Code: CodeInternal, Message: msg, Err: err}
}
