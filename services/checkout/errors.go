package checkout

import (
	"errors"
	"fmt"
)

// Error codes for the checkout flow. Handlers map these onto user-facing
// responses; infra errors never reach the HTTP layer raw.
const (
	CodeMissingSession     = "missingSession"
	CodeVerificationFailed = "verificationFailed"
	CodeNotPaid            = "notPaid"
	CodeMissingSpot        = "missingSpot"
	CodeNoUser             = "noUser"
	CodeBookingFailed      = "bookingFailed"
)

type CheckoutError struct {
	Code    string
	Message string
	Err     error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

func NewCheckoutError(code, msg string, err error) error {
	return &CheckoutError{Code: code, Message: msg, Err: err}
}

// ErrorCode returns the checkout error code carried by err, or "".
func ErrorCode(err error) string {
	var ce *CheckoutError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
