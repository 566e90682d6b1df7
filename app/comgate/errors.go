package comgate

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest        = errors.New("comgate: invalid transaction request")
	ErrPrepareOnlyRequired   = errors.New("comgate: prepareOnly must be true for transactions created from backend")
	ErrRejected              = errors.New("comgate: transaction rejected")
	ErrUnavailable           = errors.New("comgate: gateway unavailable")
	ErrMalformedNotification = errors.New("comgate: malformed status notification")
)

// ConfigurationError reports a missing gateway setting. It is fatal at startup.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("comgate: %s is not configured", e.Setting)
}

// RejectedError is returned when the gateway answers with a non-zero code.
type RejectedError struct {
	Code           int
	Message        string
	GatewayMessage string
}

func (e *RejectedError) Error() string {
	if e.GatewayMessage != "" {
		return fmt.Sprintf("comgate: transaction rejected with code %d: %s (%s)", e.Code, e.Message, e.GatewayMessage)
	}
	return fmt.Sprintf("comgate: transaction rejected with code %d: %s", e.Code, e.Message)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// UnavailableError wraps transport level failures: network errors, non-2xx
// responses and bodies that cannot be parsed.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("comgate: gateway unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}
