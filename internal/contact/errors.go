package contact

import (
	"errors"
	"fmt"
)

var (
	// ErrSubmissionInFlight is returned when Submit is called while a
	// previous submission is still sending.
	ErrSubmissionInFlight = errors.New("contact: submission already in flight")

	// ErrUnknownField is returned by SetField for names other than
	// name, email and message.
	ErrUnknownField = errors.New("contact: unknown field")
)

// ValidationError reports a required field left empty.
type ValidationError struct {
	Field string
	Err   error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("validation error: %s is required", e.Field)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RelayError is a non-OK answer from the relay endpoint.
type RelayError struct {
	StatusCode int
}

// NewRelayError constructs a RelayError.
func NewRelayError(status int) error {
	return &RelayError{StatusCode: status}
}

func (e *RelayError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("relay error: unexpected status %d", e.StatusCode)
}

// TransportError wraps a failure to reach the relay at all.
type TransportError struct {
	Err error
}

// NewTransportError constructs a TransportError.
func NewTransportError(err error) error {
	return &TransportError{Err: err}
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("transport error: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Category names the failure kind for logs. The visitor never sees it.
func Category(err error) string {
	var (
		ve *ValidationError
		re *RelayError
		te *TransportError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &re):
		return "relay"
	case errors.As(err, &te):
		return "transport"
	case errors.Is(err, ErrSubmissionInFlight):
		return "in_flight"
	default:
		return "unknown"
	}
}
