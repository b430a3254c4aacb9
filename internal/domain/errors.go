package domain

import (
	"errors"
	"fmt"
)

// Error types for consistent error handling across the client and devbank.

// User-facing messages for errors that do not carry their own.
const (
	MsgInvalidAmount      = "Please enter a valid amount"
	MsgNoAccountSelected  = "Please select an account"
	MsgTransactionBusy    = "A transaction is already in progress"
	MsgTransactionFailed  = "Transaction failed. Please try again."
	MsgLoadAccountsFailed = "Failed to load accounts"
	MsgLoadDetailFailed   = "Failed to load account details"
)

// ErrInvalidTransition is returned when a view change is not allowed in the
// current session state.
var ErrInvalidTransition = errors.New("invalid view transition")

// ErrNoCredential is returned when no bearer token is stored.
var ErrNoCredential = errors.New("no stored credential")

// ErrValidation indicates local validation failed. No network call was made.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrService indicates the service answered with a non-2xx status. Message is
// taken verbatim from the {message} payload.
type ErrService struct {
	Service string
	Status  int
	Message string
}

func (e *ErrService) Error() string {
	return fmt.Sprintf("service error [%s] status=%d: %s", e.Service, e.Status, e.Message)
}

// ErrTransport indicates no usable response: network failure, unreadable
// body or an open circuit breaker.
type ErrTransport struct {
	Service string
	Err     error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("transport error [%s]: %v", e.Service, e.Err)
}

func (e *ErrTransport) Unwrap() error {
	return e.Err
}

// ErrLoad indicates the account list could not be loaded.
type ErrLoad struct {
	Err error
}

func (e *ErrLoad) Error() string {
	return fmt.Sprintf("load accounts: %v", e.Err)
}

func (e *ErrLoad) Unwrap() error {
	return e.Err
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrInsufficientFunds indicates not enough balance for the operation.
type ErrInsufficientFunds struct {
	Available string
	Required  string
}

func (e *ErrInsufficientFunds) Error() string {
	return "Insufficient funds"
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict indicates a resource already exists (e.g. duplicate username).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrorKind names the taxonomy bucket of err, for metrics and logs.
func ErrorKind(err error) string {
	var validation *ErrValidation
	var service *ErrService
	var transport *ErrTransport
	var load *ErrLoad
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &load):
		return "load"
	case errors.As(err, &service):
		return "service"
	case errors.As(err, &transport):
		return "transport"
	}
	return "transport"
}

// UserMessage maps err to the string shown to the user. Service messages are
// passed through unchanged; transport details are never shown.
func UserMessage(err error) string {
	var validation *ErrValidation
	var service *ErrService
	var load *ErrLoad
	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &load):
		return MsgLoadAccountsFailed
	case errors.As(err, &service) && service.Message != "":
		return service.Message
	}
	return MsgTransactionFailed
}
