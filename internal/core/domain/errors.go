package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrAuthorizationExpired = errors.New("authorization expired")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrForbidden            = errors.New("access forbidden")
	ErrInvalidTransition    = errors.New("invalid state transition")
	ErrCheckoutInProgress   = errors.New("checkout already in progress")
	ErrAttemptNotFound      = errors.New("checkout attempt not found")
	ErrSessionEnded         = errors.New("session ended during checkout")
	ErrVerificationFailed   = errors.New("payment verification failed")
	ErrAlreadyVerified      = errors.New("payment already submitted for verification")
	ErrProductNotFound      = errors.New("product not found")
	ErrOutOfStock           = errors.New("out of stock")
)

// NetworkError means the request never produced a response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response from the backend. Message carries the
// backend-supplied "message" field when the body had one.
type HTTPError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Body    []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// Is makes a 401 match ErrAuthorizationExpired.
func (e *HTTPError) Is(target error) bool {
	return target == ErrAuthorizationExpired && e.Status == http.StatusUnauthorized
}

// ValidationError is a client-side pre-flight failure, or a backend
// rejection of submitted data. It never reaches the network in the former case.
type ValidationError struct {
	Fields []string
	Msg    string
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return strings.Join(e.Fields, "; ")
}

// NewValidationError builds a ValidationError with a single message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}

// AuthenticationError is returned when the backend rejects login credentials.
type AuthenticationError struct {
	Msg string
	Err error
}

func (e *AuthenticationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "authentication failed"
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// UserMessage returns the text to show for err: the backend message when the
// error chain carries one, the validation message for client-side checks,
// otherwise fallback.
func UserMessage(err error, fallback string) string {
	var he *HTTPError
	if errors.As(err, &he) && he.Message != "" {
		return he.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var ae *AuthenticationError
	if errors.As(err, &ae) && ae.Msg != "" {
		return ae.Msg
	}
	return fallback
}
