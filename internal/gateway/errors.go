package gateway

import (
	"errors"
	"fmt"
)

// AuthenticationRequiredError means no usable token was obtainable; the user must sign in again.
type AuthenticationRequiredError struct {
	Cause error
}

func (e *AuthenticationRequiredError) Error() string {
	if e.Cause != nil {
		return "authentication required: " + e.Cause.Error()
	}
	return "authentication required: no valid token available"
}

func (e *AuthenticationRequiredError) Unwrap() error {
	return e.Cause
}

// ApiError is a well-formed rejection from the backend. Message is safe to show.
type ApiError struct {
	Status  int
	Message string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// ProtocolError means the backend answer was not usable JSON or never arrived.
// It points at a deployment or network problem, not a user mistake.
type ProtocolError struct {
	Status      int
	ContentType string
	Excerpt     string
	Err         error
}

func (e *ProtocolError) Error() string {
	msg := "protocol error"
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d", e.Status)
		if e.ContentType != "" {
			msg += ", content-type " + e.ContentType
		}
		msg += ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsAuthenticationRequired checks if err is AuthenticationRequiredError
func IsAuthenticationRequired(err error) bool {
	var target *AuthenticationRequiredError
	return errors.As(err, &target)
}

// IsApiError checks if err is ApiError
func IsApiError(err error) bool {
	var target *ApiError
	return errors.As(err, &target)
}

// IsProtocolError checks if err is ProtocolError
func IsProtocolError(err error) bool {
	var target *ProtocolError
	return errors.As(err, &target)
}
