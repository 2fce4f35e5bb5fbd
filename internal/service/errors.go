package service

import "net/http"

// Messages that must stay byte-identical across call sites.
const (
	MsgNotAuthorized      = "Not authorized to access this route"
	MsgInvalidCredentials = "Invalid credentials"
)

// AuthError is the caller-visible failure taxonomy: 400 validation,
// 401 authentication, 403 authorization.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func newValidationError(message string) *AuthError {
	return &AuthError{Status: http.StatusBadRequest, Message: message}
}

func newAuthenticationError(message string) *AuthError {
	return &AuthError{Status: http.StatusUnauthorized, Message: message}
}

// Shared values so unknown-email and wrong-password login failures, and all
// guard failures, are indistinguishable to the caller.
var (
	errInvalidCredentials = newAuthenticationError(MsgInvalidCredentials)
	errNotAuthorized      = newAuthenticationError(MsgNotAuthorized)
)
