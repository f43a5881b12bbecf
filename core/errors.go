package core

import "errors"

// Error classes. Every error below unwraps to exactly one of these so callers
// can classify with errors.Is(err, ErrValidation) and friends.
//
// Validation, NotFound, Auth and Conflict are client errors (400), Unauthorized
// is 401, Delivery, Persistence and Hashing are 500. Config only occurs at startup.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrAuth         = errors.New("authentication error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrDelivery     = errors.New("delivery failed")
	ErrPersistence  = errors.New("persistence error")
	ErrHashing      = errors.New("hashing error")
	ErrConfig       = errors.New("configuration error")
)

type classError struct {
	class error
	msg   string
}

func (e *classError) Error() string { return e.msg }

func (e *classError) Unwrap() error { return e.class }

func newError(class error, msg string) error {
	return &classError{class: class, msg: msg}
}

// Account errors
var (
	ErrAccountExists      = newError(ErrConflict, "Email already exists")
	ErrAccountNotFound    = newError(ErrNotFound, "User not found")
	ErrInvalidCredentials = newError(ErrAuth, "Invalid credentials")
)

// Recovery errors
var (
	ErrEntryNotFound        = newError(ErrNotFound, "recovery entry not found")
	ErrNoOutstandingRequest = newError(ErrNotFound, "OTP not found for this email")
	ErrInvalidPasscode      = newError(ErrAuth, "Invalid OTP")
	ErrTooManyAttempts      = newError(ErrAuth, "Too many invalid OTP attempts, request a new one")
	ErrDeliveryFailed       = newError(ErrDelivery, "Failed to send OTP")
)

// Token errors
var (
	ErrMissingAuthHeader     = newError(ErrUnauthorized, "missing authorization header")
	ErrInvalidAuthHeader     = newError(ErrUnauthorized, "invalid authorization format, expected 'Bearer <token>'")
	ErrInvalidToken          = newError(ErrUnauthorized, "invalid token")
	ErrTokenExpired          = newError(ErrUnauthorized, "token expired")
	ErrTokenInvalidSignature = newError(ErrUnauthorized, "invalid token signature")
)

// Validation errors (client input)
var (
	ErrNameRequired           = newError(ErrValidation, "Name is required")
	ErrEmailRequired          = newError(ErrValidation, "Email is required")
	ErrInvalidEmail           = newError(ErrValidation, "Invalid email address")
	ErrPasswordRequired       = newError(ErrValidation, "Password is required")
	ErrPasswordTooShort       = newError(ErrValidation, "Password must be at least 8 characters long")
	ErrPasswordTooLong        = newError(ErrValidation, "Password is too long")
	ErrPasswordTooWeak        = newError(ErrValidation, "Password must contain at least one lowercase letter, one uppercase letter, one digit, and one special character")
	ErrRecoveryFieldsRequired = newError(ErrValidation, "Email, OTP, and new password are required")
)

// Credential errors
var (
	ErrInvalidCredentialFormat = newError(ErrHashing, "invalid credential format")
	ErrPasscodeGeneration      = newError(ErrHashing, "failed to generate passcode")
)

// Config errors (server-side configuration)
var (
	ErrMissingSigningKey    = newError(ErrConfig, "signing key is required")
	ErrSigningKeyTooShort   = newError(ErrConfig, "signing key too short")
	ErrAccountStoreRequired = newError(ErrConfig, "account store is required")
	ErrMailerRequired       = newError(ErrConfig, "mailer is required")
	ErrHTTPAdapterRequired  = newError(ErrConfig, "http adapter is required")
)

// PublicMessage returns the message of the most specific error in err's chain
// that is safe to show a client, or "" if there is none.
func PublicMessage(err error) string {
	var ce *classError
	if errors.As(err, &ce) {
		return ce.msg
	}
	return ""
}
