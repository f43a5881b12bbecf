package core

import "time"

// Account represents a registered user
//
// Email is the account identifier: trimmed, lower-cased and unique.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IssuedToken is a signed session token and its absolute expiry
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenClaims is what a verified token asserts
type TokenClaims struct {
	AccountID string
	ExpiresAt time.Time
}

// RecoveryEntry is an outstanding one-time passcode for a password reset.
// A zero ExpiresAt never expires.
type RecoveryEntry struct {
	Passcode  string    `json:"passcode"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the entry is past its expiry at t.
func (e *RecoveryEntry) Expired(t time.Time) bool {
	return !e.ExpiresAt.IsZero() && !t.Before(e.ExpiresAt)
}

// SessionData combines account and token info
// The model returned to clients
type SessionData struct {
	Account   *Account  `json:"account"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RegisterInput contains the data needed to register a new account
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput contains the credentials for authentication
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult contains the account and its freshly issued token
type AuthResult struct {
	Account   *Account  `json:"account"`
	Token     string    `json:"token"` // signed JWT
	ExpiresAt time.Time `json:"expiresAt"`
}

// RecoveryRequestInput starts a password recovery
type RecoveryRequestInput struct {
	Email string `json:"email"`
}

// RecoveryConfirmInput completes a password recovery
type RecoveryConfirmInput struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}
