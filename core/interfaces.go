package core

import (
	"context"
)

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORTS
// ============================================

// AccountStore defines account-related database operations.
// Implementations return ErrAccountNotFound for missing accounts and
// ErrAccountExists when Create violates email uniqueness.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	Save(ctx context.Context, a *Account) error
}

// RecoveryStore holds at most one outstanding recovery entry per email.
// Put overwrites unconditionally, Get returns ErrEntryNotFound for absent or
// expired entries and Remove is idempotent.
//
// RecordFailedAttempt atomically increments the attempt counter of the entry
// for email, but only while its passcode still equals passcode. When limit is
// positive and the counter reaches it, the entry is removed in the same step.
// It returns the new count, or ErrEntryNotFound when the entry is absent,
// expired or has been replaced by a newer passcode.
type RecoveryStore interface {
	Put(ctx context.Context, email string, entry *RecoveryEntry) error
	Get(ctx context.Context, email string) (*RecoveryEntry, error)
	Remove(ctx context.Context, email string) error
	RecordFailedAttempt(ctx context.Context, email, passcode string, limit int) (int, error)
}

// RecoveryStoreWithStats extends RecoveryStore with statistics tracking
type RecoveryStoreWithStats interface {
	RecoveryStore
	Stats() StoreStats
}

// StoreConfig configures in-memory store behavior
type StoreConfig struct {
	MaxSize int
}

// StoreStats are simple counters for store behavior.
// These are intended for diagnostics and monitoring.
type StoreStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Sets      int64 `json:"sets"`
	Deletes   int64 `json:"deletes"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
}

// ============================================
// DELIVERY PORT
// ============================================

// Mailer delivers a plain-text message to a single recipient
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ============================================
// CRYPTO PORTS
// ============================================

// PasswordHandler hashes and verifies passwords.
// Verify returns false, nil on mismatch and ErrInvalidCredentialFormat for a
// hash it cannot parse.
type PasswordHandler interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// TokenIssuer signs and verifies session tokens
type TokenIssuer interface {
	Issue(accountID string) (*IssuedToken, error)
	Verify(token string) (*TokenClaims, error)
}

// ============================================
// AUTH HANDLER (for HTTP adapters)
// ============================================

// AuthHandler provides account operations for HTTP adapters
type AuthHandler interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	GetSession(ctx context.Context, token string) (*SessionData, error)
	RequestRecovery(ctx context.Context, input RecoveryRequestInput) error
	ConfirmRecovery(ctx context.Context, input RecoveryConfirmInput) error
}

// ============================================
// HTTP PORT
// ============================================

type HTTPAdapter interface {
	RegisterRoutes(handler AuthHandler, endpoints []*Endpoint, basePath string) error
}
