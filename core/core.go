package core

import (
	"time"

	"github.com/lborres/evently/pkg/logging"
)

type Config struct {
	// Secret signs session tokens
	Secret string

	Accounts AccountStore
	Mailer   Mailer

	HTTP HTTPAdapter

	// Optional config
	RecoveryStore  RecoveryStore
	PasswordHasher PasswordHandler
	TokenTTL       time.Duration
	Recovery       *RecoveryConfig
	Logger         logging.Logger
	BasePath       string

	// Endpoints are mounted next to the account routes. The HTTP adapter
	// needs a handler for each OperationID.
	Endpoints []Endpoint
}

// RecoveryConfig configures the password recovery protocol
type RecoveryConfig struct {
	// TTL bounds how long a passcode stays valid. Zero disables expiry.
	TTL time.Duration
	// MaxAttempts removes the entry after that many wrong passcodes.
	// Zero allows unlimited attempts.
	MaxAttempts int
	Subject     string
}

func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		TTL:         15 * time.Minute,
		MaxAttempts: 0,
		Subject:     "Password Recovery OTP",
	}
}
