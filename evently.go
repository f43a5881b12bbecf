// Package evently provides account registration, login and email based
// password recovery behind a pluggable HTTP adapter.
package evently

import (
	"context"
	"fmt"

	"github.com/lborres/evently/core"
	"github.com/lborres/evently/pkg/cache"
	"github.com/lborres/evently/pkg/crypto"
	"github.com/lborres/evently/pkg/logging"
	"github.com/lborres/evently/services"
)

// interfaces
type (
	AccountStore    = core.AccountStore
	RecoveryStore   = core.RecoveryStore
	Mailer          = core.Mailer
	HTTPAdapter     = core.HTTPAdapter
	AuthHandler     = core.AuthHandler
	PasswordHandler = core.PasswordHandler
	TokenIssuer     = core.TokenIssuer
	Logger          = logging.Logger
)

// structs
type (
	Config         = core.Config
	RecoveryConfig = core.RecoveryConfig
	StoreConfig    = core.StoreConfig
	StoreStats     = core.StoreStats
	Endpoint       = core.Endpoint
)

type (
	Account       = core.Account
	RecoveryEntry = core.RecoveryEntry
	SessionData   = core.SessionData
	AuthResult    = core.AuthResult

	RegisterInput        = core.RegisterInput
	LoginInput           = core.LoginInput
	RecoveryRequestInput = core.RecoveryRequestInput
	RecoveryConfirmInput = core.RecoveryConfirmInput
)

// Constructors & helpers (convenience re-exports)
var (
	NewMemoryStore        = cache.NewMemoryStore
	NewBcrypt             = crypto.NewBcrypt
	NewArgon2             = crypto.NewArgon2
	NewPasswordHandler    = crypto.NewPasswordHandler
	DefaultRecoveryConfig = core.DefaultRecoveryConfig
)

var (
	ErrAccountExists      = core.ErrAccountExists
	ErrAccountNotFound    = core.ErrAccountNotFound
	ErrInvalidCredentials = core.ErrInvalidCredentials
)

var (
	ErrNoOutstandingRequest = core.ErrNoOutstandingRequest
	ErrInvalidPasscode      = core.ErrInvalidPasscode
	ErrTooManyAttempts      = core.ErrTooManyAttempts
	ErrDeliveryFailed       = core.ErrDeliveryFailed
)

var (
	ErrMissingAuthHeader = core.ErrMissingAuthHeader
	ErrInvalidAuthHeader = core.ErrInvalidAuthHeader
	ErrInvalidToken      = core.ErrInvalidToken
	ErrTokenExpired      = core.ErrTokenExpired
)

var (
	ErrNameRequired     = core.ErrNameRequired
	ErrEmailRequired    = core.ErrEmailRequired
	ErrInvalidEmail     = core.ErrInvalidEmail
	ErrPasswordRequired = core.ErrPasswordRequired
	ErrPasswordTooShort = core.ErrPasswordTooShort
	ErrPasswordTooWeak  = core.ErrPasswordTooWeak
)

var (
	ErrMissingSigningKey    = core.ErrMissingSigningKey
	ErrSigningKeyTooShort   = core.ErrSigningKeyTooShort
	ErrAccountStoreRequired = core.ErrAccountStoreRequired
	ErrMailerRequired       = core.ErrMailerRequired
	ErrHTTPAdapterRequired  = core.ErrHTTPAdapterRequired
)

// Evently wires the account and recovery services to an HTTP adapter
type Evently struct {
	auth     *services.AuthService
	recovery *services.RecoveryService

	RecoveryStore core.RecoveryStore
	BasePath      string

	registry *services.EndpointRegistry
}

var _ core.AuthHandler = (*Evently)(nil)

func New(config Config) (*Evently, error) {
	if config.Accounts == nil {
		return nil, ErrAccountStoreRequired
	}
	if config.Mailer == nil {
		return nil, ErrMailerRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	ttl := config.TokenTTL
	if ttl == 0 {
		ttl = crypto.DefaultTokenTTL
	}
	issuer, err := crypto.NewJWTIssuer(config.Secret, ttl)
	if err != nil {
		return nil, err
	}

	// Set Defaults

	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = crypto.NewBcrypt()
	}

	recoveryStore := config.RecoveryStore
	if recoveryStore == nil {
		recoveryStore = cache.NewMemoryStore(core.StoreConfig{MaxSize: cache.DefaultMaxSize})
	}

	recoveryConfig := core.DefaultRecoveryConfig()
	if config.Recovery != nil {
		recoveryConfig = *config.Recovery
	}

	sessionManager := services.NewSessionManager(issuer, config.Accounts)

	e := &Evently{
		auth: services.NewAuthService(
			config.Accounts,
			passwordHasher,
			sessionManager,
			logger.With("component", "auth"),
		),
		recovery: services.NewRecoveryService(
			recoveryStore,
			config.Accounts,
			passwordHasher,
			config.Mailer,
			recoveryConfig,
			logger.With("component", "recovery"),
		),
		RecoveryStore: recoveryStore,
		BasePath:      config.BasePath,
		registry:      services.NewEndpointRegistry(),
	}

	if err := e.registry.Register(config.Endpoints); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfig, err)
	}

	if err := config.HTTP.RegisterRoutes(e, e.registry.Endpoints(), e.BasePath); err != nil {
		return nil, err
	}

	return e, nil
}

// Endpoints lists the routes registered with the HTTP adapter
func (e *Evently) Endpoints() []*core.Endpoint {
	return e.registry.Endpoints()
}

func (e *Evently) Register(ctx context.Context, input core.RegisterInput) (*core.AuthResult, error) {
	return e.auth.Register(ctx, input)
}

func (e *Evently) Login(ctx context.Context, input core.LoginInput) (*core.AuthResult, error) {
	return e.auth.Login(ctx, input)
}

func (e *Evently) GetSession(ctx context.Context, token string) (*core.SessionData, error) {
	return e.auth.GetSession(ctx, token)
}

func (e *Evently) RequestRecovery(ctx context.Context, input core.RecoveryRequestInput) error {
	return e.recovery.RequestRecovery(ctx, input)
}

func (e *Evently) ConfirmRecovery(ctx context.Context, input core.RecoveryConfirmInput) error {
	return e.recovery.ConfirmRecovery(ctx, input)
}
