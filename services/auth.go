package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lborres/evently/core"
	"github.com/lborres/evently/pkg/crypto"
	"github.com/lborres/evently/pkg/logging"
)

// AuthService registers accounts and authenticates them by email and password
type AuthService struct {
	accounts       core.AccountStore
	passwordHasher core.PasswordHandler
	sessionManager *SessionManager
	ids            *crypto.IDGenerator
	logger         logging.Logger
	now            func() time.Time
}

func NewAuthService(accounts core.AccountStore, passwordHasher core.PasswordHandler, sessionManager *SessionManager, logger logging.Logger) *AuthService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &AuthService{
		accounts:       accounts,
		passwordHasher: passwordHasher,
		sessionManager: sessionManager,
		ids:            crypto.NewDefaultIDGenerator(),
		logger:         logger,
		now:            time.Now,
	}
}

// Register creates a new account and returns it with a fresh session token
func (s *AuthService) Register(ctx context.Context, input core.RegisterInput) (*core.AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := core.NormalizeEmail(input.Email)

	// Step 1: Validate input
	if name == "" {
		return nil, core.ErrNameRequired
	}
	if err := core.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := core.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	// Step 2: Check if account already exists
	existing, err := s.accounts.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, core.ErrAccountNotFound) {
		return nil, storeError("check existing account", err)
	}
	if existing != nil {
		return nil, core.ErrAccountExists
	}

	// Step 3: Hash the password
	hash, err := s.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 4: Create the account
	id, err := s.ids.NewID()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	account := &core.Account{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, storeError("create account", err)
	}

	// Step 5: Issue a session token
	token, err := s.sessionManager.Create(account)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID)

	return &core.AuthResult{Account: account, Token: token.Token, ExpiresAt: token.ExpiresAt}, nil
}

// Login authenticates by email and password. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input core.LoginInput) (*core.AuthResult, error) {
	email := core.NormalizeEmail(input.Email)
	if email == "" {
		return nil, core.ErrEmailRequired
	}
	if input.Password == "" {
		return nil, core.ErrPasswordRequired
	}

	// Step 1: Find the account by email
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, storeError("find account", err)
	}

	// Step 2: Verify the password
	valid, err := s.passwordHasher.Verify(input.Password, account.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "stored credential is unreadable", "account_id", account.ID, "error", err)
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, core.ErrInvalidCredentials
	}

	// Step 3: Issue a session token
	token, err := s.sessionManager.Create(account)
	if err != nil {
		return nil, err
	}

	return &core.AuthResult{Account: account, Token: token.Token, ExpiresAt: token.ExpiresAt}, nil
}

// GetSession resolves a bearer token to its account
func (s *AuthService) GetSession(ctx context.Context, token string) (*core.SessionData, error) {
	return s.sessionManager.Verify(ctx, token)
}
