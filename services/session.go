package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lborres/evently/core"
)

// SessionManager issues and verifies stateless session tokens
type SessionManager struct {
	issuer   core.TokenIssuer
	accounts core.AccountStore
}

func NewSessionManager(issuer core.TokenIssuer, accounts core.AccountStore) *SessionManager {
	return &SessionManager{issuer: issuer, accounts: accounts}
}

func (sm *SessionManager) Create(account *core.Account) (*core.IssuedToken, error) {
	if account == nil || account.ID == "" {
		return nil, core.ErrAccountNotFound
	}

	token, err := sm.issuer.Issue(account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// Verify resolves a bearer token to its account. Tokens for accounts that no
// longer exist are reported as invalid.
func (sm *SessionManager) Verify(ctx context.Context, token string) (*core.SessionData, error) {
	if token == "" {
		return nil, core.ErrInvalidToken
	}

	claims, err := sm.issuer.Verify(token)
	if err != nil {
		return nil, err
	}

	account, err := sm.accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return nil, core.ErrInvalidToken
		}
		return nil, storeError("load account", err)
	}

	return &core.SessionData{Account: account, ExpiresAt: claims.ExpiresAt}, nil
}
