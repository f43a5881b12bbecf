package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lborres/evently/core"
	"github.com/lborres/evently/pkg/crypto"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	accounts *FakeAccountStore
	store    *FakeRecoveryStore
	mailer   *FakeMailer
	hasher   *crypto.Bcrypt
	issuer   *crypto.JWTIssuer
	sessions *SessionManager
	auth     *AuthService
	recovery *RecoveryService
}

func newTestEnv(t *testing.T, cfg core.RecoveryConfig) *testEnv {
	t.Helper()

	issuer, err := crypto.NewJWTIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		accounts: NewFakeAccountStore(),
		store:    NewFakeRecoveryStore(),
		mailer:   NewFakeMailer(),
		hasher:   crypto.NewBcrypt(bcrypt.MinCost),
		issuer:   issuer,
	}
	env.sessions = NewSessionManager(env.issuer, env.accounts)
	env.auth = NewAuthService(env.accounts, env.hasher, env.sessions, nil)
	env.recovery = NewRecoveryService(env.store, env.accounts, env.hasher, env.mailer, cfg, nil)
	return env
}

// seedAccount stores an account whose password is password
func (e *testEnv) seedAccount(t *testing.T, email, password string) core.Account {
	t.Helper()
	hash, err := e.hasher.Hash(password)
	require.NoError(t, err)
	a := core.Account{ID: "acc_" + email, Name: "Test", Email: email, PasswordHash: hash}
	e.accounts.Put(a)
	return a
}

func (e *testEnv) passwordMatches(t *testing.T, email, password string) bool {
	t.Helper()
	a, ok := e.accounts.Get(email)
	require.True(t, ok, "account %q not found", email)
	valid, err := e.hasher.Verify(password, a.PasswordHash)
	require.NoError(t, err)
	return valid
}
