package evently

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lborres/evently/core"
	"github.com/lborres/evently/services"
)

const testSecret = "secretshouldbeatleast32charslong"

type recordingHTTP struct {
	handler   core.AuthHandler
	endpoints []*core.Endpoint
	basePath  string
	err       error
}

func (r *recordingHTTP) RegisterRoutes(handler core.AuthHandler, endpoints []*core.Endpoint, basePath string) error {
	r.handler = handler
	r.endpoints = endpoints
	r.basePath = basePath
	return r.err
}

func validConfig() (Config, *services.FakeMailer, *recordingHTTP) {
	mailer := services.NewFakeMailer()
	recorder := &recordingHTTP{}
	return Config{
		Secret:         testSecret,
		Accounts:       services.NewFakeAccountStore(),
		Mailer:         mailer,
		HTTP:           recorder,
		PasswordHasher: NewBcrypt(bcrypt.MinCost),
	}, mailer, recorder
}

func TestNew_RequiredConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "missing secret", mutate: func(c *Config) { c.Secret = "" }, wantErr: ErrMissingSigningKey},
		{name: "short secret", mutate: func(c *Config) { c.Secret = "short" }, wantErr: ErrSigningKeyTooShort},
		{name: "missing account store", mutate: func(c *Config) { c.Accounts = nil }, wantErr: ErrAccountStoreRequired},
		{name: "missing mailer", mutate: func(c *Config) { c.Mailer = nil }, wantErr: ErrMailerRequired},
		{name: "missing http adapter", mutate: func(c *Config) { c.HTTP = nil }, wantErr: ErrHTTPAdapterRequired},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			cfg, _, _ := validConfig()
			test.mutate(&cfg)

			// Act
			_, err := New(cfg)

			// Assert
			assert.ErrorIs(t, err, test.wantErr)
			assert.ErrorIs(t, err, core.ErrConfig, "New() error should be a config error")
		})
	}
}

func TestNew_RegistersRoutes(t *testing.T) {
	// Arrange
	cfg, _, recorder := validConfig()
	cfg.BasePath = "/api"

	// Act
	e, err := New(cfg)

	// Assert
	require.NoError(t, err)
	assert.Same(t, e, recorder.handler, "RegisterRoutes should receive the Evently instance")
	assert.Equal(t, "/api", recorder.basePath)
	assert.Len(t, recorder.endpoints, len(services.BaseEndpoints()))
	assert.Equal(t, recorder.endpoints, e.Endpoints(), "Endpoints() should list the registered routes")
}

// Requirement: extra endpoints from Config are handed to the HTTP adapter
// alongside the account routes, and a route conflict fails construction.
func TestNew_ExtraEndpoints(t *testing.T) {
	health := core.Endpoint{
		Path:     "/health",
		Method:   http.MethodGet,
		Metadata: core.EndpointMetadata{OperationID: "health"},
	}

	tests := []struct {
		name      string
		endpoints []core.Endpoint
		wantErr   bool
		wantPaths []string
	}{
		{
			name:      "no extra endpoints",
			wantPaths: []string{"/login", "/recover-password", "/register", "/session", "/update-password"},
		},
		{
			name:      "extra endpoint is registered",
			endpoints: []core.Endpoint{health},
			wantPaths: []string{"/health", "/login", "/recover-password", "/register", "/session", "/update-password"},
		},
		{
			name:      "conflict with an account route",
			endpoints: []core.Endpoint{{Path: "/login", Method: http.MethodPost}},
			wantErr:   true,
		},
		{
			name:      "duplicate extra endpoints",
			endpoints: []core.Endpoint{health, health},
			wantErr:   true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			cfg, _, recorder := validConfig()
			cfg.Endpoints = test.endpoints

			// Act
			_, err := New(cfg)

			// Assert
			if test.wantErr {
				assert.ErrorIs(t, err, core.ErrConfig)
				assert.Nil(t, recorder.handler, "routes must not be mounted after a conflict")
				return
			}
			require.NoError(t, err)
			var paths []string
			for _, ep := range recorder.endpoints {
				paths = append(paths, ep.Path)
			}
			assert.Equal(t, test.wantPaths, paths)
		})
	}
}

func TestNew_PropagatesRouteError(t *testing.T) {
	cfg, _, recorder := validConfig()
	recorder.err = errors.New("boom")

	_, err := New(cfg)

	assert.EqualError(t, err, "boom")
}

func TestNew_DefaultRecoveryStore(t *testing.T) {
	cfg, _, _ := validConfig()

	e, err := New(cfg)

	require.NoError(t, err)
	assert.Implements(t, (*core.RecoveryStoreWithStats)(nil), e.RecoveryStore, "default recovery store should be the in-memory store")
}

// Requirement: after a successful recovery the new password authenticates
// and the old one no longer does.
func TestEvently_RecoveryFlow(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cfg, mailer, _ := validConfig()
	cfg.TokenTTL = 30 * time.Minute
	e, err := New(cfg)
	require.NoError(t, err)

	registered, err := e.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "Abcd123!"})
	require.NoError(t, err)

	// Act
	require.NoError(t, e.RequestRecovery(ctx, RecoveryRequestInput{Email: "alice@example.com"}))
	err = e.ConfirmRecovery(ctx, RecoveryConfirmInput{
		Email:       "alice@example.com",
		OTP:         mailer.LastPasscode(),
		NewPassword: "Newpass1!",
	})

	// Assert
	require.NoError(t, err)
	_, err = e.Login(ctx, LoginInput{Email: "alice@example.com", Password: "Abcd123!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := e.Login(ctx, LoginInput{Email: "alice@example.com", Password: "Newpass1!"})
	require.NoError(t, err)

	session, err := e.GetSession(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.Account.ID, session.Account.ID)
	d := time.Until(session.ExpiresAt)
	assert.True(t, d > 0 && d <= 30*time.Minute, "session expires in %v, want within token TTL", d)
}
