package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lborres/evently/core"
)

const (
	MinSecretLength = 32
	DefaultTokenTTL = time.Hour
)

var _ core.TokenIssuer = (*JWTIssuer)(nil)

// Claims carries the account ID alongside the registered claims.
// Subject holds the same value for standard tooling.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"id"`
}

// JWTIssuer signs HS256 session tokens
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type JWTOption func(*JWTIssuer)

// WithClock overrides the time source used for issuing and validating tokens
func WithClock(now func() time.Time) JWTOption {
	return func(j *JWTIssuer) {
		j.now = now
	}
}

func NewJWTIssuer(secret string, ttl time.Duration, opts ...JWTOption) (*JWTIssuer, error) {
	if secret == "" {
		return nil, core.ErrMissingSigningKey
	}
	if len(secret) < MinSecretLength {
		return nil, core.ErrSigningKeyTooShort
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	j := &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

func (j *JWTIssuer) TTL() time.Duration {
	return j.ttl
}

func (j *JWTIssuer) Issue(accountID string) (*core.IssuedToken, error) {
	now := j.now().Truncate(time.Second)
	expiresAt := now.Add(j.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		AccountID: accountID,
	})

	signed, err := token.SignedString(j.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: sign token: %w", core.ErrHashing, err)
	}

	return &core.IssuedToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// Verify checks signature and expiry and returns the embedded account ID
func (j *JWTIssuer) Verify(tokenString string) (*core.TokenClaims, error) {
	claims := &Claims{}

	// A method mismatch fails in the keyfunc, so it reports as unverifiable
	// rather than as a bad signature.
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return j.secret, nil
	},
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, core.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, core.ErrTokenInvalidSignature
	default:
		return nil, core.ErrInvalidToken
	}

	if !token.Valid || claims.AccountID == "" {
		return nil, core.ErrInvalidToken
	}

	return &core.TokenClaims{AccountID: claims.AccountID, ExpiresAt: claims.ExpiresAt.Time}, nil
}
