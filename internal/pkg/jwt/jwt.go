package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSigningMethod = errors.New("jwt: unexpected signing method")
	// ErrSigningKeyTooShort is returned for HS512 keys under 64 bytes.
	ErrSigningKeyTooShort = errors.New("jwt: HS512 signing key must be at least 64 bytes")
	ErrTokenExpired       = errors.New("jwt: token expired")
	ErrInvalidToken       = errors.New("jwt: invalid token")
)

// JWT issues and verifies account access tokens.
type JWT interface {
	Generate(accountID int64, username string) (string, error)
	Verify(token string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

// Config defines the inputs for building a JWT implementation.
type Config struct {
	Secret    []byte
	Issuer    string
	Audiences []string
	// TTL is the access token lifetime.
	TTL   time.Duration
	Clock clocker
	// UUID generates the jti claim.
	UUID generator
}

// Claims are the registered claims plus the account the token was issued to.
// Subject always carries AccountID in decimal.
type Claims struct {
	jwt.RegisteredClaims
	AccountID int64  `json:"account_id,string"`
	Username  string `json:"username"`
}

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying clm.
func WithClaims(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, clm)
}

// FromContext returns the claims of the authenticated caller.
func FromContext(ctx context.Context) (Claims, bool) {
	clm, ok := ctx.Value(claimsKey{}).(Claims)
	return clm, ok
}
