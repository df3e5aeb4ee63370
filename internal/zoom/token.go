package zoom

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued API token stays valid.
const TokenTTL = time.Hour

var ErrMissingCredentials = errors.New("api key and secret are required")

// TokenIssuer signs short-lived HS256 bearer tokens for the platform API.
type TokenIssuer struct {
	apiKey string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a token issuer for the given API credentials.
func NewTokenIssuer(apiKey, apiSecret string) *TokenIssuer {
	return &TokenIssuer{
		apiKey: apiKey,
		secret: []byte(apiSecret),
		ttl:    TokenTTL,
		now:    time.Now,
	}
}

// Issue returns a token with the API key as issuer, expiring after TokenTTL.
func (t *TokenIssuer) Issue() (string, error) {
	if t.apiKey == "" || len(t.secret) == 0 {
		return "", ErrMissingCredentials
	}
	claims := jwt.RegisteredClaims{
		Issuer:    t.apiKey,
		ExpiresAt: jwt.NewNumericDate(t.now().Add(t.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}
