package auth

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token verification failures. Both must surface as a generic 401 at the
// HTTP boundary so callers cannot distinguish them.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenManager issues and verifies self-contained signed access tokens.
// No server-side session state is created by issuance.
type TokenManager struct {
	secret []byte
	method jwtv5.SigningMethod
	ttl    time.Duration
}

// NewTokenManager constructs a TokenManager for an HMAC algorithm name
// such as HS256.
func NewTokenManager(secret string, algorithm string, ttl time.Duration) (*TokenManager, error) {
	method := jwtv5.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("auth: unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwtv5.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", algorithm)
	}
	return &TokenManager{secret: []byte(secret), method: method, ttl: ttl}, nil
}

// Issue produces a signed token bound to the subject username with an
// explicit expiry of now + TTL.
func (m *TokenManager) Issue(username string) (string, error) {
	now := time.Now().UTC()
	claims := jwtv5.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(m.ttl).Unix(),
		"jti": uuid.NewString(),
	}
	return jwtv5.NewWithClaims(m.method, claims).SignedString(m.secret)
}

// Verify validates signature and expiry and returns the subject
// username. Expired-but-otherwise-valid tokens yield ErrTokenExpired;
// anything else yields ErrInvalidToken.
func (m *TokenManager) Verify(token string) (string, error) {
	parsed, err := jwtv5.Parse(token, func(t *jwtv5.Token) (any, error) {
		return m.secret, nil
	}, jwtv5.WithValidMethods([]string{m.method.Alg()}), jwtv5.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwtv5.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
