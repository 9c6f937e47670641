// Package auth implements the authentication core: session tokens, password
// hashing, the password-reset flow, and the request guards.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature, malformed
// payload, or expired token. Callers cannot distinguish the causes.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the token subject. The subject is the user id; role is not
// embedded because the guard re-resolves the user on every request.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed session tokens. The secret and
// lifetime are fixed at construction; verification is stateless, so a leaked
// token stays valid until its natural expiry.
type TokenService struct {
	secret []byte
	expire time.Duration
}

// NewTokenService creates a TokenService with the given secret and lifetime.
func NewTokenService(secret string, expire time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), expire: expire}
}

// Expire returns the configured token lifetime.
func (s *TokenService) Expire() time.Duration {
	return s.expire
}

// Issue creates a signed token bound to the given user id.
func (s *TokenService) Issue(userID uint) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expire)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates the signature and expiry and returns the subject user id.
func (s *TokenService) Verify(tokenStr string) (uint, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}
