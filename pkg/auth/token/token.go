// Package token issues and verifies API tokens.
//
// An API token is a JWS signed with HS256. Its subject is the user name.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when the token is malformed, expired or not signed by us.
var ErrInvalidToken = errors.New("invalid api token")

// Claims of API tokens.
type Claims struct {
	jwt.RegisteredClaims
}

type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Signer) *Signer

// WithTTL makes issued tokens expire after ttl.
//
// When ttl is 0 or less (default), tokens do not expire.
func WithTTL(ttl time.Duration) Option {
	return func(s *Signer) *Signer {
		s.ttl = ttl
		return s
	}
}

// WithClock replaces the clock used to issue and verify tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) *Signer {
		s.now = now
		return s
	}
}

func New(secret []byte, options ...Option) (*Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("secret for api token is empty")
	}
	s := &Signer{secret: secret, now: time.Now}
	for _, o := range options {
		s = o(s)
	}
	return s, nil
}

// Issue a new token for the user.
func (s *Signer) Issue(user string) (string, error) {
	if user == "" {
		return "", errors.New("user name is empty")
	}
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// jti
			ID: uuid.NewString(),

			// sub
			Subject: user,

			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if 0 < s.ttl {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify the token and returns the user name in it.
//
// # Returns
//
// - string: user name
//
// - error: ErrInvalidToken wrapping the reason.
func (s *Signer) Verify(token string) (string, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(
		token, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}
