package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opst/vocabfab/pkg/domain"
	kerr "github.com/opst/vocabfab/pkg/domain/errors"
)

// Authenticator tells who sends the request, from its Authorization header.
//
// Requests without the header are from domain.Anonymous.
type Authenticator func(authorization string) (domain.Actor, error)

// Verifier verifies api tokens and returns the user name in them.
type Verifier interface {
	Verify(token string) (string, error)
}

// Users resolves user names into Actors.
type Users interface {
	Actor(name string) (domain.Actor, bool)
}

var ErrUnknownUser = errors.New("unknown user")

// TokenAuthenticator authenticates api tokens issued for configured users.
//
// The header value is the token itself, optionally prefixed with "Bearer ".
func TokenAuthenticator(v Verifier, users Users) Authenticator {
	return func(authorization string) (domain.Actor, error) {
		token := strings.TrimSpace(authorization)
		if t, ok := cutPrefixFold(token, "bearer "); ok {
			token = strings.TrimSpace(t)
		}
		if token == "" {
			return domain.Anonymous, nil
		}

		name, err := v.Verify(token)
		if err != nil {
			return domain.Anonymous, fmt.Errorf("%w: %w", kerr.ErrNotAuthorized, err)
		}
		actor, ok := users.Actor(name)
		if !ok {
			return domain.Anonymous, fmt.Errorf("%w: %w: %s", kerr.ErrNotAuthorized, ErrUnknownUser, name)
		}
		return actor, nil
	}
}

func cutPrefixFold(s string, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
