package handlers_test

import (
	"errors"
	"testing"

	"github.com/opst/vocabfab/cmd/vocabd/handlers"
	"github.com/opst/vocabfab/pkg/auth/token"
	"github.com/opst/vocabfab/pkg/domain"
	kerr "github.com/opst/vocabfab/pkg/domain/errors"
	"github.com/opst/vocabfab/pkg/utils/try"
)

type users map[string]domain.Actor

func (u users) Actor(name string) (domain.Actor, bool) {
	a, ok := u[name]
	return a, ok
}

func TestTokenAuthenticator(t *testing.T) {
	signer := try.To(token.New([]byte("secret"))).OrFatal(t)
	other := try.To(token.New([]byte("another secret"))).OrFatal(t)

	testee := handlers.TokenAuthenticator(signer, users{"admin": admin, "editor": editor})

	adminToken := try.To(signer.Issue("admin")).OrFatal(t)
	strangerToken := try.To(signer.Issue("stranger")).OrFatal(t)
	forgedToken := try.To(other.Issue("admin")).OrFatal(t)

	type Then struct {
		Actor domain.Actor
		Err   error
	}

	for name, tc := range map[string]struct {
		When string
		Then
	}{
		"no header is anonymous": {
			When: "", Then: Then{Actor: domain.Anonymous},
		},
		"raw token": {
			When: adminToken, Then: Then{Actor: admin},
		},
		"bearer token": {
			When: "Bearer " + adminToken, Then: Then{Actor: admin},
		},
		"token for unknown user": {
			When: strangerToken, Then: Then{Err: handlers.ErrUnknownUser},
		},
		"token signed by others": {
			When: forgedToken, Then: Then{Err: token.ErrInvalidToken},
		},
		"not a token": {
			When: "not-a-token", Then: Then{Err: token.ErrInvalidToken},
		},
	} {
		t.Run(name, func(t *testing.T) {
			actor, err := testee(tc.When)
			if tc.Then.Err != nil {
				if !errors.Is(err, tc.Then.Err) || !errors.Is(err, kerr.ErrNotAuthorized) {
					t.Errorf("unexpected error: %v", err)
				}
				if actor != domain.Anonymous {
					t.Errorf("actor: %+v", actor)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if actor != tc.Then.Actor {
				t.Errorf("actor: want %+v, but got %+v", tc.Then.Actor, actor)
			}
		})
	}
}
