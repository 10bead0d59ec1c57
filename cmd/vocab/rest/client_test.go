package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	kprof "github.com/opst/vocabfab/cmd/vocab/config/profiles"
	cerr "github.com/opst/vocabfab/cmd/vocab/errors"
	"github.com/opst/vocabfab/cmd/vocab/rest"
	"github.com/opst/vocabfab/cmd/vocabd/handlers"
	"github.com/opst/vocabfab/pkg/actions"
	"github.com/opst/vocabfab/pkg/api/types/action"
	"github.com/opst/vocabfab/pkg/domain"
	kerr "github.com/opst/vocabfab/pkg/domain/errors"
	vmock "github.com/opst/vocabfab/pkg/domain/vocabulary/db/mock"
	"github.com/opst/vocabfab/pkg/utils/cmp"
	"github.com/opst/vocabfab/pkg/utils/try"
)

type received struct {
	Method        string
	Path          string
	Query         map[string][]string
	Authorization string
	Body          map[string]any
}

// cannedServer responds the same envelope for any request.
func cannedServer(t *testing.T, status int, envelope string, got *received) *httptest.Server {
	t.Helper()
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Method = r.Method
		got.Path = r.URL.Path
		got.Query = r.URL.Query()
		got.Authorization = r.Header.Get("Authorization")
		if r.Body != nil {
			if buf, _ := io.ReadAll(r.Body); len(buf) != 0 {
				json.Unmarshal(buf, &got.Body)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(envelope))
	}))
	t.Cleanup(svr.Close)
	return svr
}

func newClient(t *testing.T, svr *httptest.Server) rest.VocabClient {
	return try.To(rest.NewClient(&kprof.VocabProfile{
		ApiRoot: svr.URL + action.Root, ApiKey: "api-key",
	})).OrFatal(t)
}

const genreEnvelope = `{
	"help": "http://vocab.invalid/api/3/action/help_show?name=vocabulary_show",
	"success": true,
	"result": {"id": "vocab-1", "name": "genre_vocab", "tags": [
		{"id": "term-1", "name": "jazz", "vocabulary_id": "vocab-1", "display_name": "jazz"}
	]}
}`

var genre = domain.Vocabulary{
	Id: "vocab-1", Name: "genre_vocab",
	Terms: []domain.Term{{Id: "term-1", Name: "jazz", VocabularyId: "vocab-1"}},
}

func TestShowVocabulary(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		got := received{}
		svr := cannedServer(t, http.StatusOK, genreEnvelope, &got)

		l := try.To(newClient(t, svr).ShowVocabulary(context.Background(), rest.KeyHolder, "genre_vocab")).OrFatal(t)
		v, ok := l.Get()
		if !ok || !v.Equal(genre) {
			t.Errorf("lookup: %s", l)
		}
		if got.Method != http.MethodGet || got.Path != action.Root+"/vocabulary_show" {
			t.Errorf("request: %s %s", got.Method, got.Path)
		}
		if !cmp.SliceEq(got.Query["id"], []string{"genre_vocab"}) {
			t.Errorf("query: %v", got.Query)
		}
		if got.Authorization != "api-key" {
			t.Errorf("Authorization: %q", got.Authorization)
		}
	})

	t.Run("not found is Absent, not an error", func(t *testing.T) {
		got := received{}
		svr := cannedServer(t, http.StatusNotFound, `{
			"help": "...", "success": false,
			"error": {"__type": "Not Found Error", "message": "Not found"}
		}`, &got)

		l, err := newClient(t, svr).ShowVocabulary(context.Background(), rest.KeyHolder, "genre_vocab")
		if err != nil {
			t.Fatal(err)
		}
		if l.IsFound() {
			t.Errorf("lookup: %s", l)
		}
	})

	t.Run("anonymous actor sends no api key", func(t *testing.T) {
		got := received{}
		svr := cannedServer(t, http.StatusOK, genreEnvelope, &got)

		try.To(newClient(t, svr).ShowVocabulary(context.Background(), domain.Anonymous, "genre_vocab")).OrFatal(t)
		if got.Authorization != "" {
			t.Errorf("Authorization: %q", got.Authorization)
		}
	})
}

func TestErrorMapping(t *testing.T) {
	type Then struct {
		Err     error
		NotIsAs []error
	}
	theory := func(status int, envelope string, then Then) func(*testing.T) {
		return func(t *testing.T) {
			got := received{}
			svr := cannedServer(t, status, envelope, &got)

			_, err := newClient(t, svr).CreateVocabulary(context.Background(), rest.KeyHolder, "genre_vocab")
			if err == nil {
				t.Fatal("expected error, but got nil")
			}
			if then.Err != nil && !errors.Is(err, then.Err) {
				t.Errorf("unexpected error: %v", err)
			}
			for _, e := range then.NotIsAs {
				if errors.Is(err, e) {
					t.Errorf("error should not be %v: %v", e, err)
				}
			}
			if cuierr := new(cerr.CUIError); !errors.As(err, &cuierr) {
				t.Errorf("error should be CUIError: %T", err)
			}
		}
	}

	t.Run("name in use is conflict", theory(
		http.StatusConflict,
		`{"help": "", "success": false, "error": {"__type": "Validation Error", "name": ["That vocabulary name is already in use."]}}`,
		Then{Err: kerr.ErrConflict, NotIsAs: []error{kerr.ErrInvalid}},
	))
	t.Run("other validation error is invalid", theory(
		http.StatusConflict,
		`{"help": "", "success": false, "error": {"__type": "Validation Error", "name": ["Name must be at least 2 characters long"]}}`,
		Then{Err: kerr.ErrInvalid, NotIsAs: []error{kerr.ErrConflict}},
	))
	t.Run("authorization error", theory(
		http.StatusForbidden,
		`{"help": "", "success": false, "error": {"__type": "Authorization Error", "message": "Access denied"}}`,
		Then{Err: kerr.ErrNotAuthorized},
	))
	t.Run("internal error has no domain meaning", theory(
		http.StatusInternalServerError,
		`{"help": "", "success": false, "error": {"__type": "Internal Server Error", "message": "oops"}}`,
		Then{NotIsAs: []error{kerr.ErrConflict, kerr.ErrMissing, kerr.ErrInvalid, kerr.ErrNotAuthorized}},
	))
	t.Run("non-envelope response", theory(
		http.StatusBadGateway, `<html>bad gateway</html>`,
		Then{NotIsAs: []error{kerr.ErrConflict, kerr.ErrMissing}},
	))
}

func TestWritingRequests(t *testing.T) {
	for name, testcase := range map[string]struct {
		call     func(rest.VocabClient) error
		envelope string
		path     string
		body     map[string]any
	}{
		"CreateTerm": {
			call: func(c rest.VocabClient) error {
				term, err := c.CreateTerm(context.Background(), rest.KeyHolder, "vocab-1", "soul")
				if err == nil && term != (domain.Term{Id: "term-2", Name: "soul", VocabularyId: "vocab-1"}) {
					t.Errorf("term: %+v", term)
				}
				return err
			},
			envelope: `{"help": "", "success": true, "result": {"id": "term-2", "name": "soul", "vocabulary_id": "vocab-1"}}`,
			path:     "tag_create",
			body:     map[string]any{"name": "soul", "vocabulary_id": "vocab-1"},
		},
		"DeleteTerm": {
			call: func(c rest.VocabClient) error {
				return c.DeleteTerm(context.Background(), rest.KeyHolder, "vocab-1", "soul")
			},
			envelope: `{"help": "", "success": true, "result": null}`,
			path:     "tag_delete",
			body:     map[string]any{"id": "soul", "vocabulary_id": "vocab-1"},
		},
		"DeleteVocabulary": {
			call: func(c rest.VocabClient) error {
				return c.DeleteVocabulary(context.Background(), rest.KeyHolder, "genre_vocab")
			},
			envelope: `{"help": "", "success": true, "result": null}`,
			path:     "vocabulary_delete",
			body:     map[string]any{"id": "genre_vocab"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			got := received{}
			svr := cannedServer(t, http.StatusOK, testcase.envelope, &got)
			if err := testcase.call(newClient(t, svr)); err != nil {
				t.Fatal(err)
			}
			if got.Method != http.MethodPost || got.Path != action.Root+"/"+testcase.path {
				t.Errorf("request: %s %s", got.Method, got.Path)
			}
			if len(got.Body) != len(testcase.body) {
				t.Errorf("body: %v", got.Body)
			}
			for k, v := range testcase.body {
				if got.Body[k] != v {
					t.Errorf("body[%s]: %v", k, got.Body[k])
				}
			}
		})
	}
}

func TestRoundTrip_WithVocabd(t *testing.T) {
	store := vmock.NewVocabularyInterface()
	store.Impl.Find = func(_ context.Context, nameOrId string) (domain.Lookup, error) {
		if nameOrId == genre.Name || nameOrId == genre.Id {
			return domain.Found(genre), nil
		}
		return domain.Absent(), nil
	}
	store.Impl.Terms = func(_ context.Context, vocabularyId string) ([]domain.Term, error) {
		if vocabularyId == genre.Id {
			return genre.Terms, nil
		}
		return nil, fmt.Errorf("%w: %s", kerr.ErrMissing, vocabularyId)
	}
	store.Impl.Create = func(context.Context, string, []string) (domain.Vocabulary, error) {
		return domain.Vocabulary{}, kerr.ErrConflict
	}

	admin := domain.Actor{Name: "admin", Sysadmin: true}
	e := echo.New()
	e.Any(action.Root+"/:action", handlers.ActionHandler(
		actions.New(store, domain.Actor{Name: "site-user", Sysadmin: true}),
		func(authorization string) (domain.Actor, error) {
			if authorization == "api-key" {
				return admin, nil
			}
			return domain.Anonymous, nil
		},
		"action",
	))
	svr := httptest.NewServer(e)
	defer svr.Close()

	client := newClient(t, svr)
	ctx := context.Background()

	terms := try.To(client.ListTerms(ctx, rest.KeyHolder, "genre_vocab")).OrFatal(t)
	if !cmp.SliceEqWith(terms, genre.Terms, func(a, b domain.Term) bool { return a == b }) {
		t.Errorf("terms: %+v", terms)
	}

	if _, err := client.CreateVocabulary(ctx, rest.KeyHolder, "genre_vocab"); !errors.Is(err, kerr.ErrConflict) {
		t.Errorf("conflict should be recognized: %v", err)
	}

	if _, err := client.ListTerms(ctx, rest.KeyHolder, "no_such_vocab"); !errors.Is(err, kerr.ErrMissing) {
		t.Errorf("missing should be recognized: %v", err)
	}

	site := try.To(client.GetSiteUser(ctx, rest.KeyHolder)).OrFatal(t)
	if site != (domain.Actor{Name: "site-user", Sysadmin: true}) {
		t.Errorf("site user: %+v", site)
	}

	if _, err := client.GetSiteUser(ctx, domain.Anonymous); !errors.Is(err, kerr.ErrNotAuthorized) {
		t.Errorf("anonymous should not get site user: %v", err)
	}
}
