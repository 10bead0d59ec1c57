package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	kactions "github.com/opst/vocabfab/pkg/actions"
	"github.com/opst/vocabfab/pkg/api/types/action"
	"github.com/opst/vocabfab/pkg/domain"
)

// Actions is what the action API exposes.
type Actions interface {
	ShowVocabulary(ctx context.Context, actor domain.Actor, nameOrId string) (domain.Lookup, error)
	ListVocabularies(ctx context.Context, actor domain.Actor) ([]domain.Vocabulary, error)
	CreateVocabularyWithTerms(ctx context.Context, actor domain.Actor, name string, terms []string) (domain.Vocabulary, error)
	DeleteVocabulary(ctx context.Context, actor domain.Actor, nameOrId string) error
	CreateTerm(ctx context.Context, actor domain.Actor, vocabularyId string, term string) (domain.Term, error)
	DeleteTerm(ctx context.Context, actor domain.Actor, vocabularyId string, nameOrId string) error
	ListTerms(ctx context.Context, actor domain.Actor, vocabularyId string) ([]domain.Term, error)
	SiteUser(ctx context.Context, actor domain.Actor) (domain.Actor, error)
}

var _ Actions = &kactions.Actions{}

const missingValue = "Missing value"

// actionFunc performs an action and returns its result.
//
// Errors should be *echo.HTTPError built by package action.
type actionFunc func(c echo.Context, actor domain.Actor) (any, error)

type endpoint struct {
	// write actions accept POST only.
	write bool
	do    actionFunc
}

// ActionHandler serves actions at ".../:action".
//
// # Args
//
// - acts: Actions to be served.
//
// - auth: Authenticator for the Authorization header.
//
// - param: name of the path parameter holding the action name.
//
// # Returns
//
// echo.HandlerFunc. It responds action.Response envelopes.
func ActionHandler(acts Actions, auth Authenticator, param string) echo.HandlerFunc {
	endpoints := map[string]endpoint{
		kactions.VocabularyShow:   {do: vocabularyShow(acts)},
		kactions.VocabularyList:   {do: vocabularyList(acts)},
		kactions.VocabularyCreate: {write: true, do: vocabularyCreate(acts)},
		kactions.VocabularyDelete: {write: true, do: vocabularyDelete(acts)},
		kactions.TagCreate:        {write: true, do: tagCreate(acts)},
		kactions.TagDelete:        {write: true, do: tagDelete(acts)},
		kactions.TagList:          {do: tagList(acts)},
		kactions.GetSiteUser:      {do: getSiteUser(acts)},
	}

	return func(c echo.Context) error {
		name := c.Param(param)
		ep, ok := endpoints[name]
		if !ok {
			return action.BadRequest(name, "Action name not known: "+name, nil)
		}
		req := c.Request()
		if ep.write && req.Method != http.MethodPost {
			return action.BadRequest(name, "Only POST requests are allowed for "+name, nil)
		}

		actor, err := auth(req.Header.Get("Authorization"))
		if err != nil {
			return action.Unauthorized(name, "Access denied: invalid api token", err)
		}

		result, err := ep.do(c, actor)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, action.Response[any]{
			Help: action.Help(name), Success: true, Result: result,
		})
	}
}

// bind reads parameters of the request into dest.
//
// GET requests carry parameters as queries, and fromQuery reads them.
// Others carry a JSON body. An empty body means no parameters.
func bind(c echo.Context, name string, dest any, fromQuery func(url.Values)) error {
	req := c.Request()
	if req.Method == http.MethodGet {
		if fromQuery != nil {
			fromQuery(c.QueryParams())
		}
		return nil
	}

	ctype := strings.ToLower(req.Header.Get("content-type"))
	if ctype != "" && !strings.HasPrefix(ctype, "application/json") {
		return action.BadRequest(name, "unexpected content type. it should be application/json", nil)
	}
	if err := json.NewDecoder(req.Body).Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		return action.BadRequest(name, "Bad request - JSON Error: "+err.Error(), err)
	}
	return nil
}

func required(name string, fields map[string]string) error {
	missing := map[string][]string{}
	for k, v := range fields {
		if v == "" {
			missing[k] = []string{missingValue}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return action.Invalid(name, "", missing, nil)
}

func vocabularyShow(acts Actions) actionFunc {
	name := kactions.VocabularyShow
	return func(c echo.Context, actor domain.Actor) (any, error) {
		req := action.Id{}
		if err := bind(c, name, &req, func(q url.Values) { req.Id = q.Get("id") }); err != nil {
			return nil, err
		}
		if err := required(name, map[string]string{"id": req.Id}); err != nil {
			return nil, err
		}

		l, err := acts.ShowVocabulary(c.Request().Context(), actor, req.Id)
		if err != nil {
			return nil, action.FromError(name, "vocabulary", err)
		}
		vocab, ok := l.Get()
		if !ok {
			return nil, action.NotFound(name, "Not found: Could not find vocabulary \""+req.Id+"\"", nil)
		}
		return action.ComposeVocabulary(vocab), nil
	}
}

func vocabularyList(acts Actions) actionFunc {
	name := kactions.VocabularyList
	return func(c echo.Context, actor domain.Actor) (any, error) {
		vocabs, err := acts.ListVocabularies(c.Request().Context(), actor)
		if err != nil {
			return nil, action.FromError(name, "vocabulary", err)
		}
		result := make([]action.Vocabulary, 0, len(vocabs))
		for _, v := range vocabs {
			result = append(result, action.ComposeVocabulary(v))
		}
		return result, nil
	}
}

func vocabularyCreate(acts Actions) actionFunc {
	name := kactions.VocabularyCreate
	return func(c echo.Context, actor domain.Actor) (any, error) {
		req := action.VocabularyCreate{}
		if err := bind(c, name, &req, nil); err != nil {
			return nil, err
		}
		if err := required(name, map[string]string{"name": req.Name}); err != nil {
			return nil, err
		}

		terms := make([]string, 0, len(req.Tags))
		for _, t := range req.Tags {
			terms = append(terms, t.Name)
		}
		vocab, err := acts.CreateVocabularyWithTerms(c.Request().Context(), actor, req.Name, terms)
		if err != nil {
			return nil, action.FromError(name, "vocabulary", err)
		}
		return action.ComposeVocabulary(vocab), nil
	}
}

func vocabularyDelete(acts Actions) actionFunc {
	name := kactions.VocabularyDelete
	return func(c echo.Context, actor domain.Actor) (any, error) {
		req := action.Id{}
		if err := bind(c, name, &req, nil); err != nil {
			return nil, err
		}
		if err := required(name, map[string]string{"id": req.Id}); err != nil {
			return nil, err
		}

		if err := acts.DeleteVocabulary(c.Request().Context(), actor, req.Id); err != nil {
			return nil, action.FromError(name, "vocabulary", err)
		}
		return nil, nil
	}
}

func tagCreate(acts Actions) actionFunc {
	name := kactions.TagCreate
	return func(c echo.Context, actor domain.Actor) (any, error) {
		req := action.TagCreate{}
		if err := bind(c, name, &req, nil); err != nil {
			return nil, err
		}
		if err := required(name, map[string]string{
			"name": req.Name, "vocabulary_id": req.VocabularyId,
		}); err != nil {
			return nil, err
		}

		term, err := acts.CreateTerm(c.Request().Context(), actor, req.VocabularyId, req.Name)
		if err != nil {
			return nil, action.FromError(name, "tag", err)
		}
		return action.ComposeTag(term), nil
	}
}

func tagDelete(acts Actions) actionFunc {
	name := kactions.TagDelete
	return func(c echo.Context, actor domain.Actor) (any, error) {
		req := action.TagDelete{}
		if err := bind(c, name, &req, nil); err != nil {
			return nil, err
		}
		if err := required(name, map[string]string{
			"id": req.Id, "vocabulary_id": req.VocabularyId,
		}); err != nil {
			return nil, err
		}

		if err := acts.DeleteTerm(c.Request().Context(), actor, req.VocabularyId, req.Id); err != nil {
			return nil, action.FromError(name, "tag", err)
		}
		return nil, nil
	}
}

func tagList(acts Actions) actionFunc {
	name := kactions.TagList
	return func(c echo.Context, actor domain.Actor) (any, error) {
		req := action.TagList{}
		if err := bind(c, name, &req, func(q url.Values) {
			req.VocabularyId = q.Get("vocabulary_id")
			req.AllFields, _ = strconv.ParseBool(q.Get("all_fields"))
		}); err != nil {
			return nil, err
		}
		if err := required(name, map[string]string{"vocabulary_id": req.VocabularyId}); err != nil {
			return nil, err
		}

		terms, err := acts.ListTerms(c.Request().Context(), actor, req.VocabularyId)
		if err != nil {
			return nil, action.FromError(name, "tag", err)
		}

		if req.AllFields {
			tags := make([]action.Tag, 0, len(terms))
			for _, t := range terms {
				tags = append(tags, action.ComposeTag(t))
			}
			return tags, nil
		}
		names := make([]string, 0, len(terms))
		for _, t := range terms {
			names = append(names, t.Name)
		}
		return names, nil
	}
}

func getSiteUser(acts Actions) actionFunc {
	name := kactions.GetSiteUser
	return func(c echo.Context, actor domain.Actor) (any, error) {
		u, err := acts.SiteUser(c.Request().Context(), actor)
		if err != nil {
			return nil, action.FromError(name, "user", err)
		}
		return action.User{Name: u.Name, Sysadmin: u.Sysadmin}, nil
	}
}
